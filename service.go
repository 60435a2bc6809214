package imageedit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mhpenta/imageedit/ratelimiter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ModelNanoBanana1 Model = "nano-banana-1" // Gemini 2.5 Flash Image
	ModelNanoBanana2 Model = "nano-banana-2" // Gemini 3 Pro Image

	ModelDefault Model = ModelNanoBanana1
)

var (
	// ErrModelNotRegistered is returned when a model has no registered provider.
	ErrModelNotRegistered = errors.New("model not registered")

	// ErrProviderNotConfigured is returned when a provider lacks required config.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Provider represents a model provider/backend.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
)

// ProviderConfig configures a specific provider.
type ProviderConfig struct {
	// Provider type
	Provider Provider

	// APIKey for authentication
	APIKey string

	// BaseURL for custom endpoints (optional)
	BaseURL string
}

// ModelMapping maps a model identifier to its provider and actual model name.
type ModelMapping struct {
	Provider        Provider
	ActualModelName string
}

// Service is the edit request service. It implements Editor by routing each
// request to the provider registered for the requested model, after local
// validation and rate limiting.
type Service struct {
	modelMappings map[Model]ModelMapping

	providers map[Provider]Editor

	// Default model to use when config.Model is empty
	defaultModel Model

	rateLimiters ratelimiter.Registry

	modelInfo map[Model]*ModelInfo

	logger zerolog.Logger

	tokenEstimator TokenEstimator

	mu sync.RWMutex
}

var _ Editor = (*Service)(nil)

// New creates an empty Service. Most callers want NewService.
func New() *Service {
	return &Service{
		logger:         log.Logger,
		modelMappings:  make(map[Model]ModelMapping),
		providers:      make(map[Provider]Editor),
		rateLimiters:   ratelimiter.NewRegistry(),
		modelInfo:      make(map[Model]*ModelInfo),
		tokenEstimator: NewSimpleTokenEstimator(),
		defaultModel:   ModelDefault,
	}
}

// RegisterProvider makes a provider available for the models mapped to it.
func (s *Service) RegisterProvider(provider Provider, editor Editor) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers[provider] = editor
	return s
}

// RegisterModel registers a model with full info (including rate limits).
// Uses the default in-memory rate limiter. Use SetRateLimiter to override it.
func (s *Service) RegisterModel(model Model, mapping ModelMapping, info *ModelInfo) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modelMappings[model] = mapping
	s.modelInfo[model] = info

	if info != nil && (info.RateLimits.TokensPerMinute > 0 || info.RateLimits.RequestsPerMinute > 0) {
		s.rateLimiters.Set(string(model), ratelimiter.NewFromLimits(ratelimiter.RateLimits{
			TokensPerMinute:   info.RateLimits.TokensPerMinute,
			RequestsPerMinute: info.RateLimits.RequestsPerMinute,
		}))
	}

	return s
}

// SetRateLimiter sets a custom rate limiter for a model. nil disables limiting.
func (s *Service) SetRateLimiter(model Model, limiter ratelimiter.Limiter) *Service {
	s.rateLimiters.Set(string(model), limiter)
	return s
}

// SetDefaultModel sets the default model used when config.Model is empty.
func (s *Service) SetDefaultModel(model Model) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaultModel = model
	return s
}

// DefaultModel returns the model used when config.Model is empty.
func (s *Service) DefaultModel() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultModel
}

// SetLogger sets the structured logger for the service.
func (s *Service) SetLogger(logger zerolog.Logger) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger = logger
	return s
}

// Edit validates the request, applies the model's rate limit and forwards it
// to the provider. The call is a single round trip; failures are never retried.
func (s *Service) Edit(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := ValidateEditRequest(image, instruction); err != nil {
		return nil, err
	}

	model := s.resolveModel(cfg)
	logger := s.loggerFor(model, cfg)
	start := time.Now()

	logger.Debug().
		Int("instruction_length", len(instruction)).
		Int("image_size", len(image.Data)).
		Str("image_mime", image.MIMEType).
		Msg("starting image edit")

	if info, ok := s.GetModelInfo(model); ok && info != nil && !info.SupportsAspectRatio(cfg.AspectRatio) {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedRatio, cfg.AspectRatio, model)
	}

	if err := s.checkRateLimit(model, instruction); err != nil {
		logger.Warn().Err(err).Msg("rate limit hit for edit")
		return nil, err
	}

	gen, actualConfig, err := s.getEditorForConfig(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to get editor")
		return nil, err
	}

	result, err := gen.Edit(ctx, image, instruction, actualConfig)
	duration := time.Since(start)

	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", string(Classify(err))).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("edit failed")

		return nil, err
	}

	// A provider that returns no image without saying so still counts as a refusal.
	if result == nil || result.Image == nil || len(result.Image.Data) == 0 {
		logger.Warn().Int64("duration_ms", duration.Milliseconds()).Msg("edit returned no image")
		return nil, ErrEmptyResult
	}

	evt := logger.Info().
		Int64("duration_ms", duration.Milliseconds()).
		Int("output_bytes", len(result.Image.Data)).
		Str("output_mime", result.Image.MIMEType).
		Bool("has_text", result.Text != "")
	if result.UsageMetadata != nil {
		evt = evt.
			Int("prompt_tokens", result.UsageMetadata.PromptTokens).
			Int("response_tokens", result.UsageMetadata.CandidatesTokens).
			Int("total_tokens", result.UsageMetadata.TotalTokens)
	}
	evt.Msg("edit completed")

	return result, nil
}

// Models returns all registered model definitions.
func (s *Service) Models() []ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]ModelInfo, 0, len(s.modelInfo))
	for _, info := range s.modelInfo {
		if info != nil {
			models = append(models, *info)
		}
	}
	return models
}

// Close releases all provider resources.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for provider, gen := range s.providers {
		if err := gen.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", provider, err))
		}
	}
	s.providers = make(map[Provider]Editor)

	return errors.Join(errs...)
}

// ListModels returns all registered models.
func (s *Service) ListModels() []Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]Model, 0, len(s.modelMappings))
	for model := range s.modelMappings {
		models = append(models, model)
	}
	return models
}

// GetModelProvider returns the provider for a model.
func (s *Service) GetModelProvider(model Model) (Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, ok := s.modelMappings[model]
	if !ok {
		return "", false
	}
	return mapping.Provider, true
}

// GetModelInfo returns model information for a specific model.
func (s *Service) GetModelInfo(model Model) (*ModelInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.modelInfo[model]
	return info, ok
}

// checkRateLimit consumes the estimated cost of one edit, or reports how long to back off.
// It never waits.
func (s *Service) checkRateLimit(model Model, instruction string) error {
	limiter, ok := s.rateLimiters.Get(string(model))
	if !ok {
		return nil
	}

	estimatedTokens := s.tokenEstimator.EstimateTokens(instruction, 1)

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  "local",
			Model:      string(model),
		}
	}

	return nil
}

// resolveModel determines the public model name to use.
func (s *Service) resolveModel(cfg *EditConfig) Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg != nil && cfg.Model != "" {
		return cfg.Model
	}
	return s.defaultModel
}

func (s *Service) loggerFor(model Model, cfg *EditConfig) zerolog.Logger {
	s.mu.RLock()
	ctx := s.logger.With().Str("model", string(model))
	s.mu.RUnlock()

	for k, v := range cfg.Metadata {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

// getEditorForConfig returns the provider and a config copy carrying the API model name.
func (s *Service) getEditorForConfig(cfg *EditConfig) (Editor, *EditConfig, error) {
	model := s.resolveModel(cfg)

	s.mu.RLock()
	mapping, ok := s.modelMappings[model]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrModelNotRegistered, model)
	}

	gen, err := s.getProvider(mapping.Provider)
	if err != nil {
		return nil, nil, err
	}

	configCopy := *cfg
	configCopy.Model = Model(mapping.ActualModelName)

	return gen, &configCopy, nil
}

func (s *Service) getProvider(provider Provider) (Editor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gen, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	return gen, nil
}
