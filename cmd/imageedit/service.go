package main

import (
	"context"
	"fmt"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/config"
	"github.com/mhpenta/imageedit/provider/gemini"
	"github.com/rs/zerolog/log"
)

// newService builds the Gemini-backed edit service from cfg and optionally
// checks the API key before returning.
func newService(ctx context.Context, cfg *config.Config) (*imageedit.Service, error) {
	editor, err := gemini.New(ctx, &imageedit.ProviderConfig{
		Provider: imageedit.ProviderGeminiAPI,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ValidateKey {
		if err := editor.ValidateAPIKey(ctx); err != nil {
			if gemini.IsAuthError(err) {
				return nil, fmt.Errorf("API key rejected: %w", err)
			}
			return nil, fmt.Errorf("validating API key: %w", err)
		}
		log.Info().Msg("API key validated")
	}

	svc := imageedit.NewService(editor,
		imageedit.WithLogger(log.Logger.With().Str("component", "service").Logger()),
		imageedit.WithDefaultModel(imageedit.Model(cfg.Model)),
	)

	if _, ok := svc.GetModelInfo(svc.DefaultModel()); !ok {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s (available: %v)", imageedit.ErrModelNotRegistered, cfg.Model, svc.ListModels())
	}
	return svc, nil
}
