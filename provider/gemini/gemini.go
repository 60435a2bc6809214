// Package gemini provides an Editor implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/mhpenta/imageedit"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelNanoBanana2 is the actual API name for Gemini 3 Pro Image
	APIModelNanoBanana2 = "gemini-3-pro-image-preview"

	// APIModelNanoBanana1 is the actual API name for Gemini 2.5 Flash Image
	APIModelNanoBanana1 = "gemini-2.5-flash-image"
)

// responseModalities asks for an image and allows accompanying text.
var responseModalities = []string{"IMAGE", "TEXT"}

// GeminiEditor implements imageedit.Editor using Google's Gemini API.
type GeminiEditor struct {
	client         *genai.Client
	safetySettings []*genai.SafetySetting
	mu             sync.RWMutex
}

var _ imageedit.Editor = (*GeminiEditor)(nil)

// New creates a new GeminiEditor from a ProviderConfig.
// An empty APIKey is rejected rather than falling back to ambient credentials,
// so a misconfigured server fails at startup.
func New(ctx context.Context, config *imageedit.ProviderConfig) (*GeminiEditor, error) {
	return NewWithHTTPClient(ctx, config, nil)
}

// NewWithHTTPClient is New with a caller-supplied HTTP client.
func NewWithHTTPClient(ctx context.Context, config *imageedit.ProviderConfig, httpClient *http.Client) (*GeminiEditor, error) {
	if config == nil || config.APIKey == "" {
		return nil, imageedit.ErrMissingAPIKey
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEditor{
		client: client,
	}, nil
}

// NewWithAPIKey creates an editor with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiEditor, error) {
	return New(ctx, &imageedit.ProviderConfig{
		Provider: imageedit.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// SetSafetySettings configures default safety settings for all requests.
// These can be overridden per-request via EditConfig.SafetySettings.
func (g *GeminiEditor) SetSafetySettings(settings []imageedit.SafetySetting) *GeminiEditor {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.safetySettings = convertSafetySettings(settings)
	return g
}

// Edit sends the image and the instruction as two parts of one user turn and
// decodes the reply. It makes exactly one GenerateContent call.
func (g *GeminiEditor) Edit(ctx context.Context, image imageedit.InputImage, instruction string, config *imageedit.EditConfig) (*imageedit.EditResult, error) {
	if err := imageedit.ValidateEditRequest(image, instruction); err != nil {
		return nil, err
	}

	if config == nil {
		config = imageedit.DefaultConfig()
	}

	modelName := g.resolveModel(config)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						Data:     image.Data,
						MIMEType: image.MIMEType,
					},
				},
				{Text: instruction},
			},
		},
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName, contents, g.buildGenerateContentConfig(config))
	if err != nil {
		return nil, wrapAPIError(err, modelName)
	}

	return parseResult(result)
}

// Models returns the model definitions supported by this provider.
// The first model (NanoBanana1) is the default.
func (g *GeminiEditor) Models() []imageedit.ModelInfo {
	return []imageedit.ModelInfo{
		NanoBanana1Info,
		NanoBanana2Info,
	}
}

// Close releases any resources held by the editor.
func (g *GeminiEditor) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel determines which API model name to use.
// Falls back to the first model (default) if none specified.
func (g *GeminiEditor) resolveModel(config *imageedit.EditConfig) string {
	if config != nil && config.Model != "" {
		return string(config.Model)
	}
	return g.Models()[0].APIModelName
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func (g *GeminiEditor) buildGenerateContentConfig(config *imageedit.EditConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: responseModalities,
	}

	if config.AspectRatio != imageedit.AspectRatioAuto {
		genConfig.ImageConfig = &genai.ImageConfig{
			AspectRatio: config.AspectRatio.String(),
		}
	}

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	// Safety settings: per-request overrides provider defaults
	if len(config.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(config.SafetySettings)
	} else {
		g.mu.RLock()
		genConfig.SafetySettings = g.safetySettings
		g.mu.RUnlock()
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []imageedit.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResult decodes the first candidate. The first inline-data part becomes
// the image; text parts (excluding thoughts) are concatenated into advisory text.
// A response without an image is ErrEmptyResult.
func parseResult(result *genai.GenerateContentResponse) (*imageedit.EditResult, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil response", imageedit.ErrEmptyResult)
	}

	editResult := &imageedit.EditResult{}

	var text strings.Builder
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			if part == nil || part.Thought {
				continue
			}

			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				if editResult.Image == nil {
					editResult.Image = &imageedit.EditedImage{
						Data:     part.InlineData.Data,
						MIMEType: part.InlineData.MIMEType,
					}
				}
				continue
			}

			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}
	editResult.Text = text.String()

	if result.UsageMetadata != nil {
		editResult.UsageMetadata = &imageedit.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	if editResult.Image == nil {
		return nil, emptyResultError(result, editResult.Text)
	}

	return editResult, nil
}

// emptyResultError explains a refusal with whatever the model gave instead of an image.
func emptyResultError(result *genai.GenerateContentResponse, text string) error {
	var reasons []string
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		reasons = append(reasons, "blocked: "+string(fb.BlockReason))
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason != "" {
		reasons = append(reasons, "finish reason: "+string(result.Candidates[0].FinishReason))
	}
	if text != "" {
		reasons = append(reasons, "text: "+truncateString(text, 200))
	}

	if len(reasons) == 0 {
		return imageedit.ErrEmptyResult
	}
	return fmt.Errorf("%w (%s)", imageedit.ErrEmptyResult, strings.Join(reasons, "; "))
}

// truncateString truncates a string to maxLen bytes, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
