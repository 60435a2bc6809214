package gemini

import "github.com/mhpenta/imageedit"

var supportedAspectRatios = []imageedit.AspectRatio{
	imageedit.AspectRatio1x1,
	imageedit.AspectRatio16x9,
	imageedit.AspectRatio9x16,
	imageedit.AspectRatio4x3,
	imageedit.AspectRatio3x4,
	imageedit.AspectRatio2x3,
	imageedit.AspectRatio3x2,
	imageedit.AspectRatio4x5,
	imageedit.AspectRatio5x4,
	imageedit.AspectRatio21x9,
}

// NanoBanana1Info is the model info for Gemini 2.5 Flash Image (nano-banana-1),
// the fast editing model and the default.
var NanoBanana1Info = imageedit.ModelInfo{
	Name:         string(imageedit.ModelNanoBanana1),
	Provider:     imageedit.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana1,

	Capabilities: imageedit.ModelCapabilities{
		SupportsImageEditing: true,
		SupportsAspectRatio:  true,
		SupportsThinking:     false,
	},

	SupportedAspectRatios: supportedAspectRatios,

	RateLimits: imageedit.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},

	Pricing: imageedit.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 30.00, // ~$0.039 per 1024x1024 image
	},
}

// NanoBanana2Info is the model info for Gemini 3 Pro Image (nano-banana-2).
//
// Nano Banana Pro (official name: Gemini 3 Pro Image) is Google DeepMind's
// image generation and editing model, built on Gemini 3 Pro.
var NanoBanana2Info = imageedit.ModelInfo{
	Name:         string(imageedit.ModelNanoBanana2),
	Provider:     imageedit.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana2,

	Capabilities: imageedit.ModelCapabilities{
		SupportsImageEditing: true,
		SupportsAspectRatio:  true,
		SupportsThinking:     true,
	},

	SupportedAspectRatios: supportedAspectRatios,

	RateLimits: imageedit.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
	},

	// Pricing as of November 2025 for prompts ≤200K tokens.
	Pricing: imageedit.Pricing{
		InputTokensPerMillion:  2.00,
		OutputTokensPerMillion: 12.00,
	},
}
