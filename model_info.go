package imageedit

// ModelCapabilities describes what features a model supports.
type ModelCapabilities struct {
	SupportsImageEditing bool
	SupportsAspectRatio  bool
	SupportsThinking     bool // Reasoning/thinking mode
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	// Identity
	Name         string   // Public model name (e.g., "nano-banana-1")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "gemini-2.5-flash-image")

	Capabilities ModelCapabilities

	SupportedAspectRatios []AspectRatio

	RateLimits RateLimits

	Pricing Pricing
}

// SupportsAspectRatio reports whether ar can be requested from this model.
// AspectRatioAuto is always accepted.
func (m ModelInfo) SupportsAspectRatio(ar AspectRatio) bool {
	if ar == AspectRatioAuto {
		return true
	}
	for _, s := range m.SupportedAspectRatios {
		if s == ar {
			return true
		}
	}
	return false
}
