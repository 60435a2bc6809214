package imageedit

import (
	"math"
)

// imageInputTokens is what Gemini bills for one input image up to 384px on both sides;
// larger images are tiled, so this is a floor.
const imageInputTokens = 258

// TokenEstimator estimates the token cost of an edit request for local rate limiting.
type TokenEstimator interface {
	EstimateTokens(instruction string, images int) int
}

// SimpleTokenEstimator - fast approximation of token usage for rate limiting
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(instruction string, images int) int {
	total := images * imageInputTokens
	if instruction == "" {
		return total
	}

	charCount := len([]rune(instruction))
	tokenEstimate := float64(charCount) / 4.0
	tokenEstimate *= e.SafetyMargin

	return total + int(math.Ceil(tokenEstimate)) + 3
}
