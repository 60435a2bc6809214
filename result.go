package imageedit

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockNone      SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// EditedImage is the image part of an edit response.
type EditedImage struct {
	// Data contains the raw image bytes
	Data []byte

	// MIMEType as declared by the model
	MIMEType string
}

// DataURI renders the image as a data: URI suitable for an <img> src.
func (img EditedImage) DataURI() string {
	return EncodeDataURI(img.MIMEType, img.Data)
}

// EditResult holds the decoded outcome of a single edit request.
// Image is always set on a successful result; Text is optional advisory commentary.
type EditResult struct {
	Image *EditedImage

	// Text is the concatenation of the model's text parts
	Text string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata
}

// DataURI returns the result image as a data URI, or "" when there is no image.
func (r *EditResult) DataURI() string {
	if r == nil || r.Image == nil {
		return ""
	}
	return r.Image.DataURI()
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}
