package imageedit

import (
	"fmt"
	"strings"
)

// Validation errors. Each wraps ErrValidation.
var (
	ErrEmptyInstruction = fmt.Errorf("%w: instruction cannot be empty", ErrValidation)
	ErrEmptyImageData   = fmt.Errorf("%w: image data cannot be empty", ErrValidation)
	ErrInvalidMIMEType  = fmt.Errorf("%w: invalid or unsupported MIME type", ErrValidation)
	ErrImageTooLarge    = fmt.Errorf("%w: image data exceeds maximum size", ErrValidation)
	ErrUnsupportedRatio = fmt.Errorf("%w: aspect ratio not supported by model", ErrValidation)
)

// MaxImageSize is the maximum allowed image size in bytes (20MB), the inline-data limit of the API.
const MaxImageSize = 20 * 1024 * 1024

// ValidMIMETypes contains the supported image MIME types
var ValidMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
	"image/heif": true,
}

// mimeAliases maps non-canonical names that clients send to the canonical type.
var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

// NormalizeMIMEType lowercases a media type and resolves common aliases.
func NormalizeMIMEType(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if canonical, ok := mimeAliases[mt]; ok {
		return canonical
	}
	return mt
}

// ValidateInstruction validates the edit instruction. Whitespace-only counts as empty.
func ValidateInstruction(instruction string) error {
	if strings.TrimSpace(instruction) == "" {
		return ErrEmptyInstruction
	}
	return nil
}

// ValidateInputImage validates an input image.
func ValidateInputImage(img InputImage) error {
	if len(img.Data) == 0 {
		return ErrEmptyImageData
	}

	if len(img.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(img.Data), MaxImageSize)
	}

	if img.MIMEType == "" {
		return fmt.Errorf("%w: MIME type is required", ErrInvalidMIMEType)
	}

	if !ValidMIMETypes[img.MIMEType] {
		return fmt.Errorf("%w: %s", ErrInvalidMIMEType, img.MIMEType)
	}

	return nil
}

// ValidateEditRequest runs every local check for a single edit.
func ValidateEditRequest(img InputImage, instruction string) error {
	if err := ValidateInputImage(img); err != nil {
		return err
	}
	return ValidateInstruction(instruction)
}
