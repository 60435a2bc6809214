package imageedit

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultDownloadName is used when the original upload had no usable filename.
	DefaultDownloadName = "image.png"

	downloadPrefix = "edited_"
)

// DownloadFilename names the saved result after the original upload, e.g.
// "cat.jpg" becomes "edited_cat.jpg". Directory components are stripped.
func DownloadFilename(original string) string {
	name := filepath.Base(filepath.ToSlash(strings.TrimSpace(original)))
	if name == "" || name == "." || name == "/" {
		name = DefaultDownloadName
	}
	return downloadPrefix + name
}

// GetMIMEType guesses an image MIME type from a file extension, defaulting to PNG.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "image/png"
	}
}

// ExtensionFromMIME returns a file extension for common image MIME types.
func ExtensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
