package imageedit

import "context"

// Editor is the core interface for image editing backends.
// Implement this interface to add support for new models or providers.
//
// The first model returned by Models() is considered the default model.
type Editor interface {
	// Edit modifies an existing image based on a text instruction.
	// It performs exactly one round trip and never retries.
	Edit(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error)

	// Models returns the model definitions supported by this provider.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the editor.
	Close() error
}
