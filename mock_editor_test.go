package imageedit

import (
	"context"
)

// MockEditor is a mock implementation of Editor.
type MockEditor struct {
	EditFunc   func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error)
	ModelsFunc func() []ModelInfo
	CloseFunc  func() error
}

func (m *MockEditor) Edit(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
	if m.EditFunc != nil {
		return m.EditFunc(ctx, image, instruction, cfg)
	}
	return &EditResult{Image: &EditedImage{Data: []byte("edited"), MIMEType: "image/png"}}, nil
}

func (m *MockEditor) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{}
}

func (m *MockEditor) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
