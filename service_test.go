package imageedit

import (
	"context"
	"errors"
	"testing"

	"github.com/mhpenta/imageedit/ratelimiter"
	"github.com/rs/zerolog"
)

func testModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:                  "test-model",
			Provider:              "test-provider",
			APIModelName:          "test-model-api",
			SupportedAspectRatios: []AspectRatio{AspectRatio1x1},
		},
	}
}

var testImage = InputImage{Data: []byte("PNGDATA"), MIMEType: "image/png"}

func newTestService(gen *MockEditor) *Service {
	if gen.ModelsFunc == nil {
		gen.ModelsFunc = testModels
	}
	return NewService(gen, WithLogger(zerolog.Nop()), WithDefaultModel("test-model"))
}

func TestService_Edit_RateLimit(t *testing.T) {
	mockGen := &MockEditor{
		ModelsFunc: func() []ModelInfo {
			models := testModels()
			models[0].RateLimits = RateLimits{
				TokensPerMinute:   100, // Smaller than one image
				RequestsPerMinute: 10,
			}
			return models
		},
	}

	svc := newTestService(mockGen)
	defer svc.Close()

	ctx := context.Background()

	// One image alone is estimated at 258 tokens, so this fails immediately.
	_, err := svc.Edit(ctx, testImage, "add a hat", nil)
	if err == nil {
		t.Fatal("expected rate limit error, got nil")
	}
	if !IsRateLimitError(err) {
		t.Errorf("expected RateLimitError, got %T: %v", err, err)
	}
	if Classify(err) != ErrorKindTransport {
		t.Errorf("rate limit should classify as transport, got %q", Classify(err))
	}

	// Now increase limit to allow it
	svc.SetRateLimiter("test-model", ratelimiter.New(1000, 10))

	result, err := svc.Edit(ctx, testImage, "add a hat", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Image == nil {
		t.Error("expected an image, got none")
	}
}

func TestService_Edit_ValidationSkipsProvider(t *testing.T) {
	called := false
	svc := newTestService(&MockEditor{
		EditFunc: func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
			called = true
			return nil, nil
		},
	})

	tests := []struct {
		name        string
		img         InputImage
		instruction string
		wantErr     error
	}{
		{"empty instruction", testImage, "", ErrEmptyInstruction},
		{"whitespace instruction", testImage, "   ", ErrEmptyInstruction},
		{"no image", InputImage{}, "add a hat", ErrEmptyImageData},
		{"bad mime", InputImage{Data: []byte("x"), MIMEType: "text/plain"}, "add a hat", ErrInvalidMIMEType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Edit(context.Background(), tt.img, tt.instruction, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Edit() error = %v, want %v", err, tt.wantErr)
			}
			if Classify(err) != ErrorKindValidation {
				t.Errorf("Classify() = %q, want validation", Classify(err))
			}
		})
	}

	if called {
		t.Error("provider must not be called for invalid requests")
	}
}

func TestService_Edit_RoutesToAPIModel(t *testing.T) {
	var gotModel Model
	var gotInstruction string
	svc := newTestService(&MockEditor{
		EditFunc: func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
			gotModel = cfg.Model
			gotInstruction = instruction
			return &EditResult{Image: &EditedImage{Data: []byte("HATTEDPNG"), MIMEType: "image/png"}, Text: "Added a hat"}, nil
		},
	})

	result, err := svc.Edit(context.Background(), testImage, "add a hat", &EditConfig{Model: "test-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModel != "test-model-api" {
		t.Errorf("provider got model %q, want test-model-api", gotModel)
	}
	if gotInstruction != "add a hat" {
		t.Errorf("provider got instruction %q", gotInstruction)
	}
	if result.Text != "Added a hat" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestService_Edit_EmptyResult(t *testing.T) {
	svc := newTestService(&MockEditor{
		EditFunc: func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
			return &EditResult{Text: "I cannot do that"}, nil
		},
	})

	_, err := svc.Edit(context.Background(), testImage, "remove background", nil)
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestService_Edit_TransportErrorPassesThrough(t *testing.T) {
	upstream := &TransportError{Model: "test-model-api", Err: errors.New("connection reset")}
	calls := 0
	svc := newTestService(&MockEditor{
		EditFunc: func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
			calls++
			return nil, upstream
		},
	})

	_, err := svc.Edit(context.Background(), testImage, "add a hat", nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one provider call, got %d", calls)
	}
}

func TestService_Edit_UnknownModel(t *testing.T) {
	svc := newTestService(&MockEditor{})

	_, err := svc.Edit(context.Background(), testImage, "add a hat", &EditConfig{Model: "missing"})
	if !errors.Is(err, ErrModelNotRegistered) {
		t.Errorf("expected ErrModelNotRegistered, got %v", err)
	}
}

func TestService_Edit_UnsupportedAspectRatio(t *testing.T) {
	svc := newTestService(&MockEditor{})

	_, err := svc.Edit(context.Background(), testImage, "add a hat", &EditConfig{AspectRatio: AspectRatio21x9})
	if !errors.Is(err, ErrUnsupportedRatio) {
		t.Errorf("expected ErrUnsupportedRatio, got %v", err)
	}

	_, err = svc.Edit(context.Background(), testImage, "add a hat", &EditConfig{AspectRatio: AspectRatio1x1})
	if err != nil {
		t.Errorf("supported ratio rejected: %v", err)
	}
}

func TestService_Close(t *testing.T) {
	closeErr := errors.New("boom")
	svc := newTestService(&MockEditor{
		CloseFunc: func() error { return closeErr },
	})

	if err := svc.Close(); !errors.Is(err, closeErr) {
		t.Errorf("expected close error to be joined, got %v", err)
	}
	if _, err := svc.Edit(context.Background(), testImage, "add a hat", nil); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("expected ErrProviderNotConfigured after Close, got %v", err)
	}
}

func TestService_DefaultModel(t *testing.T) {
	svc := newTestService(&MockEditor{})
	if svc.DefaultModel() != "test-model" {
		t.Errorf("DefaultModel() = %q", svc.DefaultModel())
	}
	if p, ok := svc.GetModelProvider("test-model"); !ok || p != "test-provider" {
		t.Errorf("GetModelProvider() = %q, %v", p, ok)
	}
	if len(svc.ListModels()) != 1 || len(svc.Models()) != 1 {
		t.Error("expected one registered model")
	}
}

type fixedEstimator int

func (f fixedEstimator) EstimateTokens(string, int) int { return int(f) }

func TestService_TokenEstimatorDrivesRateLimit(t *testing.T) {
	svc := NewService(&MockEditor{ModelsFunc: testModels},
		WithLogger(zerolog.Nop()),
		WithDefaultModel("test-model"),
		WithTokenEstimator(fixedEstimator(60)),
	)
	svc.SetRateLimiter("test-model", ratelimiter.New(100, 10))

	if _, err := svc.Edit(context.Background(), testImage, "add a hat", nil); err != nil {
		t.Fatalf("first edit should fit the budget: %v", err)
	}
	if _, err := svc.Edit(context.Background(), testImage, "add a hat", nil); !IsRateLimitError(err) {
		t.Errorf("second edit should exceed the budget, got %v", err)
	}
}

func TestService_ManualRegistration(t *testing.T) {
	var gotModel Model
	editor := &MockEditor{
		EditFunc: func(ctx context.Context, image InputImage, instruction string, cfg *EditConfig) (*EditResult, error) {
			gotModel = cfg.Model
			return &EditResult{Image: &EditedImage{Data: []byte("X"), MIMEType: "image/png"}}, nil
		},
	}

	svc := New().
		RegisterProvider("custom", editor).
		RegisterModel("mine", ModelMapping{Provider: "custom", ActualModelName: "mine-v1"}, nil).
		SetDefaultModel("mine").
		SetLogger(zerolog.Nop())

	cfg := DefaultConfig().WithModel("mine")
	if _, err := svc.Edit(context.Background(), testImage, "add a hat", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModel != "mine-v1" {
		t.Errorf("provider got model %q, want mine-v1", gotModel)
	}
	if cfg.Model != "mine" {
		t.Errorf("caller config mutated: %q", cfg.Model)
	}
}
