package imageedit

import (
	"github.com/rs/zerolog"
)

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets a structured logger for the service.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDefaultModel sets the default model used when config.Model is empty.
func WithDefaultModel(model Model) ServiceOption {
	return func(s *Service) {
		s.defaultModel = model
	}
}

// WithTokenEstimator replaces the estimator used for local rate limiting.
func WithTokenEstimator(est TokenEstimator) ServiceOption {
	return func(s *Service) {
		s.tokenEstimator = est
	}
}

// NewService creates a Service serving every model the provider advertises.
//
// Example:
//
//	editor, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	svc := imageedit.NewService(editor,
//	    imageedit.WithDefaultModel(imageedit.ModelNanoBanana2),
//	)
func NewService(defaultProvider Editor, opts ...ServiceOption) *Service {
	s := New()

	models := defaultProvider.Models()
	for i := range models {
		info := &models[i]

		s.providers[info.Provider] = defaultProvider

		s.RegisterModel(Model(info.Name),
			ModelMapping{
				Provider:        info.Provider,
				ActualModelName: info.APIModelName,
			},
			info)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
