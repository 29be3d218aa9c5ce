package internal

import "github.com/kedbin/ai-devops-journal/internal/ocr"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	extractor ocr.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithExtractor overrides the configured OCR provider. Used by tests.
func WithExtractor(p ocr.Provider) Option {
	return func(a *application) {
		a.extractor = p
	}
}
