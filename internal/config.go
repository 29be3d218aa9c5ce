package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// OCR providers.
const (
	OCRProviderAzure     = "azure"
	OCRProviderTesseract = "tesseract"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Archive   ArchiveConfig     `yaml:"archive"`
	Index     IndexConfig       `yaml:"index"`
	Auth      AuthConfig        `yaml:"auth"`
	OCR       OCRConfig         `yaml:"ocr"`
	Synthesis SynthesisConfig   `yaml:"synthesis"`
	Links     LinksConfig       `yaml:"links"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.OCR.Validate(); err != nil {
		return err
	}
	if err := c.Synthesis.Validate(); err != nil {
		return err
	}
	return c.Links.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ArchiveConfig holds the path to the document archive directory.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds SQLite entry index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request is mapped to Subject without a
//     credential check, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode    string `yaml:"mode"`
	Token   string `yaml:"token"`
	Subject string `yaml:"subject"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if c.Subject == "" {
		c.Subject = "default"
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when credential checks are active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// OCRConfig selects and configures the text recognition provider.
//
// Provider "azure" calls the Azure AI Vision Read API and requires Endpoint
// and Key. Provider "tesseract" runs recognition locally and needs neither.
type OCRConfig struct {
	Provider string   `yaml:"provider"`
	Endpoint string   `yaml:"endpoint"`
	Key      string   `yaml:"key"`
	Language string   `yaml:"language"`
	Timeout  Duration `yaml:"timeout"`
}

// Validate validates the OCR configuration.
func (c *OCRConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = OCRProviderAzure
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(OCRProviderAzure, OCRProviderTesseract)),
	); err != nil {
		return err
	}
	if c.Provider == OCRProviderAzure {
		return validation.ValidateStruct(c,
			validation.Field(&c.Endpoint, validation.Required),
			validation.Field(&c.Key, validation.Required),
		)
	}
	return nil
}

// SynthesisConfig configures the generative-text enrichment provider.
type SynthesisConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Validate validates the synthesis configuration.
func (c *SynthesisConfig) Validate() error {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-20250514"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

// LinksConfig configures signed download link issuance.
type LinksConfig struct {
	Secret  string   `yaml:"secret"`
	BaseURL string   `yaml:"base_url"`
	TTL     Duration `yaml:"ttl"`
}

// Validate validates the links configuration.
func (c *LinksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Archive: ArchiveConfig{
			Path: "./archive",
		},
		Index: IndexConfig{
			Path: "./journal.db",
		},
		Auth: AuthConfig{
			Mode:    AuthModeDisabled,
			Subject: "default",
		},
		OCR: OCRConfig{
			Provider: OCRProviderAzure,
			Language: "en",
			Timeout:  Duration(30 * time.Second),
		},
		Synthesis: SynthesisConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 2048,
		},
		Links: LinksConfig{
			BaseURL: "http://localhost:8080/d",
			TTL:     Duration(15 * time.Minute),
		},
	}
}
