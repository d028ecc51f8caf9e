package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Mock    MockConfig        `yaml:"mock"`
	SSE     SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Mock.Validate(); err != nil {
		return err
	}
	return c.SSE.Validate()
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

// CatalogConfig points at the YAML catalog file. An empty path or a missing
// file serves the built-in catalog; an existing file is watched for changes.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MockConfig controls the synthetic frame source.
type MockConfig struct {
	LatencyMin   time.Duration `yaml:"latency_min"`
	LatencyMax   time.Duration `yaml:"latency_max"`
	ImageBaseURL string        `yaml:"image_base_url"`
}

// Validate validates the mock configuration.
func (c *MockConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LatencyMin, validation.Min(time.Duration(0))),
		validation.Field(&c.LatencyMax, validation.Min(time.Duration(0))),
		validation.Field(&c.ImageBaseURL, validation.Required),
	); err != nil {
		return err
	}
	if c.LatencyMax < c.LatencyMin {
		return fmt.Errorf("mock: latency_max %s is below latency_min %s", c.LatencyMax, c.LatencyMin)
	}
	return nil
}

// SSEConfig holds event stream configuration.
type SSEConfig struct {
	// Throttle is the minimum gap between catalog.updated events.
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
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
		Catalog: CatalogConfig{
			Path: "./config/catalog.yaml",
		},
		SQLite: SQLiteConfig{
			Path: "./scenaview.db",
		},
		Mock: MockConfig{
			LatencyMin:   100 * time.Millisecond,
			LatencyMax:   300 * time.Millisecond,
			ImageBaseURL: "https://images.pexels.com/photos",
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
	}
}
