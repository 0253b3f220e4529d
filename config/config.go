// Package config provides configuration management for the relay.
//
// Configuration is assembled once at startup from three sources, in order:
// built-in defaults, an optional YAML file, and the process environment
// (optionally seeded from an env file such as gemini.env). The resulting
// Config is treated as immutable and passed explicitly to the components
// that need it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIKey is the environment variable holding the Gemini API key.
	EnvAPIKey = "GEMINI_API_KEY"

	// DefaultEnvFile is loaded into the environment at startup when present.
	DefaultEnvFile = "gemini.env"

	DefaultPort     = 3000
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"
)

// ErrMissingAPIKey is returned by Validate when no API key was configured.
var ErrMissingAPIKey = errors.New("API key is missing: set " + EnvAPIKey)

// Config represents the complete relay configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Gemini         GeminiConfig         `yaml:"gemini"`
	Logging        LoggingConfig        `yaml:"logging"`
	CORS           CORSConfig           `yaml:"cors"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds settings for the inbound HTTP server.
type ServerConfig struct {
	// Port is the TCP port to listen on (default: 3000)
	Port int `yaml:"port" validate:"gte=0,lte=65535"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Zero means no timeout.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero means no timeout.
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`

	// MaxHeaderBytes limits request header size (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// GeminiConfig describes the outbound generative-language API.
type GeminiConfig struct {
	// APIKey authenticates outbound calls. It is sent as the "key" query parameter.
	// Prefer ${GEMINI_API_KEY} or the env file over writing the key into YAML.
	APIKey string `yaml:"api_key"`

	// Endpoint is the API base URL, without the model path.
	Endpoint string `yaml:"endpoint" validate:"required,url"`

	// Model selects the model path segment, e.g. "gemini-2.0-flash".
	Model string `yaml:"model" validate:"required"`

	// Timeout caps each outbound call. Zero leaves the transport default in place.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format specifies log output format: json or text
	Format string `yaml:"format" validate:"oneof=json text"`
}

// CORSConfig controls cross-origin access to the relay.
type CORSConfig struct {
	// AllowedOrigins lists permitted origins. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// CircuitBreakerConfig configures the optional breaker in front of the upstream.
// It is disabled by default so that every valid request reaches the API.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled"`

	// MaxRequests is the number of requests allowed through while half-open
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state for clearing counts
	Interval time.Duration `yaml:"interval" validate:"gte=0"`

	// Timeout is the period of the open state before it becomes half-open
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// FailureThreshold is the number of consecutive failures that trips the breaker
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// DefaultConfig returns the configuration used when nothing else is supplied.
// It preserves the historical behavior: port 3000, any origin, gemini-2.0-flash.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Gemini: GeminiConfig{
			Endpoint: DefaultEndpoint,
			Model:    DefaultModel,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          false,
			MaxRequests:      1,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// LoadFile loads configuration from a YAML file.
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes YAML from r on top of DefaultConfig. ${VAR} and
// ${VAR:-default} references are expanded from the environment first.
// The result is not validated; call ApplyEnv and then Validate.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(expandEnvVars(string(data))))
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return config, nil
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references.
// An unset or empty VAR with a default yields the default.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			if val := os.Getenv(key[:i]); val != "" {
				return val
			}
			return key[i+2:]
		}
		return os.Getenv(key)
	})
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left untouched, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv fills values that were not set in the config file from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = strings.TrimSpace(getenv(EnvAPIKey))
	}
}

// Validate checks if the configuration is valid. A missing API key is
// reported as ErrMissingAPIKey so callers can treat it specially.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %v fails %q", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics enabled but path is empty")
	}
	if c.CircuitBreaker.Enabled && c.CircuitBreaker.FailureThreshold == 0 {
		return fmt.Errorf("circuit breaker enabled but failure_threshold is 0")
	}

	return nil
}

// Address returns the listen address for the configured port.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
