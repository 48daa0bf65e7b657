package config

// Config holds all configuration for the application
type Config struct {
	// DataDir is the directory where change and incident exports are stored
	DataDir string

	// APIPort is the port the API server listens on
	APIPort int

	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel string

	// AnalyticsConfigPath is the path to the YAML file containing analytics
	// thresholds. Empty means built-in defaults.
	AnalyticsConfigPath string

	// MaxConcurrentRequests is the maximum number of concurrent API requests
	MaxConcurrentRequests int

	// CacheEnabled indicates whether analysis response caching is enabled
	CacheEnabled bool

	// CacheMaxEntries is the maximum number of cached analysis responses
	CacheMaxEntries int

	// CacheTTLSeconds is the lifetime of a cached analysis response
	CacheTTLSeconds int

	// TracingEnabled indicates whether OpenTelemetry tracing is enabled
	TracingEnabled bool

	// TracingEndpoint is the OTLP gRPC endpoint for trace export
	TracingEndpoint string

	// TracingTLSCAPath is the path to the CA certificate for TLS verification
	TracingTLSCAPath string
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return NewConfigError("DataDir must not be empty")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return NewConfigError("APIPort must be between 1 and 65535")
	}

	if c.MaxConcurrentRequests < 1 {
		return NewConfigError("MaxConcurrentRequests must be at least 1")
	}

	if c.CacheEnabled && c.CacheMaxEntries < 1 {
		return NewConfigError("CacheMaxEntries must be at least 1 when cache is enabled")
	}

	if c.CacheEnabled && c.CacheTTLSeconds < 1 {
		return NewConfigError("CacheTTLSeconds must be at least 1 when cache is enabled")
	}

	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("TracingEndpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
