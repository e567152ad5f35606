package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Heksher        HeksherConfig
	Security       SecurityConfig
	Banner         BannerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig
	Export         ExportConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type HeksherConfig struct {
	// URL of the Heksher server, e.g. http://heksher:9999
	URL string `mapstructure:"url"`
	// Headers sent on every request to Heksher (e.g. auth tokens)
	Headers map[string]string `mapstructure:"headers"`
	TimeoutSeconds time.Duration `mapstructure:"timeout_seconds"`
	StartupRetry   RetryConfig   `mapstructure:"startup_retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type SecurityConfig struct {
	// IdentityHeader is the trusted header carrying the acting user,
	// populated by the fronting auth proxy.
	IdentityHeader string `mapstructure:"identity_header"`
	RequireUser    bool   `mapstructure:"require_user"`
}

type BannerConfig struct {
	Text      string `mapstructure:"text"`
	Color     string `mapstructure:"color"`
	TextColor string `mapstructure:"text_color"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

type ExportConfig struct {
	// MetadataFields are the rule metadata columns included in CSV exports
	// when the caller doesn't request a specific set.
	MetadataFields []string `mapstructure:"metadata_fields"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
