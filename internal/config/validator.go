package config

import (
	"fmt"
	"net/url"
)

// ValidateStatic checks everything that can be verified without talking to
// the Heksher server.
func ValidateStatic(cfg *Config) error {
	if cfg.Heksher.URL == "" {
		return fmt.Errorf("heksher.url is required")
	}
	if _, err := url.ParseRequestURI(cfg.Heksher.URL); err != nil {
		return fmt.Errorf("heksher.url is not a valid URL: %w", err)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate_limit.rps must be positive when rate limiting is enabled")
		}
		if cfg.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive when rate limiting is enabled")
		}
	}

	if cfg.CircuitBreaker.Enabled {
		if cfg.CircuitBreaker.FailureRatio < 0 || cfg.CircuitBreaker.FailureRatio > 1 {
			return fmt.Errorf("circuit_breaker.failure_ratio must be between 0 and 1")
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.OTLP.Endpoint == "" {
		return fmt.Errorf("tracing.otlp.endpoint is required when tracing is enabled")
	}

	for _, field := range cfg.Export.MetadataFields {
		if field == "" {
			return fmt.Errorf("export.metadata_fields must not contain empty names")
		}
	}

	return nil
}
