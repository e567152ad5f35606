package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Heksher: HeksherConfig{URL: "http://heksher:9999"},
		Server:  ServerConfig{Port: 8888},
	}
}

func TestValidateStatic(t *testing.T) {
	assert.NoError(t, ValidateStatic(validConfig()))
}

func TestValidateStatic_MissingHeksherURL(t *testing.T) {
	cfg := validConfig()
	cfg.Heksher.URL = ""
	assert.ErrorContains(t, ValidateStatic(cfg), "heksher.url is required")
}

func TestValidateStatic_InvalidHeksherURL(t *testing.T) {
	cfg := validConfig()
	cfg.Heksher.URL = "not a url"
	assert.ErrorContains(t, ValidateStatic(cfg), "not a valid URL")
}

func TestValidateStatic_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.ErrorContains(t, ValidateStatic(cfg), "server.port")
}

func TestValidateStatic_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Enabled = true
	assert.ErrorContains(t, ValidateStatic(cfg), "rate_limit.rps")

	cfg.RateLimit.RPS = 10
	assert.ErrorContains(t, ValidateStatic(cfg), "rate_limit.burst")

	cfg.RateLimit.Burst = 20
	assert.NoError(t, ValidateStatic(cfg))
}

func TestValidateStatic_CircuitBreakerRatio(t *testing.T) {
	cfg := validConfig()
	cfg.CircuitBreaker.Enabled = true
	cfg.CircuitBreaker.FailureRatio = 1.5
	assert.ErrorContains(t, ValidateStatic(cfg), "failure_ratio")
}

func TestValidateStatic_TracingEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	assert.ErrorContains(t, ValidateStatic(cfg), "tracing.otlp.endpoint")
}
