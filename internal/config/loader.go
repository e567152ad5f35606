package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()

	// The config file is optional: a deployment may be driven entirely by
	// environment variables.
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("heksher.url", "HEKSHER_URL")
	viper.BindEnv("heksher.timeout_seconds", "HEKSHER_TIMEOUT_SECONDS")

	viper.BindEnv("security.identity_header", "SECURITY_IDENTITY_HEADER")
	viper.BindEnv("security.require_user", "SECURITY_REQUIRE_USER")

	viper.BindEnv("banner.text", "BANNER_TEXT")
	viper.BindEnv("banner.color", "BANNER_COLOR")
	viper.BindEnv("banner.text_color", "BANNER_TEXT_COLOR")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyDefaults(cfg *Config) {
	if cfg.Security.IdentityHeader == "" {
		cfg.Security.IdentityHeader = "X-Forwarded-Email"
	}
	if cfg.Banner.Text != "" {
		if cfg.Banner.Color == "" {
			cfg.Banner.Color = "yellow"
		}
		if cfg.Banner.TextColor == "" {
			cfg.Banner.TextColor = "black"
		}
	}
	if len(cfg.Export.MetadataFields) == 0 {
		cfg.Export.MetadataFields = []string{"added_by", "information", "date"}
	}
}
