package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

type Config struct {
	LogLevel   string           `mapstructure:"log_level" envconfig:"LOG_LEVEL" default:"info"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type EncryptionConfig struct {
	// PreferredAlgorithm names the encode-time default. Unknown or
	// unavailable values fall back to AES-256-GCM unless Strict is set.
	PreferredAlgorithm string `mapstructure:"preferred_algorithm" envconfig:"ENCRYPTION_ALGORITHM" default:"AES-256-GCM"`
	Strict             bool   `mapstructure:"strict" envconfig:"ENCRYPTION_STRICT" default:"false"`

	// Unwrap throttling guards password-unwrap against brute forcing.
	UnwrapRatePerSecond float64 `mapstructure:"unwrap_rate_per_second" envconfig:"UNWRAP_RATE_PER_SECOND" default:"5"`
	UnwrapBurst         int     `mapstructure:"unwrap_burst" envconfig:"UNWRAP_BURST" default:"10"`

	// Derived-key cache sizing. A zero size disables the cache.
	DerivedKeyCacheSize int           `mapstructure:"derived_key_cache_size" envconfig:"DERIVED_KEY_CACHE_SIZE" default:"64"`
	DerivedKeyCacheTTL  time.Duration `mapstructure:"derived_key_cache_ttl" envconfig:"DERIVED_KEY_CACHE_TTL" default:"5m"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" envconfig:"METRICS_ENABLED" default:"false"`
	Namespace string `mapstructure:"namespace" envconfig:"METRICS_NAMESPACE" default:"seamless_encryptor"`
}

func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Encryption.PreferredAlgorithm != "" {
		if _, err := types.ParseAlgorithm(cfg.Encryption.PreferredAlgorithm); err != nil {
			// With fallback enabled an unknown name is still usable; in
			// strict mode it would make every encode fail, so reject it
			// up front.
			if cfg.Encryption.Strict {
				return fmt.Errorf("unknown preferred algorithm: %s", cfg.Encryption.PreferredAlgorithm)
			}
		}
	}

	if cfg.Encryption.UnwrapRatePerSecond < 0 {
		return fmt.Errorf("unwrap rate must be non-negative")
	}
	if cfg.Encryption.UnwrapBurst < 0 {
		return fmt.Errorf("unwrap burst must be non-negative")
	}
	if cfg.Encryption.DerivedKeyCacheSize < 0 {
		return fmt.Errorf("derived key cache size must be non-negative")
	}

	return nil
}
