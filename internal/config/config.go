package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Invalid reading policies.
const (
	PolicySkip      = "skip"
	PolicyTerminate = "terminate"
)

const envPrefix = "THERMOLOG"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type RecorderConfig struct {
	InvalidReadingPolicy string `mapstructure:"invalid_reading_policy"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

type AuthConfig struct {
	SigningKey   string        `mapstructure:"signing_key"`
	Username     string        `mapstructure:"username"`
	PasswordHash string        `mapstructure:"password_hash"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`
}

var (
	errUnknownBackend = errors.New("storage.backend must be file or sqlite")
	errUnknownPolicy  = errors.New("recorder.invalid_reading_policy must be skip or terminate")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", ".")
	v.SetDefault("storage.sqlite_path", "thermolog.db")
	v.SetDefault("recorder.invalid_reading_policy", PolicySkip)
	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", "8080")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
	v.SetDefault("sentry.release", "")
}

// Load reads configs/config.yml (if present) from each of the given search
// paths, applies THERMOLOG_* env overrides and validates the result.
// With no paths it searches "configs".
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: got %q", errUnknownBackend, c.Storage.Backend)
	}

	c.Recorder.InvalidReadingPolicy = strings.ToLower(strings.TrimSpace(c.Recorder.InvalidReadingPolicy))
	switch c.Recorder.InvalidReadingPolicy {
	case PolicySkip, PolicyTerminate:
	default:
		return fmt.Errorf("%w: got %q", errUnknownPolicy, c.Recorder.InvalidReadingPolicy)
	}
	return nil
}
