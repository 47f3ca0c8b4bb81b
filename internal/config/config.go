package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/validator"
)

type PlatformConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"  validate:"required"`
}

type LimitsConfig struct {
	// echo BodyLimit sizes, e.g. "24M"
	GenericBody string `mapstructure:"generic_body" validate:"required"`
	ClaimBody   string `mapstructure:"claim_body"   validate:"required"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type LoggingConfig struct {
	App     SlogConfig `mapstructure:"app"`
	UseOTLP bool       `mapstructure:"use_otlp"`
}

type RateLimitConfig struct {
	RedisHost       string `mapstructure:"redis_host"`
	SubmitPerMinute int64  `mapstructure:"submit_per_minute"`
	FailOpen        bool   `mapstructure:"fail_open"`
}

// See claimintake.example.yaml for an example config
type Config struct {
	Platform             *PlatformConfig  `mapstructure:"platform"               validate:"required"`
	Limits               *LimitsConfig    `mapstructure:"limits"                 validate:"required"`
	Logging              *LoggingConfig   `mapstructure:"logging"                validate:"required"`
	RateLimit            *RateLimitConfig `mapstructure:"ratelimit"`
	ListenAddress        string           `mapstructure:"listen_address"         validate:"required"`
	GracefulShutdownSecs int64            `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel          string = "logging.app.level"
	ClaimBodyLimit       string = "limits.claim_body"
	EnvPrefix            string = "claimintake"
	GenericBodyLimit     string = "limits.generic_body"
	GracefulShutdownSecs string = "graceful_shutdown_secs"
	ListenAddress        string = "listen_address"
	PlatformAPIKey       string = "platform.api_key" // #nosec
	PlatformBaseURL      string = "platform.base_url"
	RateLimitFailOpen    string = "ratelimit.fail_open"
	RedisHost            string = "ratelimit.redis_host"
	SubmitPerMinute      string = "ratelimit.submit_per_minute"
	UseOTLP              string = "logging.use_otlp"
)

const DefaultPlatformBaseURL = "https://sandbox.uk.rootplatform.com/v1/insurance"

// Body ceilings sized for a full submission. A 4 MiB image is 5,592,408 bytes
// once base64 encoded, so four of them (generic) need 22.4MB and five (claim
// scoped) need 28MB. The rest is room for the text fields and JSON framing.
const (
	DefaultGenericBodyLimit = "24M"
	DefaultClaimBodyLimit   = "30M"
)

// Raised when the process cannot be configured to talk to the platform.
// Always fatal, surfaced before any network call.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration error: %s", e.Key)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Err.Error())
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

var ErrMissingAPIKey = errors.New("ROOT_API_KEY not set in env")

var loaded *Config

// Loads the config once per process
func GetConfig() (*Config, error) {
	if loaded != nil {
		logger.Logger.Debug("returning already-loaded config")
		return loaded, nil
	}

	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	loaded = cfg
	return loaded, nil
}

// Builds a fresh config from .env, claimintake.yaml and the environment
func Load() (*Config, error) {
	logger.Logger.Info("loading config")

	// values already in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("claimintake")

	v.AddConfigPath("/etc/claimintake/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// the platform settings keep the names the deployment already uses
	err := v.BindEnv(PlatformAPIKey, "ROOT_API_KEY", "CLAIMINTAKE_PLATFORM_API_KEY")
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(PlatformBaseURL, "ROOT_API_BASE_URL", "CLAIMINTAKE_PLATFORM_BASE_URL")
	if err != nil {
		return nil, err
	}

	v.SetDefault(ListenAddress, "[::]:3000")
	v.SetDefault(GracefulShutdownSecs, 30)
	v.SetDefault(PlatformBaseURL, DefaultPlatformBaseURL)
	v.SetDefault(GenericBodyLimit, DefaultGenericBodyLimit)
	v.SetDefault(ClaimBodyLimit, DefaultClaimBodyLimit)
	v.SetDefault(AppLogLevel, int(slog.LevelInfo))
	v.SetDefault(UseOTLP, false)

	v.SetDefault(RedisHost, "localhost")
	v.SetDefault(SubmitPerMinute, 0)
	v.SetDefault(RateLimitFailOpen, true)

	err = v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Platform == nil || cfg.Platform.APIKey == "" {
		return nil, &ConfigurationError{Key: PlatformAPIKey, Err: ErrMissingAPIKey}
	}

	valid := validator.Create()
	err = valid.Validate(&cfg)
	if err != nil {
		return nil, &ConfigurationError{Key: "config", Err: err}
	}

	return &cfg, nil
}
