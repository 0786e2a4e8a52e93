// Package config loads runtime settings for the CLI and the preview server
// from an optional config file, a .env file and FORMSCREEN_ environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FORMSCREEN_ADDRESS.
const EnvPrefix = "FORMSCREEN"

// Config holds the settings shared by every command.
type Config struct {
	Address           string        `mapstructure:"address" validate:"required"`
	DefinitionsDir    string        `mapstructure:"definitions_dir"`
	DefaultLocale     string        `mapstructure:"default_locale" validate:"required"`
	LocalesDir        string        `mapstructure:"locales_dir"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout" validate:"gte=0"`
	SubmitErrorPolicy string        `mapstructure:"submit_error_policy" validate:"oneof=surface log"`
	Theme             string        `mapstructure:"theme"`
	ThemeVariant      string        `mapstructure:"theme_variant"`
	AssetsPrefix      string        `mapstructure:"assets_prefix" validate:"startswith=/"`
	LogLevel          string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat         string        `mapstructure:"log_format" validate:"oneof=text json"`
	AllowRemoteSpecs  bool          `mapstructure:"allow_remote_specs"`
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file     string
	dotenv   []string
	lookup   func(string) (string, bool)
	override map[string]any
}

// WithFile reads settings from path. Missing explicit files are an error.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithDotEnv loads the given .env files before reading the environment.
// Missing files are skipped. Defaults to ".env".
func WithDotEnv(paths ...string) Option {
	return func(o *loadOptions) {
		o.dotenv = paths
	}
}

// WithOverrides applies values with the highest precedence, typically CLI
// flags. Keys use the mapstructure names, e.g. "address".
func WithOverrides(values map[string]any) Option {
	return func(o *loadOptions) {
		for key, value := range values {
			o.override[key] = value
		}
	}
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Config {
	return Config{
		Address:           ":8080",
		DefinitionsDir:    "definitions",
		DefaultLocale:     "en",
		FetchTimeout:      10 * time.Second,
		SubmitErrorPolicy: "surface",
		Theme:             "formscreen",
		AssetsPrefix:      "/assets",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load resolves the configuration.
func Load(options ...Option) (Config, error) {
	opts := loadOptions{
		dotenv:   []string{".env"},
		override: make(map[string]any),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	for _, path := range opts.dotenv {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	defaults := Defaults()
	v.SetDefault("address", defaults.Address)
	v.SetDefault("definitions_dir", defaults.DefinitionsDir)
	v.SetDefault("default_locale", defaults.DefaultLocale)
	v.SetDefault("locales_dir", defaults.LocalesDir)
	v.SetDefault("fetch_timeout", defaults.FetchTimeout)
	v.SetDefault("submit_error_policy", defaults.SubmitErrorPolicy)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("theme_variant", defaults.ThemeVariant)
	v.SetDefault("assets_prefix", defaults.AssetsPrefix)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("allow_remote_specs", defaults.AllowRemoteSpecs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.file != "" {
		v.SetConfigFile(opts.file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.file, err)
		}
	}
	for key, value := range opts.override {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.SubmitErrorPolicy = strings.ToLower(strings.TrimSpace(cfg.SubmitErrorPolicy))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value constraints.
func (c Config) Validate() error {
	if err := playground.New().Struct(c); err != nil {
		var fieldErrs playground.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("config: invalid %s (%s=%s)", first.Namespace(), first.Tag(), first.Param())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
