// Package config loads entregas settings from a YAML file.
//
// Values are resolved in order: built-in defaults, then the config file,
// then ENTREGAS_* variables from .env and the process environment, then
// command-line flags (applied by the cli package).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/entregas/internal/export"
	"github.com/roach88/entregas/internal/record"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "entregas.yaml"

// EnvFile is the dotenv file read from the working directory, if present.
const EnvFile = ".env"

// Environment variables that override file settings.
const (
	EnvDatabase       = "ENTREGAS_DB"
	EnvLogLevel       = "ENTREGAS_LOG_LEVEL"
	EnvPaymentMethods = "ENTREGAS_PAYMENT_METHODS" // comma-separated
)

var envKeys = []string{EnvDatabase, EnvLogLevel, EnvPaymentMethods}

// Config holds all settings.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database" validate:"notblank"`

	// PaymentMethods are the choices the creation path accepts.
	// An empty list accepts any method.
	PaymentMethods []string `yaml:"payment_methods" validate:"dive,notblank"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"loglevel"`

	Export ExportConfig `yaml:"export"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	// Sheet is the xlsx sheet name; Excel caps names at 31 characters.
	Sheet  string `yaml:"sheet" validate:"max=31"`
	Format string `yaml:"format" validate:"omitempty,exportformat"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:       "entregas.db",
		PaymentMethods: append([]string(nil), record.DefaultPaymentMethods...),
		LogLevel:       "info",
		Export: ExportConfig{
			Sheet:  export.DefaultSheet,
			Format: string(export.FormatXLSX),
		},
	}
}

// Load reads the config file at path over the defaults.
//
// An empty path reads DefaultPath if it exists. A path that was named
// explicitly must exist. Unknown keys are rejected to catch typos.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return finish(cfg, "environment")
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return finish(cfg, path)
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// finish applies environment overrides and validates the result.
// source names the origin in error messages.
func finish(cfg Config, source string) (Config, error) {
	env, err := Environment()
	if err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(env)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", source, err)
	}
	return cfg, nil
}

// Environment returns the ENTREGAS_* settings from EnvFile, overlaid by the
// process environment. The process environment itself is not modified.
func Environment() (map[string]string, error) {
	env := map[string]string{}

	if _, err := os.Stat(EnvFile); err == nil {
		vals, err := godotenv.Read(EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", EnvFile, err)
		}
		for _, key := range envKeys {
			if v, ok := vals[key]; ok {
				env[key] = v
			}
		}
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides settings with the given ENTREGAS_* values.
// An empty ENTREGAS_PAYMENT_METHODS accepts any method.
func (c *Config) ApplyEnv(env map[string]string) {
	if v, ok := env[EnvDatabase]; ok && v != "" {
		c.Database = v
	}
	if v, ok := env[EnvLogLevel]; ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := env[EnvPaymentMethods]; ok {
		c.PaymentMethods = nil
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				c.PaymentMethods = append(c.PaymentMethods, m)
			}
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := ParseLevel(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("exportformat", func(fl validator.FieldLevel) bool {
		_, err := export.ParseFormat(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field values and reports the first violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return fieldError(verrs[0])
}

// fieldError renders a validation failure in terms of the config keys.
func fieldError(fe validator.FieldError) error {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	value := fmt.Sprint(fe.Value())

	switch fe.Tag() {
	case "notblank":
		if key == "database" {
			return errors.New("database is required")
		}
		return fmt.Errorf("%s must not be empty", key)
	case "loglevel":
		_, err := ParseLevel(value)
		return err
	case "exportformat":
		_, err := export.ParseFormat(value)
		return err
	case "max":
		return fmt.Errorf("%s must be at most %s characters", key, fe.Param())
	}
	return fmt.Errorf("%s: failed %s validation", key, fe.Tag())
}

// Methods returns the payment methods for the engine, nil meaning any.
func (c Config) Methods() []string {
	if len(c.PaymentMethods) == 0 {
		return nil
	}
	return c.PaymentMethods
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", name)
}
