// Package config holds the CLI configuration, loaded from an optional YAML
// file with flag overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/keyline-tools/keyline/api"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the CLI configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Document   DocumentConfig   `yaml:"document"`
	Annotation AnnotationConfig `yaml:"annotation"`
}

// LogLevel is a slog.Level that decodes from YAML as either a level name
// ("DEBUG") or a number (-4).
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		l.Level = slog.Level(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return l.Level.UnmarshalText([]byte(s))
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel LogLevel `yaml:"log_level"`
	Format   string   `yaml:"format"`
}

// DocumentConfig points at the design document to operate on.
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// AnnotationConfig holds annotation defaults.
type AnnotationConfig struct {
	DefaultKind string `yaml:"default_kind"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: LogLevel{slog.LevelInfo},
			Format:   FormatText,
		},
		Annotation: AnnotationConfig{
			DefaultKind: string(api.KindKeystop),
		},
	}
}

// Load reads the YAML config at path. A missing file yields the defaults;
// anything else that goes wrong is surfaced.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Annotation.Validate()
}

// Validate validates application settings.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required, validation.In(FormatText, FormatJSON)),
	)
}

// Validate validates annotation defaults.
func (c *AnnotationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultKind, validation.Required,
			validation.By(func(v any) error {
				if !api.Kind(v.(string)).Valid() {
					return fmt.Errorf("unknown annotation kind %q", v)
				}
				return nil
			})),
	)
}
