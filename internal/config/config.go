package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the complete inkwell configuration.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Normalize  NormalizeConfig  `toml:"normalize"`
	Spellcheck SpellcheckConfig `toml:"spellcheck"`
	Plugins    PluginsConfig    `toml:"plugins"`
	Store      StoreConfig      `toml:"store"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" validate:"oneof=debug info warn error"`

	// File, when set, receives JSON logs rotated by size.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `toml:"max_age_days" validate:"gte=0"`
}

// NormalizeConfig configures the normalization engine.
type NormalizeConfig struct {
	MaxPasses int `toml:"max_passes" validate:"min=1"`
}

// SpellcheckConfig configures spellcheck coordination.
type SpellcheckConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce" validate:"gt=0"`

	// Language is the document language; empty falls back to the
	// environment locale.
	Language string `toml:"language"`

	// Dictionary is a word list file, one word per line.
	Dictionary string `toml:"dictionary"`
}

// PluginsConfig configures plugin loading.
type PluginsConfig struct {
	// Dir holds YAML plugin manifests and their Lua scripts.
	Dir   string `toml:"dir" validate:"required_if=Watch true"`
	Watch bool   `toml:"watch"`

	// CodeLanguage is the default language of inserted code blocks.
	CodeLanguage string `toml:"code_language"`

	// ImageMaxBytes caps inlined image data.
	ImageMaxBytes int `toml:"image_max_bytes" validate:"gte=0"`
}

// StoreConfig configures document persistence.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Duration is a time.Duration read from a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Normalize: NormalizeConfig{MaxPasses: 32},
		Spellcheck: SpellcheckConfig{
			Enabled:  true,
			Debounce: Duration{500 * time.Millisecond},
		},
		Plugins: PluginsConfig{ImageMaxBytes: 8 << 20},
		Store:   StoreConfig{Path: "inkwell.db"},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()
	return parse(path, f)
}

// LoadReader reads TOML from r over the defaults.
func LoadReader(r io.Reader) (*Config, error) {
	return parse("<reader>", r)
}

func parse(source string, r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their TOML keys and checks durations as
// nanosecond counts.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return int64(f.Interface().(Duration).Duration)
	}, Duration{})
	return v
}

// Validate checks settings that would otherwise fail later. The error names
// the first offending key, e.g. "normalize.max_passes".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Errorf("%w: %s %v (%s)", ErrInvalidValue, key, fe.Value(), rule)
}
