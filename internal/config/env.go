package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INKWELL_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// envSetting applies one variable to the config.
type envSetting func(c *Config, val string) error

func stringSetting(field func(*Config) *string) envSetting {
	return func(c *Config, val string) error {
		*field(c) = val
		return nil
	}
}

func boolSetting(field func(*Config) *bool) envSetting {
	return func(c *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func intSetting(field func(*Config) *int) envSetting {
	return func(c *Config, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// envMapping maps variable names, without the prefix, to settings.
var envMapping = map[string]envSetting{
	"LOG_LEVEL":             stringSetting(func(c *Config) *string { return &c.Log.Level }),
	"LOG_FILE":              stringSetting(func(c *Config) *string { return &c.Log.File }),
	"NORMALIZE_MAX_PASSES":  intSetting(func(c *Config) *int { return &c.Normalize.MaxPasses }),
	"SPELLCHECK_ENABLED":    boolSetting(func(c *Config) *bool { return &c.Spellcheck.Enabled }),
	"SPELLCHECK_LANGUAGE":   stringSetting(func(c *Config) *string { return &c.Spellcheck.Language }),
	"SPELLCHECK_DICTIONARY": stringSetting(func(c *Config) *string { return &c.Spellcheck.Dictionary }),
	"SPELLCHECK_DEBOUNCE": func(c *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		c.Spellcheck.Debounce = Duration{d}
		return nil
	},
	"PLUGINS_DIR":   stringSetting(func(c *Config) *string { return &c.Plugins.Dir }),
	"PLUGINS_WATCH": boolSetting(func(c *Config) *bool { return &c.Plugins.Watch }),
	"STORE_PATH":    stringSetting(func(c *Config) *string { return &c.Store.Path }),
}

// ApplyEnv overrides settings from INKWELL_* variables. A nil lookup reads
// the process environment. Empty values are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, apply := range envMapping {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := apply(c, val); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidValue, EnvPrefix, name, val, err)
		}
	}
	return nil
}

// EnvFileLookup returns a lookup that reads the process environment first
// and falls back to the variables in a dotenv file.
func EnvFileLookup(path string) (LookupFunc, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}
