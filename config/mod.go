// Package config defines the settings shared by the registry and the codec.
//
// The settings can be loaded from a YAML file. Missing keys keep their
// default value. A process-wide value is available through Global so that
// components built without an explicit configuration share the same limits.
package config

import (
	"io/ioutil"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultMaxSchemaFields is the default maximum number of fields in a
	// schema.
	DefaultMaxSchemaFields = 256

	// DefaultMaxRecursionDepth is the default maximum depth of nested
	// messages.
	DefaultMaxRecursionDepth = 32

	// DefaultInternMaxLength is the default maximum length of a string that
	// can be interned.
	DefaultInternMaxLength = 64

	// DefaultLogLevel is the default level of the global logger.
	DefaultLogLevel = "info"
)

// Config holds the codec settings.
type Config struct {
	MaxSchemaFields   int    `yaml:"max_schema_fields"`
	MaxRecursionDepth int    `yaml:"max_recursion_depth"`
	InternStrings     bool   `yaml:"intern_strings"`
	InternMaxLength   int    `yaml:"intern_max_length"`
	LogLevel          string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxSchemaFields:   DefaultMaxSchemaFields,
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		InternStrings:     false,
		InternMaxLength:   DefaultInternMaxLength,
		LogLevel:          DefaultLogLevel,
	}
}

// Parse returns the configuration described by the YAML data. Keys that are
// not present keep their default value.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return cfg, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Default(), xerrors.Errorf("failed to read config file: %v", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return cfg, xerrors.Errorf("config '%s': %v", path, err)
	}

	return cfg, nil
}

// Validate returns an error if a setting is out of range.
func (c Config) Validate() error {
	if c.MaxSchemaFields <= 0 {
		return xerrors.Errorf("max_schema_fields must be positive, got %d",
			c.MaxSchemaFields)
	}

	if c.MaxRecursionDepth <= 0 {
		return xerrors.Errorf("max_recursion_depth must be positive, got %d",
			c.MaxRecursionDepth)
	}

	if c.InternMaxLength < 0 {
		return xerrors.Errorf("intern_max_length must not be negative, got %d",
			c.InternMaxLength)
	}

	_, err := c.Level()
	if err != nil {
		return err
	}

	return nil
}

// Level returns the zerolog level of the configuration. An empty level
// falls back to the default one.
func (c Config) Level() (zerolog.Level, error) {
	name := c.LogLevel
	if name == "" {
		name = DefaultLogLevel
	}

	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, xerrors.Errorf("invalid log level '%s'", c.LogLevel)
	}

	return lvl, nil
}

var (
	globalLock sync.RWMutex
	global     = Default()
)

// Global returns the process-wide configuration.
func Global() Config {
	globalLock.RLock()
	defer globalLock.RUnlock()

	return global
}

// SetGlobal replaces the process-wide configuration. It returns an error and
// keeps the previous value if the configuration is invalid.
func SetGlobal(cfg Config) error {
	err := cfg.Validate()
	if err != nil {
		return xerrors.Errorf("invalid config: %v", err)
	}

	globalLock.Lock()
	global = cfg
	globalLock.Unlock()

	return nil
}
