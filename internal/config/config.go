package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/lineview/internal/config/loader"
	"github.com/dshills/lineview/internal/logging"
)

// EnvPrefix prefixes environment variable overrides, e.g. LINEVIEW_TAB_WIDTH.
const EnvPrefix = "LINEVIEW_"

// Config holds the settings for an editor run.
type Config struct {
	// Prompt is the primary prompt. It may contain SGR sequences.
	Prompt string `toml:"prompt" yaml:"prompt"`

	// ContinuationPrompt is drawn before each line after the first.
	ContinuationPrompt string `toml:"continuation_prompt" yaml:"continuation_prompt"`

	// PromptScript is an optional Lua file defining prompt() and
	// continuation(n). The static prompts are used when it fails.
	PromptScript string `toml:"prompt_script" yaml:"prompt_script"`

	TabWidth     int  `toml:"tab_width" yaml:"tab_width"`
	MaxRows      int  `toml:"max_rows" yaml:"max_rows"`
	WriteRetries int  `toml:"write_retries" yaml:"write_retries"`
	Mouse        bool `toml:"mouse" yaml:"mouse"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFile receives log output. Empty disables logging.
	LogFile string `toml:"log_file" yaml:"log_file"`
}

// keys lists every setting name, in declaration order.
var keys = []string{
	"prompt", "continuation_prompt", "prompt_script", "tab_width",
	"max_rows", "write_retries", "mouse", "log_level", "log_file",
}

var stringKeys = []string{"prompt", "continuation_prompt", "prompt_script", "log_level", "log_file"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Prompt:             "$ ",
		ContinuationPrompt: "> ",
		TabWidth:           8,
		MaxRows:            1000,
		WriteRetries:       3,
		Mouse:              true,
		LogLevel:           "info",
	}
}

// DefaultPath returns the user configuration file path, or "" when the
// user configuration directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lineview", "config.toml")
}

// Load builds a configuration from the defaults, the file at path (TOML or
// YAML by extension; a missing file is not an error) and LINEVIEW_
// environment variables, in increasing priority. The result is validated.
func Load(path string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS is Load reading files from fsys.
func LoadFS(fsys loader.FileSystem, path string) (*Config, error) {
	var merged map[string]any

	if path != "" {
		file, err := loader.ForPath(fsys, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	env, err := loader.NewEnvLoader(EnvPrefix, keys...).Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, env)

	cfg, err := decode(merged)
	if err != nil {
		source := path
		if source == "" {
			source = "environment"
		}
		return nil, fmt.Errorf("config %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies settings over the defaults. Unknown keys are rejected.
func decode(settings map[string]any) (*Config, error) {
	cfg := Default()
	if len(settings) == 0 {
		return &cfg, nil
	}

	for _, k := range stringKeys {
		if v, ok := settings[k]; ok {
			settings[k] = fmt.Sprint(v)
		}
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return nil, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting and reports the first invalid one.
func (c *Config) Validate() error {
	switch {
	case c.TabWidth < 1 || c.TabWidth > 32:
		return &ValidationError{Field: "tab_width", Value: c.TabWidth, Message: "must be between 1 and 32"}
	case c.MaxRows < 1:
		return &ValidationError{Field: "max_rows", Value: c.MaxRows, Message: "must be positive"}
	case c.WriteRetries < 0:
		return &ValidationError{Field: "write_retries", Value: c.WriteRetries, Message: "must not be negative"}
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return &ValidationError{Field: "log_level", Value: c.LogLevel, Message: "must be debug, info, warn or error"}
	}
	return nil
}

// Keys returns the setting names.
func Keys() []string {
	return slices.Clone(keys)
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}

// Retries converts WriteRetries to the renderer convention, where zero
// selects the default and a negative value disables retries.
func (c *Config) Retries() int {
	if c.WriteRetries == 0 {
		return -1
	}
	return c.WriteRetries
}
