package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "LINEVIEW_")
	mapping map[string]string // Env var -> config key
}

// NewEnvLoader creates a loader reading prefix+KEY for each key, with the
// key upper-cased: prefix "LINEVIEW_" and key "tab_width" read
// LINEVIEW_TAB_WIDTH.
func NewEnvLoader(prefix string, keys ...string) *EnvLoader {
	mapping := make(map[string]string, len(keys))
	for _, k := range keys {
		mapping[prefix+strings.ToUpper(k)] = k
	}
	return NewEnvLoaderWithMapping(prefix, mapping)
}

// NewEnvLoaderWithMapping creates a loader with explicit variable names.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// Load reads the mapped environment variables. Variables that are not set
// are omitted; empty values are kept.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, key := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			config[key] = parseValue(val)
		}
	}
	return config, nil
}

// Prefix returns the variable prefix.
func (l *EnvLoader) Prefix() string {
	return l.prefix
}

// parseValue converts integers and booleans, leaving everything else as a
// string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	return s
}
