// Package confloader loads server configuration from multiple sources.
//
// It uses koanf with the priority Env > File > Default: defaults are
// seeded from the typed config struct, a YAML file may override them,
// and ESRIAGOL_-prefixed environment variables override everything.
package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "ESRIAGOL_"

// Loader loads configuration from file and environment sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures the Loader.
type Option func(*Loader)

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the configuration file path. An empty path means
// no file source.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges all sources in priority order and unmarshals the result
// into target, which must be pre-populated with defaults.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}

	if err := l.loadEnv(); err != nil {
		return err
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// loadEnv maps ESRIAGOL_GATEWAY_ADMIN_KEY to gateway.admin_key and so
// on. Section names never contain underscores, so only the first token
// becomes a path segment; the rest stays joined as the leaf key. The
// server.http subtree is the one nested section and is handled
// explicitly.
func (l *Loader) loadEnv() error {
	transform := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		if rest, ok := strings.CutPrefix(s, "server_http_"); ok {
			return "server.http." + rest
		}
		parts := strings.SplitN(s, "_", 2)
		return strings.Join(parts, ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Get returns a raw configuration value by dotted key, mainly for
// diagnostics.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}
