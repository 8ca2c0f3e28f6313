// Package config loads and saves config.yaml (§6). The core only
// consumes a handful of fields from it — an optional default remote,
// optional auth tokens, hooks settings, semantic-search toggle, and
// the remote fetch timeout; anything else in the file is the external
// collaborator's concern and is round-tripped via yaml.Node-free plain
// structs, so unknown keys are simply dropped on save. This mirrors
// the teacher's atomic-write-then-rename persistence in
// kanban/state.go, adapted from JSON to YAML and with 0600 permissions
// in place of 0644 since this file may carry secrets.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/divmain/janus/internal/repo"
)

// DefaultRemoteTimeout is used when remote_timeout is absent or zero.
const DefaultRemoteTimeout = 30 * time.Second

// HooksConfig holds the hook settings. Each Scripts key names one of
// the event-log event types a hook may bind to (see internal/eventlog);
// the config only stores the event→script mapping, it does not
// validate event names against that package to avoid an import cycle,
// so any string is accepted here.
type HooksConfig struct {
	Enabled bool              `yaml:"enabled"`
	Timeout int               `yaml:"timeout_seconds"` // 0 = unlimited
	Scripts map[string]string `yaml:"scripts,omitempty"`
}

// SemanticSearchConfig toggles the embedding pipeline.
type SemanticSearchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuthConfig holds tracker credentials. String and LogValue redact
// every field so a stray %v or slog call never leaks a token.
type AuthConfig struct {
	GitHubToken string `yaml:"github_token,omitempty"`
	LinearToken string `yaml:"linear_token,omitempty"`
}

func (a AuthConfig) String() string {
	return redactedAuthSummary(a)
}

// LogValue implements slog.LogValuer so a *Config or AuthConfig passed
// to a structured logger never prints a raw token.
func (a AuthConfig) LogValue() slog.Value {
	return slog.StringValue(redactedAuthSummary(a))
}

func redactedAuthSummary(a AuthConfig) string {
	has := func(s string) string {
		if s == "" {
			return "unset"
		}
		return "redacted"
	}
	return fmt.Sprintf("AuthConfig{github_token=%s, linear_token=%s}", has(a.GitHubToken), has(a.LinearToken))
}

// Config is the subset of config.yaml the core reads and writes.
type Config struct {
	DefaultRemote        string               `yaml:"default_remote,omitempty"`
	Auth                 AuthConfig           `yaml:"auth,omitempty"`
	Hooks                HooksConfig          `yaml:"hooks,omitempty"`
	SemanticSearch       SemanticSearchConfig `yaml:"semantic_search,omitempty"`
	RemoteTimeoutSeconds int                  `yaml:"remote_timeout,omitempty"`
}

// LogValue redacts Auth so logging a whole Config is always safe.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("default_remote", c.DefaultRemote),
		slog.Any("auth", c.Auth),
		slog.Bool("hooks_enabled", c.Hooks.Enabled),
		slog.Bool("semantic_search_enabled", c.SemanticSearch.Enabled),
		slog.Duration("remote_timeout", c.RemoteTimeout()),
	)
}

// RemoteTimeout returns the configured remote fetch timeout, falling
// back to DefaultRemoteTimeout when unset.
func (c Config) RemoteTimeout() time.Duration {
	if c.RemoteTimeoutSeconds <= 0 {
		return DefaultRemoteTimeout
	}
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

// Default returns the zero-value config an empty repo starts with.
func Default() Config {
	return Config{}
}

// Load reads and parses <root>/config.yaml. A missing file is not an
// error: it returns Default(), since the external collaborator may
// not have written one yet.
func Load() (Config, error) {
	data, err := os.ReadFile(repo.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to <root>/config.yaml atomically (write to a temp
// file, then rename) with 0600 permissions, since the file may contain
// tracker tokens.
func Save(cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	path := repo.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config into place: %w", err)
	}
	return nil
}
