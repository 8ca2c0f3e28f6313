// Package repo implements the file repository (§4.2): scanning,
// reading, writing, renaming and deleting ticket/plan files under a
// configurable root, plus the root-path resolution rule itself.
package repo

import (
	"os"
	"path/filepath"
	"sync"
)

// testOverride is the process-wide root override used by tests. It
// takes priority over JANUS_ROOT so a test can point the root at its
// own temporary directory without mutating the process environment.
// rootMu guards reads and writes of testOverride; testRootMu serialises
// WithTestRoot calls.
var (
	rootMu       sync.RWMutex
	testOverride string
	testRootMu   sync.Mutex
)

// WithTestRoot sets the test-only root override for the duration of
// fn's execution and restores the previous value afterwards. It holds
// testRootMu for the whole call, so tests using it are serialised
// against each other — acceptable because it is a test-only escape
// hatch, not a production code path.
func WithTestRoot(root string, fn func()) {
	testRootMu.Lock()
	defer testRootMu.Unlock()

	rootMu.Lock()
	prev := testOverride
	testOverride = root
	rootMu.Unlock()

	defer func() {
		rootMu.Lock()
		testOverride = prev
		rootMu.Unlock()
	}()

	fn()
}

// Root resolves the janus root directory: the test override if set,
// else the JANUS_ROOT environment variable if set and non-empty, else
// "./.janus".
func Root() string {
	rootMu.RLock()
	override := testOverride
	rootMu.RUnlock()
	if override != "" {
		return override
	}
	if env := os.Getenv("JANUS_ROOT"); env != "" {
		return env
	}
	return "./.janus"
}

// ItemsDir returns <root>/items.
func ItemsDir() string { return filepath.Join(Root(), "items") }

// PlansDir returns <root>/plans.
func PlansDir() string { return filepath.Join(Root(), "plans") }

// EmbeddingsDir returns <root>/embeddings.
func EmbeddingsDir() string { return filepath.Join(Root(), "embeddings") }

// CachePath returns <root>/cache.db.
func CachePath() string { return filepath.Join(Root(), "cache.db") }

// EventsPath returns <root>/events.ndjson.
func EventsPath() string { return filepath.Join(Root(), "events.ndjson") }

// ConfigPath returns <root>/config.yaml.
func ConfigPath() string { return filepath.Join(Root(), "config.yaml") }

// HooksDir returns <root>/hooks.
func HooksDir() string { return filepath.Join(Root(), "hooks") }

// HooksLogPath returns <root>/hooks.log.
func HooksLogPath() string { return filepath.Join(Root(), "hooks.log") }

// RelativePath renders p relative to the janus root for user-visible
// messages, falling back to p itself if it is not under root.
func RelativePath(p string) string {
	rel, err := filepath.Rel(Root(), p)
	if err != nil {
		return p
	}
	return rel
}
