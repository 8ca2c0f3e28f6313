// Package watcher implements the fsnotify-backed filesystem watcher
// (§4.5): a long-lived task over <root>/items and <root>/plans that
// debounces bursts per-path, reconciles the store and cache on
// change, invalidates stale embeddings, and broadcasts typed change
// events to subscribers. Grounded on the teacher's closest analogue,
// theRebelliousNerd-codenerd's internal/core/mangle_watcher.go: an
// fsnotify.Watcher driven from a select loop, a debounce map guarded
// by its own mutex, and a periodic ticker that drains settled paths —
// adapted here from a single fixed directory to two watched roots and
// from "revalidate on tick" to "reconcile store+cache+embeddings on
// tick".
package watcher

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/divmain/janus/internal/cache"
	"github.com/divmain/janus/internal/markdown"
	"github.com/divmain/janus/internal/model"
	"github.com/divmain/janus/internal/repo"
	"github.com/divmain/janus/internal/store"
)

// debounceWindow coalesces repeated events for the same path, per §4.5.
const debounceWindow = 50 * time.Millisecond

// EntityKind distinguishes which store a changed path belongs to.
type EntityKind int

const (
	EntityTicket EntityKind = iota
	EntityPlan
)

// ChangeKind is the outcome of reconciling a single path.
type ChangeKind int

const (
	ChangeUpdated ChangeKind = iota
	ChangeRemoved
)

// Change is broadcast to subscribers after a path settles and is
// reconciled against the store.
type Change struct {
	Kind   ChangeKind
	Entity EntityKind
	ID     string
	Path   string
}

// Watcher watches <root>/items and <root>/plans and keeps the store,
// cache, and embedding cache reconciled with what's on disk.
type Watcher struct {
	store *store.Store
	cache *cache.Cache // may be nil: cache is always a soft dependency
	log   *slog.Logger

	fsw *fsnotify.Watcher

	mu           sync.Mutex
	debounce     map[string]time.Time
	contentHash  map[string][32]byte // last-known content hash per path, for self-write suppression
	selfRemovals map[string]bool     // paths the write path deleted itself

	subsMu sync.Mutex
	subs   []chan Change

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher. Call Start to begin watching; Stop to shut
// it down. cache may be nil if no query cache is configured.
func New(s *store.Store, c *cache.Cache, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		store:       s,
		cache:       c,
		log:         log,
		fsw:         fsw,
		debounce:     make(map[string]time.Time),
		contentHash:  make(map[string][32]byte),
		selfRemovals: make(map[string]bool),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Subscribe returns a channel that receives every reconciled Change.
// Subscribers may be lossy: a slow reader that doesn't keep up with a
// buffered channel of depth 32 will simply miss events, which is
// acceptable per §5 since the next reconcile re-reads the file.
func (w *Watcher) Subscribe() <-chan Change {
	ch := make(chan Change, 32)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

// NotifyWrite records the content hash of a file the write path just
// wrote itself, so the fsnotify event this write produces is
// recognised as already reflected in the store and skipped rather
// than redundantly reconciled. This is the "ignore events whose
// on-disk content hash matches the in-memory state" rule from §4.5,
// with the write path supplying the in-memory state directly instead
// of the watcher re-deriving it by re-serialising the store entry.
func (w *Watcher) NotifyWrite(path string, data []byte) {
	sum := sha256.Sum256(data)
	w.mu.Lock()
	w.contentHash[path] = sum
	w.mu.Unlock()
}

// NotifyRemoval records that path was deleted by the write path, so
// the fsnotify remove event this produces is suppressed rather than
// broadcast a second time.
func (w *Watcher) NotifyRemoval(path string) {
	w.mu.Lock()
	delete(w.contentHash, path)
	w.selfRemovals[path] = true
	w.mu.Unlock()
}

func (w *Watcher) broadcast(c Change) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- c:
		default:
			w.log.Warn("watcher subscriber channel full, dropping event", "id", c.ID)
		}
	}
}

// Start adds the watched directories (creating them if missing) and
// launches the event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range []string{repo.ItemsDir(), repo.PlansDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.log.Warn("failed to create watched directory", "path", repo.RelativePath(dir), "err", err)
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn("failed to watch directory", "path", repo.RelativePath(dir), "err", err)
		}
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(debounceWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.recordEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "err", err)
		case <-ticker.C:
			w.processSettled()
		}
	}
}

func (w *Watcher) recordEvent(ev fsnotify.Event) {
	if !strings.HasSuffix(ev.Name, ".md") {
		return
	}
	w.mu.Lock()
	w.debounce[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.debounce {
		if now.Sub(t) >= debounceWindow {
			settled = append(settled, path)
			delete(w.debounce, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.reconcile(path)
	}
}

// reconcile re-reads path and updates the store, cache, and
// contentHash bookkeeping. A file that no longer exists removes its
// id from the store and cache instead.
func (w *Watcher) reconcile(path string) {
	entity := entityKindFor(path)
	stem := strings.TrimSuffix(filepath.Base(path), ".md")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.handleRemoval(entity, stem, path)
			return
		}
		w.log.Warn("watcher: failed to read file", "path", repo.RelativePath(path), "err", err)
		return
	}

	sum := sha256.Sum256(data)
	w.mu.Lock()
	prev, seen := w.contentHash[path]
	w.contentHash[path] = sum
	w.mu.Unlock()
	if seen && prev == sum {
		// Content identical to what we already reflect — this is our
		// own prior write echoing back through fsnotify, not an
		// external change. Nothing to do.
		return
	}

	switch entity {
	case EntityTicket:
		w.reconcileTicket(data, stem, path)
	case EntityPlan:
		w.reconcilePlan(data, stem, path)
	}
}

func (w *Watcher) reconcileTicket(data []byte, stem, path string) {
	t, err := markdown.ParseTicket(data)
	if err != nil {
		w.log.Warn("watcher: failed to parse ticket", "path", repo.RelativePath(path), "err", err)
		return
	}
	model.EnforceFilenameAuthority(t, stem, func(msg string) { w.log.Warn(msg) })
	t.SetFilePath(path)

	w.store.SetTicket(*t)

	if w.cache != nil {
		if err := w.cache.UpsertTicket(*t); err != nil {
			w.log.Warn("watcher: failed to update cache row", "id", t.IDValue, "err", err)
		}
	}

	// Content (and therefore mtime) changed, which changes the
	// embedding key (internal/embedding.Key hashes path+mtime_ns); the
	// cached vector under the old key is now stale, so drop it from
	// the store and let the next ensure-path call regenerate it under
	// the new key.
	w.store.DeleteEmbedding(t.IDValue)

	w.broadcast(Change{Kind: ChangeUpdated, Entity: EntityTicket, ID: t.IDValue, Path: path})
}

func (w *Watcher) reconcilePlan(data []byte, stem, path string) {
	p, err := markdown.ParsePlan(data)
	if err != nil {
		w.log.Warn("watcher: failed to parse plan", "path", repo.RelativePath(path), "err", err)
		return
	}
	model.EnforceFilenameAuthority(p, stem, func(msg string) { w.log.Warn(msg) })
	p.SetFilePath(path)
	w.store.SetPlan(*p)

	if w.cache != nil {
		if err := w.cache.UpsertPlan(*p); err != nil {
			w.log.Warn("watcher: failed to update cache row", "id", p.IDValue, "err", err)
		}
	}

	w.broadcast(Change{Kind: ChangeUpdated, Entity: EntityPlan, ID: p.IDValue, Path: path})
}

func (w *Watcher) handleRemoval(entity EntityKind, stem, path string) {
	w.mu.Lock()
	delete(w.contentHash, path)
	selfDeleted := w.selfRemovals[path]
	delete(w.selfRemovals, path)
	w.mu.Unlock()

	w.applyRemoval(entity, stem)

	// The store and cache are kept idempotently in sync either way,
	// but a deletion the write path already reflected does not need a
	// second broadcast.
	if selfDeleted {
		return
	}
	w.broadcast(Change{Kind: ChangeRemoved, Entity: entity, ID: stem, Path: path})
}

func (w *Watcher) applyRemoval(entity EntityKind, stem string) {
	switch entity {
	case EntityTicket:
		w.store.DeleteTicket(stem)
		w.store.DeleteEmbedding(stem)
		if w.cache != nil {
			if err := w.cache.DeleteTicket(stem); err != nil {
				w.log.Warn("watcher: failed to delete cache row", "id", stem, "err", err)
			}
		}
	case EntityPlan:
		w.store.DeletePlan(stem)
		if w.cache != nil {
			if err := w.cache.DeletePlan(stem); err != nil {
				w.log.Warn("watcher: failed to delete cache row", "id", stem, "err", err)
			}
		}
	}
}

func entityKindFor(path string) EntityKind {
	if filepath.Dir(path) == repo.PlansDir() {
		return EntityPlan
	}
	return EntityTicket
}
