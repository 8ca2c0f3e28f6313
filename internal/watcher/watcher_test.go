package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/divmain/janus/internal/repo"
	"github.com/divmain/janus/internal/store"
)

func waitForChange(t *testing.T, ch <-chan Change, timeout time.Duration) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a watcher change")
		return Change{}
	}
}

func ticketFixture(id string) string {
	return "---\n" +
		"id: " + id + "\n" +
		"uuid: 11111111-1111-1111-1111-111111111111\n" +
		"status: new\n" +
		"priority: 2\n" +
		"type: task\n" +
		"---\n" +
		"# Title\n"
}

func newTestWatcher(t *testing.T, dir string) (*Watcher, *store.Store) {
	t.Helper()
	s := store.New(nil)
	w, err := New(s, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	return w, s
}

func TestWatcherDetectsTicketCreation(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, s := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-a1b2.md")
		if err := os.WriteFile(path, []byte(ticketFixture("j-a1b2")), 0o644); err != nil {
			t.Fatal(err)
		}

		c := waitForChange(t, ch, 5*time.Second)
		if c.Kind != ChangeUpdated || c.Entity != EntityTicket || c.ID != "j-a1b2" {
			t.Fatalf("unexpected change: %+v", c)
		}
		if _, ok := s.GetTicket("j-a1b2"); !ok {
			t.Fatal("expected ticket to be present in store")
		}
	})
}

func TestWatcherDetectsTicketRemoval(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, s := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-c3d4.md")
		if err := os.WriteFile(path, []byte(ticketFixture("j-c3d4")), 0o644); err != nil {
			t.Fatal(err)
		}
		waitForChange(t, ch, 5*time.Second)

		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}
		c := waitForChange(t, ch, 5*time.Second)
		if c.Kind != ChangeRemoved || c.ID != "j-c3d4" {
			t.Fatalf("unexpected change: %+v", c)
		}
		if _, ok := s.GetTicket("j-c3d4"); ok {
			t.Fatal("expected ticket to be removed from store")
		}
	})
}

func TestWatcherSuppressesIdenticalContentRewrite(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, _ := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-e5f6.md")
		content := ticketFixture("j-e5f6")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		waitForChange(t, ch, 5*time.Second)

		// Rewriting identical bytes must not broadcast a second change.
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-ch:
			t.Fatalf("expected no change for identical rewrite, got %+v", c)
		case <-time.After(300 * time.Millisecond):
		}
	})
}

func TestWatcherInvalidatesEmbeddingOnContentChange(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, s := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-a7b8.md")
		if err := os.WriteFile(path, []byte(ticketFixture("j-a7b8")), 0o644); err != nil {
			t.Fatal(err)
		}
		waitForChange(t, ch, 5*time.Second)
		s.SetEmbedding("j-a7b8", []float32{1, 2, 3})

		modified := ticketFixture("j-a7b8") + "\nmore body text\n"
		if err := os.WriteFile(path, []byte(modified), 0o644); err != nil {
			t.Fatal(err)
		}
		waitForChange(t, ch, 5*time.Second)

		if _, ok := s.GetEmbedding("j-a7b8"); ok {
			t.Fatal("expected embedding to be invalidated after content change")
		}
	})
}

func TestWatcherNotifyWriteSuppressesOwnEvent(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, _ := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-0a0b.md")
		content := []byte(ticketFixture("j-0a0b"))
		w.NotifyWrite(path, content)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}

		select {
		case c := <-ch:
			t.Fatalf("expected write-path-originated change to be suppressed, got %+v", c)
		case <-time.After(300 * time.Millisecond):
		}
	})
}

func TestWatcherNotifyRemovalSuppressesOwnEvent(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, s := newTestWatcher(t, dir)
		ch := w.Subscribe()

		path := filepath.Join(repo.ItemsDir(), "j-0c0d.md")
		if err := os.WriteFile(path, []byte(ticketFixture("j-0c0d")), 0o644); err != nil {
			t.Fatal(err)
		}
		waitForChange(t, ch, 5*time.Second)

		s.DeleteTicket("j-0c0d")
		w.NotifyRemoval(path)
		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}

		select {
		case c := <-ch:
			t.Fatalf("expected write-path-originated removal to be suppressed, got %+v", c)
		case <-time.After(300 * time.Millisecond):
		}
	})
}

func TestWatcherReconcilesPlan(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		w, s := newTestWatcher(t, dir)
		ch := w.Subscribe()

		planContent := "---\n" +
			"id: plan-abcd\n" +
			"uuid: 22222222-2222-2222-2222-222222222222\n" +
			"---\n" +
			"# A Plan\n\n" +
			"## Overview\n\nSome overview text.\n"
		path := filepath.Join(repo.PlansDir(), "plan-abcd.md")
		if err := os.WriteFile(path, []byte(planContent), 0o644); err != nil {
			t.Fatal(err)
		}

		c := waitForChange(t, ch, 5*time.Second)
		if c.Entity != EntityPlan || c.ID != "plan-abcd" {
			t.Fatalf("unexpected change: %+v", c)
		}
		if _, ok := s.GetPlan("plan-abcd"); !ok {
			t.Fatal("expected plan to be present in store")
		}
	})
}
