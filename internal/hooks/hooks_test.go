package hooks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/divmain/janus/internal/repo"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script hooks are not exercised on windows")
	}
}

func TestRunDisabledReturnsNil(t *testing.T) {
	r := New(Config{Enabled: false})
	res, err := r.Run(context.Background(), Pre, "ticket_created", nil)
	if res != nil || err != nil {
		t.Fatalf("expected nil, nil for disabled hooks, got %v, %v", res, err)
	}
}

func TestRunNoScriptConfiguredReturnsNil(t *testing.T) {
	r := New(Config{Enabled: true, Scripts: map[string]string{}})
	res, err := r.Run(context.Background(), Pre, "ticket_created", nil)
	if res != nil || err != nil {
		t.Fatalf("expected nil, nil for unconfigured event, got %v, %v", res, err)
	}
}

func TestRunSuccess(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		writeScript(t, repo.HooksDir(), "ok.sh", "#!/bin/sh\necho hello\nexit 0\n")
		r := New(Config{Enabled: true, Scripts: map[string]string{"ticket_created": "ok.sh"}})
		res, err := r.Run(context.Background(), Pre, "ticket_created", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res == nil || !strings.Contains(res.Stdout, "hello") {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		writeScript(t, repo.HooksDir(), "fail.sh", "#!/bin/sh\necho oops 1>&2\nexit 3\n")
		r := New(Config{Enabled: true, Scripts: map[string]string{"ticket_created": "fail.sh"}})
		res, err := r.Run(context.Background(), Pre, "ticket_created", nil)
		if err == nil {
			t.Fatal("expected error for non-zero exit")
		}
		if res == nil || res.ExitCode != 3 {
			t.Fatalf("expected exit code 3, got %+v", res)
		}
	})
}

func TestRunTimeout(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		writeScript(t, repo.HooksDir(), "slow.sh", "#!/bin/sh\nsleep 5\n")
		r := New(Config{Enabled: true, Timeout: 50 * time.Millisecond, Scripts: map[string]string{"ticket_created": "slow.sh"}})
		_, err := r.Run(context.Background(), Pre, "ticket_created", nil)
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Fatalf("expected timeout message, got %v", err)
		}
	})
}

func TestScriptPathRejectsPathSeparators(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		if _, err := scriptPath("../escape.sh"); err == nil {
			t.Fatal("expected error for path traversal name")
		}
		if _, err := scriptPath("sub/dir.sh"); err == nil {
			t.Fatal("expected error for name containing separator")
		}
	})
}

func TestScriptPathRejectsSymlinkEscape(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	outside := filepath.Join(dir, "outside.sh")
	if err := os.WriteFile(outside, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	repo.WithTestRoot(dir, func() {
		hooksDir := repo.HooksDir()
		if err := os.MkdirAll(hooksDir, 0o755); err != nil {
			t.Fatal(err)
		}
		link := filepath.Join(hooksDir, "escape.sh")
		if err := os.Symlink(outside, link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		if _, err := scriptPath("escape.sh"); err == nil {
			t.Fatal("expected symlink escape to be rejected")
		}
	})
}

func TestScriptPathMissingScript(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		if _, err := scriptPath("nope.sh"); err == nil {
			t.Fatal("expected error for missing script")
		}
	})
}

func TestLogFailureAppends(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		if err := LogFailure("ticket_created", errExample{"boom"}); err != nil {
			t.Fatalf("LogFailure: %v", err)
		}
		data, err := os.ReadFile(repo.HooksLogPath())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "ticket_created") || !strings.Contains(string(data), "boom") {
			t.Fatalf("unexpected hooks.log contents: %s", data)
		}
	})
}

type errExample struct{ msg string }

func (e errExample) Error() string { return e.msg }
