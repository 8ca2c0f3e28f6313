package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/divmain/janus/internal/janus"
)

// Entry is a single scanned markdown file: its filename stem (the
// authoritative id per invariant 1) and its absolute path.
type Entry struct {
	Stem string
	Path string
}

// Scan lists every *.md child of dir as an Entry, in file-name order. A
// missing directory yields an empty slice, not an error — a fresh
// janus root has no items/ or plans/ directory yet.
func Scan(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, janus.NewIOError(RelativePath(dir), err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".md")
		out = append(out, Entry{Stem: stem, Path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}

// Read returns the raw bytes of path.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, janus.NewIOError(RelativePath(path), err)
	}
	return data, nil
}

// Write creates path's parent directories if needed and writes data,
// then seeds the janus root's .gitignore with config.yaml and
// embeddings/ entries if it does not already exist. Existing
// .gitignore files are never overwritten.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return janus.NewIOError(RelativePath(dir), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return janus.NewIOError(RelativePath(path), err)
	}
	ensureGitignore()
	return nil
}

// Delete removes path if it exists; a missing file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return janus.NewIOError(RelativePath(path), err)
	}
	return nil
}

// MtimeNs returns the file's modification time in nanoseconds since
// the Unix epoch, on a best-effort basis: filesystem precision varies
// from whole seconds to nanoseconds, which the embedding cache guards
// against separately via dimension and finite-value checks.
func MtimeNs(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, janus.NewIOError(RelativePath(path), err)
	}
	return info.ModTime().UnixNano(), nil
}

const gitignoreContents = "config.yaml\nembeddings/\n"

func ensureGitignore() {
	path := filepath.Join(Root(), ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return
	}
	_ = os.MkdirAll(Root(), 0o755)
	_ = os.WriteFile(path, []byte(gitignoreContents), 0o644)
}
