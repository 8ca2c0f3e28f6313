package embedding

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/divmain/janus/internal/repo"
)

func TestKeyDeterministic(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		path := filepath.Join(dir, "items", "j-test.md")
		k1 := Key(path, 1234567890)
		k2 := Key(path, 1234567890)
		if k1 != k2 {
			t.Fatalf("expected deterministic key, got %q != %q", k1, k2)
		}
		if len(k1) != 64 {
			t.Fatalf("expected 64-char hex blake3 digest, got %d chars", len(k1))
		}
	})
}

func TestKeyChangesWithMtime(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		path := filepath.Join(dir, "items", "j-test.md")
		if Key(path, 1000) == Key(path, 2000) {
			t.Fatal("expected key to change with mtime")
		}
	})
}

func TestKeyChangesWithPath(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		p1 := filepath.Join(dir, "items", "j-one.md")
		p2 := filepath.Join(dir, "items", "j-two.md")
		if Key(p1, 1000) == Key(p2, 1000) {
			t.Fatal("expected key to change with path")
		}
	})
}

func TestVectorRoundTrip(t *testing.T) {
	original := []float32{1.0, -2.5, 0.0, 3.14159}
	encoded := encodeVector(original)
	decoded, ok := decodeVector(encoded)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if len(decoded) != len(original) {
		t.Fatalf("length mismatch: %d != %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Fatalf("value mismatch at %d: %v != %v", i, decoded[i], original[i])
		}
	}
}

func TestDecodeVectorInvalidLength(t *testing.T) {
	if _, ok := decodeVector(make([]byte, 5)); ok {
		t.Fatal("expected decode to fail for non-multiple-of-4 length")
	}
}

func TestDecodeVectorEmpty(t *testing.T) {
	decoded, ok := decodeVector(nil)
	if !ok || len(decoded) != 0 {
		t.Fatalf("expected empty success, got %v, %v", decoded, ok)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		vec := []float32{0.1, 0.2, 0.3}
		if err := save("somekey", vec); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, ok := load("somekey", 3)
		if !ok {
			t.Fatal("expected load to succeed")
		}
		for i := range vec {
			if got[i] != vec[i] {
				t.Fatalf("mismatch at %d: %v != %v", i, got[i], vec[i])
			}
		}
	})
}

func TestLoadRejectsWrongDimension(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		if err := save("wrongdim", []float32{1, 2, 3, 4}); err != nil {
			t.Fatal(err)
		}
		if _, ok := load("wrongdim", 384); ok {
			t.Fatal("expected load to reject mismatched dimension")
		}
	})
}

func TestLoadRejectsNonFiniteValues(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		vec := []float32{1, 2, float32(math.NaN()), 4}
		if err := save("nankey", vec); err != nil {
			t.Fatal(err)
		}
		if _, ok := load("nankey", 4); ok {
			t.Fatal("expected load to reject NaN")
		}
	})
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	repo.WithTestRoot(dir, func() {
		if _, ok := load("missing", 3); ok {
			t.Fatal("expected load to fail for missing file")
		}
	})
}

func TestEmbedText(t *testing.T) {
	if got, want := embedText("Title", ""), "Title"; got != want {
		t.Fatalf("embedText = %q, want %q", got, want)
	}
	if got, want := embedText("Title", "Body"), "Title\n\nBody"; got != want {
		t.Fatalf("embedText = %q, want %q", got, want)
	}
}

func TestMtimeNsReflectsFileModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.md")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	ns, ok := mtimeNs(path)
	if !ok || ns == 0 {
		t.Fatalf("expected a valid mtime, got %d, %v", ns, ok)
	}
}
