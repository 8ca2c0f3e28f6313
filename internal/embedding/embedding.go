// Package embedding implements the semantic search pipeline (§4.9):
// content-addressed embedding vectors cached at
// <root>/embeddings/<key>.bin, keyed by a BLAKE3 hash of the ticket's
// repo-relative path and mtime so that any file modification produces
// a cache miss without needing a separate invalidation signal.
//
// Every function here that needs both a ticket's metadata and the
// embeddings map gets the ticket snapshot first, drops whatever guard
// produced it, and only then touches the embeddings map — the same
// lock-order discipline store.Store's own doc comment describes.
package embedding

import (
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"

	"github.com/divmain/janus/internal/repo"
)

// BatchSize is the number of tickets embedded per model call in
// EnsureAll, chosen to amortise per-call model overhead.
const BatchSize = 32

// Key computes the embedding cache key for a ticket file: the hex
// BLAKE3 hash of "<repo-relative forward-slash path>:<mtime_ns>".
//
// Filesystem precision caveat: this relies on mtime at nanosecond
// granularity, which not every filesystem actually provides (HFS+ is
// 1s, FAT32 is 2s). On a low-precision filesystem, two edits within
// the precision window produce the same key, so the second edit's
// embedding is served stale until a later edit changes the mtime
// enough to register. Hashing file content instead would fix this but
// would defeat the point of a cheap mtime-based invalidation check.
func Key(absPath string, mtimeNs int64) string {
	rel := repo.RelativePath(absPath)
	rel = filepath.ToSlash(rel)
	input := fmt.Sprintf("%s:%d", rel, mtimeNs)
	sum := blake3.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func binPath(key string) string {
	return filepath.Join(repo.EmbeddingsDir(), key+".bin")
}

func mtimeNs(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.ModTime().UnixNano(), true
}

// encodeVector serialises a vector as little-endian f32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		bits := math.Float32bits(v)
		buf[i*4+0] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}

// decodeVector parses little-endian f32 bytes back into a vector. It
// returns false if the byte length is not a multiple of 4.
func decodeVector(data []byte) ([]float32, bool) {
	if len(data)%4 != 0 {
		return nil, false
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		bits := uint32(data[i*4+0]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out, true
}

func allFinite(vec []float32) bool {
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// save writes vec to <root>/embeddings/<key>.bin, creating the
// directory if needed.
func save(key string, vec []float32) error {
	dir := repo.EmbeddingsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(binPath(key), encodeVector(vec), 0o644)
}

// load reads and validates the cached vector for key against the
// expected dimension dim. It returns (nil, false) — never an error —
// for anything that doesn't validate, since a corrupt or
// wrong-dimension .bin file is meant to be silently regenerated rather
// than surfaced as a failure.
func load(key string, dim int) ([]float32, bool) {
	data, err := os.ReadFile(binPath(key))
	if err != nil {
		return nil, false
	}
	if len(data) != dim*4 {
		return nil, false
	}
	vec, ok := decodeVector(data)
	if !ok || !allFinite(vec) {
		return nil, false
	}
	return vec, true
}

// embedText builds the text the model embeds for a ticket: title
// alone when the body is empty, otherwise title, a blank line, then
// body.
func embedText(title, body string) string {
	if strings.TrimSpace(body) == "" {
		return title
	}
	return title + "\n\n" + body
}
