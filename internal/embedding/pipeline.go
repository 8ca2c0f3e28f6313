package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/divmain/janus/internal/repo"
	"github.com/divmain/janus/internal/store"
)

// Embedder generates embedding vectors for a batch of texts, one
// vector per input text in the same order. Implementations live
// behind this interface so the pipeline never depends on a concrete
// model client; failure of one batch must not prevent the next batch
// from being attempted.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline wires a Store to an Embedder and the fixed vector dimension
// D the whole repo was built against.
type Pipeline struct {
	store    *store.Store
	dim      int
	embedder Embedder
	log      *slog.Logger
}

// New builds a Pipeline. dim is the fixed embedding dimension D;
// embeddings of any other length are treated as invalid on load.
func New(s *store.Store, dim int, embedder Embedder) *Pipeline {
	log := s.Logger()
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{store: s, dim: dim, embedder: embedder, log: log}
}

// LoadAll populates the store's embeddings map from
// <root>/embeddings/, for every ticket that currently has a file path.
// Tickets are snapshotted from the store first; the embeddings map is
// only touched afterwards, one ticket at a time, via Store's own
// locked setters.
func (p *Pipeline) LoadAll() {
	if _, err := os.Stat(repo.EmbeddingsDir()); err != nil {
		return
	}

	for _, t := range p.store.AllTickets() {
		if t.FilePathValue == "" {
			continue
		}
		ns, ok := mtimeNs(t.FilePathValue)
		if !ok {
			continue
		}
		key := Key(t.FilePathValue, ns)
		vec, ok := load(key, p.dim)
		if !ok {
			continue
		}
		p.store.SetEmbedding(t.IDValue, vec)
	}
}

// EnsureOne generates and caches an embedding for a single ticket if
// one is not already on disk for its current (file_path, mtime) key.
// Per the ensure-path contract: snapshot the ticket, drop the guard,
// recompute the key from a fresh mtime, then either load the existing
// file or invoke the model and save the result.
func (p *Pipeline) EnsureOne(ctx context.Context, ticketID string) error {
	t, ok := p.store.GetTicket(ticketID)
	if !ok {
		return fmt.Errorf("ticket %q not found in store", ticketID)
	}
	if t.FilePathValue == "" {
		return fmt.Errorf("ticket %q has no file path", ticketID)
	}

	ns, ok := mtimeNs(t.FilePathValue)
	if !ok {
		return fmt.Errorf("could not stat file for ticket %q", ticketID)
	}
	key := Key(t.FilePathValue, ns)

	if vec, ok := load(key, p.dim); ok {
		p.store.SetEmbedding(ticketID, vec)
		return nil
	}

	vecs, err := p.embedder.EmbedBatch(ctx, []string{embedText(t.Title, t.Description)})
	if err != nil {
		return fmt.Errorf("generate embedding for %q: %w", ticketID, err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("embedder returned %d vectors for 1 input", len(vecs))
	}

	if err := save(key, vecs[0]); err != nil {
		return fmt.Errorf("save embedding for %q: %w", ticketID, err)
	}
	p.store.SetEmbedding(ticketID, vecs[0])
	return nil
}

type candidate struct {
	id       string
	filePath string
	title    string
	body     string
}

// EnsureAll generates embeddings for every ticket that does not
// already have one in the store, processing BatchSize tickets per
// model call. It returns (generated, total) for progress reporting.
// A failed batch is logged and skipped; subsequent batches still run.
func (p *Pipeline) EnsureAll(ctx context.Context) (generated, total int, err error) {
	var candidates []candidate
	for _, t := range p.store.AllTickets() {
		if t.FilePathValue == "" {
			continue
		}
		if _, ok := p.store.GetEmbedding(t.IDValue); ok {
			continue
		}
		candidates = append(candidates, candidate{id: t.IDValue, filePath: t.FilePathValue, title: t.Title, body: t.Description})
	}

	total = len(candidates)
	if total == 0 {
		return 0, 0, nil
	}

	for start := 0; start < len(candidates); start += BatchSize {
		end := start + BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = embedText(c.title, c.body)
		}

		vecs, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			p.log.Warn("batch embedding generation failed", "err", err)
			continue
		}

		for i, c := range batch {
			if i >= len(vecs) {
				break
			}
			// Re-fetch mtime: the file may have changed mid-batch.
			ns, ok := mtimeNs(c.filePath)
			if !ok {
				continue
			}
			key := Key(c.filePath, ns)
			if err := save(key, vecs[i]); err != nil {
				p.log.Warn("failed to save embedding", "id", c.id, "err", err)
				continue
			}
			if _, exists := p.store.GetTicket(c.id); exists {
				p.store.SetEmbedding(c.id, vecs[i])
				generated++
			}
		}
	}

	return generated, total, nil
}

// Prune deletes every .bin file in the embeddings directory whose key
// is not present in validKeys, returning the number removed.
//
// TOCTOU hazard: a ticket modified between the caller computing
// validKeys and this call runs could have its freshly-regenerated
// embedding deleted here, since its new key was not in the snapshot.
// Callers must ensure no ticket mutation or embedding generation is in
// flight while a prune is running (e.g. during an explicit cache
// rebuild).
func (p *Pipeline) Prune(validKeys map[string]bool) (int, error) {
	dir := repo.EmbeddingsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	pruned := 0
	for _, e := range entries {
		name := e.Name()
		if len(name) < 4 || name[len(name)-4:] != ".bin" {
			continue
		}
		key := name[:len(name)-4]
		if validKeys[key] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			p.log.Warn("failed to remove orphaned embedding", "path", name, "err", err)
			continue
		}
		pruned++
	}
	return pruned, nil
}

// Coverage reports (withEmbeddings, totalTickets), counting only
// embeddings whose ticket id still exists in the store — a defensive
// measure against an orphaned embedding inflating the count.
func (p *Pipeline) Coverage() (withEmbeddings, total int) {
	all := p.store.AllTickets()
	total = len(all)
	for id := range p.store.AllEmbeddings() {
		if _, ok := p.store.GetTicket(id); ok {
			withEmbeddings++
		}
	}
	return withEmbeddings, total
}
