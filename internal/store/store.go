// Package store implements the process-wide concurrent index (§4.3):
// three maps — tickets, plans, embeddings — each guarded by its own
// sync.RWMutex. Every exported method touches exactly one map and
// returns before the caller can touch another, which is what makes the
// store's lock-order invariant (never hold a guard on one map while
// acquiring a guard on another) structurally true here rather
// than merely documented: there is no method that holds two locks, and
// no lock is ever handed back to the caller. Composite operations
// (e.g. the embedding ensure-path) are built in internal/embedding by
// calling Store methods sequentially, snapshotting what they need
// between calls.
package store

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/divmain/janus/internal/model"
	"github.com/divmain/janus/internal/repo"
)

// Store is the in-memory index described by §4.3. The zero value is
// not usable; construct with New.
type Store struct {
	log *slog.Logger

	ticketsMu sync.RWMutex
	tickets   map[string]*model.Ticket

	plansMu sync.RWMutex
	plans   map[string]*model.Plan

	embeddingsMu sync.RWMutex
	embeddings   map[string][]float32
}

// New creates an empty Store. Callers must still call Init (or
// populate it incrementally via the write path) before relying on its
// contents reflecting disk.
func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log:        log,
		tickets:    make(map[string]*model.Ticket),
		plans:      make(map[string]*model.Plan),
		embeddings: make(map[string][]float32),
	}
}

// --- tickets ---

// GetTicket returns a copy of the ticket for id, if present.
func (s *Store) GetTicket(id string) (model.Ticket, bool) {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return model.Ticket{}, false
	}
	return *t, true
}

// TicketExists reports whether id is present, for use as the id
// generator's collision check.
func (s *Store) TicketExists(id string) bool {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()
	_, ok := s.tickets[id]
	return ok
}

// SetTicket inserts or replaces the ticket under its own id.
func (s *Store) SetTicket(t model.Ticket) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	cp := t
	s.tickets[t.IDValue] = &cp
}

// DeleteTicket removes id from the tickets map. Missing ids are a no-op.
func (s *Store) DeleteTicket(id string) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	delete(s.tickets, id)
}

// AllTickets returns a stable-ordered snapshot copy of every ticket.
func (s *Store) AllTickets() []model.Ticket {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()
	out := make([]model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue < out[j].IDValue })
	return out
}

// TicketCount reports the number of tickets currently indexed.
func (s *Store) TicketCount() int {
	s.ticketsMu.RLock()
	defer s.ticketsMu.RUnlock()
	return len(s.tickets)
}

// --- plans ---

// GetPlan returns a copy of the plan for id, if present.
func (s *Store) GetPlan(id string) (model.Plan, bool) {
	s.plansMu.RLock()
	defer s.plansMu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, false
	}
	return *p, true
}

// PlanExists reports whether id is present, for use as the plan id
// generator's collision check.
func (s *Store) PlanExists(id string) bool {
	s.plansMu.RLock()
	defer s.plansMu.RUnlock()
	_, ok := s.plans[id]
	return ok
}

// SetPlan inserts or replaces the plan under its own id.
func (s *Store) SetPlan(p model.Plan) {
	s.plansMu.Lock()
	defer s.plansMu.Unlock()
	cp := p
	s.plans[p.IDValue] = &cp
}

// DeletePlan removes id from the plans map. Missing ids are a no-op.
func (s *Store) DeletePlan(id string) {
	s.plansMu.Lock()
	defer s.plansMu.Unlock()
	delete(s.plans, id)
}

// AllPlans returns a stable-ordered snapshot copy of every plan.
func (s *Store) AllPlans() []model.Plan {
	s.plansMu.RLock()
	defer s.plansMu.RUnlock()
	out := make([]model.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue < out[j].IDValue })
	return out
}

// --- embeddings ---

// GetEmbedding returns a copy of the embedding vector for id, if present.
func (s *Store) GetEmbedding(id string) ([]float32, bool) {
	s.embeddingsMu.RLock()
	defer s.embeddingsMu.RUnlock()
	v, ok := s.embeddings[id]
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// SetEmbedding inserts or replaces the embedding for id.
func (s *Store) SetEmbedding(id string, vec []float32) {
	s.embeddingsMu.Lock()
	defer s.embeddingsMu.Unlock()
	cp := make([]float32, len(vec))
	copy(cp, vec)
	s.embeddings[id] = cp
}

// DeleteEmbedding removes id from the embeddings map. Missing ids are
// a no-op.
func (s *Store) DeleteEmbedding(id string) {
	s.embeddingsMu.Lock()
	defer s.embeddingsMu.Unlock()
	delete(s.embeddings, id)
}

// AllEmbeddings returns a snapshot copy of the embeddings map, keyed by
// ticket id, for use by the embedding package's search path. Taking
// the snapshot under a single short-held read lock and handing back
// owned copies is what lets the search path iterate without holding
// the embeddings guard, which in turn is required before it is
// permitted to look up ticket metadata per the lock-order invariant.
func (s *Store) AllEmbeddings() map[string][]float32 {
	s.embeddingsMu.RLock()
	defer s.embeddingsMu.RUnlock()
	out := make(map[string][]float32, len(s.embeddings))
	for id, v := range s.embeddings {
		cp := make([]float32, len(v))
		copy(cp, v)
		out[id] = cp
	}
	return out
}

// EmbeddingCount reports how many tickets currently have a cached
// embedding.
func (s *Store) EmbeddingCount() int {
	s.embeddingsMu.RLock()
	defer s.embeddingsMu.RUnlock()
	return len(s.embeddings)
}

// Logger exposes the store's logger to collaborating packages
// (embedding, watcher) that are constructed with the store and want to
// log consistently rather than reach for slog.Default().
func (s *Store) Logger() *slog.Logger { return s.log }

// RelativePath is a thin re-export so call sites that only have a
// *Store handy do not need to import internal/repo directly for
// message formatting.
func RelativePath(p string) string { return repo.RelativePath(p) }
