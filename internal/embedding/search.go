package embedding

import (
	"container/heap"
	"math"
)

// Scored is a single search result: a ticket id and its cosine
// similarity against the query vector.
type Scored struct {
	ID    string
	Score float32
}

// scoredHeap is a min-heap on Score, used to keep only the top-K
// results while scanning all N embeddings: pushing past capacity pops
// the current lowest score, so the heap always holds the K best seen
// so far. This is what gives Search O(N log K) instead of sorting all
// N results (O(N log N)).
type scoredHeap []Scored

func (h scoredHeap) Len() int            { return len(h) }
func (h scoredHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h scoredHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x any)         { *h = append(*h, x.(Scored)) }
func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Search returns the top `limit` embeddings by cosine similarity
// against query, sorted descending by score. Ticket metadata is not
// looked up here at all — callers resolve ids to tickets after this
// call returns, once the embeddings map snapshot (taken via
// store.AllEmbeddings) is no longer in play, matching the store's
// lock-order invariant. Callers apply their own similarity threshold
// to the returned scores; this function does no filtering beyond
// top-K selection.
func (p *Pipeline) Search(query []float32, limit int) []Scored {
	if limit <= 0 {
		return nil
	}

	h := &scoredHeap{}
	heap.Init(h)

	for id, vec := range p.store.AllEmbeddings() {
		score := cosineSimilarity(query, vec)
		if h.Len() < limit {
			heap.Push(h, Scored{ID: id, Score: score})
			continue
		}
		if (*h)[0].Score < score {
			(*h)[0] = Scored{ID: id, Score: score}
			heap.Fix(h, 0)
		}
	}

	out := make([]Scored, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Scored)
	}
	return out
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}
