package database

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/memora-app/memora/internal/identity"
)

// hnswMaxNeighbors is the M parameter of the graph.
const hnswMaxNeighbors = 16

// IdentityIndex is an in-memory HNSW index over identity face embeddings.
// The exercise generator uses it to pick hard distractors: identities whose
// faces are nearest the target's. It is rebuilt on startup and kept current
// on identity writes; storage stays the source of truth.
type IdentityIndex struct {
	graph *hnsw.Graph[string]
	byID  map[string]*identity.Identity
	mu    sync.RWMutex
}

// NewIdentityIndex creates an empty index.
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		byID: make(map[string]*identity.Identity),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build replaces the index contents with the given identities.
// Identities without embeddings are skipped.
func (h *IdentityIndex) Build(identities []identity.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(identities) == 0 {
		h.graph = nil
		h.byID = make(map[string]*identity.Identity)
		return
	}

	g := newGraph()
	h.byID = make(map[string]*identity.Identity, len(identities))

	for i := range identities {
		id := &identities[i]
		if !id.HasEmbedding() {
			continue
		}
		g.Add(hnsw.MakeNode(id.ID, id.Embedding))
		h.byID[id.ID] = id
	}

	h.graph = g
}

// Add inserts or refreshes a single identity. No-op without an embedding.
func (h *IdentityIndex) Add(id *identity.Identity) {
	if !id.HasEmbedding() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph == nil {
		h.graph = newGraph()
	}
	h.graph.Add(hnsw.MakeNode(id.ID, id.Embedding))
	h.byID[id.ID] = id
}

// Remove drops an identity from lookup. The HNSW graph has no true deletion;
// removed entries are filtered out of search results instead.
func (h *IdentityIndex) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.byID, id)
}

// Count returns the number of searchable identities.
func (h *IdentityIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byID)
}

// Nearest finds up to k identities of the given user closest to the query
// embedding, nearest first. The identity with excludeID is never returned.
func (h *IdentityIndex) Nearest(query []float32, userID, excludeID string, k int) ([]identity.Identity, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, errors.New("index not initialized")
	}

	// Over-fetch: neighbors from other users or the excluded target are
	// filtered after the search.
	neighbors := h.graph.Search(query, k*4+4)

	results := make([]identity.Identity, 0, k)
	for _, n := range neighbors {
		id, ok := h.byID[n.Key]
		if !ok || id.ID == excludeID || id.UserID != userID {
			continue
		}
		results = append(results, *id)
		if len(results) >= k {
			break
		}
	}
	return results, nil
}
