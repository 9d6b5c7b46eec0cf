// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
)

// MockIdentityStore is an in-memory implementation of database.IdentityReader
// and database.IdentityWriter.
type MockIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]*identity.Identity
	order      []string // insertion order, stands in for created_at ordering

	// Error injection
	GetError         error
	ListError        error
	CountError       error
	FindSimilarError error
	UpsertError      error
	DeleteError      error
}

// NewMockIdentityStore creates a new mock identity store.
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		identities: make(map[string]*identity.Identity),
	}
}

// AddIdentity adds an identity to the mock store.
func (m *MockIdentityStore) AddIdentity(id identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id.ID]; !ok {
		m.order = append(m.order, id.ID)
	}
	m.identities[id.ID] = &id
}

// Get retrieves an identity by ID
func (m *MockIdentityStore) Get(ctx context.Context, id string) (*identity.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.identities[id]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

// ListByUser returns identities for a user in insertion order
func (m *MockIdentityStore) ListByUser(ctx context.Context, userID string) ([]identity.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []identity.Identity
	for _, id := range m.order {
		stored := m.identities[id]
		if stored.UserID == userID {
			results = append(results, *stored)
		}
	}
	return results, nil
}

// Count returns the total number of identities
func (m *MockIdentityStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// FindSimilar ranks the user's identities by cosine distance to the query
func (m *MockIdentityStore) FindSimilar(ctx context.Context, userID string, embedding []float32, limit int) ([]identity.Identity, []float64, error) {
	if m.FindSimilarError != nil {
		return nil, nil, m.FindSimilarError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		id       identity.Identity
		distance float64
	}
	var candidates []scored
	for _, id := range m.order {
		stored := m.identities[id]
		if stored.UserID != userID || !stored.HasEmbedding() {
			continue
		}
		candidates = append(candidates, scored{
			id:       *stored,
			distance: database.CosineDistance(embedding, stored.Embedding),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var results []identity.Identity
	var distances []float64
	for _, c := range candidates {
		results = append(results, c.id)
		distances = append(distances, c.distance)
	}
	return results, distances, nil
}

// Upsert inserts or updates an identity
func (m *MockIdentityStore) Upsert(ctx context.Context, id *identity.Identity) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id.ID]; !ok {
		m.order = append(m.order, id.ID)
	}
	cp := *id
	m.identities[id.ID] = &cp
	return nil
}

// Delete removes an identity by ID
func (m *MockIdentityStore) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		return nil
	}
	delete(m.identities, id)
	for i, stored := range m.order {
		if stored == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type progressKey struct {
	userID string
	module identity.ModuleType
}

// MockProgressStore is an in-memory implementation of database.ProgressStore.
type MockProgressStore struct {
	mu      sync.Mutex
	records map[progressKey]*identity.ProgressRecord

	// Error injection
	GetError  error
	ListError error
	SaveError error
}

// NewMockProgressStore creates a new mock progress store.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		records: make(map[progressKey]*identity.ProgressRecord),
	}
}

// GetProgress returns the record for one module, or nil when absent
func (m *MockProgressStore) GetProgress(ctx context.Context, userID string, module identity.ModuleType) (*identity.ProgressRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[progressKey{userID, module}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// ListProgress returns all records for a user, ordered by module name
func (m *MockProgressStore) ListProgress(ctx context.Context, userID string) ([]identity.ProgressRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []identity.ProgressRecord
	for key, rec := range m.records {
		if key.userID == userID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Module < records[j].Module
	})
	return records, nil
}

// SaveProgress upserts a record, incrementing the lesson counter under the
// store lock so concurrent submissions never double-count.
func (m *MockProgressStore) SaveProgress(ctx context.Context, userID string, rec identity.ProgressRecord, completeLesson bool) (*identity.ProgressRecord, error) {
	if m.SaveError != nil {
		return nil, m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey{userID, rec.Module}
	stored, ok := m.records[key]
	if !ok {
		stored = &identity.ProgressRecord{
			Module:       rec.Module,
			TotalLessons: rec.TotalLessons,
		}
		m.records[key] = stored
	}
	stored.Level = rec.Level
	stored.Accuracy = rec.Accuracy
	if completeLesson && stored.CompletedLessons < stored.TotalLessons {
		stored.CompletedLessons++
	}
	cp := *stored
	return &cp, nil
}
