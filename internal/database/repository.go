// Package database defines the storage interfaces and shared similarity
// primitives for identity and progress records.
package database

import (
	"context"

	"github.com/memora-app/memora/internal/identity"
)

// IdentityReader provides read-only access to stored identities.
type IdentityReader interface {
	// Get retrieves an identity by ID, returns nil if not found.
	Get(ctx context.Context, id string) (*identity.Identity, error)
	// ListByUser returns all identities registered by a user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]identity.Identity, error)
	// Count returns the total number of identities stored.
	Count(ctx context.Context) (int, error)
	// FindSimilar finds the user's identities closest to the given embedding
	// by cosine distance, nearest first, together with the distances.
	FindSimilar(ctx context.Context, userID string, embedding []float32, limit int) ([]identity.Identity, []float64, error)
}

// IdentityWriter provides write access to stored identities.
type IdentityWriter interface {
	// Upsert inserts or updates an identity record.
	Upsert(ctx context.Context, id *identity.Identity) error
	// Delete removes an identity by ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

// ProgressStore persists per-(user, module) training progress.
type ProgressStore interface {
	// GetProgress returns the progress record for one module,
	// or nil when the user has not trained it yet.
	GetProgress(ctx context.Context, userID string, module identity.ModuleType) (*identity.ProgressRecord, error)
	// ListProgress returns all progress records for a user.
	ListProgress(ctx context.Context, userID string) ([]identity.ProgressRecord, error)
	// SaveProgress upserts the record for (userID, rec.Module). When
	// completeLesson is true the stored completed-lesson count is
	// incremented by one (capped at rec.TotalLessons) atomically, so
	// concurrent submissions never double-count. Returns the stored row.
	SaveProgress(ctx context.Context, userID string, rec identity.ProgressRecord, completeLesson bool) (*identity.ProgressRecord, error)
}
