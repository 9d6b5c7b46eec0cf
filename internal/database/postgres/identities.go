package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/memora-app/memora/internal/identity"
)

// IdentityRepository provides PostgreSQL-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

const identityColumns = `id, user_id, name, role, traits, embedding::text, landmarks, stimulus_ref, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*identity.Identity, error) {
	var id identity.Identity
	var traitsJSON []byte
	var embStr sql.NullString
	var landmarksJSON []byte

	err := row.Scan(
		&id.ID,
		&id.UserID,
		&id.Name,
		&id.Role,
		&traitsJSON,
		&embStr,
		&landmarksJSON,
		&id.StimulusRef,
		&id.CreatedAt,
		&id.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(traitsJSON) > 0 {
		if err := json.Unmarshal(traitsJSON, &id.Traits); err != nil {
			return nil, fmt.Errorf("unmarshal traits: %w", err)
		}
	}

	if embStr.Valid && embStr.String != "" {
		var vec pgvector.Vector
		if err := vec.Parse(embStr.String); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
		id.Embedding = vec.Slice()
	}

	if len(landmarksJSON) > 0 {
		if err := json.Unmarshal(landmarksJSON, &id.Landmarks); err != nil {
			return nil, fmt.Errorf("unmarshal landmarks: %w", err)
		}
	}

	return &id, nil
}

// Get retrieves an identity by ID, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, id string) (*identity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	result, err := scanIdentity(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return result, nil
}

// ListByUser returns all identities registered by a user, oldest first.
func (r *IdentityRepository) ListByUser(ctx context.Context, userID string) ([]identity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []identity.Identity
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, *id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// ListEmbedded returns every identity that carries an embedding, across all
// users. Used to warm the in-memory similarity index at startup.
func (r *IdentityRepository) ListEmbedded(ctx context.Context) ([]identity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE embedding IS NOT NULL ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedded identities: %w", err)
	}
	defer rows.Close()

	var identities []identity.Identity
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, *id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedded identities: %w", err)
	}
	return identities, nil
}

// Count returns the total number of identities stored.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// FindSimilar finds the user's identities closest to the given embedding by
// cosine distance, nearest first.
func (r *IdentityRepository) FindSimilar(ctx context.Context, userID string, embedding []float32, limit int) ([]identity.Identity, []float64, error) {
	if len(embedding) == 0 {
		return nil, nil, errors.New("empty query embedding")
	}

	query := `
		SELECT ` + identityColumns + `, embedding <=> $2 AS distance
		FROM identities
		WHERE user_id = $1 AND embedding IS NOT NULL
		ORDER BY distance
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar identities: %w", err)
	}
	defer rows.Close()

	var identities []identity.Identity
	var distances []float64
	for rows.Next() {
		var id identity.Identity
		var traitsJSON []byte
		var embStr sql.NullString
		var landmarksJSON []byte
		var distance float64

		err := rows.Scan(
			&id.ID, &id.UserID, &id.Name, &id.Role, &traitsJSON,
			&embStr, &landmarksJSON, &id.StimulusRef, &id.CreatedAt, &id.UpdatedAt,
			&distance,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan similar identity: %w", err)
		}

		if len(traitsJSON) > 0 {
			if err := json.Unmarshal(traitsJSON, &id.Traits); err != nil {
				return nil, nil, fmt.Errorf("unmarshal traits: %w", err)
			}
		}
		if embStr.Valid && embStr.String != "" {
			var vec pgvector.Vector
			if err := vec.Parse(embStr.String); err != nil {
				return nil, nil, fmt.Errorf("parse embedding: %w", err)
			}
			id.Embedding = vec.Slice()
		}
		if len(landmarksJSON) > 0 {
			if err := json.Unmarshal(landmarksJSON, &id.Landmarks); err != nil {
				return nil, nil, fmt.Errorf("unmarshal landmarks: %w", err)
			}
		}

		identities = append(identities, id)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate similar identities: %w", err)
	}
	return identities, distances, nil
}

// Upsert inserts or updates an identity record.
func (r *IdentityRepository) Upsert(ctx context.Context, id *identity.Identity) error {
	traitsJSON, err := json.Marshal(id.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}

	var landmarksArg any
	if !id.Landmarks.IsEmpty() {
		landmarksJSON, err := json.Marshal(id.Landmarks)
		if err != nil {
			return fmt.Errorf("marshal landmarks: %w", err)
		}
		landmarksArg = landmarksJSON
	}

	var embeddingArg any
	if id.HasEmbedding() {
		embeddingArg = pgvector.NewVector(id.Embedding)
	}

	query := `
		INSERT INTO identities (id, user_id, name, role, traits, embedding, landmarks, stimulus_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			traits = EXCLUDED.traits,
			embedding = EXCLUDED.embedding,
			landmarks = EXCLUDED.landmarks,
			stimulus_ref = EXCLUDED.stimulus_ref,
			updated_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		id.ID, id.UserID, id.Name, id.Role, traitsJSON, embeddingArg, landmarksArg, id.StimulusRef)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// Delete removes an identity by ID. Deleting a missing ID is not an error.
func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM identities WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
