package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/memora-app/memora/internal/identity"
)

// ProgressRepository provides PostgreSQL-backed training progress storage.
type ProgressRepository struct {
	pool *Pool
}

// NewProgressRepository creates a new PostgreSQL progress repository.
func NewProgressRepository(pool *Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// GetProgress returns the progress record for one module, or nil when the
// user has not trained it yet.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID string, module identity.ModuleType) (*identity.ProgressRecord, error) {
	query := `
		SELECT module_type, level, accuracy, completed_lessons, total_lessons
		FROM training_progress
		WHERE user_id = $1 AND module_type = $2
	`

	var rec identity.ProgressRecord
	err := r.pool.QueryRow(ctx, query, userID, string(module)).Scan(
		&rec.Module, &rec.Level, &rec.Accuracy, &rec.CompletedLessons, &rec.TotalLessons)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return &rec, nil
}

// ListProgress returns all progress records for a user.
func (r *ProgressRepository) ListProgress(ctx context.Context, userID string) ([]identity.ProgressRecord, error) {
	query := `
		SELECT module_type, level, accuracy, completed_lessons, total_lessons
		FROM training_progress
		WHERE user_id = $1
		ORDER BY module_type
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query progress records: %w", err)
	}
	defer rows.Close()

	var records []identity.ProgressRecord
	for rows.Next() {
		var rec identity.ProgressRecord
		err := rows.Scan(&rec.Module, &rec.Level, &rec.Accuracy, &rec.CompletedLessons, &rec.TotalLessons)
		if err != nil {
			return nil, fmt.Errorf("scan progress record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress records: %w", err)
	}
	return records, nil
}

// SaveProgress upserts the record for (userID, rec.Module). The lesson
// counter is incremented inside the statement so concurrent submissions
// never double-count, and never exceeds the lesson total.
func (r *ProgressRepository) SaveProgress(ctx context.Context, userID string, rec identity.ProgressRecord, completeLesson bool) (*identity.ProgressRecord, error) {
	increment := 0
	if completeLesson {
		increment = 1
	}

	query := `
		INSERT INTO training_progress (user_id, module_type, level, accuracy, completed_lessons, total_lessons, updated_at)
		VALUES ($1, $2, $3, $4, LEAST($6, $5), $6, NOW())
		ON CONFLICT (user_id, module_type) DO UPDATE SET
			level = EXCLUDED.level,
			accuracy = EXCLUDED.accuracy,
			completed_lessons = LEAST(training_progress.total_lessons, training_progress.completed_lessons + $5),
			updated_at = NOW()
		RETURNING module_type, level, accuracy, completed_lessons, total_lessons
	`

	var stored identity.ProgressRecord
	err := r.pool.QueryRow(ctx, query,
		userID, string(rec.Module), rec.Level, rec.Accuracy, increment, rec.TotalLessons,
	).Scan(&stored.Module, &stored.Level, &stored.Accuracy, &stored.CompletedLessons, &stored.TotalLessons)
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return &stored, nil
}
