package training

import (
	"context"
	"fmt"

	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
)

// Tracker records exercise results and derives per-module progress.
type Tracker struct {
	store        database.ProgressStore
	difficulty   *DifficultyManager
	totalLessons int
}

// NewTracker creates a progress tracker.
func NewTracker(store database.ProgressStore, difficulty *DifficultyManager, totalLessons int) *Tracker {
	return &Tracker{
		store:        store,
		difficulty:   difficulty,
		totalLessons: totalLessons,
	}
}

// SubmitResult records one finished exercise. The next level comes from the
// difficulty thresholds, and the lesson counts as completed only when the
// accuracy reaches the advance threshold. A currentLevel of 0 or less means
// the level the exercise was played at is unknown and the stored level is
// used instead. Returns the stored record.
func (t *Tracker) SubmitResult(ctx context.Context, userID string, module identity.ModuleType, accuracy float64, currentLevel int) (*identity.ProgressRecord, error) {
	if !module.Valid() {
		return nil, fmt.Errorf("unknown module %q", module)
	}
	if accuracy < 0 || accuracy > 1 {
		return nil, fmt.Errorf("accuracy %v out of range [0, 1]", accuracy)
	}

	level := currentLevel
	if level <= 0 {
		current, err := t.store.GetProgress(ctx, userID, module)
		if err != nil {
			return nil, fmt.Errorf("load progress: %w", err)
		}
		level = MinLevel
		if current != nil {
			level = current.Level
		}
	}

	rec := identity.ProgressRecord{
		Module:       module,
		Level:        t.difficulty.NextLevel(level, accuracy),
		Accuracy:     accuracy,
		TotalLessons: t.totalLessons,
	}
	completeLesson := accuracy >= t.difficulty.AdvanceThreshold()

	stored, err := t.store.SaveProgress(ctx, userID, rec, completeLesson)
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return stored, nil
}

// ProgressFor returns the user's record for one module, or a fresh record at
// the minimum level when the module has not been trained yet.
func (t *Tracker) ProgressFor(ctx context.Context, userID string, module identity.ModuleType) (*identity.ProgressRecord, error) {
	if !module.Valid() {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	stored, err := t.store.GetProgress(ctx, userID, module)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if stored == nil {
		stored = &identity.ProgressRecord{
			Module:       module,
			Level:        MinLevel,
			TotalLessons: t.totalLessons,
		}
	}
	return stored, nil
}

// Progress returns the user's record for every module. Modules without any
// stored result get a fresh record at the minimum level.
func (t *Tracker) Progress(ctx context.Context, userID string) ([]identity.ProgressRecord, error) {
	stored, err := t.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	byModule := make(map[identity.ModuleType]identity.ProgressRecord, len(stored))
	for _, rec := range stored {
		byModule[rec.Module] = rec
	}

	records := make([]identity.ProgressRecord, 0, len(identity.Modules))
	for _, module := range identity.Modules {
		rec, ok := byModule[module]
		if !ok {
			rec = identity.ProgressRecord{
				Module:       module,
				Level:        MinLevel,
				TotalLessons: t.totalLessons,
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
