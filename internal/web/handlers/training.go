package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/logging"
	"github.com/memora-app/memora/internal/training"
	"github.com/memora-app/memora/internal/web/middleware"
)

// TrainingHandler serves exercise generation, result submission and progress.
type TrainingHandler struct {
	generator *training.Generator
	tracker   *training.Tracker
	// newRand is swapped in tests to make shuffles reproducible
	newRand func() *rand.Rand
}

// NewTrainingHandler creates a training handler.
func NewTrainingHandler(generator *training.Generator, tracker *training.Tracker) *TrainingHandler {
	return &TrainingHandler{
		generator: generator,
		tracker:   tracker,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type exerciseRequest struct {
	Module identity.ModuleType `json:"module_type"`
	Level  int                 `json:"level"`
}

// GenerateExercise handles POST /api/v1/training/exercise. When no level is
// given the user's stored level for the module is used.
func (h *TrainingHandler) GenerateExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !req.Module.Valid() {
		respondError(w, http.StatusBadRequest, "unknown module type")
		return
	}

	userID := middleware.UserID(r)

	level := req.Level
	if level == 0 {
		level = h.storedLevel(r, userID, req.Module)
	}

	ex, err := h.generator.Generate(r.Context(), h.newRand(), userID, req.Module, level)
	if err != nil {
		respondTrainingError(w, err)
		return
	}

	logging.Component("training").Debugf("generated %s exercise at level %d for %s",
		sanitizeForLog(string(req.Module)), ex.Level, sanitizeForLog(userID))
	respondJSON(w, http.StatusOK, ex)
}

func (h *TrainingHandler) storedLevel(r *http.Request, userID string, module identity.ModuleType) int {
	records, err := h.tracker.Progress(r.Context(), userID)
	if err != nil {
		return training.MinLevel
	}
	for _, rec := range records {
		if rec.Module == module {
			return rec.Level
		}
	}
	return training.MinLevel
}

type resultRequest struct {
	Module   identity.ModuleType `json:"module_type"`
	Accuracy float64             `json:"accuracy"`
	Level    int                 `json:"level"`
}

type progressPayload struct {
	identity.ProgressRecord
	PercentComplete     int  `json:"percentage_complete"`
	NextLessonAvailable bool `json:"next_lesson_available"`
}

func toProgressPayload(rec identity.ProgressRecord) progressPayload {
	return progressPayload{
		ProgressRecord:      rec,
		PercentComplete:     rec.PercentComplete(),
		NextLessonAvailable: rec.CompletedLessons < rec.TotalLessons,
	}
}

// SubmitResult handles POST /api/v1/training/result.
func (h *TrainingHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !req.Module.Valid() {
		respondError(w, http.StatusBadRequest, "unknown module type")
		return
	}
	if req.Accuracy < 0 || req.Accuracy > 1 {
		respondError(w, http.StatusBadRequest, "accuracy must be between 0 and 1")
		return
	}

	rec, err := h.tracker.SubmitResult(r.Context(), middleware.UserID(r), req.Module, req.Accuracy, req.Level)
	if err != nil {
		logging.WithError(err).Errorf("failed to record training result")
		respondError(w, http.StatusInternalServerError, "failed to record result")
		return
	}
	respondJSON(w, http.StatusOK, toProgressPayload(*rec))
}

// GetProgress handles GET /api/v1/training/progress. With a module_type
// query parameter it returns that module's record alone.
func (h *TrainingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	if module := identity.ModuleType(r.URL.Query().Get("module_type")); module != "" {
		if !module.Valid() {
			respondError(w, http.StatusBadRequest, "unknown module type")
			return
		}
		rec, err := h.tracker.ProgressFor(r.Context(), middleware.UserID(r), module)
		if err != nil {
			logging.WithError(err).Errorf("failed to load training progress")
			respondError(w, http.StatusInternalServerError, "failed to load progress")
			return
		}
		respondJSON(w, http.StatusOK, toProgressPayload(*rec))
		return
	}

	records, err := h.tracker.Progress(r.Context(), middleware.UserID(r))
	if err != nil {
		logging.WithError(err).Errorf("failed to load training progress")
		respondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	payload := make([]progressPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toProgressPayload(rec))
	}
	respondJSON(w, http.StatusOK, map[string]any{"progress": payload})
}
