package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/logging"
	"github.com/memora-app/memora/internal/web/middleware"
)

// IdentitiesHandler serves identity CRUD. Writes keep the in-memory
// similarity index in step with the store.
type IdentitiesHandler struct {
	reader database.IdentityReader
	writer database.IdentityWriter
	index  *database.IdentityIndex
}

// NewIdentitiesHandler creates an identities handler. The index may be nil.
func NewIdentitiesHandler(reader database.IdentityReader, writer database.IdentityWriter, index *database.IdentityIndex) *IdentitiesHandler {
	return &IdentitiesHandler{reader: reader, writer: writer, index: index}
}

type identityRequest struct {
	Name        string               `json:"name"`
	Role        string               `json:"role"`
	Traits      []string             `json:"traits"`
	Embedding   []float32            `json:"embedding"`
	Landmarks   identity.LandmarkSet `json:"landmarks"`
	StimulusRef string               `json:"stimulus_ref"`
}

// List handles GET /api/v1/identities.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.reader.ListByUser(r.Context(), middleware.UserID(r))
	if err != nil {
		logging.WithError(err).Errorf("failed to list identities")
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}
	if identities == nil {
		identities = []identity.Identity{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"identities": identities})
}

// Get handles GET /api/v1/identities/{id}.
func (h *IdentitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ownedIdentity(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, id)
}

// Create handles POST /api/v1/identities. When the payload carries landmarks
// but no trait phrases, traits are derived from the facial geometry.
func (h *IdentitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UTC()
	id := identity.Identity{
		ID:          uuid.NewString(),
		UserID:      middleware.UserID(r),
		Name:        strings.TrimSpace(req.Name),
		Role:        strings.TrimSpace(req.Role),
		Traits:      req.Traits,
		Embedding:   req.Embedding,
		Landmarks:   req.Landmarks,
		StimulusRef: req.StimulusRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(id.Traits) == 0 && !id.Landmarks.IsEmpty() {
		id.Traits = identity.DescribeTraits(identity.AnalyzeProportions(id.Landmarks))
	}

	if err := h.writer.Upsert(r.Context(), &id); err != nil {
		logging.WithError(err).Errorf("failed to store identity")
		respondError(w, http.StatusInternalServerError, "failed to store identity")
		return
	}
	if h.index != nil {
		h.index.Add(&id)
	}

	logging.Component("identities").Infof("registered identity %s for %s",
		sanitizeForLog(id.Name), sanitizeForLog(id.UserID))
	respondJSON(w, http.StatusCreated, id)
}

// Update handles PUT /api/v1/identities/{id}.
func (h *IdentitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedIdentity(w, r)
	if !ok {
		return
	}

	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Role = strings.TrimSpace(req.Role)
	existing.Traits = req.Traits
	existing.Embedding = req.Embedding
	existing.Landmarks = req.Landmarks
	existing.StimulusRef = req.StimulusRef
	existing.UpdatedAt = time.Now().UTC()
	if len(existing.Traits) == 0 && !existing.Landmarks.IsEmpty() {
		existing.Traits = identity.DescribeTraits(identity.AnalyzeProportions(existing.Landmarks))
	}

	if err := h.writer.Upsert(r.Context(), existing); err != nil {
		logging.WithError(err).Errorf("failed to update identity")
		respondError(w, http.StatusInternalServerError, "failed to update identity")
		return
	}
	if h.index != nil {
		h.index.Add(existing)
	}
	respondJSON(w, http.StatusOK, existing)
}

// Delete handles DELETE /api/v1/identities/{id}.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedIdentity(w, r)
	if !ok {
		return
	}

	if err := h.writer.Delete(r.Context(), existing.ID); err != nil {
		logging.WithError(err).Errorf("failed to delete identity")
		respondError(w, http.StatusInternalServerError, "failed to delete identity")
		return
	}
	if h.index != nil {
		h.index.Remove(existing.ID)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedIdentity loads the path identity and checks it belongs to the
// requesting user. A foreign identity reads as not found.
func (h *IdentitiesHandler) ownedIdentity(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, err := h.reader.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logging.WithError(err).Errorf("failed to load identity")
		respondError(w, http.StatusInternalServerError, "failed to load identity")
		return nil, false
	}
	if id == nil || id.UserID != middleware.UserID(r) {
		respondError(w, http.StatusNotFound, "identity not found")
		return nil, false
	}
	return id, true
}
