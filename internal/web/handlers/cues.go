package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/memora-app/memora/internal/cues"
	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/logging"
	"github.com/memora-app/memora/internal/web/middleware"
)

// CuesHandler serves memory cue generation.
type CuesHandler struct {
	reader   database.IdentityReader
	provider cues.Provider
}

// NewCuesHandler creates a cues handler.
func NewCuesHandler(reader database.IdentityReader, provider cues.Provider) *CuesHandler {
	return &CuesHandler{reader: reader, provider: provider}
}

type cueRequest struct {
	IdentityID string   `json:"identity_id"`
	Name       string   `json:"name"`
	Traits     []string `json:"traits"`
}

// Generate handles POST /api/v1/cues. A stored identity is referenced by
// identity_id; alternatively a name plus optional traits describes a person
// not (yet) registered.
func (h *CuesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req cueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.IdentityID == "" && strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "identity_id or name is required")
		return
	}

	var id *identity.Identity
	if req.IdentityID != "" {
		stored, err := h.reader.Get(r.Context(), req.IdentityID)
		if err != nil {
			logging.WithError(err).Errorf("failed to load identity for cue")
			respondError(w, http.StatusInternalServerError, "failed to load identity")
			return
		}
		if stored == nil || stored.UserID != middleware.UserID(r) {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		id = stored
	} else {
		id = &identity.Identity{
			Name:   strings.TrimSpace(req.Name),
			Traits: req.Traits,
		}
	}

	cue, err := h.provider.GenerateCue(r.Context(), id)
	if err != nil {
		logging.WithError(err).Errorf("cue generation failed via %s", h.provider.Name())
		respondError(w, http.StatusServiceUnavailable, "failed to generate cue")
		return
	}
	respondJSON(w, http.StatusOK, cue)
}
