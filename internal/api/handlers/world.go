package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/service"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"github.com/go-chi/chi/v5"
)

// WorldHandler serves read-only views of the world registries and the
// epistemic layers. The dashboard never mutates anything through it.
type WorldHandler struct {
	world   *service.World
	ledger  domain.Ledger
	beliefs *service.BeliefService
}

func NewWorldHandler(world *service.World, ledger domain.Ledger, beliefs *service.BeliefService) *WorldHandler {
	return &WorldHandler{world: world, ledger: ledger, beliefs: beliefs}
}

func (h *WorldHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.world.Characters())
}

func (h *WorldHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.world.Character(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "character not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load character")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *WorldHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.world.Locations())
}

// GetBeliefs returns a character's beliefs, optionally filtered with
// ?min_confidence=.
func (h *WorldHandler) GetBeliefs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.world.Character(id); err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}

	minConfidence := 0.0
	if raw := r.URL.Query().Get("min_confidence"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_confidence")
			return
		}
		minConfidence = v
	}

	beliefs := h.beliefs.Beliefs(id, minConfidence)
	if beliefs == nil {
		beliefs = []*domain.Belief{}
	}
	writeJSON(w, http.StatusOK, beliefs)
}

// GetKnown returns the artifacts a character knows, optionally filtered
// with ?subject=.
func (h *WorldHandler) GetKnown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.world.Character(id); err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}

	known := h.world.KnownArtifacts(id, r.URL.Query().Get("subject"))
	if known == nil {
		known = []*domain.Artifact{}
	}
	writeJSON(w, http.StatusOK, known)
}

// GetFacts returns the objective facts about a subject. This is the
// operator's audit view; characters never see it.
func (h *WorldHandler) GetFacts(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")

	since := domain.NoTick
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		since = v
	}

	facts := h.ledger.FactsAbout(subject, since, domain.NoTick)
	if facts == nil {
		facts = []*domain.Fact{}
	}
	writeJSON(w, http.StatusOK, facts)
}
