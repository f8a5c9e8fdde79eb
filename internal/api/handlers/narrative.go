package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/service"
)

// NarrativeHandler exposes the pacing subsystems to the dashboard.
type NarrativeHandler struct {
	director *service.Director
	tension  *service.TensionManager
	arcs     *service.ArcTracker
	analyzer *service.DramaAnalyzer
	ticker   *service.Ticker
}

func NewNarrativeHandler(director *service.Director, tension *service.TensionManager, arcs *service.ArcTracker, analyzer *service.DramaAnalyzer, ticker *service.Ticker) *NarrativeHandler {
	return &NarrativeHandler{
		director: director,
		tension:  tension,
		arcs:     arcs,
		analyzer: analyzer,
		ticker:   ticker,
	}
}

func (h *NarrativeHandler) GetTension(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tension.Stats())
}

func (h *NarrativeHandler) GetDirector(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.director.Stats())
}

func (h *NarrativeHandler) ListActiveArcs(w http.ResponseWriter, r *http.Request) {
	arcs := h.arcs.Active()
	if arcs == nil {
		arcs = []*domain.StoryArc{}
	}
	writeJSON(w, http.StatusOK, arcs)
}

func (h *NarrativeHandler) ListCompletedArcs(w http.ResponseWriter, r *http.Request) {
	arcs := h.arcs.Completed()
	if arcs == nil {
		arcs = []*domain.StoryArc{}
	}
	writeJSON(w, http.StatusOK, arcs)
}

// GetOpportunities runs a fresh analysis pass at the current tick. The
// scan is read-only, so running it outside the tick loop is safe.
func (h *NarrativeHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities := h.analyzer.Analyze(h.ticker.Tick())
	type scored struct {
		*domain.DramaticOpportunity
		Score float64 `json:"score"`
	}
	out := make([]scored, 0, len(opportunities))
	for _, opp := range opportunities {
		out = append(out, scored{DramaticOpportunity: opp, Score: opp.Score()})
	}
	writeJSON(w, http.StatusOK, out)
}
