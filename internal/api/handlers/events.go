package handlers

import (
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/service"
)

// EventsHandler serves the event queue's state.
type EventsHandler struct {
	queue *service.EventQueue
}

func NewEventsHandler(queue *service.EventQueue) *EventsHandler {
	return &EventsHandler{queue: queue}
}

func (h *EventsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	events := h.queue.Active()
	if events == nil {
		events = []*domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListUpcoming returns the next scheduled events in firing order.
// ?limit= caps the count, default 20.
func (h *EventsHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	events := h.queue.Upcoming(limit)
	if events == nil {
		events = []*domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
