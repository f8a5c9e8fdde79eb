package service

import (
	"fmt"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultArcStaleThreshold = 100

// ArcTracker maintains multi-tick story threads. Arcs advance through
// their status machine automatically as beats accumulate, complete at
// eight beats, and are abandoned when nothing touches them for too long.
type ArcTracker struct {
	mu     sync.Mutex
	logger *zap.Logger

	active    map[string]*domain.StoryArc
	completed []*domain.StoryArc

	StaleThreshold int64
}

// NewArcTracker creates an empty tracker.
func NewArcTracker(logger *zap.Logger) *ArcTracker {
	return &ArcTracker{
		logger:         logger,
		active:         make(map[string]*domain.StoryArc),
		StaleThreshold: DefaultArcStaleThreshold,
	}
}

// CreateArc opens a new narrative thread in Setup.
func (t *ArcTracker) CreateArc(tick int64, arcType, title, theme string, characters []string) *domain.StoryArc {
	t.mu.Lock()
	defer t.mu.Unlock()

	arc := &domain.StoryArc{
		ID:             "arc_" + uuid.New().String(),
		Type:           arcType,
		Title:          title,
		Theme:          theme,
		Characters:     append([]string(nil), characters...),
		StartTick:      tick,
		Status:         domain.ArcSetup,
		Completion:     domain.ArcSetup.Completion(),
		LastUpdateTick: tick,
	}
	t.active[arc.ID] = arc

	t.logger.Info("story arc created",
		zap.String("arc_id", arc.ID),
		zap.String("title", title),
		zap.String("type", arcType))

	return arc.Clone()
}

// AddBeat attaches a narrative beat to an arc and advances its status if
// the beat count crosses a threshold.
func (t *ArcTracker) AddBeat(arcID string, tick int64, description, beatType string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	arc, ok := t.active[arcID]
	if !ok {
		return fmt.Errorf("arc %s: not found", arcID)
	}

	arc.Beats = append(arc.Beats, domain.Beat{Tick: tick, Description: description, Type: beatType})
	arc.LastUpdateTick = tick

	t.progress(arc, tick)
	return nil
}

// progress advances an arc one status per beat-count threshold crossed.
func (t *ArcTracker) progress(arc *domain.StoryArc, tick int64) {
	beats := len(arc.Beats)
	switch {
	case arc.Status == domain.ArcSetup && beats >= 2:
		t.advance(arc, domain.ArcDeveloping)
	case arc.Status == domain.ArcDeveloping && beats >= 5:
		t.advance(arc, domain.ArcClimax)
	case arc.Status == domain.ArcClimax && beats >= 7:
		t.advance(arc, domain.ArcResolution)
	case arc.Status == domain.ArcResolution && beats >= 8:
		t.completeLocked(arc, tick)
	}
}

func (t *ArcTracker) advance(arc *domain.StoryArc, status domain.ArcStatus) {
	old := arc.Status
	arc.Status = status
	arc.Completion = status.Completion()
	t.logger.Info("story arc advanced",
		zap.String("arc_id", arc.ID),
		zap.String("from", string(old)),
		zap.String("to", string(status)))
}

func (t *ArcTracker) completeLocked(arc *domain.StoryArc, tick int64) {
	delete(t.active, arc.ID)
	t.advance(arc, domain.ArcComplete)
	arc.LastUpdateTick = tick
	t.completed = append(t.completed, arc)
}

// Abandon retires an arc that is no longer viable.
func (t *ArcTracker) Abandon(arcID string, tick int64, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	arc, ok := t.active[arcID]
	if !ok {
		return fmt.Errorf("arc %s: not found", arcID)
	}
	delete(t.active, arcID)

	arc.Status = domain.ArcAbandoned
	arc.Completion = domain.ArcAbandoned.Completion()
	arc.LastUpdateTick = tick
	arc.Beats = append(arc.Beats, domain.Beat{Tick: tick, Description: "Abandoned: " + reason, Type: "abandonment"})
	t.completed = append(t.completed, arc)

	t.logger.Info("story arc abandoned",
		zap.String("arc_id", arcID),
		zap.String("reason", reason))
	return nil
}

// PruneStale abandons every active arc untouched for longer than the
// staleness threshold. Returns how many were abandoned.
func (t *ArcTracker) PruneStale(tick int64) int {
	t.mu.Lock()
	var stale []string
	for id, arc := range t.active {
		if tick-arc.LastUpdateTick > t.StaleThreshold {
			stale = append(stale, id)
		}
	}
	t.mu.Unlock()

	for _, id := range stale {
		if err := t.Abandon(id, tick, "inactive too long"); err != nil {
			t.logger.Warn("prune stale arc failed", zap.String("arc_id", id), zap.Error(err))
		}
	}
	return len(stale)
}

// Arc returns a copy of an active arc.
func (t *ArcTracker) Arc(arcID string) (*domain.StoryArc, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	arc, ok := t.active[arcID]
	if !ok {
		return nil, fmt.Errorf("arc %s: not found", arcID)
	}
	return arc.Clone(), nil
}

// ArcsFor returns active arcs involving the given character.
func (t *ArcTracker) ArcsFor(characterID string) []*domain.StoryArc {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*domain.StoryArc
	for _, arc := range t.active {
		if arc.Involves(characterID) {
			out = append(out, arc.Clone())
		}
	}
	return out
}

// Active returns copies of all active arcs.
func (t *ArcTracker) Active() []*domain.StoryArc {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*domain.StoryArc, 0, len(t.active))
	for _, arc := range t.active {
		out = append(out, arc.Clone())
	}
	return out
}

// Completed returns copies of all finished arcs, abandoned included.
func (t *ArcTracker) Completed() []*domain.StoryArc {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*domain.StoryArc, 0, len(t.completed))
	for _, arc := range t.completed {
		out = append(out, arc.Clone())
	}
	return out
}

// ArcStats reports tracker counters for operators.
type ArcStats struct {
	ActiveArcs    int `json:"active_arcs"`
	CompletedArcs int `json:"completed_arcs"`
	TotalArcs     int `json:"total_arcs"`
}

// Stats returns current tracker counters.
func (t *ArcTracker) Stats() ArcStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ArcStats{
		ActiveArcs:    len(t.active),
		CompletedArcs: len(t.completed),
		TotalArcs:     len(t.active) + len(t.completed),
	}
}
