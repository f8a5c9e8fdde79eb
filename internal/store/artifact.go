package store

import (
	"fmt"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

// Artifacts holds every information artifact in the world: observations,
// reports, rumors, messages. Artifacts are immutable in claim and data;
// lifecycle state (superseded_by, contradictions, known_by) is the only
// thing that changes after creation.
type Artifacts struct {
	mu     sync.RWMutex
	logger *zap.Logger

	byID      map[string]*domain.Artifact
	order     []string
	bySubject map[string][]string
	seq       int
}

// NewArtifacts creates an empty artifact store.
func NewArtifacts(logger *zap.Logger) *Artifacts {
	return &Artifacts{
		logger:    logger,
		byID:      make(map[string]*domain.Artifact),
		bySubject: make(map[string][]string),
	}
}

// Create adds a new artifact. knownBy seeds the access set; an empty list
// creates an artifact nobody knows yet, which is valid for messages in
// transit.
func (s *Artifacts) Create(tick int64, artifactType domain.ArtifactType, subject, claim string, data map[string]any, source string, reliability domain.Reliability, knownBy []string) (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	a := &domain.Artifact{
		ID:          fmt.Sprintf("artifact_%s_%d_%d", subject, tick, s.seq),
		CreatedTick: tick,
		Type:        artifactType,
		Subject:     subject,
		Claim:       claim,
		Data:        data,
		Source:      source,
		Reliability: reliability,
		Contradicts: make(map[string]bool),
		KnownBy:     make(map[string]bool, len(knownBy)),
	}
	if a.Data == nil {
		a.Data = make(map[string]any)
	}
	for _, actor := range knownBy {
		a.KnownBy[actor] = true
	}

	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	s.bySubject[subject] = append(s.bySubject[subject], a.ID)

	s.logger.Debug("created artifact",
		zap.String("artifact_id", a.ID),
		zap.String("type", string(artifactType)),
		zap.String("subject", subject),
		zap.String("reliability", string(reliability)))

	return a.Clone(), nil
}

// Get returns a copy of the artifact, or ErrNotFound.
func (s *Artifacts) Get(id string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", id, ErrNotFound)
	}
	return a.Clone(), nil
}

// Share makes an actor aware of an artifact. Sharing is idempotent; an
// actor cannot un-know something.
func (s *Artifacts) Share(artifactID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[artifactID]
	if !ok {
		return fmt.Errorf("share artifact %s: %w", artifactID, ErrNotFound)
	}
	a.KnownBy[actor] = true
	return nil
}

// Supersede points oldID at its replacement. First write wins: a pointer
// already set is never reassigned, so correction chains stay linear.
func (s *Artifacts) Supersede(oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[oldID]
	if !ok {
		return fmt.Errorf("supersede artifact %s: %w", oldID, ErrNotFound)
	}
	if _, ok := s.byID[newID]; !ok {
		return fmt.Errorf("supersede by artifact %s: %w", newID, ErrNotFound)
	}
	if old.SupersededBy != "" {
		return nil
	}
	old.SupersededBy = newID
	return nil
}

// MarkContradiction records a symmetric conflict between two artifacts.
func (s *Artifacts) MarkContradiction(a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, ok := s.byID[a]
	if !ok {
		return fmt.Errorf("contradiction artifact %s: %w", a, ErrNotFound)
	}
	second, ok := s.byID[b]
	if !ok {
		return fmt.Errorf("contradiction artifact %s: %w", b, ErrNotFound)
	}
	first.Contradicts[b] = true
	second.Contradicts[a] = true
	return nil
}

// KnownBy returns copies of the artifacts the actor knows, in creation
// order, optionally filtered to one subject. Superseded artifacts are
// hidden unless explicitly requested.
func (s *Artifacts) KnownBy(actor, aboutSubject string, includeSuperseded bool) []*domain.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Artifact
	for _, id := range s.order {
		a := s.byID[id]
		if !a.KnownBy[actor] {
			continue
		}
		if aboutSubject != "" && a.Subject != aboutSubject {
			continue
		}
		if a.Superseded() && !includeSuperseded {
			continue
		}
		out = append(out, a.Clone())
	}
	return out
}

// LatestAbout returns the newest non-superseded artifact about a subject.
// When knownBy is non-empty, only artifacts that actor knows qualify.
func (s *Artifacts) LatestAbout(subject, knownBy string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bySubject[subject]
	for i := len(ids) - 1; i >= 0; i-- {
		a := s.byID[ids[i]]
		if a.Superseded() {
			continue
		}
		if knownBy != "" && !a.KnownBy[knownBy] {
			continue
		}
		return a.Clone(), nil
	}
	return nil, fmt.Errorf("artifact about %s: %w", subject, ErrNotFound)
}

// All returns copies of every artifact in creation order.
func (s *Artifacts) All() []*domain.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Artifact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Stats summarizes the store for operators.
func (s *Artifacts) Stats() domain.ArtifactStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.ArtifactStats{Total: len(s.order)}
	for _, a := range s.byID {
		if a.Superseded() {
			stats.Superseded++
		} else {
			stats.Active++
		}
	}
	return stats
}
