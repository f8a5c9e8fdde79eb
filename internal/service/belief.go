package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultReinforceDelta       = 0.10
	DefaultChallengeDelta       = 0.15
	DefaultResolveFavorDelta    = 0.15
	DefaultResolvePenaltyDelta  = 0.20
	DefaultContradictionDamping = 0.7
	DefaultChallengeErosion     = 3
)

// ErrBeliefNotFound is returned when an actor holds no belief about the
// requested artifact.
var ErrBeliefNotFound = fmt.Errorf("belief not found")

// BeliefService maintains each actor's subjective stance on the artifacts
// they know. Beliefs are formed from artifacts, never injected: the only
// entry point is FormBelief, and the only mutations are reinforcement,
// challenge, and contradiction resolution.
type BeliefService struct {
	mu        sync.RWMutex
	artifacts domain.ArtifactStore
	logger    *zap.Logger

	// beliefs[actor][artifactID]
	beliefs        map[string]map[string]*domain.Belief
	contradictions map[string][]domain.ContradictionPair

	ReinforceDelta       float64
	ChallengeDelta       float64
	ResolveFavorDelta    float64
	ResolvePenaltyDelta  float64
	ContradictionDamping float64
	ChallengeErosion     int
}

// NewBeliefService wires the belief graph against the artifact store it
// reads claims from.
func NewBeliefService(artifacts domain.ArtifactStore, logger *zap.Logger) *BeliefService {
	return &BeliefService{
		artifacts:            artifacts,
		logger:               logger,
		beliefs:              make(map[string]map[string]*domain.Belief),
		contradictions:       make(map[string][]domain.ContradictionPair),
		ReinforceDelta:       DefaultReinforceDelta,
		ChallengeDelta:       DefaultChallengeDelta,
		ResolveFavorDelta:    DefaultResolveFavorDelta,
		ResolvePenaltyDelta:  DefaultResolvePenaltyDelta,
		ContradictionDamping: DefaultContradictionDamping,
		ChallengeErosion:     DefaultChallengeErosion,
	}
}

// FormBelief builds an actor's initial stance on an artifact from the
// artifact's reliability, the actor's trust in the source, and the actor's
// skepticism. Forming a belief about something the actor already has a
// stance on reinforces the existing belief instead.
//
// If the new artifact's subject collides with artifacts behind existing
// beliefs and the claims differ, the new belief forms weakened and each
// conflict is recorded as an unresolved contradiction. The priors are
// left alone; they change only through reinforce, challenge, or
// resolution.
func (s *BeliefService) FormBelief(tick int64, actor string, artifact *domain.Artifact, sourceTrust, skepticism float64) (*domain.Belief, error) {
	if artifact == nil {
		return nil, fmt.Errorf("form belief for %s: nil artifact", actor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.beliefs[actor][artifact.ID]; ok {
		s.reinforceLocked(tick, existing, artifact.ID)
		return existing.Clone(), nil
	}

	confidence := clamp01((artifact.Reliability.Score()*0.5 + sourceTrust*0.5) * (1 - skepticism))
	belief := &domain.Belief{
		Actor:         actor,
		ArtifactID:    artifact.ID,
		State:         domain.BeliefStateForScore(confidence),
		Confidence:    confidence,
		Justification: fmt.Sprintf("learned from %s", artifact.Source),
		BasedOn:       []string{artifact.ID},
		FormedTick:    tick,
		UpdatedTick:   tick,
	}

	if s.beliefs[actor] == nil {
		s.beliefs[actor] = make(map[string]*domain.Belief)
	}
	s.beliefs[actor][artifact.ID] = belief

	s.detectContradictionsLocked(tick, actor, artifact, belief)

	s.logger.Debug("belief formed",
		zap.String("actor", actor),
		zap.String("artifact_id", artifact.ID),
		zap.String("state", string(belief.State)),
		zap.Float64("confidence", confidence))

	return belief.Clone(), nil
}

// detectContradictionsLocked compares the new artifact against the
// artifacts behind the actor's existing beliefs. Two artifacts about the
// same subject with different claims cannot both be held at full strength.
func (s *BeliefService) detectContradictionsLocked(tick int64, actor string, artifact *domain.Artifact, belief *domain.Belief) {
	conflicted := false
	for otherID := range s.beliefs[actor] {
		if otherID == artifact.ID {
			continue
		}
		prior, err := s.artifacts.Get(otherID)
		if err != nil {
			continue
		}
		if prior.Subject != artifact.Subject || prior.Claim == artifact.Claim {
			continue
		}
		if prior.Superseded() && prior.SupersededBy == artifact.ID {
			continue
		}
		// Two direct observations never conflict. Watching the subject do
		// one thing and later another is an update, not a contradiction.
		if prior.Type == domain.ArtifactDirectObservation && artifact.Type == domain.ArtifactDirectObservation {
			continue
		}

		pair := domain.NewContradictionPair(artifact.ID, otherID)
		if s.hasPairLocked(actor, pair) {
			continue
		}
		s.contradictions[actor] = append(s.contradictions[actor], pair)
		if err := s.artifacts.MarkContradiction(artifact.ID, otherID); err != nil {
			s.logger.Warn("mark contradiction failed",
				zap.String("actor", actor), zap.Error(err))
		}
		conflicted = true

		s.logger.Debug("contradiction detected",
			zap.String("actor", actor),
			zap.String("artifact_a", pair.A),
			zap.String("artifact_b", pair.B))
	}

	// The penalty lands once per formation, however many priors disagree,
	// and only on the belief being formed.
	if conflicted {
		s.weakenLocked(tick, belief)
	}
}

func (s *BeliefService) hasPairLocked(actor string, pair domain.ContradictionPair) bool {
	for _, p := range s.contradictions[actor] {
		if p == pair {
			return true
		}
	}
	return false
}

// weakenLocked applies the contradiction penalty: confidence is damped and
// the state slides one notch.
func (s *BeliefService) weakenLocked(tick int64, b *domain.Belief) {
	b.Confidence = clamp01(b.Confidence * s.ContradictionDamping)
	b.State = b.State.AdjustForContradiction()
	b.UpdatedTick = tick
}

// Reinforce strengthens an actor's belief when corroborating information
// arrives. A non-empty evidenceID joins the belief's supporting evidence.
func (s *BeliefService) Reinforce(tick int64, actor, artifactID, evidenceID string) (*domain.Belief, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beliefs[actor][artifactID]
	if !ok {
		return nil, fmt.Errorf("reinforce %s/%s: %w", actor, artifactID, ErrBeliefNotFound)
	}
	s.reinforceLocked(tick, b, evidenceID)
	return b.Clone(), nil
}

func (s *BeliefService) reinforceLocked(tick int64, b *domain.Belief, evidenceID string) {
	b.Confidence = clamp01(b.Confidence + s.ReinforceDelta)
	// State climbs only when confidence has crossed into a stronger band,
	// and then one step at a time.
	if band := domain.BeliefStateForScore(b.Confidence); band.LadderIndex() < b.State.LadderIndex() {
		b.State = b.State.StepToward(band)
	}
	if evidenceID != "" && !slices.Contains(b.BasedOn, evidenceID) {
		b.BasedOn = append(b.BasedOn, evidenceID)
	}
	b.ReinforcedCount++
	b.UpdatedTick = tick
}

// Challenge erodes an actor's belief when conflicting information arrives.
// Repeated challenges force the belief to uncertain regardless of how
// strong it started.
func (s *BeliefService) Challenge(tick int64, actor, artifactID string) (*domain.Belief, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beliefs[actor][artifactID]
	if !ok {
		return nil, fmt.Errorf("challenge %s/%s: %w", actor, artifactID, ErrBeliefNotFound)
	}

	b.Confidence = clamp01(b.Confidence - s.ChallengeDelta)
	// State falls only when confidence has dropped into a weaker band.
	if band := domain.BeliefStateForScore(b.Confidence); band.LadderIndex() > b.State.LadderIndex() {
		b.State = b.State.StepToward(band)
	}
	b.ChallengedCount++
	if b.ChallengedCount >= s.ChallengeErosion {
		b.State = domain.StateUncertain
	}
	b.UpdatedTick = tick

	return b.Clone(), nil
}

// ResolveContradiction settles one of an actor's unresolved contradictions
// in favor of favoredID. The favored belief strengthens, the other is
// penalized and forced to skeptical, and the pair is cleared.
func (s *BeliefService) ResolveContradiction(tick int64, actor, favoredID, otherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := domain.NewContradictionPair(favoredID, otherID)
	idx := -1
	for i, p := range s.contradictions[actor] {
		if p == pair {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("resolve contradiction %s/%s for %s: %w", favoredID, otherID, actor, ErrBeliefNotFound)
	}

	if favored, ok := s.beliefs[actor][favoredID]; ok {
		favored.Confidence = clamp01(favored.Confidence + s.ResolveFavorDelta)
		favored.State = domain.BeliefStateForScore(favored.Confidence)
		favored.UpdatedTick = tick
	}
	if other, ok := s.beliefs[actor][otherID]; ok {
		other.Confidence = clamp01(other.Confidence - s.ResolvePenaltyDelta)
		other.State = domain.StateSkeptical
		other.UpdatedTick = tick
	}

	s.contradictions[actor] = append(s.contradictions[actor][:idx], s.contradictions[actor][idx+1:]...)

	s.logger.Debug("contradiction resolved",
		zap.String("actor", actor),
		zap.String("favored", favoredID),
		zap.String("rejected", otherID))

	return nil
}

// Belief returns an actor's stance on one artifact.
func (s *BeliefService) Belief(actor, artifactID string) (*domain.Belief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.beliefs[actor][artifactID]
	if !ok {
		return nil, fmt.Errorf("belief %s/%s: %w", actor, artifactID, ErrBeliefNotFound)
	}
	return b.Clone(), nil
}

// Beliefs returns all of an actor's beliefs, optionally filtered by a
// minimum confidence.
func (s *BeliefService) Beliefs(actor string, minConfidence float64) []*domain.Belief {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Belief
	for _, b := range s.beliefs[actor] {
		if b.Confidence < minConfidence {
			continue
		}
		out = append(out, b.Clone())
	}
	return out
}

// Contradictions returns the actor's unresolved contradiction pairs.
func (s *BeliefService) Contradictions(actor string) []domain.ContradictionPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ContradictionPair(nil), s.contradictions[actor]...)
}

// Actors returns every actor holding at least one belief.
func (s *BeliefService) Actors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.beliefs))
	for actor := range s.beliefs {
		out = append(out, actor)
	}
	return out
}

// Stats summarizes one actor's belief graph.
func (s *BeliefService) Stats(actor string) domain.BeliefStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.BeliefStats{Contradictions: len(s.contradictions[actor])}
	for _, b := range s.beliefs[actor] {
		stats.TotalBeliefs++
		switch {
		case b.Confidence > 0.7:
			stats.HighConfidence++
		case b.State == domain.StateRejected:
			stats.Rejected++
		case b.State == domain.StateUncertain:
			stats.Uncertain++
		}
	}
	return stats
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
