package service

import (
	"fmt"
	"math/rand"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultDistortionRate     = 0.2
	DefaultStalenessThreshold = 20

	// RumorMillSource labels artifacts with no attributable origin.
	RumorMillSource = "rumor_mill"
)

// PerceptionService turns objective facts into the information artifacts
// characters actually learn from. It is the only bridge from the fact
// ledger to the knowable world: direct observation, secondhand reports,
// and rumors each degrade the truth differently.
type PerceptionService struct {
	ledger    domain.Ledger
	artifacts domain.ArtifactStore
	beliefs   *BeliefService
	logger    *zap.Logger
	rand      *rand.Rand

	DistortionRate     float64
	StalenessThreshold int64
}

// NewPerceptionService wires perception against the fact ledger it reads
// and the artifact store and belief graph it writes.
func NewPerceptionService(ledger domain.Ledger, artifacts domain.ArtifactStore, beliefs *BeliefService, logger *zap.Logger) *PerceptionService {
	return &PerceptionService{
		ledger:             ledger,
		artifacts:          artifacts,
		beliefs:            beliefs,
		logger:             logger,
		rand:               rand.New(rand.NewSource(rand.Int63())),
		DistortionRate:     DefaultDistortionRate,
		StalenessThreshold: DefaultStalenessThreshold,
	}
}

// SetRand replaces the randomness source. Tests pass a seeded generator.
func (s *PerceptionService) SetRand(r *rand.Rand) { s.rand = r }

// Observe creates a single direct-observation artifact known by every
// observer on the fact and forms a fully trusted belief for each. One
// shared record of the moment, one stance per witness; seeing something
// with your own eyes leaves no room for doubt about it.
func (s *PerceptionService) Observe(fact *domain.Fact) ([]*domain.Artifact, error) {
	if len(fact.Observers) == 0 {
		return nil, nil
	}

	artifact, err := s.artifacts.Create(fact.Tick, domain.ArtifactDirectObservation,
		fact.Subject, describeFact(fact), cloneData(fact.Data), fact.Subject,
		domain.ReliabilityCertain, fact.Observers)
	if err != nil {
		return nil, fmt.Errorf("observe fact %s: %w", fact.ID, err)
	}

	for _, observer := range fact.Observers {
		if _, err := s.beliefs.FormBelief(fact.Tick, observer, artifact, 1.0, 0.0); err != nil {
			return nil, fmt.Errorf("form observation belief for %s: %w", observer, err)
		}
	}

	return []*domain.Artifact{artifact}, nil
}

// Report creates a secondhand artifact: one character tells another what
// they saw. The report lands a tick after the fact, and its reliability
// depends on the reporter's credibility.
func (s *PerceptionService) Report(fact *domain.Fact, reporter, recipient string, credibility float64) (*domain.Artifact, error) {
	reliability := domain.ReliabilityUncertain
	switch {
	case credibility > 0.9:
		reliability = domain.ReliabilityConfident
	case credibility > 0.7:
		reliability = domain.ReliabilityProbable
	}

	artifact, err := s.artifacts.Create(fact.Tick+1, domain.ArtifactReport,
		fact.Subject, describeFact(fact), cloneData(fact.Data), reporter,
		reliability, []string{reporter, recipient})
	if err != nil {
		return nil, fmt.Errorf("report fact %s: %w", fact.ID, err)
	}

	s.logger.Debug("report created",
		zap.String("artifact_id", artifact.ID),
		zap.String("reporter", reporter),
		zap.String("recipient", recipient),
		zap.String("reliability", string(reliability)))

	return artifact, nil
}

// SpreadRumor creates a degraded, source-less artifact from a fact. Each
// textual data field may independently distort in transit, and reliability
// is a coin flip between uncertain and dubious.
func (s *PerceptionService) SpreadRumor(tick int64, fact *domain.Fact, hearers []string) (*domain.Artifact, error) {
	reliability := domain.ReliabilityUncertain
	if s.rand.Float64() < 0.5 {
		reliability = domain.ReliabilityDubious
	}

	data := cloneData(fact.Data)
	distorted := false
	for k, v := range data {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if s.rand.Float64() < s.DistortionRate {
			data[k] = str + " (unverified)"
			distorted = true
		}
	}

	artifact, err := s.artifacts.Create(tick, domain.ArtifactRumor,
		fact.Subject, describeFact(fact), data, RumorMillSource, reliability, hearers)
	if err != nil {
		return nil, fmt.Errorf("spread rumor about %s: %w", fact.Subject, err)
	}

	s.logger.Debug("rumor spread",
		zap.String("artifact_id", artifact.ID),
		zap.Int("hearers", len(hearers)),
		zap.Bool("distorted", distorted))

	return artifact, nil
}

// RefreshStale sweeps for artifacts older than the staleness threshold
// whose subject has newer facts, and issues a correcting artifact to the
// same audience. The old artifact is superseded, never edited.
func (s *PerceptionService) RefreshStale(tick int64) (int, error) {
	refreshed := 0
	for _, artifact := range s.artifacts.All() {
		if artifact.Superseded() || artifact.Type == domain.ArtifactDirectObservation {
			continue
		}
		if tick-artifact.CreatedTick < s.StalenessThreshold {
			continue
		}

		newer := s.ledger.FactsAbout(artifact.Subject, artifact.CreatedTick+1, domain.NoTick)
		if len(newer) == 0 {
			continue
		}
		latest := newer[len(newer)-1]

		update, err := s.artifacts.Create(tick, domain.ArtifactReport,
			artifact.Subject, "Updated: "+describeFact(latest), cloneData(latest.Data),
			artifact.Source, domain.ReliabilityConfident, artifact.Knowers())
		if err != nil {
			return refreshed, fmt.Errorf("refresh artifact %s: %w", artifact.ID, err)
		}
		if err := s.artifacts.Supersede(artifact.ID, update.ID); err != nil {
			return refreshed, fmt.Errorf("supersede stale artifact %s: %w", artifact.ID, err)
		}
		refreshed++
	}

	if refreshed > 0 {
		s.logger.Debug("stale artifacts refreshed",
			zap.Int64("tick", tick),
			zap.Int("count", refreshed))
	}
	return refreshed, nil
}

// describeFact renders a fact as the human-readable claim an artifact
// carries.
func describeFact(f *domain.Fact) string {
	switch f.Type {
	case domain.FactCharacterMoved:
		if dest, ok := f.Data["destination"].(string); ok {
			return fmt.Sprintf("%s moved to %s", f.Subject, dest)
		}
		return fmt.Sprintf("%s moved", f.Subject)
	case domain.FactCharacterStateChange:
		if state, ok := f.Data["state"].(string); ok {
			return fmt.Sprintf("%s is now %s", f.Subject, state)
		}
		return fmt.Sprintf("%s changed state", f.Subject)
	case domain.FactEventOccurred:
		if title, ok := f.Data["title"].(string); ok {
			return title
		}
		return fmt.Sprintf("something happened involving %s", f.Subject)
	default:
		return fmt.Sprintf("%s: %v", f.Subject, f.Data)
	}
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
