package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultInterventionThreshold = 0.6
	DefaultVarietyChance         = 0.05
	DefaultAmplifiedSpreadRate   = 2.5
	DefaultBaseSpreadChance      = 0.1
)

// DirectorSummary reports what the director did in one tick.
type DirectorSummary struct {
	OpportunitiesFound int     `json:"opportunities_found"`
	CatalystsCreated   int     `json:"catalysts_created"`
	Tension            float64 `json:"tension"`
}

// Director orchestrates the pacing subsystems and intervenes in the story.
// Its authority is strictly bounded: it observes the objective world and
// the belief graph, and acts only on the information layer. Every
// observation and action passes the constraint guard first; a blocked
// action fails before any mutation.
type Director struct {
	mu     sync.Mutex
	logger *zap.Logger

	world     *World
	artifacts domain.ArtifactStore
	analyzer  *DramaAnalyzer
	tension   *TensionManager
	arcs      *ArcTracker
	rand      *rand.Rand

	InterventionThreshold float64
	VarietyChance         float64
	BaseSpreadChance      float64

	rumorSpreadMultiplier float64
	catalystsCreated      int64
	opportunitiesSeen     int64
}

// NewDirector wires the director over the pacing trio and the layers it
// is permitted to touch.
func NewDirector(world *World, artifacts domain.ArtifactStore, analyzer *DramaAnalyzer, tension *TensionManager, arcs *ArcTracker, logger *zap.Logger) *Director {
	return &Director{
		logger:                logger,
		world:                 world,
		artifacts:             artifacts,
		analyzer:              analyzer,
		tension:               tension,
		arcs:                  arcs,
		rand:                  rand.New(rand.NewSource(rand.Int63())),
		InterventionThreshold: DefaultInterventionThreshold,
		VarietyChance:         DefaultVarietyChance,
		BaseSpreadChance:      DefaultBaseSpreadChance,
		rumorSpreadMultiplier: 1.0,
	}
}

// SetRand replaces the randomness source. Tests pass a seeded generator.
func (d *Director) SetRand(r *rand.Rand) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rand = r
}

// ProcessTick runs one director cycle: refresh tension from the active
// events, scan for opportunities, and intervene with at most one catalyst.
// Constraint violations abort the cycle; everything else is contained.
func (d *Director) ProcessTick(tick int64, activeEvents []*domain.Event) (DirectorSummary, error) {
	summary := DirectorSummary{}

	summary.Tension = d.tension.Update(tick, activeEvents)

	// The scans below read ground truth and beliefs. Check authority
	// before looking.
	if err := domain.ValidateDirectorObservation(domain.LayerObjectiveWorld); err != nil {
		return summary, err
	}
	if err := domain.ValidateDirectorObservation(domain.LayerBeliefGraph); err != nil {
		return summary, err
	}

	opportunities := d.analyzer.Analyze(tick)
	summary.OpportunitiesFound = len(opportunities)

	d.mu.Lock()
	d.opportunitiesSeen += int64(len(opportunities))
	intervene := d.shouldInterveneLocked(opportunities)
	d.mu.Unlock()

	if intervene {
		best := opportunities[0]
		created, err := d.createCatalyst(tick, best)
		if err != nil {
			var violation *domain.ConstraintViolationError
			if errors.As(err, &violation) {
				d.logger.Error("director action blocked",
					zap.String("layer", violation.Layer.String()),
					zap.String("action", violation.Action),
					zap.String("reason", violation.Reason))
				return summary, err
			}
			d.logger.Warn("catalyst creation failed", zap.Error(err))
		} else if created {
			summary.CatalystsCreated = 1
			d.mu.Lock()
			d.catalystsCreated++
			d.mu.Unlock()

			if best.ArcID != "" {
				if err := d.arcs.AddBeat(best.ArcID, tick,
					fmt.Sprintf("Catalyst created: %s", best.Type), "catalyst"); err != nil {
					d.logger.Warn("arc beat failed", zap.String("arc_id", best.ArcID), zap.Error(err))
				}
			}
		}
	}

	// Read the multiplier after any catalyst so an amplification raised
	// this tick spreads this tick.
	d.mu.Lock()
	multiplier := d.rumorSpreadMultiplier
	d.mu.Unlock()
	if multiplier > 1.0 {
		d.spreadRumors(multiplier)
	}

	if summary.CatalystsCreated > 0 {
		d.logger.Info("director intervened",
			zap.Int64("tick", tick),
			zap.Float64("tension", summary.Tension))
	}

	return summary, nil
}

func (d *Director) shouldInterveneLocked(opportunities []*domain.DramaticOpportunity) bool {
	if len(opportunities) == 0 {
		return false
	}
	if opportunities[0].Score() >= d.InterventionThreshold {
		return true
	}
	if d.tension.ShouldEscalate() {
		return true
	}
	return d.rand.Float64() < d.VarietyChance
}

// createCatalyst builds the single information-layer intervention matching
// the opportunity type. Returns false when the opportunity type has no
// catalyst form.
func (d *Director) createCatalyst(tick int64, opp *domain.DramaticOpportunity) (bool, error) {
	switch opp.Type {
	case domain.DramaIrony:
		return true, d.createDeceptiveMessage(tick, opp)
	case domain.DramaBetrayal, domain.DramaDilemma:
		return true, d.createMeetingInvitation(tick, opp)
	case domain.DramaSuspense:
		d.amplifyRumors()
		return true, nil
	default:
		return false, nil
	}
}

// createMessage is the director's only write primitive. The constraint
// guard runs before the store is touched.
func (d *Director) createMessage(tick int64, subject, claim string, data map[string]any, source, recipient string, reliability domain.Reliability) (*domain.Artifact, error) {
	if err := domain.ValidateDirectorAction(domain.LayerInformationArtifacts, "create_message"); err != nil {
		return nil, err
	}

	artifact, err := d.artifacts.Create(tick, domain.ArtifactMessage,
		subject, claim, data, source, reliability, []string{recipient})
	if err != nil {
		return nil, fmt.Errorf("director message: %w", err)
	}

	d.logger.Info("director created message",
		zap.String("artifact_id", artifact.ID),
		zap.String("recipient", recipient),
		zap.String("claim", claim))

	return artifact, nil
}

// createDeceptiveMessage reinforces a wrong belief: a false confirmation
// that the subject is where the believer already thinks they are.
func (d *Director) createDeceptiveMessage(tick int64, opp *domain.DramaticOpportunity) error {
	believer, _ := opp.BeliefData["believer"].(string)
	about, _ := opp.BeliefData["about"].(string)
	believed, _ := opp.BeliefData["believed"].(string)
	actual, _ := opp.BeliefData["actual"].(string)
	if believer == "" || about == "" {
		return fmt.Errorf("deceptive message: opportunity missing belief data")
	}

	_, err := d.createMessage(tick, about,
		fmt.Sprintf("%s is at %s", about, believed),
		map[string]any{
			"location":      believed,
			"forged":        true,
			"true_location": actual,
		},
		"unknown", believer, domain.ReliabilityConfident)
	return err
}

// createMeetingInvitation nudges a character toward a location where the
// conflict can play out.
func (d *Director) createMeetingInvitation(tick int64, opp *domain.DramaticOpportunity) error {
	if len(opp.Characters) == 0 {
		return fmt.Errorf("meeting invitation: opportunity has no characters")
	}
	target := opp.Characters[0]
	meetingLoc := opp.LocationID
	if meetingLoc == "" {
		meetingLoc = "central_hub"
	}

	_, err := d.createMessage(tick, "Meeting",
		fmt.Sprintf("You are requested at %s", meetingLoc),
		map[string]any{
			"location": meetingLoc,
			"urgency":  "high",
			"purpose":  "important_discussion",
		},
		"Unknown Friend", target, domain.ReliabilityProbable)
	return err
}

// amplifyRumors raises the word-of-mouth transmission rate. The flag
// persists until reset; spreading starts on the tick it is raised.
func (d *Director) amplifyRumors() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rumorSpreadMultiplier = DefaultAmplifiedSpreadRate
	d.logger.Info("rumor amplification activated",
		zap.Float64("multiplier", d.rumorSpreadMultiplier))
}

// spreadRumors pushes active rumors to characters co-located with someone
// who already knows them, with probability scaled by the multiplier.
// Sharing an artifact is an information-layer act, so it passes the guard.
func (d *Director) spreadRumors(multiplier float64) {
	if err := domain.ValidateDirectorAction(domain.LayerInformationArtifacts, "share_artifact"); err != nil {
		d.logger.Error("rumor spread blocked", zap.Error(err))
		return
	}

	chance := d.BaseSpreadChance * multiplier
	for _, artifact := range d.artifacts.All() {
		if artifact.Type != domain.ArtifactRumor || artifact.Superseded() {
			continue
		}

		hearers := make(map[string]bool)
		for _, knower := range artifact.Knowers() {
			loc, err := d.world.ObjectiveLocation(knower)
			if err != nil {
				continue
			}
			for _, occupant := range d.world.Occupants(loc) {
				if !artifact.KnownBy[occupant] {
					hearers[occupant] = true
				}
			}
		}

		for hearer := range hearers {
			d.mu.Lock()
			roll := d.rand.Float64()
			d.mu.Unlock()
			if roll >= chance {
				continue
			}
			if err := d.artifacts.Share(artifact.ID, hearer); err != nil {
				d.logger.Warn("rumor share failed",
					zap.String("artifact_id", artifact.ID), zap.Error(err))
				continue
			}
			d.logger.Debug("rumor spread",
				zap.String("artifact_id", artifact.ID),
				zap.String("hearer", hearer))
		}
	}
}

// ResetAmplification returns rumor spreading to its base rate.
func (d *Director) ResetAmplification() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rumorSpreadMultiplier = 1.0
}

// DirectorStats reports director counters for operators.
type DirectorStats struct {
	CatalystsCreated  int64        `json:"catalysts_created"`
	OpportunitiesSeen int64        `json:"opportunities_identified"`
	RumorMultiplier   float64      `json:"rumor_spread_multiplier"`
	Tension           TensionStats `json:"tension"`
	Arcs              ArcStats     `json:"story_arcs"`
}

// Stats returns current director counters.
func (d *Director) Stats() DirectorStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DirectorStats{
		CatalystsCreated:  d.catalystsCreated,
		OpportunitiesSeen: d.opportunitiesSeen,
		RumorMultiplier:   d.rumorSpreadMultiplier,
		Tension:           d.tension.Stats(),
		Arcs:              d.arcs.Stats(),
	}
}
