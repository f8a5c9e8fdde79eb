package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultDramaThreshold = 0.3
	DefaultTrustThreshold = 70.0
)

// goalConflicts pairs verbs that cannot both succeed. Two co-located
// characters whose goals contain opposed verbs are a dilemma.
var goalConflicts = [][2]string{
	{"destroy", "protect"},
	{"steal", "guard"},
	{"defeat", "defend"},
}

// DramaAnalyzer scans the epistemic layers for situations with narrative
// potential: belief-reality gaps, betrayal setups, knowledge asymmetry,
// goal conflicts, and pursuits. It is a pure observer; it never writes to
// any layer.
type DramaAnalyzer struct {
	world   *World
	beliefs *BeliefService
	logger  *zap.Logger

	MinThreshold   float64
	TrustThreshold float64
}

// NewDramaAnalyzer wires the analyzer over the world it observes.
func NewDramaAnalyzer(world *World, beliefs *BeliefService, logger *zap.Logger) *DramaAnalyzer {
	return &DramaAnalyzer{
		world:          world,
		beliefs:        beliefs,
		logger:         logger,
		MinThreshold:   DefaultDramaThreshold,
		TrustThreshold: DefaultTrustThreshold,
	}
}

// Analyze runs every scan, discards weak findings, and returns the rest
// sorted by score descending. Ties keep scan order so results are stable.
func (a *DramaAnalyzer) Analyze(tick int64) []*domain.DramaticOpportunity {
	var opportunities []*domain.DramaticOpportunity

	opportunities = append(opportunities, a.scanBeliefGaps()...)
	opportunities = append(opportunities, a.scanRelationships()...)
	opportunities = append(opportunities, a.scanKnowledgeAsymmetry()...)
	opportunities = append(opportunities, a.scanGoalConflicts()...)
	opportunities = append(opportunities, a.scanPursuits()...)

	filtered := opportunities[:0]
	for _, opp := range opportunities {
		if opp.Score() >= a.MinThreshold {
			filtered = append(filtered, opp)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score() > filtered[j].Score()
	})

	a.logger.Debug("drama analysis complete",
		zap.Int64("tick", tick),
		zap.Int("opportunities", len(filtered)))

	return filtered
}

// scanBeliefGaps finds dramatic irony: a character's believed location for
// someone differs from where that someone objectively is.
func (a *DramaAnalyzer) scanBeliefGaps() []*domain.DramaticOpportunity {
	var out []*domain.DramaticOpportunity

	characters := a.world.Characters()
	for _, believer := range characters {
		for _, about := range characters {
			if believer.ID == about.ID {
				continue
			}

			believed, _, err := a.world.BelievedLocation(believer.ID, about.ID)
			if err != nil {
				continue
			}
			actual, err := a.world.ObjectiveLocation(about.ID)
			if err != nil || believed == actual {
				continue
			}

			intensity := a.gapIntensity(believer, about.ID)
			if intensity <= 0.3 {
				continue
			}

			out = append(out, &domain.DramaticOpportunity{
				Type:       domain.DramaIrony,
				Intensity:  intensity,
				Urgency:    a.gapUrgency(believer, about.ID),
				Characters: []string{believer.ID, about.ID},
				LocationID: actual,
				Situation: fmt.Sprintf("%s believes %s is at %s, but they're actually at %s",
					believer.ID, about.ID, believed, actual),
				DramaticQuestion: fmt.Sprintf("What happens when %s discovers the truth?", believer.ID),
				BeliefData: map[string]any{
					"believer": believer.ID,
					"about":    about.ID,
					"believed": believed,
					"actual":   actual,
				},
				RelationshipData: relationshipData(believer, about.ID),
				SuggestedCatalysts: []domain.Catalyst{
					{Type: "revelation_event", Description: fmt.Sprintf("Character discovers %s's true location", about.ID)},
					{Type: "deceptive_message", Description: fmt.Sprintf("False confirmation of %s being at %s", about.ID, believed)},
				},
			})
		}
	}
	return out
}

func (a *DramaAnalyzer) gapIntensity(believer *domain.Character, about string) float64 {
	intensity := 0.5
	if rel, ok := believer.RelationshipWith(about); ok {
		intensity += (rel.Trust / 100.0) * 0.3
	}
	intensity += 0.2
	if intensity > 1.0 {
		intensity = 1.0
	}
	return intensity
}

func (a *DramaAnalyzer) gapUrgency(believer *domain.Character, about string) float64 {
	for _, goal := range believer.Goals {
		if strings.Contains(goal, about) {
			return 0.9
		}
	}
	return 0.4
}

// scanRelationships finds betrayal potential: high-trust pairs in the same
// place while at least one side carries unresolved contradictions.
func (a *DramaAnalyzer) scanRelationships() []*domain.DramaticOpportunity {
	var out []*domain.DramaticOpportunity

	for _, loc := range a.world.Locations() {
		occ := loc.Occupants
		for i := 0; i < len(occ); i++ {
			for j := i + 1; j < len(occ); j++ {
				charA, err := a.world.Character(occ[i])
				if err != nil {
					continue
				}
				rel, ok := charA.RelationshipWith(occ[j])
				if !ok || rel.Trust <= a.TrustThreshold {
					continue
				}

				conflicts := len(a.beliefs.Contradictions(occ[i])) + len(a.beliefs.Contradictions(occ[j]))
				if conflicts == 0 {
					continue
				}

				out = append(out, &domain.DramaticOpportunity{
					Type:       domain.DramaBetrayal,
					Intensity:  0.8,
					Urgency:    0.6,
					Characters: []string{occ[i], occ[j]},
					LocationID: loc.ID,
					Situation: fmt.Sprintf("%s and %s have high trust but contradictory beliefs",
						occ[i], occ[j]),
					DramaticQuestion: "Will their friendship survive the truth?",
					BeliefData:       map[string]any{"contradictions": conflicts},
					RelationshipData: relationshipData(charA, occ[j]),
					SuggestedCatalysts: []domain.Catalyst{
						{Type: "forced_revelation", Description: "Event forces them to confront contradiction"},
					},
				})
			}
		}
	}
	return out
}

// scanKnowledgeAsymmetry finds suspense: artifacts some characters know
// and others, who plausibly should, do not.
func (a *DramaAnalyzer) scanKnowledgeAsymmetry() []*domain.DramaticOpportunity {
	var out []*domain.DramaticOpportunity

	characters := a.world.Characters()
	for _, artifact := range a.world.artifacts.All() {
		if artifact.Superseded() || len(artifact.KnownBy) == 0 {
			continue
		}

		var unknowers []string
		for _, c := range characters {
			if !artifact.KnownBy[c.ID] {
				unknowers = append(unknowers, c.ID)
			}
		}
		if len(unknowers) == 0 {
			continue
		}

		intensity := float64(len(unknowers)) / float64(len(characters))
		knowers := artifact.Knowers()

		out = append(out, &domain.DramaticOpportunity{
			Type:       domain.DramaSuspense,
			Intensity:  intensity,
			Urgency:    0.5,
			Characters: append(append([]string(nil), knowers...), unknowers...),
			LocationID: artifact.Subject,
			Situation: fmt.Sprintf("%d know something %d don't",
				len(knowers), len(unknowers)),
			DramaticQuestion: "When will they find out?",
			BeliefData: map[string]any{
				"artifact_id": artifact.ID,
				"knowers":     knowers,
				"unknowers":   unknowers,
			},
			SuggestedCatalysts: []domain.Catalyst{
				{Type: "leak_information", Description: "Information spreads to unknowers"},
				{Type: "discovery", Description: "Unknowers discover on their own"},
			},
		})
	}
	return out
}

// scanGoalConflicts finds dilemmas: co-located characters whose stated
// goals contain opposed verbs.
func (a *DramaAnalyzer) scanGoalConflicts() []*domain.DramaticOpportunity {
	var out []*domain.DramaticOpportunity

	for _, loc := range a.world.Locations() {
		occ := loc.Occupants
		for i := 0; i < len(occ); i++ {
			charA, err := a.world.Character(occ[i])
			if err != nil {
				continue
			}
			for j := i + 1; j < len(occ); j++ {
				charB, err := a.world.Character(occ[j])
				if err != nil {
					continue
				}
				if !goalsConflict(charA.Goals, charB.Goals) {
					continue
				}

				out = append(out, &domain.DramaticOpportunity{
					Type:             domain.DramaDilemma,
					Intensity:        0.7,
					Urgency:          0.8,
					Characters:       []string{occ[i], occ[j]},
					LocationID:       loc.ID,
					Situation:        fmt.Sprintf("%s and %s have conflicting goals", occ[i], occ[j]),
					DramaticQuestion: "Who will compromise?",
					RelationshipData: relationshipData(charA, occ[j]),
					SuggestedCatalysts: []domain.Catalyst{
						{Type: "force_choice", Description: "Situation requires one to give in"},
					},
				})
			}
		}
	}
	return out
}

// scanPursuits finds suspense: a character holds a strong belief about
// someone who is objectively somewhere else.
func (a *DramaAnalyzer) scanPursuits() []*domain.DramaticOpportunity {
	var out []*domain.DramaticOpportunity

	characters := a.world.Characters()
	known := make(map[string]bool, len(characters))
	for _, c := range characters {
		known[c.ID] = true
	}

	for _, seeker := range characters {
		for _, belief := range a.beliefs.Beliefs(seeker.ID, 0) {
			if belief.Confidence <= 0.7 {
				continue
			}
			artifact, err := a.world.artifacts.Get(belief.ArtifactID)
			if err != nil || !known[artifact.Subject] || artifact.Subject == seeker.ID {
				continue
			}

			seekerLoc, err1 := a.world.ObjectiveLocation(seeker.ID)
			soughtLoc, err2 := a.world.ObjectiveLocation(artifact.Subject)
			if err1 != nil || err2 != nil || seekerLoc == soughtLoc {
				continue
			}

			out = append(out, &domain.DramaticOpportunity{
				Type:             domain.DramaSuspense,
				Intensity:        0.5,
				Urgency:          0.4,
				Characters:       []string{seeker.ID, artifact.Subject},
				LocationID:       seekerLoc,
				Situation:        fmt.Sprintf("%s seeks %s but they're apart", seeker.ID, artifact.Subject),
				DramaticQuestion: "When will they meet?",
				BeliefData: map[string]any{
					"seeker":     seeker.ID,
					"sought":     artifact.Subject,
					"seeker_loc": seekerLoc,
					"sought_loc": soughtLoc,
				},
				SuggestedCatalysts: []domain.Catalyst{
					{Type: "convergence_event", Description: "Event brings them to same location"},
				},
			})
		}
	}
	return out
}

func goalsConflict(goalsA, goalsB []string) bool {
	for _, ga := range goalsA {
		for _, gb := range goalsB {
			for _, pair := range goalConflicts {
				la, lb := strings.ToLower(ga), strings.ToLower(gb)
				if (strings.Contains(la, pair[0]) && strings.Contains(lb, pair[1])) ||
					(strings.Contains(la, pair[1]) && strings.Contains(lb, pair[0])) {
					return true
				}
			}
		}
	}
	return false
}

func relationshipData(c *domain.Character, other string) map[string]any {
	rel, ok := c.RelationshipWith(other)
	if !ok {
		return nil
	}
	return map[string]any{
		"trust":   rel.Trust,
		"respect": rel.Respect,
		"history": rel.History,
	}
}
