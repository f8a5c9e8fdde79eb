package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDirectorObservation(t *testing.T) {
	assert.NoError(t, ValidateDirectorObservation(LayerObjectiveWorld))
	assert.NoError(t, ValidateDirectorObservation(LayerBeliefGraph))

	err := ValidateDirectorObservation(LayerCharacterMind)
	require.Error(t, err)
	var violation *ConstraintViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, LayerCharacterMind, violation.Layer)
}

func TestValidateDirectorAction(t *testing.T) {
	assert.NoError(t, ValidateDirectorAction(LayerInformationArtifacts, "create_message"))

	tests := []struct {
		layer   EpistemicLayer
		action  string
		message string
	}{
		{LayerObjectiveWorld, "create_fact", "cannot create objective facts"},
		{LayerBeliefGraph, "set_belief", "cannot force beliefs"},
		{LayerCharacterMind, "set_emotion", "cannot override character minds"},
	}
	for _, tt := range tests {
		err := ValidateDirectorAction(tt.layer, tt.action)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.message)
		var violation *ConstraintViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, tt.layer, violation.Layer)
		assert.Equal(t, tt.action, violation.Action)
	}
}

func TestBeliefStateForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  BeliefState
	}{
		{0.95, StateConvinced},
		{0.9, StateConfident},
		{0.8, StateConfident},
		{0.6, StateLeaningTrue},
		{0.5, StateUncertain},
		{0.4, StateLeaningFalse},
		{0.2, StateSkeptical},
		{0.1, StateRejected},
		{0.0, StateRejected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BeliefStateForScore(tt.score), "score %.2f", tt.score)
	}
}

func TestBeliefStateAdjustForContradiction(t *testing.T) {
	assert.Equal(t, StateConfident, StateConvinced.AdjustForContradiction())
	assert.Equal(t, StateLeaningTrue, StateConfident.AdjustForContradiction())
	assert.Equal(t, StateUncertain, StateLeaningTrue.AdjustForContradiction())
	assert.Equal(t, StateSkeptical, StateLeaningFalse.AdjustForContradiction())
	assert.Equal(t, StateRejected, StateSkeptical.AdjustForContradiction())
	// Already neutral or terminal states stay put.
	assert.Equal(t, StateUncertain, StateUncertain.AdjustForContradiction())
	assert.Equal(t, StateRejected, StateRejected.AdjustForContradiction())
}

func TestBeliefStateStepToward(t *testing.T) {
	assert.Equal(t, StateConfident, StateLeaningTrue.StepToward(StateConvinced))
	assert.Equal(t, StateLeaningFalse, StateUncertain.StepToward(StateRejected))
	assert.Equal(t, StateConvinced, StateConvinced.StepToward(StateConvinced))
}

func TestReliabilityScore(t *testing.T) {
	assert.Equal(t, 1.0, ReliabilityCertain.Score())
	assert.Equal(t, 0.85, ReliabilityConfident.Score())
	assert.Equal(t, 0.7, ReliabilityProbable.Score())
	assert.Equal(t, 0.5, ReliabilityUncertain.Score())
	assert.Equal(t, 0.3, ReliabilityDubious.Score())
	assert.Equal(t, 0.1, ReliabilityContradicted.Score())
	assert.Equal(t, 0.5, Reliability("unmapped").Score())
}

func TestContradictionPairNormalized(t *testing.T) {
	p := NewContradictionPair("b", "a")
	assert.Equal(t, "a", p.A)
	assert.Equal(t, "b", p.B)
	assert.True(t, p.Involves("a"))
	assert.True(t, p.Involves("b"))
	assert.False(t, p.Involves("c"))
	assert.Equal(t, p, NewContradictionPair("a", "b"))
}

func TestArcStatusCompletion(t *testing.T) {
	assert.Equal(t, 0.2, ArcSetup.Completion())
	assert.Equal(t, 0.5, ArcDeveloping.Completion())
	assert.Equal(t, 0.8, ArcClimax.Completion())
	assert.Equal(t, 0.95, ArcResolution.Completion())
	assert.Equal(t, 1.0, ArcComplete.Completion())
	assert.Equal(t, 0.0, ArcAbandoned.Completion())
}

func TestOpportunityScore(t *testing.T) {
	opp := &DramaticOpportunity{Intensity: 0.5, Urgency: 1.0}
	assert.InDelta(t, 0.7, opp.Score(), 1e-9)
}
