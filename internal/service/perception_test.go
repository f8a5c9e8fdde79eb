package service

import (
	"math/rand"
	"testing"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPerceptionFixture(t *testing.T) (*store.Ledger, *store.Artifacts, *BeliefService, *PerceptionService) {
	t.Helper()
	logger := zap.NewNop()
	ledger := store.NewLedger(logger)
	artifacts := store.NewArtifacts(logger)
	beliefs := NewBeliefService(artifacts, logger)
	perception := NewPerceptionService(ledger, artifacts, beliefs, logger)
	perception.SetRand(rand.New(rand.NewSource(42)))
	return ledger, artifacts, beliefs, perception
}

func TestObserveCreatesCertainBeliefs(t *testing.T) {
	ledger, _, beliefs, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(5, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2", "origin": "loc_1"},
		[]string{"char_marcus", "char_elena"})
	require.NoError(t, err)

	created, err := perception.Observe(fact)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// One shared artifact for the moment, known by every witness.
	a := created[0]
	assert.Equal(t, domain.ArtifactDirectObservation, a.Type)
	assert.Equal(t, domain.ReliabilityCertain, a.Reliability)
	assert.Equal(t, int64(5), a.CreatedTick)
	assert.True(t, a.KnownBy["char_marcus"])
	assert.True(t, a.KnownBy["char_elena"])

	// Seeing it yourself leaves no doubt, and each witness holds their
	// own stance on the shared record.
	for _, observer := range []string{"char_marcus", "char_elena"} {
		b, err := beliefs.Belief(observer, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateConvinced, b.State)
		assert.GreaterOrEqual(t, b.Confidence, 0.9)
	}
}

func TestObserveNoObserversNoArtifact(t *testing.T) {
	ledger, artifacts, _, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(1, domain.FactEventOccurred, "event_storm", nil, nil)
	require.NoError(t, err)

	created, err := perception.Observe(fact)
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Equal(t, 0, artifacts.Stats().Total)
}

func TestReportReliabilityTiers(t *testing.T) {
	ledger, _, _, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(10, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2"}, []string{"char_elena"})
	require.NoError(t, err)

	tests := []struct {
		credibility float64
		want        domain.Reliability
	}{
		{0.95, domain.ReliabilityConfident},
		{0.8, domain.ReliabilityProbable},
		{0.5, domain.ReliabilityUncertain},
	}
	for _, tt := range tests {
		a, err := perception.Report(fact, "char_elena", "char_sofia", tt.credibility)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Reliability, "credibility %.2f", tt.credibility)
		// Word travels one tick behind the deed.
		assert.Equal(t, fact.Tick+1, a.CreatedTick)
		assert.True(t, a.KnownBy["char_sofia"])
		assert.True(t, a.KnownBy["char_elena"])
	}
}

func TestSpreadRumorDegradesInformation(t *testing.T) {
	ledger, _, _, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(3, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2", "origin": "loc_1"}, nil)
	require.NoError(t, err)

	a, err := perception.SpreadRumor(7, fact, []string{"char_sofia"})
	require.NoError(t, err)

	assert.Equal(t, domain.ArtifactRumor, a.Type)
	assert.Equal(t, RumorMillSource, a.Source)
	assert.Contains(t, []domain.Reliability{domain.ReliabilityUncertain, domain.ReliabilityDubious}, a.Reliability)
	assert.True(t, a.KnownBy["char_sofia"])
	assert.Equal(t, int64(7), a.CreatedTick)
}

func TestSpreadRumorDistortsDeterministically(t *testing.T) {
	ledger, _, _, perception := newPerceptionFixture(t)
	perception.DistortionRate = 1.0

	fact, err := ledger.Record(3, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2"}, nil)
	require.NoError(t, err)

	a, err := perception.SpreadRumor(4, fact, nil)
	require.NoError(t, err)
	assert.Equal(t, "loc_2 (unverified)", a.Data["destination"])

	// The fact itself is untouched.
	assert.Equal(t, "loc_2", fact.Data["destination"])
}

func TestRefreshStaleSupersedesOldReports(t *testing.T) {
	ledger, artifacts, _, perception := newPerceptionFixture(t)

	oldFact, err := ledger.Record(1, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_1"}, []string{"char_elena"})
	require.NoError(t, err)
	stale, err := perception.Report(oldFact, "char_elena", "char_sofia", 0.8)
	require.NoError(t, err)

	// The subject moves on; the report ages past the threshold.
	_, err = ledger.Record(15, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2"}, nil)
	require.NoError(t, err)

	refreshed, err := perception.RefreshStale(30)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	got, err := artifacts.Get(stale.ID)
	require.NoError(t, err)
	require.True(t, got.Superseded())

	update, err := artifacts.Get(got.SupersededBy)
	require.NoError(t, err)
	assert.Contains(t, update.Claim, "Updated:")
	assert.Equal(t, domain.ReliabilityConfident, update.Reliability)
	// The correction reaches exactly the audience of the original.
	assert.ElementsMatch(t, got.Knowers(), update.Knowers())
}

func TestRefreshStaleSkipsFreshAndCurrent(t *testing.T) {
	ledger, _, _, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(1, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_1"}, []string{"char_elena"})
	require.NoError(t, err)
	_, err = perception.Report(fact, "char_elena", "char_sofia", 0.8)
	require.NoError(t, err)

	// No newer facts exist, so nothing to correct even though it's old.
	refreshed, err := perception.RefreshStale(50)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed)
}

func TestRefreshStaleSkipsYoungArtifacts(t *testing.T) {
	ledger, _, _, perception := newPerceptionFixture(t)

	fact, err := ledger.Record(40, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_1"}, []string{"char_elena"})
	require.NoError(t, err)
	_, err = perception.Report(fact, "char_elena", "char_sofia", 0.8)
	require.NoError(t, err)

	_, err = ledger.Record(45, domain.FactCharacterMoved, "char_marcus",
		map[string]any{"destination": "loc_2"}, nil)
	require.NoError(t, err)

	// The report is only a few ticks old; newer facts alone don't
	// trigger a correction.
	refreshed, err := perception.RefreshStale(50)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed)
}
