package service

import (
	"testing"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type directorFixture struct {
	*worldFixture
	tension  *TensionManager
	arcs     *ArcTracker
	analyzer *DramaAnalyzer
	director *Director
}

func newDirectorFixture(t *testing.T) *directorFixture {
	t.Helper()
	logger := zap.NewNop()
	wf := newWorldFixture(t)
	tension := NewTensionManager(100, logger)
	arcs := NewArcTracker(logger)
	analyzer := NewDramaAnalyzer(wf.world, wf.beliefs, logger)
	return &directorFixture{
		worldFixture: wf,
		tension:      tension,
		arcs:         arcs,
		analyzer:     analyzer,
		director:     NewDirector(wf.world, wf.artifacts, analyzer, tension, arcs, logger),
	}
}

func findMessage(artifacts []*domain.Artifact) *domain.Artifact {
	for _, a := range artifacts {
		if a.Type == domain.ArtifactMessage {
			return a
		}
	}
	return nil
}

func TestDirectorCreatesDeceptiveMessageForIrony(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_1")
	f.addLocation(t, "loc_2")
	f.addLocation(t, "loc_3")
	f.addCharacter(t, 0, &domain.Character{
		ID: "char_cara", LocationID: "loc_1",
		Goals: []string{"find char_ben"},
	})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})
	require.NoError(t, f.world.MoveCharacter(2, "char_cara", "loc_3"))
	require.NoError(t, f.world.MoveCharacter(5, "char_ben", "loc_2"))

	factsBefore := f.ledger.Len()

	summary, err := f.director.ProcessTick(6, nil)
	require.NoError(t, err)
	assert.Greater(t, summary.OpportunitiesFound, 0)
	assert.Equal(t, 1, summary.CatalystsCreated)

	// The catalyst is a forged confirmation of Cara's stale belief.
	msg := findMessage(f.artifacts.KnownBy("char_cara", "char_ben", false))
	require.NotNil(t, msg)
	assert.Equal(t, "unknown", msg.Source)
	assert.Equal(t, domain.ReliabilityConfident, msg.Reliability)
	assert.Equal(t, "loc_1", msg.Data["location"])
	assert.Equal(t, true, msg.Data["forged"])
	assert.Equal(t, "loc_2", msg.Data["true_location"])

	// The director writes to the information layer only; ground truth is
	// untouched.
	assert.Equal(t, factsBefore, f.ledger.Len())
}

func TestDirectorCreatesMeetingInvitationForDilemma(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_docks")
	f.addCharacter(t, 0, &domain.Character{
		ID: "char_marcus", LocationID: "loc_docks",
		Goals: []string{"steal the harbor ledger"},
	})
	f.addCharacter(t, 0, &domain.Character{
		ID: "char_sofia", LocationID: "loc_docks",
		Goals: []string{"guard the harbor ledger"},
	})

	summary, err := f.director.ProcessTick(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CatalystsCreated)

	msg := findMessage(f.artifacts.KnownBy("char_marcus", "Meeting", false))
	require.NotNil(t, msg)
	assert.Equal(t, "Unknown Friend", msg.Source)
	assert.Equal(t, domain.ReliabilityProbable, msg.Reliability)
	assert.Equal(t, "loc_docks", msg.Data["location"])
	assert.Equal(t, "You are requested at loc_docks", msg.Claim)
}

func TestDirectorAmplifiesRumors(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_cara", LocationID: "loc_1"})

	// A secret only Ana knows makes the top opportunity a suspense one.
	_, err := f.artifacts.Create(1, domain.ArtifactRumor, "secret",
		"the vault is open", nil, RumorMillSource, domain.ReliabilityUncertain, []string{"char_ana"})
	require.NoError(t, err)

	summary, err := f.director.ProcessTick(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CatalystsCreated)
	assert.Equal(t, DefaultAmplifiedSpreadRate, f.director.Stats().RumorMultiplier)

	f.director.ResetAmplification()
	assert.Equal(t, 1.0, f.director.Stats().RumorMultiplier)
}

func TestDirectorSpreadsOnTheAmplifyingTick(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_cara", LocationID: "loc_1"})

	rumor, err := f.artifacts.Create(1, domain.ArtifactRumor, "secret",
		"the vault is open", nil, RumorMillSource, domain.ReliabilityUncertain, []string{"char_ana"})
	require.NoError(t, err)

	// With an amplified chance of 0.4*2.5 = 1.0 every co-located hearer
	// is certain to pick the rumor up on the very tick the director
	// raises the multiplier.
	f.director.BaseSpreadChance = 0.4

	summary, err := f.director.ProcessTick(2, nil)
	require.NoError(t, err)
	require.Equal(t, 1, summary.CatalystsCreated)
	assert.Equal(t, DefaultAmplifiedSpreadRate, f.director.Stats().RumorMultiplier)

	got, err := f.artifacts.Get(rumor.ID)
	require.NoError(t, err)
	assert.True(t, got.KnownBy["char_ben"])
	assert.True(t, got.KnownBy["char_cara"])
}

func TestDirectorSpreadsAmplifiedRumors(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})

	rumor, err := f.artifacts.Create(1, domain.ArtifactRumor, "secret",
		"the vault is open", nil, RumorMillSource, domain.ReliabilityUncertain, []string{"char_ana"})
	require.NoError(t, err)

	// Spread chance per hearer is 0.25 when amplified; enough rounds make
	// transmission certain for practical purposes.
	for i := 0; i < 200; i++ {
		f.director.spreadRumors(DefaultAmplifiedSpreadRate)
	}

	got, err := f.artifacts.Get(rumor.ID)
	require.NoError(t, err)
	assert.True(t, got.KnownBy["char_ben"])
}

func TestDirectorHoldsBackBelowThreshold(t *testing.T) {
	f := newDirectorFixture(t)
	f.addLocation(t, "loc_1")
	f.addLocation(t, "loc_2")
	f.addLocation(t, "loc_3")
	f.addCharacter(t, 0, &domain.Character{ID: "char_cara", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})
	require.NoError(t, f.world.MoveCharacter(2, "char_cara", "loc_3"))
	require.NoError(t, f.world.MoveCharacter(5, "char_ben", "loc_2"))

	// No urgent goal keeps every score below the intervention threshold,
	// and a zero target keeps the tension curve from demanding escalation.
	f.tension.TargetTension = 0
	f.director.VarietyChance = 0

	summary, err := f.director.ProcessTick(6, nil)
	require.NoError(t, err)
	assert.Greater(t, summary.OpportunitiesFound, 0)
	assert.Equal(t, 0, summary.CatalystsCreated)

	// Lowering the bar lets the same opportunity through.
	f.director.InterventionThreshold = 0.5
	summary, err = f.director.ProcessTick(7, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CatalystsCreated)
}

func TestDirectorQuietWorld(t *testing.T) {
	f := newDirectorFixture(t)

	summary, err := f.director.ProcessTick(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.OpportunitiesFound)
	assert.Equal(t, 0, summary.CatalystsCreated)
}
