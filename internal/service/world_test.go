package service

import (
	"testing"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type worldFixture struct {
	ledger     *store.Ledger
	artifacts  *store.Artifacts
	beliefs    *BeliefService
	perception *PerceptionService
	world      *World
}

func newWorldFixture(t *testing.T) *worldFixture {
	t.Helper()
	logger := zap.NewNop()
	ledger := store.NewLedger(logger)
	artifacts := store.NewArtifacts(logger)
	beliefs := NewBeliefService(artifacts, logger)
	perception := NewPerceptionService(ledger, artifacts, beliefs, logger)
	return &worldFixture{
		ledger:     ledger,
		artifacts:  artifacts,
		beliefs:    beliefs,
		perception: perception,
		world:      NewWorld(ledger, artifacts, beliefs, perception, logger),
	}
}

func (f *worldFixture) addLocation(t *testing.T, id string, connected ...string) {
	t.Helper()
	require.NoError(t, f.world.AddLocation(&domain.Location{
		ID: id, Name: id, Type: "district", ConnectedTo: connected,
	}))
}

func (f *worldFixture) addCharacter(t *testing.T, tick int64, c *domain.Character) {
	t.Helper()
	require.NoError(t, f.world.AddCharacter(tick, c))
}

func TestAddCharacterRecordsPlacement(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")

	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", Name: "Ana", LocationID: "loc_1"})

	facts := f.ledger.FactsAbout("char_ana", domain.NoTick, domain.NoTick)
	require.Len(t, facts, 1)
	assert.Equal(t, domain.FactCharacterMoved, facts[0].Type)
	assert.Equal(t, "loc_1", facts[0].Data["destination"])

	assert.Equal(t, []string{"char_ana"}, f.world.Occupants("loc_1"))

	c, err := f.world.Character("char_ana")
	require.NoError(t, err)
	assert.True(t, c.Active)

	assert.Error(t, f.world.AddCharacter(0, &domain.Character{ID: "char_ana", LocationID: "loc_1"}))
	assert.Error(t, f.world.AddCharacter(0, &domain.Character{ID: "char_new", LocationID: "loc_missing"}))
}

func TestMoveCharacterObserversBelieveTheMove(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1", "loc_2")
	f.addLocation(t, "loc_2", "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})

	require.NoError(t, f.world.MoveCharacter(5, "char_ben", "loc_2"))

	actual, err := f.world.ObjectiveLocation("char_ben")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", actual)
	assert.Equal(t, []string{"char_ana"}, f.world.Occupants("loc_1"))
	assert.Equal(t, []string{"char_ben"}, f.world.Occupants("loc_2"))

	// Ana watched the move, so her belief tracks reality at full strength.
	believed, confidence, err := f.world.BelievedLocation("char_ana", "char_ben")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", believed)
	assert.GreaterOrEqual(t, confidence, 0.9)

	latest, err := f.artifacts.LatestAbout("char_ben", "char_ana")
	require.NoError(t, err)
	belief, err := f.beliefs.Belief("char_ana", latest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateConvinced, belief.State)

	// Watching someone move twice is an update, not a conflict.
	assert.Empty(t, f.beliefs.Contradictions("char_ana"))
}

func TestBelievedLocationGoesStaleForAbsentObservers(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addLocation(t, "loc_2")
	f.addLocation(t, "loc_3")
	f.addCharacter(t, 0, &domain.Character{ID: "char_cara", LocationID: "loc_1"})
	f.addCharacter(t, 0, &domain.Character{ID: "char_ben", LocationID: "loc_1"})

	// Cara leaves, then Ben moves while she is elsewhere.
	require.NoError(t, f.world.MoveCharacter(2, "char_cara", "loc_3"))
	require.NoError(t, f.world.MoveCharacter(5, "char_ben", "loc_2"))

	believed, _, err := f.world.BelievedLocation("char_cara", "char_ben")
	require.NoError(t, err)
	assert.Equal(t, "loc_1", believed)

	actual, err := f.world.ObjectiveLocation("char_ben")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", actual)
}

func TestBelievedLocationUnknownSubject(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addLocation(t, "loc_3")
	f.addCharacter(t, 0, &domain.Character{ID: "char_cara", LocationID: "loc_3"})
	f.addCharacter(t, 1, &domain.Character{ID: "char_ben", LocationID: "loc_1"})

	// Cara was never around Ben, so she believes nothing about him.
	_, _, err := f.world.BelievedLocation("char_cara", "char_ben")
	assert.Error(t, err)
}

func TestSetCharacterState(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	require.NoError(t, f.world.SetCharacterState(3, "char_ana", domain.CharWorking))

	c, err := f.world.Character("char_ana")
	require.NoError(t, err)
	assert.Equal(t, domain.CharWorking, c.State)

	facts := f.ledger.FactsByType(domain.FactCharacterStateChange, domain.NoTick)
	require.Len(t, facts, 1)
	assert.Equal(t, "working", facts[0].Data["state"])
}

func TestActionToEvent(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1", "loc_2")
	f.addLocation(t, "loc_2", "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	event, err := f.world.ActionToEvent(7, "char_ana", &domain.Action{
		Type:      domain.ActionTravel,
		Target:    "loc_2",
		Reasoning: "needs to be there",
		Duration:  2,
		Priority:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventCharacterTravel, event.Type)
	assert.Equal(t, int64(8), event.ScheduledTick)
	assert.Equal(t, "loc_2", event.LocationID)
	assert.Equal(t, []string{"char_ana"}, event.Participants)
	assert.Equal(t, int64(2), event.DurationTicks)
	assert.Equal(t, 3, event.Priority)

	stay, err := f.world.ActionToEvent(7, "char_ana", &domain.Action{Type: domain.ActionStay})
	require.NoError(t, err)
	assert.Equal(t, domain.EventCharacterAction, stay.Type)
	assert.Equal(t, "loc_1", stay.LocationID)

	_, err = f.world.ActionToEvent(7, "char_ghost", &domain.Action{Type: domain.ActionStay})
	assert.Error(t, err)
	_, err = f.world.ActionToEvent(7, "char_ana", nil)
	assert.Error(t, err)
}

func TestExecuteEventTravel(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1", "loc_2")
	f.addLocation(t, "loc_2", "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	event, err := f.world.ActionToEvent(7, "char_ana", &domain.Action{
		Type: domain.ActionTravel, Target: "loc_2",
	})
	require.NoError(t, err)
	require.NoError(t, f.world.ExecuteEvent(event, 8))

	loc, err := f.world.ObjectiveLocation("char_ana")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", loc)
}

func TestExecuteEventRecordsGenericEvents(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	event := &domain.Event{
		ID:         "event_meeting_1",
		Type:       domain.EventMeeting,
		LocationID: "loc_1",
		Title:      "A tense meeting",
	}
	require.NoError(t, f.world.ExecuteEvent(event, 9))

	facts := f.ledger.FactsByType(domain.FactEventOccurred, domain.NoTick)
	require.Len(t, facts, 1)
	assert.Equal(t, "event_meeting_1", facts[0].Subject)
	assert.Equal(t, "A tense meeting", facts[0].Data["title"])
	assert.Equal(t, []string{"char_ana"}, facts[0].Observers)
}

func TestRestoreCharacterUsesLedgerHistory(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addLocation(t, "loc_2")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})
	require.NoError(t, f.world.MoveCharacter(5, "char_ana", "loc_2"))

	recorded := f.ledger.Len()

	// A new world over the same ledger, as after a restart.
	logger := zap.NewNop()
	artifacts := store.NewArtifacts(logger)
	beliefs := NewBeliefService(artifacts, logger)
	perception := NewPerceptionService(f.ledger, artifacts, beliefs, logger)
	restored := NewWorld(f.ledger, artifacts, beliefs, perception, logger)
	require.NoError(t, restored.AddLocation(&domain.Location{ID: "loc_1", Name: "loc_1", Type: "district"}))
	require.NoError(t, restored.AddLocation(&domain.Location{ID: "loc_2", Name: "loc_2", Type: "district"}))

	require.NoError(t, restored.RestoreCharacter(&domain.Character{ID: "char_ana", LocationID: "loc_1"}))

	loc, err := restored.ObjectiveLocation("char_ana")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", loc)
	assert.Equal(t, recorded, f.ledger.Len())
}

func TestMarkActed(t *testing.T) {
	f := newWorldFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	f.world.MarkActed("char_ana", 12)
	c, err := f.world.Character("char_ana")
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.LastActionTick)

	stats := f.world.Stats()
	assert.Equal(t, 1, stats.Characters)
	assert.Equal(t, 1, stats.Locations)
}
