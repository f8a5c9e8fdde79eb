package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Harshitk-cp/stagecraft/internal/decider"
	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type simFixture struct {
	*directorFixture
	queue *EventQueue
	mock  *decider.MockProvider
	sim   *Simulation
}

func newSimFixture(t *testing.T) *simFixture {
	t.Helper()
	logger := zap.NewNop()
	df := newDirectorFixture(t)
	queue := NewEventQueue(logger)
	mock := decider.NewMockProvider()
	sim := NewSimulation(time.Second, df.world, queue, df.perception, df.beliefs, df.arcs, df.director, mock, logger)
	return &simFixture{directorFixture: df, queue: queue, mock: mock, sim: sim}
}

func TestSimulationDecisionBecomesMovement(t *testing.T) {
	f := newSimFixture(t)
	f.addLocation(t, "loc_1", "loc_2")
	f.addLocation(t, "loc_2", "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	f.sim.DecisionGap = 1
	f.mock.DecideResponse = &domain.Action{
		Type:      domain.ActionTravel,
		Target:    "loc_2",
		Reasoning: "test travel",
		Priority:  5,
	}

	ctx := context.Background()

	// Tick 1: Ana decides and her travel is scheduled for tick 2.
	f.sim.Ticker.Advance(ctx)
	assert.Equal(t, []string{"char_ana"}, f.mock.DecideCalls)
	assert.Equal(t, 1, f.queue.Stats().Scheduled)

	loc, err := f.world.ObjectiveLocation("char_ana")
	require.NoError(t, err)
	assert.Equal(t, "loc_1", loc)

	// Tick 2: the travel event fires and the move lands in ground truth.
	f.sim.Ticker.Advance(ctx)
	loc, err = f.world.ObjectiveLocation("char_ana")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", loc)

	facts := f.ledger.FactsByType(domain.FactCharacterMoved, 1)
	require.NotEmpty(t, facts)
	assert.Equal(t, "loc_2", facts[len(facts)-1].Data["destination"])
}

func TestSimulationDecisionGapThrottlesTurns(t *testing.T) {
	f := newSimFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	ctx := context.Background()
	for i := 0; i < 9; i++ {
		f.sim.Ticker.Advance(ctx)
	}
	assert.Empty(t, f.mock.DecideCalls)

	f.sim.Ticker.Advance(ctx)
	assert.Equal(t, []string{"char_ana"}, f.mock.DecideCalls)
}

func TestSimulationContainsDeciderFailures(t *testing.T) {
	f := newSimFixture(t)
	f.addLocation(t, "loc_1")
	f.addCharacter(t, 0, &domain.Character{ID: "char_ana", LocationID: "loc_1"})

	f.sim.DecisionGap = 1
	f.mock.DecideError = fmt.Errorf("provider unavailable")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.sim.Ticker.Advance(ctx)
	}

	assert.Equal(t, 0, f.queue.Stats().Scheduled)
	assert.Equal(t, int64(0), f.sim.Ticker.Stats().Errors)

	// Recovery: the next successful decision schedules normally.
	f.mock.DecideError = nil
	f.sim.Ticker.Advance(ctx)
	assert.Equal(t, 1, f.queue.Stats().Scheduled)
}

func TestSimulationMaintenanceSweeps(t *testing.T) {
	f := newSimFixture(t)

	// A report that will go stale: the world has moved on past its claim.
	_, err := f.ledger.Record(1, domain.FactCharacterMoved, "char_x",
		map[string]any{"destination": "loc_old", "origin": ""}, nil)
	require.NoError(t, err)
	report, err := f.artifacts.Create(1, domain.ArtifactReport, "char_x",
		"char_x moved to loc_old", map[string]any{"destination": "loc_old"},
		"char_y", domain.ReliabilityProbable, []string{"char_y"})
	require.NoError(t, err)
	_, err = f.ledger.Record(2, domain.FactCharacterMoved, "char_x",
		map[string]any{"destination": "loc_new", "origin": "loc_old"}, nil)
	require.NoError(t, err)

	arc := f.arcs.CreateArc(1, "heist", "Stale Thread", "greed", nil)

	ctx := context.Background()
	for i := 0; i < 150; i++ {
		f.sim.Ticker.Advance(ctx)
	}

	got, err := f.artifacts.Get(report.ID)
	require.NoError(t, err)
	assert.True(t, got.Superseded())

	_, err = f.arcs.Arc(arc.ID)
	assert.Error(t, err)
	completed := f.arcs.Completed()
	require.Len(t, completed, 1)
	assert.Equal(t, domain.ArcAbandoned, completed[0].Status)
}
