package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/stagecraft/internal/decider"
	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultDecisionGap     = 10
	DefaultStaleSweepEvery = 10
	DefaultArcPruneEvery   = 50
)

// Simulation composes the whole engine onto one ticker. Each tick runs a
// fixed callback chain: due events fire and active ones sweep, characters
// whose turn has come decide and schedule actions, the director observes
// and possibly intervenes, and periodic maintenance refreshes stale
// information and prunes dead arcs. Nothing in the chain runs
// concurrently with anything else.
type Simulation struct {
	logger *zap.Logger

	Ticker     *Ticker
	Queue      *EventQueue
	World      *World
	Perception *PerceptionService
	Beliefs    *BeliefService
	Arcs       *ArcTracker
	Director   *Director
	Decider    decider.Provider

	// DecisionGap is how many ticks a character waits between actions.
	DecisionGap int64
	// StaleSweepEvery and ArcPruneEvery gate the maintenance passes.
	StaleSweepEvery int64
	ArcPruneEvery   int64
}

// NewSimulation wires the callback chain. Registration order is execution
// order and must not change: events before characters before director.
func NewSimulation(interval time.Duration, world *World, queue *EventQueue, perception *PerceptionService, beliefs *BeliefService, arcs *ArcTracker, director *Director, provider decider.Provider, logger *zap.Logger) *Simulation {
	s := &Simulation{
		logger:          logger,
		Ticker:          NewTicker(interval, logger),
		Queue:           queue,
		World:           world,
		Perception:      perception,
		Beliefs:         beliefs,
		Arcs:            arcs,
		Director:        director,
		Decider:         provider,
		DecisionGap:     DefaultDecisionGap,
		StaleSweepEvery: DefaultStaleSweepEvery,
		ArcPruneEvery:   DefaultArcPruneEvery,
	}

	s.Ticker.Register("events", s.processEvents)
	s.Ticker.Register("characters", s.processCharacters)
	s.Ticker.Register("director", s.processDirector)
	s.Ticker.Register("maintenance", s.processMaintenance)

	return s
}

// Start launches the tick loop.
func (s *Simulation) Start(ctx context.Context) error {
	return s.Ticker.Start(ctx)
}

// Stop halts the loop after the in-flight tick completes.
func (s *Simulation) Stop() {
	s.Ticker.Stop()
}

// processEvents fires due events against the world and completes the ones
// whose duration has elapsed.
func (s *Simulation) processEvents(ctx context.Context, tick int64) error {
	fired := s.Queue.ProcessDue(tick, s.World.ExecuteEvent)
	done := s.Queue.SweepActive(tick)

	if len(fired) > 0 || len(done) > 0 {
		s.logger.Debug("events processed",
			zap.Int64("tick", tick),
			zap.Int("fired", len(fired)),
			zap.Int("completed", len(done)))
	}
	return nil
}

// processCharacters gives each due character a turn. Decisions are awaited
// one character at a time; a failing or slow provider costs only that
// character's turn this tick.
func (s *Simulation) processCharacters(ctx context.Context, tick int64) error {
	for _, c := range s.World.Characters() {
		if !c.Active || tick-c.LastActionTick < s.DecisionGap {
			continue
		}

		action, err := s.decideFor(ctx, tick, c)
		if err != nil {
			s.logger.Warn("character decision failed",
				zap.String("character", c.ID),
				zap.Int64("tick", tick),
				zap.Error(err))
			continue
		}

		event, err := s.World.ActionToEvent(tick, c.ID, action)
		if err != nil {
			s.logger.Warn("action conversion failed",
				zap.String("character", c.ID), zap.Error(err))
			continue
		}
		if err := s.Queue.Schedule(event); err != nil {
			s.logger.Warn("action scheduling failed",
				zap.String("character", c.ID), zap.Error(err))
			continue
		}
		s.World.MarkActed(c.ID, tick)
	}
	return nil
}

// decideFor assembles the character's legitimate view of the world and
// asks the provider for a move.
func (s *Simulation) decideFor(ctx context.Context, tick int64, c *domain.Character) (*domain.Action, error) {
	loc, err := s.World.Location(c.LocationID)
	if err != nil {
		return nil, fmt.Errorf("resolve location of %s: %w", c.ID, err)
	}

	dctx := decider.Context{
		Tick:     tick,
		Location: loc,
		Nearby:   s.World.Occupants(c.LocationID),
		Known:    s.World.artifacts.KnownBy(c.ID, "", false),
	}
	return s.Decider.Decide(ctx, c, dctx)
}

// processDirector runs the pacing cycle. A constraint violation here is a
// bug in the director and is logged loudly, but the tick goes on.
func (s *Simulation) processDirector(ctx context.Context, tick int64) error {
	_, err := s.Director.ProcessTick(tick, s.Queue.Active())
	return err
}

// processMaintenance runs the periodic sweeps.
func (s *Simulation) processMaintenance(ctx context.Context, tick int64) error {
	if s.StaleSweepEvery > 0 && tick%s.StaleSweepEvery == 0 {
		if _, err := s.Perception.RefreshStale(tick); err != nil {
			return fmt.Errorf("stale sweep: %w", err)
		}
	}
	if s.ArcPruneEvery > 0 && tick%s.ArcPruneEvery == 0 {
		s.Arcs.PruneStale(tick)
	}
	return nil
}
