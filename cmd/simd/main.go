package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/stagecraft/internal/api"
	"github.com/Harshitk-cp/stagecraft/internal/config"
	"github.com/Harshitk-cp/stagecraft/internal/decider"
	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/service"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	ledger, err := store.OpenLedger(config.DataDir(), logger)
	if err != nil {
		logger.Fatal("failed to open fact ledger", zap.Error(err))
	}
	defer func() { _ = ledger.Close() }()

	artifacts := store.NewArtifacts(logger)
	beliefs := service.NewBeliefService(artifacts, logger)
	perception := service.NewPerceptionService(ledger, artifacts, beliefs, logger)
	perception.StalenessThreshold = config.StalenessThreshold()
	world := service.NewWorld(ledger, artifacts, beliefs, perception, logger)
	queue := service.NewEventQueue(logger)
	tension := service.NewTensionManager(config.TargetArcLength(), logger)
	arcs := service.NewArcTracker(logger)
	analyzer := service.NewDramaAnalyzer(world, beliefs, logger)
	director := service.NewDirector(world, artifacts, analyzer, tension, arcs, logger)

	provider, err := decider.NewProvider(config.DecisionProvider())
	if err != nil {
		logger.Fatal("failed to create decision provider", zap.Error(err))
	}
	logger.Info("decision provider initialized", zap.String("provider", config.DecisionProvider()))

	sim := service.NewSimulation(config.TickInterval(), world, queue, perception, beliefs, arcs, director, provider, logger)

	fresh := ledger.Len() == 0
	if err := seedDemoWorld(world, arcs, fresh); err != nil {
		logger.Fatal("failed to seed world", zap.Error(err))
	}
	if fresh {
		logger.Info("demo world seeded")
	} else {
		logger.Info("world restored from fact log", zap.Int("facts", ledger.Len()))
	}

	if err := sim.Start(ctx); err != nil {
		logger.Fatal("failed to start simulation", zap.Error(err))
	}

	app := api.NewApp(sim, ledger, artifacts, tension, analyzer, logger)

	addr := fmt.Sprintf(":%d", config.ServerPort())
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("dashboard starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("dashboard failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down")

	sim.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("dashboard forced to shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}

// seedDemoWorld stands up a small town with enough tangled goals and
// relationships for the director to work with. On a fresh ledger each
// placement is recorded as a fact; on a restored ledger characters are
// re-registered at their last recorded locations instead.
func seedDemoWorld(world *service.World, arcs *service.ArcTracker, fresh bool) error {
	locations := []*domain.Location{
		{
			ID: "loc_tavern", Name: "The Gilded Tankard", Type: "tavern",
			Description: "Where everyone hears everything eventually",
			Atmosphere:  "warm and loud",
			ConnectedTo: []string{"loc_market", "loc_docks"},
			TravelTimes: map[string]int64{"loc_market": 2, "loc_docks": 3},
		},
		{
			ID: "loc_market", Name: "Harbor Market", Type: "market",
			Description: "Stalls, crowds, and quick hands",
			Atmosphere:  "busy",
			ConnectedTo: []string{"loc_tavern", "loc_docks", "loc_keep"},
			TravelTimes: map[string]int64{"loc_tavern": 2, "loc_docks": 2, "loc_keep": 4},
		},
		{
			ID: "loc_docks", Name: "The Docks", Type: "docks",
			Description: "Ships arrive with cargo and rumors in equal measure",
			Atmosphere:  "salt and rope",
			ConnectedTo: []string{"loc_tavern", "loc_market"},
			TravelTimes: map[string]int64{"loc_tavern": 3, "loc_market": 2},
		},
		{
			ID: "loc_keep", Name: "Old Keep", Type: "fortress",
			Description: "The seat of what passes for authority",
			Atmosphere:  "cold stone",
			ConnectedTo: []string{"loc_market"},
			TravelTimes: map[string]int64{"loc_market": 4},
		},
	}
	for _, loc := range locations {
		if err := world.AddLocation(loc); err != nil {
			return err
		}
	}

	characters := []*domain.Character{
		{
			ID: "char_elena", Name: "Elena", LocationID: "loc_tavern",
			State: domain.CharIdle, Skepticism: 0.2,
			Goals: []string{"protect the old keep's archive", "find Marcus"},
			Relationships: map[string]domain.Relationship{
				"char_marcus": {Trust: 85, Respect: 70, History: "grew up together"},
				"char_sofia":  {Trust: 40, Respect: 60},
			},
		},
		{
			ID: "char_marcus", Name: "Marcus", LocationID: "loc_docks",
			State: domain.CharIdle, Skepticism: 0.5,
			Goals: []string{"steal the harbor ledger", "stay hidden"},
			Relationships: map[string]domain.Relationship{
				"char_elena": {Trust: 80, Respect: 75, History: "grew up together"},
			},
		},
		{
			ID: "char_sofia", Name: "Sofia", LocationID: "loc_market",
			State: domain.CharIdle, Skepticism: 0.1,
			Goals: []string{"guard the harbor ledger", "expand the stall"},
			Relationships: map[string]domain.Relationship{
				"char_elena":  {Trust: 55, Respect: 65},
				"char_marcus": {Trust: 30, Respect: 45},
			},
		},
	}
	for _, c := range characters {
		if fresh {
			if err := world.AddCharacter(0, c); err != nil {
				return err
			}
		} else if err := world.RestoreCharacter(c); err != nil {
			return err
		}
	}

	arcs.CreateArc(0, "pursuit", "The Missing Friend", "loyalty against time",
		[]string{"char_elena", "char_marcus"})
	arcs.CreateArc(0, "heist", "The Harbor Ledger", "ambition against duty",
		[]string{"char_marcus", "char_sofia"})

	return nil
}
