package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/stagecraft/internal/api/handlers"
	mw "github.com/Harshitk-cp/stagecraft/internal/api/middleware"
	"github.com/Harshitk-cp/stagecraft/internal/config"
	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/service"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the simulation it observes. Every route is
// read-only: the dashboard watches the world, it never steers it.
type App struct {
	Router *chi.Mux
	Sim    *service.Simulation

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp builds the dashboard router over a wired simulation.
func NewApp(sim *service.Simulation, ledger domain.Ledger, artifacts domain.ArtifactStore, tension *service.TensionManager, analyzer *service.DramaAnalyzer, logger *zap.Logger) *App {
	worldHandler := handlers.NewWorldHandler(sim.World, ledger, sim.Beliefs)
	narrativeHandler := handlers.NewNarrativeHandler(sim.Director, tension, sim.Arcs, analyzer, sim.Ticker)
	eventsHandler := handlers.NewEventsHandler(sim.Queue)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sim:       sim,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", app.statsHandler(ledger, artifacts))

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", worldHandler.ListCharacters)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", worldHandler.GetCharacter)
				r.Get("/beliefs", worldHandler.GetBeliefs)
				r.Get("/known", worldHandler.GetKnown)
			})
		})

		r.Get("/locations", worldHandler.ListLocations)
		r.Get("/facts/{subject}", worldHandler.GetFacts)

		r.Route("/events", func(r chi.Router) {
			r.Get("/active", eventsHandler.ListActive)
			r.Get("/upcoming", eventsHandler.ListUpcoming)
		})

		r.Route("/narrative", func(r chi.Router) {
			r.Get("/tension", narrativeHandler.GetTension)
			r.Get("/director", narrativeHandler.GetDirector)
			r.Get("/opportunities", narrativeHandler.GetOpportunities)
			r.Get("/arcs/active", narrativeHandler.ListActiveArcs)
			r.Get("/arcs/completed", narrativeHandler.ListCompletedArcs)
		})
	})

	return app
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"tick":    app.Sim.Ticker.Tick(),
			"running": app.Sim.Ticker.Running(),
		})
	}
}

// statsHandler aggregates every subsystem's counters into one view.
func (app *App) statsHandler(ledger domain.Ledger, artifacts domain.ArtifactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		beliefs := make(map[string]domain.BeliefStats)
		for _, actor := range app.Sim.Beliefs.Actors() {
			beliefs[actor] = app.Sim.Beliefs.Stats(actor)
		}

		writeStats := map[string]any{
			"ticker":    app.Sim.Ticker.Stats(),
			"world":     app.Sim.World.Stats(),
			"ledger":    ledger.Stats(),
			"artifacts": artifacts.Stats(),
			"beliefs":   beliefs,
			"events":    app.Sim.Queue.Stats(),
			"director":  app.Sim.Director.Stats(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(writeStats)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.Ledger        = (*store.Ledger)(nil)
	_ domain.ArtifactStore = (*store.Artifacts)(nil)
)
