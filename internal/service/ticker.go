package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickCallback runs once per tick. Callbacks execute sequentially in
// registration order; a failing callback is logged and contained so one
// subsystem cannot stall the world.
type TickCallback func(ctx context.Context, tick int64) error

type tickHandler struct {
	name string
	fn   TickCallback
}

// Ticker is the heartbeat of the simulation. Time advances only when it
// says so, in whole ticks. Running and stopped states are explicit, and
// Advance is exposed so tests can drive the clock synchronously.
type Ticker struct {
	mu       sync.Mutex
	logger   *zap.Logger
	interval time.Duration

	handlers []tickHandler
	tick     int64
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup

	tickErrors int64
}

// NewTicker creates a stopped ticker advancing every interval once started.
func NewTicker(interval time.Duration, logger *zap.Logger) *Ticker {
	return &Ticker{
		logger:   logger,
		interval: interval,
	}
}

// Register adds a named callback. Registration order is execution order.
func (t *Ticker) Register(name string, fn TickCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, tickHandler{name: name, fn: fn})
}

// Start launches the background tick loop. Starting a running ticker is an
// error.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("ticker already running")
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.mu.Unlock()

	t.wg.Add(1)
	go t.loop(ctx)

	t.logger.Info("ticker started", zap.Duration("interval", t.interval))
	return nil
}

func (t *Ticker) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Advance(ctx)
		}
	}
}

// Stop halts the loop, waiting for any in-flight tick to finish.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("ticker stopped", zap.Int64("tick", t.Tick()))
}

// Advance runs exactly one tick: the counter increments first, then every
// callback runs in order against the new tick. Tests call this directly
// instead of starting the background loop.
func (t *Ticker) Advance(ctx context.Context) int64 {
	t.mu.Lock()
	t.tick++
	tick := t.tick
	handlers := make([]tickHandler, len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.Unlock()

	for _, h := range handlers {
		if err := h.fn(ctx, tick); err != nil {
			t.mu.Lock()
			t.tickErrors++
			t.mu.Unlock()
			t.logger.Error("tick callback failed",
				zap.String("callback", h.name),
				zap.Int64("tick", tick),
				zap.Error(err))
		}
	}
	return tick
}

// Tick returns the current tick count.
func (t *Ticker) Tick() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick
}

// Running reports whether the background loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// TickerStats reports loop counters for operators.
type TickerStats struct {
	Tick      int64 `json:"tick"`
	Running   bool  `json:"running"`
	Callbacks int   `json:"callbacks"`
	Errors    int64 `json:"errors"`
}

// Stats returns current ticker counters.
func (t *Ticker) Stats() TickerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TickerStats{
		Tick:      t.tick,
		Running:   t.running,
		Callbacks: len(t.handlers),
		Errors:    t.tickErrors,
	}
}
