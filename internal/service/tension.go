package service

import (
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultStartTension     = 30.0
	DefaultTargetTension    = 50.0
	DefaultMinTension       = 10.0
	DefaultMaxTension       = 90.0
	DefaultMaxTensionChange = 5.0
	DefaultTargetArcLength  = 100
	DefaultTrendWindow      = 10

	tensionHistoryCap = 200
)

// ArcPhase is where the pacing curve currently sits.
type ArcPhase string

const (
	PhaseRising  ArcPhase = "rising"
	PhasePeak    ArcPhase = "peak"
	PhaseFalling ArcPhase = "falling"
	PhaseValley  ArcPhase = "valley"
)

// eventSpike maps an event type to the tension it injects when active.
var eventSpike = map[string]float64{
	"betrayal":   20.0,
	"revelation": 15.0,
	"conflict":   10.0,
	"discovery":  8.0,
	"meeting":    5.0,
}

// TensionManager maintains the pacing curve: a bounded tension value that
// rises and falls through story phases. Tension can never jump; every
// change is rate-limited so the curve reads as build-up and release rather
// than noise.
type TensionManager struct {
	mu     sync.Mutex
	logger *zap.Logger

	current  float64
	arcStart int64
	phase    ArcPhase
	history  []domain.TensionPoint

	TargetTension   float64
	TargetArcLength int64
	MinTension      float64
	MaxTension      float64
	MaxChange       float64
	TrendWindow     int
}

// NewTensionManager creates the curve at its resting start level.
func NewTensionManager(targetArcLength int64, logger *zap.Logger) *TensionManager {
	if targetArcLength <= 0 {
		targetArcLength = DefaultTargetArcLength
	}
	return &TensionManager{
		logger:          logger,
		current:         DefaultStartTension,
		phase:           PhaseRising,
		TargetTension:   DefaultTargetTension,
		TargetArcLength: targetArcLength,
		MinTension:      DefaultMinTension,
		MaxTension:      DefaultMaxTension,
		MaxChange:       DefaultMaxTensionChange,
		TrendWindow:     DefaultTrendWindow,
	}
}

// Update recomputes tension for the tick from the world's active events,
// then advances the arc phase. Returns the new tension level.
func (m *TensionManager) Update(tick int64, activeEvents []*domain.Event) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	base := m.baseTension(len(activeEvents))
	spike := m.eventTension(activeEvents)
	arcMod := m.arcModifier(tick)

	m.current = m.constrain(m.current, base+spike+arcMod)

	point := domain.TensionPoint{Tick: tick, Tension: m.current, Source: "update"}
	if len(activeEvents) > 0 {
		point.EventID = activeEvents[0].ID
	}
	m.history = append(m.history, point)
	if len(m.history) > tensionHistoryCap {
		m.history = m.history[len(m.history)-tensionHistoryCap:]
	}

	m.advancePhase(tick)

	m.logger.Debug("tension updated",
		zap.Int64("tick", tick),
		zap.Float64("tension", m.current),
		zap.Float64("base", base),
		zap.Float64("spike", spike),
		zap.Float64("arc_modifier", arcMod),
		zap.String("phase", string(m.phase)))

	return m.current
}

// baseTension comes from how much is actively happening in the world.
func (m *TensionManager) baseTension(activeCount int) float64 {
	tension := 20.0 + float64(activeCount)*5.0 + 10.0
	if tension > m.MaxTension {
		tension = m.MaxTension
	}
	return tension
}

// eventTension sums per-event spikes, capped so a pile-up of events reads
// as one surge rather than a cliff.
func (m *TensionManager) eventTension(events []*domain.Event) float64 {
	delta := 0.0
	for _, e := range events {
		if spike, ok := eventSpike[string(e.Type)]; ok {
			delta += spike
		} else {
			delta += 3.0
		}
	}
	if delta > 20.0 {
		delta = 20.0
	}
	return delta
}

func (m *TensionManager) arcModifier(tick int64) float64 {
	progress := float64(tick-m.arcStart) / float64(m.TargetArcLength)
	switch m.phase {
	case PhaseRising:
		return progress * 10.0
	case PhasePeak:
		return 5.0
	case PhaseFalling:
		return -progress * 10.0
	default:
		return -5.0
	}
}

// constrain applies the per-tick rate limit, then the hard bounds.
func (m *TensionManager) constrain(current, target float64) float64 {
	delta := target - current
	if delta > m.MaxChange {
		delta = m.MaxChange
	} else if delta < -m.MaxChange {
		delta = -m.MaxChange
	}

	v := current + delta
	if v < m.MinTension {
		return m.MinTension
	}
	if v > m.MaxTension {
		return m.MaxTension
	}
	return v
}

func (m *TensionManager) advancePhase(tick int64) {
	progress := float64(tick-m.arcStart) / float64(m.TargetArcLength)

	switch {
	case m.phase == PhaseRising && progress > 0.6:
		m.phase = PhasePeak
	case m.phase == PhasePeak && progress > 0.7:
		m.phase = PhaseFalling
	case m.phase == PhaseFalling && progress > 0.9:
		m.phase = PhaseValley
	case m.phase == PhaseValley && progress >= 1.0:
		m.phase = PhaseRising
		m.arcStart = tick
		m.logger.Info("new pacing arc started", zap.Int64("tick", tick))
	}
}

// Current returns the present tension level.
func (m *TensionManager) Current() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Phase returns the current arc phase.
func (m *TensionManager) Phase() ArcPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// ShouldEscalate reports whether the curve wants more tension: below
// target while still rising.
func (m *TensionManager) ShouldEscalate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current < m.TargetTension && m.phase == PhaseRising
}

// ShouldDeEscalate reports whether the curve wants release: above target
// while falling.
func (m *TensionManager) ShouldDeEscalate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current > m.TargetTension && m.phase == PhaseFalling
}

// Trend classifies recent movement over the trend window as rising,
// falling, or stable.
func (m *TensionManager) Trend() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trendLocked()
}

func (m *TensionManager) trendLocked() string {
	if len(m.history) < 2 {
		return "stable"
	}
	recent := m.history
	if len(recent) > m.TrendWindow {
		recent = recent[len(recent)-m.TrendWindow:]
	}

	delta := recent[len(recent)-1].Tension - recent[0].Tension
	switch {
	case delta > 5:
		return "rising"
	case delta < -5:
		return "falling"
	default:
		return "stable"
	}
}

// TensionStats reports curve state for operators.
type TensionStats struct {
	Current     float64 `json:"current_tension"`
	Target      float64 `json:"target_tension"`
	Phase       string  `json:"arc_phase"`
	Trend       string  `json:"trend"`
	HistorySize int     `json:"history_size"`
}

// Stats returns current curve counters.
func (m *TensionManager) Stats() TensionStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TensionStats{
		Current:     m.current,
		Target:      m.TargetTension,
		Phase:       string(m.phase),
		Trend:       m.trendLocked(),
		HistorySize: len(m.history),
	}
}
