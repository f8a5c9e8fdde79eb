package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

const factLogName = "facts.log"

// Ledger is the authoritative, append-only record of what has happened.
// It never forgets, never drifts, and never contradicts itself. Facts are
// immutable once recorded; the full state is reconstructable by replaying
// the persisted log in insertion order.
//
// The ledger is single-writer: only the simulation engine records facts.
// Reads may come from the dashboard concurrently, hence the RWMutex.
type Ledger struct {
	mu     sync.RWMutex
	logger *zap.Logger

	facts     []*domain.Fact
	byTick    map[int64][]*domain.Fact
	bySubject map[string][]*domain.Fact
	byType    map[domain.FactType][]*domain.Fact

	logFile *os.File
	logW    *bufio.Writer
}

// NewLedger creates an in-memory ledger with no persistence.
func NewLedger(logger *zap.Logger) *Ledger {
	return &Ledger{
		logger:    logger,
		byTick:    make(map[int64][]*domain.Fact),
		bySubject: make(map[string][]*domain.Fact),
		byType:    make(map[domain.FactType][]*domain.Fact),
	}
}

// OpenLedger opens (or creates) a persisted ledger under dir, replaying any
// existing fact log to rebuild all indices before new facts are appended.
func OpenLedger(dir string, logger *zap.Logger) (*Ledger, error) {
	objDir := filepath.Join(dir, "objective")
	if err := os.MkdirAll(objDir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	l := NewLedger(logger)
	path := filepath.Join(objDir, factLogName)

	if f, err := os.Open(path); err == nil {
		replayErr := l.replay(f)
		_ = f.Close()
		if replayErr != nil {
			return nil, fmt.Errorf("replay fact log: %w", replayErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open fact log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open fact log for append: %w", err)
	}
	l.logFile = f
	l.logW = bufio.NewWriter(f)

	if len(l.facts) > 0 {
		logger.Info("fact log replayed",
			zap.Int("facts", len(l.facts)),
			zap.String("path", path))
	}
	return l, nil
}

// Close flushes and closes the append log, if any.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return nil
	}
	if err := l.logW.Flush(); err != nil {
		return fmt.Errorf("flush fact log: %w", err)
	}
	return l.logFile.Close()
}

// Record appends an objective fact and indexes it by tick, subject, and
// type. This is the only way facts enter the system. It fails only on
// serialization/write errors, which are fatal to the tick.
func (l *Ledger) Record(tick int64, factType domain.FactType, subject string, data map[string]any, observers []string) (*domain.Fact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fact := &domain.Fact{
		ID:        fmt.Sprintf("%s_%s_%d_%d", factType, subject, tick, len(l.facts)),
		Tick:      tick,
		Type:      factType,
		Subject:   subject,
		Data:      data,
		Observers: append([]string(nil), observers...),
	}

	if l.logW != nil {
		line, err := json.Marshal(fact)
		if err != nil {
			return nil, fmt.Errorf("marshal fact %s: %w", fact.ID, err)
		}
		if _, err := l.logW.Write(append(line, '\n')); err != nil {
			return nil, fmt.Errorf("append fact %s: %w", fact.ID, err)
		}
		if err := l.logW.Flush(); err != nil {
			return nil, fmt.Errorf("flush fact %s: %w", fact.ID, err)
		}
	}

	l.index(fact)

	l.logger.Debug("recorded fact",
		zap.String("fact_id", fact.ID),
		zap.String("type", string(factType)),
		zap.String("subject", subject),
		zap.Int64("tick", tick))

	return fact, nil
}

func (l *Ledger) index(fact *domain.Fact) {
	l.facts = append(l.facts, fact)
	l.byTick[fact.Tick] = append(l.byTick[fact.Tick], fact)
	l.bySubject[fact.Subject] = append(l.bySubject[fact.Subject], fact)
	l.byType[fact.Type] = append(l.byType[fact.Type], fact)
}

func (l *Ledger) replay(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		fact := &domain.Fact{}
		if err := json.Unmarshal(raw, fact); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		l.index(fact)
	}
	return sc.Err()
}

// FactsAt returns all facts recorded at the given tick, in insertion order.
func (l *Ledger) FactsAt(tick int64) []*domain.Fact {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*domain.Fact(nil), l.byTick[tick]...)
}

// FactsAbout returns facts about a subject within [since, until]; pass
// domain.NoTick to leave an endpoint unbounded.
func (l *Ledger) FactsAbout(subject string, since, until int64) []*domain.Fact {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*domain.Fact
	for _, f := range l.bySubject[subject] {
		if since != domain.NoTick && f.Tick < since {
			continue
		}
		if until != domain.NoTick && f.Tick > until {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FactsByType returns facts of the given type, optionally since a tick.
func (l *Ledger) FactsByType(factType domain.FactType, since int64) []*domain.Fact {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*domain.Fact
	for _, f := range l.byType[factType] {
		if since != domain.NoTick && f.Tick < since {
			continue
		}
		out = append(out, f)
	}
	return out
}

// LocationAt derives where a subject objectively was at the given tick from
// its movement facts. Returns ErrNotFound when the subject has no recorded
// movement. This is engine truth: never expose it to character reasoning.
func (l *Ledger) LocationAt(subject string, tick int64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	facts := l.bySubject[subject]
	for i := len(facts) - 1; i >= 0; i-- {
		f := facts[i]
		if f.Tick > tick || f.Type != domain.FactCharacterMoved {
			continue
		}
		if dest, ok := f.Data["destination"].(string); ok {
			return dest, nil
		}
	}
	return "", ErrNotFound
}

// Len returns the number of facts in the ledger.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.facts)
}

// Stats summarizes the ledger for operators.
func (l *Ledger) Stats() domain.LedgerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	types := make(map[string]int, len(l.byType))
	for t, facts := range l.byType {
		types[string(t)] = len(facts)
	}
	return domain.LedgerStats{
		TotalFacts:      len(l.facts),
		FactTypes:       types,
		SubjectsTracked: len(l.bySubject),
	}
}
