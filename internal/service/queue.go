package service

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"go.uber.org/zap"
)

// EventExecutor runs an event's effects when it fires. A failure cancels
// that event only; the queue keeps processing.
type EventExecutor func(event *domain.Event, tick int64) error

type queuedEvent struct {
	tick     int64
	priority int
	seq      int64
	event    *domain.Event
}

// eventHeap orders by scheduled tick, then priority (lower number first),
// then insertion order so ties process deterministically.
type eventHeap []*queuedEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*queuedEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue schedules events by tick and drives their lifecycle:
// scheduled, then active while their duration runs, then completed or
// cancelled. Activation happens on the tick the event is due; completion
// happens on the sweep once the duration has elapsed.
type EventQueue struct {
	mu     sync.Mutex
	logger *zap.Logger

	heap      eventHeap
	active    map[string]*domain.Event
	seq       int64
	processed int64
	cancelled int64
	completed int64
}

// NewEventQueue creates an empty queue.
func NewEventQueue(logger *zap.Logger) *EventQueue {
	q := &EventQueue{
		logger: logger,
		active: make(map[string]*domain.Event),
	}
	heap.Init(&q.heap)
	return q
}

// Schedule enqueues an event for its ScheduledTick.
func (q *EventQueue) Schedule(event *domain.Event) error {
	if event == nil {
		return fmt.Errorf("schedule: nil event")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	event.Status = domain.EventScheduled
	q.seq++
	heap.Push(&q.heap, &queuedEvent{
		tick:     event.ScheduledTick,
		priority: event.Priority,
		seq:      q.seq,
		event:    event,
	})

	q.logger.Debug("event scheduled",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Int64("tick", event.ScheduledTick))

	return nil
}

// ProcessDue fires every event scheduled at or before tick, in queue
// order. Each fired event becomes active with its start tick stamped; an
// executor failure cancels that one event and processing continues.
func (q *EventQueue) ProcessDue(tick int64, execute EventExecutor) []*domain.Event {
	var due []*domain.Event

	q.mu.Lock()
	for q.heap.Len() > 0 && q.heap[0].tick <= tick {
		qe := heap.Pop(&q.heap).(*queuedEvent)
		due = append(due, qe.event)
	}
	q.mu.Unlock()

	var fired []*domain.Event
	for _, event := range due {
		start := tick
		event.Status = domain.EventActive
		event.StartTick = &start

		if execute != nil {
			if err := execute(event, tick); err != nil {
				event.Status = domain.EventCancelled
				q.mu.Lock()
				q.cancelled++
				q.mu.Unlock()
				q.logger.Warn("event execution failed",
					zap.String("event_id", event.ID),
					zap.Error(err))
				continue
			}
		}

		q.mu.Lock()
		q.active[event.ID] = event
		q.processed++
		q.mu.Unlock()
		fired = append(fired, event)
	}

	return fired
}

// SweepActive completes every active event whose duration has elapsed: an
// event started at tick 100 with duration 5 completes at tick 105 exactly.
// Zero-duration events complete on the next sweep after firing.
func (q *EventQueue) SweepActive(tick int64) []*domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	var done []*domain.Event
	for id, event := range q.active {
		if event.StartTick == nil || tick-*event.StartTick < event.DurationTicks {
			continue
		}
		end := tick
		event.Status = domain.EventCompleted
		event.EndTick = &end
		delete(q.active, id)
		q.completed++
		done = append(done, event)

		q.logger.Debug("event completed",
			zap.String("event_id", event.ID),
			zap.Int64("tick", tick))
	}
	return done
}

// Cancel removes a scheduled or active event.
func (q *EventQueue) Cancel(eventID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if event, ok := q.active[eventID]; ok {
		event.Status = domain.EventCancelled
		delete(q.active, eventID)
		q.cancelled++
		return true
	}
	for i, qe := range q.heap {
		if qe.event.ID == eventID {
			qe.event.Status = domain.EventCancelled
			heap.Remove(&q.heap, i)
			q.cancelled++
			return true
		}
	}
	return false
}

// Active returns copies of the currently running events. The tick loop
// keeps mutating the originals, so readers get snapshots.
func (q *EventQueue) Active() []*domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*domain.Event, 0, len(q.active))
	for _, e := range q.active {
		out = append(out, e.Clone())
	}
	return out
}

// Upcoming returns up to limit scheduled events in firing order without
// disturbing the queue.
func (q *EventQueue) Upcoming(limit int) []*domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make(eventHeap, len(q.heap))
	copy(snapshot, q.heap)

	var out []*domain.Event
	for snapshot.Len() > 0 && (limit <= 0 || len(out) < limit) {
		qe := heap.Pop(&snapshot).(*queuedEvent)
		out = append(out, qe.event.Clone())
	}
	return out
}

// QueueStats reports queue counters for operators.
type QueueStats struct {
	Scheduled int   `json:"scheduled"`
	Active    int   `json:"active"`
	Processed int64 `json:"processed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// Stats returns current queue counters.
func (q *EventQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return QueueStats{
		Scheduled: q.heap.Len(),
		Active:    len(q.active),
		Processed: q.processed,
		Completed: q.completed,
		Cancelled: q.cancelled,
	}
}
