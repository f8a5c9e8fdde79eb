package domain

// EventType categorizes a world event.
type EventType string

const (
	EventCharacterAction      EventType = "character_action"
	EventCharacterTravel      EventType = "character_travel"
	EventCharacterInteraction EventType = "character_interaction"
	EventLocationEvent        EventType = "location_event"
	EventFactionConflict      EventType = "faction_conflict"
	EventEnvironmental        EventType = "environmental"
	EventBattle               EventType = "battle"
	EventMeeting              EventType = "meeting"
	EventDiscovery            EventType = "discovery"
)

// EventStatus is a linear state machine: Scheduled -> Active ->
// {Completed | Cancelled}. Transitions are one-directional; a completed or
// cancelled event is never re-scheduled.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Event is something happening in the world across one or more ticks.
type Event struct {
	ID     string      `json:"id"`
	Type   EventType   `json:"type"`
	Status EventStatus `json:"status"`

	ScheduledTick int64  `json:"scheduled_tick"`
	StartTick     *int64 `json:"start_tick,omitempty"`
	EndTick       *int64 `json:"end_tick,omitempty"`
	DurationTicks int64  `json:"duration_ticks"`

	LocationID   string   `json:"location_id"`
	Participants []string `json:"participants"`

	Title       string         `json:"title"`
	Description string         `json:"description"`
	Impact      map[string]any `json:"impact,omitempty"`

	// Lower number means sooner among events scheduled for the same tick.
	Priority int `json:"priority"`
}

// Clone returns a copy safe to hand to readers outside the queue.
func (e *Event) Clone() *Event {
	c := *e
	if e.StartTick != nil {
		start := *e.StartTick
		c.StartTick = &start
	}
	if e.EndTick != nil {
		end := *e.EndTick
		c.EndTick = &end
	}
	c.Participants = append([]string(nil), e.Participants...)
	if e.Impact != nil {
		c.Impact = make(map[string]any, len(e.Impact))
		for k, v := range e.Impact {
			c.Impact[k] = v
		}
	}
	return &c
}

// ActionType is the kind of move a character decision produces.
type ActionType string

const (
	ActionTravel   ActionType = "travel"
	ActionInteract ActionType = "interact"
	ActionStay     ActionType = "stay"
	ActionExplore  ActionType = "explore"
	ActionWork     ActionType = "work"
	ActionReflect  ActionType = "reflect"
)

// Action is the envelope handed to the engine by the external character
// decision collaborator. The engine converts it into a schedulable Event
// and never inspects how it was produced.
type Action struct {
	Type            ActionType `json:"action_type"`
	Target          string     `json:"target,omitempty"`
	Reasoning       string     `json:"reasoning"`
	Duration        int64      `json:"duration"`
	Priority        int        `json:"priority"`
	ExpectedOutcome string     `json:"expected_outcome,omitempty"`
}
