package domain

// CharacterState is what a character is physically doing.
type CharacterState string

const (
	CharIdle           CharacterState = "idle"
	CharTraveling      CharacterState = "traveling"
	CharInConversation CharacterState = "in_conversation"
	CharResting        CharacterState = "resting"
	CharWorking        CharacterState = "working"
	CharExploring      CharacterState = "exploring"
)

// Relationship is a read-only snapshot of how one character regards
// another. Trust and respect run 0-100.
type Relationship struct {
	Trust   float64 `json:"trust"`
	Respect float64 `json:"respect"`
	History string  `json:"history,omitempty"`
}

// Character is the engine-level view of an actor: position, activity, and
// the motivational snapshot the narrative layer scores against. The full
// psychological simulation lives outside this core.
type Character struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	LocationID  string         `json:"location_id"`
	State       CharacterState `json:"state"`
	Destination string         `json:"destination,omitempty"`

	Goals         []string                `json:"goals,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`

	// Skepticism in [0,1] dampens belief formation from second-hand sources.
	Skepticism float64 `json:"skepticism"`

	LastActionTick int64 `json:"last_action_tick"`
	Active         bool  `json:"active"`
}

// RelationshipWith returns the snapshot toward other, if any.
func (c *Character) RelationshipWith(other string) (Relationship, bool) {
	r, ok := c.Relationships[other]
	return r, ok
}

// Clone returns a copy safe to hand outside the world registry.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Goals = append([]string(nil), c.Goals...)
	cp.Relationships = make(map[string]Relationship, len(c.Relationships))
	for k, v := range c.Relationships {
		cp.Relationships[k] = v
	}
	return &cp
}

// Location is a place characters can occupy.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`

	Description string `json:"description,omitempty"`
	Atmosphere  string `json:"atmosphere,omitempty"`

	ConnectedTo []string         `json:"connected_to,omitempty"`
	TravelTimes map[string]int64 `json:"travel_times,omitempty"`

	Occupants []string `json:"occupants,omitempty"`
}

// Clone returns a copy safe to hand outside the world registry.
func (l *Location) Clone() *Location {
	cp := *l
	cp.ConnectedTo = append([]string(nil), l.ConnectedTo...)
	cp.Occupants = append([]string(nil), l.Occupants...)
	cp.TravelTimes = make(map[string]int64, len(l.TravelTimes))
	for k, v := range l.TravelTimes {
		cp.TravelTimes[k] = v
	}
	return &cp
}
