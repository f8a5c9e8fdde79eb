package domain

// DramaType classifies a detected dramatic situation.
type DramaType string

const (
	DramaDeception  DramaType = "deception"
	DramaBetrayal   DramaType = "betrayal"
	DramaRevelation DramaType = "revelation"
	DramaDilemma    DramaType = "dilemma"
	DramaSuspense   DramaType = "suspense"
	DramaIrony      DramaType = "irony"
	DramaSacrifice  DramaType = "sacrifice"
	DramaDiscovery  DramaType = "discovery"
)

// Catalyst is a suggested information-layer intervention for an opportunity.
type Catalyst struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DramaticOpportunity is an analyzer finding with narrative potential.
// Opportunities are ephemeral analysis artifacts, never persisted truth.
type DramaticOpportunity struct {
	Type      DramaType `json:"drama_type"`
	Intensity float64   `json:"intensity"`
	Urgency   float64   `json:"urgency"`

	Characters []string `json:"characters_involved"`
	LocationID string   `json:"location_id"`

	Situation        string `json:"situation"`
	DramaticQuestion string `json:"dramatic_question"`

	BeliefData         map[string]any `json:"belief_data,omitempty"`
	RelationshipData   map[string]any `json:"relationship_data,omitempty"`
	SuggestedCatalysts []Catalyst     `json:"suggested_catalysts,omitempty"`

	// ArcID links the opportunity to a tracked story arc, when one exists.
	ArcID string `json:"arc_id,omitempty"`
}

// Score is the prioritization value: intensity weighted over urgency.
func (o *DramaticOpportunity) Score() float64 {
	return o.Intensity*0.6 + o.Urgency*0.4
}

// TensionPoint is one sample on the narrative tension curve.
type TensionPoint struct {
	Tick    int64   `json:"tick"`
	Tension float64 `json:"tension"`
	Source  string  `json:"source"`
	EventID string  `json:"event_id,omitempty"`
}

// ArcStatus is the story arc state machine: Setup -> Developing -> Climax
// -> Resolution -> {Complete | Abandoned}.
type ArcStatus string

const (
	ArcSetup      ArcStatus = "setup"
	ArcDeveloping ArcStatus = "developing"
	ArcClimax     ArcStatus = "climax"
	ArcResolution ArcStatus = "resolution"
	ArcComplete   ArcStatus = "complete"
	ArcAbandoned  ArcStatus = "abandoned"
)

// Completion maps a status to its rough completion fraction.
func (s ArcStatus) Completion() float64 {
	switch s {
	case ArcSetup:
		return 0.2
	case ArcDeveloping:
		return 0.5
	case ArcClimax:
		return 0.8
	case ArcResolution:
		return 0.95
	case ArcComplete:
		return 1.0
	default:
		return 0.0
	}
}

// Beat is one narrative step attached to an arc.
type Beat struct {
	Tick        int64  `json:"tick"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// StoryArc is a tracked narrative thread spanning multiple ticks. Its
// status advances automatically as beats accumulate.
type StoryArc struct {
	ID    string `json:"arc_id"`
	Type  string `json:"arc_type"`
	Title string `json:"title"`
	Theme string `json:"theme"`

	Characters []string  `json:"characters_involved"`
	StartTick  int64     `json:"start_tick"`
	Status     ArcStatus `json:"status"`
	Completion float64   `json:"completion_percent"`

	Beats          []Beat   `json:"beats,omitempty"`
	LastUpdateTick int64    `json:"last_update_tick"`
	Milestones     []string `json:"milestones,omitempty"`
}

// Involves reports whether the arc tracks the given character.
func (a *StoryArc) Involves(characterID string) bool {
	for _, c := range a.Characters {
		if c == characterID {
			return true
		}
	}
	return false
}

// Clone returns a copy safe to hand outside the tracker.
func (a *StoryArc) Clone() *StoryArc {
	cp := *a
	cp.Characters = append([]string(nil), a.Characters...)
	cp.Beats = append([]Beat(nil), a.Beats...)
	cp.Milestones = append([]string(nil), a.Milestones...)
	return &cp
}
