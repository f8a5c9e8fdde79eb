package domain

import "sort"

// ArtifactType indicates how a piece of information entered the world.
type ArtifactType string

const (
	ArtifactDirectObservation ArtifactType = "direct_observation"
	ArtifactReport            ArtifactType = "report"
	ArtifactRumor             ArtifactType = "rumor"
	ArtifactMessage           ArtifactType = "message"
	ArtifactDeduction         ArtifactType = "deduction"
	ArtifactMemory            ArtifactType = "memory"
)

// Reliability is the coarse trust label attached to an artifact at creation.
type Reliability string

const (
	ReliabilityCertain      Reliability = "certain"
	ReliabilityConfident    Reliability = "confident"
	ReliabilityProbable     Reliability = "probable"
	ReliabilityUncertain    Reliability = "uncertain"
	ReliabilityDubious      Reliability = "dubious"
	ReliabilityContradicted Reliability = "contradicted"
)

// Score converts a reliability label to a numeric score in [0,1].
func (r Reliability) Score() float64 {
	switch r {
	case ReliabilityCertain:
		return 1.0
	case ReliabilityConfident:
		return 0.85
	case ReliabilityProbable:
		return 0.7
	case ReliabilityUncertain:
		return 0.5
	case ReliabilityDubious:
		return 0.3
	case ReliabilityContradicted:
		return 0.1
	default:
		return 0.5
	}
}

// Artifact is a knowable, shareable representation of information.
// Unlike facts, artifacts can be outdated, partial, contradictory, or false.
// Claim and Data are immutable after creation; a correction is a new
// artifact that supersedes this one, never an edit.
type Artifact struct {
	ID          string         `json:"artifact_id"`
	CreatedTick int64          `json:"created_tick"`
	Type        ArtifactType   `json:"artifact_type"`
	Subject     string         `json:"subject"`
	Claim       string         `json:"claim"`
	Data        map[string]any `json:"data"`
	Source      string         `json:"source"`
	Reliability Reliability    `json:"reliability"`

	// Lifecycle. SupersededBy is first-write-wins.
	SupersededBy string          `json:"superseded_by,omitempty"`
	Contradicts  map[string]bool `json:"-"`

	// Access control: which actors know this artifact exists.
	KnownBy map[string]bool `json:"-"`
}

// Superseded reports whether newer information has replaced this artifact.
func (a *Artifact) Superseded() bool {
	return a.SupersededBy != ""
}

// ContradictionIDs returns the ids of artifacts this one contradicts, sorted.
func (a *Artifact) ContradictionIDs() []string {
	return sortedKeys(a.Contradicts)
}

// Knowers returns the actors aware of this artifact, sorted.
func (a *Artifact) Knowers() []string {
	return sortedKeys(a.KnownBy)
}

// Clone returns a deep copy safe to hand to readers outside the store.
func (a *Artifact) Clone() *Artifact {
	c := *a
	c.Data = make(map[string]any, len(a.Data))
	for k, v := range a.Data {
		c.Data[k] = v
	}
	c.Contradicts = make(map[string]bool, len(a.Contradicts))
	for k := range a.Contradicts {
		c.Contradicts[k] = true
	}
	c.KnownBy = make(map[string]bool, len(a.KnownBy))
	for k := range a.KnownBy {
		c.KnownBy[k] = true
	}
	return &c
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
