package domain

// BeliefState is how strongly an actor believes an artifact, ordered from
// strongest-true to strongest-false.
type BeliefState string

const (
	StateConvinced    BeliefState = "convinced"
	StateConfident    BeliefState = "confident"
	StateLeaningTrue  BeliefState = "leaning_true"
	StateUncertain    BeliefState = "uncertain"
	StateLeaningFalse BeliefState = "leaning_false"
	StateSkeptical    BeliefState = "skeptical"
	StateRejected     BeliefState = "rejected"
)

// beliefLadder orders states from strongest-true (index 0) to
// strongest-false. State shifts move along this ladder one step at a time.
var beliefLadder = []BeliefState{
	StateConvinced,
	StateConfident,
	StateLeaningTrue,
	StateUncertain,
	StateLeaningFalse,
	StateSkeptical,
	StateRejected,
}

// BeliefStateForScore maps a confidence score to its threshold band.
func BeliefStateForScore(score float64) BeliefState {
	switch {
	case score > 0.9:
		return StateConvinced
	case score > 0.7:
		return StateConfident
	case score > 0.55:
		return StateLeaningTrue
	case score > 0.45:
		return StateUncertain
	case score > 0.3:
		return StateLeaningFalse
	case score > 0.1:
		return StateSkeptical
	default:
		return StateRejected
	}
}

// LadderIndex returns the state's position on the conviction ladder.
// Lower index means stronger belief in the claim.
func (s BeliefState) LadderIndex() int {
	for i, st := range beliefLadder {
		if st == s {
			return i
		}
	}
	return 3 // uncertain
}

// StepToward moves the state exactly one step toward target, or not at all
// if the states already match.
func (s BeliefState) StepToward(target BeliefState) BeliefState {
	cur, dst := s.LadderIndex(), target.LadderIndex()
	switch {
	case dst < cur:
		return beliefLadder[cur-1]
	case dst > cur:
		return beliefLadder[cur+1]
	default:
		return s
	}
}

// AdjustForContradiction weakens a state one notch when a newly encountered
// artifact conflicts with what the actor already believes. True-leaning
// states slide toward uncertainty; false-leaning states harden into
// disbelief.
func (s BeliefState) AdjustForContradiction() BeliefState {
	switch s {
	case StateConvinced:
		return StateConfident
	case StateConfident:
		return StateLeaningTrue
	case StateLeaningTrue:
		return StateUncertain
	case StateLeaningFalse:
		return StateSkeptical
	case StateSkeptical:
		return StateRejected
	default:
		return s
	}
}

// Belief is one actor's subjective stance on one artifact. Beliefs are
// never deleted, only state-transitioned by reinforcement, challenge, or
// contradiction resolution.
type Belief struct {
	Actor      string      `json:"actor"`
	ArtifactID string      `json:"artifact_id"`
	State      BeliefState `json:"state"`
	Confidence float64     `json:"confidence"`

	Justification string   `json:"justification"`
	BasedOn       []string `json:"based_on,omitempty"`

	FormedTick      int64 `json:"formed_tick"`
	UpdatedTick     int64 `json:"updated_tick"`
	ReinforcedCount int   `json:"reinforced_count"`
	ChallengedCount int   `json:"challenged_count"`
}

// Clone returns a copy safe to hand to readers outside the belief graph.
func (b *Belief) Clone() *Belief {
	c := *b
	c.BasedOn = append([]string(nil), b.BasedOn...)
	return &c
}

// ContradictionPair is an unordered pair of artifact ids an actor cannot
// hold with full confidence at the same time. Pairs are normalized so the
// lexically smaller id is always A.
type ContradictionPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewContradictionPair normalizes the pair ordering.
func NewContradictionPair(a, b string) ContradictionPair {
	if b < a {
		a, b = b, a
	}
	return ContradictionPair{A: a, B: b}
}

// Involves reports whether the pair references the given artifact.
func (p ContradictionPair) Involves(artifactID string) bool {
	return p.A == artifactID || p.B == artifactID
}
