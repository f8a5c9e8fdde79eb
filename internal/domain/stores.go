package domain

// NoTick is the sentinel for an unbounded tick range endpoint.
const NoTick int64 = -1

// LedgerStats summarizes the objective fact ledger.
type LedgerStats struct {
	TotalFacts      int            `json:"total_facts"`
	FactTypes       map[string]int `json:"fact_types"`
	SubjectsTracked int            `json:"subjects_tracked"`
}

// ArtifactStats summarizes the information artifact store.
type ArtifactStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Superseded int `json:"superseded"`
}

// BeliefStats summarizes one actor's belief graph.
type BeliefStats struct {
	TotalBeliefs   int `json:"total_beliefs"`
	Contradictions int `json:"contradictions"`
	HighConfidence int `json:"high_confidence"`
	Uncertain      int `json:"uncertain"`
	Rejected       int `json:"rejected"`
}

// Ledger is the append-only objective fact store. Facts never mutate once
// recorded and tick order is non-decreasing across the log.
type Ledger interface {
	// Record appends a fact. It fails only when the fact cannot be
	// serialized to the append-only log; that failure aborts the tick.
	Record(tick int64, factType FactType, subject string, data map[string]any, observers []string) (*Fact, error)

	// FactsAbout returns facts about a subject, bounded by [since, until].
	// Pass NoTick to leave an endpoint unbounded.
	FactsAbout(subject string, since, until int64) []*Fact
	FactsAt(tick int64) []*Fact
	FactsByType(factType FactType, since int64) []*Fact

	// LocationAt derives a subject's true location from its latest movement
	// fact at or before tick. Only the engine may consult it; characters
	// learn locations exclusively through artifacts.
	LocationAt(subject string, tick int64) (string, error)

	Len() int
	Stats() LedgerStats
}

// ArtifactStore manages the information layer: everything knowable.
type ArtifactStore interface {
	Create(tick int64, artifactType ArtifactType, subject, claim string, data map[string]any, source string, reliability Reliability, knownBy []string) (*Artifact, error)
	Get(id string) (*Artifact, error)

	// Share makes an actor aware of an artifact. Idempotent.
	Share(artifactID, actor string) error

	// Supersede points the old artifact at its replacement. First write
	// wins; a superseded_by pointer is never cleared or reassigned.
	Supersede(oldID, newID string) error

	// MarkContradiction records that two artifacts conflict. Symmetric.
	MarkContradiction(a, b string) error

	// KnownBy returns the artifacts an actor knows, optionally filtered by
	// subject. Superseded artifacts are excluded unless requested; this is
	// the only channel through which a character learns anything.
	KnownBy(actor, aboutSubject string, includeSuperseded bool) []*Artifact

	// LatestAbout returns the newest non-superseded artifact about a
	// subject, optionally restricted to one known by the given actor.
	LatestAbout(subject, knownBy string) (*Artifact, error)

	All() []*Artifact
	Stats() ArtifactStats
}
