package domain

// FactType categorizes what an objective fact describes.
type FactType string

const (
	FactCharacterMoved       FactType = "character_moved"
	FactCharacterStateChange FactType = "character_state_changed"
	FactEventOccurred        FactType = "event_occurred"
)

// Fact is a single indisputable record of what actually happened.
// Facts are immutable once recorded and only the simulation engine
// may create them. Characters never see facts directly; they see
// information artifacts derived from them.
type Fact struct {
	ID        string         `json:"fact_id"`
	Tick      int64          `json:"tick"`
	Type      FactType       `json:"fact_type"`
	Subject   string         `json:"subject"`
	Data      map[string]any `json:"data"`
	Observers []string       `json:"observers"`
}

// Observed reports whether the given actor was present when the fact occurred.
func (f *Fact) Observed(actor string) bool {
	for _, o := range f.Observers {
		if o == actor {
			return true
		}
	}
	return false
}
