package domain

import "fmt"

// EpistemicLayer identifies one of the four truth layers, ordered from
// ground truth up to private character minds.
type EpistemicLayer int

const (
	LayerObjectiveWorld       EpistemicLayer = 1
	LayerInformationArtifacts EpistemicLayer = 2
	LayerBeliefGraph          EpistemicLayer = 3
	LayerCharacterMind        EpistemicLayer = 4
)

func (l EpistemicLayer) String() string {
	switch l {
	case LayerObjectiveWorld:
		return "objective_world"
	case LayerInformationArtifacts:
		return "information_artifacts"
	case LayerBeliefGraph:
		return "belief_graph"
	case LayerCharacterMind:
		return "character_mind"
	default:
		return fmt.Sprintf("layer_%d", int(l))
	}
}

// ConstraintViolationError reports a director attempt to observe or act on
// a layer it has no authority over. It is fatal to the attempted operation
// and must never be silently downgraded.
type ConstraintViolationError struct {
	Layer  EpistemicLayer
	Action string
	Reason string
}

func (e *ConstraintViolationError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("director constraint violated: observing layer %d (%s): %s",
			int(e.Layer), e.Layer, e.Reason)
	}
	return fmt.Sprintf("director constraint violated: acting on layer %d (%s) with %q: %s",
		int(e.Layer), e.Layer, e.Action, e.Reason)
}

// The director's authority: it may observe ground truth and beliefs, and
// act only on the information layer. It is an information architect, not
// a god.
var directorObservableLayers = map[EpistemicLayer]bool{
	LayerObjectiveWorld: true,
	LayerBeliefGraph:    true,
}

const directorActionLayer = LayerInformationArtifacts

// ValidateDirectorObservation checks that the director may observe the
// given layer. Call it before any director-side read.
func ValidateDirectorObservation(layer EpistemicLayer) error {
	if directorObservableLayers[layer] {
		return nil
	}
	return &ConstraintViolationError{
		Layer:  layer,
		Reason: "only the objective world and the belief graph may be observed",
	}
}

// ValidateDirectorAction checks that the director may act on the given
// layer. Call it at the start of every director action method, before any
// mutation.
func ValidateDirectorAction(layer EpistemicLayer, action string) error {
	if layer == directorActionLayer {
		return nil
	}

	var reason string
	switch layer {
	case LayerObjectiveWorld:
		reason = "cannot create objective facts: only the simulation engine may modify the objective world"
	case LayerBeliefGraph:
		reason = "cannot force beliefs: beliefs must form naturally from information artifacts"
	case LayerCharacterMind:
		reason = "cannot override character minds: characters react from their own traits and beliefs"
	default:
		reason = "invalid action layer"
	}

	return &ConstraintViolationError{Layer: layer, Action: action, Reason: reason}
}
