package decider

import (
	"context"
	"fmt"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
)

// ScriptedProvider is a deterministic stand-in for the external decision
// collaborator. Each character cycles through a fixed routine: wander to a
// connected location, linger, reflect. Useful for demos and long soak runs
// with no model attached.
type ScriptedProvider struct {
	mu    sync.Mutex
	turns map[string]int
}

// NewScriptedProvider creates a provider with no prior turn state.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{turns: make(map[string]int)}
}

func (p *ScriptedProvider) Decide(ctx context.Context, character *domain.Character, dctx Context) (*domain.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	turn := p.turns[character.ID]
	p.turns[character.ID] = turn + 1
	p.mu.Unlock()

	switch turn % 3 {
	case 0:
		if dctx.Location != nil && len(dctx.Location.ConnectedTo) > 0 {
			dest := dctx.Location.ConnectedTo[turn/3%len(dctx.Location.ConnectedTo)]
			return &domain.Action{
				Type:      domain.ActionTravel,
				Target:    dest,
				Reasoning: fmt.Sprintf("%s sets out for %s", character.Name, dest),
				Duration:  2,
				Priority:  5,
			}, nil
		}
		fallthrough
	case 1:
		return &domain.Action{
			Type:      domain.ActionStay,
			Reasoning: fmt.Sprintf("%s takes in the surroundings", character.Name),
			Duration:  1,
			Priority:  8,
		}, nil
	default:
		return &domain.Action{
			Type:      domain.ActionReflect,
			Reasoning: fmt.Sprintf("%s weighs what they know", character.Name),
			Duration:  1,
			Priority:  9,
		}, nil
	}
}
