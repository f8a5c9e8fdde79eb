package decider

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
)

// Context is everything a character decision may legitimately see: their
// own state, their surroundings, and the artifacts they know. Ground truth
// about anyone else never appears here.
type Context struct {
	Tick     int64
	Location *domain.Location
	Nearby   []string
	Known    []*domain.Artifact
}

// Provider produces one action for one character per turn. The engine
// treats it as a black box; a language-model implementation plugs in here.
type Provider interface {
	Decide(ctx context.Context, character *domain.Character, dctx Context) (*domain.Action, error)
}

// Provider constants
const (
	ProviderScripted = "scripted"
	ProviderMock     = "mock"
)

// NewProvider creates a decision provider by name.
func NewProvider(provider string) (Provider, error) {
	switch provider {
	case ProviderScripted:
		return NewScriptedProvider(), nil
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown decision provider: %s (valid options: scripted, mock)", provider)
	}
}
