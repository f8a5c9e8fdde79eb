package decider

import (
	"context"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
)

// MockProvider is a configurable decision provider for testing.
// Set the response fields to control what Decide returns.
type MockProvider struct {
	DecideResponse *domain.Action
	DecideError    error

	// Call tracking for assertions
	DecideCalls []string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		DecideResponse: &domain.Action{
			Type:      domain.ActionStay,
			Reasoning: "mock decision",
			Duration:  1,
			Priority:  5,
		},
	}
}

func (p *MockProvider) Decide(ctx context.Context, character *domain.Character, dctx Context) (*domain.Action, error) {
	p.DecideCalls = append(p.DecideCalls, character.ID)
	if p.DecideError != nil {
		return nil, p.DecideError
	}
	return p.DecideResponse, nil
}

// Reset clears recorded calls and restores the default response.
func (p *MockProvider) Reset() {
	p.DecideResponse = &domain.Action{
		Type:      domain.ActionStay,
		Reasoning: "mock decision",
		Duration:  1,
		Priority:  5,
	}
	p.DecideError = nil
	p.DecideCalls = nil
}
