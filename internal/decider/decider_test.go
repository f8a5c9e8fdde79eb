package decider

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderScripted)
	require.NoError(t, err)
	assert.IsType(t, &ScriptedProvider{}, p)

	p, err = NewProvider(ProviderMock)
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)

	_, err = NewProvider("oracle")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown decision provider")
}

func TestScriptedProviderCyclesRoutine(t *testing.T) {
	p := NewScriptedProvider()
	c := &domain.Character{ID: "char_ana", Name: "Ana"}
	dctx := Context{
		Tick: 1,
		Location: &domain.Location{
			ID: "loc_1", ConnectedTo: []string{"loc_2", "loc_3"},
		},
	}

	first, err := p.Decide(context.Background(), c, dctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTravel, first.Type)
	assert.Equal(t, "loc_2", first.Target)

	second, err := p.Decide(context.Background(), c, dctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStay, second.Type)

	third, err := p.Decide(context.Background(), c, dctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionReflect, third.Type)

	// Turn state is per character.
	other := &domain.Character{ID: "char_ben", Name: "Ben"}
	fresh, err := p.Decide(context.Background(), other, dctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTravel, fresh.Type)
}

func TestScriptedProviderStaysWithoutConnections(t *testing.T) {
	p := NewScriptedProvider()
	c := &domain.Character{ID: "char_ana", Name: "Ana"}

	action, err := p.Decide(context.Background(), c, Context{
		Location: &domain.Location{ID: "loc_island"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStay, action.Type)
}

func TestScriptedProviderHonorsContext(t *testing.T) {
	p := NewScriptedProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Decide(ctx, &domain.Character{ID: "char_ana"}, Context{})
	assert.Error(t, err)
}

func TestMockProviderTracksCalls(t *testing.T) {
	p := NewMockProvider()

	a, err := p.Decide(context.Background(), &domain.Character{ID: "char_ana"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStay, a.Type)

	_, err = p.Decide(context.Background(), &domain.Character{ID: "char_ben"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"char_ana", "char_ben"}, p.DecideCalls)

	p.Reset()
	assert.Empty(t, p.DecideCalls)
}
