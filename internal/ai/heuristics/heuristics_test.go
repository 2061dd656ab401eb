package heuristics

import (
	"github.com/janpfeifer/fourGo/internal/ai"
	. "github.com/janpfeifer/fourGo/internal/state"
	. "github.com/janpfeifer/fourGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestTerminalValues(t *testing.T) {
	won := Drop4Sequence(1, 2, 2, 3, 2, 4, 2, 5)
	draw := PlaySequence(NewPush4(), Push4DrawOrder()...)
	inProgress := Drop4Sequence(3, 3)
	for _, e := range []ai.Evaluator{NewSimple(), NewLines()} {
		assert.Equal(t, math.Inf(1), e.Value(won, Yellow), "%s", e)
		assert.Equal(t, math.Inf(-1), e.Value(won, Red), "%s", e)
		assert.Equal(t, 0.0, e.Value(draw, Red), "%s", e)
		assert.False(t, math.IsInf(e.Value(inProgress, Red), 0), "%s", e)
	}
	assert.Equal(t, 0.0, NewSimple().Value(inProgress, Red))
	assert.Equal(t, []float64{math.Inf(-1), 0}, NewSimple().Values([]Board{won, inProgress}, Red))
}

func TestLines(t *testing.T) {
	e := NewLines()
	b := Drop4Sequence(0)
	assert.Equal(t, 10.0, e.Value(b, Red))
	assert.Equal(t, []float64{0, 0}, e.Params())
	assert.Equal(t, []float64{0, 0}, e.Gradient(b, Red))

	e.ApplyUpdate([]float64{1, 2})
	payload, err := e.MarshalBinary()
	require.NoError(t, err)
	e2, err := ai.Decode(LinesVariant, Drop4Name, payload)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, e2.Params())
}

func TestSimpleParams(t *testing.T) {
	e, err := ai.New(SimpleVariant, Push4Name)
	require.NoError(t, err)
	assert.Empty(t, e.Params())
	assert.Empty(t, e.Gradient(NewPush4(), Red))
	require.NotPanics(t, func() { e.ApplyUpdate(nil) })
	require.Panics(t, func() { e.ApplyUpdate([]float64{1}) })

	payload, err := e.MarshalBinary()
	require.NoError(t, err)
	_, err = ai.Decode(SimpleVariant, Push4Name, payload)
	require.NoError(t, err)
	_, err = ai.Decode(SimpleVariant, "chess", payload)
	require.Error(t, err)
}
