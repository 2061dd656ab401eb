package players

import (
	"github.com/janpfeifer/fourGo/internal/ai/heuristics"
	"github.com/janpfeifer/fourGo/internal/ai/linear"
	"github.com/janpfeifer/fourGo/internal/policies"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	"github.com/janpfeifer/fourGo/internal/state"
	. "github.com/janpfeifer/fourGo/internal/state/statetest"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNew(t *testing.T) {
	e := heuristics.NewSimple()
	for _, config := range []string{"", "minimax,depth=2", "batch,depth=3,batch_depth=2", "policy,depth=2,batch_depth=1",
		"composite,depth=2,batch_depth=0,simple_depth=3"} {
		p, err := New[*state.Drop4, int](config, e, nil)
		require.NoError(t, err, "config=%q", config)
		action, explored := p.Play(state.NewDrop4())
		assert.True(t, action >= 0 && action < state.Drop4Width)
		assert.False(t, explored)
	}
	p, err := New[*state.Push4, state.Pos]("composite,depth=1,simple_depth=1", e, nil)
	require.NoError(t, err)
	assert.Contains(t, p.String(), "Composite")

	for _, config := range []string{"mcts", "minimax,depth=0", "minimax,depth=x", "batch,depth=3", "minimax,depth=2,batch_depth=3",
		"minimax,depth=2,foo=1", "composite,simple_depth=0", "minimax,batch_depth=-1"} {
		_, err := New[*state.Drop4, int](config, e, nil)
		assert.Error(t, err, "config=%q", config)
	}
}

func TestWinningMoves(t *testing.T) {
	e := linear.NewWithWeights(1, 2, 3, -1, -2, -3)
	b := Drop4Sequence(0, 6, 1, 6, 2, 6)
	for _, config := range []string{"minimax,depth=3", "batch,depth=3,batch_depth=2", "policy,depth=2", "composite,depth=1,simple_depth=2"} {
		p, err := New[*state.Drop4, int](config, e, policies.Greedy{})
		require.NoError(t, err)
		action, _ := p.Play(b)
		assert.Equal(t, 3, action, "player %s", p)
	}

	// Red has to block column 3.
	b = Drop4Sequence(6, 0, 6, 1, 5, 2)
	for _, config := range []string{"minimax,depth=2", "policy,depth=2", "composite,depth=1,simple_depth=2"} {
		p, err := New[*state.Drop4, int](config, e, policies.Greedy{})
		require.NoError(t, err)
		action, _ := p.Play(b)
		assert.Equal(t, 3, action, "player %s", p)
	}
}

func TestAllActionsLose(t *testing.T) {
	// Red threatens columns 0 and 4.
	b := Drop4Sequence(1, 1, 2, 2, 3)
	require.Equal(t, state.Yellow, b.CurPlayer())
	e := heuristics.NewSimple()
	searcher := negamax.New[*state.Drop4, int](e).WithMaxDepth(2)
	_, values := searcher.ActionValues(b)
	for _, v := range values {
		require.Less(t, v, -1e9)
	}

	policy := NewPolicyMinimax(searcher, policies.Greedy{})
	for range 10 {
		action, explored := policy.Play(b)
		assert.True(t, b.IsLegal(action))
		assert.False(t, explored)
	}
	composite := NewComposite(searcher, negamax.New[*state.Drop4, int](e).WithMaxDepth(2))
	action, _ := composite.Play(b)
	assert.Equal(t, 0, action)

	finished := Drop4Sequence(1, 1, 2, 2, 3, 3, 4)
	assert.Panics(t, func() { policy.Play(finished) })
	assert.Panics(t, func() { composite.Play(finished) })
	assert.Panics(t, func() { NewMinimax(searcher).Play(finished) })
}

func TestPolicyExploration(t *testing.T) {
	b := Drop4Sequence(3, 3, 2)
	e := linear.NewWithWeights(1, 2, 3, -1, -2, -3)
	searcher := negamax.New[*state.Drop4, int](e).WithMaxDepth(2)
	_, values := searcher.ActionValues(b)
	require.Greater(t, len(lo.Uniq(values)), 2, "values should differ to test exploration")

	greedy := NewPolicyMinimax(searcher, policies.Greedy{})
	for range 20 {
		_, explored := greedy.Play(b)
		require.False(t, explored)
	}

	random, err := policies.NewEpsilonGreedy(1)
	require.NoError(t, err)
	explorer := NewPolicyMinimax(searcher, random)
	var numExplored int
	for range 50 {
		action, explored := explorer.Play(b)
		require.True(t, b.IsLegal(action))
		if explored {
			numExplored++
		}
	}
	assert.Greater(t, numExplored, 10)
}

func TestPlayMatch(t *testing.T) {
	red, err := New[*state.Drop4, int]("minimax,depth=2", linear.NewWithWeights(1, 2, 3, -1, -2, -3), nil)
	require.NoError(t, err)
	yellow, err := New[*state.Drop4, int]("policy,depth=1", heuristics.NewSimple(), nil)
	require.NoError(t, err)
	start := state.NewDrop4()
	steps, final := PlayMatch(start, red, yellow)
	assert.Equal(t, state.NewDrop4(), start)
	require.True(t, final.GameState().IsFinished())
	require.Len(t, steps, final.MoveNumber())
	for ii, step := range steps {
		assert.Equal(t, ii, step.Board.MoveNumber())
		assert.Equal(t, state.Players[ii%2], step.Board.CurPlayer())
	}

	var scores Scores
	scores.Add(final.GameState(), state.Red)
	scores.Add(state.Draw, state.Red)
	scores.Add(state.Won(state.Yellow), state.Red)
	scores.Add(state.Won(state.Red), state.Red)
	assert.Equal(t, 4, scores.Total())
	assert.GreaterOrEqual(t, scores[1], 1)
	assert.GreaterOrEqual(t, scores[2], 1)
}
