package learner

import (
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/ai/heuristics"
	"github.com/janpfeifer/fourGo/internal/ai/linear"
	"github.com/janpfeifer/fourGo/internal/players"
	"github.com/janpfeifer/fourGo/internal/policies"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newDrop4Learner(t *testing.T, config Config) *Learner[*Drop4, int] {
	l, err := New[*Drop4, int](Drop4Name, NewDrop4, linear.NewWithWeights(0, 0, 0, 0, 0, 0), policies.Greedy{}, config)
	require.NoError(t, err)
	return l
}

// redWinsTrajectory returns the steps of the match 0,6,1,6,2,6,3, won by Red.
func redWinsTrajectory() (steps []players.Step[*Drop4], final *Drop4) {
	final = NewDrop4()
	for _, action := range []int{0, 6, 1, 6, 2, 6, 3} {
		steps = append(steps, players.Step[*Drop4]{Board: final.Clone()})
		final.PlayAction(action)
	}
	return
}

func TestConfig(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	for _, c := range []Config{
		{StepSize: 0, Discount: 0.9, Depth: 1, Lambda: 0.5},
		{StepSize: 0.1, Discount: 1.1, Depth: 1, Lambda: 0.5},
		{StepSize: 0.1, Discount: 0.9, Depth: 0, Lambda: 0.5},
		{StepSize: 0.1, Discount: 0.9, Depth: 2, BatchDepth: 3, Lambda: 0.5},
		{StepSize: 0.1, Discount: 0.9, Depth: 2, Lambda: -0.5},
	} {
		assert.Error(t, c.Validate(), "%+v", c)
	}
	_, err := New[*Drop4, int](Push4Name, NewDrop4, heuristics.NewSimple(), policies.Greedy{}, DefaultConfig())
	assert.Error(t, err)
	_, err = New[*Drop4, int]("tictactoe", NewDrop4, heuristics.NewSimple(), policies.Greedy{}, DefaultConfig())
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	config := Config{StepSize: 1e-3, Discount: 1, Depth: 1, Lambda: 0}
	steps, final := redWinsTrajectory()
	require.Equal(t, Won(Red), final.GameState())

	l := newDrop4Learner(t, config)
	l.Update(steps, final, Red)
	// Positions before Red's last two moves are learned as good for Red.
	assert.Greater(t, l.Evaluator.Value(steps[4].Board, Red), 0.0)
	assert.Greater(t, l.Evaluator.Value(steps[6].Board, Red), 0.0)
	for _, w := range l.Evaluator.Params()[:3] {
		assert.GreaterOrEqual(t, w, 0.0)
	}

	l = newDrop4Learner(t, config)
	l.Update(steps, final, Yellow)
	// Yellow's last position is learned as lost.
	assert.Less(t, l.Evaluator.Value(steps[5].Board, Yellow), 0.0)

	// Nothing to learn from a trajectory without decisions of perspective.
	l = newDrop4Learner(t, config)
	l.Update(nil, final, Yellow)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, l.Evaluator.Params())

	assert.Panics(t, func() { l.Update(steps, NewDrop4(), Red) })
}

func TestUpdateResetsTraceOnExploration(t *testing.T) {
	config := Config{StepSize: 1e-3, Discount: 1, Depth: 1, Lambda: 1}
	steps, final := redWinsTrajectory()

	// Only the last Red board is updated (target 1). With λ=1 and no exploration, the trace also carries the
	// gradient of the earlier Red boards.
	noExploration := newDrop4Learner(t, config)
	noExploration.Update(steps, final, Red)

	steps[6].Explored = true
	exploration := newDrop4Learner(t, config)
	exploration.Update(steps, final, Red)
	assert.NotEqual(t, noExploration.Evaluator.Params(), exploration.Evaluator.Params())
}

// cornerEvaluator is a linear model on the features [1, move number, red piece at (0,0)], valued positive
// for Red and negative for Yellow.
type cornerEvaluator struct {
	weights []float64
}

var _ ai.Evaluator = (*cornerEvaluator)(nil)

func (e *cornerEvaluator) String() string  { return "Corner" }
func (e *cornerEvaluator) Variant() string { return "corner" }

func (e *cornerEvaluator) features(board Board, perspective Player) []float64 {
	sign := 1.0
	if perspective == Yellow {
		sign = -1
	}
	var corner float64
	if board.Cell(0, 0) == Red {
		corner = 1
	}
	return []float64{sign, sign * float64(board.MoveNumber()), sign * corner}
}

func (e *cornerEvaluator) Value(board Board, perspective Player) float64 {
	if isEnd, value := ai.TerminalValue(board, perspective); isEnd {
		return value
	}
	var value float64
	for ii, f := range e.features(board, perspective) {
		value += e.weights[ii] * f
	}
	return value
}

func (e *cornerEvaluator) Values(boards []Board, perspective Player) []float64 {
	return ai.BatchValues(e, boards, perspective)
}

func (e *cornerEvaluator) Gradient(board Board, perspective Player) []float64 {
	return e.features(board, perspective)
}

func (e *cornerEvaluator) ApplyUpdate(delta []float64) {
	for ii, d := range delta {
		e.weights[ii] += d
	}
}

func (e *cornerEvaluator) Params() []float64 { return append([]float64(nil), e.weights...) }

func (e *cornerEvaluator) MarshalBinary() ([]byte, error) { return nil, nil }

func TestUpdateExact(t *testing.T) {
	// Red's decision boards are at moves 2, 4 and 6, and the move from board #4 is exploratory:
	//   - Board #2: the target is the depth 1 search of board #4, 1*w0 + 5*w1 + 1*w2 = 5.5, a finite value above 1.
	//   - Board #4: Red wins next move, the +Inf target is mapped to 1. The trace is reset first.
	//   - Board #6: the target is the final reward, 1.
	// Each board is augmented with its mirror, whose red corner feature is 0.
	steps, final := redWinsTrajectory()
	steps = steps[2:]
	steps[2].Explored = true
	require.Equal(t, 4, steps[2].Board.MoveNumber())
	require.Equal(t, Red, steps[0].Board.CurPlayer())

	e := &cornerEvaluator{weights: []float64{0, 1, 0.5}}
	l, err := New[*Drop4, int](Drop4Name, NewDrop4, e, policies.Greedy{},
		Config{StepSize: 0.01, Discount: 0.9, Depth: 1, Lambda: 0.5})
	require.NoError(t, err)
	target := l.searcher().Negamax(steps[2].Board, 1, Red)
	require.InDelta(t, 5.5, target, 1e-12)
	require.True(t, math.IsInf(l.searcher().Negamax(steps[4].Board, 1, Red), 1))

	l.Update(steps, final, Red)
	assert.InDeltaSlice(t, []float64{-0.1186331914294336, 0.22270259499517187, 0.4604556028568555},
		e.Params(), 1e-9)
}

func TestSelfPlayAndPlayAgainst(t *testing.T) {
	config := Config{StepSize: 1e-3, Discount: 0.95, Depth: 1, Lambda: 0.7}
	l := newDrop4Learner(t, config)
	epsilon, err := policies.NewEpsilonGreedy(0.3)
	require.NoError(t, err)
	l.Policy = epsilon
	before := l.Evaluator.Params()
	final := l.SelfPlay()
	require.True(t, final.GameState().IsFinished())
	if final.GameState() != Draw {
		assert.NotEqual(t, before, l.Evaluator.Params())
	}

	opponent, err := players.New[*Drop4, int]("minimax,depth=1", heuristics.NewSimple(), nil)
	require.NoError(t, err)
	for range 3 {
		final, side := l.PlayAgainst(opponent)
		require.True(t, final.GameState().IsFinished())
		assert.Equal(t, final.GameState().Reward(side), l.Scores[len(l.Scores)-1])
	}
	assert.Len(t, l.Scores, 3)
	assert.Contains(t, l.String(), "drop4")
}

func TestRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	l, err := New[*Push4, Pos](Push4Name, NewPush4, linear.NewWithWeights(1, -2, 3.5, 0, 0.25, -1e-3),
		&policies.EpsilonGreedy{Epsilon: 0.2}, Config{StepSize: 0.01, Discount: 0.9, Depth: 3, BatchDepth: 1, Lambda: 0.5})
	require.NoError(t, err)
	l.Scores = []float64{1, 0, -1}
	r, err := l.Record()
	require.NoError(t, err)
	require.NoError(t, r.Save(path))

	loaded, err := LoadRecord(path, "")
	require.NoError(t, err)
	assert.Equal(t, r, loaded)
	restored, err := FromRecord[*Push4, Pos](loaded, NewPush4)
	require.NoError(t, err)
	assert.Equal(t, l.ID, restored.ID)
	assert.Equal(t, l.Config, restored.Config)
	assert.Equal(t, l.Scores, restored.Scores)
	assert.Equal(t, l.Evaluator.Params(), restored.Evaluator.Params())
	assert.Equal(t, l.Policy, restored.Policy)

	// Saving again keeps a backup.
	l.Scores = append(l.Scores, 1)
	r2, err := l.Record()
	require.NoError(t, err)
	require.NoError(t, r2.Save(path))
	backup, err := LoadRecord(path+"~", "")
	require.NoError(t, err)
	assert.Equal(t, r.Scores, backup.Scores)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// Variant check.
	_, err = LoadRecord(path, linear.Variant)
	require.NoError(t, err)
	_, err = LoadRecord(path, "cnn")
	require.Error(t, err)

	// Wrong board type for the game.
	_, err = FromRecord[*Drop4, int](loaded, NewDrop4)
	require.Error(t, err)

	// Corrupted payload.
	r2.Evaluator.Payload = append(r2.Evaluator.Payload, ' ')
	corruptedPath := filepath.Join(dir, "corrupted.yaml")
	require.NoError(t, r2.Save(corruptedPath))
	_, err = LoadRecord(corruptedPath, "")
	require.Error(t, err)

	_, err = LoadRecord(filepath.Join(dir, "missing.yaml"), "")
	require.Error(t, err)
}
