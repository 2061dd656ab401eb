// Package learner implements the TD(λ) learner: it trains an evaluator with the matches it plays, either
// against itself or against a fixed opponent, bootstrapping the targets with the negamax search.
//
// It also defines the Record, the saved form of a learner (the "agent file").
package learner

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/players"
	"github.com/janpfeifer/fourGo/internal/policies"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"math"
)

// Config holds the hyperparameters of the learner.
type Config struct {
	// StepSize (α) of the updates.
	StepSize float64

	// Discount (γ) of the targets.
	Discount float64

	// Depth of the search used both to play and to bootstrap the targets.
	Depth int

	// BatchDepth of the search, see negamax.Searcher.WithBatchDepth.
	BatchDepth int

	// Lambda (λ) is the decay of the eligibility trace: 0 reduces to one-step TD.
	Lambda float64
}

// DefaultConfig returns the default hyperparameters of a new learner.
func DefaultConfig() Config {
	return Config{StepSize: 1e-4, Discount: 0.95, Depth: 4, BatchDepth: 0, Lambda: 0.7}
}

// Validate returns an error if the hyperparameters are out of range.
func (c Config) Validate() error {
	switch {
	case c.StepSize <= 0 || math.IsInf(c.StepSize, 0) || math.IsNaN(c.StepSize):
		return errors.Errorf("invalid step_size=%g, it must be > 0", c.StepSize)
	case c.Discount < 0 || c.Discount > 1 || math.IsNaN(c.Discount):
		return errors.Errorf("invalid discount=%g, it must be in [0, 1]", c.Discount)
	case c.Depth < 1:
		return errors.Errorf("invalid depth=%d, it must be >= 1", c.Depth)
	case c.BatchDepth < 0 || c.BatchDepth > c.Depth:
		return errors.Errorf("invalid batch_depth=%d, it must be in [0, depth=%d]", c.BatchDepth, c.Depth)
	case c.Lambda < 0 || c.Lambda > 1 || math.IsNaN(c.Lambda):
		return errors.Errorf("invalid lambda=%g, it must be in [0, 1]", c.Lambda)
	}
	return nil
}

// Learner trains an evaluator by TD(λ), for boards of type B and actions of type A.
type Learner[B Game[B, A], A comparable] struct {
	Config

	// ID of the lineage of the learner, see Record.ID.
	ID string

	// Game name, either Drop4Name or Push4Name.
	Game string

	Evaluator ai.Evaluator
	Policy    policies.Policy

	// Scores of the games played against other agents: 1 for a win, 0 for a draw and -1 for a loss.
	Scores []float64

	newBoard func() B
}

// New creates a new Learner, with a new ID. newBoard must return an empty board of the game.
func New[B Game[B, A], A comparable](game string, newBoard func() B, evaluator ai.Evaluator,
	policy policies.Policy, config Config) (*Learner[B, A], error) {
	if err := ai.CheckGame(game); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if name := newBoard().Name(); name != game {
		return nil, errors.Errorf("learner for game %q created with boards of %q", game, name)
	}
	return &Learner[B, A]{
		Config:    config,
		ID:        uuid.NewString(),
		Game:      game,
		Evaluator: evaluator,
		Policy:    policy,
		newBoard:  newBoard,
	}, nil
}

// FromRecord restores a Learner saved with Learner.Record. newBoard must return an empty board of the game.
func FromRecord[B Game[B, A], A comparable](r *Record, newBoard func() B) (*Learner[B, A], error) {
	evaluator, err := ai.Decode(r.Evaluator.Variant, r.Game, r.Evaluator.Payload)
	if err != nil {
		return nil, err
	}
	policy, err := policies.Decode(r.Policy.Variant, r.Policy.Payload)
	if err != nil {
		return nil, err
	}
	config := Config{StepSize: r.StepSize, Discount: r.Discount, Depth: r.Depth, BatchDepth: r.BatchDepth, Lambda: r.Lambda}
	l, err := New[B, A](r.Game, newBoard, evaluator, policy, config)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid agent %s", r.ID)
	}
	l.ID = r.ID
	l.Scores = r.Scores
	return l, nil
}

// Record returns the saved form of the learner.
func (l *Learner[B, A]) Record() (*Record, error) {
	evaluatorPayload, err := l.Evaluator.MarshalBinary()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to serialize evaluator %s", l.Evaluator)
	}
	policyPayload, err := l.Policy.MarshalBinary()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to serialize policy %s", l.Policy)
	}
	return &Record{
		ID:   l.ID,
		Game: l.Game,
		Evaluator: EvaluatorRecord{
			Variant:  l.Evaluator.Variant(),
			Payload:  evaluatorPayload,
			Checksum: Checksum(evaluatorPayload),
		},
		Policy: PolicyRecord{
			Variant: l.Policy.Variant(),
			Payload: policyPayload,
		},
		StepSize:   l.StepSize,
		Discount:   l.Discount,
		Depth:      l.Depth,
		BatchDepth: l.BatchDepth,
		Lambda:     l.Lambda,
		Scores:     l.Scores,
	}, nil
}

// String implements fmt.Stringer.
func (l *Learner[B, A]) String() string {
	return fmt.Sprintf("Learner(%s, %s, %s, α=%g, γ=%g, λ=%g, depth=%d, batch_depth=%d)", l.Game, l.Evaluator,
		l.Policy, l.StepSize, l.Discount, l.Lambda, l.Depth, l.BatchDepth)
}

// NewBoard returns an empty board of the learner's game.
func (l *Learner[B, A]) NewBoard() B { return l.newBoard() }

// searcher returns a new searcher with the learner evaluator and configuration.
func (l *Learner[B, A]) searcher() *negamax.Searcher[B, A] {
	return negamax.New[B, A](l.Evaluator).WithMaxDepth(l.Depth).WithBatchDepth(l.BatchDepth)
}

// Player returns a player that explores with the learner's policy: it is used to generate the training matches.
func (l *Learner[B, A]) Player() players.Player[B, A] {
	return players.NewPolicyMinimax(l.searcher(), l.Policy)
}

// GreedyPlayer returns a player that doesn't explore.
func (l *Learner[B, A]) GreedyPlayer() players.Player[B, A] {
	return players.NewMinimax(l.searcher())
}

// SelfPlay plays one match of the learner against itself, and updates the evaluator from the point of view
// of both players. It returns the final board.
func (l *Learner[B, A]) SelfPlay() B {
	player := l.Player()
	steps, final := players.PlayMatch(l.newBoard(), player, player)
	for _, perspective := range Players {
		l.Update(steps, final, perspective)
	}
	return final
}

// PlayAgainst plays one match against opponent, with sides chosen at random, and updates the evaluator
// only from the point of view of the learner. The outcome is appended to Scores.
//
// It returns the final board and the side played by the learner.
func (l *Learner[B, A]) PlayAgainst(opponent players.Player[B, A]) (final B, side Player) {
	player := l.Player()
	var steps []players.Step[B]
	side = Players[frand.Intn(NumPlayers)]
	if side == Red {
		steps, final = players.PlayMatch(l.newBoard(), player, opponent)
	} else {
		steps, final = players.PlayMatch(l.newBoard(), opponent, player)
	}
	l.Update(steps, final, side)
	l.Scores = append(l.Scores, final.GameState().Reward(side))
	return final, side
}

// Update the evaluator with the trajectory of a match, from the point of view of perspective.
//
// Each step holds the board before its move, and Explored refers to that move (see players.Step), so the
// boards where perspective is to move are the decision boards of perspective:
//
//   - Only the boards where perspective is to move are used, closed by the final board.
//   - The target of each board is the negamax value of the next one, with ±Inf (forced outcomes) mapped to ±1,
//     except for the last one, whose target is the final reward. Finite targets are used as they are.
//   - The eligibility trace is reset at exploratory moves, and otherwise decays by λ.
//   - Every symmetry of the board is used for the update.
func (l *Learner[B, A]) Update(steps []players.Step[B], final B, perspective Player) {
	if !final.GameState().IsFinished() {
		exceptions.Panicf("learner.Update: final board is not finished:\n%s", final)
	}
	var boards []B
	var explored []bool
	for _, step := range steps {
		if step.Board.CurPlayer() == perspective {
			boards = append(boards, step.Board)
			explored = append(explored, step.Explored)
		}
	}
	boards = append(boards, final)
	explored = append(explored, false)

	searcher := l.searcher()
	trace := make([]float64, len(l.Evaluator.Params()))
	delta := make([]float64, len(trace))
	var sumError float64
	for ii := 0; ii < len(boards)-1; ii++ {
		var target float64
		if ii == len(boards)-2 {
			target = final.GameState().Reward(perspective)
		} else {
			target = searcher.Negamax(boards[ii+1], l.Depth, perspective)
			if math.IsInf(target, 0) {
				target = math.Copysign(1, target)
			}
		}
		if explored[ii] {
			clear(trace)
		}
		symmetries := boards[ii].Symmetries()
		for _, s := range symmetries {
			floats.Scale(l.Lambda, trace)
			floats.Add(trace, l.Evaluator.Gradient(s, perspective))
		}
		for _, s := range symmetries {
			current := l.Evaluator.Value(s, perspective)
			tdError := l.Discount*target - current
			sumError += math.Abs(tdError)
			floats.ScaleTo(delta, tdError*l.StepSize, trace)
			l.Evaluator.ApplyUpdate(delta)
		}
	}
	if klog.V(1).Enabled() && len(boards) > 1 {
		klog.Infof("Update for %s: %d boards, mean |TD error|=%.4f", perspective, len(boards)-1,
			sumError/float64(len(boards)-1)/float64(len(boards[0].Symmetries())))
	}
}
