// Package players implements the AI players (agents), built on top of a searcher and an evaluator, and a
// factory of players from configuration strings.
package players

import (
	"fmt"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/ai/heuristics"
	"github.com/janpfeifer/fourGo/internal/parameters"
	"github.com/janpfeifer/fourGo/internal/policies"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	"github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
)

// Player is anything that is able to play the game.
type Player[B state.Game[B, A], A comparable] interface {
	fmt.Stringer

	// Play returns the action chosen for the current player of the board, and whether it was an exploratory
	// action, that is, not the best one according to the player.
	//
	// The board is not modified. It panics if there are no legal actions.
	Play(board B) (action A, explored bool)
}

// Player kinds accepted by New.
const (
	MinimaxKind   = "minimax"
	BatchKind     = "batch"
	PolicyKind    = "policy"
	CompositeKind = "composite"
)

var (
	// DefaultPlayerConfig is used if no configuration was given to New. The value may be changed by the
	// UI built.
	DefaultPlayerConfig = "minimax,depth=4"

	// DefaultSimpleDepth is the depth of the first phase of the composite player.
	DefaultSimpleDepth = 6
)

// New creates a new AI player given the configuration string.
//
// Args:
//
//   - config: the kind of player followed by a comma-separated list of optional parameters, e.g.
//     "minimax,depth=6", "batch,depth=6,batch_depth=3", "policy,depth=4,batch_depth=2" or
//     "composite,depth=4,batch_depth=0,simple_depth=6". If empty, DefaultPlayerConfig is used.
//   - evaluator: used at the leaves of the search.
//   - policy: only used by the "policy" player. If nil, policies.Greedy is used.
//
// The parameters are: depth (default negamax.DefaultMaxDepth), batch_depth (default 0, except for "batch"
// where it is required) and simple_depth, for the composite player (default DefaultSimpleDepth).
func New[B state.Game[B, A], A comparable](config string, evaluator ai.Evaluator, policy policies.Policy) (Player[B, A], error) {
	if config == "" {
		config = DefaultPlayerConfig
	}
	params := parameters.NewFromConfigString(config)
	kind := parameters.PopKind(params, config)

	depth, err := parameters.PopParamOr(params, "depth", negamax.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	if depth < 1 {
		return nil, errors.Errorf("invalid depth=%d for player %q", depth, config)
	}
	batchDepth, err := parameters.PopParamOr(params, "batch_depth", 0)
	if err != nil {
		return nil, err
	}
	if batchDepth < 0 || batchDepth > depth {
		return nil, errors.Errorf("invalid batch_depth=%d for player %q, it must be between 0 and depth=%d",
			batchDepth, config, depth)
	}
	searcher := negamax.New[B, A](evaluator).WithMaxDepth(depth).WithBatchDepth(batchDepth)

	var player Player[B, A]
	switch kind {
	case MinimaxKind:
		player = NewMinimax(searcher)
	case BatchKind:
		if batchDepth == 0 {
			return nil, errors.Errorf("player %q requires batch_depth > 0", config)
		}
		player = NewMinimax(searcher)
	case PolicyKind:
		if policy == nil {
			policy = policies.Greedy{}
		}
		player = NewPolicyMinimax(searcher, policy)
	case CompositeKind:
		simpleDepth, err := parameters.PopParamOr(params, "simple_depth", DefaultSimpleDepth)
		if err != nil {
			return nil, err
		}
		if simpleDepth < 1 {
			return nil, errors.Errorf("invalid simple_depth=%d for player %q", simpleDepth, config)
		}
		simple := negamax.New[B, A](heuristics.NewSimple()).WithMaxDepth(simpleDepth)
		player = NewComposite(simple, searcher)
	default:
		return nil, errors.Errorf("unknown AI player %q, valid values are %q, %q, %q or %q",
			kind, MinimaxKind, BatchKind, PolicyKind, CompositeKind)
	}

	// Check that all parameters were processed.
	if err = parameters.CheckAllUsed(params, fmt.Sprintf("AI player %q", kind)); err != nil {
		return nil, err
	}
	return player, nil
}
