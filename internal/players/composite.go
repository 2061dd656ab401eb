package players

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	"github.com/janpfeifer/fourGo/internal/state"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"math"
)

// Composite plays in two phases:
//
//  1. A cheap search, usually with the terminal-only evaluator ("simple"), classifies the actions as winning,
//     losing or unclear.
//  2. If there are winning actions, one of them is played. Otherwise, the unclear actions are valued with
//     the full search, and the best one is played. If all actions lose, the first one is played.
type Composite[B state.Game[B, A], A comparable] struct {
	simple, full *negamax.Searcher[B, A]
}

// Assert Composite is a Player.
var _ Player[*state.Push4, state.Pos] = (*Composite[*state.Push4, state.Pos])(nil)

// NewComposite creates a Composite player with the searcher used to classify the actions (simple) and the
// one used to value the unclear actions (full).
func NewComposite[B state.Game[B, A], A comparable](simple, full *negamax.Searcher[B, A]) *Composite[B, A] {
	return &Composite[B, A]{simple: simple, full: full}
}

// String implements fmt.Stringer.
func (c *Composite[B, A]) String() string {
	return fmt.Sprintf("Composite(%s, depth=%d, batch_depth=%d, simple_depth=%d)", c.full.Evaluator(),
		c.full.MaxDepth(), c.full.BatchDepth(), c.simple.MaxDepth())
}

// Play implements Player. It never explores.
func (c *Composite[B, A]) Play(board B) (action A, explored bool) {
	actions, simpleValues := c.simple.ActionValues(board)
	if len(actions) == 0 {
		exceptions.Panicf("Composite.Play: no legal actions on board (%s):\n%s", board.GameState(), board)
	}
	indices := lo.Range(len(actions))
	winning := lo.Filter(indices, func(idx int, _ int) bool { return math.IsInf(simpleValues[idx], 1) })
	if len(winning) > 0 {
		action = actions[winning[frand.Intn(len(winning))]]
		klog.V(2).Infof("Move #%d: AI (%s) playing winning action %v", board.MoveNumber(), c, action)
		return action, false
	}
	unclear := lo.Filter(indices, func(idx int, _ int) bool { return !math.IsInf(simpleValues[idx], 0) })
	if len(unclear) == 0 {
		klog.V(2).Infof("Move #%d: AI (%s) has only losing actions", board.MoveNumber(), c)
		return actions[0], false
	}

	perspective := board.CurPlayer()
	work := board.Clone()
	values := lo.Map(unclear, func(idx int, _ int) float64 {
		work.PlayAction(actions[idx])
		value := -c.full.Negamax(work, c.full.MaxDepth()-1, perspective.Opponent())
		work.ReverseLastAction(actions[idx])
		return value
	})
	best := generics.ArgMaxes(values)
	chosen := best[frand.Intn(len(best))]
	action = actions[unclear[chosen]]
	klog.V(2).Infof("Move #%d: AI (%s) playing %v, value=%.3f (%d unclear actions)",
		board.MoveNumber(), c, action, values[chosen], len(unclear))
	return action, false
}
