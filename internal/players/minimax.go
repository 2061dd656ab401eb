package players

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/policies"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	"github.com/janpfeifer/fourGo/internal/state"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"math"
)

// Minimax plays the best action according to the negamax search, with ties broken at random.
//
// With a batch depth configured in the searcher, it is the "batch" player.
type Minimax[B state.Game[B, A], A comparable] struct {
	searcher *negamax.Searcher[B, A]
}

// Assert Minimax is a Player.
var _ Player[*state.Drop4, int] = (*Minimax[*state.Drop4, int])(nil)

// NewMinimax creates a Minimax player with the given searcher.
func NewMinimax[B state.Game[B, A], A comparable](searcher *negamax.Searcher[B, A]) *Minimax[B, A] {
	return &Minimax[B, A]{searcher: searcher}
}

// String implements fmt.Stringer.
func (m *Minimax[B, A]) String() string {
	if m.searcher.BatchDepth() > 0 {
		return fmt.Sprintf("Batch(%s, depth=%d, batch_depth=%d)", m.searcher.Evaluator(),
			m.searcher.MaxDepth(), m.searcher.BatchDepth())
	}
	return fmt.Sprintf("Minimax(%s, depth=%d)", m.searcher.Evaluator(), m.searcher.MaxDepth())
}

// Play implements Player. It never explores.
func (m *Minimax[B, A]) Play(board B) (action A, explored bool) {
	action, value := m.searcher.Search(board)
	if klog.V(2).Enabled() {
		klog.Infof("Move #%d: AI (%s) playing %v, value=%.3f", board.MoveNumber(), m, action, value)
	}
	return action, false
}

// PolicyMinimax values every action with the negamax search, and:
//
//   - If there are winning actions, it plays one of them at random.
//   - Otherwise, if there are actions whose outcome is uncertain, the policy chooses one of them given their values.
//     The action is "explored" if its value is smaller than the best value.
//   - Otherwise all actions lose, and it plays one at random.
type PolicyMinimax[B state.Game[B, A], A comparable] struct {
	searcher *negamax.Searcher[B, A]
	policy   policies.Policy
}

// Assert PolicyMinimax is a Player.
var _ Player[*state.Push4, state.Pos] = (*PolicyMinimax[*state.Push4, state.Pos])(nil)

// NewPolicyMinimax creates a PolicyMinimax player with the given searcher and policy.
func NewPolicyMinimax[B state.Game[B, A], A comparable](searcher *negamax.Searcher[B, A], policy policies.Policy) *PolicyMinimax[B, A] {
	return &PolicyMinimax[B, A]{searcher: searcher, policy: policy}
}

// String implements fmt.Stringer.
func (p *PolicyMinimax[B, A]) String() string {
	return fmt.Sprintf("PolicyMinimax(%s, %s, depth=%d, batch_depth=%d)", p.searcher.Evaluator(), p.policy,
		p.searcher.MaxDepth(), p.searcher.BatchDepth())
}

// Play implements Player.
func (p *PolicyMinimax[B, A]) Play(board B) (action A, explored bool) {
	actions, values := p.searcher.ActionValues(board)
	if len(actions) == 0 {
		exceptions.Panicf("PolicyMinimax.Play: no legal actions on board (%s):\n%s", board.GameState(), board)
	}
	indices := lo.Range(len(actions))
	winning := lo.Filter(indices, func(idx int, _ int) bool { return math.IsInf(values[idx], 1) })
	if len(winning) > 0 {
		return actions[winning[frand.Intn(len(winning))]], false
	}
	uncertain := lo.Filter(indices, func(idx int, _ int) bool { return !math.IsInf(values[idx], 0) })
	if len(uncertain) == 0 {
		// All actions lose.
		return actions[frand.Intn(len(actions))], false
	}
	uncertainValues := lo.Map(uncertain, func(idx int, _ int) float64 { return values[idx] })
	chosen := p.policy.Choose(uncertainValues)
	explored = uncertainValues[chosen] < lo.Max(uncertainValues)
	action = actions[uncertain[chosen]]
	if klog.V(2).Enabled() {
		klog.Infof("Move #%d: AI (%s) playing %v, value=%.3f, explored=%v",
			board.MoveNumber(), p, action, uncertainValues[chosen], explored)
	}
	return action, explored
}
