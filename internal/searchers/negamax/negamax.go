// Package negamax implements the negamax variant of minimax search, with fail-soft alpha-beta pruning,
// a transposition table and an optional "batched leaves" mode, that evaluates all the leaves of the last
// plies in one call to the evaluator.
//
// See: wikipedia.org/wiki/Negamax and wikipedia.org/wiki/Alpha-beta_pruning
package negamax

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/searchers"
	. "github.com/janpfeifer/fourGo/internal/state"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"math"
	"time"
)

// DefaultMaxDepth for search.
const DefaultMaxDepth = 4

// Searcher implements the searchers.Searcher interface, for boards of type B and actions of type A.
//
// It is not safe for concurrent use: it owns its transposition table and statistics.
type Searcher[B Game[B, A], A comparable] struct {
	evaluator  ai.Evaluator
	maxDepth   int
	batchDepth int
	table      *transpositionTable
	stats      Stats
}

// Assert that Searcher implements searchers.Searcher.
var (
	_ searchers.Searcher[*Drop4, int] = (*Searcher[*Drop4, int])(nil)
	_ searchers.Searcher[*Push4, Pos] = (*Searcher[*Push4, Pos])(nil)
)

// Stats stores running stats collected during the search: for benchmarking, monitoring and debugging purposes.
type Stats struct {
	// Nodes "played" during search: execution of an action in a board.
	Nodes int

	// Evals is the number of boards passed to the evaluator, including the batched ones.
	Evals int

	// BatchedLeaves is the number of leaves evaluated in batches.
	BatchedLeaves int

	// Cuts is the number of alpha-beta prunes.
	Cuts int

	// TableHits is the number of transposition table entries used to tighten the search window.
	TableHits int
}

// New returns a negamax based searchers.Searcher implementation.
// There are other optional configurations, see methods Searcher.With...
//
// The one obligatory parameter is the evaluator used at the leaves of the search.
func New[B Game[B, A], A comparable](evaluator ai.Evaluator) *Searcher[B, A] {
	return &Searcher[B, A]{
		evaluator: evaluator,
		maxDepth:  DefaultMaxDepth,
		table:     newTranspositionTable(),
	}
}

// WithMaxDepth sets the depth of search: the unit here are plies (ply singular). Each player
// playing counts as one ply. See https://en.wikipedia.org/wiki/Ply_(game_theory).
//
// It must be at least 1. The default is DefaultMaxDepth.
func (s *Searcher[B, A]) WithMaxDepth(maxDepth int) *Searcher[B, A] {
	if maxDepth < 1 {
		exceptions.Panicf("negamax.WithMaxDepth(%d): depth must be at least 1", maxDepth)
	}
	s.maxDepth = maxDepth
	return s
}

// WithBatchDepth sets the number of plies, counting from the leaves, that are searched without pruning, and
// whose leaves are evaluated all at once, with Evaluator.Values.
//
// This trades pruning for throughput, which is profitable when the evaluator is expensive, and works better
// with batches (e.g.: a neural network). The default is 0, which disables it.
func (s *Searcher[B, A]) WithBatchDepth(batchDepth int) *Searcher[B, A] {
	if batchDepth < 0 {
		exceptions.Panicf("negamax.WithBatchDepth(%d): batch depth must be >= 0", batchDepth)
	}
	s.batchDepth = batchDepth
	return s
}

// MaxDepth returns the configured depth of search.
func (s *Searcher[B, A]) MaxDepth() int { return s.maxDepth }

// BatchDepth returns the configured batch depth.
func (s *Searcher[B, A]) BatchDepth() int { return s.batchDepth }

// Evaluator used by the searcher.
func (s *Searcher[B, A]) Evaluator() ai.Evaluator { return s.evaluator }

// Stats returns the statistics accumulated since the Searcher was created.
func (s *Searcher[B, A]) Stats() Stats { return s.stats }

// Value implements searchers.Searcher: it returns the negamax value of board searched to MaxDepth plies.
func (s *Searcher[B, A]) Value(board B, perspective Player) float64 {
	return s.Negamax(board, s.maxDepth, perspective)
}

// Negamax returns the value of the board for perspective, searched to the given depth.
// The board is not modified.
//
// The search is always run from the point of view of the player to move: if perspective is the other
// player, the value is the negation of the mover's value, so Negamax(b, d, p) == -Negamax(b, d, p.Opponent()).
// Leaves (depth 0 or finished games) are valued directly for perspective.
func (s *Searcher[B, A]) Negamax(board B, depth int, perspective Player) float64 {
	if depth < 0 {
		exceptions.Panicf("negamax.Negamax: invalid depth %d", depth)
	}
	s.table.reset()
	if depth > 0 && !board.GameState().IsFinished() && perspective != board.CurPlayer() {
		return -s.negamax(board.Clone(), depth, math.Inf(-1), math.Inf(1), perspective.Opponent())
	}
	return s.negamax(board.Clone(), depth, math.Inf(-1), math.Inf(1), perspective)
}

// ActionValues implements searchers.Searcher.
//
// Each action is searched with a full window, so the values are exact negamax values (not bounds),
// and can be compared to each other.
func (s *Searcher[B, A]) ActionValues(board B) (actions []A, values []float64) {
	start := time.Now()
	statsBefore := s.stats
	actions = board.LegalActions()
	values = make([]float64, len(actions))
	s.table.reset()
	perspective := board.CurPlayer()
	work := board.Clone()
	for ii, action := range actions {
		work.PlayAction(action)
		s.stats.Nodes++
		values[ii] = -s.negamax(work, s.maxDepth-1, math.Inf(-1), math.Inf(1), perspective.Opponent())
		work.ReverseLastAction(action)
	}
	s.logStats(statsBefore, time.Since(start))
	return
}

// Search implements searchers.Searcher. It panics if the board has no legal actions.
func (s *Searcher[B, A]) Search(board B) (action A, value float64) {
	actions, values := s.ActionValues(board)
	if len(actions) == 0 {
		exceptions.Panicf("negamax.Search: no legal actions on board (%s):\n%s", board.GameState(), board)
	}
	best := generics.ArgMaxes(values)
	idx := best[frand.Intn(len(best))]
	return actions[idx], values[idx]
}

// negamax recursion from the point of view of perspective, with depth plies to go.
// board is modified during the search, and restored before returning.
func (s *Searcher[B, A]) negamax(board B, depth int, alpha, beta float64, perspective Player) float64 {
	if depth == 0 || board.GameState().IsFinished() {
		s.stats.Evals++
		return s.evaluator.Value(board, perspective)
	}
	if depth <= s.batchDepth {
		return s.batchedNegamax(board, depth, perspective)
	}

	uid := board.UID()
	if bound, found := s.table.lookup(uid, depth); found && bound < beta {
		s.stats.TableHits++
		beta = bound
		if alpha >= beta {
			return bound
		}
	}

	best := math.Inf(-1)
	for _, action := range board.LegalActions() {
		board.PlayAction(action)
		s.stats.Nodes++
		v := -s.negamax(board, depth-1, -beta, -alpha, perspective.Opponent())
		board.ReverseLastAction(action)
		best = math.Max(best, v)
		alpha = math.Max(alpha, best)
		if alpha >= beta {
			s.stats.Cuts++
			break
		}
	}
	if best < beta {
		// Fail-soft: best is exact or an upper bound of the value.
		s.table.store(uid, depth, best)
	}
	return best
}

// logStats logs the statistics of the last search, if verbosity is at least 2.
func (s *Searcher[B, A]) logStats(before Stats, elapsed time.Duration) {
	if !klog.V(2).Enabled() {
		return
	}
	nodes := s.stats.Nodes - before.Nodes
	evals := s.stats.Evals - before.Evals
	seconds := max(elapsed.Seconds(), 1e-9)
	klog.Infof("Search stats: nodes=%d, evals=%d, batchedLeaves=%d, cuts=%d, tableHits=%d",
		nodes, evals, s.stats.BatchedLeaves-before.BatchedLeaves, s.stats.Cuts-before.Cuts,
		s.stats.TableHits-before.TableHits)
	klog.Infof("  nodes/s=%.1f, evals/s=%.1f", float64(nodes)/seconds, float64(evals)/seconds)
}
