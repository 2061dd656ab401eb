package negamax

import (
	. "github.com/janpfeifer/fourGo/internal/state"
	"math"
)

// batchedNegamax searches board depth plies without pruning: first it collects all the leaves
// (boards with no more plies to go) and evaluates them in one call to Evaluator.Values, and then it
// runs the negamax recursion looking up the leaf values.
//
// Leaves are always depth plies away from board, so they are all evaluated from the same perspective.
func (s *Searcher[B, A]) batchedNegamax(board B, depth int, perspective Player) float64 {
	leafPerspective := perspective
	if depth%2 == 1 {
		leafPerspective = perspective.Opponent()
	}
	var leaves []Board
	seen := make(map[Bitboard]bool)
	s.collectLeaves(board, depth, func(leaf B) {
		uid := leaf.UID()
		if !seen[uid] {
			seen[uid] = true
			leaves = append(leaves, leaf.Clone())
		}
	})
	leafValues := make(map[Bitboard]float64, len(leaves))
	if len(leaves) > 0 {
		values := s.evaluator.Values(leaves, leafPerspective)
		for ii, leaf := range leaves {
			leafValues[leaf.UID()] = values[ii]
		}
		s.stats.Evals += len(leaves)
		s.stats.BatchedLeaves += len(leaves)
	}
	return s.lookupNegamax(board, depth, perspective, leafValues)
}

// collectLeaves calls fn for each board reachable in exactly depth plies. Finished games are skipped.
func (s *Searcher[B, A]) collectLeaves(board B, depth int, fn func(leaf B)) {
	if board.GameState().IsFinished() {
		return
	}
	if depth == 0 {
		fn(board)
		return
	}
	for _, action := range board.LegalActions() {
		board.PlayAction(action)
		s.stats.Nodes++
		s.collectLeaves(board, depth-1, fn)
		board.ReverseLastAction(action)
	}
}

// lookupNegamax is the negamax recursion without pruning, taking the values of the leaves from leafValues.
func (s *Searcher[B, A]) lookupNegamax(board B, depth int, perspective Player, leafValues map[Bitboard]float64) float64 {
	if board.GameState().IsFinished() {
		s.stats.Evals++
		return s.evaluator.Value(board, perspective)
	}
	if depth == 0 {
		return leafValues[board.UID()]
	}
	best := math.Inf(-1)
	for _, action := range board.LegalActions() {
		board.PlayAction(action)
		v := -s.lookupNegamax(board, depth-1, perspective.Opponent(), leafValues)
		board.ReverseLastAction(action)
		best = math.Max(best, v)
	}
	return best
}
