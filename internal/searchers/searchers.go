// Package searchers defines the Searcher interface, implemented by the search algorithms (see sub-packages).
package searchers

import (
	. "github.com/janpfeifer/fourGo/internal/state"
)

// Searcher is the interface that any of the search algorithms must adhere to be valid.
//
// The board given is never modified: searchers work on their own copy of it.
type Searcher[B Game[B, A], A comparable] interface {
	// Search returns the next action to take on the given board, for the current player, along with its
	// value (from the point of view of the current player).
	//
	// Ties are broken at random.
	Search(board B) (action A, value float64)

	// ActionValues returns the legal actions of the board, in the order of Game.LegalActions, and
	// the value of taking each of them, from the point of view of the current player.
	ActionValues(board B) (actions []A, values []float64)

	// Value returns the value of board from the point of view of perspective.
	Value(board B, perspective Player) float64
}
