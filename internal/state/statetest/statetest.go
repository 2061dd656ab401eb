// Package statetest provides helper functions to create tests using the game states.
package statetest

import (
	"fmt"
	. "github.com/janpfeifer/fourGo/internal/state"
	"lukechampine.com/frand"
)

// PlaySequence plays the actions in order on board, and returns it for convenience.
func PlaySequence[B Game[B, A], A comparable](board B, actions ...A) B {
	for _, action := range actions {
		board.PlayAction(action)
	}
	return board
}

// Drop4Sequence returns a new Drop4 board after playing the given columns.
func Drop4Sequence(columns ...int) *Drop4 {
	return PlaySequence(NewDrop4(), columns...)
}

// RandomPlayout plays uniformly random legal actions on board until the game finishes or maxMoves
// actions were played (maxMoves <= 0 means no limit). It returns the actions played.
func RandomPlayout[B Game[B, A], A comparable](board B, maxMoves int) []A {
	var played []A
	for !board.GameState().IsFinished() && (maxMoves <= 0 || len(played) < maxMoves) {
		actions := board.LegalActions()
		action := actions[frand.Intn(len(actions))]
		board.PlayAction(action)
		played = append(played, action)
	}
	return played
}

// Push4DrawOrder returns the 64 actions that fill a Push4 board without any 4-in-a-row.
//
// Cell (x, y) is Red iff (x+2y) mod 4 < 2: rows alternate "RRYYRRYY" and "YYRRYYRR", which leaves no line of 4
// in any direction. Rows are filled bottom-up, alternating Red and Yellow cells of the row, so every action
// is pushed from the bottom edge onto a full row.
func Push4DrawOrder() []Pos {
	order := make([]Pos, 0, Push4Size*Push4Size)
	for y := range Push4Size {
		var reds, yellows []Pos
		for x := range Push4Size {
			pos := Pos{X: int8(x), Y: int8(y)}
			if (x+2*y)%4 < 2 {
				reds = append(reds, pos)
			} else {
				yellows = append(yellows, pos)
			}
		}
		for ii := range reds {
			order = append(order, reds[ii], yellows[ii])
		}
	}
	return order
}

// PrintBoard prints the board, for debugging tests.
func PrintBoard(b Board) {
	fmt.Println(b)
}
