package players

import (
	"github.com/janpfeifer/fourGo/internal/state"
	"k8s.io/klog/v2"
)

// Step of a match: the board before the move of its current player, and whether that move was exploratory.
type Step[B any] struct {
	Board    B
	Explored bool
}

// PlayMatch plays a full match, starting from board, between red and yellow.
// The board is not modified.
//
// It returns the trajectory (one step per move) and the final board.
func PlayMatch[B state.Game[B, A], A comparable](board B, red, yellow Player[B, A]) (steps []Step[B], final B) {
	final = board.Clone()
	for !final.GameState().IsFinished() {
		player := red
		if final.CurPlayer() == state.Yellow {
			player = yellow
		}
		action, explored := player.Play(final)
		steps = append(steps, Step[B]{Board: final.Clone(), Explored: explored})
		final.PlayAction(action)
	}
	if klog.V(1).Enabled() {
		klog.Infof("Match %s vs %s: %s after %d moves", red, yellow, final.GameState(), len(steps))
	}
	return steps, final
}

// Scores of a player in a series of matches: [draws, wins, losses].
type Scores [3]int

// Add the outcome of a finished match, from the point of view of perspective.
func (s *Scores) Add(gameState state.GameState, perspective state.Player) {
	switch gameState.Winner() {
	case state.NoPlayer:
		s[0]++
	case perspective:
		s[1]++
	default:
		s[2]++
	}
}

// Total number of matches.
func (s Scores) Total() int { return s[0] + s[1] + s[2] }
