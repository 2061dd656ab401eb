// Package state holds the game models: a 128-bit packed board shared by the two supported games,
// Drop4 (7 wide by 6 high, pieces fall to the lowest empty cell of a column) and Push4 (8x8, pieces
// are pushed inward from one of the four edges).
//
// Cells take 2 bits each: 0 for empty, 1 for Red and 2 for Yellow. Cell (x, y) sits at bit offset
// 2*(x + y*width), with y=0 being the bottom row.
package state

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Player is both the identity of a player and the 2-bit code of a cell: NoPlayer (0) is an empty cell.
type Player uint8

const (
	NoPlayer Player = iota
	Red
	Yellow
)

// NumPlayers is fixed to 2.
const NumPlayers = 2

// Players enumerates the two players, starting with the one that moves first.
var Players = [NumPlayers]Player{Red, Yellow}

// Opponent returns the other player. It is only defined for Red and Yellow.
func (p Player) Opponent() Player {
	return 3 - p
}

// String implements fmt.Stringer.
func (p Player) String() string {
	switch p {
	case NoPlayer:
		return "None"
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	}
	return fmt.Sprintf("Player(%d)", uint8(p))
}

// ParsePlayer converts a name ("red", "yellow", case-insensitive) or a cell code ("1", "2") to a Player.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "1":
		return Red, nil
	case "yellow", "2":
		return Yellow, nil
	}
	return NoPlayer, errors.Errorf("unknown player %q, valid values are \"red\" or \"yellow\"", s)
}

// GameState of a board: InProgress, Draw or won by one of the players.
type GameState uint8

const (
	InProgress GameState = iota
	Draw
	RedWon
	YellowWon
)

// Won returns the GameState of a game won by player p.
func Won(p Player) GameState {
	return GameState(1 + p)
}

// IsFinished returns whether the game is over, either by a win or a draw.
func (s GameState) IsFinished() bool {
	return s != InProgress
}

// Winner returns the winning player, or NoPlayer if the game is not won (in progress or a draw).
func (s GameState) Winner() Player {
	if s < RedWon {
		return NoPlayer
	}
	return Player(s - 1)
}

// Reward for perspective of a finished game: +1 for a win, -1 for a loss and 0 for a draw.
// It is also 0 for a game still in progress.
func (s GameState) Reward(perspective Player) float64 {
	switch s.Winner() {
	case NoPlayer:
		return 0
	case perspective:
		return 1
	default:
		return -1
	}
}

// String implements fmt.Stringer.
func (s GameState) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case Draw:
		return "Draw"
	case RedWon, YellowWon:
		return fmt.Sprintf("Won(%s)", s.Winner())
	}
	return fmt.Sprintf("GameState(%d)", uint8(s))
}

// Pos is a cell coordinate on the board. It is also the action type of Push4.
type Pos struct {
	X, Y int8
}

// String implements fmt.Stringer, using the same "x,y" format accepted as Push4 input.
func (pos Pos) String() string {
	return fmt.Sprintf("%d,%d", pos.X, pos.Y)
}

// Names of the games, used in agent files and flags.
const (
	Drop4Name = "drop4"
	Push4Name = "push4"
)

// Board is the read-only view of a position shared by both games. Evaluators and the UI only need this.
type Board interface {
	fmt.Stringer

	// Name of the game: Drop4Name or Push4Name.
	Name() string

	// Width and Height of the board.
	Width() int
	Height() int

	// Cell returns the owner of the cell (x, y), or NoPlayer if it is empty.
	Cell(x, y int) Player

	// CurPlayer is the player to move.
	CurPlayer() Player

	// GameState of the board.
	GameState() GameState

	// MoveNumber is the number of pieces played so far.
	MoveNumber() int

	// UID is the raw bitboard, used as a transposition key. Symmetric boards have different UIDs.
	UID() Bitboard

	// Vectorize returns Height*Width values in row-major order (bottom row first): +1 for the cells owned by
	// perspective, -1 for the opponent's cells and 0 for the empty ones.
	Vectorize(perspective Player) []float64
}

// Game is the full contract of a game board of type B with actions of type A.
// Boards are mutated in place by PlayAction and ReverseLastAction, and cheaply cloned.
type Game[B any, A comparable] interface {
	Board

	// Clone returns an independent copy of the board.
	Clone() B

	// PlayAction places the piece of the current player, updates the game state and flips the current player.
	// It panics if the game is finished or if the action is not legal.
	PlayAction(action A)

	// ReverseLastAction undoes action, which must be the last action played.
	// It panics if the board doesn't hold the piece of the last mover where action placed it.
	ReverseLastAction(action A)

	// LegalActions returns the ordered legal actions, without duplicates. It is empty if the game is finished.
	LegalActions() []A

	// IsLegal returns whether action can be played on the board.
	IsLegal(action A) bool

	// Symmetries returns the boards equivalent to this one, the identity first.
	Symmetries() []B

	// ActionPos returns the cell where action would place the piece.
	ActionPos(action A) Pos

	// ParseAction parses the textual representation of an action, and checks that it is within range.
	// It doesn't check whether it is legal.
	ParseAction(text string) (A, error)
}

// directions used to detect 4-in-a-row: horizontal, vertical and the two diagonals.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// playerWon returns whether there is a line of 4 or more pieces, of the same owner as the one
// at (x, y), going through (x, y).
func playerWon(bits Bitboard, width, height, x, y int) bool {
	code := bits.Get(cellOffset(width, x, y))
	if code == 0 {
		return false
	}
	for _, dir := range directions {
		count := 1
		for _, sign := range [2]int{1, -1} {
			for ii := 1; ii < 4; ii++ {
				cx, cy := x+sign*ii*dir[0], y+sign*ii*dir[1]
				if cx < 0 || cy < 0 || cx >= width || cy >= height {
					break
				}
				if bits.Get(cellOffset(width, cx, cy)) != code {
					break
				}
				count++
			}
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

// anyWinner scans every occupied cell for a line of 4, and returns the owner of the first one found.
func anyWinner(bits Bitboard, width, height int) Player {
	for y := range height {
		for x := range width {
			if playerWon(bits, width, height, x, y) {
				return Player(bits.Get(cellOffset(width, x, y)))
			}
		}
	}
	return NoPlayer
}

// vectorize implements Board.Vectorize for a bitboard of the given width and height.
func vectorize(bits Bitboard, width, height int, perspective Player) []float64 {
	values := make([]float64, width*height)
	opponent := perspective.Opponent()
	for ii := range values {
		switch Player(bits.Get(2 * ii)) {
		case perspective:
			values[ii] = 1
		case opponent:
			values[ii] = -1
		}
	}
	return values
}

// boardString renders the board as text, top row first: "R" for Red, "Y" for Yellow and "." for empty.
func boardString(b Board) string {
	var sb strings.Builder
	for y := b.Height() - 1; y >= 0; y-- {
		for x := range b.Width() {
			if x > 0 {
				sb.WriteByte(' ')
			}
			switch b.Cell(x, y) {
			case Red:
				sb.WriteByte('R')
			case Yellow:
				sb.WriteByte('Y')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	_, _ = fmt.Fprintf(&sb, "%s to play, %s\n", b.CurPlayer(), b.GameState())
	return sb.String()
}

// fromCells converts a flat list of cell codes, indexed column-major (cell i is at x=i/height, y=i%height),
// to a bitboard.
func fromCells(cells []Player, width, height int) (bits Bitboard, err error) {
	if len(cells) != width*height {
		return bits, errors.Errorf("board must have %d cells (%dx%d), got %d", width*height, width, height, len(cells))
	}
	for ii, cell := range cells {
		if cell > Yellow {
			return bits, errors.Errorf("invalid code %d in cell #%d, valid codes are 0, 1 or 2", cell, ii)
		}
		x, y := ii/height, ii%height
		bits.Set(cellOffset(width, x, y), uint8(cell))
	}
	return
}
