package state

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

const (
	Drop4Width  = 7
	Drop4Height = 6
)

// drop4ColumnMask selects the 2 bits of every cell in column 0.
var drop4ColumnMask = func() (mask Bitboard) {
	for y := range Drop4Height {
		mask.Set(cellOffset(Drop4Width, 0, y), 3)
	}
	return
}()

// Drop4 is the gravity-drop four-in-a-row game: an action is a column, and the piece falls to the
// lowest empty cell of that column.
//
// It implements Game[*Drop4, int].
type Drop4 struct {
	bits   Bitboard
	player Player
	state  GameState
	moves  int
}

// Assert Drop4 implements Game.
var _ Game[*Drop4, int] = (*Drop4)(nil)

// NewDrop4 returns an empty board, with Red to play.
func NewDrop4() *Drop4 {
	return &Drop4{player: Red}
}

// NewDrop4FromCells creates a board from Width*Height cell codes, indexed column-major: cell i is at
// x=i/Height, y=i%Height. The game state is derived from the cells, and toMove is the player to move.
//
// It returns an error if a code is invalid or if a piece is floating above an empty cell.
func NewDrop4FromCells(cells []Player, toMove Player) (*Drop4, error) {
	if toMove != Red && toMove != Yellow {
		return nil, errors.Errorf("invalid player to move %d", toMove)
	}
	bits, err := fromCells(cells, Drop4Width, Drop4Height)
	if err != nil {
		return nil, err
	}
	b := &Drop4{bits: bits, player: toMove}
	for x := range Drop4Width {
		for y := 1; y < Drop4Height; y++ {
			if b.Cell(x, y) != NoPlayer && b.Cell(x, y-1) == NoPlayer {
				return nil, errors.Errorf("piece at %d,%d is floating over an empty cell", x, y)
			}
			if b.Cell(x, y-1) != NoPlayer {
				b.moves++
			}
		}
		if b.Cell(x, Drop4Height-1) != NoPlayer {
			b.moves++
		}
	}
	if winner := anyWinner(bits, Drop4Width, Drop4Height); winner != NoPlayer {
		b.state = Won(winner)
	} else if b.IsFull() {
		b.state = Draw
	}
	return b, nil
}

// Name implements Board.
func (b *Drop4) Name() string { return Drop4Name }

// Width implements Board.
func (b *Drop4) Width() int { return Drop4Width }

// Height implements Board.
func (b *Drop4) Height() int { return Drop4Height }

// CurPlayer implements Board.
func (b *Drop4) CurPlayer() Player { return b.player }

// GameState implements Board.
func (b *Drop4) GameState() GameState { return b.state }

// MoveNumber implements Board.
func (b *Drop4) MoveNumber() int { return b.moves }

// UID implements Board.
func (b *Drop4) UID() Bitboard { return b.bits }

// Cell implements Board.
func (b *Drop4) Cell(x, y int) Player {
	return Player(b.bits.Get(cellOffset(Drop4Width, x, y)))
}

// Vectorize implements Board.
func (b *Drop4) Vectorize(perspective Player) []float64 {
	return vectorize(b.bits, Drop4Width, Drop4Height, perspective)
}

// String implements fmt.Stringer.
func (b *Drop4) String() string {
	return boardString(b)
}

// Clone implements Game.
func (b *Drop4) Clone() *Drop4 {
	newB := *b
	return &newB
}

// landingRow returns the lowest empty row of column x, or Drop4Height if the column is full.
func (b *Drop4) landingRow(x int) int {
	for y := range Drop4Height {
		if b.Cell(x, y) == NoPlayer {
			return y
		}
	}
	return Drop4Height
}

// IsFull returns whether all columns are full.
func (b *Drop4) IsFull() bool {
	for x := range Drop4Width {
		if b.Cell(x, Drop4Height-1) == NoPlayer {
			return false
		}
	}
	return true
}

// PlayerWon returns whether the piece at (x, y) is part of a line of 4 or more.
func (b *Drop4) PlayerWon(x, y int) bool {
	return playerWon(b.bits, Drop4Width, Drop4Height, x, y)
}

// IsLegal implements Game.
func (b *Drop4) IsLegal(column int) bool {
	return b.state == InProgress && column >= 0 && column < Drop4Width &&
		b.Cell(column, Drop4Height-1) == NoPlayer
}

// LegalActions implements Game: the columns whose top cell is empty, in increasing order.
func (b *Drop4) LegalActions() []int {
	if b.state != InProgress {
		return nil
	}
	actions := make([]int, 0, Drop4Width)
	for x := range Drop4Width {
		if b.Cell(x, Drop4Height-1) == NoPlayer {
			actions = append(actions, x)
		}
	}
	return actions
}

// PlayAction implements Game.
func (b *Drop4) PlayAction(column int) {
	if b.state != InProgress {
		exceptions.Panicf("Drop4.PlayAction(%d) on a finished game (%s)", column, b.state)
	}
	if column < 0 || column >= Drop4Width {
		exceptions.Panicf("Drop4.PlayAction(%d): column out of range [0, %d)", column, Drop4Width)
	}
	y := b.landingRow(column)
	if y == Drop4Height {
		exceptions.Panicf("Drop4.PlayAction(%d): column is full", column)
	}
	b.bits.Set(cellOffset(Drop4Width, column, y), uint8(b.player))
	b.moves++
	if b.PlayerWon(column, y) {
		b.state = Won(b.player)
	} else if b.IsFull() {
		b.state = Draw
	}
	b.player = b.player.Opponent()
}

// ReverseLastAction implements Game: it removes the top piece of column, which must belong to the
// player who moved last.
func (b *Drop4) ReverseLastAction(column int) {
	if column < 0 || column >= Drop4Width {
		exceptions.Panicf("Drop4.ReverseLastAction(%d): column out of range [0, %d)", column, Drop4Width)
	}
	y := b.landingRow(column) - 1
	lastMover := b.player.Opponent()
	if y < 0 || b.Cell(column, y) != lastMover {
		exceptions.Panicf("Drop4.ReverseLastAction(%d): top of the column doesn't hold a piece of %s, the last mover",
			column, lastMover)
	}
	b.bits.Set(cellOffset(Drop4Width, column, y), 0)
	b.moves--
	b.state = InProgress
	b.player = lastMover
}

// ActionPos implements Game: the cell where the piece dropped in column lands.
func (b *Drop4) ActionPos(column int) Pos {
	return Pos{X: int8(column), Y: int8(b.landingRow(column))}
}

// ParseAction implements Game: the action is the column number.
func (b *Drop4) ParseAction(text string) (int, error) {
	column, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.Errorf("invalid column %q, please enter a number from 0 to %d", text, Drop4Width-1)
	}
	if column < 0 || column >= Drop4Width {
		return 0, errors.Errorf("column %d not in range 0..%d", column, Drop4Width-1)
	}
	return column, nil
}

// Mirror returns the board reflected around its central column.
// Player to move, game state and move number are preserved.
func (b *Drop4) Mirror() *Drop4 {
	var bits Bitboard
	for x := range Drop4Width {
		column := b.bits.And(drop4ColumnMask.Lsh(cellOffset(Drop4Width, x, 0)))
		if shift := 2 * (Drop4Width - 1 - 2*x); shift >= 0 {
			column = column.Lsh(shift)
		} else {
			column = column.Rsh(-shift)
		}
		bits = bits.Or(column)
	}
	mirrored := b.Clone()
	mirrored.bits = bits
	return mirrored
}

// Symmetries implements Game: the identity and the mirror.
func (b *Drop4) Symmetries() []*Drop4 {
	return []*Drop4{b.Clone(), b.Mirror()}
}
