package state

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// Push4Size is both the width and the height of the Push4 board.
const Push4Size = 8

// push4SlotOrder is the order in which ranks and files are tried when listing actions: central ones first.
var push4SlotOrder = [Push4Size]int{3, 4, 2, 5, 1, 6, 0, 7}

// push4Edge is where a piece enters the board and the direction it is pushed in.
type push4Edge struct {
	// start returns the first cell of the slot.
	start  func(slot int) (x, y int)
	dx, dy int
}

// push4Edges lists the edges: bottom, right, top and left.
var push4Edges = [4]push4Edge{
	{start: func(slot int) (int, int) { return slot, 0 }, dx: 0, dy: 1},
	{start: func(slot int) (int, int) { return Push4Size - 1, slot }, dx: -1, dy: 0},
	{start: func(slot int) (int, int) { return slot, Push4Size - 1 }, dx: 0, dy: -1},
	{start: func(slot int) (int, int) { return 0, slot }, dx: 1, dy: 0},
}

// Push4 is the 8x8 four-in-a-row game where a piece enters from one of the four edges and slides inward
// until the first empty cell of the rank or file. The action is the cell where the piece lands.
//
// It implements Game[*Push4, Pos].
type Push4 struct {
	bits   Bitboard
	player Player
	state  GameState
	moves  int
}

// Assert Push4 implements Game.
var _ Game[*Push4, Pos] = (*Push4)(nil)

// NewPush4 returns an empty board, with Red to play.
func NewPush4() *Push4 {
	return &Push4{player: Red}
}

// NewPush4FromCells creates a board from 64 cell codes, indexed column-major: cell i is at x=i/8, y=i%8.
// The game state is derived from the cells, and toMove is the player to move.
//
// It returns an error if a code is invalid or if some piece could not have been pushed where it is.
func NewPush4FromCells(cells []Player, toMove Player) (*Push4, error) {
	if toMove != Red && toMove != Yellow {
		return nil, errors.Errorf("invalid player to move %d", toMove)
	}
	bits, err := fromCells(cells, Push4Size, Push4Size)
	if err != nil {
		return nil, err
	}
	b := &Push4{bits: bits, player: toMove}
	for x := range Push4Size {
		for y := range Push4Size {
			if b.Cell(x, y) == NoPlayer {
				continue
			}
			if !b.reachable(x, y) {
				return nil, errors.Errorf("piece at %d,%d is not connected to any edge by a filled rank or file", x, y)
			}
			b.moves++
		}
	}
	if winner := anyWinner(bits, Push4Size, Push4Size); winner != NoPlayer {
		b.state = Won(winner)
	} else if b.IsFull() {
		b.state = Draw
	}
	return b, nil
}

// Name implements Board.
func (b *Push4) Name() string { return Push4Name }

// Width implements Board.
func (b *Push4) Width() int { return Push4Size }

// Height implements Board.
func (b *Push4) Height() int { return Push4Size }

// CurPlayer implements Board.
func (b *Push4) CurPlayer() Player { return b.player }

// GameState implements Board.
func (b *Push4) GameState() GameState { return b.state }

// MoveNumber implements Board.
func (b *Push4) MoveNumber() int { return b.moves }

// UID implements Board.
func (b *Push4) UID() Bitboard { return b.bits }

// Cell implements Board.
func (b *Push4) Cell(x, y int) Player {
	return Player(b.bits.Get(cellOffset(Push4Size, x, y)))
}

// Vectorize implements Board.
func (b *Push4) Vectorize(perspective Player) []float64 {
	return vectorize(b.bits, Push4Size, Push4Size, perspective)
}

// String implements fmt.Stringer.
func (b *Push4) String() string {
	return boardString(b)
}

// Clone implements Game.
func (b *Push4) Clone() *Push4 {
	newB := *b
	return &newB
}

// IsFull returns whether all 64 cells are occupied.
func (b *Push4) IsFull() bool {
	return b.bits.allOccupied()
}

// PlayerWon returns whether the piece at (x, y) is part of a line of 4 or more.
func (b *Push4) PlayerWon(x, y int) bool {
	return playerWon(b.bits, Push4Size, Push4Size, x, y)
}

// reachable returns whether, along some rank or file, every cell between (x, y) and the edge is occupied.
func (b *Push4) reachable(x, y int) bool {
	for _, edge := range push4Edges {
		// Walk from (x, y) back towards the edge the piece would have entered from.
		cx, cy := x-edge.dx, y-edge.dy
		blocked := false
		for cx >= 0 && cy >= 0 && cx < Push4Size && cy < Push4Size {
			if b.Cell(cx, cy) == NoPlayer {
				blocked = true
				break
			}
			cx, cy = cx-edge.dx, cy-edge.dy
		}
		if !blocked {
			return true
		}
	}
	return false
}

// IsLegal implements Game: the cell must be empty and reachable from an edge.
func (b *Push4) IsLegal(pos Pos) bool {
	x, y := int(pos.X), int(pos.Y)
	return b.state == InProgress && x >= 0 && y >= 0 && x < Push4Size && y < Push4Size &&
		b.Cell(x, y) == NoPlayer && b.reachable(x, y)
}

// wouldWin returns whether player would complete a line of 4 by placing a piece at pos.
func (b *Push4) wouldWin(pos Pos, player Player) bool {
	bits := b.bits
	bits.Set(cellOffset(Push4Size, int(pos.X), int(pos.Y)), uint8(player))
	return playerWon(bits, Push4Size, Push4Size, int(pos.X), int(pos.Y))
}

// LegalActions implements Game.
//
// Ranks and files are visited from the centre outwards, each from its four edges, and the first empty cell
// found is the action. Duplicates are dropped. The result is then grouped, preserving the order within each
// group: first the actions that win for the player to move, then the ones that block an opponent's win,
// and then the others.
func (b *Push4) LegalActions() []Pos {
	if b.state != InProgress {
		return nil
	}
	var emitted uint64
	var wins, blocks, others []Pos
	opponent := b.player.Opponent()
	for _, slot := range push4SlotOrder {
		for _, edge := range push4Edges {
			x, y := edge.start(slot)
			for x >= 0 && y >= 0 && x < Push4Size && y < Push4Size && b.Cell(x, y) != NoPlayer {
				x, y = x+edge.dx, y+edge.dy
			}
			if x < 0 || y < 0 || x >= Push4Size || y >= Push4Size {
				continue
			}
			cellBit := uint64(1) << (x + y*Push4Size)
			if emitted&cellBit != 0 {
				continue
			}
			emitted |= cellBit
			pos := Pos{X: int8(x), Y: int8(y)}
			switch {
			case b.wouldWin(pos, b.player):
				wins = append(wins, pos)
			case b.wouldWin(pos, opponent):
				blocks = append(blocks, pos)
			default:
				others = append(others, pos)
			}
		}
	}
	actions := make([]Pos, 0, len(wins)+len(blocks)+len(others))
	actions = append(actions, wins...)
	actions = append(actions, blocks...)
	return append(actions, others...)
}

// PlayAction implements Game.
func (b *Push4) PlayAction(pos Pos) {
	if b.state != InProgress {
		exceptions.Panicf("Push4.PlayAction(%s) on a finished game (%s)", pos, b.state)
	}
	if !b.IsLegal(pos) {
		exceptions.Panicf("Push4.PlayAction(%s): illegal action", pos)
	}
	x, y := int(pos.X), int(pos.Y)
	b.bits.Set(cellOffset(Push4Size, x, y), uint8(b.player))
	b.moves++
	if b.PlayerWon(x, y) {
		b.state = Won(b.player)
	} else if b.IsFull() {
		b.state = Draw
	}
	b.player = b.player.Opponent()
}

// ReverseLastAction implements Game: the cell pos must hold a piece of the player who moved last.
func (b *Push4) ReverseLastAction(pos Pos) {
	x, y := int(pos.X), int(pos.Y)
	if x < 0 || y < 0 || x >= Push4Size || y >= Push4Size {
		exceptions.Panicf("Push4.ReverseLastAction(%s): position out of the board", pos)
	}
	lastMover := b.player.Opponent()
	if b.Cell(x, y) != lastMover {
		exceptions.Panicf("Push4.ReverseLastAction(%s): cell doesn't hold a piece of %s, the last mover", pos, lastMover)
	}
	b.bits.Set(cellOffset(Push4Size, x, y), 0)
	b.moves--
	b.state = InProgress
	b.player = lastMover
}

// ActionPos implements Game: Push4 actions are the positions themselves.
func (b *Push4) ActionPos(pos Pos) Pos {
	return pos
}

// ParseAction implements Game: the action is given as "x,y".
func (b *Push4) ParseAction(text string) (Pos, error) {
	parts := strings.Split(strings.TrimSpace(text), ",")
	if len(parts) != 2 {
		return Pos{}, errors.Errorf("invalid position %q, please enter it as \"x,y\"", text)
	}
	var coords [2]int
	for ii, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Pos{}, errors.Wrapf(err, "invalid position %q", text)
		}
		if v < 0 || v >= Push4Size {
			return Pos{}, errors.Errorf("coordinate %d of %q not in range 0..%d", v, text, Push4Size-1)
		}
		coords[ii] = v
	}
	return Pos{X: int8(coords[0]), Y: int8(coords[1])}, nil
}

// rotatePos returns where (x, y) lands after n counter-clockwise quarter turns.
func rotatePos(x, y, n int) (int, int) {
	const last = Push4Size - 1
	switch n & 3 {
	case 1:
		return last - y, x
	case 2:
		return last - x, last - y
	case 3:
		return y, last - x
	}
	return x, y
}

// Rotate returns the board rotated by n quarter turns, n in 0..3.
// Player to move, game state and move number are preserved.
func (b *Push4) Rotate(n int) *Push4 {
	rotated := b.Clone()
	if n&3 == 0 {
		return rotated
	}
	rotated.bits = Bitboard{}
	for x := range Push4Size {
		for y := range Push4Size {
			if code := b.bits.Get(cellOffset(Push4Size, x, y)); code != 0 {
				rx, ry := rotatePos(x, y, n)
				rotated.bits.Set(cellOffset(Push4Size, rx, ry), code)
			}
		}
	}
	return rotated
}

// Mirror returns the board reflected around its vertical axis.
func (b *Push4) Mirror() *Push4 {
	mirrored := b.Clone()
	mirrored.bits = Bitboard{}
	for x := range Push4Size {
		for y := range Push4Size {
			if code := b.bits.Get(cellOffset(Push4Size, x, y)); code != 0 {
				mirrored.bits.Set(cellOffset(Push4Size, Push4Size-1-x, y), code)
			}
		}
	}
	return mirrored
}

// Symmetries implements Game: the 4 rotations, each followed by its mirror, starting with the identity.
func (b *Push4) Symmetries() []*Push4 {
	boards := make([]*Push4, 0, 8)
	for n := range 4 {
		rotated := b.Rotate(n)
		boards = append(boards, rotated, rotated.Mirror())
	}
	return boards
}
