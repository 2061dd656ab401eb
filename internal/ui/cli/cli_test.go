package cli

import (
	"bytes"
	"context"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/janpfeifer/fourGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

// firstAction always plays the first legal action.
type firstAction[B Game[B, A], A comparable] struct{}

func (firstAction[B, A]) String() string { return "First" }

func (firstAction[B, A]) Play(board B) (A, bool) { return board.LegalActions()[0], false }

func TestRenderBoard(t *testing.T) {
	ui := NewWithIO(strings.NewReader(""), &bytes.Buffer{})
	b := statetest.Drop4Sequence(3, 3, 4)
	got := ui.RenderBoard(b, LegalCells(b))
	lines := strings.Split(got, "\n")
	require.Len(t, lines, Drop4Height+2)
	assert.Equal(t, "5 │ . . . . . . . │", lines[0])
	assert.Equal(t, "1 │ . . . Y + . . │", lines[4])
	assert.Equal(t, "0 │ + + + R R + + │", lines[5])
	assert.Equal(t, "2 │ . . . + . . . │", lines[3])
	assert.Equal(t, "    0 1 2 3 4 5 6", lines[7])

	p := NewPush4()
	got = ui.RenderBoard(p, LegalCells(p))
	lines = strings.Split(got, "\n")
	require.Len(t, lines, Push4Size+2)
	assert.Equal(t, "7 │ + + + + + + + + │", lines[0])
	assert.Equal(t, "4 │ + . . . . . . + │", lines[3])
}

func TestPrintWinner(t *testing.T) {
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(""), &out)
	ui.PrintWinner(statetest.Drop4Sequence(0, 6, 0, 6, 0, 6, 0))
	assert.Contains(t, out.String(), "RED PLAYER WINS")

	out.Reset()
	p := statetest.PlaySequence(NewPush4(), statetest.Push4DrawOrder()...)
	require.Equal(t, Draw, p.GameState())
	ui.PrintWinner(p)
	assert.Contains(t, out.String(), "DRAW")
}

func TestPlay(t *testing.T) {
	// Undo with no history, invalid column, column 3, undo, and then four times column 3.
	input := strings.Join([]string{"z", "9", "x", "3", "z", "3", "3", "3", "3"}, "\n") + "\n"
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(input), &out)
	final, err := Play[*Drop4, int](context.Background(), ui, NewDrop4(), Red, firstAction[*Drop4, int]{})
	require.NoError(t, err)
	assert.Equal(t, Won(Red), final.GameState())
	assert.Equal(t, 7, final.MoveNumber())
	got := out.String()
	assert.Contains(t, got, "Nothing to undo")
	assert.Contains(t, got, "not in range")
	assert.Contains(t, got, "invalid column")
	assert.Contains(t, got, "RED PLAYER WINS")

	// Running out of input before the end of the game is an error.
	ui = NewWithIO(strings.NewReader("3\n"), &out)
	_, err = Play[*Drop4, int](context.Background(), ui, NewDrop4(), Red, firstAction[*Drop4, int]{})
	require.Error(t, err)

	// A cancelled context stops the match.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Play[*Drop4, int](ctx, ui, NewDrop4(), Yellow, firstAction[*Drop4, int]{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlayPush4(t *testing.T) {
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader("3,3\n9,9\nfoo\n0,0\n"), &out)
	final, err := Play[*Push4, Pos](context.Background(), ui, NewPush4(), Yellow, firstAction[*Push4, Pos]{})
	require.Error(t, err, "input ended before the end of the match")
	got := out.String()
	assert.Contains(t, got, "not legal")
	assert.Contains(t, got, "not in range")
	assert.Contains(t, got, "invalid position")
	assert.Equal(t, 3, final.MoveNumber())
	assert.Equal(t, Red, final.Cell(3, 0))
	assert.Equal(t, Yellow, final.Cell(0, 0))
}
