// Package cli implements a command-line UI for the games: board rendering and an interactive match
// between a human and an AI player.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/players"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/janpfeifer/fourGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strings"
)

// UndoCommand is the input that undoes the last two plies (the last AI move and the last human move).
const UndoCommand = "z"

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	legalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	drawStyle   = lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2)
	winStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("10")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2)
)

// UI renders boards and reads the human actions.
type UI struct {
	color, clearScreen, centered bool
	out                io.Writer
	readLine           func(prompt string) (string, error)
	closeFn            func() error
}

// New creates a UI on the terminal, with readline support (history, line editing) for the input.
func New(color, clearScreen bool) (*UI, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize the terminal input")
	}
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		centered:    true,
		out:         rl.Stdout(),
		readLine: func(prompt string) (string, error) {
			rl.SetPrompt(prompt)
			return rl.Readline()
		},
		closeFn: rl.Close,
	}, nil
}

// NewWithIO creates a UI without colors that reads the input lines from r and writes to w.
func NewWithIO(r io.Reader, w io.Writer) *UI {
	reader := bufio.NewReader(r)
	return &UI{
		out:      w,
		readLine: func(prompt string) (string, error) {
			_, _ = fmt.Fprint(w, prompt)
			return reader.ReadString('\n')
		},
	}
}

// Close releases the terminal.
func (ui *UI) Close() error {
	if ui.closeFn == nil {
		return nil
	}
	return ui.closeFn()
}

func (ui *UI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ui.out, format, args...)
}

// printCentered prints the block of text centered in the terminal. Without a terminal it is printed
// left aligned.
func (ui *UI) printCentered(block string) {
	lines := strings.Split(block, "\n")
	terminalWidth := 0
	if ui.centered {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			terminalWidth = width
		}
	}
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((terminalWidth-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			ui.printf("\n")
			continue
		}
		ui.printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// cellSymbol returns the rendering of a cell.
func (ui *UI) cellSymbol(player Player, legal bool) string {
	switch {
	case player == Red && ui.color:
		return redStyle.Render("●")
	case player == Yellow && ui.color:
		return yellowStyle.Render("●")
	case player == Red:
		return "R"
	case player == Yellow:
		return "Y"
	case legal && ui.color:
		return legalStyle.Render("·")
	case legal:
		return "+"
	}
	return "."
}

// playerName returns the colored name of the player.
func (ui *UI) playerName(player Player) string {
	name := player.String()
	if !ui.color {
		return name
	}
	if player == Red {
		return redStyle.Render(name)
	}
	return yellowStyle.Render(name)
}

// RenderBoard returns the board as text, top row first, with the column numbers below.
// Empty cells in legal are marked.
func (ui *UI) RenderBoard(board Board, legal generics.Set[Pos]) string {
	var sb strings.Builder
	width, height := board.Width(), board.Height()
	for y := height - 1; y >= 0; y-- {
		_, _ = fmt.Fprintf(&sb, "%d │", y)
		for x := range width {
			pos := Pos{X: int8(x), Y: int8(y)}
			sb.WriteString(" " + ui.cellSymbol(board.Cell(x, y), legal.Has(pos)))
		}
		sb.WriteString(" │\n")
	}
	sb.WriteString("  └" + strings.Repeat("──", width) + "─┘\n   ")
	for x := range width {
		_, _ = fmt.Fprintf(&sb, " %d", x)
	}
	return sb.String()
}

// LegalCells returns the cells where the legal actions of the board place a piece.
func LegalCells[B Game[B, A], A comparable](board B) generics.Set[Pos] {
	cells := generics.MakeSet[Pos]()
	for _, action := range board.LegalActions() {
		cells.Insert(board.ActionPos(action))
	}
	return cells
}

// PrintBoard prints the board, and whose turn it is.
func PrintBoard[B Game[B, A], A comparable](ui *UI, board B) {
	if ui.clearScreen {
		ui.printf("\033c")
	}
	ui.printf("\n%s - move #%d\n\n", board.Name(), board.MoveNumber())
	ui.printCentered(ui.RenderBoard(board, LegalCells(board)))
	ui.printf("\n")
	if !board.GameState().IsFinished() {
		ui.printf("%s to play\n", ui.playerName(board.CurPlayer()))
	}
}

// PrintWinner prints the outcome of the finished game.
func (ui *UI) PrintWinner(board Board) {
	ui.printf("\n")
	state := board.GameState()
	var message string
	if winner := state.Winner(); winner != NoPlayer {
		message = fmt.Sprintf("*** %s PLAYER WINS!! ***", strings.ToUpper(winner.String()))
		if ui.color {
			message = winStyle.Render(message)
		}
	} else {
		message = "*** DRAW! ***"
		if ui.color {
			message = drawStyle.Render(message)
		}
	}
	ui.printCentered(message)
	ui.printf("\n")
}

// readAction reads the human action. It returns undo=true if the human asked to undo the last two plies.
// Invalid inputs are reported and the human is asked again.
func readAction[B Game[B, A], A comparable](ui *UI, board B, canUndo bool) (action A, undo bool, err error) {
	format := "column"
	if board.Name() == Push4Name {
		format = "x,y"
	}
	for {
		var text string
		text, err = ui.readLine(fmt.Sprintf("%s action (%s, or %q to undo) > ", ui.playerName(board.CurPlayer()), format, UndoCommand))
		text = strings.TrimSpace(text)
		if err != nil && (text == "" || !errors.Is(err, io.EOF)) {
			return action, false, err
		}
		if text == UndoCommand {
			if canUndo {
				return action, true, nil
			}
			ui.printf("    * Nothing to undo.\n")
			continue
		}
		action, err = board.ParseAction(text)
		if err != nil {
			ui.printf("    * %v, please try again.\n", err)
			continue
		}
		if !board.IsLegal(action) {
			ui.printf("    * Action %v is not legal, please try again.\n", action)
			continue
		}
		return action, false, nil
	}
}

// Play runs an interactive match between the human, playing the human side, and the opponent, starting
// from board. It returns the final board.
func Play[B Game[B, A], A comparable](ctx context.Context, ui *UI, board B, human Player,
	opponent players.Player[B, A]) (B, error) {
	board = board.Clone()
	var history []A
	for !board.GameState().IsFinished() {
		if err := ctx.Err(); err != nil {
			return board, err
		}
		PrintBoard(ui, board)
		if board.CurPlayer() == human {
			action, undo, err := readAction(ui, board, len(history) >= 2)
			if err != nil {
				return board, errors.WithMessage(err, "failed to read action")
			}
			if undo {
				for range 2 {
					board.ReverseLastAction(history[len(history)-1])
					history = history[:len(history)-1]
				}
				continue
			}
			board.PlayAction(action)
			history = append(history, action)
			continue
		}

		s := spinning.New(ctx, ui.out)
		action, _ := opponent.Play(board)
		s.Done()
		ui.printf("%s plays %v\n", ui.playerName(board.CurPlayer()), action)
		board.PlayAction(action)
		history = append(history, action)
	}
	PrintBoard(ui, board)
	ui.PrintWinner(board)
	return board, nil
}
