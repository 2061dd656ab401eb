// Package heuristics implements the evaluators that don't learn: Simple, which only knows about finished
// games, and Lines, which counts the open runs of pieces.
package heuristics

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/features"
	"github.com/janpfeifer/fourGo/internal/parameters"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"slices"
)

const (
	SimpleVariant = "simple"
	LinesVariant  = "lines"
)

func init() {
	ai.RegisterVariant(SimpleVariant, ai.Variant{
		New: func(_ string, _ parameters.Params) (ai.Evaluator, error) {
			return NewSimple(), nil
		},
		Decode: func(_ string, payload []byte) (ai.Evaluator, error) {
			if len(payload) > 0 {
				return nil, errors.Errorf("simple evaluator has no parameters, got %d bytes payload", len(payload))
			}
			return NewSimple(), nil
		},
	})
	ai.RegisterVariant(LinesVariant, ai.Variant{
		New: func(_ string, _ parameters.Params) (ai.Evaluator, error) {
			return NewLines(), nil
		},
		Decode: func(_ string, payload []byte) (ai.Evaluator, error) {
			l := &Lines{}
			if err := yaml.Unmarshal(payload, l); err != nil {
				return nil, errors.Wrap(err, "failed to parse lines evaluator parameters")
			}
			return l, nil
		},
	})
}

// Simple only values finished games: +Inf for a win, -Inf for a loss and 0 for a draw.
// Every game still in progress is valued 0.
//
// It has no parameters, and it is safe for concurrent use.
type Simple struct{}

// Assert Simple is an ai.Evaluator.
var _ ai.Evaluator = (*Simple)(nil)

// NewSimple returns the terminal-only evaluator.
func NewSimple() *Simple { return &Simple{} }

// String implements fmt.Stringer.
func (s *Simple) String() string { return "Simple" }

// Variant implements ai.Evaluator.
func (s *Simple) Variant() string { return SimpleVariant }

// Value implements ai.Evaluator.
func (s *Simple) Value(board Board, perspective Player) float64 {
	_, value := ai.TerminalValue(board, perspective)
	return value
}

// Values implements ai.Evaluator.
func (s *Simple) Values(boards []Board, perspective Player) []float64 {
	return ai.BatchValues(s, boards, perspective)
}

// Gradient implements ai.Evaluator: there are no parameters.
func (s *Simple) Gradient(Board, Player) []float64 { return []float64{} }

// ApplyUpdate implements ai.Evaluator. It panics if delta is not empty.
func (s *Simple) ApplyUpdate(delta []float64) {
	if len(delta) > 0 {
		exceptions.Panicf("Simple evaluator has no parameters, got update of dimension %d", len(delta))
	}
}

// Params implements ai.Evaluator.
func (s *Simple) Params() []float64 { return []float64{} }

// MarshalBinary implements ai.Evaluator.
func (s *Simple) MarshalBinary() ([]byte, error) { return []byte{}, nil }

// Lines values games in progress with features.LinesScore for the perspective player.
//
// Its parameters (the values of 2 and 3 in a row) are carried along in saved files, but they are not
// used nor trained.
//
// It only scores the runs of perspective, so it is not antisymmetric: in general
// Value(b, Red) != -Value(b, Yellow) for games in progress.
type Lines struct {
	Weights []float64 `yaml:"weights"`
}

// Assert Lines is an ai.Evaluator.
var _ ai.Evaluator = (*Lines)(nil)

// NewLines returns a Lines evaluator with its weights zero-initialized.
func NewLines() *Lines {
	return &Lines{Weights: []float64{0, 0}}
}

// String implements fmt.Stringer.
func (l *Lines) String() string { return "Lines" }

// Variant implements ai.Evaluator.
func (l *Lines) Variant() string { return LinesVariant }

// Value implements ai.Evaluator.
func (l *Lines) Value(board Board, perspective Player) float64 {
	if isEnd, value := ai.TerminalValue(board, perspective); isEnd {
		return value
	}
	return ai.ClipHeuristic(features.LinesScore(board, perspective))
}

// Values implements ai.Evaluator.
func (l *Lines) Values(boards []Board, perspective Player) []float64 {
	return ai.BatchValues(l, boards, perspective)
}

// Gradient implements ai.Evaluator: the weights don't affect the value, so the gradient is always zero.
func (l *Lines) Gradient(Board, Player) []float64 {
	return make([]float64, len(l.Weights))
}

// ApplyUpdate implements ai.Evaluator.
func (l *Lines) ApplyUpdate(delta []float64) {
	if len(delta) != len(l.Weights) {
		exceptions.Panicf("Lines evaluator has %d parameters, got update of dimension %d", len(l.Weights), len(delta))
	}
	for ii, d := range delta {
		l.Weights[ii] += d
	}
}

// Params implements ai.Evaluator.
func (l *Lines) Params() []float64 { return slices.Clone(l.Weights) }

// MarshalBinary implements ai.Evaluator.
func (l *Lines) MarshalBinary() ([]byte, error) {
	return yaml.Marshal(l)
}
