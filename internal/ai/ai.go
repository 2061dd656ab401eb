// Package ai (Artificial Intelligence) defines the Evaluator interface that the board evaluators
// have to implement, and a registry of the evaluator variants, used to create and persist them.
//
// The variants implementations live in the sub-packages, and register themselves during initialization.
// Import "github.com/janpfeifer/fourGo/internal/ai/evaluators" to include all of them.
package ai

import (
	"fmt"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/parameters"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"math"
	"strings"
	"sync"
)

// HeuristicLimit is the absolute bound of the values of the heuristic evaluators on boards
// still in progress. +/-Inf are reserved for won and lost games.
const HeuristicLimit = 1e6

// Evaluator values boards from the point of view of one of the players.
//
// The value of a finished game is +Inf if perspective won, -Inf if it lost and 0 for a draw.
// For games in progress any finite value is valid: larger values are better for perspective.
//
// Evaluators are not safe for concurrent use, except if the implementation states otherwise.
type Evaluator interface {
	fmt.Stringer

	// Variant of the evaluator, used to tag it in saved files. See RegisterVariant.
	Variant() string

	// Value of board from the perspective of the given player.
	Value(board Board, perspective Player) float64

	// Values is the batch version of Value. See BatchValues for a trivial implementation.
	Values(boards []Board, perspective Player) []float64

	// Gradient of Value with respect to the parameters, concatenated in the same order as Params.
	// It is not defined for finished games.
	Gradient(board Board, perspective Player) []float64

	// ApplyUpdate adds delta to the parameters. delta has the same shape as Params.
	ApplyUpdate(delta []float64)

	// Params returns a copy of the parameters, flattened.
	Params() []float64

	// MarshalBinary serializes the evaluator parameters. They can be restored with Decode.
	MarshalBinary() ([]byte, error)
}

// TerminalValue returns whether the board is finished and, if so, its value for perspective:
// +Inf for a win, -Inf for a loss and 0 for a draw.
func TerminalValue(board Board, perspective Player) (isEnd bool, value float64) {
	state := board.GameState()
	if !state.IsFinished() {
		return false, 0
	}
	switch state.Winner() {
	case NoPlayer:
		return true, 0
	case perspective:
		return true, math.Inf(1)
	default:
		return true, math.Inf(-1)
	}
}

// ClipHeuristic bounds a heuristic value to [-HeuristicLimit, +HeuristicLimit], and converts NaN to 0.
func ClipHeuristic(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Max(-HeuristicLimit, math.Min(HeuristicLimit, value))
}

// BatchValues implements Evaluator.Values by calling Value for each board.
func BatchValues(e Evaluator, boards []Board, perspective Player) []float64 {
	return generics.SliceMap(boards, func(board Board) float64 {
		return e.Value(board, perspective)
	})
}

// Variant registration: how to create a new evaluator and how to decode a saved one.
type Variant struct {
	// New creates a new evaluator for the game with the given name, with initial parameters.
	// It should pop from params the configuration it uses.
	New func(game string, params parameters.Params) (Evaluator, error)

	// Decode restores an evaluator for the game with the given name from the output of MarshalBinary.
	Decode func(game string, payload []byte) (Evaluator, error)
}

var (
	muVariants sync.Mutex
	variants   = make(map[string]Variant)
)

// RegisterVariant makes the evaluator variant available to New and Decode.
// It is usually called during the initialization of the package implementing it.
func RegisterVariant(name string, variant Variant) {
	muVariants.Lock()
	defer muVariants.Unlock()
	variants[name] = variant
}

// Variants returns the names of the registered variants, sorted.
func Variants() []string {
	muVariants.Lock()
	defer muVariants.Unlock()
	return generics.KeysSlice(variants)
}

func getVariant(name string) (Variant, error) {
	muVariants.Lock()
	defer muVariants.Unlock()
	if len(variants) == 0 {
		return Variant{}, errors.New("no registered evaluators. Perhaps you need to import _ \"github.com/janpfeifer/fourGo/internal/ai/evaluators\" to your binary ?")
	}
	v, found := variants[name]
	if !found {
		return Variant{}, errors.Errorf("unknown evaluator %q, valid values are \"%s\"",
			name, strings.Join(generics.KeysSlice(variants), "\", \""))
	}
	return v, nil
}

// New creates a new evaluator for the given game from a configuration string: the variant name optionally
// followed by comma-separated parameters, e.g. "cnn,conv1_filters=16".
func New(config, game string) (Evaluator, error) {
	if err := CheckGame(game); err != nil {
		return nil, err
	}
	params := parameters.NewFromConfigString(config)
	variant := parameters.PopKind(params, config)
	v, err := getVariant(variant)
	if err != nil {
		return nil, err
	}
	e, err := v.New(game, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create evaluator %q for %s", variant, game)
	}
	if err = parameters.CheckAllUsed(params, fmt.Sprintf("evaluator %q", variant)); err != nil {
		return nil, err
	}
	return e, nil
}

// Decode restores an evaluator of the given variant from the payload created by Evaluator.MarshalBinary.
func Decode(variant, game string, payload []byte) (Evaluator, error) {
	if err := CheckGame(game); err != nil {
		return nil, err
	}
	v, err := getVariant(variant)
	if err != nil {
		return nil, err
	}
	e, err := v.Decode(game, payload)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode evaluator %q for %s", variant, game)
	}
	return e, nil
}

// CheckGame returns an error if game is not one of the supported games.
func CheckGame(game string) error {
	if game != Drop4Name && game != Push4Name {
		return errors.Errorf("unknown game %q, valid values are %q or %q", game, Drop4Name, Push4Name)
	}
	return nil
}
