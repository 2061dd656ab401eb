// Package gomlx implements the convolutional evaluator ("cnn"), a GoMLX model over the board cells.
//
// The model takes the board as a single-channel image (height x width), with +1 for the cells of the
// player whose perspective is evaluated, -1 for the opponent's and 0 for empty cells. Its value is
// anti-symmetric in the perspective, and always in (-1, 1) for games in progress.
package gomlx

import (
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/parameters"
	"github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"sync"
)

// Variant name of the convolutional evaluator.
const Variant = "cnn"

var (
	// Backend is a singleton, the same for all evaluators.
	backend = sync.OnceValue(func() backends.Backend { return backends.New() })

	// muNewClient is a Mutex used to synchronize the creation of executors.
	muNewClient sync.Mutex
)

// init registers the "cnn" variant, so end users can use it.
func init() {
	ai.RegisterVariant(Variant, ai.Variant{
		New: func(game string, params parameters.Params) (ai.Evaluator, error) {
			width, height, err := gameDimensions(game)
			if err != nil {
				return nil, err
			}
			model := NewCNN(width, height)
			if err := extractParams(Variant, params, model.Context()); err != nil {
				return nil, err
			}
			return newScorer(model), nil
		},
		Decode: func(game string, payload []byte) (ai.Evaluator, error) {
			width, height, err := gameDimensions(game)
			if err != nil {
				return nil, err
			}
			return Decode(width, height, payload)
		},
	})
}

// gameDimensions returns the width and height of the board of the given game.
func gameDimensions(game string) (width, height int, err error) {
	switch game {
	case state.Drop4Name:
		return state.Drop4Width, state.Drop4Height, nil
	case state.Push4Name:
		return state.Push4Size, state.Push4Size, nil
	}
	return 0, 0, errors.Errorf("unknown game %q for the %s evaluator", game, Variant)
}

// extractParams and write them as context hyperparameters
func extractParams(modelName string, params parameters.Params, ctx *context.Context) error {
	var err error
	ctx.EnumerateParams(func(scope, key string, valueAny any) {
		if err != nil {
			// If error happened skip the rest.
			return
		}
		if scope != context.RootScope {
			return
		}
		switch defaultValue := valueAny.(type) {
		case int:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (int) for model %s", key, modelName)
				return
			}
			ctx.SetParam(key, value)
		case float64:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (float64) for model %s", key, modelName)
				return
			}
			ctx.SetParam(key, value)
		default:
			err = errors.Errorf("model %s parameter %q is of unknown type %T", modelName, key, defaultValue)
		}
	})
	return err
}
