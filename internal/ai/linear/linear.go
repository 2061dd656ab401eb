// Package linear implements a pure Go linear evaluator over the board features (see package features),
// that can be used to play as well as training: its gradient is simply the feature vector.
package linear

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/features"
	"github.com/janpfeifer/fourGo/internal/parameters"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
	"slices"
)

// Variant name of the linear evaluator over the "consecutive" features.
const Variant = "consecutive"

func init() {
	ai.RegisterVariant(Variant, ai.Variant{
		New: func(_ string, params parameters.Params) (ai.Evaluator, error) {
			initValue, err := parameters.PopParamOr(params, "init", 0.0)
			if err != nil {
				return nil, err
			}
			weights := make([]float64, features.BoardFeaturesDim)
			for ii := range weights {
				weights[ii] = initValue
			}
			return NewWithWeights(weights...), nil
		},
		Decode: func(_ string, payload []byte) (ai.Evaluator, error) {
			s := &Scorer{}
			if err := yaml.Unmarshal(payload, s); err != nil {
				return nil, errors.Wrap(err, "failed to parse linear evaluator weights")
			}
			if len(s.Weights) != features.BoardFeaturesDim {
				return nil, errors.Errorf("linear evaluator has %d weights, but there are %d features",
					len(s.Weights), features.BoardFeaturesDim)
			}
			return s, nil
		},
	})
}

// Scorer is a linear model (one weight per feature, no bias) on the feature set.
// It implements ai.Evaluator.
//
// The first half of the features are those of perspective and the second half those of its opponent, so the
// model is antisymmetric (Value(b, Red) == -Value(b, Yellow)) only if the second half of the weights is the
// negation of the first half.
//
// Concurrent evaluations are safe, as long as no ApplyUpdate runs at the same time.
type Scorer struct {
	Weights []float64 `yaml:"weights"`
}

// NewWithWeights creates a new Scorer with the given weights.
// Ownership of the weights is transferred.
func NewWithWeights(weights ...float64) *Scorer {
	if len(weights) != features.BoardFeaturesDim {
		exceptions.Panicf("linear.NewWithWeights: %d weights given, but there are %d features",
			len(weights), features.BoardFeaturesDim)
	}
	return &Scorer{Weights: weights}
}

// Assert Scorer is an ai.Evaluator.
var _ ai.Evaluator = (*Scorer)(nil)

// String implements fmt.Stringer.
func (s *Scorer) String() string {
	return fmt.Sprintf("Linear(%s)", features.Describe(s.Weights))
}

// Variant implements ai.Evaluator.
func (s *Scorer) Variant() string { return Variant }

// ScoreFeatures is like Value, but it takes the features as input.
func (s *Scorer) ScoreFeatures(f []float64) float64 {
	return ai.ClipHeuristic(floats.Dot(s.Weights, f))
}

// Value implements ai.Evaluator.
func (s *Scorer) Value(board Board, perspective Player) float64 {
	if isEnd, value := ai.TerminalValue(board, perspective); isEnd {
		return value
	}
	return s.ScoreFeatures(features.FeatureVector(board, perspective))
}

// Values implements ai.Evaluator.
func (s *Scorer) Values(boards []Board, perspective Player) []float64 {
	return ai.BatchValues(s, boards, perspective)
}

// Gradient implements ai.Evaluator: the gradient of a linear model is the feature vector.
func (s *Scorer) Gradient(board Board, perspective Player) []float64 {
	return features.FeatureVector(board, perspective)
}

// ApplyUpdate implements ai.Evaluator.
func (s *Scorer) ApplyUpdate(delta []float64) {
	if len(delta) != len(s.Weights) {
		exceptions.Panicf("linear evaluator has %d weights, got update of dimension %d", len(s.Weights), len(delta))
	}
	floats.Add(s.Weights, delta)
}

// Params implements ai.Evaluator.
func (s *Scorer) Params() []float64 {
	return slices.Clone(s.Weights)
}

// MarshalBinary implements ai.Evaluator.
func (s *Scorer) MarshalBinary() ([]byte, error) {
	return yaml.Marshal(s)
}
