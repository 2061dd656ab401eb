package gomlx

import (
	"cmp"
	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/fourGo/internal/ai"
	"github.com/janpfeifer/fourGo/internal/generics"
	"github.com/janpfeifer/fourGo/internal/state"
	"slices"
	"sync"
)

// Scorer wraps the CNN model as an ai.Evaluator.
//
// It is safe for concurrent use: ApplyUpdate blocks the evaluations until the update is done.
type Scorer struct {
	model *CNN

	// Executors.
	valueExec, gradientExec *context.Exec

	// muLearning "write" for learning, and "read" for scoring.
	muLearning sync.RWMutex
}

// Assert Scorer is an ai.Evaluator.
var _ ai.Evaluator = (*Scorer)(nil)

// newScorer creates the executors for the model and forces the creation (or loading) of its variables.
func newScorer(model *CNN) *Scorer {
	s := &Scorer{model: model}
	ctx := model.Context()
	muNewClient.Lock()
	s.valueExec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, cells *graph.Node) *graph.Node {
			return s.model.ForwardGraph(ctx, cells)
		})
	s.gradientExec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, cells *graph.Node) []*graph.Node {
			value := s.model.ForwardGraph(ctx, cells)
			g := value.Graph()
			nodes := generics.SliceMap(s.trainableVariables(), func(v *context.Variable) *graph.Node {
				return v.ValueGraph(g)
			})
			grads := graph.Gradient(graph.ReduceAllSum(value), nodes...)
			return generics.SliceMap(grads, func(grad *graph.Node) *graph.Node {
				return graph.Reshape(grad, -1)
			})
		})
	muNewClient.Unlock()

	// Force creating/loading of variables without race conditions first.
	_ = s.networkValues([]state.Board{emptyBoard(model.width, model.height)}, state.Red)
	return s
}

func emptyBoard(width, height int) state.Board {
	if width == state.Drop4Width && height == state.Drop4Height {
		return state.NewDrop4()
	}
	return state.NewPush4()
}

// trainableVariables returns the variables updated by ApplyUpdate, sorted by their scope and name.
func (s *Scorer) trainableVariables() []*context.Variable {
	var vars []*context.Variable
	s.model.Context().EnumerateVariables(func(v *context.Variable) {
		if v.Trainable {
			vars = append(vars, v)
		}
	})
	slices.SortFunc(vars, func(a, b *context.Variable) int {
		return cmp.Compare(a.Scope()+"/"+a.Name(), b.Scope()+"/"+b.Name())
	})
	return vars
}

// String implements fmt.Stringer.
func (s *Scorer) String() string {
	return s.model.String()
}

// Variant implements ai.Evaluator.
func (s *Scorer) Variant() string { return Variant }

// Value implements ai.Evaluator.
func (s *Scorer) Value(board state.Board, perspective state.Player) float64 {
	return s.Values([]state.Board{board}, perspective)[0]
}

// Values implements ai.Evaluator. Only the boards of games in progress are evaluated by the model.
func (s *Scorer) Values(boards []state.Board, perspective state.Player) []float64 {
	values := make([]float64, len(boards))
	var inProgress []state.Board
	var indices []int
	for ii, board := range boards {
		if isEnd, value := ai.TerminalValue(board, perspective); isEnd {
			values[ii] = value
			continue
		}
		inProgress = append(inProgress, board)
		indices = append(indices, ii)
	}
	if len(inProgress) == 0 {
		return values
	}
	for ii, value := range s.networkValues(inProgress, perspective) {
		values[indices[ii]] = float64(value)
	}
	return values
}

// networkValues runs the model on the boards.
func (s *Scorer) networkValues(boards []state.Board, perspective state.Player) []float32 {
	cells := s.model.CreateInputs(boards, perspective)
	s.muLearning.RLock()
	defer s.muLearning.RUnlock()
	valuesT := s.valueExec.Call(graph.DonateTensorBuffer(cells, backend()))[0]
	values := valuesT.Value().([]float32)
	// Remove any padding:
	return values[:len(boards)]
}

// Gradient implements ai.Evaluator.
func (s *Scorer) Gradient(board state.Board, perspective state.Player) []float64 {
	cells := s.model.CreateInputs([]state.Board{board}, perspective)
	s.muLearning.RLock()
	defer s.muLearning.RUnlock()
	gradsT := s.gradientExec.Call(graph.DonateTensorBuffer(cells, backend()))
	var gradient []float64
	for _, gradT := range gradsT {
		for _, v := range gradT.Value().([]float32) {
			gradient = append(gradient, float64(v))
		}
	}
	return gradient
}

// ApplyUpdate implements ai.Evaluator. NaN values in delta are ignored.
func (s *Scorer) ApplyUpdate(delta []float64) {
	s.muLearning.Lock()
	defer s.muLearning.Unlock()
	vars := s.trainableVariables()
	var total int
	for _, v := range vars {
		total += v.Shape().Size()
	}
	if len(delta) != total {
		exceptions.Panicf("CNN evaluator has %d parameters, got update of dimension %d", total, len(delta))
	}
	for _, v := range vars {
		size := v.Shape().Size()
		var flat []float32
		tensors.ConstFlatData(v.Value(), func(current []float32) {
			flat = slices.Clone(current)
		})
		for ii := range flat {
			d := float32(delta[ii])
			if math32.IsNaN(d) {
				continue
			}
			flat[ii] += d
		}
		delta = delta[size:]
		v.SetValue(tensors.FromFlatDataAndDimensions(flat, v.Shape().Dimensions...))
	}
}

// Params implements ai.Evaluator.
func (s *Scorer) Params() []float64 {
	s.muLearning.RLock()
	defer s.muLearning.RUnlock()
	var params []float64
	for _, v := range s.trainableVariables() {
		tensors.ConstFlatData(v.Value(), func(flat []float32) {
			for _, value := range flat {
				params = append(params, float64(value))
			}
		})
	}
	return params
}
