package gomlx

import (
	"fmt"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/fourGo/internal/state"
)

// CNN is a small convolutional network on the board cells, followed by two hidden dense layers.
//
// The value is computed as (f(x) - f(-x))/2, where x is the board as seen by the player whose perspective
// is evaluated and f is the network: so swapping the perspective negates the value.
type CNN struct {
	ctx           *context.Context
	width, height int
}

// NewCNN creates a CNN model for boards of the given dimensions, with a fresh context initialized with
// the hyperparameters set to their defaults.
func NewCNN(width, height int) *CNN {
	cnn := &CNN{ctx: context.New(), width: width, height: height}
	cnn.ctx.RngStateReset()
	cnn.ctx.SetParams(map[string]any{
		"batch_size": 64,

		// Convolutions, with 2x2 kernels.
		"conv1_filters": 8,
		"conv2_filters": 16,

		// Hidden dense layers.
		"hidden1_nodes": 70,
		"hidden2_nodes": 50,
	})
	cnn.ctx = cnn.ctx.Checked(false)
	return cnn
}

// Context holds the hyperparameters and the variables of the model.
func (cnn *CNN) Context() *context.Context {
	return cnn.ctx
}

// String implements fmt.Stringer.
func (cnn *CNN) String() string {
	return fmt.Sprintf("CNN(%dx%d, conv=%d/%d, hidden=%d/%d)", cnn.width, cnn.height,
		context.GetParamOr(cnn.ctx, "conv1_filters", 8), context.GetParamOr(cnn.ctx, "conv2_filters", 16),
		context.GetParamOr(cnn.ctx, "hidden1_nodes", 70), context.GetParamOr(cnn.ctx, "hidden2_nodes", 50))
}

// paddedBatchSize returns a padded batchSize for the given numBoards.
// This is important so we don't have too many different versions of the program for every different batch size.
func (cnn *CNN) paddedBatchSize(numBoards int) int {
	// Make sure the default batchSize is supported without padding.
	defaultBatchSize := context.GetParamOr(cnn.ctx, "batch_size", 64)
	if numBoards == defaultBatchSize {
		return numBoards
	}

	paddedSize := 1
	for paddedSize < numBoards {
		// Increase 1.5x at a time.
		paddedSize = paddedSize + (paddedSize+1)/2
	}
	return paddedSize
}

// CreateInputs converts the boards to a tensor shaped [paddedBatchSize, height, width, 1].
func (cnn *CNN) CreateInputs(boards []state.Board, perspective state.Player) *tensors.Tensor {
	paddedBatchSize := cnn.paddedBatchSize(len(boards))
	boardSize := cnn.width * cnn.height
	cells := tensors.FromShape(shapes.Make(dtypes.Float32, paddedBatchSize, cnn.height, cnn.width, 1))
	tensors.MutableFlatData(cells, func(flat []float32) {
		for boardIdx, board := range boards {
			for ii, v := range board.Vectorize(perspective) {
				flat[boardIdx*boardSize+ii] = float32(v)
			}
		}
	})
	return cells
}

// ForwardGraph returns the value of each board, shaped [batchSize].
func (cnn *CNN) ForwardGraph(ctx *context.Context, cells *Node) *Node {
	own := cnn.towerGraph(ctx, cells)
	opponent := cnn.towerGraph(ctx, Neg(cells))
	return MulScalar(Sub(own, opponent), 0.5)
}

// towerGraph is the network itself: it is applied to the board from both points of view.
func (cnn *CNN) towerGraph(ctx *context.Context, x *Node) *Node {
	batchSize := x.Shape().Dim(0)
	x = layers.Convolution(ctx.In("conv1"), x).
		Filters(context.GetParamOr(ctx, "conv1_filters", 8)).
		KernelSize(2).
		PadSame().
		Done()
	x = activations.Relu(x)
	x = layers.Convolution(ctx.In("conv2"), x).
		Filters(context.GetParamOr(ctx, "conv2_filters", 16)).
		KernelSize(2).
		PadSame().
		Done()
	x = activations.Relu(x)
	x = MaxPool(x).Window(2).Done()
	x = Reshape(x, batchSize, -1)
	x = activations.Relu(layers.Dense(ctx.In("hidden1"), x, true, context.GetParamOr(ctx, "hidden1_nodes", 70)))
	x = activations.Relu(layers.Dense(ctx.In("hidden2"), x, true, context.GetParamOr(ctx, "hidden2_nodes", 50)))
	x = layers.Dense(ctx.In("readout"), x, true, 1)
	x.AssertDims(batchSize, 1)
	return Tanh(Squeeze(x, -1))
}
