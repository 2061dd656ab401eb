//go:build !nogomlx

package main

// Include GoMLX backend and the "cnn" evaluator.

import (
	_ "github.com/gomlx/gomlx/backends/default"
	_ "github.com/janpfeifer/fourGo/internal/ai/gomlx"
)
