// Package evaluators registers the pure Go evaluators ("simple", "lines" and "consecutive"), and can be
// included in any front-end for fourGo.
//
// The convolutional evaluator ("cnn") lives in package gomlx and needs a GoMLX backend: binaries include it
// separately, so it can be excluded with the "nogomlx" build tag.
package evaluators

import (
	_ "github.com/janpfeifer/fourGo/internal/ai/heuristics"
	_ "github.com/janpfeifer/fourGo/internal/ai/linear"
)
