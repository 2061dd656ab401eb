package main

import (
	"context"
	"github.com/janpfeifer/fourGo/internal/learner"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

// setFlag sets the flag value for the duration of the test.
func setFlag[T any](t *testing.T, flag *T, value T) {
	previous := *flag
	*flag = value
	t.Cleanup(func() { *flag = previous })
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	setFlag(t, flagDepth, 1)
	setFlag(t, flagParallelism, 2)
	dir := t.TempDir()
	a, b, c := filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"), filepath.Join(dir, "c.yaml")

	require.NoError(t, run(ctx, "create", []string{a}))
	require.NoError(t, run(ctx, "create", []string{b, "lines"}))
	recordA, err := learner.LoadRecord(a, "consecutive")
	require.NoError(t, err)
	assert.Equal(t, Drop4Name, recordA.Game)
	assert.Equal(t, 1, recordA.Depth)
	assert.NotEmpty(t, recordA.ID)
	_, err = learner.LoadRecord(b, "lines")
	require.NoError(t, err)

	require.NoError(t, run(ctx, "self-play", []string{a, "2", b}))
	recordA2, err := learner.LoadRecord(a, "")
	require.NoError(t, err)
	assert.Len(t, recordA2.Scores, 2)
	assert.Equal(t, recordA.ID, recordA2.ID)
	assert.NotEqual(t, recordA.Evaluator.Checksum, recordA2.Evaluator.Checksum, "weights should have been updated")

	require.NoError(t, run(ctx, "train-against", []string{a, b, "2"}))
	recordA2, err = learner.LoadRecord(a, "")
	require.NoError(t, err)
	assert.Len(t, recordA2.Scores, 4)

	require.NoError(t, run(ctx, "compare", []string{a, b, "4", "1"}))

	// Push4 agents can't be matched with Drop4 agents.
	setFlag(t, flagGame, Push4Name)
	require.NoError(t, run(ctx, "create", []string{c, "simple"}))
	require.NoError(t, run(ctx, "self-play", []string{c, "1"}))
	require.Error(t, run(ctx, "train-against", []string{a, c, "1"}))
	require.Error(t, run(ctx, "compare", []string{c, b}))

	setFlag(t, flagEvaluatorCheck, "lines")
	require.Error(t, run(ctx, "self-play", []string{a, "1"}))
}

func TestCommandErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	require.Error(t, run(ctx, "train", []string{a}))
	require.Error(t, run(ctx, "create", nil))
	require.Error(t, run(ctx, "play", []string{a, a}))
	require.Error(t, run(ctx, "self-play", []string{a, "1"}), "agent file doesn't exist")

	require.NoError(t, run(ctx, "create", []string{a, "simple"}))
	require.Error(t, run(ctx, "self-play", []string{a, "0"}))
	require.Error(t, run(ctx, "self-play", []string{a, "x"}))
	require.Error(t, run(ctx, "create", []string{a, "unknown_evaluator"}))

	setFlag(t, flagGame, "chess")
	require.Error(t, run(ctx, "create", []string{a}))
	setFlag(t, flagGame, Drop4Name)
	setFlag(t, flagLambda, 2.0)
	require.Error(t, run(ctx, "create", []string{a}))
	setFlag(t, flagLambda, 0.5)
	setFlag(t, flagEpsilon, -1.0)
	require.Error(t, run(ctx, "create", []string{a}))
	setFlag(t, flagGreedy, true)
	require.NoError(t, run(ctx, "create", []string{a}))
}
