package policies

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestGreedy(t *testing.T) {
	p := Greedy{}
	assert.Equal(t, 2, p.Choose([]float64{-1, 0, 3, 2}))
	assert.Equal(t, 0, p.Choose([]float64{math.Inf(1), 0, 3}))
	counts := make([]int, 4)
	for range 400 {
		counts[p.Choose([]float64{1, 5, 0, 5})]++
	}
	assert.Zero(t, counts[0])
	assert.Zero(t, counts[2])
	assert.Greater(t, counts[1], 100)
	assert.Greater(t, counts[3], 100)
	assert.Panics(t, func() { p.Choose(nil) })
}

func TestEpsilonGreedy(t *testing.T) {
	values := []float64{0, 1, 10, 2}

	exploit, err := NewEpsilonGreedy(0)
	require.NoError(t, err)
	for range 100 {
		require.Equal(t, 2, exploit.Choose(values))
	}

	explore, err := NewEpsilonGreedy(1)
	require.NoError(t, err)
	counts := make([]int, len(values))
	for range 2000 {
		counts[explore.Choose(values)]++
	}
	for ii, count := range counts {
		assert.Greater(t, count, 350, "index %d chosen %d times", ii, count)
	}

	mixed, err := NewEpsilonGreedy(0.5)
	require.NoError(t, err)
	counts = make([]int, len(values))
	for range 2000 {
		counts[mixed.Choose(values)]++
	}
	assert.Greater(t, counts[2], 1000)
	assert.Greater(t, counts[0], 100)

	_, err = NewEpsilonGreedy(1.5)
	require.Error(t, err)
	assert.Panics(t, func() { mixed.Choose([]float64{}) })
}

func TestNewAndDecode(t *testing.T) {
	p, err := New("epsilon_greedy,epsilon=0.25")
	require.NoError(t, err)
	assert.Equal(t, &EpsilonGreedy{Epsilon: 0.25}, p)
	payload, err := p.MarshalBinary()
	require.NoError(t, err)
	restored, err := Decode(p.Variant(), payload)
	require.NoError(t, err)
	assert.Equal(t, p, restored)

	p, err = New("epsilon_greedy")
	require.NoError(t, err)
	assert.Equal(t, &EpsilonGreedy{Epsilon: DefaultEpsilon}, p)

	p, err = New("greedy")
	require.NoError(t, err)
	assert.Equal(t, Greedy{}, p)
	restored, err = Decode(GreedyVariant, nil)
	require.NoError(t, err)
	assert.Equal(t, p, restored)

	for _, config := range []string{"softmax", "greedy,epsilon=0.1", "epsilon_greedy,epsilon=x", "epsilon_greedy,epsilon=-1"} {
		_, err = New(config)
		assert.Error(t, err, "New(%q)", config)
	}
	_, err = Decode("epsilon_greedy", []byte("epsilon: [1"))
	assert.Error(t, err)
	_, err = Decode("softmax", nil)
	assert.Error(t, err)
}
