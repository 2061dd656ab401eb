package state_test

import (
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestGameState(t *testing.T) {
	assert.Equal(t, YellowWon, Won(Yellow))
	assert.Equal(t, Won(Yellow), Won(Player(2)))
	assert.Equal(t, "Won(Yellow)", Won(Yellow).String())
	assert.Equal(t, Red, Won(Red).Winner())
	assert.Equal(t, NoPlayer, Draw.Winner())
	assert.False(t, InProgress.IsFinished())
	assert.True(t, Draw.IsFinished())

	assert.Equal(t, 1.0, Won(Red).Reward(Red))
	assert.Equal(t, -1.0, Won(Red).Reward(Yellow))
	assert.Equal(t, 0.0, Draw.Reward(Yellow))
}

func TestPlayer(t *testing.T) {
	assert.Equal(t, Yellow, Red.Opponent())
	assert.Equal(t, Red, Yellow.Opponent())
	for _, name := range []string{"red", "Red", "1"} {
		p, err := ParsePlayer(name)
		require.NoError(t, err)
		assert.Equal(t, Red, p)
	}
	_, err := ParsePlayer("blue")
	require.Error(t, err)
}

func TestBitboard(t *testing.T) {
	var b Bitboard
	b.Set(62, 2)
	b.Set(64, 1)
	b.Set(126, 2)
	assert.Equal(t, uint8(2), b.Get(62))
	assert.Equal(t, uint8(1), b.Get(64))
	assert.Equal(t, uint8(2), b.Get(126))
	assert.Equal(t, uint8(0), b.Get(0))

	// Shifts crossing the 64 bits boundary.
	shifted := b.Lsh(2)
	assert.Equal(t, uint8(2), shifted.Get(64))
	assert.Equal(t, uint8(1), shifted.Get(66))
	assert.Equal(t, uint8(0), shifted.Get(0))
	back := shifted.Rsh(2)
	assert.Equal(t, uint8(2), back.Get(62))
	assert.Equal(t, uint8(1), back.Get(64))
	assert.Equal(t, uint8(0), back.Get(124))
	assert.Equal(t, uint8(2), b.Rsh(64).Get(62))
	assert.Equal(t, uint8(1), Bitboard{Lo: 1}.Lsh(100).Get(100))

	b.Set(62, 0)
	b.Set(64, 0)
	b.Set(126, 0)
	assert.True(t, b.IsZero())
}
