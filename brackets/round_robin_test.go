package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCoinGenerator(heads bool) *RoundRobinGenerator {
	return &RoundRobinGenerator{coin: func() bool { return heads }}
}

func TestGeneratePairingsRejectsTooFewPlayers(t *testing.T) {
	g := NewRoundRobinGenerator()

	_, err := g.GeneratePairings([]int{7})
	require.ErrorIs(t, err, ErrNotEnoughParticipants)

	_, err = g.GeneratePairings(nil)
	require.ErrorIs(t, err, ErrNotEnoughParticipants)
}

func TestGeneratePairingsAllPairsExactlyOnce(t *testing.T) {
	g := NewRoundRobinGenerator()
	players := []int{10, 20, 30, 40, 50}

	pairings, err := g.GeneratePairings(players)
	require.NoError(t, err)
	require.Len(t, pairings, 10) // 5*4/2

	seen := make(map[string]bool)
	for _, p := range pairings {
		assert.NotEqual(t, p.WhiteID, p.BlackID)
		lo, hi := p.WhiteID, p.BlackID
		if lo > hi {
			lo, hi = hi, lo
		}
		key := fmt.Sprintf("%d-%d", lo, hi)
		assert.False(t, seen[key], "pair %s generated twice", key)
		seen[key] = true
	}
	assert.Len(t, seen, 10)
}

func TestGeneratePairingsFourPlayers(t *testing.T) {
	g := NewRoundRobinGenerator()

	pairings, err := g.GeneratePairings([]int{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, pairings, 6)

	appearances := make(map[int]int)
	for _, p := range pairings {
		appearances[p.WhiteID]++
		appearances[p.BlackID]++
	}
	for player, n := range appearances {
		assert.Equal(t, 3, n, "player %d should play everyone else once", player)
	}
}

func TestGeneratePairingsDeterministicOrder(t *testing.T) {
	// With the coin pinned, the schedule follows roster order exactly.
	g := fixedCoinGenerator(true)

	pairings, err := g.GeneratePairings([]int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []GamePairing{
		{WhiteID: 1, BlackID: 2},
		{WhiteID: 1, BlackID: 3},
		{WhiteID: 2, BlackID: 3},
	}, pairings)
}

func TestGeneratePairingsCoinFlipsColors(t *testing.T) {
	g := fixedCoinGenerator(false)

	pairings, err := g.GeneratePairings([]int{1, 2})
	require.NoError(t, err)
	require.Equal(t, []GamePairing{{WhiteID: 2, BlackID: 1}}, pairings)
}
