package brackets

import "math/rand"

// RoundRobinGenerator pairs every participant against every other exactly
// once: n(n-1)/2 games for n players. Pair order is deterministic given the
// roster order (outer index i, inner j > i), so the generated schedule is
// reproducible; only colors are random.
type RoundRobinGenerator struct {
	// coin decides white for the lower-index player; overridable in tests.
	coin func() bool
}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{coin: func() bool { return rand.Intn(2) == 0 }}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) GeneratePairings(playerIDs []int) ([]GamePairing, error) {
	if len(playerIDs) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	pairings := make([]GamePairing, 0, len(playerIDs)*(len(playerIDs)-1)/2)
	for i := 0; i < len(playerIDs); i++ {
		for j := i + 1; j < len(playerIDs); j++ {
			// Each pair gets an independent 50/50 color toss; color counts
			// are not balanced across the schedule.
			p := GamePairing{WhiteID: playerIDs[i], BlackID: playerIDs[j]}
			if !g.coin() {
				p.WhiteID, p.BlackID = p.BlackID, p.WhiteID
			}
			pairings = append(pairings, p)
		}
	}
	return pairings, nil
}
