package brackets

import "errors"

var ErrNotEnoughParticipants = errors.New("not enough participants to generate pairings (minimum 2)")

// GamePairing is one scheduled game with colors already assigned.
type GamePairing struct {
	WhiteID int
	BlackID int
}

type PairingGenerator interface {
	// GeneratePairings turns an ordered roster of player IDs into the full
	// set of games for the format.
	GeneratePairings(playerIDs []int) ([]GamePairing, error)

	Name() string
}
