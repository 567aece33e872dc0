package rating

import (
	"math"

	"github.com/magicolala/chess-arena/models"
)

const (
	kProvisional = 40
	kDefault     = 20
	kMaster      = 10

	provisionalGames = 30
	juniorAgeLimit   = 18
	juniorEloCeiling = 2300
	masterEloFloor   = 2400

	// Age assumed when a player never filled it in: adult, never
	// provisional by age.
	defaultAge = 30
)

// ExpectedScore returns the probability-weighted score of a player against an
// opponent under the logistic Elo curve.
func ExpectedScore(playerElo, opponentElo int) float64 {
	return 1.0 / (1.0 + math.Pow(10, -float64(playerElo-opponentElo)/400.0))
}

// KFactor follows the FIDE-style tiers: 40 while provisional (<30 rated games)
// or for juniors rated under 2300, 10 at 2400 and above, 20 otherwise.
func KFactor(currentElo, gamesPlayed int, age *int) int {
	effectiveAge := defaultAge
	if age != nil {
		effectiveAge = *age
	}
	if gamesPlayed < provisionalGames {
		return kProvisional
	}
	if effectiveAge < juniorAgeLimit && currentElo < juniorEloCeiling {
		return kProvisional
	}
	if currentElo >= masterEloFloor {
		return kMaster
	}
	return kDefault
}

// ScoreForOutcome is the actual score from one side's point of view:
// 1 for a win, 0.5 for a draw, 0 for a loss.
func ScoreForOutcome(outcome models.Outcome, isWhite bool) float64 {
	switch outcome {
	case models.OutcomeDraw:
		return 0.5
	case models.OutcomeWhiteWon:
		if isWhite {
			return 1
		}
		return 0
	case models.OutcomeBlackWon:
		if isWhite {
			return 0
		}
		return 1
	}
	return 0
}

// Delta is the signed rating change for one side of a finished game.
func Delta(playerElo, opponentElo int, outcome models.Outcome, kFactor int, isWhite bool) int {
	score := ScoreForOutcome(outcome, isWhite)
	expected := ExpectedScore(playerElo, opponentElo)
	return int(math.Round(float64(kFactor) * (score - expected)))
}

// DeltaForProfile computes the delta for a player using their own K-factor.
func DeltaForProfile(p models.RatingProfile, opponentElo int, outcome models.Outcome, isWhite bool) int {
	k := KFactor(p.Elo, p.GamesPlayed, p.Age)
	return Delta(p.Elo, opponentElo, outcome, k, isWhite)
}
