package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/magicolala/chess-arena/models"
)

// EventPublisher pushes fire-and-forget notifications to connected clients.
// Delivery is best-effort and never affects correctness.
type EventPublisher interface {
	Publish(room, eventType string, payload interface{})
}

// Leaderboard is the cached per-tournament standing, kept alongside the
// authoritative score rows.
type Leaderboard interface {
	IncrScore(ctx context.Context, tournamentID, playerID, delta int) error
	Top(ctx context.Context, tournamentID, limit int) ([]models.LeaderboardEntry, error)
}

var supportedTimeControls = map[string]bool{
	"bullet":    true,
	"blitz":     true,
	"rapid":     true,
	"classical": true,
}

func validTimeControl(tc string) bool {
	return supportedTimeControls[tc]
}

// assignColors gives each matched pair a uniform 50/50 color split.
func assignColors(a, b int) (white, black int) {
	if rand.Intn(2) == 0 {
		return a, b
	}
	return b, a
}

func tournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}
