package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/magicolala/chess-arena/models"
)

// Leaderboard mirrors per-tournament scores into Redis sorted sets. It is a
// cache: the score_events rows stay authoritative, and a cold cache simply
// serves an empty board until scores flow again.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func (l *Leaderboard) IncrScore(ctx context.Context, tournamentID, playerID, delta int) error {
	key := fmt.Sprintf(keyTournamentLeaderboard, tournamentID)
	return l.rdb.ZIncrBy(ctx, key, float64(delta), strconv.Itoa(playerID)).Err()
}

func (l *Leaderboard) Top(ctx context.Context, tournamentID, limit int) ([]models.LeaderboardEntry, error) {
	key := fmt.Sprintf(keyTournamentLeaderboard, tournamentID)
	members, err := l.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		s, ok := m.Member.(string)
		if !ok {
			continue
		}
		playerID, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{PlayerID: playerID, Score: int(m.Score)})
	}
	return entries, nil
}
