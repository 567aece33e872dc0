package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicolala/chess-arena/models"
)

type matchmakingFixture struct {
	svc        MatchmakingService
	queueRepo  *fakeQueueRepo
	playerRepo *fakePlayerRepo
	gameRepo   *fakeGameRepo
	publisher  *fakePublisher
}

func newMatchmakingFixture() *matchmakingFixture {
	f := &matchmakingFixture{
		queueRepo:  newFakeQueueRepo(),
		playerRepo: newFakePlayerRepo(),
		gameRepo:   newFakeGameRepo(),
		publisher:  &fakePublisher{},
	}
	f.svc = NewMatchmakingService(fakeTxRunner{}, f.queueRepo, f.playerRepo, f.gameRepo, f.publisher)
	return f
}

func TestJoinQueueRejectsUnknownTimeControl(t *testing.T) {
	f := newMatchmakingFixture()

	_, err := f.svc.JoinQueue(context.Background(), 1, "hyperbullet")
	require.ErrorIs(t, err, ErrInvalidTimeControl)
}

func TestJoinQueueUnknownPlayer(t *testing.T) {
	f := newMatchmakingFixture()

	_, err := f.svc.JoinQueue(context.Background(), 42, "blitz")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestJoinQueueWaitsWhenEmpty(t *testing.T) {
	f := newMatchmakingFixture()
	p := f.playerRepo.add(1500, 10)

	out, err := f.svc.JoinQueue(context.Background(), p.ID, "blitz")
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Nil(t, out.Game)

	entries, err := f.queueRepo.ListByQueue(context.Background(), models.TimeControlQueueID("blitz"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID, entries[0].PlayerID)
	assert.Equal(t, 1500, entries[0].Elo)
}

func TestJoinQueuePairsWithOldestWaiting(t *testing.T) {
	f := newMatchmakingFixture()
	first := f.playerRepo.add(1500, 10)
	second := f.playerRepo.add(1800, 50)

	_, err := f.svc.JoinQueue(context.Background(), first.ID, "blitz")
	require.NoError(t, err)

	out, err := f.svc.JoinQueue(context.Background(), second.ID, "blitz")
	require.NoError(t, err)
	require.True(t, out.Matched)
	require.NotNil(t, out.Game)

	// FIFO queues pair regardless of rating gap; colors are random, so the
	// game just has to contain both players.
	assert.ElementsMatch(t, []int{first.ID, second.ID}, []int{out.Game.WhiteID, out.Game.BlackID})
	assert.Equal(t, "blitz", out.Game.TimeControl)
	assert.Equal(t, models.GameStatusInProgress, out.Game.Status)
	assert.Nil(t, out.Game.TournamentID)

	entries, err := f.queueRepo.ListByQueue(context.Background(), models.TimeControlQueueID("blitz"))
	require.NoError(t, err)
	assert.Empty(t, entries, "both entries should be consumed by the match")

	matched := f.publisher.eventsOfType("matched")
	require.Len(t, matched, 1)
	assert.Equal(t, "player_1", matched[0].room)
}

func TestJoinQueueSeparateTimeControlsDoNotMix(t *testing.T) {
	f := newMatchmakingFixture()
	first := f.playerRepo.add(1500, 10)
	second := f.playerRepo.add(1500, 10)

	_, err := f.svc.JoinQueue(context.Background(), first.ID, "blitz")
	require.NoError(t, err)

	out, err := f.svc.JoinQueue(context.Background(), second.ID, "rapid")
	require.NoError(t, err)
	assert.False(t, out.Matched)
}

func TestJoinQueueRejoinIsIdempotent(t *testing.T) {
	f := newMatchmakingFixture()
	p := f.playerRepo.add(1500, 10)

	_, err := f.svc.JoinQueue(context.Background(), p.ID, "blitz")
	require.NoError(t, err)
	out, err := f.svc.JoinQueue(context.Background(), p.ID, "blitz")
	require.NoError(t, err)
	assert.False(t, out.Matched, "a player cannot match against themselves")

	entries, err := f.queueRepo.ListByQueue(context.Background(), models.TimeControlQueueID("blitz"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "rejoining refreshes the single entry")
}

func TestLeaveQueueSingleTimeControl(t *testing.T) {
	f := newMatchmakingFixture()
	p := f.playerRepo.add(1500, 10)
	tc := "blitz"

	_, err := f.svc.JoinQueue(context.Background(), p.ID, tc)
	require.NoError(t, err)

	removed, err := f.svc.LeaveQueue(context.Background(), p.ID, &tc)
	require.NoError(t, err)
	assert.True(t, removed)

	// Leaving an empty queue is a no-op, not an error.
	removed, err = f.svc.LeaveQueue(context.Background(), p.ID, &tc)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLeaveQueueAllTimeControls(t *testing.T) {
	f := newMatchmakingFixture()
	p := f.playerRepo.add(1500, 10)

	for _, tc := range []string{"bullet", "blitz", "rapid"} {
		_, err := f.svc.JoinQueue(context.Background(), p.ID, tc)
		require.NoError(t, err)
	}

	removed, err := f.svc.LeaveQueue(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.True(t, removed)

	for _, tc := range []string{"bullet", "blitz", "rapid"} {
		entries, err := f.queueRepo.ListByQueue(context.Background(), models.TimeControlQueueID(tc))
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestLeaveQueueInvalidTimeControl(t *testing.T) {
	f := newMatchmakingFixture()
	tc := "correspondence"

	_, err := f.svc.LeaveQueue(context.Background(), 1, &tc)
	require.ErrorIs(t, err, ErrInvalidTimeControl)
}
