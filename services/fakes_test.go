package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// fakeTxRunner executes the unit of work directly; the in-memory fakes ignore
// the executor argument entirely.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type publishedEvent struct {
	room      string
	eventType string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(room, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{room: room, eventType: eventType, payload: payload})
}

func (p *fakePublisher) eventsOfType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[int]map[int]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: map[int]map[int]int{}}
}

func (l *fakeLeaderboard) IncrScore(ctx context.Context, tournamentID, playerID, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scores[tournamentID] == nil {
		l.scores[tournamentID] = map[int]int{}
	}
	l.scores[tournamentID][playerID] += delta
	return nil
}

func (l *fakeLeaderboard) Top(ctx context.Context, tournamentID, limit int) ([]models.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]models.LeaderboardEntry, 0, len(l.scores[tournamentID]))
	for playerID, score := range l.scores[tournamentID] {
		entries = append(entries, models.LeaderboardEntry{PlayerID: playerID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[int]*models.Player{}}
}

func (r *fakePlayerRepo) add(elo, gamesPlayed int) *models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p := &models.Player{ID: r.nextID, Elo: elo, GamesPlayed: gamesPlayed, CreatedAt: time.Now()}
	r.players[p.ID] = p
	return p
}

func (r *fakePlayerRepo) Create(ctx context.Context, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.players {
		if existing.Email == p.Email {
			return repositories.ErrPlayerEmailConflict
		}
		if existing.Nickname == p.Nickname {
			return repositories.ErrPlayerNicknameConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	cp := *p
	r.players[p.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) GetRating(ctx context.Context, playerID int) (*models.RatingProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &models.RatingProfile{PlayerID: p.ID, Elo: p.Elo, GamesPlayed: p.GamesPlayed, Age: p.Age}, nil
}

func (r *fakePlayerRepo) UpdateRating(ctx context.Context, exec repositories.SQLExecutor, playerID, elo, gamesPlayed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Elo = elo
	p.GamesPlayed = gamesPlayed
	return nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(ctx context.Context, playerID int, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = &key
	return nil
}

type fakeQueueRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[string][]*models.QueueEntry
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: map[string][]*models.QueueEntry{}}
}

func (r *fakeQueueRepo) Upsert(ctx context.Context, entry *models.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.entries[entry.QueueID]
	for i, e := range queue {
		if e.PlayerID == entry.PlayerID {
			queue = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	r.nextID++
	entry.ID = r.nextID
	entry.LastRangeUpdateAt = time.Now()
	entry.EnqueuedAt = time.Now()
	cp := *entry
	r.entries[entry.QueueID] = append(queue, &cp)
	return nil
}

func (r *fakeQueueRepo) FindOldestWaiting(ctx context.Context, queueID string, excludePlayerID int) (*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries[queueID] {
		if e.PlayerID != excludePlayerID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrQueueEntryNotFound
}

func (r *fakeQueueRepo) ListByQueue(ctx context.Context, queueID string) ([]*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.QueueEntry, 0, len(r.entries[queueID]))
	for _, e := range r.entries[queueID] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeQueueRepo) UpdateWindow(ctx context.Context, id, eloMin, eloMax int, lastRangeUpdateAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, queue := range r.entries {
		for _, e := range queue {
			if e.ID == id {
				e.EloMin = eloMin
				e.EloMax = eloMax
				e.LastRangeUpdateAt = lastRangeUpdateAt
				return nil
			}
		}
	}
	return repositories.ErrQueueEntryNotFound
}

func (r *fakeQueueRepo) Delete(ctx context.Context, queueID string, playerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.entries[queueID]
	for i, e := range queue {
		if e.PlayerID == playerID {
			r.entries[queueID] = append(queue[:i], queue[i+1:]...)
			return nil
		}
	}
	return repositories.ErrQueueEntryNotFound
}

func (r *fakeQueueRepo) DeleteByPlayer(ctx context.Context, playerID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for queueID, queue := range r.entries {
		if !strings.HasPrefix(queueID, "tc:") {
			continue
		}
		kept := queue[:0]
		for _, e := range queue {
			if e.PlayerID == playerID {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		r.entries[queueID] = kept
	}
	return removed, nil
}

func (r *fakeQueueRepo) ClaimPair(ctx context.Context, exec repositories.SQLExecutor, queueID string, playerA, playerB int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.entries[queueID]
	kept := make([]*models.QueueEntry, 0, len(queue))
	claimed := 0
	for _, e := range queue {
		if e.PlayerID == playerA || e.PlayerID == playerB {
			claimed++
			continue
		}
		kept = append(kept, e)
	}
	if claimed != 2 {
		return repositories.ErrQueuePairClaimed
	}
	r.entries[queueID] = kept
	return nil
}

type fakeGameRepo struct {
	mu     sync.Mutex
	nextID int
	games  map[int]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: map[int]*models.Game{}}
}

func (r *fakeGameRepo) Create(ctx context.Context, exec repositories.SQLExecutor, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	game.ID = r.nextID
	if game.Status == "" {
		game.Status = models.GameStatusInProgress
	}
	game.CreatedAt = time.Now()
	cp := *game
	r.games[game.ID] = &cp
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGameRepo) Finish(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.GameStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	if g.Status != from {
		return repositories.ErrGameAlreadyFinished
	}
	g.Status = to
	now := time.Now()
	g.FinishedAt = &now
	return nil
}

func (r *fakeGameRepo) ListBySession(ctx context.Context, sessionID int) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Game
	for _, g := range r.games {
		if g.SessionID != nil && *g.SessionID == sessionID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGameRepo) ListStarvedByTournament(ctx context.Context, tournamentID int, cutoff time.Time) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Game
	for _, g := range r.games {
		if g.TournamentID == nil || *g.TournamentID != tournamentID {
			continue
		}
		if g.Status == models.GameStatusInProgress && g.MoveCount == 0 && g.CreatedAt.Before(cutoff) {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// backdate shifts a game's creation time so starvation sweeps pick it up.
func (r *fakeGameRepo) backdate(id int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.games[id]; ok {
		g.CreatedAt = g.CreatedAt.Add(-d)
	}
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) ListActive(ctx context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.TournamentStatusActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	nextID       int
	participants map[int]*models.TournamentParticipant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: map[int]*models.TournamentParticipant{}}
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *models.TournamentParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.PlayerID == p.PlayerID {
			return repositories.ErrParticipantConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id int) (*models.TournamentParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) FindByPlayerAndTournament(ctx context.Context, playerID, tournamentID int) (*models.TournamentParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.PlayerID == playerID && p.TournamentID == tournamentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TournamentParticipant
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *fakeParticipantRepo) ReserveGameSlot(ctx context.Context, exec repositories.SQLExecutor, id, cap int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	if p.ActiveGameCount >= cap {
		return repositories.ErrParticipantGameCap
	}
	p.ActiveGameCount++
	return nil
}

func (r *fakeParticipantRepo) ReleaseGameSlot(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	if p.ActiveGameCount > 0 {
		p.ActiveGameCount--
	}
	return nil
}

func (r *fakeParticipantRepo) ApplyScoreDelta(ctx context.Context, exec repositories.SQLExecutor, id, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Score += delta
	return nil
}

func (r *fakeParticipantRepo) ConsumeLife(ctx context.Context, exec repositories.SQLExecutor, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return false, nil
	}
	if p.LivesRemaining == nil || p.EliminatedAt != nil {
		return false, nil
	}
	before := *p.LivesRemaining
	after := before - 1
	if after < 0 {
		after = 0
	}
	*p.LivesRemaining = after
	if before <= 1 {
		now := time.Now()
		p.EliminatedAt = &now
		return true, nil
	}
	return false, nil
}

type fakeScoreEventRepo struct {
	mu     sync.Mutex
	nextID int
	events []*models.ScoreEvent
}

func newFakeScoreEventRepo() *fakeScoreEventRepo {
	return &fakeScoreEventRepo{}
}

func (r *fakeScoreEventRepo) Create(ctx context.Context, exec repositories.SQLExecutor, event *models.ScoreEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	event.CreatedAt = time.Now()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeScoreEventRepo) ListByParticipant(ctx context.Context, participantID int) ([]*models.ScoreEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ScoreEvent
	for _, e := range r.events {
		if e.ParticipantID == participantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMatchmakingEventRepo struct {
	mu     sync.Mutex
	nextID int
	events []*models.MatchmakingEvent
}

func newFakeMatchmakingEventRepo() *fakeMatchmakingEventRepo {
	return &fakeMatchmakingEventRepo{}
}

func (r *fakeMatchmakingEventRepo) Create(ctx context.Context, event *models.MatchmakingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	event.CreatedAt = time.Now()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeMatchmakingEventRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchmakingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MatchmakingEvent
	for _, e := range r.events {
		if e.TournamentID == tournamentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	mu           sync.Mutex
	nextID       int
	nextPartID   int
	sessions     map[int]*models.Session
	participants map[int][]*models.SessionParticipant
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:     map[int]*models.Session{},
		participants: map[int][]*models.SessionParticipant{},
	}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now()
	cp := *s
	cp.Participants = nil
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id int) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetByInviteCode(ctx context.Context, code string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.InviteCode == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (r *fakeSessionRepo) AddParticipant(ctx context.Context, p *models.SessionParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants[p.SessionID] {
		if existing.PlayerID == p.PlayerID {
			return repositories.ErrSessionParticipantConflict
		}
	}
	r.nextPartID++
	p.ID = r.nextPartID
	p.CreatedAt = time.Now()
	cp := *p
	r.participants[p.SessionID] = append(r.participants[p.SessionID], &cp)
	return nil
}

func (r *fakeSessionRepo) ListParticipants(ctx context.Context, sessionID int) ([]*models.SessionParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.SessionParticipant, 0, len(r.participants[sessionID]))
	for _, p := range r.participants[sessionID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSessionRepo) MarkStarted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if s.Status != models.SessionStatusDraft {
		return repositories.ErrSessionNotDraft
	}
	s.Status = models.SessionStatusStarted
	return nil
}
