package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// memStore es un ports.Store mínimo para los tests de grading.
type memStore struct {
	events   map[string]domain.Event
	pending  []domain.Recommendation
	grades   map[string]domain.BetStatus
	returns  map[string]float64
	outcomes map[string]string
	finished map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[string]domain.Event),
		grades:   make(map[string]domain.BetStatus),
		returns:  make(map[string]float64),
		outcomes: make(map[string]string),
		finished: make(map[string]bool),
	}
}

func (m *memStore) UpsertEvent(_ context.Context, ev domain.Event) (string, error) {
	m.events[ev.ID] = ev
	return ev.ID, nil
}

func (m *memStore) UpcomingEvents(context.Context, time.Time, time.Time, string) ([]domain.Event, error) {
	return nil, nil
}

func (m *memStore) EventByID(_ context.Context, id string) (domain.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return domain.Event{}, assert.AnError
	}
	return ev, nil
}

func (m *memStore) MarkEventFinished(_ context.Context, id string) error {
	m.finished[id] = true
	return nil
}

func (m *memStore) SaveOddsSnapshot(context.Context, string, []domain.OddsLine) error { return nil }
func (m *memStore) CurrentOdds(context.Context, string) ([]domain.OddsLine, error)    { return nil, nil }

func (m *memStore) InsertRecommendation(_ context.Context, rec domain.Recommendation) error {
	m.pending = append(m.pending, rec)
	return nil
}

func (m *memStore) HasRecentRecommendation(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}

func (m *memStore) PendingRecommendations(context.Context) ([]domain.Recommendation, error) {
	return m.pending, nil
}

func (m *memStore) GradeRecommendation(_ context.Context, id string, status domain.BetStatus, outcome string, actualReturn float64) error {
	m.grades[id] = status
	m.outcomes[id] = outcome
	m.returns[id] = actualReturn
	return nil
}

func (m *memStore) Ledger(context.Context, int, domain.BetStatus) ([]domain.Recommendation, error) {
	return m.pending, nil
}

func (m *memStore) GradedRecommendations(context.Context) ([]domain.Recommendation, error) {
	return nil, nil
}

func (m *memStore) Close() error { return nil }

// stubScores devuelve resultados fijos por liga.
type stubScores struct {
	events []domain.ScoreEvent
	err    error
	calls  int
}

func (s *stubScores) GetScores(context.Context, string, int) ([]domain.ScoreEvent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func testScheduler(store *memStore, scores ports.ScoreProvider) *Scheduler {
	cfg := DefaultConfig()
	cfg.ScoreLeagues = []string{"soccer_epl"}
	return New(cfg, nil, scores, nil, store, nil)
}

func startedEvent(id, externalID, home, away string, startedAgo time.Duration) domain.Event {
	return domain.Event{
		ID:         id,
		ExternalID: externalID,
		HomeTeam:   home,
		AwayTeam:   away,
		Sport:      "soccer_epl",
		StartTime:  time.Now().UTC().Add(-startedAgo),
		Status:     domain.EventUpcoming,
	}
}

func pendingBet(id, eventID, selection string, stake, odds float64) domain.Recommendation {
	return domain.Recommendation{
		ID:              id,
		EventID:         eventID,
		Selection:       selection,
		Stake:           stake,
		RecommendedOdds: odds,
		Status:          domain.BetPending,
	}
}

func TestGradePending_HomeWin(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 1.85)}

	scores := &stubScores{events: []domain.ScoreEvent{{
		ExternalID: "ext-1",
		Completed:  true,
		Scores: []domain.TeamScore{
			{Name: "Arsenal", Score: "3"},
			{Name: "Chelsea", Score: "1"},
		},
	}}}

	summary, err := testScheduler(store, scores).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Won)
	assert.Equal(t, domain.BetWon, store.grades["bet-1"])
	assert.Equal(t, 185.0, store.returns["bet-1"]) // stake × odds
	assert.True(t, store.finished["ev-1"])
}

func TestGradePending_AwayLoss(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "away", 50, 3.2)}

	scores := &stubScores{events: []domain.ScoreEvent{{
		ExternalID: "ext-1",
		Completed:  true,
		Scores: []domain.TeamScore{
			{Name: "Arsenal", Score: "2"},
			{Name: "Chelsea", Score: "0"},
		},
	}}}

	summary, err := testScheduler(store, scores).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Lost)
	assert.Equal(t, domain.BetLost, store.grades["bet-1"])
	assert.Equal(t, 0.0, store.returns["bet-1"])
}

func TestGradePending_DrawSelection(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "draw", 40, 3.5)}

	scores := &stubScores{events: []domain.ScoreEvent{{
		ExternalID: "ext-1",
		Completed:  true,
		Scores: []domain.TeamScore{
			{Name: "Arsenal", Score: "1"},
			{Name: "Chelsea", Score: "1"},
		},
	}}}

	summary, err := testScheduler(store, scores).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Won)
	assert.Equal(t, 140.0, store.returns["bet-1"])
}

func TestGradePending_FutureEventStaysPending(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", -6*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 2.0)}

	summary, err := testScheduler(store, &stubScores{}).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.StillPending)
	assert.Empty(t, store.grades)
}

func TestGradePending_ExpiredBetIsVoided(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 50*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 2.0)}

	summary, err := testScheduler(store, &stubScores{}).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Void)
	assert.Equal(t, domain.BetVoid, store.grades["bet-1"])
	assert.Equal(t, "expired - no result found", store.outcomes["bet-1"])
	assert.Equal(t, 0.0, store.returns["bet-1"])
	assert.True(t, store.finished["ev-1"])
}

func TestGradePending_RecentNoResultWaits(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 2.0)}

	summary, err := testScheduler(store, &stubScores{}).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.StillPending)
	assert.Empty(t, store.grades)
}

func TestGradePending_MalformedScoresVoid(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 2.0)}

	scores := &stubScores{events: []domain.ScoreEvent{{
		ExternalID: "ext-1",
		Completed:  true,
		Scores: []domain.TeamScore{
			{Name: "Arsenal", Score: "abandoned"},
			{Name: "Chelsea", Score: "1"},
		},
	}}}

	summary, err := testScheduler(store, scores).GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Void)
	assert.Equal(t, "no winner determined", store.outcomes["bet-1"])
}

func TestGradePending_CreditsExhaustedStopsLeagues(t *testing.T) {
	store := newMemStore()
	store.events["ev-1"] = startedEvent("ev-1", "ext-1", "Arsenal", "Chelsea", 3*time.Hour)
	store.pending = []domain.Recommendation{pendingBet("bet-1", "ev-1", "home", 100, 2.0)}

	scores := &stubScores{err: ports.ErrCreditsExhausted}

	cfg := DefaultConfig()
	cfg.ScoreLeagues = []string{"soccer_epl", "basketball_nba", "americanfootball_nfl"}
	sched := New(cfg, nil, scores, nil, store, nil)

	summary, err := sched.GradeOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, scores.calls) // abandona tras la primera liga
	assert.Equal(t, 0, summary.LeaguesChecked)
	assert.Equal(t, 1, summary.StillPending)
}

// --- determineWinner ---

func TestDetermineWinner_HigherScoreWins(t *testing.T) {
	winner, ok := determineWinner(domain.ScoreEvent{Scores: []domain.TeamScore{
		{Name: "Arsenal", Score: "2"},
		{Name: "Chelsea", Score: "1"},
	}})
	assert.True(t, ok)
	assert.Equal(t, "Arsenal", winner)
}

func TestDetermineWinner_Draw(t *testing.T) {
	winner, ok := determineWinner(domain.ScoreEvent{Scores: []domain.TeamScore{
		{Name: "Arsenal", Score: "0"},
		{Name: "Chelsea", Score: "0"},
	}})
	assert.True(t, ok)
	assert.Equal(t, "Draw", winner)
}

func TestDetermineWinner_MissingScores(t *testing.T) {
	_, ok := determineWinner(domain.ScoreEvent{Scores: []domain.TeamScore{{Name: "Arsenal", Score: "2"}}})
	assert.False(t, ok)

	_, ok = determineWinner(domain.ScoreEvent{})
	assert.False(t, ok)
}

func TestDetermineWinner_MalformedScore(t *testing.T) {
	_, ok := determineWinner(domain.ScoreEvent{Scores: []domain.TeamScore{
		{Name: "Arsenal", Score: " 2 "},
		{Name: "Chelsea", Score: "n/a"},
	}})
	assert.False(t, ok)
}

// --- selectionMatchesWinner ---

func TestSelectionMatchesWinner(t *testing.T) {
	ev := domain.Event{HomeTeam: "Arsenal", AwayTeam: "Chelsea"}

	assert.True(t, selectionMatchesWinner("home", "Arsenal", ev))
	assert.True(t, selectionMatchesWinner("away", "Chelsea", ev))
	assert.True(t, selectionMatchesWinner("draw", "Draw", ev))
	assert.True(t, selectionMatchesWinner("Arsenal", "arsenal", ev))
	assert.False(t, selectionMatchesWinner("home", "Chelsea", ev))
	assert.False(t, selectionMatchesWinner("draw", "Arsenal", ev))
}

func TestSelectionMatchesWinner_SubstringFallback(t *testing.T) {
	ev := domain.Event{HomeTeam: "Manchester United FC", AwayTeam: "Chelsea"}
	assert.True(t, selectionMatchesWinner("manchester united", "Manchester United FC", ev))
}
