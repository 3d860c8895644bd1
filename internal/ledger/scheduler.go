// Package ledger runs the recommendation and grading lifecycle: a single
// ticker loop that periodically refreshes odds, records new picks and
// grades pending ledger entries against final scores.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// SelectorService is what the scheduler needs from the recommendation
// selector.
type SelectorService interface {
	Select(ctx context.Context, sport string) ([]domain.Recommendation, error)
}

// Config holds the scheduler intervals and grading parameters.
type Config struct {
	Tick                time.Duration // main loop resolution
	RecordInterval      time.Duration // between selection passes
	GradeInterval       time.Duration // between grading passes
	OddsRefreshInterval time.Duration // between odds ingests
	Sport               string        // empty = every tracked sport
	ScoreLeagues        []string      // league keys polled for results
	MaxLeaguesPerCycle  int           // score API calls per grading pass
	ScoreDaysFrom       int           // lookback window for the scores feed
	ExpiryAfter         time.Duration // pending bets older than this are voided
}

// DefaultConfig returns the production intervals.
func DefaultConfig() Config {
	return Config{
		Tick:                30 * time.Second,
		RecordInterval:      5 * time.Minute,
		GradeInterval:       10 * time.Minute,
		OddsRefreshInterval: 15 * time.Minute,
		ScoreLeagues: []string{
			"soccer_epl",
			"soccer_spain_la_liga",
			"soccer_italy_serie_a",
			"soccer_germany_bundesliga",
			"basketball_nba",
			"americanfootball_nfl",
		},
		MaxLeaguesPerCycle: 4,
		ScoreDaysFrom:      3,
		ExpiryAfter:        48 * time.Hour,
	}
}

// Scheduler coordinates the three periodic jobs. Each job keeps its own
// last-run timestamp, updated only on success so failures retry on the
// next tick instead of waiting a full interval.
type Scheduler struct {
	cfg      Config
	selector SelectorService
	scores   ports.ScoreProvider
	ingestor ports.OddsIngestor
	store    ports.Store
	notifier ports.Notifier

	leagueCursor int // round-robin position over ScoreLeagues

	lastRecord time.Time
	lastGrade  time.Time
	lastOdds   time.Time
}

// New creates a Scheduler. notifier may be nil.
func New(cfg Config, selector SelectorService, scores ports.ScoreProvider, ingestor ports.OddsIngestor, store ports.Store, notifier ports.Notifier) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = 30 * time.Second
	}
	if cfg.RecordInterval <= 0 {
		cfg.RecordInterval = 5 * time.Minute
	}
	if cfg.GradeInterval <= 0 {
		cfg.GradeInterval = 10 * time.Minute
	}
	if cfg.OddsRefreshInterval <= 0 {
		cfg.OddsRefreshInterval = 15 * time.Minute
	}
	if cfg.MaxLeaguesPerCycle <= 0 {
		cfg.MaxLeaguesPerCycle = 4
	}
	if cfg.ScoreDaysFrom <= 0 {
		cfg.ScoreDaysFrom = 3
	}
	if cfg.ExpiryAfter <= 0 {
		cfg.ExpiryAfter = 48 * time.Hour
	}
	return &Scheduler{
		cfg:      cfg,
		selector: selector,
		scores:   scores,
		ingestor: ingestor,
		store:    store,
		notifier: notifier,
	}
}

// Run blocks until ctx is cancelled. The first tick fires immediately so
// a fresh deploy produces picks without waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("ledger: scheduler started",
		"tick", s.cfg.Tick,
		"record_every", s.cfg.RecordInterval,
		"grade_every", s.cfg.GradeInterval,
		"odds_every", s.cfg.OddsRefreshInterval,
	)

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("ledger: scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs whichever jobs are due, in a fixed order: odds first so the
// selection pass sees fresh lines, grading last.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	if now.Sub(s.lastOdds) >= s.cfg.OddsRefreshInterval {
		if err := s.ingestor.FetchAndStoreOdds(ctx); err != nil {
			slog.Warn("ledger: odds refresh failed", "err", err)
		} else {
			s.lastOdds = now
		}
	}

	if now.Sub(s.lastRecord) >= s.cfg.RecordInterval {
		if err := s.RecordOnce(ctx); err != nil {
			slog.Warn("ledger: record pass failed", "err", err)
		} else {
			s.lastRecord = now
		}
	}

	if now.Sub(s.lastGrade) >= s.cfg.GradeInterval {
		if _, err := s.GradeOnce(ctx); err != nil {
			slog.Warn("ledger: grade pass failed", "err", err)
		} else {
			s.lastGrade = now
		}
	}
}

// RecordOnce runs a single selection pass and notifies the picks.
func (s *Scheduler) RecordOnce(ctx context.Context) error {
	recs, err := s.selector.Select(ctx, s.cfg.Sport)
	if err != nil {
		return fmt.Errorf("ledger.RecordOnce: %w", err)
	}
	if len(recs) == 0 {
		slog.Debug("ledger: no picks this pass")
		return nil
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, recs); err != nil {
			slog.Warn("ledger: notify failed", "err", err)
		}
	}
	return nil
}

// GradeOnce runs a single grading pass over every pending entry.
func (s *Scheduler) GradeOnce(ctx context.Context) (GradeSummary, error) {
	summary, err := s.gradePending(ctx)
	if err != nil {
		return summary, fmt.Errorf("ledger.GradeOnce: %w", err)
	}
	if summary.Won+summary.Lost+summary.Void > 0 {
		slog.Info("ledger: grading pass complete",
			"won", summary.Won,
			"lost", summary.Lost,
			"void", summary.Void,
			"still_pending", summary.StillPending,
			"leagues_checked", summary.LeaguesChecked,
		)
	}
	return summary, nil
}

// Summary computes the ledger performance summary from every entry.
func (s *Scheduler) Summary(ctx context.Context) (domain.LedgerSummary, error) {
	recs, err := s.store.Ledger(ctx, 0, "")
	if err != nil {
		return domain.LedgerSummary{}, fmt.Errorf("ledger.Summary: %w", err)
	}
	return domain.BuildLedgerSummary(recs), nil
}
