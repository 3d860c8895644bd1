package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// GradeSummary reports what a grading pass did.
type GradeSummary struct {
	Won            int
	Lost           int
	Void           int
	StillPending   int
	Errors         int
	LeaguesChecked int
}

// gradePending resolves pending ledger entries against completed scores.
// State transitions are one-way: a graded entry never goes back to pending.
func (s *Scheduler) gradePending(ctx context.Context) (GradeSummary, error) {
	var summary GradeSummary

	pending, err := s.store.PendingRecommendations(ctx)
	if err != nil {
		return summary, err
	}
	if len(pending) == 0 {
		return summary, nil
	}

	completed := s.fetchCompletedEvents(ctx, &summary)

	now := time.Now().UTC()
	for _, rec := range pending {
		ev, err := s.store.EventByID(ctx, rec.EventID)
		if err != nil {
			slog.Warn("ledger: pending entry references unknown event", "id", rec.ID, "err", err)
			summary.Errors++
			continue
		}

		if ev.StartTime.After(now) {
			summary.StillPending++
			continue
		}

		score, found := completed[ev.ExternalID]
		if !found {
			// No result yet. Past the expiry window we give up and void the
			// bet instead of carrying it forever.
			if now.Sub(ev.StartTime) > s.cfg.ExpiryAfter {
				s.grade(ctx, rec, domain.BetVoid, "expired - no result found", 0, &summary)
				if err := s.store.MarkEventFinished(ctx, ev.ID); err != nil {
					slog.Warn("ledger: mark finished failed", "event", ev.Name(), "err", err)
				}
			} else {
				summary.StillPending++
			}
			continue
		}

		winner, ok := determineWinner(score)
		if err := s.store.MarkEventFinished(ctx, ev.ID); err != nil {
			slog.Warn("ledger: mark finished failed", "event", ev.Name(), "err", err)
		}
		if !ok {
			s.grade(ctx, rec, domain.BetVoid, "no winner determined", 0, &summary)
			continue
		}

		if selectionMatchesWinner(rec.Selection, winner, ev) {
			ret := math.Round(rec.Stake*rec.RecommendedOdds*100) / 100
			s.grade(ctx, rec, domain.BetWon, winner, ret, &summary)
		} else {
			s.grade(ctx, rec, domain.BetLost, winner, 0, &summary)
		}
	}

	return summary, nil
}

// fetchCompletedEvents polls up to MaxLeaguesPerCycle leagues, round-robin
// across grading passes so every tracked league gets covered without
// burning the whole API quota in one cycle.
func (s *Scheduler) fetchCompletedEvents(ctx context.Context, summary *GradeSummary) map[string]domain.ScoreEvent {
	completed := make(map[string]domain.ScoreEvent)
	if len(s.cfg.ScoreLeagues) == 0 {
		return completed
	}

	n := min(s.cfg.MaxLeaguesPerCycle, len(s.cfg.ScoreLeagues))
	for i := 0; i < n; i++ {
		league := s.cfg.ScoreLeagues[(s.leagueCursor+i)%len(s.cfg.ScoreLeagues)]

		events, err := s.scores.GetScores(ctx, league, s.cfg.ScoreDaysFrom)
		if err != nil {
			if errors.Is(err, ports.ErrCreditsExhausted) {
				slog.Warn("ledger: score credits exhausted, skipping remaining leagues", "league", league)
				break
			}
			slog.Warn("ledger: score fetch failed", "league", league, "err", err)
			summary.Errors++
			continue
		}

		summary.LeaguesChecked++
		for _, ev := range events {
			if ev.Completed {
				completed[ev.ExternalID] = ev
			}
		}
	}
	s.leagueCursor = (s.leagueCursor + n) % len(s.cfg.ScoreLeagues)

	return completed
}

func (s *Scheduler) grade(ctx context.Context, rec domain.Recommendation, status domain.BetStatus, outcome string, actualReturn float64, summary *GradeSummary) {
	if err := s.store.GradeRecommendation(ctx, rec.ID, status, outcome, actualReturn); err != nil {
		slog.Warn("ledger: grade failed", "id", rec.ID, "err", err)
		summary.Errors++
		return
	}
	switch status {
	case domain.BetWon:
		summary.Won++
	case domain.BetLost:
		summary.Lost++
	case domain.BetVoid:
		summary.Void++
	}
	slog.Info("ledger: bet graded",
		"event", rec.EventName,
		"selection", rec.Selection,
		"status", status,
		"outcome", outcome,
		"return", actualReturn,
	)
}

// determineWinner picks the winning side from a completed score event.
// Returns "Draw" on a tie and false when scores are missing or malformed.
func determineWinner(ev domain.ScoreEvent) (string, bool) {
	if len(ev.Scores) < 2 {
		return "", false
	}

	best, bestScore := "", -1
	tied := false
	for _, ts := range ev.Scores {
		n, err := strconv.Atoi(strings.TrimSpace(ts.Score))
		if err != nil {
			return "", false
		}
		switch {
		case n > bestScore:
			best, bestScore = ts.Name, n
			tied = false
		case n == bestScore:
			tied = true
		}
	}

	if tied {
		return "Draw", true
	}
	return best, true
}

// selectionMatchesWinner decides whether a ledger selection pays out given
// the winner's name. Handles canonical home/away/draw labels as well as
// team-name selections coming straight from the odds feed.
func selectionMatchesWinner(selection, winner string, ev domain.Event) bool {
	sel := strings.ToLower(strings.TrimSpace(selection))
	win := strings.ToLower(strings.TrimSpace(winner))

	if sel == win {
		return true
	}

	switch sel {
	case "home":
		return win == strings.ToLower(ev.HomeTeam)
	case "away":
		return win == strings.ToLower(ev.AwayTeam)
	case "draw":
		return win == "draw"
	}

	// Odds feeds abbreviate team names inconsistently; fall back to a
	// substring match in both directions.
	return strings.Contains(win, sel) || strings.Contains(sel, win)
}
