package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func gradedRec(status BetStatus, stake, ret float64, gradedAt time.Time) Recommendation {
	return Recommendation{
		Status:       status,
		Stake:        stake,
		ActualReturn: ret,
		UpdatedAt:    gradedAt,
	}
}

func TestBuildLedgerSummary_Empty(t *testing.T) {
	s := BuildLedgerSummary(nil)
	assert.Equal(t, 0, s.TotalBets)
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, Streak{}, s.Streak)
}

func TestBuildLedgerSummary_Counts(t *testing.T) {
	now := time.Now()
	recs := []Recommendation{
		gradedRec(BetWon, 100, 200, now),
		gradedRec(BetLost, 50, 0, now.Add(-time.Hour)),
		gradedRec(BetVoid, 80, 0, now),
		{Status: BetPending, Stake: 30},
	}

	s := BuildLedgerSummary(recs)
	assert.Equal(t, 4, s.TotalBets)
	assert.Equal(t, 1, s.Won)
	assert.Equal(t, 1, s.Lost)
	assert.Equal(t, 1, s.Void)
	assert.Equal(t, 1, s.Pending)
}

func TestBuildLedgerSummary_VoidDoesNotMoveMoney(t *testing.T) {
	now := time.Now()
	recs := []Recommendation{
		gradedRec(BetWon, 100, 250, now),
		gradedRec(BetVoid, 500, 0, now),
	}

	s := BuildLedgerSummary(recs)
	assert.Equal(t, 100.0, s.TotalStaked)
	assert.Equal(t, 250.0, s.TotalReturned)
	assert.Equal(t, 150.0, s.NetProfit)
	assert.Equal(t, 150.0, s.ROI)
	assert.Equal(t, 100.0, s.WinRate)
}

func TestBuildLedgerSummary_ROI(t *testing.T) {
	now := time.Now()
	recs := []Recommendation{
		gradedRec(BetWon, 100, 180, now),
		gradedRec(BetLost, 100, 0, now),
	}

	s := BuildLedgerSummary(recs)
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, 200.0, s.TotalStaked)
	assert.Equal(t, -20.0, s.NetProfit)
	assert.Equal(t, -10.0, s.ROI)
}

func TestBuildLedgerSummary_CurrentStreak(t *testing.T) {
	now := time.Now()
	recs := []Recommendation{
		gradedRec(BetLost, 10, 0, now.Add(-3*time.Hour)),
		gradedRec(BetWon, 10, 25, now.Add(-2*time.Hour)),
		gradedRec(BetWon, 10, 22, now.Add(-time.Hour)),
		gradedRec(BetWon, 10, 19, now),
	}

	s := BuildLedgerSummary(recs)
	assert.Equal(t, BetWon, s.Streak.Type)
	assert.Equal(t, 3, s.Streak.Count)
}

func TestBuildLedgerSummary_StreakIgnoresPendingAndVoid(t *testing.T) {
	now := time.Now()
	recs := []Recommendation{
		gradedRec(BetLost, 10, 0, now.Add(-time.Hour)),
		{Status: BetPending},
		gradedRec(BetVoid, 10, 0, now),
	}

	s := BuildLedgerSummary(recs)
	assert.Equal(t, BetLost, s.Streak.Type)
	assert.Equal(t, 1, s.Streak.Count)
}

func TestProfit_OnlyGraded(t *testing.T) {
	won := gradedRec(BetWon, 100, 180, time.Now())
	assert.Equal(t, 80.0, won.Profit())

	pending := Recommendation{Status: BetPending, Stake: 100}
	assert.Equal(t, 0.0, pending.Profit())
}
