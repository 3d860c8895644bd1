package domain

import (
	"math"
	"sort"
	"time"
)

// LedgerSummary agrega el P&L del ledger completo.
// Win rate, staked y returned se calculan solo sobre apuestas graded
// (won+lost); las void no mueven dinero.
type LedgerSummary struct {
	TotalBets     int
	Won           int
	Lost          int
	Pending       int
	Void          int
	WinRate       float64 // porcentaje sobre graded
	TotalStaked   float64
	TotalReturned float64
	NetProfit     float64
	ROI           float64 // porcentaje
	Streak        Streak
}

// Streak es la racha actual de resultados idénticos, de más reciente hacia atrás.
type Streak struct {
	Type  BetStatus // BetWon | BetLost, o "" sin apuestas graded
	Count int
}

// BuildLedgerSummary calcula el resumen agregado a partir del ledger completo.
func BuildLedgerSummary(recs []Recommendation) LedgerSummary {
	s := LedgerSummary{TotalBets: len(recs)}

	var graded []Recommendation
	for _, r := range recs {
		switch r.Status {
		case BetWon:
			s.Won++
		case BetLost:
			s.Lost++
		case BetVoid:
			s.Void++
		default:
			s.Pending++
		}
		if r.Graded() {
			graded = append(graded, r)
			s.TotalStaked += r.Stake
			s.TotalReturned += r.ActualReturn
		}
	}

	if len(graded) > 0 {
		s.WinRate = round2(float64(s.Won) / float64(len(graded)) * 100)
	}
	s.TotalStaked = round2(s.TotalStaked)
	s.TotalReturned = round2(s.TotalReturned)
	s.NetProfit = round2(s.TotalReturned - s.TotalStaked)
	if s.TotalStaked > 0 {
		s.ROI = round2(s.NetProfit / s.TotalStaked * 100)
	}
	s.Streak = currentStreak(graded)

	return s
}

// currentStreak escanea las apuestas graded de más reciente a más antigua
// contando la racha de estados idénticos.
func currentStreak(graded []Recommendation) Streak {
	if len(graded) == 0 {
		return Streak{}
	}

	sorted := make([]Recommendation, len(graded))
	copy(sorted, graded)
	sort.Slice(sorted, func(i, j int) bool {
		return gradedAt(sorted[i]).After(gradedAt(sorted[j]))
	})

	st := Streak{Type: sorted[0].Status}
	for _, r := range sorted {
		if r.Status != st.Type {
			break
		}
		st.Count++
	}
	return st
}

func gradedAt(r Recommendation) time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
