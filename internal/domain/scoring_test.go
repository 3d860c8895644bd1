package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- UnitSize ---

func TestUnitSize_BelowConfidenceThreshold(t *testing.T) {
	assert.Equal(t, 0.0, UnitSize(0.69, 1.20, 0.2, 5))
	assert.Equal(t, 0.0, UnitSize(0.50, 1.50, 0.1, 5))
}

func TestUnitSize_Basic(t *testing.T) {
	// edge=0.15 → base = 0.10×10 + 0.15×5 + 0.7×2 - 0.3×0.5 = 1 + 0.75 + 1.4 - 0.15 = 3.0
	assert.Equal(t, 3.0, UnitSize(0.75, 1.15, 0.3, 5))
}

func TestUnitSize_ClampedToMax(t *testing.T) {
	assert.Equal(t, 5.0, UnitSize(0.95, 1.50, 0.1, 5))
}

func TestUnitSize_FloorAtHalfUnit(t *testing.T) {
	// Confianza justa y riesgo altísimo: base negativa, pero nunca < 0.5
	assert.Equal(t, 0.5, UnitSize(0.70, 1.01, 0.95, 5))
}

func TestUnitSize_RoundsToHalfUnit(t *testing.T) {
	units := UnitSize(0.72, 1.08, 0.4, 5)
	assert.Equal(t, 0.0, mod(units, 0.5))
}

// --- EVWithVig ---

func TestEVWithVig_StandardVig(t *testing.T) {
	// payout efectivo = 2.0×0.9524 = 1.9048
	// ev = 0.6×1.9048 - 0.4 = 0.74288 → resultado 1.74288
	assert.InDelta(t, 1.74288, EVWithVig(0.60, 2.0, 0.0476), 1e-4)
}

func TestEVWithVig_NoVig(t *testing.T) {
	// Sin vig y moneda justa a 2.0: ev = 0.5×2 - 0.5 = 0.5 → 1.5
	assert.InDelta(t, 1.5, EVWithVig(0.50, 2.0, 0), 1e-9)
}

func TestEVWithVig_ZeroProbability(t *testing.T) {
	// p=0: pierdes siempre → 1 + (0 - 1) = 0
	assert.InDelta(t, 0.0, EVWithVig(0, 2.0, 0.0476), 1e-9)
}

// --- InverseFilter ---

func TestInverseFilter_Accepts(t *testing.T) {
	ok, reason := InverseFilter(0.75, 1.15, 0.35, 0.65, 1.05, 0.7)
	assert.True(t, ok)
	assert.Equal(t, "passes all filters", reason)
}

func TestInverseFilter_LowConfidence(t *testing.T) {
	ok, reason := InverseFilter(0.60, 1.20, 0.3, 0.65, 1.05, 0.7)
	assert.False(t, ok)
	assert.Contains(t, reason, "low confidence")
}

func TestInverseFilter_LowEdge(t *testing.T) {
	ok, reason := InverseFilter(0.75, 1.02, 0.3, 0.65, 1.05, 0.7)
	assert.False(t, ok)
	assert.Contains(t, reason, "low edge")
}

func TestInverseFilter_HighRisk(t *testing.T) {
	ok, reason := InverseFilter(0.75, 1.15, 0.85, 0.65, 1.05, 0.7)
	assert.False(t, ok)
	assert.Contains(t, reason, "high risk")
}

func TestInverseFilter_Overconfidence(t *testing.T) {
	// Pasa los umbrales individuales pero conf>0.85 con edge<10%
	ok, reason := InverseFilter(0.90, 1.05, 0.35, 0.65, 1.05, 0.7)
	assert.False(t, ok)
	assert.Contains(t, reason, "overconfidence")
}

func TestInverseFilter_FalseSecurity(t *testing.T) {
	ok, reason := InverseFilter(0.80, 1.11, 0.2, 0.65, 1.05, 0.7)
	assert.False(t, ok)
	assert.Contains(t, reason, "false security")
}

// --- CompositeScore ---

func TestCompositeScore_DefaultWeights(t *testing.T) {
	// evScore = 0.15×5 = 0.75; riskAdj = 0.7×1.15 = 0.805
	// 0.40×0.75 + 0.35×0.75 + 0.25×0.805 = 0.76375
	score := CompositeScore(0.75, 1.15, 0.3, DefaultScoreWeights())
	assert.InDelta(t, 0.76375, score, 1e-9)
}

func TestCompositeScore_OrdersByQuality(t *testing.T) {
	w := DefaultScoreWeights()
	better := CompositeScore(0.80, 1.20, 0.2, w)
	worse := CompositeScore(0.70, 1.06, 0.5, w)
	assert.Greater(t, better, worse)
}

// --- KellyFraction ---

func TestKellyFraction_QuarterKelly(t *testing.T) {
	// b=1, kelly=(0.6-0.4)/1=0.20 → ×0.25 = 0.05
	assert.InDelta(t, 0.05, KellyFraction(0.60, 2.0, 0.25), 1e-9)
}

func TestKellyFraction_NegativeEdgeIsZero(t *testing.T) {
	assert.Equal(t, 0.0, KellyFraction(0.40, 2.0, 0.25))
}

func TestKellyFraction_CappedAtMax(t *testing.T) {
	// Edge enorme con fraction=1: sin cap saldría >0.20
	assert.Equal(t, MaxKellyStake, KellyFraction(0.90, 3.0, 1.0))
}

func TestKellyFraction_InvalidOdds(t *testing.T) {
	assert.Equal(t, 0.0, KellyFraction(0.60, 1.0, 0.25))
	assert.Equal(t, 0.0, KellyFraction(0.60, 0.5, 0.25))
}

// --- StreakAdjustment ---

func TestStreakAdjustment_TooFewResults(t *testing.T) {
	assert.Equal(t, 2.0, StreakAdjustment([]bool{true, true}, 2.0, 0.5))
	assert.Equal(t, 2.0, StreakAdjustment(nil, 2.0, 0.5))
}

func TestStreakAdjustment_HotStreak(t *testing.T) {
	results := []bool{true, true, true, true, true, true, true, false, false, true} // 8/10
	assert.Equal(t, 2.5, StreakAdjustment(results, 2.0, 0.5))
}

func TestStreakAdjustment_ColdStreak(t *testing.T) {
	results := []bool{false, false, false, true, false, false, false, true, false, false} // 2/10
	assert.Equal(t, 1.5, StreakAdjustment(results, 2.0, 0.5))
}

func TestStreakAdjustment_NeutralStreak(t *testing.T) {
	results := []bool{true, false, true, false, true, false} // 50%
	assert.Equal(t, 2.0, StreakAdjustment(results, 2.0, 0.5))
}

func TestStreakAdjustment_OnlyLastTenCount(t *testing.T) {
	// 5 derrotas antiguas seguidas de 10 victorias: solo cuentan las 10 últimas
	results := append([]bool{false, false, false, false, false},
		true, true, true, true, true, true, true, true, true, true)
	assert.Equal(t, 2.5, StreakAdjustment(results, 2.0, 0.5))
}

func TestStreakAdjustment_NeverBelowHalfUnit(t *testing.T) {
	results := []bool{false, false, false}
	assert.Equal(t, 0.5, StreakAdjustment(results, 0.5, 0.5))
}

func mod(a, b float64) float64 {
	n := int(a / b)
	return a - float64(n)*b
}
