package domain

import (
	"fmt"
	"math"
)

// Defaults de scoring compartidos por selector y scheduler.
const (
	// DefaultVigRate es el vig estándar de una línea -110 (4.76%).
	DefaultVigRate = 0.0476
	// DefaultMaxUnits es el tope de unidades por apuesta.
	DefaultMaxUnits = 5.0
	// DefaultKellyFraction es quarter-Kelly, el fraccionamiento conservador habitual.
	DefaultKellyFraction = 0.25
	// MaxKellyStake es el tope absoluto de fracción de bankroll tras fraccionar.
	MaxKellyStake = 0.20
)

// UnitSize calcula las unidades recomendadas para una apuesta.
// Devuelve 0 si la confianza no llega a 0.70 — mejor no apostar.
//
// Fórmula:
//
//	edge = expectedValue - 1.0
//	base = (confidence-0.65)×10 + edge×5 + (1-risk)×2 - risk×0.5
//
// El resultado se acota a [0.5, maxUnits] y se redondea al 0.5 más cercano.
func UnitSize(confidence, expectedValue, riskScore, maxUnits float64) float64 {
	if confidence < 0.70 {
		return 0
	}

	edge := expectedValue - 1.0
	base := (confidence-0.65)*10 + edge*5 + (1-riskScore)*2 - riskScore*0.5

	units := math.Max(0.5, math.Min(maxUnits, base))
	return math.Round(units*2) / 2
}

// EVWithVig calcula el valor esperado incluyendo el vig del bookmaker.
// Devuelve un multiplicador donde 1.0 es el breakeven de la propia fórmula
// (no un EV-neto-sobre-stake estándar; se conserva el contrato tal cual).
//
//	effectivePayout = odds × (1 - vig)
//	ev = p × effectivePayout - (1 - p)
//	resultado = 1 + ev
func EVWithVig(probability, decimalOdds, vigRate float64) float64 {
	effectivePayout := decimalOdds * (1 - vigRate)
	ev := probability*effectivePayout - (1 - probability)
	return 1 + ev
}

// InverseFilter rechaza apuestas que no cumplen los estándares de calidad.
// La filosofía: mejor saltarse una apuesta que hacer una mala.
// Devuelve (acepta, motivo) — el motivo es observabilidad, no un error.
func InverseFilter(confidence, evWithVig, riskScore, minConfidence, minEV, maxRisk float64) (bool, string) {
	if confidence < minConfidence {
		return false, fmt.Sprintf("low confidence: %.1f%% < %.1f%%", confidence*100, minConfidence*100)
	}
	if evWithVig < minEV {
		return false, fmt.Sprintf("low edge: %.1f%% < %.1f%%", (evWithVig-1)*100, (minEV-1)*100)
	}
	if riskScore > maxRisk {
		return false, fmt.Sprintf("high risk: %.1f%% > %.1f%%", riskScore*100, maxRisk*100)
	}

	// Patrones inversos: combinaciones que pasan los umbrales individuales
	// pero que históricamente acaban mal.

	// Confianza alta con edge bajo → el modelo probablemente está sobreconfiado.
	if confidence > 0.85 && evWithVig < 1.10 {
		return false, "high confidence with low edge suggests overconfidence"
	}
	// Riesgo bajo con edge marginal → falsa sensación de seguridad.
	if riskScore < 0.3 && evWithVig < 1.12 {
		return false, "low risk with marginal edge suggests false security"
	}

	return true, "passes all filters"
}

// ScoreWeights pondera los componentes del score compuesto.
type ScoreWeights struct {
	Confidence   float64
	EV           float64
	RiskAdjusted float64
}

// DefaultScoreWeights devuelve los pesos de producción.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Confidence: 0.40, EV: 0.35, RiskAdjusted: 0.25}
}

// CompositeScore calcula el score de ranking de una apuesta candidata.
//
//	evScore = (evWithVig - 1) × 5
//	riskAdjusted = (1 - risk) × evWithVig
//
// Resultado: suma ponderada de confianza, evScore y riskAdjusted.
func CompositeScore(confidence, evWithVig, riskScore float64, w ScoreWeights) float64 {
	evScore := (evWithVig - 1.0) * 5
	riskAdjusted := (1.0 - riskScore) * evWithVig

	return w.Confidence*confidence + w.EV*evScore + w.RiskAdjusted*riskAdjusted
}

// KellyFraction devuelve la fracción de bankroll según el criterio de Kelly,
// fraccionada (0.25 = quarter Kelly) y acotada a [0, MaxKellyStake].
//
//	f = (b×p - q) / b   con b = odds-1, q = 1-p
func KellyFraction(probability, decimalOdds, fraction float64) float64 {
	b := decimalOdds - 1.0
	if b <= 0 {
		return 0
	}
	kelly := (b*probability - (1 - probability)) / b
	return math.Max(0, math.Min(MaxKellyStake, kelly*fraction))
}

// StreakAdjustment ajusta las unidades según la racha reciente.
// Con menos de 3 resultados no ajusta; si no, mira los últimos 10:
// win rate ≥ 0.70 sube 0.5 (capado), ≤ 0.40 baja 0.5 (capado).
// El resultado nunca baja de 0.5 unidades.
func StreakAdjustment(recentResults []bool, baseUnits, maxAdjustment float64) float64 {
	if len(recentResults) < 3 {
		return baseUnits
	}

	recent := recentResults
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	wins := 0
	for _, won := range recent {
		if won {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(recent))

	var adjustment float64
	switch {
	case winRate >= 0.70:
		adjustment = math.Min(maxAdjustment, 0.5)
	case winRate <= 0.40:
		adjustment = -math.Min(maxAdjustment, 0.5)
	}

	return math.Max(0.5, baseUnits+adjustment)
}
