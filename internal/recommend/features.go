package recommend

import (
	"math"
	"strings"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// Selecciones canónicas de un mercado h2h.
const (
	selHome = "home"
	selAway = "away"
	selDraw = "draw"
)

// marketView es la vista agregada del mercado de un evento: cuota media,
// dispersión entre bookmakers y probabilidad fair (sin vig) por selección.
type marketView struct {
	mean map[string]float64
	dev  map[string]float64
	fair map[string]float64
}

// canonicalSelection normaliza la etiqueta de una selección: nombres de
// equipo se mapean a home/away, el resto se devuelve en minúsculas.
func canonicalSelection(selection string, ev domain.Event) string {
	sel := strings.ToLower(strings.TrimSpace(selection))
	switch sel {
	case selHome, selAway, selDraw:
		return sel
	case strings.ToLower(ev.HomeTeam):
		return selHome
	case strings.ToLower(ev.AwayTeam):
		return selAway
	}
	return sel
}

// aggregateMarket agrega las líneas vigentes de un evento por selección:
// media de cuota entre bookmakers, desviación típica, y probabilidades
// implícitas renormalizadas a suma 1 (quita el vig del conjunto).
func aggregateMarket(ev domain.Event, lines []domain.OddsLine) marketView {
	grouped := make(map[string][]float64)
	for _, line := range lines {
		if line.Decimal <= 1 {
			continue
		}
		sel := canonicalSelection(line.Selection, ev)
		grouped[sel] = append(grouped[sel], line.Decimal)
	}

	v := marketView{
		mean: make(map[string]float64, len(grouped)),
		dev:  make(map[string]float64, len(grouped)),
		fair: make(map[string]float64, len(grouped)),
	}

	impliedSum := 0.0
	for sel, odds := range grouped {
		m := meanOf(odds)
		v.mean[sel] = m
		v.dev[sel] = stdDevOf(odds, m)
		v.fair[sel] = 1 / m // implícita cruda, se normaliza abajo
		impliedSum += v.fair[sel]
	}

	if impliedSum > 0 {
		for sel := range v.fair {
			v.fair[sel] /= impliedSum
		}
	}
	return v
}

// buildFeatures deriva el FeatureVector de un evento desde la vista de
// mercado. Todos los proxies (form, h2h, ranking, ventaja de campo) salen
// de las probabilidades fair: el mercado es la única fuente de señal.
func buildFeatures(ev domain.Event, m marketView) domain.FeatureVector {
	f := domain.FeatureVector{
		HomeOdds:     m.mean[selHome],
		AwayOdds:     m.mean[selAway],
		DrawOdds:     m.mean[selDraw],
		HomeFairProb: m.fair[selHome],
		AwayFairProb: m.fair[selAway],
		DrawFairProb: m.fair[selDraw],
		HomeOddsDev:  m.dev[selHome],
		AwayOddsDev:  m.dev[selAway],
		DrawOddsDev:  m.dev[selDraw],
		IsHomeGame:   1,
	}

	f.HomeWinRate = f.HomeFairProb
	f.AwayWinRate = f.AwayFairProb
	f.HomeRecentForm = f.HomeFairProb
	f.AwayRecentForm = f.AwayFairProb

	// H2H sintético: 10 enfrentamientos hipotéticos repartidos según la
	// fuerza implícita relativa de cada lado.
	draws := math.Round(f.DrawFairProb * 10)
	rest := 10 - draws
	twoWay := f.HomeFairProb + f.AwayFairProb
	homeShare := 0.5
	if twoWay > 0 {
		homeShare = f.HomeFairProb / twoWay
	}
	f.H2HHomeWins = math.Round(rest * homeShare)
	f.H2HAwayWins = rest - f.H2HHomeWins
	f.H2HDraws = draws

	// Ranking proxy: 1 (favorito claro) .. 100 (underdog total).
	f.HomeRanking = rankingProxy(f.HomeFairProb)
	f.AwayRanking = rankingProxy(f.AwayFairProb)
	f.RankingDiff = f.HomeRanking - f.AwayRanking

	f.VenueAdvantage = f.HomeFairProb - f.AwayFairProb

	return f
}

// mapLineProbability traduce la probabilidad home del modelo a la selección
// concreta de la línea. Usar la probabilidad home cruda para un empate o
// una línea away sería incorrecto: el modelo solo predice victoria local.
func mapLineProbability(homeProb float64, line domain.OddsLine, ev domain.Event, m marketView) float64 {
	switch canonicalSelection(line.Selection, ev) {
	case selHome:
		return homeProb
	case selDraw:
		// El modelo no predice empates: usamos la fair implícita del mercado.
		return m.fair[selDraw]
	default:
		return 1 - homeProb
	}
}

func rankingProxy(fairProb float64) float64 {
	rank := math.Round((1-fairProb)*99) + 1
	return math.Max(1, math.Min(100, rank))
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdDevOf es la desviación típica poblacional.
func stdDevOf(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}
