package domain

// FeatureVector son las features de un evento que consumen los modelos.
// Todas se derivan del propio mercado (probabilidades fair + dispersión de
// cuotas entre bookmakers); no hace falta ningún feed de estadísticas externo.
type FeatureVector struct {
	// Cuotas medias entre bookmakers por selección (0 si la selección no cotiza).
	HomeOdds float64
	AwayOdds float64
	DrawOdds float64

	// Probabilidades implícitas sin vig (normalizadas a suma 1).
	HomeFairProb float64
	AwayFairProb float64
	DrawFairProb float64

	// Desviación típica de la cuota de cada selección entre bookmakers.
	// Dispersión alta = el mercado no se pone de acuerdo.
	HomeOddsDev float64
	AwayOddsDev float64
	DrawOddsDev float64

	// Proxies derivados de las probabilidades fair.
	HomeWinRate    float64
	AwayWinRate    float64
	HomeRecentForm float64
	AwayRecentForm float64
	H2HHomeWins    float64
	H2HAwayWins    float64
	H2HDraws       float64
	HomeRanking    float64 // 1 (mejor) .. 100
	AwayRanking    float64
	RankingDiff    float64
	VenueAdvantage float64
	IsHomeGame     float64 // siempre 1: la probabilidad se orienta a home
}

// HasDrawMarket devuelve true si el mercado cotiza el empate.
func (f FeatureVector) HasDrawMarket() bool {
	return f.DrawOdds > 0
}

// MeanOddsDev devuelve la dispersión media entre las selecciones cotizadas.
func (f FeatureVector) MeanOddsDev() float64 {
	var sum float64
	n := 0
	for _, dev := range []float64{f.HomeOddsDev, f.AwayOddsDev, f.DrawOddsDev} {
		if dev > 0 {
			sum += dev
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
