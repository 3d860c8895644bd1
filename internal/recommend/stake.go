package recommend

import (
	"math"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// stakeFor calcula el stake en dólares y su porcentaje de bankroll:
// quarter-Kelly escalado por la confianza (= probabilidad mapeada),
// con techo de porcentaje y acotado al rango [Min, Max] en dólares.
func (s *Selector) stakeFor(probability, decimalOdds float64) (amount, pct float64) {
	quarterKelly := domain.KellyFraction(probability, decimalOdds, domain.DefaultKellyFraction)

	adjusted := math.Min(quarterKelly*probability, s.cfg.Stake.MaxPct)

	amount = s.cfg.Stake.Bankroll * adjusted
	amount = math.Max(s.cfg.Stake.Min, math.Min(amount, s.cfg.Stake.Max))

	return round2(amount), round2(adjusted * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
