package ensemble

import (
	"context"
	"math"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// MarketPrior es el modelo base del ensemble: predice a partir de las
// probabilidades fair del propio mercado. Sirve de votante en despliegues
// sin modelo entrenado y de suelo de calidad cuando sí lo hay.
//
// La confianza combina la fuerza de la probabilidad dominante con el grado
// de acuerdo entre bookmakers: dispersión alta de cuotas = menos confianza.
type MarketPrior struct{}

// NewMarketPrior crea el modelo de prior de mercado.
func NewMarketPrior() *MarketPrior {
	return &MarketPrior{}
}

// maxDevReference es la dispersión a partir de la cual el desacuerdo entre
// bookmakers deja de restar confianza adicional.
const maxDevReference = 0.5

// Predict deriva la predicción del mercado. Probability se orienta a home.
func (m *MarketPrior) Predict(_ context.Context, f domain.FeatureVector) (domain.SourcePrediction, error) {
	label := "home"
	strength := f.HomeFairProb
	if f.AwayFairProb > strength {
		label = "away"
		strength = f.AwayFairProb
	}
	if f.HasDrawMarket() && f.DrawFairProb > strength {
		label = "draw"
		strength = f.DrawFairProb
	}

	// Acuerdo entre bookmakers: 1 = cuotas idénticas, 0 = dispersión máxima.
	agreement := 1 - math.Min(f.MeanOddsDev()/maxDevReference, 1)
	confidence := strength * (0.7 + 0.3*agreement)

	return domain.SourcePrediction{
		Prediction:  label,
		Confidence:  confidence,
		Probability: f.HomeFairProb,
	}, nil
}
