package ports

import (
	"context"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// PredictionSource es un modelo de predicción conectable al ensemble.
// Un error hace que el modelo quede ausente de esa votación, nada más.
type PredictionSource interface {
	Predict(ctx context.Context, features domain.FeatureVector) (domain.SourcePrediction, error)
}
