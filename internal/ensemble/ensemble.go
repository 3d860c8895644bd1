// Package ensemble combina varios modelos de predicción en un consenso
// ponderado. Los modelos se registran una vez al arrancar; después el
// aggregator es de solo lectura y puede compartirse entre goroutines.
package ensemble

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// defaultOdds son las odds placeholder del campo ExpectedValue de
// conveniencia. Quien necesite EV real usa domain.EVWithVig con odds reales.
const defaultOdds = 2.0

type model struct {
	name   string
	weight float64
	source ports.PredictionSource
}

// Aggregator mantiene el registro de modelos con sus pesos relativos.
// El orden de registro decide los desempates del voto de consenso.
type Aggregator struct {
	models []model
}

// New crea un Aggregator vacío.
func New() *Aggregator {
	return &Aggregator{}
}

// Register añade un modelo con su peso relativo. Debe llamarse durante la
// inicialización, antes de compartir el aggregator.
func (a *Aggregator) Register(name string, weight float64, source ports.PredictionSource) {
	a.models = append(a.models, model{name: name, weight: weight, source: source})
	slog.Info("ensemble: model registered", "name", name, "weight", weight)
}

// Predict invoca todos los modelos registrados y combina sus salidas.
// Los modelos que fallan se excluyen de la votación; si fallan todos,
// devuelve el resultado "unknown" en lugar de un error.
func (a *Aggregator) Predict(ctx context.Context, features domain.FeatureVector) domain.PredictionResult {
	type response struct {
		name   string
		weight float64
		pred   domain.SourcePrediction
	}

	var responses []response
	for _, m := range a.models {
		pred, err := m.source.Predict(ctx, features)
		if err != nil {
			slog.Warn("ensemble: model prediction failed", "model", m.name, "err", err)
			continue
		}
		responses = append(responses, response{name: m.name, weight: m.weight, pred: pred})
	}

	if len(responses) == 0 {
		slog.Warn("ensemble: no valid predictions from any model")
		return domain.UnknownPrediction()
	}

	// Renormalizar pesos sobre los modelos que respondieron.
	total := 0.0
	for _, r := range responses {
		total += r.weight
	}

	result := domain.PredictionResult{
		SourcePredictions: make(map[string]string, len(responses)),
		SourceConfidences: make(map[string]float64, len(responses)),
		Weights:           make(map[string]float64, len(responses)),
	}

	// Voto de consenso: suma de peso normalizado por etiqueta idéntica,
	// desempate por orden de registro (primera vista gana).
	voteWeight := make(map[string]float64)
	var voteOrder []string

	for _, r := range responses {
		w := r.weight / total
		result.Weights[r.name] = w
		result.SourcePredictions[r.name] = r.pred.Prediction
		result.SourceConfidences[r.name] = r.pred.Confidence

		result.Confidence += r.pred.Confidence * w
		result.Probability += r.pred.Probability * w

		if _, seen := voteWeight[r.pred.Prediction]; !seen {
			voteOrder = append(voteOrder, r.pred.Prediction)
		}
		voteWeight[r.pred.Prediction] += w
	}

	best := voteOrder[0]
	for _, label := range voteOrder[1:] {
		if voteWeight[label] > voteWeight[best] {
			best = label
		}
	}
	result.Prediction = best

	// EV de conveniencia contra odds placeholder.
	result.ExpectedValue = result.Probability*(defaultOdds-1) - (1 - result.Probability)

	return result
}

// Batch genera predicciones para varios eventos con aislamiento por item:
// Predict nunca devuelve error, así que cada posición recibe su consenso
// (o el fallback "unknown") sin abortar el lote.
func (a *Aggregator) Batch(ctx context.Context, features []domain.FeatureVector) []domain.PredictionResult {
	results := make([]domain.PredictionResult, 0, len(features))
	for _, f := range features {
		results = append(results, a.Predict(ctx, f))
	}
	return results
}

// Models devuelve los nombres registrados, en orden de registro.
func (a *Aggregator) Models() []string {
	names := make([]string, 0, len(a.models))
	for _, m := range a.models {
		names = append(names, m.name)
	}
	return names
}
