package domain

// SourcePrediction es la salida de un modelo de predicción individual.
// Prediction es una etiqueta ("home"/"away"/"draw"), Probability es la
// probabilidad de victoria local orientada al equipo de casa.
type SourcePrediction struct {
	Prediction  string
	Confidence  float64 // 0-1
	Probability float64 // 0-1, orientada a home
}

// PredictionResult es el consenso del ensemble para un evento.
// No se persiste: es transitorio entre aggregator y selector.
type PredictionResult struct {
	Prediction    string
	Confidence    float64
	Probability   float64
	ExpectedValue float64 // campo de conveniencia contra odds por defecto; para EV real usar EVWithVig

	SourcePredictions map[string]string
	SourceConfidences map[string]float64
	Weights           map[string]float64 // normalizados sobre los modelos que respondieron

	Failed bool // true si ningún modelo respondió
}

// UnknownPrediction es el fallback cuando todos los modelos fallan.
func UnknownPrediction() PredictionResult {
	return PredictionResult{
		Prediction:        "unknown",
		Confidence:        0,
		Probability:       0.5,
		SourcePredictions: map[string]string{},
		SourceConfidences: map[string]float64{},
		Weights:           map[string]float64{},
		Failed:            true,
	}
}
