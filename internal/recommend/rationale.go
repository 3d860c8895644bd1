package recommend

import (
	"fmt"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// buildRationale resume por qué la línea es apostable: tier de confianza,
// tier de edge y desacuerdo modelo-vs-mercado.
func buildRationale(line domain.OddsLine, pred domain.PredictionResult, probability, edge float64) domain.Rationale {
	var reasons []string

	switch {
	case probability > 0.8:
		reasons = append(reasons, "very high model confidence (>80%)")
	case probability > 0.7:
		reasons = append(reasons, "high model confidence (>70%)")
	}

	switch {
	case edge > 0.2:
		reasons = append(reasons, fmt.Sprintf("excellent expected value (+%.1f%%)", edge*100))
	case edge > 0.1:
		reasons = append(reasons, fmt.Sprintf("strong expected value (+%.1f%%)", edge*100))
	case edge > 0.05:
		reasons = append(reasons, fmt.Sprintf("positive expected value (+%.1f%%)", edge*100))
	}

	implied := line.ImpliedProbability()
	if implied > 0 && probability > implied*1.2 {
		reasons = append(reasons, "significant value vs market odds")
	}

	if len(pred.SourceConfidences) >= 3 {
		sum := 0.0
		for _, c := range pred.SourceConfidences {
			sum += c
		}
		if sum/float64(len(pred.SourceConfidences)) > 0.7 {
			reasons = append(reasons, "strong consensus across all models")
		}
	}

	return domain.Rationale{
		Summary:    fmt.Sprintf("recommended %s bet with %.1f%% confidence", line.Selection, probability*100),
		KeyReasons: reasons,
		ValueAnalysis: domain.ValueAnalysis{
			ExpectedValue:      edge,
			ImpliedProbability: implied,
			ModelProbability:   probability,
			Edge:               probability - implied,
		},
	}
}
