package ports

import (
	"context"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// Notifier publica las recomendaciones seleccionadas en cada ciclo.
type Notifier interface {
	Notify(ctx context.Context, recs []domain.Recommendation) error
}
