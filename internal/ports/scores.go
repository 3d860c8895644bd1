package ports

import (
	"context"
	"errors"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// ErrCreditsExhausted señala que el proveedor agotó los créditos de uso.
// Es distinto de un fallo por liga: el scheduler abandona las ligas
// restantes del ciclo en lugar de seguir quemando llamadas.
var ErrCreditsExhausted = errors.New("score provider: usage credits exhausted")

// ScoreProvider consulta resultados de eventos completados.
type ScoreProvider interface {
	// GetScores devuelve los eventos (completados o no) de una liga en los
	// últimos daysFrom días. Cada llamada consume créditos del proveedor.
	GetScores(ctx context.Context, leagueKey string, daysFrom int) ([]domain.ScoreEvent, error)
}
