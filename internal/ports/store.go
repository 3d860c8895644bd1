package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// EventStore persiste y consulta eventos deportivos.
type EventStore interface {
	// UpsertEvent inserta o actualiza un evento por external_id y devuelve su ID.
	UpsertEvent(ctx context.Context, ev domain.Event) (string, error)

	// UpcomingEvents devuelve eventos upcoming con start_time en [from, to].
	// sport vacío = todos los deportes.
	UpcomingEvents(ctx context.Context, from, to time.Time, sport string) ([]domain.Event, error)

	// EventByID devuelve el evento con el ID interno dado.
	EventByID(ctx context.Context, id string) (domain.Event, error)

	// MarkEventFinished transiciona el evento a status=finished.
	MarkEventFinished(ctx context.Context, id string) error
}

// OddsStore persiste snapshots de cuotas.
type OddsStore interface {
	// SaveOddsSnapshot marca las líneas vigentes del evento como superadas
	// e inserta las nuevas con is_current=true, todo en una transacción.
	SaveOddsSnapshot(ctx context.Context, eventID string, lines []domain.OddsLine) error

	// CurrentOdds devuelve las líneas is_current del evento.
	CurrentOdds(ctx context.Context, eventID string) ([]domain.OddsLine, error)
}

// LedgerStore persiste el ledger de recomendaciones.
type LedgerStore interface {
	// InsertRecommendation añade una entrada nueva (status=pending).
	InsertRecommendation(ctx context.Context, rec domain.Recommendation) error

	// HasRecentRecommendation comprueba el invariante de dedup:
	// ¿existe ya una entrada (evento, selección) creada desde `since`?
	HasRecentRecommendation(ctx context.Context, eventID, selection string, since time.Time) (bool, error)

	// PendingRecommendations devuelve todas las entradas con status=pending.
	PendingRecommendations(ctx context.Context) ([]domain.Recommendation, error)

	// GradeRecommendation resuelve una entrada pending. El estado es
	// monotónico: si la entrada ya no está pending, no hace nada.
	GradeRecommendation(ctx context.Context, id string, status domain.BetStatus, outcome string, actualReturn float64) error

	// Ledger devuelve las entradas más recientes primero, opcionalmente
	// filtradas por estado. limit <= 0 = sin límite.
	Ledger(ctx context.Context, limit int, status domain.BetStatus) ([]domain.Recommendation, error)

	// GradedRecommendations devuelve won/lost, más recientes primero.
	GradedRecommendations(ctx context.Context) ([]domain.Recommendation, error)
}

// Store agrupa los tres stores; el adapter SQLite implementa los tres
// sobre la misma base de datos.
type Store interface {
	EventStore
	OddsStore
	LedgerStore

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
