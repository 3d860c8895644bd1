package domain

import "time"

// EventStatus es el ciclo de vida de un evento deportivo.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventFinished EventStatus = "finished"
)

// Event representa un evento deportivo con odds publicadas.
// Lo crea la ingesta de odds; el core solo lo lee, salvo el paso de grading
// que lo marca como finished.
type Event struct {
	ID         string // uuid interno
	ExternalID string // clave estable del proveedor de odds
	Sport      string // sport key del proveedor, p.ej. "soccer_epl"
	HomeTeam   string
	AwayTeam   string
	StartTime  time.Time
	Status     EventStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Name devuelve el nombre legible del evento.
func (e Event) Name() string {
	if e.HomeTeam == "" && e.AwayTeam == "" {
		return e.ExternalID
	}
	return e.HomeTeam + " vs " + e.AwayTeam
}

// HasStarted devuelve true si el evento ya empezó en el instante dado.
func (e Event) HasStarted(now time.Time) bool {
	return !e.StartTime.After(now)
}

// OddsLine es una cuota publicada por un bookmaker para una selección.
// Las líneas viejas de un mismo evento se marcan is_current=false al llegar
// un fetch más fresco; nunca se borran.
type OddsLine struct {
	ID         int64
	EventID    string
	Bookmaker  string
	MarketType string // "h2h", "spread", "total"...
	Selection  string // "home" | "away" | "draw" | nombre del equipo
	Decimal    float64
	IsCurrent  bool
	FetchedAt  time.Time
}

// ImpliedProbability devuelve la probabilidad que codifica la cuota (con vig).
func (l OddsLine) ImpliedProbability() float64 {
	if l.Decimal <= 0 {
		return 0
	}
	return 1 / l.Decimal
}
