package domain

// TeamScore es la puntuación reportada de un equipo.
// Score llega como string del proveedor; el grading lo parsea y degrada a
// void si está malformado.
type TeamScore struct {
	Name  string
	Score string
}

// ScoreEvent es un evento del feed de resultados del proveedor.
type ScoreEvent struct {
	ExternalID string
	SportKey   string
	Completed  bool
	Scores     []TeamScore
}
