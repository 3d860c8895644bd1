package storage

// sqlite.go — persistencia del ledger sobre SQLite puro Go (sin CGo).
//
// Estrategia:
//   - `events`: una fila por evento, upsert por external_id.
//   - `odds`: solo-inserción. Un snapshot nuevo apaga is_current de las
//     líneas anteriores del evento en la misma transacción; nunca se borra.
//   - `recommendations`: el ledger. El grading es monotónico: el UPDATE
//     lleva `AND status = 'pending'` para que una entrada resuelta no se
//     pueda reescribir.
//   - Tiempos como RFC3339 UTC en TEXT: comparables lexicográficamente.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/betbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    sport       TEXT NOT NULL,
    home_team   TEXT NOT NULL,
    away_team   TEXT NOT NULL,
    start_time  TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'upcoming',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS odds (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id     TEXT NOT NULL REFERENCES events(id),
    bookmaker    TEXT NOT NULL,
    market_type  TEXT NOT NULL,
    selection    TEXT NOT NULL,
    odds_decimal REAL NOT NULL,
    is_current   INTEGER NOT NULL DEFAULT 1,
    fetched_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
    id               TEXT PRIMARY KEY,
    event_id         TEXT NOT NULL REFERENCES events(id),
    selection        TEXT NOT NULL,
    recommended_odds REAL NOT NULL,
    confidence       REAL NOT NULL,
    expected_value   REAL NOT NULL,
    risk_score       REAL NOT NULL,
    units            REAL NOT NULL DEFAULT 0,
    stake            REAL NOT NULL DEFAULT 0,
    stake_pct        REAL NOT NULL DEFAULT 0,
    rank             INTEGER NOT NULL DEFAULT 0,
    rationale        TEXT NOT NULL DEFAULT '{}',
    ensemble         TEXT NOT NULL DEFAULT '{}',
    status           TEXT NOT NULL DEFAULT 'pending',
    actual_outcome   TEXT NOT NULL DEFAULT '',
    actual_return    REAL NOT NULL DEFAULT 0,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_start    ON events(status, start_time);
CREATE INDEX IF NOT EXISTS idx_odds_current    ON odds(event_id, is_current);
CREATE INDEX IF NOT EXISTS idx_recs_status     ON recommendations(status);
CREATE INDEX IF NOT EXISTS idx_recs_dedup      ON recommendations(event_id, selection, created_at);
`

// SQLiteStorage implementa ports.Store usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema. ":memory:" sirve para tests.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- events ---

// UpsertEvent inserta el evento o actualiza sus datos por external_id.
// El status existente se respeta: un re-fetch no resucita eventos finished.
func (s *SQLiteStorage) UpsertEvent(ctx context.Context, ev domain.Event) (string, error) {
	now := formatTime(time.Now().UTC())
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, external_id, sport, home_team, away_team, start_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			sport      = excluded.sport,
			home_team  = excluded.home_team,
			away_team  = excluded.away_team,
			start_time = excluded.start_time,
			updated_at = excluded.updated_at
	`,
		ev.ID, ev.ExternalID, ev.Sport, ev.HomeTeam, ev.AwayTeam,
		formatTime(ev.StartTime), string(domain.EventUpcoming), now, now,
	); err != nil {
		return "", fmt.Errorf("storage.UpsertEvent: %s: %w", ev.ExternalID, err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM events WHERE external_id = ?`, ev.ExternalID,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("storage.UpsertEvent: select id: %w", err)
	}
	return id, nil
}

// UpcomingEvents devuelve eventos upcoming con start_time en [from, to].
func (s *SQLiteStorage) UpcomingEvents(ctx context.Context, from, to time.Time, sport string) ([]domain.Event, error) {
	query := `
		SELECT id, external_id, sport, home_team, away_team, start_time, status, created_at, updated_at
		FROM events
		WHERE status = 'upcoming' AND start_time BETWEEN ? AND ?`
	args := []any{formatTime(from), formatTime(to)}
	if sport != "" {
		query += ` AND sport = ?`
		args = append(args, sport)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.UpcomingEvents: query: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.UpcomingEvents: scan row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventByID devuelve el evento con el ID interno dado.
func (s *SQLiteStorage) EventByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, sport, home_team, away_team, start_time, status, created_at, updated_at
		FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("storage.EventByID: %s: %w", id, err)
	}
	return ev, nil
}

// MarkEventFinished transiciona el evento a status=finished.
func (s *SQLiteStorage) MarkEventFinished(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = 'finished', updated_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), id,
	); err != nil {
		return fmt.Errorf("storage.MarkEventFinished: %s: %w", id, err)
	}
	return nil
}

// --- odds ---

// SaveOddsSnapshot apaga is_current de las líneas vigentes del evento e
// inserta las nuevas, todo en una transacción.
func (s *SQLiteStorage) SaveOddsSnapshot(ctx context.Context, eventID string, lines []domain.OddsLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveOddsSnapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE odds SET is_current = 0 WHERE event_id = ? AND is_current = 1`, eventID,
	); err != nil {
		return fmt.Errorf("storage.SaveOddsSnapshot: supersede: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO odds (event_id, bookmaker, market_type, selection, odds_decimal, is_current, fetched_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveOddsSnapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx,
			eventID, line.Bookmaker, line.MarketType, line.Selection,
			line.Decimal, formatTime(line.FetchedAt),
		); err != nil {
			return fmt.Errorf("storage.SaveOddsSnapshot: insert line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveOddsSnapshot: commit: %w", err)
	}
	return nil
}

// CurrentOdds devuelve las líneas is_current del evento.
func (s *SQLiteStorage) CurrentOdds(ctx context.Context, eventID string) ([]domain.OddsLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, bookmaker, market_type, selection, odds_decimal, is_current, fetched_at
		FROM odds
		WHERE event_id = ? AND is_current = 1
		ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("storage.CurrentOdds: query: %w", err)
	}
	defer rows.Close()

	var lines []domain.OddsLine
	for rows.Next() {
		var line domain.OddsLine
		var isCurrent int
		var fetchedAt string
		if err := rows.Scan(
			&line.ID, &line.EventID, &line.Bookmaker, &line.MarketType,
			&line.Selection, &line.Decimal, &isCurrent, &fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.CurrentOdds: scan row: %w", err)
		}
		line.IsCurrent = isCurrent == 1
		line.FetchedAt = parseTime(fetchedAt)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// --- ledger ---

// InsertRecommendation añade una entrada nueva al ledger.
func (s *SQLiteStorage) InsertRecommendation(ctx context.Context, rec domain.Recommendation) error {
	rationale, err := json.Marshal(rec.Rationale)
	if err != nil {
		return fmt.Errorf("storage.InsertRecommendation: marshal rationale: %w", err)
	}
	ensemble, err := json.Marshal(rec.EnsembleScores)
	if err != nil {
		return fmt.Errorf("storage.InsertRecommendation: marshal ensemble: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations
			(id, event_id, selection, recommended_odds, confidence, expected_value,
			 risk_score, units, stake, stake_pct, rank, rationale, ensemble,
			 status, actual_outcome, actual_return, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EventID, rec.Selection, rec.RecommendedOdds,
		rec.ConfidenceScore, rec.ExpectedValue, rec.RiskScore,
		rec.Units, rec.Stake, rec.StakePct, rec.Rank,
		string(rationale), string(ensemble),
		string(rec.Status), rec.ActualOutcome, rec.ActualReturn,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	); err != nil {
		return fmt.Errorf("storage.InsertRecommendation: %s: %w", rec.ID, err)
	}
	return nil
}

// HasRecentRecommendation comprueba el invariante de dedup del ledger.
func (s *SQLiteStorage) HasRecentRecommendation(ctx context.Context, eventID, selection string, since time.Time) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM recommendations
		WHERE event_id = ? AND selection = ? AND created_at >= ?`,
		eventID, selection, formatTime(since),
	).Scan(&count); err != nil {
		return false, fmt.Errorf("storage.HasRecentRecommendation: %w", err)
	}
	return count > 0, nil
}

// PendingRecommendations devuelve todas las entradas pending, las más
// antiguas primero (las más cercanas a resolverse).
func (s *SQLiteStorage) PendingRecommendations(ctx context.Context) ([]domain.Recommendation, error) {
	recs, err := s.queryRecommendations(ctx, `WHERE r.status = 'pending' ORDER BY r.created_at ASC`, 0)
	if err != nil {
		return nil, fmt.Errorf("storage.PendingRecommendations: %w", err)
	}
	return recs, nil
}

// GradeRecommendation resuelve una entrada pending. El WHERE sobre status
// garantiza la monotonía: una entrada ya resuelta no se toca.
func (s *SQLiteStorage) GradeRecommendation(ctx context.Context, id string, status domain.BetStatus, outcome string, actualReturn float64) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE recommendations
		SET status = ?, actual_outcome = ?, actual_return = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), outcome, actualReturn, formatTime(time.Now().UTC()), id,
	); err != nil {
		return fmt.Errorf("storage.GradeRecommendation: %s: %w", id, err)
	}
	return nil
}

// Ledger devuelve las entradas más recientes primero, opcionalmente
// filtradas por estado. limit <= 0 devuelve todo.
func (s *SQLiteStorage) Ledger(ctx context.Context, limit int, status domain.BetStatus) ([]domain.Recommendation, error) {
	where := ``
	if status != "" {
		where = fmt.Sprintf(`WHERE r.status = '%s'`, string(status))
	}
	recs, err := s.queryRecommendations(ctx, where+` ORDER BY r.created_at DESC`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Ledger: %w", err)
	}
	return recs, nil
}

// GradedRecommendations devuelve won/lost, más recientes primero.
func (s *SQLiteStorage) GradedRecommendations(ctx context.Context) ([]domain.Recommendation, error) {
	recs, err := s.queryRecommendations(ctx,
		`WHERE r.status IN ('won', 'lost') ORDER BY r.updated_at DESC`, 0)
	if err != nil {
		return nil, fmt.Errorf("storage.GradedRecommendations: %w", err)
	}
	return recs, nil
}

// queryRecommendations centraliza el SELECT del ledger con JOIN a events
// para desnormalizar nombre, deporte y hora de inicio.
func (s *SQLiteStorage) queryRecommendations(ctx context.Context, tail string, limit int) ([]domain.Recommendation, error) {
	query := `
		SELECT r.id, r.event_id, e.home_team, e.away_team, e.sport, e.start_time,
		       r.selection, r.recommended_odds, r.confidence, r.expected_value,
		       r.risk_score, r.units, r.stake, r.stake_pct, r.rank,
		       r.rationale, r.ensemble, r.status, r.actual_outcome, r.actual_return,
		       r.created_at, r.updated_at
		FROM recommendations r
		JOIN events e ON e.id = r.event_id
		` + tail
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var recs []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		var homeTeam, awayTeam, startTime, rationale, ensemble, status, createdAt, updatedAt string

		if err := rows.Scan(
			&rec.ID, &rec.EventID, &homeTeam, &awayTeam, &rec.Sport, &startTime,
			&rec.Selection, &rec.RecommendedOdds, &rec.ConfidenceScore, &rec.ExpectedValue,
			&rec.RiskScore, &rec.Units, &rec.Stake, &rec.StakePct, &rec.Rank,
			&rationale, &ensemble, &status, &rec.ActualOutcome, &rec.ActualReturn,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rec.EventName = homeTeam + " vs " + awayTeam
		rec.StartTime = parseTime(startTime)
		rec.Status = domain.BetStatus(status)
		rec.CreatedAt = parseTime(createdAt)
		rec.UpdatedAt = parseTime(updatedAt)
		if err := json.Unmarshal([]byte(rationale), &rec.Rationale); err != nil {
			return nil, fmt.Errorf("unmarshal rationale %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(ensemble), &rec.EnsembleScores); err != nil {
			return nil, fmt.Errorf("unmarshal ensemble %s: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// --- helpers internos ---

// scanner cubre sql.Row y sql.Rows para compartir el scan de eventos.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var ev domain.Event
	var startTime, status, createdAt, updatedAt string
	if err := row.Scan(
		&ev.ID, &ev.ExternalID, &ev.Sport, &ev.HomeTeam, &ev.AwayTeam,
		&startTime, &status, &createdAt, &updatedAt,
	); err != nil {
		return domain.Event{}, err
	}
	ev.StartTime = parseTime(startTime)
	ev.Status = domain.EventStatus(status)
	ev.CreatedAt = parseTime(createdAt)
	ev.UpdatedAt = parseTime(updatedAt)
	return ev, nil
}

// formatTime serializa a RFC3339 UTC con precisión de segundos, para que
// el orden lexicográfico en SQLite coincida con el cronológico.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
