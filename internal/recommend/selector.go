// Package recommend implementa el pipeline de selección: eventos próximos →
// odds vigentes → features de mercado → predicción → scoring → filtro →
// ranking → top-N con diversidad por evento → persistencia idempotente.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// Predictor es lo mínimo que el selector necesita del ensemble.
type Predictor interface {
	Predict(ctx context.Context, features domain.FeatureVector) domain.PredictionResult
}

// StakeConfig acota el stake en dólares y como fracción del bankroll.
type StakeConfig struct {
	Bankroll float64
	MaxPct   float64 // techo como fracción del bankroll (0.05 = 5%)
	Min      float64 // suelo en dólares
	Max      float64 // techo en dólares
}

// Config contiene los parámetros del selector.
type Config struct {
	TimeWindow       time.Duration // ventana de eventos próximos
	TopN             int
	MinConfidence    float64
	MinExpectedValue float64
	MaxRiskScore     float64
	// Permissive desactiva el filtro inverso por completo. Es la vía de
	// escape para entornos sin modelo entrenado; en producción, apagado.
	Permissive  bool
	Weights     domain.ScoreWeights
	Stake       StakeConfig
	DedupWindow time.Duration // invariante: 1 pending por (evento, selección) en esta ventana
	VigRate     float64
	MaxUnits    float64
}

// DefaultConfig devuelve los parámetros de producción.
func DefaultConfig() Config {
	return Config{
		TimeWindow:       24 * time.Hour,
		TopN:             3,
		MinConfidence:    0.65,
		MinExpectedValue: 1.05,
		MaxRiskScore:     0.7,
		Weights:          domain.DefaultScoreWeights(),
		Stake:            StakeConfig{Bankroll: 10_000, MaxPct: 0.05, Min: 10, Max: 1000},
		DedupWindow:      12 * time.Hour,
		VigRate:          domain.DefaultVigRate,
		MaxUnits:         domain.DefaultMaxUnits,
	}
}

// Selector genera las recomendaciones top-N de una ventana de tiempo.
// No guarda estado entre invocaciones: cada Select es un pipeline puro
// más la persistencia final.
type Selector struct {
	cfg       Config
	store     ports.Store
	predictor Predictor
}

// New crea un Selector con las dependencias inyectadas.
func New(cfg Config, store ports.Store, predictor Predictor) *Selector {
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = 24 * time.Hour
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = 12 * time.Hour
	}
	return &Selector{cfg: cfg, store: store, predictor: predictor}
}

// candidate es una línea valorada, pendiente de filtro y ranking.
type candidate struct {
	rec        domain.Recommendation
	confidence float64 // 0-1, la probabilidad mapeada a la selección
	evWithVig  float64
	composite  float64
}

// Select ejecuta el pipeline completo para la ventana configurada.
// sport vacío analiza el catálogo entero. Devuelve los picks con rank
// asignado; los duplicados dentro de la ventana de dedup no se reinsertan.
func (s *Selector) Select(ctx context.Context, sport string) ([]domain.Recommendation, error) {
	now := time.Now().UTC()

	events, err := s.store.UpcomingEvents(ctx, now, now.Add(s.cfg.TimeWindow), sport)
	if err != nil {
		return nil, fmt.Errorf("recommend.Select: upcoming events: %w", err)
	}
	if len(events) == 0 {
		slog.Debug("recommend: no upcoming events in window", "window", s.cfg.TimeWindow)
		return nil, nil
	}

	var candidates []candidate
	for _, ev := range events {
		cands, err := s.analyzeEvent(ctx, ev, now)
		if err != nil {
			// Un evento roto no aborta la pasada entera.
			slog.Warn("recommend: event analysis failed", "event", ev.Name(), "err", err)
			continue
		}
		candidates = append(candidates, cands...)
	}

	accepted := s.applyFilter(candidates)

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].composite > accepted[j].composite
	})

	picks := diversify(accepted, s.cfg.TopN)
	recs := s.record(ctx, picks, now)

	slog.Info("recommend: selection complete",
		"events", len(events),
		"candidates", len(candidates),
		"accepted", len(accepted),
		"picked", len(recs),
	)
	return recs, nil
}

// analyzeEvent valora cada línea vigente del evento con una sola llamada
// al ensemble (la misma predicción sirve para todas las líneas).
func (s *Selector) analyzeEvent(ctx context.Context, ev domain.Event, now time.Time) ([]candidate, error) {
	lines, err := s.store.CurrentOdds(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("current odds: %w", err)
	}
	if len(lines) == 0 {
		slog.Debug("recommend: event without current odds", "event", ev.Name())
		return nil, nil
	}

	market := aggregateMarket(ev, lines)
	features := buildFeatures(ev, market)
	pred := s.predictor.Predict(ctx, features)

	cands := make([]candidate, 0, len(lines))
	for _, line := range lines {
		if line.Decimal <= 1 {
			continue
		}

		p := mapLineProbability(pred.Probability, line, ev, market)
		evv := domain.EVWithVig(p, line.Decimal, s.cfg.VigRate)
		edge := evv - 1
		risk := 1 - p
		units := domain.UnitSize(p, evv, risk, s.cfg.MaxUnits)
		stake, stakePct := s.stakeFor(p, line.Decimal)

		cands = append(cands, candidate{
			rec: domain.Recommendation{
				ID:              uuid.New().String(),
				EventID:         ev.ID,
				EventName:       ev.Name(),
				Sport:           ev.Sport,
				StartTime:       ev.StartTime,
				Selection:       line.Selection,
				RecommendedOdds: line.Decimal,
				ConfidenceScore: p * 100,
				ExpectedValue:   edge,
				RiskScore:       risk,
				Units:           units,
				Stake:           stake,
				StakePct:        stakePct,
				Rationale:       buildRationale(line, pred, p, edge),
				EnsembleScores:  pred.SourceConfidences,
				Status:          domain.BetPending,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			confidence: p,
			evWithVig:  evv,
			composite:  domain.CompositeScore(p, evv, risk, s.cfg.Weights),
		})
	}
	return cands, nil
}

// applyFilter pasa cada candidata por el filtro inverso. En modo permissive
// el filtrado se salta entero.
func (s *Selector) applyFilter(cands []candidate) []candidate {
	if s.cfg.Permissive {
		slog.Info("recommend: permissive mode enabled, skipping filters")
		return cands
	}

	accepted := make([]candidate, 0, len(cands))
	rejected := 0
	for _, c := range cands {
		ok, reason := domain.InverseFilter(c.confidence, c.evWithVig, c.rec.RiskScore,
			s.cfg.MinConfidence, s.cfg.MinExpectedValue, s.cfg.MaxRiskScore)
		if !ok {
			rejected++
			slog.Debug("recommend: candidate rejected",
				"event", c.rec.EventName, "selection", c.rec.Selection, "reason", reason)
			continue
		}
		accepted = append(accepted, c)
	}

	if rejected > 0 {
		slog.Info("recommend: inverse filter applied", "rejected", rejected, "accepted", len(accepted))
	}
	return accepted
}

// diversify recorre el ranking eligiendo como mucho una candidata por
// evento, hasta completar topN o agotar la lista.
func diversify(ranked []candidate, topN int) []candidate {
	seen := make(map[string]bool, topN)
	picks := make([]candidate, 0, topN)
	for _, c := range ranked {
		if len(picks) >= topN {
			break
		}
		if seen[c.rec.EventID] {
			continue
		}
		seen[c.rec.EventID] = true
		picks = append(picks, c)
	}
	return picks
}

// record asigna rank, aplica el ajuste por racha y persiste los picks como
// pending. Un pick duplicado dentro de la ventana de dedup se salta en
// silencio: el ledger solo guarda una entrada por (evento, selección).
func (s *Selector) record(ctx context.Context, picks []candidate, now time.Time) []domain.Recommendation {
	streak := s.recentResults(ctx)

	recs := make([]domain.Recommendation, 0, len(picks))
	recorded := 0
	for i, pick := range picks {
		rec := pick.rec
		rec.Rank = i + 1
		if rec.Units > 0 {
			rec.Units = domain.StreakAdjustment(streak, rec.Units, 0.5)
		}
		recs = append(recs, rec)

		dup, err := s.store.HasRecentRecommendation(ctx, rec.EventID, rec.Selection, now.Add(-s.cfg.DedupWindow))
		if err != nil {
			slog.Warn("recommend: dedup check failed", "event", rec.EventName, "err", err)
			continue
		}
		if dup {
			slog.Debug("recommend: skipping duplicate", "event", rec.EventName, "selection", rec.Selection)
			continue
		}

		if err := s.store.InsertRecommendation(ctx, rec); err != nil {
			slog.Warn("recommend: insert failed", "event", rec.EventName, "err", err)
			continue
		}
		recorded++
	}

	if recorded > 0 {
		slog.Info("recommend: recorded new ledger entries", "count", recorded)
	}
	return recs
}

// recentResults devuelve los resultados graded en orden cronológico
// (el más reciente al final), como espera domain.StreakAdjustment.
func (s *Selector) recentResults(ctx context.Context) []bool {
	graded, err := s.store.GradedRecommendations(ctx)
	if err != nil {
		slog.Debug("recommend: streak lookup failed", "err", err)
		return nil
	}
	results := make([]bool, len(graded))
	for i, r := range graded {
		results[len(graded)-1-i] = r.Status == domain.BetWon
	}
	return results
}
