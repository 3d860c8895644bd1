package oddsapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

// Ingestor refresca eventos y cuotas desde The Odds API hacia el store.
// Implementa ports.OddsIngestor.
type Ingestor struct {
	client *Client
	store  ports.Store
	sports []string
}

// NewIngestor crea un Ingestor para las sport keys dadas.
func NewIngestor(client *Client, store ports.Store, sports []string) *Ingestor {
	return &Ingestor{client: client, store: store, sports: sports}
}

// FetchAndStoreOdds recorre los deportes configurados: upserta los eventos
// y guarda un snapshot de cuotas por evento. Un deporte que falla no aborta
// el resto, salvo que el proveedor agote los créditos de uso.
func (i *Ingestor) FetchAndStoreOdds(ctx context.Context) error {
	now := time.Now().UTC()
	total := 0

	for _, sport := range i.sports {
		events, err := i.client.GetOdds(ctx, sport)
		if err != nil {
			if errors.Is(err, ports.ErrCreditsExhausted) {
				return fmt.Errorf("oddsapi.FetchAndStoreOdds: %w", err)
			}
			slog.Warn("oddsapi: fetch failed", "sport", sport, "err", err)
			continue
		}

		for _, ev := range events {
			if err := i.storeEvent(ctx, ev, now); err != nil {
				slog.Warn("oddsapi: store event failed", "event", ev.ID, "err", err)
				continue
			}
			total++
		}
	}

	slog.Info("oddsapi: ingest complete", "sports", len(i.sports), "events", total)
	return nil
}

func (i *Ingestor) storeEvent(ctx context.Context, ev apiEvent, now time.Time) error {
	id, err := i.store.UpsertEvent(ctx, domain.Event{
		ID:         uuid.New().String(), // ignorado si el external_id ya existe
		ExternalID: ev.ID,
		Sport:      ev.SportKey,
		HomeTeam:   ev.HomeTeam,
		AwayTeam:   ev.AwayTeam,
		StartTime:  ev.CommenceTime,
		Status:     domain.EventUpcoming,
	})
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	lines := flattenOdds(ev, id, now)
	if len(lines) == 0 {
		return nil
	}
	if err := i.store.SaveOddsSnapshot(ctx, id, lines); err != nil {
		return fmt.Errorf("save odds: %w", err)
	}
	return nil
}

// flattenOdds aplana bookmakers → markets → outcomes en líneas, mapeando
// los nombres de equipo del proveedor a selecciones canónicas home/away/draw.
func flattenOdds(ev apiEvent, eventID string, now time.Time) []domain.OddsLine {
	var lines []domain.OddsLine
	for _, bm := range ev.Bookmakers {
		for _, market := range bm.Markets {
			for _, outcome := range market.Outcomes {
				if outcome.Price <= 1 {
					continue
				}
				lines = append(lines, domain.OddsLine{
					EventID:    eventID,
					Bookmaker:  bm.Key,
					MarketType: market.Key,
					Selection:  canonicalOutcome(outcome.Name, ev),
					Decimal:    outcome.Price,
					IsCurrent:  true,
					FetchedAt:  now,
				})
			}
		}
	}
	return lines
}

func canonicalOutcome(name string, ev apiEvent) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case strings.ToLower(ev.HomeTeam):
		return "home"
	case strings.ToLower(ev.AwayTeam):
		return "away"
	case "draw":
		return "draw"
	}
	return strings.ToLower(strings.TrimSpace(name))
}
