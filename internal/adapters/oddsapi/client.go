// Package oddsapi implementa el cliente de The Odds API v4: cuotas de
// eventos próximos y resultados de eventos completados.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ports"
)

const (
	defaultBase = "https://api.the-odds-api.com/v4"

	// El plan gratuito da 500 créditos/mes: limitamos agresivamente para no
	// quemarlos en ráfagas (cada request de odds o scores consume créditos).
	requestsPerSec = 1
	burstSize      = 3

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de The Odds API con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client. Si base está vacío, usa el URL de producción.
func NewClient(base, apiKey string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(requestsPerSec, burstSize),
	}
}

// GetOdds devuelve los eventos próximos de un deporte con sus cuotas h2h.
func (c *Client) GetOdds(ctx context.Context, sportKey string) ([]apiEvent, error) {
	q := url.Values{}
	q.Set("regions", "eu")
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")

	var events []apiEvent
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/odds", sportKey), q, &events); err != nil {
		return nil, fmt.Errorf("oddsapi.GetOdds: %s: %w", sportKey, err)
	}
	return events, nil
}

// GetScores devuelve los eventos de una liga en los últimos daysFrom días,
// completados o no. Implementa ports.ScoreProvider.
func (c *Client) GetScores(ctx context.Context, leagueKey string, daysFrom int) ([]domain.ScoreEvent, error) {
	q := url.Values{}
	q.Set("daysFrom", fmt.Sprintf("%d", daysFrom))

	var scores []apiScore
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/scores", leagueKey), q, &scores); err != nil {
		return nil, fmt.Errorf("oddsapi.GetScores: %s: %w", leagueKey, err)
	}

	out := make([]domain.ScoreEvent, 0, len(scores))
	for _, s := range scores {
		ev := domain.ScoreEvent{
			ExternalID: s.ID,
			SportKey:   s.SportKey,
			Completed:  s.Completed,
			Scores:     make([]domain.TeamScore, 0, len(s.Scores)),
		}
		for _, ts := range s.Scores {
			ev.Scores = append(ev.Scores, domain.TeamScore{Name: ts.Name, Score: ts.Score})
		}
		out = append(out, ev)
	}
	return out, nil
}

// get hace un GET con rate limiting, retries y la API key en query string.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("apiKey", c.apiKey)
	fullURL := c.base + path + "?" + q.Encode()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusUnauthorized {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			// 401/429 con este código significa cuota mensual agotada: no
			// tiene sentido reintentar hasta el próximo ciclo de facturación.
			if strings.Contains(string(body), "OUT_OF_USAGE_CREDITS") {
				return fmt.Errorf("status %d: %w", resp.StatusCode, ports.ErrCreditsExhausted)
			}
			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("unauthorized: %s", string(body))
			}
			slog.Warn("oddsapi: rate limited", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = decodeJSON(resp.Body, out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
