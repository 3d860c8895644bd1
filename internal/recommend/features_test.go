package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/betbot/internal/domain"
)

func testEvent() domain.Event {
	return domain.Event{
		ID:       "ev-1",
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
	}
}

func TestCanonicalSelection(t *testing.T) {
	ev := testEvent()
	assert.Equal(t, "home", canonicalSelection("home", ev))
	assert.Equal(t, "home", canonicalSelection("Arsenal", ev))
	assert.Equal(t, "away", canonicalSelection("chelsea", ev))
	assert.Equal(t, "draw", canonicalSelection("Draw", ev))
	assert.Equal(t, "over 2.5", canonicalSelection("Over 2.5", ev))
}

func TestAggregateMarket_FairProbsSumToOne(t *testing.T) {
	ev := testEvent()
	lines := []domain.OddsLine{
		{Selection: "home", Decimal: 1.8, Bookmaker: "a"},
		{Selection: "home", Decimal: 1.9, Bookmaker: "b"},
		{Selection: "away", Decimal: 4.2, Bookmaker: "a"},
		{Selection: "draw", Decimal: 3.6, Bookmaker: "a"},
	}

	m := aggregateMarket(ev, lines)

	assert.InDelta(t, 1.85, m.mean["home"], 1e-9)
	total := m.fair["home"] + m.fair["away"] + m.fair["draw"]
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, m.fair["home"], m.fair["away"])
}

func TestAggregateMarket_IgnoresInvalidOdds(t *testing.T) {
	ev := testEvent()
	m := aggregateMarket(ev, []domain.OddsLine{
		{Selection: "home", Decimal: 0},
		{Selection: "home", Decimal: 1.0},
		{Selection: "home", Decimal: 2.0},
	})
	assert.Equal(t, 2.0, m.mean["home"])
}

func TestAggregateMarket_Dispersion(t *testing.T) {
	ev := testEvent()
	m := aggregateMarket(ev, []domain.OddsLine{
		{Selection: "home", Decimal: 1.8},
		{Selection: "home", Decimal: 2.2},
		{Selection: "away", Decimal: 3.0},
	})
	assert.InDelta(t, 0.2, m.dev["home"], 1e-9) // población de {1.8, 2.2}
	assert.Equal(t, 0.0, m.dev["away"])         // una sola cuota = sin dispersión
}

func TestBuildFeatures_ProxiesFromFairProbs(t *testing.T) {
	ev := testEvent()
	m := aggregateMarket(ev, []domain.OddsLine{
		{Selection: "home", Decimal: 1.6},
		{Selection: "away", Decimal: 4.5},
		{Selection: "draw", Decimal: 4.0},
	})

	f := buildFeatures(ev, m)

	assert.Equal(t, f.HomeFairProb, f.HomeWinRate)
	assert.Equal(t, f.AwayFairProb, f.AwayRecentForm)
	assert.Equal(t, 1.0, f.IsHomeGame)
	assert.InDelta(t, f.HomeFairProb-f.AwayFairProb, f.VenueAdvantage, 1e-9)

	// H2H sintético: siempre 10 enfrentamientos
	assert.InDelta(t, 10.0, f.H2HHomeWins+f.H2HAwayWins+f.H2HDraws, 1e-9)
	assert.Greater(t, f.H2HHomeWins, f.H2HAwayWins)

	// El favorito tiene mejor (menor) ranking
	assert.Less(t, f.HomeRanking, f.AwayRanking)
	assert.GreaterOrEqual(t, f.HomeRanking, 1.0)
	assert.LessOrEqual(t, f.AwayRanking, 100.0)
}

func TestMapLineProbability(t *testing.T) {
	ev := testEvent()
	m := marketView{fair: map[string]float64{"draw": 0.25}}

	homeLine := domain.OddsLine{Selection: "home"}
	awayLine := domain.OddsLine{Selection: "Chelsea"}
	drawLine := domain.OddsLine{Selection: "draw"}

	assert.Equal(t, 0.7, mapLineProbability(0.7, homeLine, ev, m))
	assert.InDelta(t, 0.3, mapLineProbability(0.7, awayLine, ev, m), 1e-9)
	assert.Equal(t, 0.25, mapLineProbability(0.7, drawLine, ev, m))
}
