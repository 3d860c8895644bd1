package domain

import "time"

// BetStatus es la máquina de estados del ledger: pending → won/lost/void.
// Una vez fuera de pending el estado es inmutable.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetVoid    BetStatus = "void"
)

// Recommendation es una entrada del ledger de apuestas.
// La crea el selector con status=pending; solo el grading la muta después.
type Recommendation struct {
	ID              string // uuid
	EventID         string
	EventName       string // desnormalizado para listados, no es fuente de verdad
	Sport           string
	StartTime       time.Time
	Selection       string
	RecommendedOdds float64
	ConfidenceScore float64 // 0-100
	ExpectedValue   float64 // edge = EVWithVig - 1
	RiskScore       float64 // 0-1, menor es mejor
	Units           float64
	Stake           float64
	StakePct        float64 // % del bankroll
	Rank            int     // 1..N dentro de la selección final
	Rationale       Rationale
	EnsembleScores  map[string]float64 // confianza por modelo
	Status          BetStatus
	ActualOutcome   string
	ActualReturn    float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Graded devuelve true si la apuesta está resuelta con resultado (won/lost).
// Las void no cuentan para win rate ni P&L.
func (r Recommendation) Graded() bool {
	return r.Status == BetWon || r.Status == BetLost
}

// Profit devuelve el beneficio neto de una apuesta graded (retorno - stake).
func (r Recommendation) Profit() float64 {
	if !r.Graded() {
		return 0
	}
	return r.ActualReturn - r.Stake
}

// Rationale documenta por qué se recomendó la apuesta.
type Rationale struct {
	Summary       string        `json:"summary"`
	KeyReasons    []string      `json:"key_reasons"`
	ValueAnalysis ValueAnalysis `json:"value_analysis"`
}

// ValueAnalysis compara la probabilidad del modelo contra la del mercado.
type ValueAnalysis struct {
	ExpectedValue      float64 `json:"expected_value"`      // edge sobre breakeven
	ImpliedProbability float64 `json:"implied_probability"` // 1/odds
	ModelProbability   float64 `json:"model_probability"`
	Edge               float64 `json:"edge"` // modelo - implícita
}
