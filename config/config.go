// Package config carga la configuración de betbot desde YAML y entorno.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de betbot.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Selector  SelectorConfig  `yaml:"selector"`
	Stake     StakeConfig     `yaml:"stake"`
	API       APIConfig       `yaml:"api"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// SchedulerConfig controla los intervalos del ciclo de vida del ledger.
type SchedulerConfig struct {
	TickSeconds         int      `yaml:"tick_seconds"`
	RecordSeconds       int      `yaml:"record_seconds"`
	GradeSeconds        int      `yaml:"grade_seconds"`
	OddsRefreshSeconds  int      `yaml:"odds_refresh_seconds"`
	Sport               string   `yaml:"sport"` // vacío = todos
	ScoreLeagues        []string `yaml:"score_leagues"`
	MaxLeaguesPerCycle  int      `yaml:"max_leagues_per_cycle"`
	ScoreDaysFrom       int      `yaml:"score_days_from"`
	ExpiryHours         int      `yaml:"expiry_hours"`
}

// SelectorConfig controla el pipeline de selección.
type SelectorConfig struct {
	TimeWindowHours  int     `yaml:"time_window_hours"`
	TopN             int     `yaml:"top_n"`
	MinConfidence    float64 `yaml:"min_confidence"`
	MinExpectedValue float64 `yaml:"min_expected_value"`
	MaxRiskScore     float64 `yaml:"max_risk_score"`
	DedupHours       int     `yaml:"dedup_hours"`
}

// StakeConfig controla el sizing de apuestas.
type StakeConfig struct {
	Bankroll float64 `yaml:"bankroll"`
	MaxPct   float64 `yaml:"max_pct"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// APIConfig contiene el endpoint y la clave de The Odds API.
type APIConfig struct {
	Base   string `yaml:"base"`
	APIKey string `yaml:"api_key"` // normalmente via ODDS_API_KEY
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Tick devuelve la resolución del loop principal como time.Duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Scheduler.TickSeconds) * time.Second
}

// RecordInterval devuelve el intervalo entre pasadas de selección.
func (c *Config) RecordInterval() time.Duration {
	return time.Duration(c.Scheduler.RecordSeconds) * time.Second
}

// GradeInterval devuelve el intervalo entre pasadas de grading.
func (c *Config) GradeInterval() time.Duration {
	return time.Duration(c.Scheduler.GradeSeconds) * time.Second
}

// OddsRefreshInterval devuelve el intervalo entre refrescos de cuotas.
func (c *Config) OddsRefreshInterval() time.Duration {
	return time.Duration(c.Scheduler.OddsRefreshSeconds) * time.Second
}

// ExpiryAfter devuelve la ventana tras la cual una apuesta sin resultado se anula.
func (c *Config) ExpiryAfter() time.Duration {
	return time.Duration(c.Scheduler.ExpiryHours) * time.Hour
}

// TimeWindow devuelve la ventana de eventos próximos del selector.
func (c *Config) TimeWindow() time.Duration {
	return time.Duration(c.Selector.TimeWindowHours) * time.Hour
}

// DedupWindow devuelve la ventana de deduplicación del ledger.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.Selector.DedupHours) * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BETBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scheduler.TickSeconds <= 0 {
		cfg.Scheduler.TickSeconds = 30
	}
	if cfg.Scheduler.RecordSeconds <= 0 {
		cfg.Scheduler.RecordSeconds = 300
	}
	if cfg.Scheduler.GradeSeconds <= 0 {
		cfg.Scheduler.GradeSeconds = 600
	}
	if cfg.Scheduler.OddsRefreshSeconds <= 0 {
		cfg.Scheduler.OddsRefreshSeconds = 900
	}
	if len(cfg.Scheduler.ScoreLeagues) == 0 {
		cfg.Scheduler.ScoreLeagues = []string{
			"soccer_epl",
			"soccer_spain_la_liga",
			"soccer_italy_serie_a",
			"soccer_germany_bundesliga",
			"basketball_nba",
			"americanfootball_nfl",
		}
	}
	if cfg.Scheduler.MaxLeaguesPerCycle <= 0 {
		cfg.Scheduler.MaxLeaguesPerCycle = 4
	}
	if cfg.Scheduler.ScoreDaysFrom <= 0 {
		cfg.Scheduler.ScoreDaysFrom = 3
	}
	if cfg.Scheduler.ExpiryHours <= 0 {
		cfg.Scheduler.ExpiryHours = 48
	}

	if cfg.Selector.TimeWindowHours <= 0 {
		cfg.Selector.TimeWindowHours = 24
	}
	if cfg.Selector.TopN <= 0 {
		cfg.Selector.TopN = 3
	}
	if cfg.Selector.MinConfidence <= 0 {
		cfg.Selector.MinConfidence = 0.65
	}
	if cfg.Selector.MinExpectedValue <= 0 {
		cfg.Selector.MinExpectedValue = 1.05
	}
	if cfg.Selector.MaxRiskScore <= 0 {
		cfg.Selector.MaxRiskScore = 0.7
	}
	if cfg.Selector.DedupHours <= 0 {
		cfg.Selector.DedupHours = 12
	}

	if cfg.Stake.Bankroll <= 0 {
		cfg.Stake.Bankroll = 10000
	}
	if cfg.Stake.MaxPct <= 0 {
		cfg.Stake.MaxPct = 0.05
	}
	if cfg.Stake.Min <= 0 {
		cfg.Stake.Min = 10
	}
	if cfg.Stake.Max <= 0 {
		cfg.Stake.Max = 1000
	}

	if cfg.API.Base == "" {
		cfg.API.Base = "https://api.the-odds-api.com/v4"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "betbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
