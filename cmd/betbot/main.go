package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/betbot/config"
	"github.com/alejandrodnm/betbot/internal/adapters/notify"
	"github.com/alejandrodnm/betbot/internal/adapters/oddsapi"
	"github.com/alejandrodnm/betbot/internal/adapters/storage"
	"github.com/alejandrodnm/betbot/internal/domain"
	"github.com/alejandrodnm/betbot/internal/ensemble"
	"github.com/alejandrodnm/betbot/internal/ledger"
	"github.com/alejandrodnm/betbot/internal/recommend"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one record+grade pass and exit")
	summary := flag.Bool("summary", false, "print ledger performance summary and exit")
	ledgerList := flag.Bool("ledger", false, "print recent ledger entries and exit")
	demo := flag.Bool("demo", false, "permissive mode: skip the inverse filter")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("betbot starting",
		"config", *configPath,
		"once", *once,
		"demo", *demo,
		"leagues", len(cfg.Scheduler.ScoreLeagues),
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	client := oddsapi.NewClient(cfg.API.Base, cfg.API.APIKey)
	ingestor := oddsapi.NewIngestor(client, store, cfg.Scheduler.ScoreLeagues)

	agg := ensemble.New()
	agg.Register("market_prior", 1.0, ensemble.NewMarketPrior())

	selCfg := recommend.DefaultConfig()
	selCfg.TimeWindow = cfg.TimeWindow()
	selCfg.TopN = cfg.Selector.TopN
	selCfg.MinConfidence = cfg.Selector.MinConfidence
	selCfg.MinExpectedValue = cfg.Selector.MinExpectedValue
	selCfg.MaxRiskScore = cfg.Selector.MaxRiskScore
	selCfg.Permissive = *demo
	selCfg.DedupWindow = cfg.DedupWindow()
	selCfg.Stake = recommend.StakeConfig{
		Bankroll: cfg.Stake.Bankroll,
		MaxPct:   cfg.Stake.MaxPct,
		Min:      cfg.Stake.Min,
		Max:      cfg.Stake.Max,
	}
	selector := recommend.New(selCfg, store, agg)

	notifier := notify.NewConsole()

	schedCfg := ledger.DefaultConfig()
	schedCfg.Tick = cfg.Tick()
	schedCfg.RecordInterval = cfg.RecordInterval()
	schedCfg.GradeInterval = cfg.GradeInterval()
	schedCfg.OddsRefreshInterval = cfg.OddsRefreshInterval()
	schedCfg.Sport = cfg.Scheduler.Sport
	schedCfg.ScoreLeagues = cfg.Scheduler.ScoreLeagues
	schedCfg.MaxLeaguesPerCycle = cfg.Scheduler.MaxLeaguesPerCycle
	schedCfg.ScoreDaysFrom = cfg.Scheduler.ScoreDaysFrom
	schedCfg.ExpiryAfter = cfg.ExpiryAfter()

	sched := ledger.New(schedCfg, selector, client, ingestor, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *summary:
		printSummary(ctx, sched, notifier)
	case *ledgerList:
		printLedger(ctx, store, notifier)
	case *once:
		runOnce(ctx, sched, ingestor)
	default:
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("scheduler exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("betbot stopped cleanly")
	}
}

func runOnce(ctx context.Context, sched *ledger.Scheduler, ingestor *oddsapi.Ingestor) {
	if err := ingestor.FetchAndStoreOdds(ctx); err != nil {
		slog.Warn("odds refresh failed", "err", err)
	}
	if err := sched.RecordOnce(ctx); err != nil {
		slog.Error("record pass failed", "err", err)
		os.Exit(1)
	}
	if _, err := sched.GradeOnce(ctx); err != nil {
		slog.Error("grade pass failed", "err", err)
		os.Exit(1)
	}
}

func printSummary(ctx context.Context, sched *ledger.Scheduler, notifier *notify.Console) {
	s, err := sched.Summary(ctx)
	if err != nil {
		slog.Error("summary failed", "err", err)
		os.Exit(1)
	}
	notifier.PrintSummary(s)
}

func printLedger(ctx context.Context, store *storage.SQLiteStorage, notifier *notify.Console) {
	recs, err := store.Ledger(ctx, 50, domain.BetStatus(""))
	if err != nil {
		slog.Error("ledger query failed", "err", err)
		os.Exit(1)
	}
	notifier.PrintLedger(recs)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
