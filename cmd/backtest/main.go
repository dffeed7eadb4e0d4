package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/alin847/pairs-trading/internal/account"
	"github.com/alin847/pairs-trading/internal/analysis"
	"github.com/alin847/pairs-trading/internal/backtest"
	"github.com/alin847/pairs-trading/internal/config"
	"github.com/alin847/pairs-trading/internal/market"
	"github.com/alin847/pairs-trading/internal/metrics"
	"github.com/alin847/pairs-trading/internal/risk"
	"github.com/alin847/pairs-trading/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := util.NewLogger("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	panel, err := market.LoadPanelCSV(cfg.Data.PricesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load price panel")
	}
	pairs, err := market.LoadPairsCSV(cfg.Data.PairsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load pairs")
	}
	log.Info().Int("tickers", len(panel.Tickers())).Int("dates", len(panel.Dates())).Int("pairs", len(pairs)).Msg("inputs loaded")

	var recorder *account.JSONLRecorder
	if cfg.Output.TransactionsJSONL != "" {
		recorder, err = account.NewJSONLRecorder(cfg.Output.TransactionsJSONL)
		if err != nil {
			log.Fatal().Err(err).Msg("open transaction recorder")
		}
		defer recorder.Close()
	}

	engineCfg := backtest.Config{
		Panel:             panel,
		Pairs:             pairs,
		StrategyMode:      cfg.Strategy.Mode,
		InitialCash:       cfg.Backtest.InitialCash,
		Sizing:            risk.Sizing{DollarPerPair: cfg.Backtest.DollarPerPair},
		CostBps:           cfg.Backtest.CostBps,
		AllowNegativeCash: cfg.Backtest.AllowNegativeCash,
		Start:             cfg.Backtest.StartTime(),
		End:               cfg.Backtest.EndTime(),
		Log:               log,
	}
	if recorder != nil {
		engineCfg.Recorder = recorder
	}

	engine, err := backtest.New(engineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build engine")
	}
	results, err := engine.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("create output dir")
		}
		if err := backtest.WriteCapitalCSV(filepath.Join(cfg.Output.Dir, "capital_history.csv"), results.CapitalHistory); err != nil {
			log.Fatal().Err(err).Msg("write capital history")
		}
		if err := backtest.WriteAssetCSV(filepath.Join(cfg.Output.Dir, "asset_history.csv"), results.AssetHistory); err != nil {
			log.Fatal().Err(err).Msg("write asset history")
		}
		if err := backtest.WriteTransactionsCSV(filepath.Join(cfg.Output.Dir, "transaction_history.csv"), results.Transactions); err != nil {
			log.Fatal().Err(err).Msg("write transaction history")
		}
		log.Info().Str("dir", cfg.Output.Dir).Msg("histories written")
	}

	for _, m := range analysis.MonthlyReturns(results.CapitalHistory) {
		log.Info().Str("month", m.Month).Float64("return", m.Return).Msg("monthly return")
	}
	log.Info().
		Float64("initial_cash", results.InitialCash).
		Float64("final_capital", results.FinalCapital).
		Float64("total_return", results.TotalReturn).
		Int("transactions", len(results.Transactions)).
		Msg("done")
}
