package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "pairs-backtest-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9109" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.Data.PricesPath != "data/prices.csv" {
		t.Fatalf("unexpected Data.PricesPath: %s", cfg.Data.PricesPath)
	}
	if cfg.Data.PairsPath != "data/top_pairs.csv" {
		t.Fatalf("unexpected Data.PairsPath: %s", cfg.Data.PairsPath)
	}
	if cfg.Backtest.InitialCash != 10000 {
		t.Fatalf("unexpected initial cash: %.2f", cfg.Backtest.InitialCash)
	}
	if cfg.Backtest.DollarPerPair != 1000 {
		t.Fatalf("unexpected dollar per pair: %.2f", cfg.Backtest.DollarPerPair)
	}
	if cfg.Backtest.CostBps != 2.5 {
		t.Fatalf("unexpected cost bps: %.2f", cfg.Backtest.CostBps)
	}
	if !cfg.Backtest.AllowNegativeCash {
		t.Fatalf("expected negative cash allowed")
	}
	if want := time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC); !cfg.Backtest.StartTime().Equal(want) {
		t.Fatalf("unexpected start time: %v", cfg.Backtest.StartTime())
	}
	if cfg.Strategy.Mode != "zscore" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Strategy.Mode)
	}
	if cfg.Output.Dir != "results" {
		t.Fatalf("unexpected output dir: %s", cfg.Output.Dir)
	}
	if cfg.Output.TransactionsJSONL != "results/transactions.jsonl" {
		t.Fatalf("unexpected transactions path: %s", cfg.Output.TransactionsJSONL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"zero cash":        "backtest:\n  initial_cash: 0\n  dollar_per_pair: 10\n",
		"bad date":         "backtest:\n  initial_cash: 100\n  dollar_per_pair: 10\n  start_date: \"01/02/2016\"\n",
		"negative cost":    "backtest:\n  initial_cash: 100\n  dollar_per_pair: 10\n  cost_bps: -1\n",
		"zero pair dollar": "backtest:\n  initial_cash: 100\n  dollar_per_pair: 0\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("%s: write fixture: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{}
	cfg.Backtest.InitialCash = 500
	cfg.Backtest.DollarPerPair = 50
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Backtest.InitialCash != 500 || loaded.Backtest.DollarPerPair != 50 {
		t.Fatalf("round trip mismatch: %+v", loaded.Backtest)
	}
}
