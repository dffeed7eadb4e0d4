package integration

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alin847/pairs-trading/internal/account"
	"github.com/alin847/pairs-trading/internal/analysis"
	"github.com/alin847/pairs-trading/internal/backtest"
	"github.com/alin847/pairs-trading/internal/market"
	"github.com/alin847/pairs-trading/internal/risk"
)

// panelCSV renders a 12-day panel where AAA closes at 50+spread, BBB holds at
// 50, and each day opens at the prior close. The spread spikes on day 6 and
// reverts inside the exit band on day 10.
func panelCSV() string {
	spreads := []float64{0.1, -0.1, 0.1, -0.1, 0.0, 1.0, 0.9, 0.8, 0.85, 0.75, 0.7, 0.7}
	var b strings.Builder
	b.WriteString("ticker,date,open,close\n")
	prevA := 50 + spreads[0]
	for i, s := range spreads {
		closeA := 50 + s
		date := fmt.Sprintf("2024-01-%02d", i+1)
		fmt.Fprintf(&b, "AAA,%s,%v,%v\n", date, prevA, closeA)
		fmt.Fprintf(&b, "BBB,%s,50,50\n", date)
		prevA = closeA
	}
	return b.String()
}

const pairsCSV = "ticker_a,ticker_b,hedge_ratio,window_length,entry_threshold,exit_threshold,stop_loss_threshold\n" +
	"AAA,BBB,1.0,5,2.0,0.5,4.0\n"

func TestBacktestFlowEndToEnd(t *testing.T) {
	panel, err := market.ReadPanel(strings.NewReader(panelCSV()))
	if err != nil {
		t.Fatalf("ReadPanel returned error: %v", err)
	}
	pairs, err := market.ReadPairs(strings.NewReader(pairsCSV))
	if err != nil {
		t.Fatalf("ReadPairs returned error: %v", err)
	}

	dir := t.TempDir()
	recorder, err := account.NewJSONLRecorder(filepath.Join(dir, "transactions.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}

	engine, err := backtest.New(backtest.Config{
		Panel:       panel,
		Pairs:       pairs,
		InitialCash: 10000,
		Sizing:      risk.Sizing{DollarPerPair: 1000},
		Recorder:    recorder,
		Log:         zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	results, err := engine.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if len(results.Transactions) != 4 {
		t.Fatalf("expected 4 transaction legs, got %d", len(results.Transactions))
	}
	wantCapital := 10000 + (500.0/51)*0.25
	if math.Abs(results.FinalCapital-wantCapital) > 1e-9 {
		t.Fatalf("expected final capital %.6f, got %.6f", wantCapital, results.FinalCapital)
	}

	// The recorder saw every executed leg.
	file, err := os.Open(filepath.Join(dir, "transactions.jsonl"))
	if err != nil {
		t.Fatalf("open recorder output: %v", err)
	}
	defer file.Close()
	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	if lines != 4 {
		t.Fatalf("expected 4 recorded lines, got %d", lines)
	}

	// Histories export cleanly and the analysis layer consumes them.
	if err := backtest.WriteCapitalCSV(filepath.Join(dir, "capital_history.csv"), results.CapitalHistory); err != nil {
		t.Fatalf("WriteCapitalCSV returned error: %v", err)
	}
	if err := backtest.WriteAssetCSV(filepath.Join(dir, "asset_history.csv"), results.AssetHistory); err != nil {
		t.Fatalf("WriteAssetCSV returned error: %v", err)
	}
	if err := backtest.WriteTransactionsCSV(filepath.Join(dir, "transaction_history.csv"), results.Transactions); err != nil {
		t.Fatalf("WriteTransactionsCSV returned error: %v", err)
	}

	monthly := analysis.MonthlyReturns(results.CapitalHistory)
	if len(monthly) != 1 {
		t.Fatalf("expected a single month, got %+v", monthly)
	}
	if math.Abs(monthly[0].Return-results.TotalReturn) > 1e-9 {
		t.Fatalf("single-month return %.9f should equal total return %.9f", monthly[0].Return, results.TotalReturn)
	}

	weights := analysis.PortfolioWeights(results.AssetHistory, []string{"AAA", "BBB"})
	if len(weights) == 0 {
		t.Fatalf("expected portfolio weights while positions were open")
	}
}
