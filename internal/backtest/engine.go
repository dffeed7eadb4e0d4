// Package backtest walks the price panel day by day, wiring pair signal
// models to the trading account with close-decide / next-open-execute timing.
package backtest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alin847/pairs-trading/internal/account"
	"github.com/alin847/pairs-trading/internal/market"
	"github.com/alin847/pairs-trading/internal/metrics"
	"github.com/alin847/pairs-trading/internal/risk"
	"github.com/alin847/pairs-trading/internal/signal"
	"github.com/alin847/pairs-trading/internal/strategy"
)

// Config collects everything an engine run needs.
type Config struct {
	Panel             *market.Panel
	Pairs             []signal.Pair
	StrategyMode      string
	InitialCash       float64
	Sizing            risk.Sizing
	CostBps           float64
	AllowNegativeCash bool
	Start, End        time.Time // zero values mean the full panel calendar
	Recorder          account.TransactionRecorder
	Log               zerolog.Logger
}

// Engine replays the configured date range once. Signal evaluation runs in
// parallel across pairs; all account mutation happens on the engine goroutine
// in ascending pair-id order, so replays are deterministic.
type Engine struct {
	cfg     Config
	pairs   []signal.Pair
	models  []strategy.PairModel
	pending map[string][]signal.Decision
	skipped map[string]bool // entries rejected by the cash policy, awaiting their close decision
}

// New validates the configuration and builds one signal model per pair.
func New(cfg Config) (*Engine, error) {
	if cfg.Panel == nil {
		return nil, errors.New("backtest: price panel is required")
	}
	if len(cfg.Pairs) == 0 {
		return nil, errors.New("backtest: at least one pair is required")
	}
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("backtest: initial cash must be positive, got %v", cfg.InitialCash)
	}
	if err := cfg.Sizing.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	pairs := make([]signal.Pair, len(cfg.Pairs))
	copy(pairs, cfg.Pairs)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })

	models := make([]strategy.PairModel, len(pairs))
	for i, p := range pairs {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("backtest: %w", err)
		}
		models[i] = strategy.Build(cfg.StrategyMode, p)
	}
	return &Engine{
		cfg:     cfg,
		pairs:   pairs,
		models:  models,
		pending: make(map[string][]signal.Decision),
		skipped: make(map[string]bool),
	}, nil
}

// Run executes the full replay: for each date, pull decisions generated from
// the prior day's closes, execute them at the current day's opens, and
// snapshot the account. The final date only liquidates.
func (e *Engine) Run() (*Results, error) {
	dates := e.cfg.Panel.DatesBetween(e.cfg.Start, e.cfg.End)
	if len(dates) < 2 {
		return nil, fmt.Errorf("backtest: need at least 2 trading days, have %d", len(dates))
	}

	opts := []account.Option{account.WithCostBps(e.cfg.CostBps)}
	if e.cfg.AllowNegativeCash {
		opts = append(opts, account.WithNegativeCash(true))
	}
	if e.cfg.Recorder != nil {
		opts = append(opts, account.WithRecorder(e.cfg.Recorder))
	}
	acct := account.New(e.cfg.InitialCash, opts...)

	log := e.cfg.Log
	log.Info().
		Time("start", dates[0]).
		Time("end", dates[len(dates)-1]).
		Int("pairs", len(e.pairs)).
		Float64("initial_cash", e.cfg.InitialCash).
		Msg("backtest started")

	for i := 1; i < len(dates); i++ {
		date := dates[i]
		final := i == len(dates)-1

		if !final {
			for idx, decision := range e.decide(dates[i-1]) {
				if decision.Action == signal.Hold {
					continue
				}
				metrics.DecisionsTotal.WithLabelValues(decision.PairID, string(decision.Action)).Inc()
				log.Debug().
					Str("pair", decision.PairID).
					Str("action", string(decision.Action)).
					Float64("z", decision.Z).
					Time("close_date", decision.Date).
					Msg("decision")
				e.pending[e.pairs[idx].ID] = append(e.pending[e.pairs[idx].ID], decision)
			}
		}

		if err := e.execute(acct, date); err != nil {
			return nil, err
		}

		if final {
			if err := e.liquidate(acct, date); err != nil {
				return nil, err
			}
		}

		if err := e.snapshot(acct, date); err != nil {
			return nil, err
		}
	}

	results := newResults(e.cfg.InitialCash, acct)
	log.Info().
		Float64("final_capital", results.FinalCapital).
		Float64("total_return", results.TotalReturn).
		Int("transactions", len(results.Transactions)).
		Msg("backtest finished")
	return results, nil
}

// decide evaluates every pair model against the given close date. Models are
// independent, so evaluation fans out across goroutines; results come back in
// pair order.
func (e *Engine) decide(closeDate time.Time) []signal.Decision {
	decisions := make([]signal.Decision, len(e.pairs))
	var wg sync.WaitGroup
	for i := range e.pairs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := e.pairs[i]
			closeA, okA := e.cfg.Panel.Close(p.TickerA, closeDate)
			closeB, okB := e.cfg.Panel.Close(p.TickerB, closeDate)
			decisions[i] = e.models[i].Decide(closeA, okA, closeB, okB, closeDate)
		}(i)
	}
	wg.Wait()
	return decisions
}

// execute drains each pair's pending decisions at the day's open prices. A
// pair with either open price missing keeps its queue for a later date; the
// one-day execution lag is a minimum, not an exact delay.
func (e *Engine) execute(acct *account.Account, date time.Time) error {
	for _, p := range e.pairs {
		queue := e.pending[p.ID]
		for len(queue) > 0 {
			openA, okA := e.cfg.Panel.Open(p.TickerA, date)
			openB, okB := e.cfg.Panel.Open(p.TickerB, date)
			if !okA || !okB {
				e.cfg.Log.Debug().Str("pair", p.ID).Time("date", date).Msg("open price missing, execution deferred")
				break
			}
			if err := e.apply(acct, p, queue[0], openA, openB, date); err != nil {
				return err
			}
			queue = queue[1:]
		}
		if len(queue) == 0 {
			delete(e.pending, p.ID)
		} else {
			e.pending[p.ID] = queue
		}
	}
	return nil
}

func (e *Engine) apply(acct *account.Account, p signal.Pair, d signal.Decision, openA, openB float64, date time.Time) error {
	switch {
	case d.Action.Entry():
		dir := signal.LongSpread
		if d.Action == signal.EnterShortSpread {
			dir = signal.ShortSpread
		}
		err := acct.OpenPosition(p, dir, openA, openB, date, e.cfg.Sizing)
		if errors.Is(err, account.ErrInsufficientCash) {
			// Rejecting policy: the trade becomes a no-op, and the model's
			// eventual close decision for this phantom position must too.
			e.cfg.Log.Warn().Str("pair", p.ID).Time("date", date).Err(err).Msg("entry rejected by cash policy")
			e.skipped[p.ID] = true
			return nil
		}
		if err == nil {
			e.skipped[p.ID] = false
		}
		return err
	case d.Action.Closes():
		if e.skipped[p.ID] && !acct.IsOpen(p.ID) {
			e.skipped[p.ID] = false
			return nil
		}
		return acct.ClosePosition(p, openA, openB, date)
	default:
		return nil
	}
}

// liquidate closes every remaining position at the final date's open prices.
func (e *Engine) liquidate(acct *account.Account, date time.Time) error {
	prices := make(map[string]float64)
	for _, pos := range acct.Positions() {
		if price, ok := e.cfg.Panel.Open(pos.Ticker, date); ok {
			prices[pos.Ticker] = price
		}
	}
	return acct.LiquidateAll(prices, date)
}

// snapshot records the day's capital and asset rows, marking held tickers at
// their most recent open.
func (e *Engine) snapshot(acct *account.Account, date time.Time) error {
	prices := make(map[string]float64)
	for _, pos := range acct.Positions() {
		if price, ok := e.cfg.Panel.OpenAsOf(pos.Ticker, date); ok {
			prices[pos.Ticker] = price
		}
	}
	return acct.RecordSnapshot(prices, date)
}
