// Package account holds the simulated trading account: cash, positions, and
// the append-only transaction log. It is the sole source of truth for capital.
package account

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/alin847/pairs-trading/internal/metrics"
	"github.com/alin847/pairs-trading/internal/risk"
	"github.com/alin847/pairs-trading/internal/signal"
)

// TransactionRecorder captures executed legs for later inspection.
type TransactionRecorder interface {
	Record(signal.Transaction)
}

var (
	// ErrPairNotOpen signals a close for a pair with no open legs, which
	// means the caller is out of sync with the signal model.
	ErrPairNotOpen = errors.New("pair has no open position")
	// ErrPairAlreadyOpen signals an open for a pair that already has legs on.
	ErrPairAlreadyOpen = errors.New("pair already has an open position")
	// ErrInsufficientCash signals a rejected open under the no-margin policy.
	ErrInsufficientCash = errors.New("insufficient cash")
	// ErrMissingPrice signals an operation that needs a price it was not given.
	ErrMissingPrice = errors.New("missing price")
)

const epsilon = 1e-9

type pairLegs struct {
	tickerA, tickerB string
	qtyA, qtyB       float64
}

// CapitalPoint is one row of the daily capital history.
type CapitalPoint struct {
	Date    time.Time `json:"date"`
	Capital float64   `json:"capital"`
}

// AssetPoint is one row of the daily asset history: a held ticker's quantity
// and market value on a date. Cash appears as ticker "CASH" with quantity 1.
type AssetPoint struct {
	Date     time.Time `json:"date"`
	Ticker   string    `json:"ticker"`
	Quantity float64   `json:"quantity"`
	Value    float64   `json:"value"`
}

// Account tracks cash, per-ticker positions, per-pair open legs, and the
// transaction log while replaying a backtest. All mutation is serialized.
type Account struct {
	mu                sync.Mutex
	startingCash      float64
	cash              float64
	allowNegativeCash bool
	costBps           float64
	positions         map[string]float64
	openPairs         map[string]pairLegs
	ledger            *Ledger
	recorder          TransactionRecorder
	capitalHistory    []CapitalPoint
	assetHistory      []AssetPoint
}

// Option configures Account construction.
type Option func(*Account)

// WithNegativeCash allows cash to go negative when opening positions,
// modeling margin-style leveraged capital. Off by default.
func WithNegativeCash(allow bool) Option {
	return func(a *Account) { a.allowNegativeCash = allow }
}

// WithCostBps charges the given basis points of notional per executed leg.
func WithCostBps(bps float64) Option {
	return func(a *Account) {
		if bps > 0 {
			a.costBps = bps
		}
	}
}

// WithRecorder mirrors every transaction to the given recorder.
func WithRecorder(r TransactionRecorder) Option {
	return func(a *Account) { a.recorder = r }
}

// New constructs an account populated with starting cash.
func New(startingCash float64, opts ...Option) *Account {
	a := &Account{
		startingCash: startingCash,
		cash:         startingCash,
		positions:    make(map[string]float64),
		openPairs:    make(map[string]pairLegs),
		ledger:       NewLedger(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StartingCash returns the initial bankroll.
func (a *Account) StartingCash() float64 { return a.startingCash }

// Cash returns the current cash balance.
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// OpenPosition opens both legs of a spread position at the given execution
// prices. Leg quantities come from the sizing policy. Both legs, the cash
// debit/credit, and the two transactions apply atomically: on error the
// account is untouched.
func (a *Account) OpenPosition(pair signal.Pair, dir signal.Direction, priceA, priceB float64, date time.Time, sizing risk.Sizing) error {
	if priceA <= 0 {
		return fmt.Errorf("open %s on %s: %w for %s", pair.ID, date.Format("2006-01-02"), ErrMissingPrice, pair.TickerA)
	}
	if priceB <= 0 {
		return fmt.Errorf("open %s on %s: %w for %s", pair.ID, date.Format("2006-01-02"), ErrMissingPrice, pair.TickerB)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, open := a.openPairs[pair.ID]; open {
		return fmt.Errorf("open %s on %s: %w", pair.ID, date.Format("2006-01-02"), ErrPairAlreadyOpen)
	}

	qtyA, qtyB := sizing.LegQuantities(dir, pair.HedgeRatio, priceA, priceB)
	cost := a.cost(qtyA*priceA) + a.cost(qtyB*priceB)
	newCash := a.cash - qtyA*priceA - qtyB*priceB - cost
	if !a.allowNegativeCash && newCash < -epsilon {
		return fmt.Errorf("open %s on %s: %w (cash would be %.2f)", pair.ID, date.Format("2006-01-02"), ErrInsufficientCash, newCash)
	}

	a.cash = newCash
	a.applyLeg(pair.TickerA, qtyA)
	a.applyLeg(pair.TickerB, qtyB)
	a.openPairs[pair.ID] = pairLegs{tickerA: pair.TickerA, tickerB: pair.TickerB, qtyA: qtyA, qtyB: qtyB}
	a.record(signal.Transaction{Date: date, Ticker: pair.TickerA, Quantity: qtyA, Price: priceA, PairID: pair.ID})
	a.record(signal.Transaction{Date: date, Ticker: pair.TickerB, Quantity: qtyB, Price: priceB, PairID: pair.ID})
	return nil
}

// ClosePosition emits offsetting transactions for both legs of an open pair,
// realizing its profit or loss into cash. Closing a pair that is not open is
// a logic error, not a no-op.
func (a *Account) ClosePosition(pair signal.Pair, priceA, priceB float64, date time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked(pair.ID, priceA, priceB, date)
}

func (a *Account) closeLocked(pairID string, priceA, priceB float64, date time.Time) error {
	legs, open := a.openPairs[pairID]
	if !open {
		return fmt.Errorf("close %s on %s: %w", pairID, date.Format("2006-01-02"), ErrPairNotOpen)
	}
	if priceA <= 0 {
		return fmt.Errorf("close %s on %s: %w for %s", pairID, date.Format("2006-01-02"), ErrMissingPrice, legs.tickerA)
	}
	if priceB <= 0 {
		return fmt.Errorf("close %s on %s: %w for %s", pairID, date.Format("2006-01-02"), ErrMissingPrice, legs.tickerB)
	}

	a.cash += legs.qtyA*priceA + legs.qtyB*priceB
	a.cash -= a.cost(legs.qtyA*priceA) + a.cost(legs.qtyB*priceB)
	a.applyLeg(legs.tickerA, -legs.qtyA)
	a.applyLeg(legs.tickerB, -legs.qtyB)
	delete(a.openPairs, pairID)
	a.record(signal.Transaction{Date: date, Ticker: legs.tickerA, Quantity: -legs.qtyA, Price: priceA, PairID: pairID})
	a.record(signal.Transaction{Date: date, Ticker: legs.tickerB, Quantity: -legs.qtyB, Price: priceB, PairID: pairID})
	return nil
}

// MarkToMarket returns total capital at the given prices without mutating
// state. Every held ticker must be priced.
func (a *Account) MarkToMarket(prices map[string]float64) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.markLocked(prices)
}

func (a *Account) markLocked(prices map[string]float64) (float64, error) {
	capital := a.cash
	for _, ticker := range a.heldTickers() {
		price, ok := prices[ticker]
		if !ok || price <= 0 {
			return 0, fmt.Errorf("mark to market: %w for %s", ErrMissingPrice, ticker)
		}
		capital += a.positions[ticker] * price
	}
	return capital, nil
}

// LiquidateAll force-closes every open pair at the given prices, in ascending
// pair-id order. If any required price is missing, no pair is closed: the
// backtest cannot conclude with unpriced exposure.
func (a *Account) LiquidateAll(prices map[string]float64, date time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(a.openPairs))
	for id := range a.openPairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		legs := a.openPairs[id]
		for _, ticker := range []string{legs.tickerA, legs.tickerB} {
			if price, ok := prices[ticker]; !ok || price <= 0 {
				return fmt.Errorf("liquidate on %s: %w for %s (pair %s)", date.Format("2006-01-02"), ErrMissingPrice, ticker, id)
			}
		}
	}
	for _, id := range ids {
		legs := a.openPairs[id]
		if err := a.closeLocked(id, prices[legs.tickerA], prices[legs.tickerB], date); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot appends the day's capital and asset rows to the histories,
// marking open positions at the given prices. Call once per simulation date
// after executions.
func (a *Account) RecordSnapshot(prices map[string]float64, date time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	capital, err := a.markLocked(prices)
	if err != nil {
		return err
	}
	for _, ticker := range a.heldTickers() {
		qty := a.positions[ticker]
		a.assetHistory = append(a.assetHistory, AssetPoint{
			Date: date, Ticker: ticker, Quantity: qty, Value: qty * prices[ticker],
		})
	}
	a.assetHistory = append(a.assetHistory, AssetPoint{Date: date, Ticker: "CASH", Quantity: 1, Value: a.cash})
	a.capitalHistory = append(a.capitalHistory, CapitalPoint{Date: date, Capital: capital})
	return nil
}

// Position returns the signed quantity held in the given ticker.
func (a *Account) Position(ticker string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[ticker]
}

// Positions returns the non-zero holdings sorted by ticker.
func (a *Account) Positions() []signal.Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]signal.Position, 0, len(a.positions))
	for _, ticker := range a.heldTickers() {
		out = append(out, signal.Position{Ticker: ticker, Quantity: a.positions[ticker]})
	}
	return out
}

// IsOpen reports whether the pair currently has open legs.
func (a *Account) IsOpen(pairID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, open := a.openPairs[pairID]
	return open
}

// OpenPairs returns the ids of pairs with open legs, sorted.
func (a *Account) OpenPairs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.openPairs))
	for id := range a.openPairs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Transactions returns a copy of the full ordered transaction log.
func (a *Account) Transactions() []signal.Transaction {
	return a.ledger.Snapshot()
}

// CapitalHistory returns a copy of the daily capital rows recorded so far.
func (a *Account) CapitalHistory() []CapitalPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CapitalPoint, len(a.capitalHistory))
	copy(out, a.capitalHistory)
	return out
}

// AssetHistory returns a copy of the daily asset rows recorded so far.
func (a *Account) AssetHistory() []AssetPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AssetPoint, len(a.assetHistory))
	copy(out, a.assetHistory)
	return out
}

// TotalReturn computes the account return from the first to the last recorded
// capital snapshot.
func (a *Account) TotalReturn() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.capitalHistory) < 2 || a.capitalHistory[0].Capital == 0 {
		return 0
	}
	first := a.capitalHistory[0].Capital
	last := a.capitalHistory[len(a.capitalHistory)-1].Capital
	return (last - first) / first
}

func (a *Account) applyLeg(ticker string, qty float64) {
	next := a.positions[ticker] + qty
	if math.Abs(next) <= epsilon {
		delete(a.positions, ticker)
		return
	}
	a.positions[ticker] = next
}

func (a *Account) record(tx signal.Transaction) {
	a.ledger.Record(tx)
	if a.recorder != nil {
		a.recorder.Record(tx)
	}
	side := "buy"
	if tx.Quantity < 0 {
		side = "sell"
	}
	metrics.TransactionsTotal.WithLabelValues(tx.Ticker, side).Inc()
}

func (a *Account) cost(notional float64) float64 {
	return math.Abs(notional) * a.costBps / 10000
}

func (a *Account) heldTickers() []string {
	tickers := make([]string, 0, len(a.positions))
	for t := range a.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
