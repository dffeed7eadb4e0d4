// Package signal standardizes payloads shared between market data, strategy,
// and account layers.
package signal

import (
	"fmt"
	"time"
)

// Action enumerates the trade decisions a pair model can emit for a day.
type Action string

const (
	// Hold means no change to the pair's exposure.
	Hold Action = "HOLD"
	// EnterLongSpread opens long ticker A / short ticker B.
	EnterLongSpread Action = "ENTER_LONG_SPREAD"
	// EnterShortSpread opens short ticker A / long ticker B.
	EnterShortSpread Action = "ENTER_SHORT_SPREAD"
	// Exit closes the open legs after the spread reverted.
	Exit Action = "EXIT"
	// StopLossExit closes the open legs after an adverse move.
	StopLossExit Action = "STOP_LOSS_EXIT"
)

// Entry reports whether the action opens a new spread position.
func (a Action) Entry() bool { return a == EnterLongSpread || a == EnterShortSpread }

// Closes reports whether the action closes an open spread position.
func (a Action) Closes() bool { return a == Exit || a == StopLossExit }

// Direction identifies which side of the spread a position is on.
type Direction string

const (
	// LongSpread is long ticker A, short ticker B.
	LongSpread Direction = "LONG_SPREAD"
	// ShortSpread is short ticker A, long ticker B.
	ShortSpread Direction = "SHORT_SPREAD"
)

// Sign returns +1 for a long spread and -1 for a short spread.
func (d Direction) Sign() float64 {
	if d == ShortSpread {
		return -1
	}
	return 1
}

// Pair is an immutable configuration for one traded cointegrated pair.
type Pair struct {
	ID                string  `yaml:"id"`
	TickerA           string  `yaml:"ticker_a"`
	TickerB           string  `yaml:"ticker_b"`
	HedgeRatio        float64 `yaml:"hedge_ratio"`
	WindowLength      int     `yaml:"window_length"`
	EntryThreshold    float64 `yaml:"entry_threshold"`
	ExitThreshold     float64 `yaml:"exit_threshold"`
	StopLossThreshold float64 `yaml:"stop_loss_threshold"`
}

// Validate checks that the pair configuration is internally consistent.
func (p Pair) Validate() error {
	if p.TickerA == "" || p.TickerB == "" {
		return fmt.Errorf("pair %q: both tickers are required", p.ID)
	}
	if p.TickerA == p.TickerB {
		return fmt.Errorf("pair %q: legs must differ", p.ID)
	}
	if p.HedgeRatio <= 0 {
		return fmt.Errorf("pair %q: hedge ratio must be positive, got %v", p.ID, p.HedgeRatio)
	}
	if p.WindowLength < 2 {
		return fmt.Errorf("pair %q: window length must be at least 2, got %d", p.ID, p.WindowLength)
	}
	if p.EntryThreshold <= p.ExitThreshold {
		return fmt.Errorf("pair %q: entry threshold %v must exceed exit threshold %v", p.ID, p.EntryThreshold, p.ExitThreshold)
	}
	if p.StopLossThreshold <= p.EntryThreshold {
		return fmt.Errorf("pair %q: stop loss %v must exceed entry threshold %v", p.ID, p.StopLossThreshold, p.EntryThreshold)
	}
	return nil
}

// PriceBar is one day of open/close prices for a ticker, supplied by the feed.
type PriceBar struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
}

// Decision is the outcome of evaluating one pair on one close date. Decisions
// are generated from close(t) and intended for execution at open(t+1).
type Decision struct {
	PairID string    `json:"pair_id"`
	Action Action    `json:"action"`
	Date   time.Time `json:"date"` // close date the decision was generated on
	Z      float64   `json:"z"`    // z-score that triggered it, 0 when unavailable
}

// Transaction is one executed leg. The log of transactions is append-only and
// forms the account's audit trail.
type Transaction struct {
	Date     time.Time `json:"date"`
	Ticker   string    `json:"ticker"`
	Quantity float64   `json:"quantity"` // signed: + buy, - sell/short
	Price    float64   `json:"price"`
	PairID   string    `json:"pair_id"`
}

// Position is a signed holding in one ticker. Absent means zero.
type Position struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}
