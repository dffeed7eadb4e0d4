// Package strategy contains the per-pair signal models that turn close prices
// into trade decisions.
package strategy

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/alin847/pairs-trading/internal/signal"
)

// State is the per-pair position state tracked by a signal model.
type State string

const (
	// Flat means no open exposure for the pair.
	Flat State = "FLAT"
	// LongSpread means the model entered long ticker A / short ticker B.
	LongSpread State = "LONG_SPREAD"
	// ShortSpread means the model entered short ticker A / long ticker B.
	ShortSpread State = "SHORT_SPREAD"
)

// PairModel is one pair's signal model. Decide consumes the day's close
// prices (ok=false marks a missing close) and returns the decision for that
// date. Models hold no cash or position quantities; execution belongs to the
// account.
type PairModel interface {
	Decide(closeA float64, okA bool, closeB float64, okB bool, date time.Time) signal.Decision
	State() State
	Name() string
}

// ZScoreReversion trades mean reversion of the price spread
// close_a - hedge_ratio*close_b via a rolling z-score.
//
// The rolling mean and standard deviation are computed over the trailing
// window_length observations *before* the current one, so the day's spread is
// scored against history it is not part of. A day with a missing close on
// either leg contributes no observation: the window does not advance and the
// model holds.
type ZScoreReversion struct {
	pair    signal.Pair
	state   State
	history []float64 // trailing spread observations, capped at window length
}

// NewZScoreReversion builds the model for one configured pair.
func NewZScoreReversion(pair signal.Pair) *ZScoreReversion {
	return &ZScoreReversion{
		pair:    pair,
		state:   Flat,
		history: make([]float64, 0, pair.WindowLength),
	}
}

// Name returns the model identifier for logging.
func (m *ZScoreReversion) Name() string { return "ZScoreReversion" }

// State returns the current state-machine state.
func (m *ZScoreReversion) State() State { return m.state }

// Decide evaluates one close date and advances the state machine.
func (m *ZScoreReversion) Decide(closeA float64, okA bool, closeB float64, okB bool, date time.Time) signal.Decision {
	hold := signal.Decision{PairID: m.pair.ID, Action: signal.Hold, Date: date}
	if !okA || !okB {
		// Missing close on a leg: no observation for the day.
		return hold
	}

	spread := closeA - m.pair.HedgeRatio*closeB
	defer m.observe(spread)

	if len(m.history) < m.pair.WindowLength {
		// Warm-up: not enough history to score the spread.
		return hold
	}

	mean, std := stat.MeanStdDev(m.history, nil)
	if std == 0 {
		// Degenerate window: no signal rather than a divide by zero.
		return hold
	}
	z := (spread - mean) / std

	decision := hold
	decision.Z = z
	switch m.state {
	case Flat:
		switch {
		case z >= m.pair.EntryThreshold:
			m.state = ShortSpread
			decision.Action = signal.EnterShortSpread
		case z <= -m.pair.EntryThreshold:
			m.state = LongSpread
			decision.Action = signal.EnterLongSpread
		}
	case LongSpread, ShortSpread:
		switch {
		case z >= m.pair.StopLossThreshold || z <= -m.pair.StopLossThreshold:
			m.state = Flat
			decision.Action = signal.StopLossExit
		case z <= m.pair.ExitThreshold && z >= -m.pair.ExitThreshold:
			m.state = Flat
			decision.Action = signal.Exit
		}
	}
	return decision
}

func (m *ZScoreReversion) observe(spread float64) {
	m.history = append(m.history, spread)
	if len(m.history) > m.pair.WindowLength {
		m.history = m.history[len(m.history)-m.pair.WindowLength:]
	}
}
