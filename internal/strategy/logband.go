package strategy

import (
	"math"
	"time"

	"github.com/alin847/pairs-trading/internal/signal"
)

// LogBand trades fixed bands on the log spread
// ln(close_a) - hedge_ratio*ln(close_b). Thresholds are absolute spread
// levels, not z-scores: entry at +/-entry_threshold, exit once the spread
// reverts inside +/-exit_threshold, stop loss beyond +/-stop_loss_threshold.
// Unlike ZScoreReversion it needs no warm-up window, and it refuses to enter
// when the spread is already past the stop band.
type LogBand struct {
	pair  signal.Pair
	state State
}

// NewLogBand builds the fixed-band model for one configured pair.
func NewLogBand(pair signal.Pair) *LogBand {
	return &LogBand{pair: pair, state: Flat}
}

// Name returns the model identifier for logging.
func (m *LogBand) Name() string { return "LogBand" }

// State returns the current state-machine state.
func (m *LogBand) State() State { return m.state }

// Decide evaluates one close date and advances the state machine.
func (m *LogBand) Decide(closeA float64, okA bool, closeB float64, okB bool, date time.Time) signal.Decision {
	hold := signal.Decision{PairID: m.pair.ID, Action: signal.Hold, Date: date}
	if !okA || !okB || closeA <= 0 || closeB <= 0 {
		return hold
	}

	spread := math.Log(closeA) - m.pair.HedgeRatio*math.Log(closeB)
	decision := hold
	decision.Z = spread

	switch m.state {
	case Flat:
		switch {
		case spread > m.pair.EntryThreshold && spread < m.pair.StopLossThreshold:
			m.state = ShortSpread
			decision.Action = signal.EnterShortSpread
		case spread < -m.pair.EntryThreshold && spread > -m.pair.StopLossThreshold:
			m.state = LongSpread
			decision.Action = signal.EnterLongSpread
		}
	case LongSpread:
		switch {
		case spread <= -m.pair.StopLossThreshold:
			m.state = Flat
			decision.Action = signal.StopLossExit
		case spread >= -m.pair.ExitThreshold:
			m.state = Flat
			decision.Action = signal.Exit
		}
	case ShortSpread:
		switch {
		case spread >= m.pair.StopLossThreshold:
			m.state = Flat
			decision.Action = signal.StopLossExit
		case spread <= m.pair.ExitThreshold:
			m.state = Flat
			decision.Action = signal.Exit
		}
	}
	return decision
}
