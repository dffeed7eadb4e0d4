package strategy

import (
	"strings"

	"github.com/alin847/pairs-trading/internal/signal"
)

// Build returns a pair model implementation matching the configured mode.
func Build(mode string, pair signal.Pair) PairModel {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "zscore", "z_score", "mean_reversion":
		return NewZScoreReversion(pair)
	case "logband", "log_band", "band":
		return NewLogBand(pair)
	default:
		return NewZScoreReversion(pair)
	}
}
