package market

import (
	"math"
	"time"

	"github.com/alin847/pairs-trading/internal/signal"
)

// SyntheticPanel emits a deterministic daily panel (useful for tests/offline
// work). Each ticker follows a slow drift plus a phase-shifted oscillation, so
// pairs of synthetic tickers produce mean-reverting spreads.
func SyntheticPanel(tickers []string, start time.Time, days int) *Panel {
	bars := make([]signal.PriceBar, 0, len(tickers)*days)
	day := Day(start)
	for d := 0; d < days; d++ {
		for i, ticker := range tickers {
			base := 100.0 + 5.0*float64(i)
			phase := float64(i) * math.Pi / 4
			closing := base + 0.05*float64(d) + 2.0*math.Sin(0.35*float64(d)+phase)
			open := base + 0.05*float64(d) + 2.0*math.Sin(0.35*(float64(d)-0.5)+phase)
			bars = append(bars, signal.PriceBar{
				Ticker: ticker,
				Date:   day,
				Open:   open,
				Close:  closing,
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return NewPanel(bars)
}
