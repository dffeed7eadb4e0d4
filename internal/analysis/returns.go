// Package analysis computes post-hoc risk and return figures from the three
// backtest output histories. It reads nothing the histories do not contain.
package analysis

import (
	"sort"

	"github.com/alin847/pairs-trading/internal/account"
)

// MonthlyReturn is the account return over one calendar month.
type MonthlyReturn struct {
	Month  string // YYYY-MM
	Return float64
}

// MonthlyReturns aggregates the daily capital history into month-over-month
// returns. Each month's return is measured against the previous month's last
// capital figure; the first month uses its own first day as the base.
func MonthlyReturns(history []account.CapitalPoint) []MonthlyReturn {
	if len(history) == 0 {
		return nil
	}
	sorted := make([]account.CapitalPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var out []MonthlyReturn
	base := sorted[0].Capital
	month := sorted[0].Date.Format("2006-01")
	last := sorted[0].Capital
	for _, p := range sorted[1:] {
		m := p.Date.Format("2006-01")
		if m != month {
			out = append(out, MonthlyReturn{Month: month, Return: ratio(last, base)})
			base = last
			month = m
		}
		last = p.Capital
	}
	out = append(out, MonthlyReturn{Month: month, Return: ratio(last, base)})
	return out
}

// TotalReturn computes the overall return across the capital history.
func TotalReturn(history []account.CapitalPoint) float64 {
	if len(history) < 2 {
		return 0
	}
	return ratio(history[len(history)-1].Capital, history[0].Capital)
}

func ratio(last, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (last - base) / base
}

// DailyReturns converts a price or capital series into simple period returns.
func DailyReturns(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		out = append(out, ratio(series[i], series[i-1]))
	}
	return out
}
