// Package market hosts the historical daily price panel and its loaders.
package market

import (
	"sort"
	"time"

	"github.com/alin847/pairs-trading/internal/signal"
)

// Panel is a pre-loaded daily price panel keyed by (ticker, date). The whole
// panel is built before the simulation starts, so lookups never touch I/O.
// Gaps are permitted: a missing (ticker, date) cell simply reports !ok.
type Panel struct {
	dates   []time.Time
	tickers []string
	bars    map[string]map[time.Time]signal.PriceBar
}

// NewPanel indexes the given bars. The panel calendar is the sorted union of
// every bar date; duplicate (ticker, date) entries keep the last bar seen.
func NewPanel(bars []signal.PriceBar) *Panel {
	p := &Panel{bars: make(map[string]map[time.Time]signal.PriceBar)}
	dateSet := make(map[time.Time]struct{})
	for _, bar := range bars {
		d := Day(bar.Date)
		bar.Date = d
		byDate := p.bars[bar.Ticker]
		if byDate == nil {
			byDate = make(map[time.Time]signal.PriceBar)
			p.bars[bar.Ticker] = byDate
		}
		byDate[d] = bar
		dateSet[d] = struct{}{}
	}
	for d := range dateSet {
		p.dates = append(p.dates, d)
	}
	sort.Slice(p.dates, func(i, j int) bool { return p.dates[i].Before(p.dates[j]) })
	for t := range p.bars {
		p.tickers = append(p.tickers, t)
	}
	sort.Strings(p.tickers)
	return p
}

// Day normalizes a timestamp to its UTC calendar date so dates compare and
// hash consistently across the module.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dates returns the panel's trading calendar in ascending order.
func (p *Panel) Dates() []time.Time {
	out := make([]time.Time, len(p.dates))
	copy(out, p.dates)
	return out
}

// DatesBetween returns the calendar restricted to [start, end] inclusive.
// Zero bounds are open-ended.
func (p *Panel) DatesBetween(start, end time.Time) []time.Time {
	var out []time.Time
	for _, d := range p.dates {
		if !start.IsZero() && d.Before(Day(start)) {
			continue
		}
		if !end.IsZero() && d.After(Day(end)) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Tickers returns every ticker present in the panel, sorted.
func (p *Panel) Tickers() []string {
	out := make([]string, len(p.tickers))
	copy(out, p.tickers)
	return out
}

// Open returns the opening price for ticker on date.
func (p *Panel) Open(ticker string, date time.Time) (float64, bool) {
	bar, ok := p.bars[ticker][Day(date)]
	if !ok {
		return 0, false
	}
	return bar.Open, true
}

// Close returns the closing price for ticker on date.
func (p *Panel) Close(ticker string, date time.Time) (float64, bool) {
	bar, ok := p.bars[ticker][Day(date)]
	if !ok {
		return 0, false
	}
	return bar.Close, true
}

// OpenAsOf returns the most recent opening price at or before date. It is
// used only for marking open positions on gap days, never for execution.
func (p *Panel) OpenAsOf(ticker string, date time.Time) (float64, bool) {
	byDate := p.bars[ticker]
	if byDate == nil {
		return 0, false
	}
	d := Day(date)
	for i := len(p.dates) - 1; i >= 0; i-- {
		if p.dates[i].After(d) {
			continue
		}
		if bar, ok := byDate[p.dates[i]]; ok {
			return bar.Open, true
		}
	}
	return 0, false
}
