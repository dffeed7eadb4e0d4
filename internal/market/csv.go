package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alin847/pairs-trading/internal/signal"
)

// LoadPanelCSV reads a daily price panel from a CSV file with the columns
// ticker,date,open,close (header required, dates as YYYY-MM-DD). Rows with a
// blank or non-numeric open and close are skipped, leaving a gap in the panel.
func LoadPanelCSV(path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price panel: %w", err)
	}
	defer f.Close()
	return ReadPanel(f)
}

// ReadPanel parses panel CSV content from r. Split out from LoadPanelCSV so
// tests can feed strings directly.
func ReadPanel(r io.Reader) (*Panel, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read panel header: %w", err)
	}
	if len(header) != 4 || !strings.EqualFold(header[0], "ticker") {
		return nil, fmt.Errorf("unexpected panel header %v, want ticker,date,open,close", header)
	}

	var bars []signal.PriceBar
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read panel row %d: %w", line, err)
		}
		line++

		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("panel row %d: bad date %q: %w", line, rec[1], err)
		}
		open, okOpen := parsePrice(rec[2])
		closing, okClose := parsePrice(rec[3])
		if !okOpen && !okClose {
			continue // gap day for this ticker
		}
		if !okOpen || !okClose {
			return nil, fmt.Errorf("panel row %d: ticker %s on %s has only one of open/close", line, rec[0], rec[1])
		}
		bars = append(bars, signal.PriceBar{
			Ticker: strings.TrimSpace(rec[0]),
			Date:   date,
			Open:   open,
			Close:  closing,
		})
	}
	return NewPanel(bars), nil
}

func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// LoadPairsCSV reads the ordered pair configuration produced by the external
// pair-discovery step. Columns: ticker_a,ticker_b,hedge_ratio,window_length,
// entry_threshold,exit_threshold,stop_loss_threshold. The pair ID is the two
// tickers joined with a dash; IDs must be unique.
func LoadPairsCSV(path string) ([]signal.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pairs file: %w", err)
	}
	defer f.Close()
	return ReadPairs(f)
}

// ReadPairs parses pair configuration CSV content from r.
func ReadPairs(r io.Reader) ([]signal.Pair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read pairs header: %w", err)
	}
	if !strings.EqualFold(header[0], "ticker_a") {
		return nil, fmt.Errorf("unexpected pairs header %v", header)
	}

	var pairs []signal.Pair
	seen := make(map[string]struct{})
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pairs row %d: %w", line, err)
		}
		line++

		fields := make([]float64, 5)
		for i, col := range rec[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(col), 64)
			if err != nil {
				return nil, fmt.Errorf("pairs row %d: bad numeric field %q: %w", line, col, err)
			}
			fields[i] = v
		}
		window := int(fields[1])
		pair := signal.Pair{
			ID:                strings.TrimSpace(rec[0]) + "-" + strings.TrimSpace(rec[1]),
			TickerA:           strings.TrimSpace(rec[0]),
			TickerB:           strings.TrimSpace(rec[1]),
			HedgeRatio:        fields[0],
			WindowLength:      window,
			EntryThreshold:    fields[2],
			ExitThreshold:     fields[3],
			StopLossThreshold: fields[4],
		}
		if err := pair.Validate(); err != nil {
			return nil, fmt.Errorf("pairs row %d: %w", line, err)
		}
		if _, dup := seen[pair.ID]; dup {
			return nil, fmt.Errorf("pairs row %d: duplicate pair %s", line, pair.ID)
		}
		seen[pair.ID] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}
