package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/alin847/pairs-trading/internal/account"
	"github.com/alin847/pairs-trading/internal/signal"
)

// WriteCapitalCSV writes the daily capital history, one row per date.
func WriteCapitalCSV(path string, history []account.CapitalPoint) error {
	return writeCSV(path, []string{"date", "capital"}, len(history), func(i int) []string {
		return []string{fmtDate(history[i].Date), fmtFloat(history[i].Capital)}
	})
}

// WriteAssetCSV writes the daily asset history, one row per held ticker per
// date plus the CASH row.
func WriteAssetCSV(path string, history []account.AssetPoint) error {
	return writeCSV(path, []string{"date", "ticker", "quantity", "value"}, len(history), func(i int) []string {
		r := history[i]
		return []string{fmtDate(r.Date), r.Ticker, fmtFloat(r.Quantity), fmtFloat(r.Value)}
	})
}

// WriteTransactionsCSV writes the full ordered transaction log, one row per
// executed leg.
func WriteTransactionsCSV(path string, txs []signal.Transaction) error {
	return writeCSV(path, []string{"date", "ticker", "quantity", "price", "pair_id"}, len(txs), func(i int) []string {
		t := txs[i]
		return []string{fmtDate(t.Date), t.Ticker, fmtFloat(t.Quantity), fmtFloat(t.Price), t.PairID}
	})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtDate(t time.Time) string { return t.Format("2006-01-02") }

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
