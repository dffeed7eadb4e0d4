package account

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alin847/pairs-trading/internal/signal"
)

func TestJSONLRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.jsonl")

	recorder, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	tx := signal.Transaction{
		Date:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Ticker:   "AAA",
		Quantity: -10,
		Price:    51,
		PairID:   "AAA-BBB",
	}
	recorder.Record(tx)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recorded file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatalf("expected one line in recorder output")
	}
	var decoded signal.Transaction
	if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if decoded.Ticker != tx.Ticker || decoded.Quantity != tx.Quantity || decoded.PairID != tx.PairID {
		t.Fatalf("unexpected decoded transaction: %+v", decoded)
	}
}
