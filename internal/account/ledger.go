package account

import (
	"sync"

	"github.com/alin847/pairs-trading/internal/signal"
)

// Ledger stores executed transactions in memory, in execution order.
type Ledger struct {
	mu  sync.Mutex
	txs []signal.Transaction
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{txs: make([]signal.Transaction, 0, capacity)}
}

// Record appends a transaction to the ledger.
func (l *Ledger) Record(tx signal.Transaction) {
	l.mu.Lock()
	l.txs = append(l.txs, tx)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded transactions.
func (l *Ledger) Snapshot() []signal.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]signal.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}
