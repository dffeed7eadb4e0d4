// Package risk encodes the sizing guard-rails applied when opening positions.
package risk

import (
	"fmt"

	"github.com/alin847/pairs-trading/internal/signal"
)

// Sizing is the fixed fractional capital allocation applied per pair trade.
// DollarPerPair is split across the two legs in proportion to the hedge
// ratio, so a hedge ratio of h puts 1/(1+h) of the notional on ticker A and
// h/(1+h) on ticker B.
type Sizing struct {
	DollarPerPair float64
}

// Validate checks the sizing policy is usable.
func (s Sizing) Validate() error {
	if s.DollarPerPair <= 0 {
		return fmt.Errorf("dollar per pair must be positive, got %v", s.DollarPerPair)
	}
	return nil
}

// LegQuantities converts the policy into signed share counts at the given
// execution prices. A long spread buys ticker A and shorts ticker B; a short
// spread is the inverse. Quantities are fractional shares.
func (s Sizing) LegQuantities(dir signal.Direction, hedgeRatio, priceA, priceB float64) (qtyA, qtyB float64) {
	sign := dir.Sign()
	ratioA := 1 / (1 + hedgeRatio)
	ratioB := hedgeRatio / (1 + hedgeRatio)
	qtyA = sign * ratioA * s.DollarPerPair / priceA
	qtyB = -sign * ratioB * s.DollarPerPair / priceB
	return qtyA, qtyB
}
