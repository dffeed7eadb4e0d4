package backtest

import (
	"github.com/alin847/pairs-trading/internal/account"
	"github.com/alin847/pairs-trading/internal/signal"
)

// Results is the complete output surface of a run: the final figures plus the
// three histories downstream analyses consume.
type Results struct {
	InitialCash    float64
	FinalCapital   float64
	TotalReturn    float64
	Transactions   []signal.Transaction
	CapitalHistory []account.CapitalPoint
	AssetHistory   []account.AssetPoint
}

func newResults(initialCash float64, acct *account.Account) *Results {
	r := &Results{
		InitialCash:    initialCash,
		TotalReturn:    acct.TotalReturn(),
		Transactions:   acct.Transactions(),
		CapitalHistory: acct.CapitalHistory(),
		AssetHistory:   acct.AssetHistory(),
	}
	if len(r.CapitalHistory) > 0 {
		r.FinalCapital = r.CapitalHistory[len(r.CapitalHistory)-1].Capital
	} else {
		r.FinalCapital = initialCash
	}
	return r
}
