package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	DecisionsTotal.WithLabelValues("AAA-BBB", "ENTER_SHORT_SPREAD").Inc()
	TransactionsTotal.WithLabelValues("AAA", "sell").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
	}
	if !found["decisions_total"] {
		t.Fatalf("decisions_total metric not found")
	}
	if !found["transactions_total"] {
		t.Fatalf("transactions_total metric not found")
	}
}
