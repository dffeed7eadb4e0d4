package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alin847/pairs-trading/internal/signal"
)

var zPair = signal.Pair{
	ID:                "AAA-BBB",
	TickerA:           "AAA",
	TickerB:           "BBB",
	HedgeRatio:        1.0,
	WindowLength:      5,
	EntryThreshold:    2.0,
	ExitThreshold:     0.5,
	StopLossThreshold: 4.0,
}

func zDay(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// feedSpreads drives the model with close_b fixed at 50 and close_a = 50+s,
// so with hedge ratio 1 the spread equals s exactly.
func feedSpreads(m PairModel, spreads []float64, startDay int) []signal.Decision {
	out := make([]signal.Decision, 0, len(spreads))
	for i, s := range spreads {
		out = append(out, m.Decide(50+s, true, 50, true, zDay(startDay+i)))
	}
	return out
}

func TestZScoreWarmupHolds(t *testing.T) {
	m := NewZScoreReversion(zPair)
	decisions := feedSpreads(m, []float64{0.1, -0.1, 0.1, -0.1, 0.0}, 1)
	for i, d := range decisions {
		assert.Equal(t, signal.Hold, d.Action, "day %d should be warm-up hold", i+1)
	}
	assert.Equal(t, Flat, m.State())
}

func TestZScoreEnterShortThenExit(t *testing.T) {
	m := NewZScoreReversion(zPair)
	feedSpreads(m, []float64{0.1, -0.1, 0.1, -0.1, 0.0}, 1)

	// Prior window mean 0, stddev 0.1: spread 1.0 scores z = 10.
	d := m.Decide(51.0, true, 50, true, zDay(6))
	require.Equal(t, signal.EnterShortSpread, d.Action)
	assert.InDelta(t, 10.0, d.Z, 1e-9)
	assert.Equal(t, ShortSpread, m.State())

	holds := feedSpreads(m, []float64{0.9, 0.8, 0.85}, 7)
	for i, h := range holds {
		assert.Equalf(t, signal.Hold, h.Action, "day %d: z still outside exit band", 7+i)
	}
	assert.Equal(t, ShortSpread, m.State())

	// Window is now [0, 1.0, 0.9, 0.8, 0.85]; spread 0.75 scores z ~= 0.099.
	d = m.Decide(50.75, true, 50, true, zDay(10))
	require.Equal(t, signal.Exit, d.Action)
	assert.InDelta(t, 0.0991, d.Z, 1e-3)
	assert.Equal(t, Flat, m.State())
}

func TestZScoreEnterLongThenStopLoss(t *testing.T) {
	m := NewZScoreReversion(zPair)
	feedSpreads(m, []float64{0.1, -0.1, 0.1, -0.1, 0.0}, 1)

	d := m.Decide(49.0, true, 50, true, zDay(6))
	require.Equal(t, signal.EnterLongSpread, d.Action)
	assert.Equal(t, LongSpread, m.State())

	// Adverse move far beyond the stop band.
	d = m.Decide(45.0, true, 50, true, zDay(7))
	require.Equal(t, signal.StopLossExit, d.Action)
	assert.Less(t, d.Z, -zPair.StopLossThreshold)
	assert.Equal(t, Flat, m.State())
}

func TestZScoreDegenerateWindowHolds(t *testing.T) {
	m := NewZScoreReversion(zPair)
	feedSpreads(m, []float64{0.5, 0.5, 0.5, 0.5, 0.5}, 1)

	d := m.Decide(55.0, true, 50, true, zDay(6))
	assert.Equal(t, signal.Hold, d.Action)
	assert.Equal(t, Flat, m.State())
}

func TestZScoreMissingCloseLeavesWindowUnchanged(t *testing.T) {
	clean := NewZScoreReversion(zPair)
	gappy := NewZScoreReversion(zPair)

	spreads := []float64{0.1, -0.1, 0.1, -0.1, 0.0}
	feedSpreads(clean, spreads, 1)
	for i, s := range spreads {
		d := gappy.Decide(0, false, 50, true, zDay(2*i+1))
		require.Equal(t, signal.Hold, d.Action)
		gappy.Decide(50+s, true, 50, true, zDay(2*i+2))
	}

	want := clean.Decide(51.0, true, 50, true, zDay(6))
	got := gappy.Decide(51.0, true, 50, true, zDay(11))
	assert.Equal(t, want.Action, got.Action)
	assert.InDelta(t, want.Z, got.Z, 1e-12)
}

func TestBuildModes(t *testing.T) {
	assert.IsType(t, &ZScoreReversion{}, Build("", zPair))
	assert.IsType(t, &ZScoreReversion{}, Build("zscore", zPair))
	assert.IsType(t, &LogBand{}, Build("logband", zPair))
	assert.IsType(t, &ZScoreReversion{}, Build("unknown", zPair))
}
