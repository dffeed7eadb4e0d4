package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alin847/pairs-trading/internal/account"
)

func capPoint(y int, m time.Month, d int, capital float64) account.CapitalPoint {
	return account.CapitalPoint{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Capital: capital}
}

func TestMonthlyReturns(t *testing.T) {
	history := []account.CapitalPoint{
		capPoint(2024, time.January, 2, 1000),
		capPoint(2024, time.January, 15, 1020),
		capPoint(2024, time.January, 31, 1050),
		capPoint(2024, time.February, 1, 1050),
		capPoint(2024, time.February, 29, 1029),
	}

	got := MonthlyReturns(history)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.InDelta(t, 0.05, got[0].Return, 1e-9)
	assert.Equal(t, "2024-02", got[1].Month)
	assert.InDelta(t, -0.02, got[1].Return, 1e-9)
}

func TestMonthlyReturnsEmpty(t *testing.T) {
	assert.Nil(t, MonthlyReturns(nil))
}

func TestTotalReturn(t *testing.T) {
	history := []account.CapitalPoint{
		capPoint(2024, time.January, 2, 1000),
		capPoint(2024, time.March, 29, 1100),
	}
	assert.InDelta(t, 0.1, TotalReturn(history), 1e-9)
	assert.Zero(t, TotalReturn(history[:1]))
}

func TestDailyReturns(t *testing.T) {
	got := DailyReturns([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.1, got[0], 1e-9)
	assert.InDelta(t, -0.1, got[1], 1e-9)
	assert.Nil(t, DailyReturns([]float64{100}))
}
