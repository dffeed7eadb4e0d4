package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alin847/pairs-trading/internal/account"
)

// Weights are the signed portfolio weights per ticker on one date, normalized
// by gross exposure. Cash rows are excluded.
type Weights struct {
	Date    time.Time
	Tickers []string
	Values  []float64
}

// PortfolioWeights derives per-date weights for the given tickers from the
// asset history, normalizing each date by the sum of absolute position values.
func PortfolioWeights(history []account.AssetPoint, tickers []string) []Weights {
	byDate := make(map[time.Time]map[string]float64)
	var dates []time.Time
	for _, p := range history {
		if p.Ticker == "CASH" {
			continue
		}
		if byDate[p.Date] == nil {
			byDate[p.Date] = make(map[string]float64)
			dates = append(dates, p.Date)
		}
		byDate[p.Date][p.Ticker] = p.Value
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]Weights, 0, len(dates))
	for _, d := range dates {
		values := make([]float64, len(tickers))
		var gross float64
		for i, t := range tickers {
			values[i] = byDate[d][t]
			gross += math.Abs(values[i])
		}
		if gross > 0 {
			for i := range values {
				values[i] /= gross
			}
		}
		out = append(out, Weights{Date: d, Tickers: tickers, Values: values})
	}
	return out
}

// Covariance builds the sample covariance matrix of the given return series.
// Each element of series is one asset's returns; all series must share length.
func Covariance(series [][]float64) (*mat.SymDense, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("covariance: no return series")
	}
	n := len(series[0])
	if n < 2 {
		return nil, fmt.Errorf("covariance: need at least 2 observations, have %d", n)
	}
	data := make([]float64, 0, n*len(series))
	for t := 0; t < n; t++ {
		for _, s := range series {
			if len(s) != n {
				return nil, fmt.Errorf("covariance: return series lengths differ (%d vs %d)", len(s), n)
			}
			data = append(data, s[t])
		}
	}
	x := mat.NewDense(n, len(series), data)
	cov := mat.NewSymDense(len(series), nil)
	stat.CovarianceMatrix(cov, x, nil)
	return cov, nil
}

// PortfolioVariance computes w' * cov * w.
func PortfolioVariance(weights []float64, cov *mat.SymDense) float64 {
	w := mat.NewVecDense(len(weights), weights)
	var tmp mat.VecDense
	tmp.MulVec(cov, w)
	return mat.Dot(w, &tmp)
}

// ValueAtRisk computes the parametric (normal) one-period VaR of the
// portfolio at significance level alpha, as a positive fraction of capital.
func ValueAtRisk(weights []float64, cov *mat.SymDense, alpha float64) float64 {
	std := math.Sqrt(PortfolioVariance(weights, cov))
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return -std * normal.Quantile(alpha)
}
