package alphavantage

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// HistoricalVolatility annualizes the sample standard deviation of daily log
// returns, assuming 252 trading days per year. Prices must be ordered oldest
// first.
func HistoricalVolatility(prices []float64) (float64, error) {
	if len(prices) < 2 {
		return 0, fmt.Errorf("not enough price data to calculate volatility")
	}

	logReturns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		logReturns = append(logReturns, math.Log(prices[i]/prices[i-1]))
	}

	variance := stat.Variance(logReturns, nil)
	return math.Sqrt(variance * tradingDaysPerYear), nil
}
