package pricing

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantengine/quantengine/marketdata"
)

var stdNormal = distuv.UnitNormal

// BlackScholesEngine prices European options with the closed-form
// Black-Scholes formula and computes delta, gamma, vega, theta and rho.
// Vega and rho are reported per one-percentage-point move, theta per
// calendar day. The engine is stateless.
type BlackScholesEngine[T constraints.Float] struct{}

var _ PricingEngine[float64] = (*BlackScholesEngine[float64])(nil)

func NewBlackScholesEngine[T constraints.Float]() *BlackScholesEngine[T] {
	return &BlackScholesEngine[T]{}
}

// CalculatePrice looks up the rate and volatility for the contract's strike
// and maturity and evaluates the Black-Scholes call or put formula.
func (e *BlackScholesEngine[T]) CalculatePrice(instrument Instrument[T], market *marketdata.MarketData[T]) (T, error) {
	p := instrument.Parameters()
	S, K, maturity := float64(p.Spot), float64(p.Strike), float64(p.Maturity)

	r, sigma, err := lookupMarket(market, p)
	if err != nil {
		return 0, err
	}

	d1 := bsD1(S, K, r, sigma, maturity)
	d2 := d1 - sigma*math.Sqrt(maturity)

	if p.IsCall {
		return T(S*normCDF(d1) - K*math.Exp(-r*maturity)*normCDF(d2)), nil
	}
	return T(K*math.Exp(-r*maturity)*normCDF(-d2) - S*normCDF(-d1)), nil
}

// CalculateGreeks evaluates all sensitivities at the same d1/d2 terms as the
// price.
func (e *BlackScholesEngine[T]) CalculateGreeks(instrument Instrument[T], market *marketdata.MarketData[T]) (map[string]T, error) {
	p := instrument.Parameters()
	S, K, maturity := float64(p.Spot), float64(p.Strike), float64(p.Maturity)

	r, sigma, err := lookupMarket(market, p)
	if err != nil {
		return nil, err
	}

	d1 := bsD1(S, K, r, sigma, maturity)
	d2 := d1 - sigma*math.Sqrt(maturity)
	discount := math.Exp(-r * maturity)
	nPrime := normPDF(d1)

	greeks := make(map[string]T, 5)

	if p.IsCall {
		greeks[GreekDelta] = T(normCDF(d1))
	} else {
		greeks[GreekDelta] = T(normCDF(d1) - 1)
	}

	greeks[GreekGamma] = T(nPrime / (S * sigma * math.Sqrt(maturity)))

	// Per one-percentage-point volatility move.
	greeks[GreekVega] = T(S * math.Sqrt(maturity) * nPrime * 0.01)

	// Per-calendar-day decay.
	var theta float64
	if p.IsCall {
		theta = (-(S*sigma*nPrime)/(2*math.Sqrt(maturity)) - r*K*discount*normCDF(d2)) / 365
	} else {
		theta = (-(S*sigma*nPrime)/(2*math.Sqrt(maturity)) + r*K*discount*normCDF(-d2)) / 365
	}
	greeks[GreekTheta] = T(theta)

	// Per one-percentage-point rate move.
	if p.IsCall {
		greeks[GreekRho] = T(K * maturity * discount * normCDF(d2) * 0.01)
	} else {
		greeks[GreekRho] = T(-K * maturity * discount * normCDF(-d2) * 0.01)
	}

	return greeks, nil
}

// Clone returns an independent copy of the engine.
func (e *BlackScholesEngine[T]) Clone() PricingEngine[T] {
	clone := *e
	return &clone
}

func lookupMarket[T constraints.Float](market *marketdata.MarketData[T], p Parameters[T]) (r, sigma float64, err error) {
	rate, err := market.RiskFreeRate(p.Maturity)
	if err != nil {
		return 0, 0, err
	}
	vol, err := market.Volatility(p.Strike, p.Maturity)
	if err != nil {
		return 0, 0, err
	}
	return float64(rate), float64(vol), nil
}

func bsD1(S, K, r, sigma, maturity float64) float64 {
	return (math.Log(S/K) + (r+0.5*sigma*sigma)*maturity) / (sigma * math.Sqrt(maturity))
}

func normCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return stdNormal.Prob(x)
}
