package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"github.com/quantengine/quantengine/marketdata"
)

// stubInstrument satisfies Instrument with fixed terms so engines can be
// exercised without a full EuropeanOption.
type stubInstrument[T constraints.Float] struct {
	params Parameters[T]
}

func (s *stubInstrument[T]) Price() (T, error)                          { return 0, nil }
func (s *stubInstrument[T]) Greeks() (map[string]T, error)              { return nil, nil }
func (s *stubInstrument[T]) UpdateMarketData(*marketdata.MarketData[T]) {}
func (s *stubInstrument[T]) SetPricingEngine(PricingEngine[T])          {}
func (s *stubInstrument[T]) Validate() error                            { return nil }
func (s *stubInstrument[T]) Parameters() Parameters[T]                  { return s.params }

func atmCall[T constraints.Float]() *stubInstrument[T] {
	return &stubInstrument[T]{params: Parameters[T]{Notional: 1, Strike: 100, Maturity: 1, Spot: 100, IsCall: true}}
}

func atmPut[T constraints.Float]() *stubInstrument[T] {
	return &stubInstrument[T]{params: Parameters[T]{Notional: 1, Strike: 100, Maturity: 1, Spot: 100, IsCall: false}}
}

func standardMarket(t *testing.T) *marketdata.MarketData[float64] {
	t.Helper()
	md := marketdata.New[float64]()
	require.NoError(t, md.AddRiskFreeRate(1.0, 0.05))
	require.NoError(t, md.AddVolatility(100, 1.0, 0.20))
	return md
}

func TestBlackScholesCallPrice(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	price, err := engine.CalculatePrice(atmCall[float64](), standardMarket(t))
	require.NoError(t, err)
	assert.InDelta(t, 10.45, price, 0.01)
}

func TestBlackScholesPutPrice(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	price, err := engine.CalculatePrice(atmPut[float64](), standardMarket(t))
	require.NoError(t, err)
	assert.InDelta(t, 5.57, price, 0.01)
}

func TestBlackScholesPutCallParity(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	md := standardMarket(t)

	call, err := engine.CalculatePrice(atmCall[float64](), md)
	require.NoError(t, err)
	put, err := engine.CalculatePrice(atmPut[float64](), md)
	require.NoError(t, err)

	// C - P = S - K*e^(-rT)
	assert.InDelta(t, 100-100*math.Exp(-0.05), call-put, 1e-9)
}

func TestBlackScholesZeroVolatility(t *testing.T) {
	md := marketdata.New[float64]()
	require.NoError(t, md.AddRiskFreeRate(1.0, 0.05))
	require.NoError(t, md.AddVolatility(100, 1.0, 0.0))

	engine := NewBlackScholesEngine[float64]()
	price, err := engine.CalculatePrice(atmPut[float64](), md)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, price, 1e-12, "ATM put at zero volatility is worth its intrinsic value")
}

func TestBlackScholesEmptyMarket(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	empty := marketdata.New[float64]()

	_, err := engine.CalculatePrice(atmCall[float64](), empty)
	assert.ErrorIs(t, err, marketdata.ErrEmptyCurve)

	_, err = engine.CalculateGreeks(atmCall[float64](), empty)
	assert.ErrorIs(t, err, marketdata.ErrEmptyCurve)
}

func TestBlackScholesCallGreeks(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	greeks, err := engine.CalculateGreeks(atmCall[float64](), standardMarket(t))
	require.NoError(t, err)

	assert.InEpsilon(t, 0.6368, greeks[GreekDelta], 0.001)
	assert.InEpsilon(t, 0.01876, greeks[GreekGamma], 0.001)
	assert.InEpsilon(t, 0.3752, greeks[GreekVega], 0.001)
	assert.InEpsilon(t, -0.0176, greeks[GreekTheta], 0.01)
	assert.InEpsilon(t, 0.5327, greeks[GreekRho], 0.001)
}

func TestBlackScholesPutGreeks(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	md := standardMarket(t)

	callGreeks, err := engine.CalculateGreeks(atmCall[float64](), md)
	require.NoError(t, err)
	putGreeks, err := engine.CalculateGreeks(atmPut[float64](), md)
	require.NoError(t, err)

	assert.InEpsilon(t, -0.3632, putGreeks[GreekDelta], 0.001)
	assert.InDelta(t, callGreeks[GreekDelta]-1, putGreeks[GreekDelta], 1e-12, "delta_put = delta_call - 1")
	assert.InDelta(t, callGreeks[GreekGamma], putGreeks[GreekGamma], 1e-12, "gamma identical for call and put")
	assert.InDelta(t, callGreeks[GreekVega], putGreeks[GreekVega], 1e-12, "vega identical for call and put")
	assert.InDelta(t, -0.00454, putGreeks[GreekTheta], 0.00001)
	assert.InEpsilon(t, -0.4189, putGreeks[GreekRho], 0.001)
}

func TestBlackScholesHighVolatilityVega(t *testing.T) {
	md := marketdata.New[float64]()
	require.NoError(t, md.AddRiskFreeRate(1.0, 0.05))
	require.NoError(t, md.AddVolatility(100, 1.0, 1.0))

	engine := NewBlackScholesEngine[float64]()
	greeks, err := engine.CalculateGreeks(atmCall[float64](), md)
	require.NoError(t, err)

	// Vega shrinks as volatility grows.
	assert.InEpsilon(t, 0.3429, greeks[GreekVega], 0.001)
}

func TestBlackScholesFloat32(t *testing.T) {
	md := marketdata.New[float32]()
	require.NoError(t, md.AddRiskFreeRate(1.0, 0.05))
	require.NoError(t, md.AddVolatility(100, 1.0, 0.20))

	engine := NewBlackScholesEngine[float32]()
	price, err := engine.CalculatePrice(atmCall[float32](), md)
	require.NoError(t, err)
	assert.InDelta(t, 10.45, float64(price), 0.1)
}

func TestBlackScholesClone(t *testing.T) {
	engine := NewBlackScholesEngine[float64]()
	clone := engine.Clone()

	assert.NotSame(t, engine, clone)

	price, err := engine.CalculatePrice(atmCall[float64](), standardMarket(t))
	require.NoError(t, err)
	clonePrice, err := clone.CalculatePrice(atmCall[float64](), standardMarket(t))
	require.NoError(t, err)
	assert.Equal(t, price, clonePrice)
}
