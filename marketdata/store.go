package marketdata

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidPoint reports an add-operation input outside its domain.
	ErrInvalidPoint = errors.New("invalid market data point")
	// ErrEmptyCurve reports a rate query against a curve with no points.
	ErrEmptyCurve = errors.New("yield curve is empty")
	// ErrInsufficientData reports a volatility query that cannot be
	// interpolated from fewer than two distinct strikes or maturities.
	ErrInsufficientData = errors.New("insufficient data for interpolation")
	// ErrOutOfRange reports a volatility query outside the surface bounds.
	ErrOutOfRange = errors.New("query outside surface bounds")
	// ErrMissingPoint reports a sparse-grid gap at a required corner.
	ErrMissingPoint = errors.New("missing volatility point")
)

type ratePoint[T constraints.Float] struct {
	time T
	rate T
}

type volKey[T constraints.Float] struct {
	strike   T
	maturity T
}

// MarketData holds the market environment needed to price an instrument: a
// yield curve queried with flat extrapolation outside its range and linear
// interpolation within it, and a volatility surface queried with bilinear
// interpolation. A single instance computes in one floating-point precision T;
// the zero value is an empty, usable store.
type MarketData[T constraints.Float] struct {
	curve      []ratePoint[T] // ascending by time
	surface    map[volKey[T]]T
	strikes    []T // sorted unique strike projection of surface
	maturities []T // sorted unique maturity projection of surface
}

// New returns an empty store.
func New[T constraints.Float]() *MarketData[T] {
	return &MarketData[T]{surface: make(map[volKey[T]]T)}
}

// AddRiskFreeRate records the annualized rate for a time-to-maturity in
// years, overwriting any previous rate at the same time.
func (m *MarketData[T]) AddRiskFreeRate(time, rate T) error {
	if time < 0 || rate < 0 {
		return fmt.Errorf("%w: time %v, rate %v", ErrInvalidPoint, time, rate)
	}

	i := sort.Search(len(m.curve), func(i int) bool { return m.curve[i].time >= time })
	if i < len(m.curve) && m.curve[i].time == time {
		m.curve[i].rate = rate
		return nil
	}
	m.curve = append(m.curve, ratePoint[T]{})
	copy(m.curve[i+1:], m.curve[i:])
	m.curve[i] = ratePoint[T]{time: time, rate: rate}
	return nil
}

// AddVolatility records the volatility for a (strike, maturity) grid point,
// overwriting any previous value, and keeps the sorted strike/maturity
// projections in sync.
func (m *MarketData[T]) AddVolatility(strike, maturity, volatility T) error {
	if strike <= 0 || maturity < 0 || volatility < 0 {
		return fmt.Errorf("%w: strike %v, maturity %v, volatility %v",
			ErrInvalidPoint, strike, maturity, volatility)
	}

	if m.surface == nil {
		m.surface = make(map[volKey[T]]T)
	}
	m.surface[volKey[T]{strike, maturity}] = volatility
	m.strikes = insertSorted(m.strikes, strike)
	m.maturities = insertSorted(m.maturities, maturity)
	return nil
}

// RiskFreeRate estimates the rate for any time-to-maturity. A single-point
// curve is flat everywhere; queries outside the stored range extrapolate flat
// from the nearest point; queries inside interpolate linearly.
func (m *MarketData[T]) RiskFreeRate(time T) (T, error) {
	if len(m.curve) == 0 {
		return 0, ErrEmptyCurve
	}
	if len(m.curve) == 1 {
		return m.curve[0].rate, nil
	}

	i := sort.Search(len(m.curve), func(i int) bool { return m.curve[i].time >= time })
	switch i {
	case 0:
		return m.curve[0].rate, nil
	case len(m.curve):
		return m.curve[len(m.curve)-1].rate, nil
	}

	lo, hi := m.curve[i-1], m.curve[i]
	// Duplicate-time degenerate interval would divide by zero.
	if hi.time-lo.time < machineEpsilon[T]() {
		return lo.rate, nil
	}
	alpha := (time - lo.time) / (hi.time - lo.time)
	return lo.rate + alpha*(hi.rate-lo.rate), nil
}

// Volatility finds the volatility for a (strike, maturity) query. Exact grid
// hits are returned as stored; a 1x1 surface is flat everywhere; anything
// else requires at least a 2x2 grid and a query within the known bounds, and
// is answered by bilinear interpolation over the bracketing corners. A
// bracket degenerates to a single line when the query lands exactly on a
// known strike or maturity; the available corner value substitutes for the
// corners the degenerate axis removes.
func (m *MarketData[T]) Volatility(strike, maturity T) (T, error) {
	if v, ok := m.surface[volKey[T]{strike, maturity}]; ok {
		return v, nil
	}
	if len(m.strikes) == 1 && len(m.maturities) == 1 {
		return m.surface[volKey[T]{m.strikes[0], m.maturities[0]}], nil
	}
	if len(m.strikes) < 2 || len(m.maturities) < 2 {
		return 0, fmt.Errorf("%w: have %d strikes and %d maturities",
			ErrInsufficientData, len(m.strikes), len(m.maturities))
	}
	if strike < m.strikes[0] || strike > m.strikes[len(m.strikes)-1] {
		return 0, fmt.Errorf("%w: strike %v not in [%v, %v]",
			ErrOutOfRange, strike, m.strikes[0], m.strikes[len(m.strikes)-1])
	}
	if maturity < m.maturities[0] || maturity > m.maturities[len(m.maturities)-1] {
		return 0, fmt.Errorf("%w: maturity %v not in [%v, %v]",
			ErrOutOfRange, maturity, m.maturities[0], m.maturities[len(m.maturities)-1])
	}

	k0, k1 := bracket(m.strikes, strike)
	t0, t1 := bracket(m.maturities, maturity)

	if k0 == k1 && t0 == t1 {
		return m.cornerVol(k0, t0)
	}

	singleStrike := k0 == k1
	singleMaturity := t0 == t1

	v00, err := m.cornerVol(k0, t0)
	if err != nil {
		return 0, err
	}
	v01, v10, v11 := v00, v00, v00
	if !singleMaturity {
		if v01, err = m.cornerVol(k0, t1); err != nil {
			return 0, err
		}
	}
	if !singleStrike {
		if v10, err = m.cornerVol(k1, t0); err != nil {
			return 0, err
		}
	}
	if !singleStrike && !singleMaturity {
		if v11, err = m.cornerVol(k1, t1); err != nil {
			return 0, err
		}
	}

	// A degenerate axis keeps its weight at zero so the substituted corners
	// drop out of the sum.
	var x, y T
	if !singleStrike {
		x = (strike - k0) / (k1 - k0)
	}
	if !singleMaturity {
		y = (maturity - t0) / (t1 - t0)
	}
	return (1-x)*(1-y)*v00 + (1-x)*y*v01 + x*(1-y)*v10 + x*y*v11, nil
}

// Clone returns an independent deep copy of the store.
func (m *MarketData[T]) Clone() *MarketData[T] {
	c := &MarketData[T]{
		curve:      append([]ratePoint[T](nil), m.curve...),
		surface:    make(map[volKey[T]]T, len(m.surface)),
		strikes:    append([]T(nil), m.strikes...),
		maturities: append([]T(nil), m.maturities...),
	}
	for k, v := range m.surface {
		c.surface[k] = v
	}
	return c
}

func (m *MarketData[T]) cornerVol(strike, maturity T) (T, error) {
	v, ok := m.surface[volKey[T]{strike, maturity}]
	if !ok {
		return 0, fmt.Errorf("%w: (K=%v, T=%v)", ErrMissingPoint, strike, maturity)
	}
	return v, nil
}

// bracket returns the pair of neighbouring grid values straddling x. The
// caller guarantees x is within [xs[0], xs[len-1]]; at the lower bound the
// bracket collapses to a single value.
func bracket[T constraints.Float](xs []T, x T) (T, T) {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] >= x })
	switch i {
	case 0:
		return xs[0], xs[0]
	case len(xs):
		return xs[len(xs)-1], xs[len(xs)-1]
	}
	return xs[i-1], xs[i]
}

func insertSorted[T constraints.Float](xs []T, x T) []T {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] >= x })
	if i < len(xs) && xs[i] == x {
		return xs
	}
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = x
	return xs
}

func machineEpsilon[T constraints.Float]() T {
	if _, ok := any(T(0)).(float32); ok {
		return T(math.Nextafter32(1, 2) - 1)
	}
	return T(math.Nextafter(1, 2) - 1)
}
