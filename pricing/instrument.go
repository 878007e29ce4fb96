package pricing

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/quantengine/quantengine/marketdata"
)

var (
	// ErrInvalidTerms reports contract terms outside their domain.
	ErrInvalidTerms = errors.New("invalid contract terms")
	// ErrNoPricingEngine reports a price or Greeks call on an instrument
	// with no engine attached.
	ErrNoPricingEngine = errors.New("pricing engine not set")
	// ErrGreeksUnsupported reports a Greeks call on an engine that only
	// supports pricing.
	ErrGreeksUnsupported = errors.New("greeks calculation not implemented for this engine")
)

// Keys of the Greeks maps returned by CalculateGreeks.
const (
	GreekDelta = "delta"
	GreekGamma = "gamma"
	GreekVega  = "vega"
	GreekTheta = "theta"
	GreekRho   = "rho"
)

// Parameters are the contract terms common to all instruments. They are
// validated once at construction and never mutated afterwards.
type Parameters[T constraints.Float] struct {
	Notional T // total contract multiplier
	Strike   T // exercise price
	Maturity T // time until expiration, in years
	Spot     T // current underlying price
	IsCall   bool
}

// Validate checks that the terms make financial sense.
func (p Parameters[T]) Validate() error {
	switch {
	case p.Strike <= 0:
		return fmt.Errorf("%w: strike price must be positive", ErrInvalidTerms)
	case p.Maturity <= 0:
		return fmt.Errorf("%w: time to maturity must be positive", ErrInvalidTerms)
	case p.Spot <= 0:
		return fmt.Errorf("%w: spot price must be positive", ErrInvalidTerms)
	case p.Notional <= 0:
		return fmt.Errorf("%w: notional must be positive", ErrInvalidTerms)
	}
	return nil
}

// Instrument is a priceable contract. Implementations own their contract
// terms, a market data snapshot and an attached pricing engine, and delegate
// all valuation math to the engine.
type Instrument[T constraints.Float] interface {
	// Price returns the current instrument value.
	Price() (T, error)

	// Greeks returns the instrument's risk sensitivities keyed by the
	// Greek* constants.
	Greeks() (map[string]T, error)

	// UpdateMarketData replaces the instrument's snapshot with a copy of
	// the given store. Later mutation of the caller's store does not
	// affect the instrument.
	UpdateMarketData(market *marketdata.MarketData[T])

	// SetPricingEngine attaches the valuation strategy. The engine is
	// shared, not copied; callers clone it themselves when they need
	// isolation.
	SetPricingEngine(engine PricingEngine[T])

	// Validate re-checks the contract terms.
	Validate() error

	// Parameters exposes the contract terms.
	Parameters() Parameters[T]
}
