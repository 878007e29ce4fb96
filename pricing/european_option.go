package pricing

import (
	"golang.org/x/exp/constraints"

	"github.com/quantengine/quantengine/marketdata"
)

// EuropeanOption is a European-style equity option: immutable contract
// terms, an attached pricing engine and an independent market data snapshot.
type EuropeanOption[T constraints.Float] struct {
	params Parameters[T]
	engine PricingEngine[T]
	market marketdata.MarketData[T]
}

var _ Instrument[float64] = (*EuropeanOption[float64])(nil)

// NewEuropeanOption builds an option from contract terms, failing fast on
// invalid terms so a constructed instance is always valid.
func NewEuropeanOption[T constraints.Float](params Parameters[T]) (*EuropeanOption[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &EuropeanOption[T]{params: params}, nil
}

// Price returns the engine price scaled by the contract notional.
func (o *EuropeanOption[T]) Price() (T, error) {
	if o.engine == nil {
		return 0, ErrNoPricingEngine
	}
	price, err := o.engine.CalculatePrice(o, &o.market)
	if err != nil {
		return 0, err
	}
	return price * o.params.Notional, nil
}

// Greeks delegates risk calculation to the attached engine.
func (o *EuropeanOption[T]) Greeks() (map[string]T, error) {
	if o.engine == nil {
		return nil, ErrNoPricingEngine
	}
	return o.engine.CalculateGreeks(o, &o.market)
}

// UpdateMarketData stores an independent copy of the given store.
func (o *EuropeanOption[T]) UpdateMarketData(market *marketdata.MarketData[T]) {
	o.market = *market.Clone()
}

// SetPricingEngine attaches the valuation strategy without copying it.
func (o *EuropeanOption[T]) SetPricingEngine(engine PricingEngine[T]) {
	o.engine = engine
}

// Validate re-checks the stored contract terms.
func (o *EuropeanOption[T]) Validate() error {
	return o.params.Validate()
}

// Parameters returns the contract terms.
func (o *EuropeanOption[T]) Parameters() Parameters[T] {
	return o.params
}
