package pricing

import (
	"golang.org/x/exp/constraints"

	"github.com/quantengine/quantengine/marketdata"
)

// PricingEngine values an instrument against a market snapshot. Engines hold
// no per-call state; an engine instance may be shared read-only across
// instruments, and Clone produces an independent copy for callers that need
// isolation.
type PricingEngine[T constraints.Float] interface {
	CalculatePrice(instrument Instrument[T], market *marketdata.MarketData[T]) (T, error)

	// CalculateGreeks is optional; engines without Greek support embed
	// UnimplementedGreeks.
	CalculateGreeks(instrument Instrument[T], market *marketdata.MarketData[T]) (map[string]T, error)

	Clone() PricingEngine[T]
}

// UnimplementedGreeks is embedded by engines that only support pricing; its
// CalculateGreeks always fails with ErrGreeksUnsupported.
type UnimplementedGreeks[T constraints.Float] struct{}

func (UnimplementedGreeks[T]) CalculateGreeks(Instrument[T], *marketdata.MarketData[T]) (map[string]T, error) {
	return nil, ErrGreeksUnsupported
}
