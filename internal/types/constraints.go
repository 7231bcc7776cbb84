package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Constraints are the per-symbol, per-leg trading rules loaded once at
// startup per spec §3/§4.0 "Constraints Store". Immutable after load.
type Constraints struct {
	Symbol      string
	Instrument  Instrument
	PriceTick   decimal.Decimal
	SizeStep    decimal.Decimal
	MinNotional decimal.Decimal
	MinSize     decimal.Decimal
}

func (c Constraints) Validate() error {
	if c.PriceTick.Sign() <= 0 {
		return fmt.Errorf("constraints %s/%s: price tick must be positive", c.Symbol, c.Instrument)
	}
	if c.SizeStep.Sign() <= 0 {
		return fmt.Errorf("constraints %s/%s: size step must be positive", c.Symbol, c.Instrument)
	}
	if c.MinNotional.Sign() < 0 || c.MinSize.Sign() < 0 {
		return fmt.Errorf("constraints %s/%s: min notional/size cannot be negative", c.Symbol, c.Instrument)
	}
	return nil
}

// RoundDownPrice rounds toward negative infinity to the nearest PriceTick.
func (c Constraints) RoundDownPrice(px decimal.Decimal) decimal.Decimal {
	if c.PriceTick.Sign() <= 0 {
		return px
	}
	return px.Div(c.PriceTick).Floor().Mul(c.PriceTick)
}

// RoundUpPrice rounds toward positive infinity to the nearest PriceTick.
func (c Constraints) RoundUpPrice(px decimal.Decimal) decimal.Decimal {
	if c.PriceTick.Sign() <= 0 {
		return px
	}
	return px.Div(c.PriceTick).Ceil().Mul(c.PriceTick)
}

// TruncateSize rounds toward zero to the nearest SizeStep.
func (c Constraints) TruncateSize(qty decimal.Decimal) decimal.Decimal {
	if c.SizeStep.Sign() <= 0 {
		return qty
	}
	return qty.Div(c.SizeStep).Floor().Mul(c.SizeStep)
}

// MeetsMinNotional reports whether price*qty clears MinNotional and qty
// clears MinSize.
func (c Constraints) MeetsMinNotional(px, qty decimal.Decimal) bool {
	if qty.LessThan(c.MinSize) {
		return false
	}
	notional := px.Mul(qty)
	return !notional.LessThan(c.MinNotional)
}
