package types

import "github.com/shopspring/decimal"

// Inventory is the signed base-asset position on each leg, per spec §3.
// It is a running sum updated from fills, never re-derived from a
// snapshot except at startup reconciliation.
type Inventory struct {
	PerpPos decimal.Decimal
	SpotPos decimal.Decimal
}

// Net is the combined delta exposure across both legs.
func (i Inventory) Net() decimal.Decimal {
	return i.PerpPos.Add(i.SpotPos)
}

// UnhedgedNotional is |net| * mid, the quantity the unhedged_exposure
// guard compares against max_unhedged_notional.
func (i Inventory) UnhedgedNotional(mid decimal.Decimal) decimal.Decimal {
	return i.Net().Abs().Mul(mid)
}

// ApplyFill updates the running position for one leg by a signed delta:
// positive for a buy fill, negative for a sell fill.
func (i *Inventory) ApplyFill(instrument Instrument, side Side, qty decimal.Decimal) {
	delta := qty
	if side == SideSell {
		delta = qty.Neg()
	}
	switch instrument {
	case InstrumentPerp:
		i.PerpPos = i.PerpPos.Add(delta)
	case InstrumentSpot:
		i.SpotPos = i.SpotPos.Add(delta)
	}
}
