package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedFill is the OMS's common representation of a private fill
// event from either leg, per spec §3.
type NormalizedFill struct {
	Leg        Leg
	Side       Side
	Price      decimal.Decimal
	Qty        decimal.Decimal
	ClientID   string // may be empty for spot fills until the ack map resolves it
	ExchOrderID string
	TradeID    string // may be empty; DedupeKey falls back to a composite key
	Fee        decimal.Decimal
	Ts         time.Time

	// Simulated marks synthetic fills produced by the dry-run/simulated
	// gateway, per spec §9 "Simulated-fill mode".
	Simulated bool
}

// Instrument derives which book this fill belongs to from its Leg.
func (f NormalizedFill) Instrument() Instrument {
	switch f.Leg {
	case LegPerpBid, LegPerpAsk, LegPerpUnwind:
		return InstrumentPerp
	default:
		return InstrumentSpot
	}
}
