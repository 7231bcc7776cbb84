package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is the OMS's view of one order, per spec §3. The OMS owns
// this record for its entire lifecycle.
type OrderRecord struct {
	ClientID  string
	Leg       Leg
	Intent    Intent
	Side      Side
	Symbol    string
	Price     decimal.Decimal
	Size      decimal.Decimal
	Status    OrderStatus
	ExchOrderID   string // empty until the place acknowledgement arrives
	CreatedTs     time.Time
	LastUpdateTs  time.Time
}

// Instrument derives which book this order belongs to from its Leg.
func (o OrderRecord) Instrument() Instrument {
	switch o.Leg {
	case LegPerpBid, LegPerpAsk, LegPerpUnwind:
		return InstrumentPerp
	default:
		return InstrumentSpot
	}
}
