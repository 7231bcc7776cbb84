package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BBO is the best bid/ask price and size on one side of one book, plus the
// monotonic timestamp of the update that produced it.
type BBO struct {
	BidPrice decimal.Decimal
	BidSize  decimal.Decimal
	AskPrice decimal.Decimal
	AskSize  decimal.Decimal
	Ts       time.Time
}

// Crossed reports whether bid >= ask, which per spec §3 makes the snapshot
// that carries this BBO invalid and subject to discard.
func (b BBO) Crossed() bool {
	return !b.BidPrice.LessThan(b.AskPrice)
}

// Mid returns the simple mid price. Callers must check Crossed first.
func (b BBO) Mid() decimal.Decimal {
	return b.BidPrice.Add(b.AskPrice).Div(decimal.NewFromInt(2))
}

// PriceLevel is one entry of a depth book.
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// DepthSource records which channel produced a MarketSnapshot.
type DepthSource string

const (
	DepthSourcePrimary  DepthSource = "depth5"
	DepthSourceFallback DepthSource = "books"
)

// MarketSnapshot is the Normalizer's output per spec §3/§4.1.
type MarketSnapshot struct {
	Symbol string

	SpotBBO BBO
	PerpBBO BBO

	// PerpBidDepth/PerpAskDepth are ordered best-first, up to N levels.
	PerpBidDepth []PriceLevel
	PerpAskDepth []PriceLevel

	// OBI is the order-book-imbalance scalar in [-1, +1], recomputed
	// fresh from each perp book update with no memory of prior ticks
	// (spec §4.1). The strategy's k_obi skew reads this field.
	OBI decimal.Decimal

	// OBISmoothed is an EWMA of successive OBI readings, published
	// alongside the raw value for observability only; nothing in the
	// strategy reads it.
	OBISmoothed decimal.Decimal

	// LevelsUsed is how many depth levels actually contributed to OBI,
	// which can be less than the configured N on the fallback channel.
	LevelsUsed int

	Source DepthSource

	// Ts is the timestamp of the most recent contributing update.
	Ts time.Time
}

// Valid reports whether both legs are uncrossed, per the spec §3 invariant.
func (m MarketSnapshot) Valid() bool {
	return !m.SpotBBO.Crossed() && !m.PerpBBO.Crossed()
}
