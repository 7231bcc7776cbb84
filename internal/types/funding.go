package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingState is the latest known funding rate for the perpetual leg,
// per spec §3.
type FundingState struct {
	Rate           decimal.Decimal
	Ts             time.Time
	NextSettleTs   time.Time // zero value means unknown/not provided
	HasNextSettle  bool
}

// Stale reports whether this state is older than the given freshness window.
func (f FundingState) Stale(now time.Time, window time.Duration) bool {
	if f.Ts.IsZero() {
		return true
	}
	return now.Sub(f.Ts) > window
}
