package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// HedgeTicket is created on each perpetual fill and tracks the spot
// IOC(s) sent to neutralize it, per spec §3/§4.4.
type HedgeTicket struct {
	HedgeID    string
	Side       Side // side of the spot hedge order, opposite the perp fill
	WantQty    decimal.Decimal
	FilledQty  decimal.Decimal
	Remain     decimal.Decimal
	DeadlineTs time.Time
	Tries      int
	Status     HedgeStatus

	// OriginClientID is the perp fill's client id, kept for logging/tracing.
	OriginClientID string
	// ActiveClientID is the client id of the in-flight spot IOC (or perp
	// unwind order) currently open against this ticket, if any.
	ActiveClientID string
}

// Invariant checks spec §3/§8 (I1): want_qty == filled_qty + remain and
// remain >= 0.
func (h HedgeTicket) Invariant() bool {
	if h.Remain.Sign() < 0 {
		return false
	}
	return h.FilledQty.Add(h.Remain).Equal(h.WantQty)
}

// ApplyFill reduces Remain/bumps FilledQty by qty, keeping the invariant.
func (h *HedgeTicket) ApplyFill(qty decimal.Decimal) {
	if qty.GreaterThan(h.Remain) {
		qty = h.Remain
	}
	h.FilledQty = h.FilledQty.Add(qty)
	h.Remain = h.Remain.Sub(qty)
}

// Done reports whether remain has settled close enough to zero to
// consider the ticket complete, per spec §4.4 step 4
// ("remain <= size_step/2").
func (h HedgeTicket) Done(sizeStep decimal.Decimal) bool {
	half := sizeStep.Div(decimal.NewFromInt(2))
	return !h.Remain.GreaterThan(half)
}
