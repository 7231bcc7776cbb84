package oms

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// HedgeAction is one hedge-protocol step for the orchestrator to carry
// out against the gateway (place a spot IOC, a wider-slip chase, or a
// perp unwind), mirroring the Instruction/Reconcile split in quotes.go.
type HedgeAction struct {
	HedgeID  string
	ClientID string
	Leg      types.Leg
	Side     types.Side
	Price    decimal.Decimal
	Size     decimal.Decimal
}

// openHedgeTicket implements spec §4.4 hedge-protocol step 1: on a
// perpetual fill of side s with quantity q, create a HedgeTicket whose
// spot IOC side is opposite s. DeadlineTs is now + hedge_deadline_ms,
// the settling-window bound ShouldUnwind and the unhedged_exposure
// guard's age check both read.
func (o *OMS) openHedgeTicket(now time.Time, f types.NormalizedFill, cfg Config) *types.HedgeTicket {
	ticket := &types.HedgeTicket{
		HedgeID:        f.ClientID,
		Side:           f.Side.Opposite(),
		WantQty:        f.Qty,
		FilledQty:      decimal.Zero,
		Remain:         f.Qty,
		Status:         types.HedgeOpen,
		OriginClientID: f.ClientID,
		DeadlineTs:     now.Add(cfg.HedgeDeadlineMs),
	}
	o.hedges[ticket.HedgeID] = ticket
	return ticket
}

// OpenHedgeInstruction computes step 2-3's spot IOC price/size for a
// freshly opened ticket and mints its client id, per hedge_slip_bps.
func (o *OMS) OpenHedgeInstruction(ticket *types.HedgeTicket, spotBBO types.BBO, cfg Config) HedgeAction {
	price := hedgePrice(ticket.Side, spotBBO, cfg.HedgeSlipBps, 0, cfg.ChaseGain)
	clientID := o.NextClientID(types.IntentHedge, types.LegSpotIOC)
	ticket.ActiveClientID = clientID
	return HedgeAction{
		HedgeID:  ticket.HedgeID,
		ClientID: clientID,
		Leg:      types.LegSpotIOC,
		Side:     ticket.Side,
		Price:    price,
		Size:     ticket.Remain,
	}
}

// hedgePrice implements spec §4.4 step 2: buy hedges lift the spot ask
// by hedge_slip_bps, sell hedges hit the spot bid down by the same,
// with the slip widened per chase attempt by (1 + tries*chase_gain)
// (step 5).
func hedgePrice(side types.Side, spotBBO types.BBO, slipBps decimal.Decimal, tries int, chaseGain decimal.Decimal) decimal.Decimal {
	widenedSlip := slipBps.Mul(decimal.NewFromInt(1).Add(chaseGain.Mul(decimal.NewFromInt(int64(tries)))))
	frac := widenedSlip.Div(decimal.NewFromInt(10_000))
	if side == types.SideBuy {
		return spotBBO.AskPrice.Mul(decimal.NewFromInt(1).Add(frac))
	}
	return spotBBO.BidPrice.Mul(decimal.NewFromInt(1).Sub(frac))
}

// applyHedgeFill implements step 4: spot fills decrement Remain and
// increment FilledQty. It does not change Status; FinalizeHedgeFill
// marks the ticket DONE once remain settles within size_step/2.
func (o *OMS) applyHedgeFill(f types.NormalizedFill) {
	ticket := o.ticketForClientID(f.ClientID)
	if ticket == nil {
		return
	}
	ticket.ApplyFill(f.Qty)
}

// FinalizeHedgeFill checks a ticket's Done condition against sizeStep
// and marks it DONE, returning true if it just completed. Separated
// from applyHedgeFill so the caller supplies the live Constraints
// (fills.go has no access to the Constraints Store).
func (o *OMS) FinalizeHedgeFill(hedgeID string, sizeStep decimal.Decimal) bool {
	ticket, ok := o.hedges[hedgeID]
	if !ok {
		return false
	}
	if ticket.Done(sizeStep) {
		ticket.Status = types.HedgeDone
		return true
	}
	return false
}

// ticketForClientID resolves an active spot hedge/chase client id back
// to its owning ticket.
func (o *OMS) ticketForClientID(clientID string) *types.HedgeTicket {
	for _, t := range o.hedges {
		if t.ActiveClientID == clientID {
			return t
		}
	}
	return nil
}

// ShouldChase implements step 5's trigger: the IOC returned unfilled
// (or partial with no further fills within hedge_chase_sec).
func ShouldChase(ticket *types.HedgeTicket, now, sentAt time.Time, cfg Config) bool {
	if ticket.Status == types.HedgeDone || ticket.Status == types.HedgeUnwind {
		return false
	}
	if ticket.Remain.IsZero() {
		return false
	}
	return now.Sub(sentAt) >= cfg.HedgeChaseSec
}

// Chase implements step 5: transition to CHASING, mint a fresh client
// id, widen the slip by tries*chase_gain.
func (o *OMS) Chase(ticket *types.HedgeTicket, spotBBO types.BBO, cfg Config) HedgeAction {
	ticket.Status = types.HedgeChasing
	ticket.Tries++
	hedgeChaseTotalMetrics.WithLabelValues(o.Symbol).Inc()
	price := hedgePrice(ticket.Side, spotBBO, cfg.HedgeSlipBps, ticket.Tries, cfg.ChaseGain)
	clientID := o.NextClientID(types.IntentHedge, types.LegSpotIOC)
	ticket.ActiveClientID = clientID
	return HedgeAction{
		HedgeID:  ticket.HedgeID,
		ClientID: clientID,
		Leg:      types.LegSpotIOC,
		Side:     ticket.Side,
		Price:    price,
		Size:     ticket.Remain,
	}
}

// ShouldUnwind implements step 6's trigger: tries exhausted or past
// deadline, with exposure still remaining. A ticket already unwinding
// must not re-trigger every tick while its reduce-only order is in
// flight.
func ShouldUnwind(ticket *types.HedgeTicket, now time.Time, cfg Config) bool {
	if ticket.Status == types.HedgeUnwind {
		return false
	}
	if ticket.Remain.IsZero() {
		return false
	}
	if ticket.Tries >= cfg.HedgeMaxTries {
		return true
	}
	return !ticket.DeadlineTs.IsZero() && now.After(ticket.DeadlineTs)
}

// Unwind implements step 6: a reduce-only perpetual order for the
// remaining size, opposite the original perp fill's side (i.e. the
// same side as the spot hedge it replaces). It first acquires the
// close-exclusion lock (spec §4.4 "Close exclusion") so a concurrent
// flatten_all on the same symbol cannot double-fire against this
// ticket's exposure; the bool return is false when the lock is already
// held, in which case the caller must not send an order and the lock
// stays with whoever holds it.
func (o *OMS) Unwind(ticket *types.HedgeTicket) (HedgeAction, bool) {
	if !o.AcquireClose(o.Symbol) {
		return HedgeAction{}, false
	}
	ticket.Status = types.HedgeUnwind
	hedgeUnwindTotalMetrics.WithLabelValues(o.Symbol).Inc()
	clientID := o.NextClientID(types.IntentUnwind, types.LegPerpUnwind)
	ticket.ActiveClientID = clientID
	return HedgeAction{
		HedgeID:  ticket.HedgeID,
		ClientID: clientID,
		Leg:      types.LegPerpUnwind,
		Side:     ticket.Side,
		Size:     ticket.Remain,
	}, true
}

// applyUnwindFill completes the ticket once its reduce-only unwind
// order fills, releasing the close-exclusion lock Unwind acquired.
func (o *OMS) applyUnwindFill(f types.NormalizedFill) {
	ticket := o.ticketForClientID(f.ClientID)
	if ticket == nil {
		return
	}
	ticket.ApplyFill(f.Qty)
	if ticket.Remain.IsZero() {
		ticket.Status = types.HedgeDone
		o.ReleaseClose(o.Symbol)
	}
}

// OpenHedgeTickets returns every ticket not yet DONE, for the
// unhedged_exposure guard's age check.
func (o *OMS) OpenHedgeTickets() []*types.HedgeTicket {
	var open []*types.HedgeTicket
	for _, t := range o.hedges {
		if t.Status != types.HedgeDone {
			open = append(open, t)
		}
	}
	return open
}
