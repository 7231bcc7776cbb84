package oms

import (
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// FillOutcome is what HandleFill decided to do with one incoming fill,
// for the caller to log and act on.
type FillOutcome struct {
	Fill       types.NormalizedFill
	Duplicate  bool
	Buffered   bool // true if queued in pendingFills awaiting an ack
	HedgeTicket *types.HedgeTicket // non-nil if this fill opened a new ticket
}

// HandleFill normalizes, dedupes, and applies one raw fill. Perpetual
// fills always carry a client id already; spot fills may not, per spec
// §4.4 "Fill handling" — if exchToClient has no entry yet for the
// fill's exch_order_id, it is buffered rather than dropped.
func (o *OMS) HandleFill(now time.Time, inv *types.Inventory, f types.NormalizedFill, cfg Config) FillOutcome {
	if f.ClientID == "" && f.ExchOrderID != "" {
		if cid, ok := o.ClientIDByExchOrderID(f.ExchOrderID); ok {
			f.ClientID = cid
		}
	}

	if f.ClientID == "" {
		o.pendingFills = append(o.pendingFills, pendingFill{fill: f, arrived: now})
		return FillOutcome{Fill: f, Buffered: true}
	}

	return o.applyFill(now, inv, f, cfg)
}

func (o *OMS) applyFill(now time.Time, inv *types.Inventory, f types.NormalizedFill, cfg Config) FillOutcome {
	key := types.NewDedupeKey(f)
	if o.dedupe.Seen(key) {
		return FillOutcome{Fill: f, Duplicate: true}
	}
	o.dedupe.Record(key)

	inv.ApplyFill(f.Instrument(), f.Side, f.Qty)

	var outcome FillOutcome
	outcome.Fill = f

	switch f.Leg {
	case types.LegPerpBid, types.LegPerpAsk:
		ticket := o.openHedgeTicket(now, f, cfg)
		outcome.HedgeTicket = ticket
	case types.LegSpotIOC, types.LegSpotUnwind:
		o.applyHedgeFill(f)
	case types.LegPerpUnwind:
		o.applyUnwindFill(f)
	}

	return outcome
}

// drainPendingFills resolves any pending-buffer entries matching rec's
// exch_order_id, stamping in the now-known client id and returning them
// unapplied. Callers must feed each returned fill back through
// ApplyResolvedFill with the live Inventory to actually update
// positions/hedge tickets — the buffer only defers resolution, it
// never silently drops a fill's effect (spec §5 "bounded, timeout =
// 2s" governs only how long resolution may be deferred).
func (o *OMS) drainPendingFills(rec *types.OrderRecord) []FillOutcome {
	if rec.ExchOrderID == "" {
		return nil
	}
	var resolved []types.NormalizedFill
	kept := o.pendingFills[:0]
	for _, pf := range o.pendingFills {
		if pf.fill.ExchOrderID == rec.ExchOrderID {
			pf.fill.ClientID = rec.ClientID
			pf.fill.Leg = rec.Leg
			resolved = append(resolved, pf.fill)
			continue
		}
		kept = append(kept, pf)
	}
	o.pendingFills = kept

	var outcomes []FillOutcome
	for _, f := range resolved {
		outcomes = append(outcomes, FillOutcome{Fill: f})
	}
	return outcomes
}

// ApplyResolvedFill applies a fill returned by RegisterOrder/
// AttachExchOrderID (now carrying a resolved client id) against inv,
// exactly as applyFill would for a fill that arrived with a client id
// already attached.
func (o *OMS) ApplyResolvedFill(now time.Time, inv *types.Inventory, f types.NormalizedFill, cfg Config) FillOutcome {
	return o.applyFill(now, inv, f, cfg)
}

// ExpirePendingFills drops buffered fills older than pendingFillTimeout,
// returning them so the caller can log+apply them keyed on
// exch_order_id alone (client_id=null per spec §4.4).
func (o *OMS) ExpirePendingFills(now time.Time) []types.NormalizedFill {
	var expired []types.NormalizedFill
	kept := o.pendingFills[:0]
	for _, pf := range o.pendingFills {
		if now.Sub(pf.arrived) > pendingFillTimeout {
			expired = append(expired, pf.fill)
			continue
		}
		kept = append(kept, pf)
	}
	o.pendingFills = kept
	return expired
}
