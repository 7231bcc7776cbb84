// Package oms implements spec §4.4's Order Management System: client-id
// issuance, the client_id<->exch_order_id map, quote reconciliation,
// fill normalization/dedupe, the hedge-ticket lifecycle, and per-symbol
// close exclusion. Grounded on the teacher's bbgo.ActiveOrderBook
// (GracefulCancel/NumOfOrders, "cancel before replace, one live order
// per side") and Strategy.Hedge/CoveredPosition, generalized since
// bbgo's own types aren't importable standalone.
//
// Every exported method here assumes a single-threaded caller (the
// orchestrator's OMS worker); there is no internal locking beyond the
// cooperative close-exclusion flag, matching spec §5's concurrency
// model.
package oms

import (
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// OMS owns the order/hedge bookkeeping for exactly one symbol.
type OMS struct {
	Symbol string

	cycle uint64

	// liveBid/liveAsk are the at-most-one live quote per side, per
	// spec §4.4 "the OMS holds at most one live quote".
	liveBid *types.OrderRecord
	liveAsk *types.OrderRecord

	ordersByClientID map[string]*types.OrderRecord
	exchToClient     map[string]string

	hedges map[string]*types.HedgeTicket

	dedupe *types.DedupeSet

	// pendingFills holds spot fills that arrived before their
	// place-order acknowledgement populated exchToClient, per spec §5
	// ordering note ("queuing the fill in a small pending buffer,
	// bounded, timeout = 2s").
	pendingFills []pendingFill

	closing map[string]bool

	consecutiveRejects int

	Profit ProfitStats
}

type pendingFill struct {
	fill    types.NormalizedFill
	arrived time.Time
}

// pendingFillTimeout is spec §5's "timeout = 2s" for the pending-fill
// buffer.
const pendingFillTimeout = 2 * time.Second

// NewOMS builds an empty OMS for symbol.
func NewOMS(symbol string) *OMS {
	return &OMS{
		Symbol:           symbol,
		ordersByClientID: make(map[string]*types.OrderRecord),
		exchToClient:     make(map[string]string),
		hedges:           make(map[string]*types.HedgeTicket),
		dedupe:           types.NewDedupeSet(types.DedupeSetCapacity),
		closing:          make(map[string]bool),
	}
}

// NextClientID mints a ClientOrderId for the given intent/leg from the
// current cycle counter (spec §3's `{intent}-{leg}-{cycle}-{nonce}`
// scheme). It does not bump the counter; AdvanceCycle does.
func (o *OMS) NextClientID(intent types.Intent, leg types.Leg) string {
	return types.NewClientOrderId(intent, leg, o.cycle, types.NewNonce())
}

// AdvanceCycle bumps the cycle counter; called once per strategy tick.
func (o *OMS) AdvanceCycle() {
	o.cycle++
}

// Cycle returns the current cycle counter, for logging.
func (o *OMS) Cycle() uint64 { return o.cycle }

// RegisterOrder installs a freshly-placed order into the registry and,
// for bid/ask quote legs, the single-live-quote slot. It returns any
// buffered fills that rec's exch_order_id resolves; the caller applies
// them through ApplyResolvedFill.
func (o *OMS) RegisterOrder(rec *types.OrderRecord) []FillOutcome {
	o.ordersByClientID[rec.ClientID] = rec
	if rec.ExchOrderID != "" {
		o.exchToClient[rec.ExchOrderID] = rec.ClientID
	}
	switch rec.Leg {
	case types.LegPerpBid:
		o.liveBid = rec
	case types.LegPerpAsk:
		o.liveAsk = rec
	}
	return o.drainPendingFills(rec)
}

// AttachExchOrderID records a late-arriving exch_order_id for a client
// id already in the registry (the place-order acknowledgement), and
// resolves any fills that had been buffered waiting for it. Callers
// must apply the returned FillOutcomes' inventory effects themselves
// by re-running them through ApplyResolvedFill.
func (o *OMS) AttachExchOrderID(clientID, exchOrderID string) []FillOutcome {
	rec, ok := o.ordersByClientID[clientID]
	if !ok {
		return nil
	}
	rec.ExchOrderID = exchOrderID
	o.exchToClient[exchOrderID] = clientID
	return o.drainPendingFills(rec)
}

// OrderByClientID looks up a registered order.
func (o *OMS) OrderByClientID(clientID string) (*types.OrderRecord, bool) {
	rec, ok := o.ordersByClientID[clientID]
	return rec, ok
}

// ClientIDByExchOrderID resolves an exch_order_id back to its client id.
func (o *OMS) ClientIDByExchOrderID(exchOrderID string) (string, bool) {
	id, ok := o.exchToClient[exchOrderID]
	return id, ok
}

// LiveBid/LiveAsk expose the current single live quote per side.
func (o *OMS) LiveBid() *types.OrderRecord { return o.liveBid }
func (o *OMS) LiveAsk() *types.OrderRecord { return o.liveAsk }

// ClearLive drops the live-quote slot for a leg once it terminates
// (filled/canceled/rejected).
func (o *OMS) ClearLive(leg types.Leg) {
	switch leg {
	case types.LegPerpBid:
		o.liveBid = nil
	case types.LegPerpAsk:
		o.liveAsk = nil
	}
}

// RecordReject bumps or resets the consecutive-reject counter the
// reject_streak guard reads.
func (o *OMS) RecordReject() { o.consecutiveRejects++ }
func (o *OMS) RecordAccept() { o.consecutiveRejects = 0 }
func (o *OMS) ConsecutiveRejects() int { return o.consecutiveRejects }
