package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// hedgeSentTracker remembers when each ticket's currently-active client
// id was sent, so runHedgeWatcher can judge ShouldChase's
// hedge_chase_sec window without threading a timestamp through
// HedgeTicket itself. It is written by the private-event reader
// (openHedge) and read/written by the hedge watcher, so it needs its
// own lock rather than living as a plain map on Supervisor.
type hedgeSentTracker struct {
	mu   sync.Mutex
	sent map[string]time.Time
}

func newHedgeSentTracker() *hedgeSentTracker {
	return &hedgeSentTracker{sent: make(map[string]time.Time)}
}

func (h *hedgeSentTracker) record(clientID string, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent[clientID] = ts
}

func (h *hedgeSentTracker) get(clientID string) (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ts, ok := h.sent[clientID]
	return ts, ok
}

// openHedge implements the "immediate spot hedging of perp fills" half
// of spec §4.4 step 1-3: as soon as a perp fill opens a ticket, place
// its IOC against the latest spot BBO.
func (s *Supervisor) openHedge(ticket *types.HedgeTicket) {
	snap, ok := s.Mailbox.Latest()
	if !ok {
		return
	}
	action := s.OMS.OpenHedgeInstruction(ticket, snap.SpotBBO, s.OMSCfg)
	s.sendHedgeAction(context.Background(), action)
}

func (s *Supervisor) sendHedgeAction(ctx context.Context, action oms.HedgeAction) {
	req := gateway.OrderRequest{
		ClientID: action.ClientID,
		Symbol:   s.Config.Symbol,
		Leg:      action.Leg,
		Side:     action.Side,
		Price:    action.Price,
		Size:     action.Size,
		TIF:      types.TIFIOC,
	}
	if action.Leg == types.LegPerpUnwind {
		req.TIF = types.TIFGTC
		req.ReduceOnly = true
	}

	ack, err := s.GW.PlaceOrder(ctx, req)
	if err != nil {
		s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Leg: string(action.Leg), ClientID: action.ClientID, Reason: err.Error()})
		return
	}
	s.hedgeSent.record(action.HedgeID, time.Now())
	s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderNew, Leg: string(action.Leg), ClientID: action.ClientID, ExchOrderID: ack.ExchOrderID})
}

// runHedgeWatcher polls open hedge tickets each tick interval for
// chase/unwind triggers, since those are time-based rather than
// event-driven (spec §4.4 steps 5-6).
func (s *Supervisor) runHedgeWatcher(ctx context.Context) error {
	ticker := time.NewTicker(s.Config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkHedgeTickets(ctx)
		}
	}
}

func (s *Supervisor) checkHedgeTickets(ctx context.Context) {
	snap, ok := s.Mailbox.Latest()
	if !ok {
		return
	}
	now := time.Now()

	for _, ticket := range s.OMS.OpenHedgeTickets() {
		sentAt, known := s.hedgeSent.get(ticket.HedgeID)
		if !known {
			sentAt = now
		}

		switch {
		case oms.ShouldUnwind(ticket, now, s.OMSCfg):
			s.unwind(ctx, ticket)
		case oms.ShouldChase(ticket, now, sentAt, s.OMSCfg):
			action := s.OMS.Chase(ticket, snap.SpotBBO, s.OMSCfg)
			s.sendHedgeAction(ctx, action)
		}
	}
}

// unwind sends a ticket's reduce-only unwind order, skipping (and
// logging order_skip/close_inflight) when the close-exclusion lock is
// already held by a concurrent flatten_all or another ticket's unwind.
func (s *Supervisor) unwind(ctx context.Context, ticket *types.HedgeTicket) {
	action, ok := s.OMS.Unwind(ticket)
	if !ok {
		s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Leg: string(types.LegPerpUnwind), ClientID: ticket.ActiveClientID, Reason: oms.CloseReasonInflight})
		return
	}
	s.sendHedgeAction(ctx, action)
}

// unwindOverdueHedges implements the guard table's "trigger unwind"
// half for unhedged_exposure (spec §4.5): once the guard trips, don't
// just cancel quotes and wait for each ticket's own tries/deadline
// check on a later tick, force the unwind now for whichever tickets
// are already past their settling window.
func (s *Supervisor) unwindOverdueHedges(ctx context.Context, now time.Time) {
	for _, ticket := range s.OMS.OpenHedgeTickets() {
		if ticket.Status == types.HedgeUnwind || ticket.Remain.IsZero() {
			continue
		}
		if ticket.DeadlineTs.IsZero() || !now.After(ticket.DeadlineTs) {
			continue
		}
		s.unwind(ctx, ticket)
	}
}

// FlattenResidual implements spec §6's crash-safety closing half: given
// the Inventory ReconcileStartup rebuilt from the venue's own position
// snapshot, seed it and, if either leg carries exposure, send an
// immediate reduce-only/IOC close on each leg before the main loop
// starts. Goes through the same close-exclusion lock Unwind uses so a
// routine per-ticket unwind can never double-fire against the exposure
// this flattens (spec §4.4's "flatten_all vs routine close" hazard).
func (s *Supervisor) FlattenResidual(ctx context.Context, inv types.Inventory) {
	s.inventory = inv

	if inv.PerpPos.IsZero() && inv.SpotPos.IsZero() {
		return
	}

	if !s.OMS.AcquireClose(s.Config.Symbol) {
		s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Reason: oms.CloseReasonInflight})
		return
	}
	defer s.OMS.ReleaseClose(s.Config.Symbol)

	if !inv.PerpPos.IsZero() {
		side := types.SideSell
		if inv.PerpPos.IsNegative() {
			side = types.SideBuy
		}
		clientID := s.OMS.NextClientID(types.IntentFlatten, types.LegPerpUnwind)
		s.sendHedgeAction(ctx, oms.HedgeAction{
			HedgeID: clientID, ClientID: clientID, Leg: types.LegPerpUnwind, Side: side, Size: inv.PerpPos.Abs(),
		})
	}
	if !inv.SpotPos.IsZero() {
		side := types.SideSell
		if inv.SpotPos.IsNegative() {
			side = types.SideBuy
		}
		clientID := s.OMS.NextClientID(types.IntentFlatten, types.LegSpotUnwind)
		s.sendHedgeAction(ctx, oms.HedgeAction{
			HedgeID: clientID, ClientID: clientID, Leg: types.LegSpotUnwind, Side: side, Size: inv.SpotPos.Abs(),
		})
	}
}
