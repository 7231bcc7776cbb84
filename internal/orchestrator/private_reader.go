package orchestrator

import (
	"context"
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// runPrivateEventReader subscribes one leg's private stream (order
// acks, fills, position snapshots, connectivity) and applies each
// event against the OMS/inventory as it arrives. leg only selects
// which subscription to open (perp vs spot); the events it carries may
// concern either book's orders.
func (s *Supervisor) runPrivateEventReader(ctx context.Context, leg types.Leg) error {
	events, err := s.GW.SubscribePrivate(ctx, leg)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events.Orders:
			if !ok {
				return nil
			}
			s.handleOrderEvent(ev)

		case ev, ok := <-events.Fills:
			if !ok {
				return nil
			}
			s.handleFillEvent(ev)

		case ev, ok := <-events.Positions:
			if !ok {
				return nil
			}
			s.Recorder.Record(logging.Record{Ts: ev.Ts, Event: logging.EventState, Data: ev})

		case ev, ok := <-events.Conn:
			if !ok {
				return nil
			}
			s.privConn.set(ev.Connected, ev.Ts)
		}
	}
}

func (s *Supervisor) handleOrderEvent(ev gateway.OrderEvent) {
	if ev.ExchOrderID != "" && ev.ClientID != "" {
		for _, outcome := range s.OMS.AttachExchOrderID(ev.ClientID, ev.ExchOrderID) {
			s.OMS.ApplyResolvedFill(time.Now(), &s.inventory, outcome.Fill, s.OMSCfg)
		}
	}
	if ev.Status.Terminal() {
		if rec, ok := s.OMS.OrderByClientID(ev.ClientID); ok {
			s.OMS.ClearLive(rec.Leg)
		}
	}
}

func (s *Supervisor) handleFillEvent(ev gateway.FillEvent) {
	fill := types.NormalizedFill{
		Side:        ev.Side,
		Price:       ev.Price,
		Qty:         ev.Qty,
		ClientID:    ev.ClientID,
		ExchOrderID: ev.ExchOrderID,
		TradeID:     ev.TradeID,
		Fee:         ev.Fee,
		Ts:          ev.Ts,
		Simulated:   ev.Simulated,
	}
	if fill.ClientID == "" && fill.ExchOrderID != "" {
		if cid, ok := s.OMS.ClientIDByExchOrderID(fill.ExchOrderID); ok {
			fill.ClientID = cid
		}
	}
	if fill.ClientID != "" {
		if rec, ok := s.OMS.OrderByClientID(fill.ClientID); ok {
			fill.Leg = rec.Leg
		}
	}

	outcome := s.OMS.HandleFill(time.Now(), &s.inventory, fill, s.OMSCfg)

	rec := logging.Record{
		Ts:          fill.Ts,
		Event:       logging.EventFill,
		Leg:         string(fill.Leg),
		ClientID:    fill.ClientID,
		ExchOrderID: fill.ExchOrderID,
		TradeID:     fill.TradeID,
	}
	if fill.Simulated {
		rec.Simulated = &fill.Simulated
	}
	s.Recorder.Record(rec)
	if outcome.Duplicate || outcome.Buffered {
		return
	}
	if outcome.HedgeTicket != nil {
		s.openHedge(outcome.HedgeTicket)
		return
	}
	s.OMS.Profit.AddFill(fill.Fee)
}
