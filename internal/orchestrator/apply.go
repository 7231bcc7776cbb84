package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// applyInstruction executes one OMS reconciliation step against the
// gateway and records its outcome. It reports whether the NEXT
// instruction in this cycle's plan must be skipped: Reconcile pairs a
// cancel with a replacement place when a quote drifts, and the re-post
// goes out only after its cancel succeeded — a cancel that lost the
// race to a fill, or failed for any other reason, withholds it
// (spec §4.4).
func (s *Supervisor) applyInstruction(ctx context.Context, instr oms.Instruction) bool {
	switch instr.Kind {
	case oms.InstructionCancel:
		return s.applyCancel(ctx, instr)
	case oms.InstructionPlace:
		s.applyPlace(ctx, instr)
	}
	return false
}

func (s *Supervisor) applyCancel(ctx context.Context, instr oms.Instruction) bool {
	rec, ok := s.OMS.OrderByClientID(instr.ClientID)
	exchID := ""
	if ok {
		exchID = rec.ExchOrderID
	}

	if err := s.GW.CancelOrder(ctx, s.Config.Symbol, instr.ClientID, exchID); err != nil {
		alreadyFilled := errors.Is(err, gateway.ErrOrderAlreadyClosed)
		reason := err.Error()
		if alreadyFilled {
			reason = oms.CloseReasonAlreadyFilled
		}
		s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Leg: string(instr.Leg), ClientID: instr.ClientID, Reason: reason})
		return true
	}
	s.OMS.ClearLive(instr.Leg)
	s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderCancel, Leg: string(instr.Leg), ClientID: instr.ClientID})
	return false
}

func (s *Supervisor) applyPlace(ctx context.Context, instr oms.Instruction) {
	tif := types.TIFPostOnly
	req := gateway.OrderRequest{
		ClientID: instr.ClientID,
		Symbol:   s.Config.Symbol,
		Leg:      instr.Leg,
		Side:     instr.Side,
		Price:    instr.Price,
		Size:     instr.Size,
		TIF:      tif,
	}

	ack, err := s.GW.PlaceOrder(ctx, req)
	if err != nil {
		s.OMS.RecordReject()
		s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Leg: string(instr.Leg), ClientID: instr.ClientID, Reason: err.Error()})
		return
	}
	s.OMS.RecordAccept()

	rec := &types.OrderRecord{
		ClientID:     instr.ClientID,
		Leg:          instr.Leg,
		Intent:       types.IntentQuote,
		Side:         instr.Side,
		Symbol:       s.Config.Symbol,
		Price:        instr.Price,
		Size:         instr.Size,
		Status:       types.StatusLive,
		ExchOrderID:  ack.ExchOrderID,
		CreatedTs:    ack.AcceptedTs,
		LastUpdateTs: ack.AcceptedTs,
	}
	resolved := s.OMS.RegisterOrder(rec)
	for _, outcome := range resolved {
		s.OMS.ApplyResolvedFill(time.Now(), &s.inventory, outcome.Fill, s.OMSCfg)
	}

	s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderNew, Leg: string(instr.Leg), ClientID: instr.ClientID, ExchOrderID: ack.ExchOrderID})
}
