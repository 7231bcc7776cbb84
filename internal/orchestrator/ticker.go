package orchestrator

import (
	"context"
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/risk"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/strategy"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// runStrategyTicker is the cadenced tick of spec §4.6/§5: evaluate
// guards, compute a QuotePlan from the latest compressed snapshot, and
// hand reconciliation instructions to the OMS. It never blocks longer
// than one tick on I/O; every gateway call it makes is expected to be
// wrapped with its own bounded timeout by the Gateway implementation.
func (s *Supervisor) runStrategyTicker(ctx context.Context) error {
	ticker := time.NewTicker(s.Config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	s.OMS.AdvanceCycle()

	snap, hasSnap := s.Mailbox.Latest()
	now := time.Now()

	connected, downSince := s.privConn.snapshot()
	guardInputs := risk.Inputs{
		Now:                now,
		ConstraintsLoaded:  s.Constraints.Loaded(),
		Funding:            s.FundingMon.Latest(),
		Inventory:          s.inventory,
		Mid:                snap.PerpBBO.Mid(),
		ConsecutiveRejects: s.OMS.ConsecutiveRejects(),
		PrivateWSConnected: connected,
		PrivateWSDownSince: downSince,
	}
	if hasSnap {
		guardInputs.BookTs = snap.Ts
	}
	for _, t := range s.OMS.OpenHedgeTickets() {
		// A ticket opened at DeadlineTs - hedge_deadline_ms.
		age := now.Sub(t.DeadlineTs.Add(-s.OMSCfg.HedgeDeadlineMs))
		if age > guardInputs.OldestHedgeAge {
			guardInputs.OldestHedgeAge = age
		}
	}

	verdicts := risk.Evaluate(s.RiskCfg, guardInputs)
	worst := risk.WorstAction(verdicts)
	mode := s.ModeMachine.Transition(worst, len(s.OMS.OpenHedgeTickets()) > 0)

	s.Recorder.Record(logging.Record{Ts: now, Event: logging.EventTick, Mode: string(mode), CycleID: s.OMS.Cycle()})

	for _, v := range verdicts {
		if v.Guard == risk.GuardUnhedgedExposure {
			s.unwindOverdueHedges(ctx, now)
			break
		}
	}

	guard := strategy.GuardState{}
	if len(verdicts) > 0 {
		guard = strategy.GuardState{Tripped: true, Reason: verdicts[0].Guard}
	}

	perpConstraints, _ := s.Constraints.Get(types.InstrumentPerp)
	plan := strategy.Plan(s.StrategyCfg, snap, s.FundingMon.Latest(), s.inventory, perpConstraints, guard)
	strategy.RecordPlan(s.Config.Symbol, snap, plan)

	instructions := s.OMS.Reconcile(plan, snap.PerpBBO.Mid(), s.OMSCfg)
	s.applyInstructions(ctx, instructions)
}

// applyInstructions runs one cycle's reconciliation plan against the
// gateway in order, honoring applyInstruction's skip-next signal so a
// failed cancel never lets its paired place instruction through
// (spec §4.4). The withheld place is logged as order_skip with reason
// already_filled whatever the cancel's error was; the cancel's own
// order_skip record carries the actual error.
func (s *Supervisor) applyInstructions(ctx context.Context, instructions []oms.Instruction) {
	skipNext := false
	for _, instr := range instructions {
		if skipNext {
			skipNext = false
			if instr.Kind == oms.InstructionPlace {
				s.Recorder.Record(logging.Record{Ts: time.Now(), Event: logging.EventOrderSkip, Leg: string(instr.Leg), ClientID: instr.ClientID, Reason: oms.CloseReasonAlreadyFilled})
				continue
			}
		}
		skipNext = s.applyInstruction(ctx, instr)
	}
}
