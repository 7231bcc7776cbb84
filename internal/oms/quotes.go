package oms

import (
	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/strategy"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// InstructionKind distinguishes a place from a cancel.
type InstructionKind int

const (
	InstructionCancel InstructionKind = iota
	InstructionPlace
)

// Instruction is one reconciliation step for the orchestrator's OMS
// worker to execute against the gateway. Reconcile returns a plan of
// these rather than calling the gateway itself, keeping the decision
// pure and table-testable (spec §8 R2's spirit applied to the OMS too).
type Instruction struct {
	Kind     InstructionKind
	Leg      types.Leg
	ClientID string // cancel: the live order's client id; place: the newly minted one
	Side     types.Side
	Price    decimal.Decimal
	Size     decimal.Decimal
}

// Reconcile implements spec §4.4's per-side quote reconciliation:
// cancel a live order with no desired replacement, place a desired
// quote with no live order, or cancel-then-place when price/size has
// drifted past replace_threshold_bps / changed outright. Untouched
// sides return no instruction.
func (o *OMS) Reconcile(plan strategy.QuotePlan, mid decimal.Decimal, cfg Config) []Instruction {
	var out []Instruction
	out = append(out, o.reconcileSide(types.LegPerpBid, types.SideBuy, o.liveBid, plan.Bid, mid, cfg)...)
	out = append(out, o.reconcileSide(types.LegPerpAsk, types.SideSell, o.liveAsk, plan.Ask, mid, cfg)...)
	return out
}

func (o *OMS) reconcileSide(leg types.Leg, side types.Side, live *types.OrderRecord, desired *strategy.Quote, mid decimal.Decimal, cfg Config) []Instruction {
	if desired == nil {
		if live == nil {
			return nil
		}
		return []Instruction{{Kind: InstructionCancel, Leg: leg, ClientID: live.ClientID, Side: side}}
	}

	if live == nil {
		return []Instruction{o.placeInstruction(leg, side, desired)}
	}

	if !o.needsReplace(live, desired, mid, cfg.ReplaceThresholdBps) {
		return nil
	}

	return []Instruction{
		{Kind: InstructionCancel, Leg: leg, ClientID: live.ClientID, Side: side},
		o.placeInstruction(leg, side, desired),
	}
}

func (o *OMS) placeInstruction(leg types.Leg, side types.Side, desired *strategy.Quote) Instruction {
	return Instruction{
		Kind:     InstructionPlace,
		Leg:      leg,
		ClientID: o.NextClientID(types.IntentQuote, leg),
		Side:     side,
		Price:    desired.Price,
		Size:     desired.Size,
	}
}

// needsReplace implements spec §4.4's drift test:
// |live.price - desired.price| >= replace_threshold_bps * mid OR
// live.size != desired.size.
func (o *OMS) needsReplace(live *types.OrderRecord, desired *strategy.Quote, mid, replaceThresholdBps decimal.Decimal) bool {
	if !live.Size.Equal(desired.Size) {
		return true
	}
	threshold := replaceThresholdBps.Div(decimal.NewFromInt(10_000)).Mul(mid)
	diff := live.Price.Sub(desired.Price).Abs()
	return diff.GreaterThanOrEqual(threshold)
}
