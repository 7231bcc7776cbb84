package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func testOMSCfg() oms.Config {
	return oms.Config{
		ReplaceThresholdBps: decimal.NewFromInt(5),
		HedgeSlipBps:        decimal.NewFromInt(5),
		HedgeChaseSec:       3 * time.Second,
		HedgeMaxTries:       3,
		HedgeDeadlineMs:     10 * time.Second,
		ChaseGain:           decimal.NewFromFloat(0.5),
	}
}

func newTestSupervisor() (*Supervisor, *fakeGateway, *recordingRecorder) {
	gw := &fakeGateway{}
	rec := &recordingRecorder{}
	s := &Supervisor{
		Config:    Config{Symbol: "ETHUSDT"},
		GW:        gw,
		OMS:       oms.NewOMS("ETHUSDT"),
		Recorder:  rec,
		OMSCfg:    testOMSCfg(),
		hedgeSent: newHedgeSentTracker(),
	}
	return s, gw, rec
}

// TestApplyInstructions_CancelAlreadyFilledSkipsPairedPlace covers the
// reviewer's comment 3: Reconcile emits a [cancel, place] pair when a
// live quote drifts, and a cancel that races a fill (gateway reports
// already-closed) must not be followed by the paired re-post.
func TestApplyInstructions_CancelAlreadyFilledSkipsPairedPlace(t *testing.T) {
	s, gw, rec := newTestSupervisor()
	gw.cancelErr = gateway.ErrOrderAlreadyClosed

	instructions := []oms.Instruction{
		{Kind: oms.InstructionCancel, Leg: types.LegPerpBid, ClientID: "quote-perp_bid-0-aaa", Side: types.SideBuy},
		{Kind: oms.InstructionPlace, Leg: types.LegPerpBid, ClientID: "quote-perp_bid-1-bbb", Side: types.SideBuy, Price: decimal.NewFromInt(100), Size: decimal.NewFromInt(1)},
	}

	s.applyInstructions(context.Background(), instructions)

	assert.Empty(t, gw.placed, "a cancel that already lost to a fill must not be followed by the paired place")

	var skippedPlace bool
	for _, r := range rec.records {
		if r.Event == "order_skip" && r.ClientID == "quote-perp_bid-1-bbb" && r.Reason == oms.CloseReasonAlreadyFilled {
			skippedPlace = true
		}
	}
	assert.True(t, skippedPlace, "the skipped place instruction must be logged as order_skip/already_filled")
}

// TestApplyInstructions_CancelSucceedsAllowsPairedPlace is the control
// case: an ordinary cancel must still let its paired place through.
func TestApplyInstructions_CancelSucceedsAllowsPairedPlace(t *testing.T) {
	s, gw, _ := newTestSupervisor()

	instructions := []oms.Instruction{
		{Kind: oms.InstructionCancel, Leg: types.LegPerpBid, ClientID: "quote-perp_bid-0-aaa", Side: types.SideBuy},
		{Kind: oms.InstructionPlace, Leg: types.LegPerpBid, ClientID: "quote-perp_bid-1-bbb", Side: types.SideBuy, Price: decimal.NewFromInt(100), Size: decimal.NewFromInt(1)},
	}

	s.applyInstructions(context.Background(), instructions)

	require.Len(t, gw.placed, 1, "a cancel that actually succeeds must let the replacement quote post")
	assert.Equal(t, "quote-perp_bid-1-bbb", gw.placed[0].ClientID)
}

// TestApplyInstructions_UnrelatedCancelErrorStillSkipsPlace pins the
// current behavior for any other cancel failure (not just
// already-filled): the pair's place is still withheld, since posting a
// fresh quote right after a cancel that failed for an unknown reason
// risks a duplicate live order on that side.
func TestApplyInstructions_UnrelatedCancelErrorStillSkipsPlace(t *testing.T) {
	s, gw, _ := newTestSupervisor()
	gw.cancelErr = assertAnError{}

	instructions := []oms.Instruction{
		{Kind: oms.InstructionCancel, Leg: types.LegPerpAsk, ClientID: "quote-perp_ask-0-aaa", Side: types.SideSell},
		{Kind: oms.InstructionPlace, Leg: types.LegPerpAsk, ClientID: "quote-perp_ask-1-bbb", Side: types.SideSell, Price: decimal.NewFromInt(101), Size: decimal.NewFromInt(1)},
	}

	s.applyInstructions(context.Background(), instructions)

	assert.Empty(t, gw.placed)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "network error" }

// openFreshHedgeTicket drives a real perp fill through the OMS so the
// resulting HedgeTicket carries a production DeadlineTs, exactly as
// openHedgeTicket computes it, instead of hand-constructing one.
func openFreshHedgeTicket(t *testing.T, o *oms.OMS, now time.Time, cfg oms.Config) *types.HedgeTicket {
	t.Helper()
	var inv types.Inventory
	fill := types.NormalizedFill{
		Leg:      types.LegPerpBid,
		Side:     types.SideBuy,
		ClientID: "quote-perp_bid-0-aaa",
		TradeID:  "t1",
		Qty:      decimal.NewFromInt(1),
		Ts:       now,
	}
	outcome := o.HandleFill(now, &inv, fill, cfg)
	require.NotNil(t, outcome.HedgeTicket)
	return outcome.HedgeTicket
}

// TestUnwindOverdueHedges_FreshTicketIsLeftAlone covers comment 1/5
// together: openHedgeTicket must set a real DeadlineTs (comment 1), and
// a ticket still inside its settling window must not be force-unwound
// by the guard-triggered path (comment 5) just because the guard
// tripped this tick.
func TestUnwindOverdueHedges_FreshTicketIsLeftAlone(t *testing.T) {
	s, gw, _ := newTestSupervisor()
	now := time.Now()
	cfg := testOMSCfg()

	ticket := openFreshHedgeTicket(t, s.OMS, now, cfg)
	require.False(t, ticket.DeadlineTs.IsZero(), "DeadlineTs must be set so the deadline branch is not dead (comment 1)")
	require.True(t, ticket.DeadlineTs.After(now), "a freshly opened ticket's deadline must be in the future")

	s.unwindOverdueHedges(context.Background(), now)

	assert.Empty(t, gw.placed, "a ticket still inside its settling window must not be force-unwound")
	assert.Equal(t, types.HedgeOpen, ticket.Status)
}

// TestUnwindOverdueHedges_PastDeadlineForcesUnwind is the positive case
// of comment 5: once a ticket's deadline has passed, the
// unhedged_exposure guard's trip must force its unwind immediately
// rather than waiting for the ticket's own next-tick check.
func TestUnwindOverdueHedges_PastDeadlineForcesUnwind(t *testing.T) {
	s, gw, _ := newTestSupervisor()
	opened := time.Now().Add(-1 * time.Hour)
	cfg := testOMSCfg()

	ticket := openFreshHedgeTicket(t, s.OMS, opened, cfg)
	require.True(t, ticket.DeadlineTs.Before(time.Now()), "test fixture must produce an overdue ticket")

	s.unwindOverdueHedges(context.Background(), time.Now())

	require.Len(t, gw.placed, 1, "a ticket past its deadline must be force-unwound")
	assert.Equal(t, types.LegPerpUnwind, gw.placed[0].Leg)
	assert.True(t, gw.placed[0].ReduceOnly)
	assert.Equal(t, types.HedgeUnwind, ticket.Status)
}

// TestUnwindOverdueHedges_SecondOverdueTicketIsNotDoubled confirms the
// close-exclusion lock (wired into Unwind) also protects the
// guard-triggered path: when two tickets are overdue in the same tick,
// only the first acquires the lock and sends its unwind; the second is
// skipped with order_skip/close_inflight rather than double-firing.
func TestUnwindOverdueHedges_SecondOverdueTicketIsNotDoubled(t *testing.T) {
	s, gw, rec := newTestSupervisor()
	opened := time.Now().Add(-1 * time.Hour)
	cfg := testOMSCfg()

	var inv types.Inventory
	fill1 := types.NormalizedFill{Leg: types.LegPerpBid, Side: types.SideBuy, ClientID: "quote-perp_bid-0-aaa", TradeID: "t1", Qty: decimal.NewFromInt(1), Ts: opened}
	fill2 := types.NormalizedFill{Leg: types.LegPerpAsk, Side: types.SideSell, ClientID: "quote-perp_ask-0-bbb", TradeID: "t2", Qty: decimal.NewFromInt(1), Ts: opened}
	outcome1 := s.OMS.HandleFill(opened, &inv, fill1, cfg)
	outcome2 := s.OMS.HandleFill(opened, &inv, fill2, cfg)
	require.NotNil(t, outcome1.HedgeTicket)
	require.NotNil(t, outcome2.HedgeTicket)

	s.unwindOverdueHedges(context.Background(), time.Now())

	require.Len(t, gw.placed, 1, "only the ticket that wins the close-exclusion lock may send its unwind")

	var sawInflightSkip bool
	for _, r := range rec.records {
		if r.Reason == oms.CloseReasonInflight {
			sawInflightSkip = true
		}
	}
	assert.True(t, sawInflightSkip, "the second overdue ticket must be logged as order_skip/close_inflight")
}
