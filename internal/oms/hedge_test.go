package oms

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func hedgeCfg() Config {
	return Config{
		HedgeSlipBps:    decimal.NewFromInt(5),
		HedgeChaseSec:   3 * time.Second,
		HedgeMaxTries:   2,
		HedgeDeadlineMs: 10 * time.Second,
		ChaseGain:       decimal.NewFromFloat(0.5),
	}
}

func TestHedgeLifecycle_OpenChaseUnwind(t *testing.T) {
	o := NewOMS("ETHUSDT")
	var inv types.Inventory

	fill := types.NormalizedFill{Leg: types.LegPerpBid, Side: types.SideBuy, ClientID: "quote-perp_bid-0-aaa", TradeID: "t1", Qty: decimal.NewFromInt(2), Ts: time.Now()}
	outcome := o.HandleFill(time.Now(), &inv, fill, hedgeCfg())
	require.NotNil(t, outcome.HedgeTicket)
	ticket := outcome.HedgeTicket
	assert.Equal(t, types.HedgeOpen, ticket.Status)

	spotBBO := types.BBO{BidPrice: decimal.NewFromInt(99), AskPrice: decimal.NewFromInt(101)}
	action := o.OpenHedgeInstruction(ticket, spotBBO, hedgeCfg())
	assert.Equal(t, types.SideSell, action.Side, "hedge side must be opposite the perp fill")
	assert.True(t, action.Price.LessThan(spotBBO.BidPrice), "sell hedge should be priced below the bid by the slip")

	now := time.Now()
	assert.True(t, ShouldChase(ticket, now.Add(5*time.Second), now, hedgeCfg()))

	chaseAction := o.Chase(ticket, spotBBO, hedgeCfg())
	assert.Equal(t, types.HedgeChasing, ticket.Status)
	assert.Equal(t, 1, ticket.Tries)
	assert.NotEqual(t, action.ClientID, chaseAction.ClientID, "each chase must mint a distinct client id")

	ticket.Tries = hedgeCfg().HedgeMaxTries
	assert.True(t, ShouldUnwind(ticket, now, hedgeCfg()))

	unwindAction, ok := o.Unwind(ticket)
	require.True(t, ok, "unwind must acquire the close-exclusion lock for a fresh ticket")
	assert.Equal(t, types.LegPerpUnwind, unwindAction.Leg)
	assert.Equal(t, types.HedgeUnwind, ticket.Status)

	_, ok = o.Unwind(ticket)
	assert.False(t, ok, "a second unwind while the lock is held must be rejected")

	unwindFill := types.NormalizedFill{Leg: types.LegPerpUnwind, ClientID: unwindAction.ClientID, TradeID: "t2", Qty: ticket.Remain, Ts: time.Now()}
	o.HandleFill(time.Now(), &inv, unwindFill, hedgeCfg())
	assert.Equal(t, types.HedgeDone, ticket.Status)
	assert.True(t, o.AcquireClose(o.Symbol), "the close-exclusion lock must be released once the unwind fully fills")
}

func TestHedgeTicket_DoneWhenRemainSettles(t *testing.T) {
	o := NewOMS("ETHUSDT")
	var inv types.Inventory

	fill := types.NormalizedFill{Leg: types.LegPerpAsk, Side: types.SideSell, ClientID: "quote-perp_ask-0-aaa", TradeID: "t1", Qty: decimal.NewFromInt(1), Ts: time.Now()}
	outcome := o.HandleFill(time.Now(), &inv, fill, hedgeCfg())
	ticket := outcome.HedgeTicket
	require.NotNil(t, ticket)

	spotFill := types.NormalizedFill{Leg: types.LegSpotIOC, ClientID: ticket.HedgeID, TradeID: "t2", Qty: decimal.NewFromInt(1), Ts: time.Now()}
	ticket.ActiveClientID = ticket.HedgeID
	o.HandleFill(time.Now(), &inv, spotFill, hedgeCfg())

	assert.True(t, o.FinalizeHedgeFill(ticket.HedgeID, decimal.NewFromFloat(0.001)))
	assert.Equal(t, types.HedgeDone, ticket.Status)
}

func TestCloseExclusion_RejectsSecondAcquire(t *testing.T) {
	o := NewOMS("ETHUSDT")
	assert.True(t, o.AcquireClose("ETHUSDT"))
	assert.False(t, o.AcquireClose("ETHUSDT"), "second acquire must be rejected while the first is held")

	o.ReleaseClose("ETHUSDT")
	assert.True(t, o.AcquireClose("ETHUSDT"))
}
