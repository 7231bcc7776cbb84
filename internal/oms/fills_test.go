package oms

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func TestHandleFill_PerpFillOpensHedgeTicket(t *testing.T) {
	o := NewOMS("ETHUSDT")
	var inv types.Inventory

	f := types.NormalizedFill{
		Leg: types.LegPerpBid, Side: types.SideBuy, ClientID: "quote-perp_bid-0-aaa",
		TradeID: "t1", Price: decimal.NewFromInt(100), Qty: decimal.NewFromInt(1), Ts: time.Now(),
	}
	now := time.Now()
	outcome := o.HandleFill(now, &inv, f, hedgeCfg())

	require.False(t, outcome.Duplicate)
	require.NotNil(t, outcome.HedgeTicket)
	assert.Equal(t, types.SideSell, outcome.HedgeTicket.Side)
	assert.True(t, inv.PerpPos.Equal(decimal.NewFromInt(1)))
	assert.True(t, outcome.HedgeTicket.DeadlineTs.After(now), "DeadlineTs must be set ahead of open time")
}

func TestHandleFill_DuplicateIsDropped(t *testing.T) {
	o := NewOMS("ETHUSDT")
	var inv types.Inventory

	f := types.NormalizedFill{
		Leg: types.LegPerpBid, Side: types.SideBuy, ClientID: "quote-perp_bid-0-aaa",
		TradeID: "t1", Price: decimal.NewFromInt(100), Qty: decimal.NewFromInt(1), Ts: time.Now(),
	}
	first := o.HandleFill(time.Now(), &inv, f, hedgeCfg())
	second := o.HandleFill(time.Now(), &inv, f, hedgeCfg())

	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	assert.True(t, inv.PerpPos.Equal(decimal.NewFromInt(1)), "duplicate fill must not double-apply")
}

func TestHandleFill_SpotFillWithoutClientIDIsBuffered(t *testing.T) {
	o := NewOMS("ETHUSDT")
	var inv types.Inventory

	f := types.NormalizedFill{Leg: types.LegSpotIOC, Side: types.SideSell, ExchOrderID: "exch-1", TradeID: "t2", Qty: decimal.NewFromInt(1), Ts: time.Now()}
	outcome := o.HandleFill(time.Now(), &inv, f, hedgeCfg())

	assert.True(t, outcome.Buffered)
	assert.True(t, inv.SpotPos.IsZero(), "buffered fill must not apply until correlated")

	resolved := o.RegisterOrder(&types.OrderRecord{ClientID: "hedge-spot_ioc-0-bbb", Leg: types.LegSpotIOC, ExchOrderID: "exch-1"})
	require.Len(t, resolved, 1)
	assert.Empty(t, o.pendingFills, "registering the order should drain the buffered fill")

	applied := o.ApplyResolvedFill(time.Now(), &inv, resolved[0].Fill, hedgeCfg())
	assert.False(t, applied.Duplicate)
	assert.True(t, inv.SpotPos.Equal(decimal.NewFromInt(-1)), "resolved fill should now apply its inventory delta")
}

func TestExpirePendingFills_DropsStaleEntries(t *testing.T) {
	o := NewOMS("ETHUSDT")
	now := time.Now()

	f := types.NormalizedFill{Leg: types.LegSpotIOC, ExchOrderID: "exch-2", Qty: decimal.NewFromInt(1), Ts: now}
	var inv types.Inventory
	o.HandleFill(now.Add(-3*time.Second), &inv, f, hedgeCfg())

	expired := o.ExpirePendingFills(now)
	require.Len(t, expired, 1)
	assert.Empty(t, o.pendingFills)
}
