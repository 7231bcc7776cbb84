package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func baseConstraints() types.Constraints {
	return types.Constraints{
		Symbol:      "ETHUSDT",
		Instrument:  types.InstrumentPerp,
		PriceTick:   dec(0.01),
		SizeStep:    dec(0.001),
		MinNotional: dec(5),
		MinSize:     dec(0.001),
	}
}

func baseSnapshot() types.MarketSnapshot {
	return types.MarketSnapshot{
		Symbol: "ETHUSDT",
		SpotBBO: types.BBO{BidPrice: dec(2000), AskPrice: dec(2000.1), Ts: time.Now()},
		PerpBBO: types.BBO{BidPrice: dec(2000), AskPrice: dec(2000.2), Ts: time.Now()},
		OBI:     decimal.Zero,
		Ts:      time.Now(),
	}
}

func baseConfig() Config {
	return Config{
		QuoteQty:            dec(1),
		BaseHalfSpreadBps:   dec(5),
		KOBI:                dec(0.001),
		InventorySkewBps:    dec(1),
		FundingSkewBps:      dec(1),
		MinAbsFunding:       dec(0.00001),
		ReplaceThresholdBps: dec(2),
	}
}

func TestPlan_GuardTrippedDropsBothSides(t *testing.T) {
	plan := Plan(baseConfig(), baseSnapshot(), types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{Tripped: true, Reason: "book_stale"})
	assert.Nil(t, plan.Bid)
	assert.Nil(t, plan.Ask)
	assert.Equal(t, "book_stale", plan.Reason)
}

func TestPlan_FundingTooThinDropsBothSides(t *testing.T) {
	cfg := baseConfig()
	plan := Plan(cfg, baseSnapshot(), types.FundingState{Rate: dec(0.0000001), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{})
	assert.Nil(t, plan.Bid)
	assert.Nil(t, plan.Ask)
	assert.Equal(t, "funding_too_thin", plan.Reason)
}

func TestPlan_CrossedBookIsRejected(t *testing.T) {
	snap := baseSnapshot()
	snap.PerpBBO = types.BBO{BidPrice: dec(2001), AskPrice: dec(2000), Ts: time.Now()}
	plan := Plan(baseConfig(), snap, types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{})
	assert.Equal(t, "book_crossed", plan.Reason)
}

func TestPlan_HappyPathQuotesBothSidesPostOnly(t *testing.T) {
	snap := baseSnapshot()
	plan := Plan(baseConfig(), snap, types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{})

	require.NotNil(t, plan.Bid)
	require.NotNil(t, plan.Ask)

	assert.False(t, plan.Bid.Price.GreaterThan(snap.PerpBBO.BidPrice), "bid must not improve past best bid (post-only)")
	assert.False(t, plan.Ask.Price.LessThan(snap.PerpBBO.AskPrice), "ask must not improve past best ask (post-only)")
	assert.True(t, plan.Bid.Price.LessThan(plan.Ask.Price))
}

func TestPlan_SizeBelowMinNotionalDropsSide(t *testing.T) {
	cfg := baseConfig()
	cfg.QuoteQty = dec(0.0001) // tiny size, notional well under MinNotional=5
	snap := baseSnapshot()
	plan := Plan(cfg, snap, types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{})

	assert.Nil(t, plan.Bid)
	assert.Nil(t, plan.Ask)
	assert.Equal(t, "both_sides_dropped", plan.Reason)
}

func TestPlan_LongInventoryWidensSpread(t *testing.T) {
	snap := baseSnapshot()
	cfg := baseConfig()
	flat := Plan(cfg, snap, types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{}, baseConstraints(), GuardState{})
	long := Plan(cfg, snap, types.FundingState{Rate: dec(0.0005), Ts: time.Now()}, types.Inventory{PerpPos: dec(10)}, baseConstraints(), GuardState{})

	require.NotNil(t, flat.Bid)
	require.NotNil(t, flat.Ask)
	require.NotNil(t, long.Bid)
	require.NotNil(t, long.Ask)

	flatSpread := flat.Ask.Price.Sub(flat.Bid.Price)
	longSpread := long.Ask.Price.Sub(long.Bid.Price)
	assert.True(t, longSpread.GreaterThanOrEqual(flatSpread), "being long should not narrow the spread")
}
