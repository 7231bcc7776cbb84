// Package strategy implements the pure quoting computation of spec
// §4.3: (snapshot, funding, inventory, guards) -> QuotePlan. It imports
// nothing from internal/gateway or internal/oms; every input arrives
// as a plain value so the function is trivially table-testable, the
// same posture as the teacher's aggregatePrice/getLayerPrice helpers.
package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

const bpsDivisor = 10_000

// Quote is one side's desired price/size. A nil *Quote on a QuotePlan
// side means "do not quote this side".
type Quote struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// QuotePlan is the Strategy's per-cycle output.
type QuotePlan struct {
	Bid    *Quote
	Ask    *Quote
	Reason string
}

// GuardState mirrors the risk package's per-cycle evaluation without
// internal/strategy importing internal/risk (which itself may need the
// strategy's notion of Mode); the orchestrator wires the two together.
type GuardState struct {
	Tripped bool
	Reason  string
}

// Plan computes one cycle's QuotePlan, implementing spec §4.3 steps 1-7.
func Plan(cfg Config, snap types.MarketSnapshot, funding types.FundingState, inv types.Inventory, constr types.Constraints, guard GuardState) QuotePlan {
	if guard.Tripped {
		return QuotePlan{Reason: guard.Reason}
	}

	if funding.Rate.Abs().LessThan(cfg.MinAbsFunding) {
		return QuotePlan{Reason: "funding_too_thin"}
	}

	if !snap.Valid() {
		return QuotePlan{Reason: "book_crossed"}
	}

	bestBid := snap.PerpBBO.BidPrice
	bestAsk := snap.PerpBBO.AskPrice
	mid := snap.PerpBBO.Mid()

	// r = mid * (1 + k_obi * obi)
	r := mid.Mul(decimal.NewFromInt(1).Add(cfg.KOBI.Mul(snap.OBI)))

	invSkew := inventorySkew(cfg.InventorySkewBps, inv, mid)
	fundSkew := fundingSkew(cfg.FundingSkewBps, funding.Rate)

	// h = base_half_spread_bps + inventory_skew + funding_skew, all
	// expressed in bps and converted to a fraction here.
	hBps := cfg.BaseHalfSpreadBps.Add(invSkew).Add(fundSkew)
	h := hBps.Div(decimal.NewFromInt(bpsDivisor))

	one := decimal.NewFromInt(1)
	bidPxRaw := r.Mul(one.Sub(h))
	askPxRaw := r.Mul(one.Add(h))

	plan := QuotePlan{Reason: "ok"}

	bidPx := constr.RoundDownPrice(bidPxRaw)
	if bidPx.GreaterThan(bestBid) {
		bidPx = bestBid
	}
	if bidPx.LessThan(bestAsk) {
		size := constr.TruncateSize(cfg.QuoteQty)
		if constr.MeetsMinNotional(bidPx, size) {
			plan.Bid = &Quote{Price: bidPx, Size: size}
		}
	}

	askPx := constr.RoundUpPrice(askPxRaw)
	if askPx.LessThan(bestAsk) {
		askPx = bestAsk
	}
	if askPx.GreaterThan(bestBid) {
		size := constr.TruncateSize(cfg.QuoteQty)
		if constr.MeetsMinNotional(askPx, size) {
			plan.Ask = &Quote{Price: askPx, Size: size}
		}
	}

	if plan.Bid == nil && plan.Ask == nil {
		plan.Reason = "both_sides_dropped"
	}
	return plan
}

// inventorySkew scales with signed net position: more long widens the
// half-spread, tempering further bid-side accumulation.
func inventorySkew(coefBps decimal.Decimal, inv types.Inventory, mid decimal.Decimal) decimal.Decimal {
	if mid.IsZero() {
		return decimal.Zero
	}
	return coefBps.Mul(inv.Net())
}

// fundingSkew scales with the funding rate so the spread widens when
// funding makes one side of the book more expensive to hold.
func fundingSkew(coefBps, fundingRate decimal.Decimal) decimal.Decimal {
	return coefBps.Mul(fundingRate)
}
