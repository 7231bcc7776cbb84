// Package gateway defines the capability boundary between the engine's
// domain logic and the exchange. Two implementations satisfy Gateway:
// internal/gateway/bitget (the real venue) and internal/gateway/simulated
// (dry-run). Nothing above this package ever imports a venue-specific
// field name; the abstract types.TIF/types.Leg hide Bitget's
// `timeInForceValue` (perp) vs `force` (spot) naming split.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// ErrOrderAlreadyClosed is returned by CancelOrder when the venue
// reports the order already filled, canceled, or otherwise no longer
// open. Callers must not re-post a replacement order in this case
// (spec §4.4's "a cancel failing because the order already filled
// must not be followed by a re-post").
var ErrOrderAlreadyClosed = errors.New("gateway: order already filled or canceled")

// PositionMode mirrors the exchange's account-level position mode
// (one-way vs. hedge). The engine expects a fixed mode per §9's
// posmode_mismatch guard and only ever calls SetPositionMode during
// startup reconciliation if auto_set_position_mode is enabled.
type PositionMode string

const (
	PositionModeOneWay PositionMode = "one_way"
	PositionModeHedge  PositionMode = "hedge"
)

// OrderRequest is everything the gateway needs to place one order. The
// core always supplies ClientID (so fills/acks can be correlated) and
// never a raw TIF string.
type OrderRequest struct {
	ClientID string
	Symbol   string
	Leg      types.Leg
	Side     types.Side
	Price    decimal.Decimal
	Size     decimal.Decimal
	TIF      types.TIF
	ReduceOnly bool
}

// OrderAck is the gateway's synchronous response to PlaceOrder.
type OrderAck struct {
	ExchOrderID string
	AcceptedTs  time.Time
}

// OrderEvent is a private order-state update (ack/live/cancel/reject).
type OrderEvent struct {
	ClientID    string
	ExchOrderID string
	Status      types.OrderStatus
	Ts          time.Time
}

// FillEvent is a private trade/fill update, not yet attached to a leg
// (the OMS resolves Leg from its client-id/exch-order-id maps).
type FillEvent struct {
	ClientID    string
	ExchOrderID string
	TradeID     string
	Side        types.Side
	Price       decimal.Decimal
	Qty         decimal.Decimal
	Fee         decimal.Decimal
	Ts          time.Time

	// Simulated marks a fill produced by internal/gateway/simulated
	// rather than a real venue, per spec §9 "simulated-fill mode".
	Simulated bool
}

// PositionEvent is a private position-snapshot/delta update used for
// startup reconciliation and drift detection.
type PositionEvent struct {
	Instrument types.Instrument
	Qty        decimal.Decimal // signed, net position
	Ts         time.Time
}

// ConnState reports the private stream's connectivity, feeding the
// private_ws_down guard.
type ConnState struct {
	Connected bool
	Ts        time.Time
}

// PrivateEvents bundles the three private-stream event channels plus a
// connection-state channel, all closed together on stream teardown.
type PrivateEvents struct {
	Orders    <-chan OrderEvent
	Fills     <-chan FillEvent
	Positions <-chan PositionEvent
	Conn      <-chan ConnState
}

// Gateway is the capability surface spec §6 "Gateway (consumed)"
// describes in full: book/private subscriptions, funding, constraints,
// position mode, and order placement/cancellation.
type Gateway interface {
	SubscribePublicBooks(ctx context.Context, symbol string, leg types.Leg) (<-chan BookUpdate, error)
	SubscribePrivate(ctx context.Context, leg types.Leg) (PrivateEvents, error)

	GetFundingRate(ctx context.Context, symbol string) (rate decimal.Decimal, ts time.Time, err error)
	LoadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error)

	GetPositionMode(ctx context.Context, instrument types.Instrument) (PositionMode, error)
	SetPositionMode(ctx context.Context, instrument types.Instrument, mode PositionMode) error

	PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error

	// GetPositionSnapshot is used at startup reconciliation (spec §6
	// "Persisted state: none") to rebuild Inventory from the venue's
	// own bookkeeping rather than any local state.
	GetPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error)

	// ListOpenOrders returns every currently-open order's client id,
	// feeding ReconcileStartup's cancel-by-known-prefix step.
	ListOpenOrders(ctx context.Context, symbol string) ([]string, error)
}

// BookUpdate is a depth snapshot delivered by SubscribePublicBooks. It
// carries its own Source so the Normalizer can tell a primary 5-level
// update from a fallback top-of-book one without per-venue knowledge.
type BookUpdate struct {
	Source    types.DepthSource
	BidLevels []types.PriceLevel
	AskLevels []types.PriceLevel
	Ts        time.Time
}
