package bitget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Gateway is the real-venue implementation of gateway.Gateway, wiring
// the signed REST client and the two WS streams together.
type Gateway struct {
	rest *restClient
	ws   *wsClient
}

// New builds a Gateway against cfg. Nothing is dialed until a
// Subscribe* method is called.
func New(cfg Config) *Gateway {
	return &Gateway{
		rest: newRestClient(cfg),
		ws:   newWSClient(cfg),
	}
}

func (g *Gateway) SubscribePublicBooks(ctx context.Context, symbol string, leg types.Leg) (<-chan gateway.BookUpdate, error) {
	return g.ws.subscribePublicBooks(ctx, symbol, leg)
}

func (g *Gateway) SubscribePrivate(ctx context.Context, leg types.Leg) (gateway.PrivateEvents, error) {
	return g.ws.subscribePrivate(ctx, leg)
}

func (g *Gateway) GetFundingRate(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	return g.rest.getFundingRate(ctx, symbol)
}

func (g *Gateway) LoadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error) {
	return g.rest.loadConstraints(ctx, symbol, leg)
}

func (g *Gateway) GetPositionMode(ctx context.Context, instrument types.Instrument) (gateway.PositionMode, error) {
	return g.rest.getPositionMode(ctx, instrument)
}

func (g *Gateway) SetPositionMode(ctx context.Context, instrument types.Instrument, mode gateway.PositionMode) error {
	return g.rest.setPositionMode(ctx, instrument, mode)
}

func (g *Gateway) PlaceOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderAck, error) {
	return g.rest.placeOrder(ctx, req)
}

func (g *Gateway) CancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error {
	return g.rest.cancelOrder(ctx, symbol, clientID, exchOrderID)
}

func (g *Gateway) GetPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error) {
	return g.rest.getPositionSnapshot(ctx, symbol)
}

func (g *Gateway) ListOpenOrders(ctx context.Context, symbol string) ([]string, error) {
	return g.rest.listOpenOrders(ctx, symbol)
}

var _ gateway.Gateway = (*Gateway)(nil)
