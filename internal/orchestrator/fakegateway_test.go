package orchestrator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// fakeGateway is a minimal gateway.Gateway double for orchestrator-level
// wiring tests: it records PlaceOrder/CancelOrder calls and lets a test
// inject the error each should return, without touching any real venue
// or the simulated package's matching engine.
type fakeGateway struct {
	cancelErr error
	placeErr  error

	placed  []gateway.OrderRequest
	canceled []string
}

func (g *fakeGateway) SubscribePublicBooks(ctx context.Context, symbol string, leg types.Leg) (<-chan gateway.BookUpdate, error) {
	return nil, nil
}

func (g *fakeGateway) SubscribePrivate(ctx context.Context, leg types.Leg) (gateway.PrivateEvents, error) {
	return gateway.PrivateEvents{}, nil
}

func (g *fakeGateway) GetFundingRate(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	return decimal.Zero, time.Time{}, nil
}

func (g *fakeGateway) LoadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error) {
	return types.Constraints{}, nil
}

func (g *fakeGateway) GetPositionMode(ctx context.Context, instrument types.Instrument) (gateway.PositionMode, error) {
	return gateway.PositionModeOneWay, nil
}

func (g *fakeGateway) SetPositionMode(ctx context.Context, instrument types.Instrument, mode gateway.PositionMode) error {
	return nil
}

func (g *fakeGateway) PlaceOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderAck, error) {
	if g.placeErr != nil {
		return gateway.OrderAck{}, g.placeErr
	}
	g.placed = append(g.placed, req)
	return gateway.OrderAck{ExchOrderID: "exch-" + req.ClientID, AcceptedTs: time.Now()}, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.canceled = append(g.canceled, clientID)
	return nil
}

func (g *fakeGateway) GetPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error) {
	return types.Inventory{}, nil
}

func (g *fakeGateway) ListOpenOrders(ctx context.Context, symbol string) ([]string, error) {
	return nil, nil
}

// recordingRecorder captures every Record call for assertions, since
// the production LogrusRecorder only writes to files/stdout.
type recordingRecorder struct {
	records []logging.Record
}

func (r *recordingRecorder) Record(rec logging.Record) {
	r.records = append(r.records, rec)
}
