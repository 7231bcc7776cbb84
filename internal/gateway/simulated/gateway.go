// Package simulated implements gateway.Gateway against a synthetic
// random-walk book instead of a real venue, per spec §9's "simulated-
// fill mode": post-only quotes fill once the simulated perp mid reaches
// their price, IOC orders fill immediately at the requested price, and
// every emitted fill event is tagged Simulated=true (no order events are
// emitted). Generalized from
// the teacher's paper-trading session idiom (deterministic fills
// against the book the strategy itself just saw), since bbgo's own
// paper-exchange type isn't importable standalone.
package simulated

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Config seeds the synthetic market this gateway drives.
type Config struct {
	Symbol       string
	StartMid     decimal.Decimal
	SpreadBps    decimal.Decimal
	TickInterval time.Duration
	Seed         int64
	FundingRate  decimal.Decimal
}

// Gateway is a single-symbol, single-process simulated venue. All
// state is guarded by one mutex since nothing about it is performance
// sensitive.
type Gateway struct {
	cfg Config
	rng *rand.Rand

	mu      sync.Mutex
	spotMid decimal.Decimal
	perpMid decimal.Decimal

	resting map[string]restingOrder // clientID -> order, perp post-only only
	posMode gateway.PositionMode
	pos     types.Inventory

	fills chan gateway.FillEvent
	conn  chan gateway.ConnState
}

type restingOrder struct {
	req gateway.OrderRequest
	ack gateway.OrderAck
}

// New builds a ready-to-run simulated Gateway.
func New(cfg Config) *Gateway {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.SpreadBps.IsZero() {
		cfg.SpreadBps = decimal.NewFromInt(5)
	}
	return &Gateway{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		spotMid: cfg.StartMid,
		perpMid: cfg.StartMid,
		resting: make(map[string]restingOrder),
		posMode: gateway.PositionModeOneWay,
		fills:   make(chan gateway.FillEvent, 64),
		conn:    make(chan gateway.ConnState, 1),
	}
}

func (g *Gateway) SubscribePublicBooks(ctx context.Context, symbol string, leg types.Leg) (<-chan gateway.BookUpdate, error) {
	out := make(chan gateway.BookUpdate, 8)
	go g.runBookLoop(ctx, leg, out)
	return out, nil
}

func (g *Gateway) runBookLoop(ctx context.Context, leg types.Leg, out chan<- gateway.BookUpdate) {
	defer close(out)
	ticker := time.NewTicker(g.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out <- g.nextBookUpdate(leg)
		}
	}
}

// nextBookUpdate advances the synthetic mid by a small random walk and
// emits a 5-level book around it. A post-only order whose price the new
// perp mid has reached is deemed filled.
func (g *Gateway) nextBookUpdate(leg types.Leg) gateway.BookUpdate {
	g.mu.Lock()
	defer g.mu.Unlock()

	step := decimal.NewFromFloat(g.rng.NormFloat64() * 0.0005)
	if leg == types.LegSpotIOC {
		g.spotMid = g.spotMid.Mul(decimal.NewFromInt(1).Add(step))
	} else {
		g.perpMid = g.perpMid.Mul(decimal.NewFromInt(1).Add(step))
		g.checkRestingFills()
	}

	mid := g.perpMid
	if leg == types.LegSpotIOC {
		mid = g.spotMid
	}

	half := mid.Mul(g.cfg.SpreadBps).Div(decimal.NewFromInt(20_000))
	now := time.Now()

	var bids, asks []types.PriceLevel
	for i := 0; i < 5; i++ {
		off := half.Mul(decimal.NewFromInt(int64(i + 1)))
		bids = append(bids, types.PriceLevel{Price: mid.Sub(off), Size: decimal.NewFromInt(10)})
		asks = append(asks, types.PriceLevel{Price: mid.Add(off), Size: decimal.NewFromInt(10)})
	}

	return gateway.BookUpdate{
		Source:    types.DepthSourcePrimary,
		BidLevels: bids,
		AskLevels: asks,
		Ts:        now,
	}
}

// checkRestingFills fills any post-only order whose price the new perp
// mid has reached or crossed (a buy priced at or above the mid, a sell
// at or below it). Caller holds g.mu.
func (g *Gateway) checkRestingFills() {
	for clientID, ro := range g.resting {
		crossed := (ro.req.Side == types.SideBuy && g.perpMid.LessThanOrEqual(ro.req.Price)) ||
			(ro.req.Side == types.SideSell && g.perpMid.GreaterThanOrEqual(ro.req.Price))
		if !crossed {
			continue
		}
		delete(g.resting, clientID)
		g.emitFill(ro.req, ro.ack, ro.req.Size)
	}
}

func (g *Gateway) emitFill(req gateway.OrderRequest, ack gateway.OrderAck, qty decimal.Decimal) {
	fee := req.Price.Mul(qty).Mul(decimal.NewFromFloat(0.0002))

	instrument := types.InstrumentSpot
	if req.Leg == types.LegPerpBid || req.Leg == types.LegPerpAsk || req.Leg == types.LegPerpUnwind {
		instrument = types.InstrumentPerp
	}
	g.pos.ApplyFill(instrument, req.Side, qty)

	select {
	case g.fills <- gateway.FillEvent{
		ClientID:    req.ClientID,
		ExchOrderID: ack.ExchOrderID,
		TradeID:     ack.ExchOrderID + "-t",
		Side:        req.Side,
		Price:       req.Price,
		Qty:         qty,
		Fee:         fee,
		Ts:          time.Now(),
		Simulated:   true,
	}:
	default:
	}
}

func (g *Gateway) SubscribePrivate(ctx context.Context, leg types.Leg) (gateway.PrivateEvents, error) {
	orders := make(chan gateway.OrderEvent)
	positions := make(chan gateway.PositionEvent)
	close(orders)
	close(positions)

	conn := make(chan gateway.ConnState, 1)
	conn <- gateway.ConnState{Connected: true, Ts: time.Now()}

	return gateway.PrivateEvents{
		Orders:    orders,
		Fills:     g.fills,
		Positions: positions,
		Conn:      conn,
	}, nil
}

func (g *Gateway) GetFundingRate(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	return g.cfg.FundingRate, time.Now(), nil
}

func (g *Gateway) LoadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error) {
	instrument := types.InstrumentPerp
	if leg == types.LegSpotIOC {
		instrument = types.InstrumentSpot
	}
	return types.Constraints{
		Symbol:      symbol,
		Instrument:  instrument,
		PriceTick:   decimal.NewFromFloat(0.01),
		SizeStep:    decimal.NewFromFloat(0.001),
		MinNotional: decimal.NewFromInt(5),
		MinSize:     decimal.NewFromFloat(0.001),
	}, nil
}

func (g *Gateway) GetPositionMode(ctx context.Context, instrument types.Instrument) (gateway.PositionMode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.posMode, nil
}

func (g *Gateway) SetPositionMode(ctx context.Context, instrument types.Instrument, mode gateway.PositionMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.posMode = mode
	return nil
}

// PlaceOrder accepts every order (no reject simulation yet): post-only
// perp orders rest until checkRestingFills crosses them; everything
// else (spot IOC, perp unwind) fills immediately at the requested
// price.
func (g *Gateway) PlaceOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderAck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ack := gateway.OrderAck{ExchOrderID: "sim-" + req.ClientID, AcceptedTs: time.Now()}

	if req.TIF == types.TIFPostOnly {
		g.resting[req.ClientID] = restingOrder{req: req, ack: ack}
		return ack, nil
	}

	g.emitFill(req, ack, req.Size)
	return ack, nil
}

func (g *Gateway) CancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.resting[clientID]; !ok {
		return gateway.ErrOrderAlreadyClosed
	}
	delete(g.resting, clientID)
	return nil
}

func (g *Gateway) GetPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos, nil
}

func (g *Gateway) ListOpenOrders(ctx context.Context, symbol string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.resting))
	for clientID := range g.resting {
		ids = append(ids, clientID)
	}
	return ids, nil
}

var _ gateway.Gateway = (*Gateway)(nil)
