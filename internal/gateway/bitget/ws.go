package bitget

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

const wsWriteTimeout = 5 * time.Second

// instTypeFor returns Bitget's instType argument for a subscription leg.
func instTypeFor(leg types.Leg) string {
	if leg == types.LegSpotIOC {
		return "SPOT"
	}
	return "USDT-FUTURES"
}

// subscribePublicBooks dials the public WS, subscribes to the books5
// channel for symbol/leg, and republishes every snapshot frame as a
// gateway.BookUpdate tagged DepthSourcePrimary. Reconnects with
// cenkalti/backoff/v4 on any read error; while disconnected no updates
// are published, and it never switches to a single-level or REST
// top-of-book channel.
func (c *wsClient) subscribePublicBooks(ctx context.Context, symbol string, leg types.Leg) (<-chan gateway.BookUpdate, error) {
	out := make(chan gateway.BookUpdate, 32)

	go func() {
		defer close(out)
		policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
		_ = backoff.Retry(func() error {
			err := c.runPublicBookConn(ctx, symbol, leg, out)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}, policy)
	}()

	return out, nil
}

func (c *wsClient) runPublicBookConn(ctx context.Context, symbol string, leg types.Leg, out chan<- gateway.BookUpdate) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.WSPublicURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := fmt.Sprintf(`{"op":"subscribe","args":[{"instType":"%s","channel":"books5","instId":"%s"}]}`, instTypeFor(leg), symbol)
	if err := writeWithDeadline(conn, sub); err != nil {
		return err
	}

	var parser fastjson.Parser
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		v, err := parser.ParseBytes(msg)
		if err != nil {
			continue // skip malformed/heartbeat frames, do not kill the connection
		}
		update, ok := parseBookFrame(v)
		if !ok {
			continue
		}
		select {
		case out <- update:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseBookFrame extracts the first data entry of a books5 frame. Event
// frames ("event":"subscribe"/"error") and frames with no "data" array
// are ignored.
func parseBookFrame(v *fastjson.Value) (gateway.BookUpdate, bool) {
	data := v.GetArray("data")
	if len(data) == 0 {
		return gateway.BookUpdate{}, false
	}
	entry := data[0]

	return gateway.BookUpdate{
		Source:    types.DepthSourcePrimary,
		BidLevels: parseLevels(entry, "bids"),
		AskLevels: parseLevels(entry, "asks"),
		Ts:        parseTsMs(entry.GetStringBytes("ts")),
	}, true
}

func parseLevels(v *fastjson.Value, key string) []types.PriceLevel {
	arr := v.GetArray(key)
	levels := make([]types.PriceLevel, 0, len(arr))
	for _, lvl := range arr {
		pair := lvl.GetArray()
		if len(pair) < 2 {
			continue
		}
		levels = append(levels, types.PriceLevel{
			Price: mustDecimal(string(pair[0].StringBytes())),
			Size:  mustDecimal(string(pair[1].StringBytes())),
		})
	}
	return levels
}

func parseTsMs(raw []byte) time.Time {
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.UnixMilli(ms)
}

// subscribePrivate dials the private WS, logs in, subscribes to
// orders/fill/positions, and fans frames out into the three typed
// channels of gateway.PrivateEvents.
func (c *wsClient) subscribePrivate(ctx context.Context, leg types.Leg) (gateway.PrivateEvents, error) {
	orders := make(chan gateway.OrderEvent, 32)
	fills := make(chan gateway.FillEvent, 32)
	positions := make(chan gateway.PositionEvent, 32)
	conn := make(chan gateway.ConnState, 4)

	go func() {
		defer close(orders)
		defer close(fills)
		defer close(positions)
		defer close(conn)

		policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
		_ = backoff.Retry(func() error {
			err := c.runPrivateConn(ctx, leg, orders, fills, positions, conn)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			select {
			case conn <- gateway.ConnState{Connected: false, Ts: time.Now()}:
			default:
			}
			return err
		}, policy)
	}()

	return gateway.PrivateEvents{Orders: orders, Fills: fills, Positions: positions, Conn: conn}, nil
}

func (c *wsClient) runPrivateConn(ctx context.Context, leg types.Leg, orders chan<- gateway.OrderEvent, fills chan<- gateway.FillEvent, positions chan<- gateway.PositionEvent, conn chan<- gateway.ConnState) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.WSPrivateURL, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := c.loginSign(ts)
	login := fmt.Sprintf(`{"op":"login","args":[{"apiKey":"%s","passphrase":"%s","timestamp":"%s","sign":"%s"}]}`,
		c.cfg.APIKey, c.cfg.Passphrase, ts, sig)
	if err := writeWithDeadline(ws, login); err != nil {
		return err
	}

	sub := fmt.Sprintf(`{"op":"subscribe","args":[{"instType":"%s","channel":"orders"},{"instType":"%s","channel":"fill"},{"instType":"%s","channel":"positions"}]}`,
		instTypeFor(leg), instTypeFor(leg), instTypeFor(leg))
	if err := writeWithDeadline(ws, sub); err != nil {
		return err
	}

	select {
	case conn <- gateway.ConnState{Connected: true, Ts: time.Now()}:
	default:
	}

	var parser fastjson.Parser
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		v, err := parser.ParseBytes(msg)
		if err != nil {
			continue
		}
		channel := string(v.GetStringBytes("arg", "channel"))
		data := v.GetArray("data")

		switch channel {
		case "orders":
			for _, row := range data {
				select {
				case orders <- parseOrderEvent(row):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case "fill":
			for _, row := range data {
				select {
				case fills <- parseFillEvent(row):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case "positions":
			for _, row := range data {
				select {
				case positions <- parsePositionEvent(row):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func parseOrderEvent(v *fastjson.Value) gateway.OrderEvent {
	return gateway.OrderEvent{
		ClientID:    string(v.GetStringBytes("clientOid")),
		ExchOrderID: string(v.GetStringBytes("orderId")),
		Status:      mapOrderStatus(string(v.GetStringBytes("status"))),
		Ts:          parseTsMs(v.GetStringBytes("uTime")),
	}
}

func mapOrderStatus(s string) types.OrderStatus {
	switch s {
	case "live":
		return types.StatusLive
	case "partially_filled":
		return types.StatusPartial
	case "filled", "full_fill":
		return types.StatusFilled
	case "cancelled", "canceled":
		return types.StatusCanceled
	case "rejected":
		return types.StatusRejected
	default:
		return types.StatusPendingNew
	}
}

func parseFillEvent(v *fastjson.Value) gateway.FillEvent {
	return gateway.FillEvent{
		ClientID:    string(v.GetStringBytes("clientOid")),
		ExchOrderID: string(v.GetStringBytes("orderId")),
		TradeID:     string(v.GetStringBytes("tradeId")),
		Side:        types.Side(v.GetStringBytes("side")),
		Price:       mustDecimal(string(v.GetStringBytes("price"))),
		Qty:         mustDecimal(string(v.GetStringBytes("baseVolume"))),
		Fee:         mustDecimal(string(v.GetStringBytes("fee"))),
		Ts:          parseTsMs(v.GetStringBytes("uTime")),
	}
}

func parsePositionEvent(v *fastjson.Value) gateway.PositionEvent {
	return gateway.PositionEvent{
		Instrument: types.InstrumentPerp,
		Qty:        mustDecimal(string(v.GetStringBytes("total"))),
		Ts:         time.Now(),
	}
}

// loginSign implements Bitget's WS login signature:
// base64(HMAC_SHA256(secret, timestamp+"GET"+"/user/verify")).
func (c *wsClient) loginSign(ts string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(ts + "GET" + "/user/verify"))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func writeWithDeadline(conn *websocket.Conn, msg string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

type wsClient struct {
	cfg Config
}

func newWSClient(cfg Config) *wsClient {
	return &wsClient{cfg: cfg}
}
