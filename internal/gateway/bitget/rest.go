package bitget

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// restClient is the signed REST surface. All requests retry on 5xx/
// network error per §7 error taxonomy #1, bounded by a shared
// rate.Limiter.
type restClient struct {
	http    *resty.Client
	cfg     Config
	limiter *rate.Limiter
}

func newRestClient(cfg Config) *restClient {
	http := resty.New().
		SetBaseURL(cfg.RestBaseURL).
		SetTimeout(cfg.RestTimeout)

	return &restClient{
		http:    http,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestBurst),
	}
}

// sign implements Bitget's v2 REST signature: base64(HMAC_SHA256(secret,
// timestamp+method+requestPath+body)).
func (c *restClient) sign(method, path, body, ts string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(ts + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// bitgetSuccessCode is the {code,msg,data} envelope's code on success;
// any other code is a logical API error even on HTTP 200.
const bitgetSuccessCode = "00000"

// orderNotFoundCode is the code Bitget returns from cancel-order once
// the order has already filled, canceled, or otherwise no longer
// exists to cancel.
const orderNotFoundCode = "43025"

// do issues one signed request, retrying transient failures with
// cenkalti/backoff/v4's default exponential policy capped at 3 retries
// (at most 4 attempts in all).
func (c *restClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "bitget: marshal request body")
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.Retry(func() error {
		ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
		sig := c.sign(method, path, string(bodyBytes), ts)

		req := c.http.R().
			SetContext(ctx).
			SetHeader("ACCESS-KEY", c.cfg.APIKey).
			SetHeader("ACCESS-SIGN", sig).
			SetHeader("ACCESS-TIMESTAMP", ts).
			SetHeader("ACCESS-PASSPHRASE", c.cfg.Passphrase).
			SetHeader("Content-Type", "application/json")

		if len(bodyBytes) > 0 {
			req = req.SetBody(bodyBytes)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 500 {
			return fmt.Errorf("bitget: %s %s: server error %d", method, path, resp.StatusCode())
		}
		if resp.StatusCode() >= 400 {
			return backoff.Permanent(fmt.Errorf("bitget: %s %s: status %d: %s", method, path, resp.StatusCode(), resp.String()))
		}

		var head struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(resp.Body(), &head); err == nil && head.Code != "" && head.Code != bitgetSuccessCode {
			if head.Code == orderNotFoundCode {
				return backoff.Permanent(gateway.ErrOrderAlreadyClosed)
			}
			return backoff.Permanent(fmt.Errorf("bitget: %s %s: code %s: %s", method, path, head.Code, head.Msg))
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return backoff.Permanent(errors.Wrap(err, "bitget: parse response body"))
			}
		}
		return nil
	}, policy)
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type symbolConstraints struct {
	PriceTick   string `json:"priceTick"`
	SizeStep    string `json:"sizeMultiplier"`
	MinNotional string `json:"minTradeUSDT"`
	MinSize     string `json:"minTradeNum"`
}

func (c *restClient) loadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error) {
	instrument := types.InstrumentPerp
	path := "/api/v2/mix/market/contracts"
	if leg == types.LegSpotIOC {
		instrument = types.InstrumentSpot
		path = "/api/v2/spot/public/symbols"
	}

	var env apiEnvelope
	if err := c.do(ctx, "GET", path+"?symbol="+symbol, nil, &env); err != nil {
		return types.Constraints{}, errors.Wrap(err, "bitget: load constraints")
	}

	var rows []symbolConstraints
	if err := json.Unmarshal(env.Data, &rows); err != nil || len(rows) == 0 {
		return types.Constraints{}, errors.Errorf("bitget: no constraints for %s/%s", symbol, instrument)
	}
	row := rows[0]

	return types.Constraints{
		Symbol:      symbol,
		Instrument:  instrument,
		PriceTick:   mustDecimal(row.PriceTick),
		SizeStep:    mustDecimal(row.SizeStep),
		MinNotional: mustDecimal(row.MinNotional),
		MinSize:     mustDecimal(row.MinSize),
	}, nil
}

type fundingResponse struct {
	FundingRate string `json:"fundingRate"`
}

func (c *restClient) getFundingRate(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	var env apiEnvelope
	if err := c.do(ctx, "GET", "/api/v2/mix/market/current-fund-rate?symbol="+symbol, nil, &env); err != nil {
		return decimal.Zero, time.Time{}, errors.Wrap(err, "bitget: get funding rate")
	}

	var rows []fundingResponse
	if err := json.Unmarshal(env.Data, &rows); err != nil || len(rows) == 0 {
		return decimal.Zero, time.Time{}, errors.Errorf("bitget: no funding rate for %s", symbol)
	}
	return mustDecimal(rows[0].FundingRate), time.Now(), nil
}

type positionModeRequest struct {
	ProductType  string `json:"productType"`
	PosMode      string `json:"posMode"`
}

func (c *restClient) getPositionMode(ctx context.Context, instrument types.Instrument) (gateway.PositionMode, error) {
	// Bitget reports position mode per account, not per-instrument; spot
	// is always treated as one-way since it has no concept of hedge mode.
	if instrument == types.InstrumentSpot {
		return gateway.PositionModeOneWay, nil
	}
	var env apiEnvelope
	if err := c.do(ctx, "GET", "/api/v2/mix/account/account?symbol=&productType=USDT-FUTURES", nil, &env); err != nil {
		return "", errors.Wrap(err, "bitget: get position mode")
	}
	var acc struct {
		PosMode string `json:"posMode"`
	}
	if err := json.Unmarshal(env.Data, &acc); err != nil {
		return "", errors.Wrap(err, "bitget: parse position mode")
	}
	if acc.PosMode == "hedge_mode" {
		return gateway.PositionModeHedge, nil
	}
	return gateway.PositionModeOneWay, nil
}

func (c *restClient) setPositionMode(ctx context.Context, instrument types.Instrument, mode gateway.PositionMode) error {
	if instrument == types.InstrumentSpot {
		return nil
	}
	posMode := "one_way_mode"
	if mode == gateway.PositionModeHedge {
		posMode = "hedge_mode"
	}
	return c.do(ctx, "POST", "/api/v2/mix/account/set-position-mode", positionModeRequest{
		ProductType: "USDT-FUTURES",
		PosMode:     posMode,
	}, nil)
}

// orderRequestBody is the wire shape shared by spot and perp order
// placement, differing only in the TIF field name Bitget expects:
// `force` for spot, `timeInForceValue` for perp.
type orderRequestBody struct {
	Symbol            string `json:"symbol"`
	Side              string `json:"side"`
	OrderType         string `json:"orderType"`
	Price             string `json:"price,omitempty"`
	Size              string `json:"size"`
	ClientOid         string `json:"clientOid"`
	Force             string `json:"force,omitempty"`
	TimeInForceValue  string `json:"timeInForceValue,omitempty"`
	ReduceOnly        bool   `json:"reduceOnly,omitempty"`
	ProductType       string `json:"productType,omitempty"`
}

type placeOrderResponse struct {
	OrderID   string `json:"orderId"`
	ClientOid string `json:"clientOid"`
}

func (c *restClient) placeOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderAck, error) {
	spot := req.Leg == types.LegSpotIOC || req.Leg == types.LegSpotUnwind

	body := orderRequestBody{
		Symbol:    req.Symbol,
		Side:      string(req.Side),
		OrderType: "limit",
		Size:      req.Size.String(),
		ClientOid: req.ClientID,
	}
	if !req.Price.IsZero() {
		body.Price = req.Price.String()
	}
	if req.ReduceOnly {
		body.ReduceOnly = true
	}

	path := "/api/v2/mix/order/place-order"
	if spot {
		body.OrderType = "market"
		if !req.Price.IsZero() {
			body.OrderType = "limit"
		}
		body.Force = tifToBitgetForce(req.TIF)
		path = "/api/v2/spot/trade/place-order"
	} else {
		body.TimeInForceValue = tifToBitgetTimeInForce(req.TIF)
		body.ProductType = "USDT-FUTURES"
	}

	var env apiEnvelope
	if err := c.do(ctx, "POST", path, body, &env); err != nil {
		return gateway.OrderAck{}, errors.Wrap(err, "bitget: place order")
	}

	var ack placeOrderResponse
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		return gateway.OrderAck{}, errors.Wrap(err, "bitget: parse place-order response")
	}
	return gateway.OrderAck{ExchOrderID: ack.OrderID, AcceptedTs: time.Now()}, nil
}

// tifToBitgetForce maps the abstract TIF to spot's `force` field.
func tifToBitgetForce(tif types.TIF) string {
	switch tif {
	case types.TIFPostOnly:
		return "post_only"
	case types.TIFIOC:
		return "ioc"
	default:
		return "gtc"
	}
}

// tifToBitgetTimeInForce maps the abstract TIF to perp's
// `timeInForceValue` field.
func tifToBitgetTimeInForce(tif types.TIF) string {
	switch tif {
	case types.TIFPostOnly:
		return "post_only"
	case types.TIFIOC:
		return "ioc"
	default:
		return "normal"
	}
}

type cancelOrderBody struct {
	Symbol      string `json:"symbol"`
	OrderID     string `json:"orderId,omitempty"`
	ClientOid   string `json:"clientOid,omitempty"`
	ProductType string `json:"productType,omitempty"`
}

func (c *restClient) cancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error {
	return c.do(ctx, "POST", "/api/v2/mix/order/cancel-order", cancelOrderBody{
		Symbol:      symbol,
		OrderID:     exchOrderID,
		ClientOid:   clientID,
		ProductType: "USDT-FUTURES",
	}, nil)
}

type openOrderResponse struct {
	ClientOid string `json:"clientOid"`
}

// listOpenOrders implements spec §6's crash-safety startup step: list
// every currently-open perp order so ReconcileStartup can cancel
// whichever ones carry this engine's own client-id prefix.
func (c *restClient) listOpenOrders(ctx context.Context, symbol string) ([]string, error) {
	var env apiEnvelope
	if err := c.do(ctx, "GET", "/api/v2/mix/order/orders-pending?symbol="+symbol+"&productType=USDT-FUTURES", nil, &env); err != nil {
		return nil, errors.Wrap(err, "bitget: list open orders")
	}

	var wrapper struct {
		EntrustedList []openOrderResponse `json:"entrustedList"`
	}
	if err := json.Unmarshal(env.Data, &wrapper); err != nil {
		return nil, errors.Wrap(err, "bitget: parse open orders")
	}

	ids := make([]string, 0, len(wrapper.EntrustedList))
	for _, o := range wrapper.EntrustedList {
		if o.ClientOid != "" {
			ids = append(ids, o.ClientOid)
		}
	}
	return ids, nil
}

type positionResponse struct {
	Symbol string `json:"symbol"`
	Total  string `json:"total"` // signed, net contracts
}

func (c *restClient) getPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error) {
	var env apiEnvelope
	if err := c.do(ctx, "GET", "/api/v2/mix/position/single-position?symbol="+symbol+"&productType=USDT-FUTURES", nil, &env); err != nil {
		return types.Inventory{}, errors.Wrap(err, "bitget: get position snapshot")
	}
	var rows []positionResponse
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return types.Inventory{}, errors.Wrap(err, "bitget: parse position snapshot")
	}

	var inv types.Inventory
	for _, r := range rows {
		inv.PerpPos = inv.PerpPos.Add(mustDecimal(r.Total))
	}
	return inv, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
