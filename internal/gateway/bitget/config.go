// Package bitget implements gateway.Gateway against the real Bitget
// venue: a signed REST client (go-resty/resty/v2) for order placement,
// constraints, funding rate and position mode, and two gorilla/websocket
// streams (public depth, private orders/fills/positions) parsed with
// valyala/fastjson for the hot depth/ticker path. Retry uses
// cenkalti/backoff/v4; REST throughput is capped by a
// golang.org/x/time/rate limiter. Grounded on the teacher's
// bitgetapi.Client/Auth idiom (NewClient + Auth(key, secret, passphrase))
// and 0xtitan6-polymarket-mm's resty-wrapped REST client /
// gorilla-websocket reconnect loop, generalized to Bitget's spot+perp
// split API.
package bitget

import "time"

// Config is everything the gateway needs to reach Bitget, separate
// from the engine's own internal/config.Config so this package stays
// importable standalone.
type Config struct {
	RestBaseURL string
	WSPublicURL string
	WSPrivateURL string

	APIKey     string
	APISecret  string
	Passphrase string

	RestTimeout    time.Duration
	RequestsPerSec float64
	RequestBurst   int
}

// DefaultConfig fills in Bitget's production endpoints and a
// conservative rate limit.
func DefaultConfig() Config {
	return Config{
		RestBaseURL:    "https://api.bitget.com",
		WSPublicURL:    "wss://ws.bitget.com/v2/ws/public",
		WSPrivateURL:   "wss://ws.bitget.com/v2/ws/private",
		RestTimeout:    5 * time.Second,
		RequestsPerSec: 10,
		RequestBurst:   20,
	}
}
