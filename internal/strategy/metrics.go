package strategy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

var desiredBidPriceMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_desired_bid_price",
		Help: "",
	}, []string{"symbol"})

var desiredAskPriceMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_desired_ask_price",
		Help: "",
	}, []string{"symbol"})

var obiMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_order_book_imbalance",
		Help: "",
	}, []string{"symbol"})

var obiSmoothedMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_order_book_imbalance_smoothed",
		Help: "",
	}, []string{"symbol"})

var halfSpreadBpsMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_half_spread_bps",
		Help: "",
	}, []string{"symbol"})

var quoteDroppedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mm_quote_dropped_total",
		Help: "",
	}, []string{"symbol", "reason"})

func init() {
	prometheus.MustRegister(
		desiredBidPriceMetrics,
		desiredAskPriceMetrics,
		obiMetrics,
		obiSmoothedMetrics,
		halfSpreadBpsMetrics,
		quoteDroppedMetrics,
	)
}

// RecordPlan pushes one cycle's QuotePlan into the package metrics.
func RecordPlan(symbol string, snap types.MarketSnapshot, plan QuotePlan) {
	obiMetrics.WithLabelValues(symbol).Set(mustFloat(snap.OBI))
	obiSmoothedMetrics.WithLabelValues(symbol).Set(mustFloat(snap.OBISmoothed))

	if plan.Bid != nil {
		desiredBidPriceMetrics.WithLabelValues(symbol).Set(mustFloat(plan.Bid.Price))
	}
	if plan.Ask != nil {
		desiredAskPriceMetrics.WithLabelValues(symbol).Set(mustFloat(plan.Ask.Price))
	}
	if plan.Bid == nil || plan.Ask == nil {
		quoteDroppedMetrics.WithLabelValues(symbol, plan.Reason).Inc()
	}
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
