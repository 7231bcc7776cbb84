package oms

import "github.com/prometheus/client_golang/prometheus"

var openHedgeTicketsMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_open_hedge_tickets",
		Help: "",
	}, []string{"symbol"})

var consecutiveRejectsMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mm_consecutive_rejects",
		Help: "",
	}, []string{"symbol"})

var hedgeChaseTotalMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mm_hedge_chase_total",
		Help: "",
	}, []string{"symbol"})

var hedgeUnwindTotalMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mm_hedge_unwind_total",
		Help: "",
	}, []string{"symbol"})

func init() {
	prometheus.MustRegister(
		openHedgeTicketsMetrics,
		consecutiveRejectsMetrics,
		hedgeChaseTotalMetrics,
		hedgeUnwindTotalMetrics,
	)
}

// RecordGaugeSnapshot pushes this tick's hedge/reject counters.
func (o *OMS) RecordGaugeSnapshot() {
	openHedgeTicketsMetrics.WithLabelValues(o.Symbol).Set(float64(len(o.OpenHedgeTickets())))
	consecutiveRejectsMetrics.WithLabelValues(o.Symbol).Set(float64(o.consecutiveRejects))
}
