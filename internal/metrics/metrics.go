package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletd_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "walletd_http_request_duration_seconds",
		Help:    "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletd_transfers_total",
		Help: "Internal transfers by outcome",
	}, []string{"outcome"})

	WithdrawalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletd_withdrawals_total",
		Help: "Withdrawal workflow events by stage and outcome",
	}, []string{"stage", "outcome"})

	ChainCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "walletd_chain_call_duration_seconds",
		Help:    "Latency of blockchain gateway calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"op"})

	StaleSettlements = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "walletd_stale_settlements",
		Help: "Approved withdrawals found stuck in processing on the last sweep",
	})
)
