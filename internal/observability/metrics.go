package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farebroker", Name: "rides_requested_total", Help: "Total ride requests accepted"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farebroker", Name: "rides_completed_total", Help: "Total rides completed"})

	RidesCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farebroker", Name: "rides_cancelled_total", Help: "Total rides cancelled"},
		[]string{"cancelled_by"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farebroker", Name: "settlements_total", Help: "Settlement attempts by method and outcome"},
		[]string{"method", "status"},
	)

	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "farebroker", Name: "refunds_total", Help: "Refunds issued"})

	WalletTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farebroker", Name: "wallet_transactions_total", Help: "Wallet ledger entries by type"},
		[]string{"type"},
	)

	FareAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "farebroker",
		Name:      "fare_amount",
		Help:      "Distribution of computed total fares",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})
)
