package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

var (
	CartItemsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "items_added_total",
		Help:      "Number of units added to carts.",
	}, []string{"type"})

	CartItemsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "items_removed_total",
		Help:      "Number of units removed from carts and returned to stock.",
	}, []string{"type"})

	OutOfStock = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "out_of_stock_total",
		Help:      "Number of add-to-cart attempts rejected for lack of stock.",
	}, []string{"type"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "created_total",
		Help:      "Number of orders persisted.",
	})

	OrderLinesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "lines_dropped_total",
		Help:      "Number of order lines dropped because their item no longer exists.",
	})

	AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "seller",
		Name:      "analytics_duration_seconds",
		Help:      "Time spent computing seller analytics.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_recovered_total",
		Help:      "Number of handler panics turned into 500 responses.",
	}, []string{"method"})

	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "mails_sent_total",
		Help:      "Number of mails handed to the SMTP server, by result.",
	}, []string{"result"})

	MailBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "breaker_state",
		Help:      "State of the SMTP circuit breaker: 0 closed, 1 half-open, 2 open.",
	})
)
