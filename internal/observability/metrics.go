package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics はサービス共通のprometheusメトリクス
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersPlaced    prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	StockChecks     *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	EventsConsumed  *prometheus.CounterVec
}

// サービスごとに専用のRegistryを持つ
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "orders_placed_total",
			Help:        "Orders persisted successfully.",
			ConstLabels: labels,
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "orders_rejected_total",
			Help:        "Orders rejected before persistence.",
			ConstLabels: labels,
		}, []string{"reason"}),
		StockChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "inventory_stock_checks_total",
			Help:        "Stock lookups by cache result.",
			ConstLabels: labels,
		}, []string{"source"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Events published by topic and result.",
			ConstLabels: labels,
		}, []string{"topic", "result"}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_consumed_total",
			Help:        "Events consumed by topic and result.",
			ConstLabels: labels,
		}, []string{"topic", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersPlaced,
		m.OrdersRejected,
		m.StockChecks,
		m.EventsPublished,
		m.EventsConsumed,
	)
	return m
}
