package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hubs_api"

// Metrics 持有独立的 Registry，避免多次构建 App（例如测试）时重复注册全局指标。
type Metrics struct {
	Registry *prometheus.Registry

	// HTTPRequests tracks the number of handled requests
	HTTPRequests *prometheus.CounterVec
	// HTTPRequestDuration tracks request latency per matched route
	HTTPRequestDuration *prometheus.HistogramVec
	// StoreOperations tracks collection calls by outcome
	StoreOperations *prometheus.CounterVec
	// StoreOperationDuration tracks collection call latency
	StoreOperationDuration *prometheus.HistogramVec
}

// New 创建全部采集器并注册 Go/进程运行时指标。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "The total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "The duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "The total number of hub store operations",
			},
			[]string{"op", "result"},
		),
		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "The duration of hub store operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}
