package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every collector exported by the service.
const namespace = "advertisement"

type HandlerMetrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

type ServiceMetrics struct {
	MethodCount    *prometheus.CounterVec
	MethodDuration *prometheus.HistogramVec
}

type RepositoryMetrics struct {
	QueryCount    *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// Registry owns the collectors for every layer. Tests build one on top of a
// fresh prometheus.Registry so collectors never clash.
type Registry struct {
	Handler    *HandlerMetrics
	Service    *ServiceMetrics
	Repository *RepositoryMetrics
}

func NewRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	return &Registry{
		Handler:    NewHandlerMetrics(reg, gatherer),
		Service:    NewServiceMetrics(reg),
		Repository: NewRepositoryMetrics(reg),
	}
}

// NewDefaultRegistry registers on the process-wide prometheus registry.
func NewDefaultRegistry() *Registry {
	return NewRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewTestRegistry returns metrics bound to a private registry.
func NewTestRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return NewRegistry(reg, reg)
}

func NewHandlerMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *HandlerMetrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_requests_total",
			Help:      "Advertisement API requests by method, route pattern and outcome.",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_request_duration_seconds",
			Help:      "Advertisement API response latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	reg.MustRegister(requestCount, requestDuration)

	return &HandlerMetrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
		gatherer:        gatherer,
	}
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	methodCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_methods_total",
			Help:      "Advertisement service calls by method and outcome.",
		},
		[]string{"method", "status"},
	)

	methodDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_method_duration_seconds",
			Help:      "Advertisement service call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	reg.MustRegister(methodCount, methodDuration)

	return &ServiceMetrics{
		MethodCount:    methodCount,
		MethodDuration: methodDuration,
	}
}

func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	queryCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_queries_total",
			Help:      "Advertisement table queries by operation and outcome.",
		},
		[]string{"query", "status"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_query_duration_seconds",
			Help:      "Advertisement table query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query", "status"},
	)

	reg.MustRegister(queryCount, queryDuration)

	return &RepositoryMetrics{
		QueryCount:    queryCount,
		QueryDuration: queryDuration,
	}
}

func (hm *HandlerMetrics) Observe(method, endpoint, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	hm.RequestCount.WithLabelValues(method, endpoint, status).Inc()
	hm.RequestDuration.WithLabelValues(method, endpoint, status).Observe(duration)
}

func (sm *ServiceMetrics) Observe(method, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	sm.MethodCount.WithLabelValues(method, status).Inc()
	sm.MethodDuration.WithLabelValues(method, status).Observe(duration)
}

func (rm *RepositoryMetrics) Observe(query, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	rm.QueryCount.WithLabelValues(query, status).Inc()
	rm.QueryDuration.WithLabelValues(query, status).Observe(duration)
}

func (hm *HandlerMetrics) HTTPHandler() http.Handler {
	if hm.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})
}
