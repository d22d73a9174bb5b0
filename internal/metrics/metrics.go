package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ordersCreated     prometheus.Counter
	statusTransitions *prometheus.CounterVec
	paymentsRecorded  prometheus.Counter
	paymentAmount     prometheus.Counter
	exports           prometheus.Counter
	eventFailures     *prometheus.CounterVec
}

// New registers the collectors on a dedicated registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return newWithRegistry(reg, reg)
}

func newWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	return &Metrics{
		registry: gatherer,
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mfgtrack_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mfgtrack_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mfgtrack_orders_created_total",
			Help: "Orders created",
		})),
		statusTransitions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mfgtrack_order_status_transitions_total",
			Help: "Order stage changes by target stage",
		}, []string{"to"})),
		paymentsRecorded: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mfgtrack_order_payments_total",
			Help: "Payments recorded against orders",
		})),
		paymentAmount: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mfgtrack_order_payment_amount_total",
			Help: "Sum of recorded payment amounts",
		})),
		exports: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mfgtrack_order_exports_total",
			Help: "CSV exports of the order list",
		})),
		eventFailures: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mfgtrack_event_publish_failures_total",
			Help: "Order events that could not be published",
		}, []string{"type"})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %v", err))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return c
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *Metrics) StatusChanged(to string) {
	m.statusTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) PaymentRecorded(amount float64) {
	m.paymentsRecorded.Inc()
	m.paymentAmount.Add(amount)
}

func (m *Metrics) OrdersExported() {
	m.exports.Inc()
}

func (m *Metrics) EventPublishFailed(eventType string) {
	m.eventFailures.WithLabelValues(eventType).Inc()
}
