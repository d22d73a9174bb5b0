package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return newWithRegistry(reg, reg)
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := newTestMetrics()

	m.OrderCreated()
	m.OrderCreated()
	m.StatusChanged("verified")
	m.PaymentRecorded(1500.5)
	m.OrdersExported()
	m.EventPublishFailed("order.created")

	assert.Equal(t, 2.0, promtest.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.statusTransitions.WithLabelValues("verified")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.paymentsRecorded))
	assert.Equal(t, 1500.5, promtest.ToFloat64(m.paymentAmount))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.exports))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.eventFailures.WithLabelValues("order.created")))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := newTestMetrics()

	m.ObserveHTTP(http.MethodGet, "/api/orders", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/orders", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/orders", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/orders", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/orders", "404")))
}

func TestMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newWithRegistry(reg, reg)
	second := newWithRegistry(reg, reg)

	first.OrderCreated()

	assert.Equal(t, 1.0, promtest.ToFloat64(second.ordersCreated))
}

func TestMetrics_Handler(t *testing.T) {
	m := newTestMetrics()
	m.OrderCreated()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "mfgtrack_orders_created_total 1")
}
