// Package metrics holds the storefront's prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petshop"

type Metrics struct {
	registry *prometheus.Registry

	ordersCreated      prometheus.Counter
	checkoutVoucher    *prometheus.CounterVec
	voucherValidations *prometheus.CounterVec
	gatewayFees        *prometheus.CounterVec
	paymentCallbacks   *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted through checkout.",
		}),
		checkoutVoucher: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_voucher_total",
			Help:      "Checkout voucher outcomes.",
		}, []string{"outcome"}),
		voucherValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_validations_total",
			Help:      "Voucher resolutions by reason; eligible resolutions use reason=\"ok\".",
		}, []string{"reason"}),
		gatewayFees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_fee_rm_total",
			Help:      "Gateway fees in RM on created orders.",
		}, []string{"fee_type"}),
		paymentCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callbacks_total",
			Help:      "Payment gateway callbacks by mapped status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.ordersCreated,
		m.checkoutVoucher,
		m.voucherValidations,
		m.gatewayFees,
		m.paymentCallbacks,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated(feeType string, gatewayFee float64) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.gatewayFees.WithLabelValues(feeType).Add(gatewayFee)
}

func (m *Metrics) CheckoutVoucher(outcome string) {
	if m == nil {
		return
	}
	m.checkoutVoucher.WithLabelValues(outcome).Inc()
}

func (m *Metrics) VoucherValidated(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	m.voucherValidations.WithLabelValues(reason).Inc()
}

func (m *Metrics) PaymentCallback(status string) {
	if m == nil {
		return
	}
	m.paymentCallbacks.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveHTTP(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(seconds)
}
