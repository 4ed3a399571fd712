package prometheusmetrics

import (
	"time"

	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	// General Metrics
	connectionsClosed prometheus.Counter
	connectionsError  *prometheus.CounterVec
	connectionsOpened prometheus.Counter
	unknownCallbacks  prometheus.Counter
	pendingCallbacks  prometheus.Gauge

	// Adapter Metrics
	adapterRequests        *prometheus.CounterVec
	adapterBids            *prometheus.CounterVec
	adapterPasses          *prometheus.CounterVec
	adapterPrices          *prometheus.HistogramVec
	adapterTransportErrors *prometheus.CounterVec
	adapterRequestsTimer   *prometheus.HistogramVec
}

const (
	connectionErrorLabel = "connection_error"
	productLineLabel     = "product_line"
	requestTypeLabel     = "request_type"
	transportErrorLabel  = "transport_error"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	standardTimeBuckets := []float64{0.05, 0.1, 0.15, 0.20, 0.25, 0.3, 0.4, 0.5, 0.75, 1}
	priceBuckets := []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 40, 50}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.connectionsClosed = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_closed",
		"Count of successful connections closed to the adapter server.")

	metrics.connectionsError = newCounter(cfg, metrics.Registry,
		"connections_error",
		"Count of errors for connection open and close attempts to the adapter server labeled by type.",
		[]string{connectionErrorLabel})

	metrics.connectionsOpened = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_opened",
		"Count of successful connections opened to the adapter server.")

	metrics.unknownCallbacks = newCounterWithoutLabels(cfg, metrics.Registry,
		"unknown_callbacks",
		"Count of callback invocations for ids which were never registered or were already consumed.")

	metrics.pendingCallbacks = newGauge(cfg, metrics.Registry,
		"pending_callbacks",
		"Number of callbacks registered and not yet invoked.")

	metrics.adapterRequests = newCounter(cfg, metrics.Registry,
		"adapter_requests",
		"Count of bid requests generated labeled by product line and request type.",
		[]string{productLineLabel, requestTypeLabel})

	metrics.adapterBids = newCounter(cfg, metrics.Registry,
		"adapter_bids",
		"Count of bids parsed labeled by product line.",
		[]string{productLineLabel})

	metrics.adapterPasses = newCounter(cfg, metrics.Registry,
		"adapter_passes",
		"Count of no bid outcomes labeled by product line.",
		[]string{productLineLabel})

	metrics.adapterPrices = newHistogramVec(cfg, metrics.Registry,
		"adapter_prices",
		"Monetary value of the bids labeled by product line.",
		[]string{productLineLabel},
		priceBuckets)

	metrics.adapterTransportErrors = newCounter(cfg, metrics.Registry,
		"adapter_transport_errors",
		"Count of outbound requests which produced no payload labeled by product line and error type.",
		[]string{productLineLabel, transportErrorLabel})

	metrics.adapterRequestsTimer = newHistogramVec(cfg, metrics.Registry,
		"adapter_request_time_seconds",
		"Seconds between generating a bid request and receiving its response labeled by product line.",
		[]string{productLineLabel},
		standardTimeBuckets)

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newGauge(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Gauge {
	opts := prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	gauge := prometheus.NewGauge(opts)
	registry.MustRegister(gauge)
	return gauge
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordUnknownCallback() {
	m.unknownCallbacks.Inc()
}

func (m *Metrics) RecordRequest(labels metrics.AdapterLabels) {
	m.adapterRequests.With(prometheus.Labels{
		productLineLabel: labels.ProductLine,
		requestTypeLabel: string(labels.RType),
	}).Inc()
}

func (m *Metrics) RecordBid(labels metrics.AdapterLabels, cpm float64) {
	m.adapterBids.With(prometheus.Labels{
		productLineLabel: labels.ProductLine,
	}).Inc()
	m.adapterPrices.With(prometheus.Labels{
		productLineLabel: labels.ProductLine,
	}).Observe(cpm)
}

func (m *Metrics) RecordPass(labels metrics.AdapterLabels) {
	m.adapterPasses.With(prometheus.Labels{
		productLineLabel: labels.ProductLine,
	}).Inc()
}

func (m *Metrics) RecordTransportError(labels metrics.AdapterLabels, err metrics.TransportError) {
	m.adapterTransportErrors.With(prometheus.Labels{
		productLineLabel:    labels.ProductLine,
		transportErrorLabel: string(err),
	}).Inc()
}

func (m *Metrics) RecordRequestTime(labels metrics.AdapterLabels, length time.Duration) {
	m.adapterRequestsTimer.With(prometheus.Labels{
		productLineLabel: labels.ProductLine,
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordCallbacks(pending int) {
	m.pendingCallbacks.Set(float64(pending))
}
