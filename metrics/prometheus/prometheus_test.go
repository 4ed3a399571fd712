package prometheusmetrics

import (
	"testing"
	"time"

	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "aol",
		Subsystem: "htb",
	})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	// Gather All Metrics
	metricFamilies, err := m.Registry.Gather()
	require.NoError(t, err, "gather metics")

	// Summarize By Adapter Cardinality
	// - This requires metrics to be preloaded. We don't preload all metrics, so this is a
	//   best effort sanity check.
	var metricCount int
	for _, metricFamily := range metricFamilies {
		metricCount += len(metricFamily.GetMetric())
	}

	// requests (2x2) + transport errors (2x6) + bids, passes, prices, request time (2 each)
	// + connection errors (2) + three unlabeled counters and one gauge.
	assert.Equal(t, 4+12+8+2+4, metricCount)
}

func TestConnectionMetrics(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordConnectionAccept(true)
	m.RecordConnectionAccept(true)
	m.RecordConnectionAccept(false)
	m.RecordConnectionClose(true)
	m.RecordConnectionClose(false)
	m.RecordConnectionClose(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsError.With(prometheus.Labels{connectionErrorLabel: connectionAcceptError})))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsError.With(prometheus.Labels{connectionErrorLabel: connectionCloseError})))
}

func TestAdapterOutcomeMetrics(t *testing.T) {
	m := createMetricsForTesting()
	display := metrics.AdapterLabels{ProductLine: "onedisplay", RType: metrics.ReqTypeServer}
	mobile := metrics.AdapterLabels{ProductLine: "onemobile", RType: metrics.ReqTypeBrowser}

	m.RecordRequest(display)
	m.RecordRequest(mobile)
	m.RecordRequest(mobile)
	m.RecordBid(display, 1.5)
	m.RecordPass(mobile)
	m.RecordTransportError(display, metrics.TransportErrorBreakerOpen)
	m.RecordUnknownCallback()
	m.RecordCallbacks(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterRequests.With(prometheus.Labels{productLineLabel: "onedisplay", requestTypeLabel: "server"})))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.adapterRequests.With(prometheus.Labels{productLineLabel: "onemobile", requestTypeLabel: "browser"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterBids.With(prometheus.Labels{productLineLabel: "onedisplay"})))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.adapterBids.With(prometheus.Labels{productLineLabel: "onemobile"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterPasses.With(prometheus.Labels{productLineLabel: "onemobile"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterTransportErrors.With(prometheus.Labels{productLineLabel: "onedisplay", transportErrorLabel: "breaker_open"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unknownCallbacks))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pendingCallbacks))
}

func TestRequestTimeAndPriceHistograms(t *testing.T) {
	m := createMetricsForTesting()
	labels := metrics.AdapterLabels{ProductLine: "onedisplay", RType: metrics.ReqTypeServer}

	m.RecordRequestTime(labels, 120*time.Millisecond)
	m.RecordBid(labels, 3)
	m.RecordBid(labels, 5)

	assertHistogramSampleCount(t, m, "aol_htb_adapter_request_time_seconds", "onedisplay", 1)
	assertHistogramSampleCount(t, m, "aol_htb_adapter_request_time_seconds", "onemobile", 0)
	assertHistogramSampleCount(t, m, "aol_htb_adapter_prices", "onedisplay", 2)
}

func assertHistogramSampleCount(t *testing.T, m *Metrics, name, productLine string, expected uint64) {
	t.Helper()

	metricFamilies, err := m.Registry.Gather()
	require.NoError(t, err)

	for _, metricFamily := range metricFamilies {
		if metricFamily.GetName() != name {
			continue
		}
		for _, metric := range metricFamily.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == productLineLabel && label.GetValue() == productLine {
					assert.Equal(t, expected, metric.GetHistogram().GetSampleCount(), name)
					return
				}
			}
		}
	}
	t.Errorf("histogram %s has no series for %s", name, productLine)
}
