package metrics

import (
	"testing"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewMetrics(registry, ProductLines())

	ensureContains(t, registry, "active_connections", m.ConnectionCounter)
	ensureContains(t, registry, "connection_accept_errors", m.ConnectionAcceptErrors)
	ensureContains(t, registry, "unknown_callbacks", m.UnknownCallbackMeter)
	ensureContains(t, registry, "pending_callbacks", m.PendingCallbacks)

	ensureContainsAdapterMetrics(t, registry, "adapter.onedisplay", m.AdapterMetrics["onedisplay"])
	ensureContainsAdapterMetrics(t, registry, "adapter.onemobile", m.AdapterMetrics["onemobile"])
}

func TestRecordOutcomes(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewMetrics(registry, ProductLines())
	labels := AdapterLabels{ProductLine: "onedisplay", RType: ReqTypeServer}

	m.RecordRequest(labels)
	m.RecordRequest(labels)
	m.RecordBid(labels, 1.25)
	m.RecordPass(labels)
	m.RecordTransportError(labels, TransportErrorTimeout)
	m.RecordRequestTime(labels, 20*time.Millisecond)
	m.RecordCallbacks(3)
	m.RecordUnknownCallback()

	am := m.AdapterMetrics["onedisplay"]
	assert.Equal(t, int64(2), am.RequestMeter[ReqTypeServer].Count())
	assert.Equal(t, int64(0), am.RequestMeter[ReqTypeBrowser].Count())
	assert.Equal(t, int64(1), am.BidMeter.Count())
	assert.Equal(t, int64(1), am.PassMeter.Count())
	assert.Equal(t, int64(1250), am.PriceHistogram.Max())
	assert.Equal(t, int64(1), am.ErrorMeters[TransportErrorTimeout].Count())
	assert.Equal(t, int64(0), am.ErrorMeters[TransportErrorConnect].Count())
	assert.Equal(t, int64(1), am.RequestTimer.Count())
	assert.Equal(t, int64(3), m.PendingCallbacks.Value())
	assert.Equal(t, int64(1), m.UnknownCallbackMeter.Count())
	assert.Equal(t, int64(0), m.AdapterMetrics["onemobile"].BidMeter.Count())
}

func TestRecordConnections(t *testing.T) {
	m := NewMetrics(metrics.NewRegistry(), ProductLines())

	m.RecordConnectionAccept(true)
	m.RecordConnectionAccept(true)
	m.RecordConnectionClose(true)
	m.RecordConnectionAccept(false)
	m.RecordConnectionClose(false)

	assert.Equal(t, int64(1), m.ConnectionCounter.Count())
	assert.Equal(t, int64(1), m.ConnectionAcceptErrors.Count())
	assert.Equal(t, int64(1), m.ConnectionCloseErrors.Count())
}

func TestUnknownProductLineIsRegisteredLazily(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewMetrics(registry, ProductLines())

	m.RecordPass(AdapterLabels{ProductLine: "legacy"})

	assert.Equal(t, int64(1), m.AdapterMetrics["legacy"].PassMeter.Count())
	assert.NotNil(t, registry.Get("adapter.legacy.passes"))
}

func TestBlankMetricsWriteNothing(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewBlankMetrics(registry, ProductLines())

	m.RecordBid(AdapterLabels{ProductLine: "onemobile"}, 2)
	m.RecordConnectionAccept(true)

	assert.Nil(t, registry.Get("adapter.onemobile.bids"))
	assert.Nil(t, registry.Get("active_connections"))
}

func ensureContains(t *testing.T, registry metrics.Registry, name string, metric interface{}) {
	t.Helper()
	if inRegistry := registry.Get(name); inRegistry == nil {
		t.Errorf("No metric in registry at %s.", name)
	} else if inRegistry != metric {
		t.Errorf("Bad value stored at metric %s.", name)
	}
}

func ensureContainsAdapterMetrics(t *testing.T, registry metrics.Registry, name string, adapterMetrics *AdapterMetrics) {
	t.Helper()
	for rt, meter := range adapterMetrics.RequestMeter {
		ensureContains(t, registry, name+".requests."+string(rt), meter)
	}
	ensureContains(t, registry, name+".bids", adapterMetrics.BidMeter)
	ensureContains(t, registry, name+".passes", adapterMetrics.PassMeter)
	for err, meter := range adapterMetrics.ErrorMeters {
		ensureContains(t, registry, name+".transport_errors."+string(err), meter)
	}
	ensureContains(t, registry, name+".request_time", adapterMetrics.RequestTimer)
	ensureContains(t, registry, name+".prices", adapterMetrics.PriceHistogram)
}
