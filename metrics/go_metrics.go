package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	metrics "github.com/rcrowley/go-metrics"
)

// Metrics is the legacy go-metrics implementation of MetricsEngine.
type Metrics struct {
	MetricsRegistry        metrics.Registry
	ConnectionCounter      metrics.Counter
	ConnectionAcceptErrors metrics.Meter
	ConnectionCloseErrors  metrics.Meter
	UnknownCallbackMeter   metrics.Meter
	PendingCallbacks       metrics.Gauge

	// Metrics for each product line. Type is map[ProductLine]
	AdapterMetrics map[string]*AdapterMetrics

	// Guards lazy creation for product lines outside ProductLines()
	adapterMetricsLock sync.RWMutex
}

// AdapterMetrics houses the metrics for a particular product line
type AdapterMetrics struct {
	RequestMeter   map[RequestType]metrics.Meter
	BidMeter       metrics.Meter
	PassMeter      metrics.Meter
	ErrorMeters    map[TransportError]metrics.Meter
	RequestTimer   metrics.Timer
	PriceHistogram metrics.Histogram
}

// NewBlankMetrics creates a Metrics object backed by nil meters. Nothing is written to the registry.
func NewBlankMetrics(registry metrics.Registry, productLines []string) *Metrics {
	newMetrics := &Metrics{
		MetricsRegistry:        registry,
		ConnectionCounter:      metrics.NilCounter{},
		ConnectionAcceptErrors: &metrics.NilMeter{},
		ConnectionCloseErrors:  &metrics.NilMeter{},
		UnknownCallbackMeter:   &metrics.NilMeter{},
		PendingCallbacks:       metrics.NilGauge{},
		AdapterMetrics:         make(map[string]*AdapterMetrics, len(productLines)),
	}

	for _, productLine := range productLines {
		newMetrics.AdapterMetrics[productLine] = makeBlankAdapterMetrics()
	}

	return newMetrics
}

// NewMetrics creates a Metrics object with every meter registered in registry.
func NewMetrics(registry metrics.Registry, productLines []string) *Metrics {
	newMetrics := NewBlankMetrics(registry, productLines)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrors = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrors = metrics.GetOrRegisterMeter("connection_close_errors", registry)
	newMetrics.UnknownCallbackMeter = metrics.GetOrRegisterMeter("unknown_callbacks", registry)
	newMetrics.PendingCallbacks = metrics.GetOrRegisterGauge("pending_callbacks", registry)

	for _, productLine := range productLines {
		registerAdapterMetrics(registry, productLine, newMetrics.AdapterMetrics[productLine])
	}

	return newMetrics
}

// Part of setting up blank metrics, the adapter metrics.
func makeBlankAdapterMetrics() *AdapterMetrics {
	newAdapter := &AdapterMetrics{
		RequestMeter:   make(map[RequestType]metrics.Meter),
		BidMeter:       &metrics.NilMeter{},
		PassMeter:      &metrics.NilMeter{},
		ErrorMeters:    make(map[TransportError]metrics.Meter),
		RequestTimer:   &metrics.NilTimer{},
		PriceHistogram: &metrics.NilHistogram{},
	}
	for _, rt := range RequestTypes() {
		newAdapter.RequestMeter[rt] = &metrics.NilMeter{}
	}
	for _, err := range TransportErrors() {
		newAdapter.ErrorMeters[err] = &metrics.NilMeter{}
	}
	return newAdapter
}

func registerAdapterMetrics(registry metrics.Registry, productLine string, am *AdapterMetrics) {
	for _, rt := range RequestTypes() {
		am.RequestMeter[rt] = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.requests.%s", productLine, rt), registry)
	}
	am.BidMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.bids", productLine), registry)
	am.PassMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.passes", productLine), registry)
	for _, err := range TransportErrors() {
		am.ErrorMeters[err] = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.transport_errors.%s", productLine, err), registry)
	}
	am.RequestTimer = metrics.GetOrRegisterTimer(fmt.Sprintf("adapter.%s.request_time", productLine), registry)
	am.PriceHistogram = metrics.GetOrRegisterHistogram(fmt.Sprintf("adapter.%s.prices", productLine), registry, metrics.NewExpDecaySample(1028, 0.015))
}

func (me *Metrics) getAdapterMetrics(productLine string) *AdapterMetrics {
	me.adapterMetricsLock.RLock()
	am, ok := me.AdapterMetrics[productLine]
	me.adapterMetricsLock.RUnlock()
	if ok {
		return am
	}

	glog.Errorf("Trying to record metrics for an unknown product line %s", productLine)
	me.adapterMetricsLock.Lock()
	defer me.adapterMetricsLock.Unlock()
	if am, ok = me.AdapterMetrics[productLine]; !ok {
		am = makeBlankAdapterMetrics()
		registerAdapterMetrics(me.MetricsRegistry, productLine, am)
		me.AdapterMetrics[productLine] = am
	}
	return am
}

func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrors.Mark(1)
	}
}

func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrors.Mark(1)
	}
}

func (me *Metrics) RecordUnknownCallback() {
	me.UnknownCallbackMeter.Mark(1)
}

func (me *Metrics) RecordRequest(labels AdapterLabels) {
	am := me.getAdapterMetrics(labels.ProductLine)
	if meter, ok := am.RequestMeter[labels.RType]; ok {
		meter.Mark(1)
	}
}

func (me *Metrics) RecordBid(labels AdapterLabels, cpm float64) {
	am := me.getAdapterMetrics(labels.ProductLine)
	am.BidMeter.Mark(1)
	// Histograms hold int64, so prices are recorded in millis of a dollar.
	am.PriceHistogram.Update(int64(cpm * 1000))
}

func (me *Metrics) RecordPass(labels AdapterLabels) {
	me.getAdapterMetrics(labels.ProductLine).PassMeter.Mark(1)
}

func (me *Metrics) RecordTransportError(labels AdapterLabels, err TransportError) {
	am := me.getAdapterMetrics(labels.ProductLine)
	if meter, ok := am.ErrorMeters[err]; ok {
		meter.Mark(1)
	}
}

func (me *Metrics) RecordRequestTime(labels AdapterLabels, length time.Duration) {
	me.getAdapterMetrics(labels.ProductLine).RequestTimer.Update(length)
}

func (me *Metrics) RecordCallbacks(pending int) {
	me.PendingCallbacks.Update(int64(pending))
}
