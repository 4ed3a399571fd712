package config

import (
	"time"

	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/metrics"
	prometheusmetrics "github.com/prebid/aolhtb/metrics/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.GoMetrics.Enabled {
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("aolhtb."), metrics.ProductLines())
		engineList = append(engineList, returnEngine.GoMetrics)
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &DummyMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordConnectionAccept across all engines
func (me *MultiMetricsEngine) RecordConnectionAccept(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionAccept(success)
	}
}

// RecordConnectionClose across all engines
func (me *MultiMetricsEngine) RecordConnectionClose(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionClose(success)
	}
}

// RecordUnknownCallback across all engines
func (me *MultiMetricsEngine) RecordUnknownCallback() {
	for _, thisME := range *me {
		thisME.RecordUnknownCallback()
	}
}

// RecordRequest across all engines
func (me *MultiMetricsEngine) RecordRequest(labels metrics.AdapterLabels) {
	for _, thisME := range *me {
		thisME.RecordRequest(labels)
	}
}

// RecordBid across all engines
func (me *MultiMetricsEngine) RecordBid(labels metrics.AdapterLabels, cpm float64) {
	for _, thisME := range *me {
		thisME.RecordBid(labels, cpm)
	}
}

// RecordPass across all engines
func (me *MultiMetricsEngine) RecordPass(labels metrics.AdapterLabels) {
	for _, thisME := range *me {
		thisME.RecordPass(labels)
	}
}

// RecordTransportError across all engines
func (me *MultiMetricsEngine) RecordTransportError(labels metrics.AdapterLabels, err metrics.TransportError) {
	for _, thisME := range *me {
		thisME.RecordTransportError(labels, err)
	}
}

// RecordRequestTime across all engines
func (me *MultiMetricsEngine) RecordRequestTime(labels metrics.AdapterLabels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordRequestTime(labels, length)
	}
}

// RecordCallbacks across all engines
func (me *MultiMetricsEngine) RecordCallbacks(pending int) {
	for _, thisME := range *me {
		thisME.RecordCallbacks(pending)
	}
}

// DummyMetricsEngine is a Noop metrics engine in case no metrics are configured. (may also be useful for tests)
type DummyMetricsEngine struct{}

// RecordConnectionAccept as a noop
func (me *DummyMetricsEngine) RecordConnectionAccept(success bool) {
}

// RecordConnectionClose as a noop
func (me *DummyMetricsEngine) RecordConnectionClose(success bool) {
}

// RecordUnknownCallback as a noop
func (me *DummyMetricsEngine) RecordUnknownCallback() {
}

// RecordRequest as a noop
func (me *DummyMetricsEngine) RecordRequest(labels metrics.AdapterLabels) {
}

// RecordBid as a noop
func (me *DummyMetricsEngine) RecordBid(labels metrics.AdapterLabels, cpm float64) {
}

// RecordPass as a noop
func (me *DummyMetricsEngine) RecordPass(labels metrics.AdapterLabels) {
}

// RecordTransportError as a noop
func (me *DummyMetricsEngine) RecordTransportError(labels metrics.AdapterLabels, err metrics.TransportError) {
}

// RecordRequestTime as a noop
func (me *DummyMetricsEngine) RecordRequestTime(labels metrics.AdapterLabels, length time.Duration) {
}

// RecordCallbacks as a noop
func (me *DummyMetricsEngine) RecordCallbacks(pending int) {
}
