package prometheusmetrics

import (
	"github.com/prebid/aolhtb/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func preloadLabelValues(m *Metrics) {
	var (
		connectionErrorValues = []string{connectionAcceptError, connectionCloseError}
		productLineValues     = metrics.ProductLines()
		requestTypeValues     = requestTypesAsString()
		transportErrorValues  = transportErrorsAsString()
	)

	preloadLabelValuesForCounter(m.connectionsError, map[string][]string{
		connectionErrorLabel: connectionErrorValues,
	})

	preloadLabelValuesForCounter(m.adapterRequests, map[string][]string{
		productLineLabel: productLineValues,
		requestTypeLabel: requestTypeValues,
	})

	preloadLabelValuesForCounter(m.adapterBids, map[string][]string{
		productLineLabel: productLineValues,
	})

	preloadLabelValuesForCounter(m.adapterPasses, map[string][]string{
		productLineLabel: productLineValues,
	})

	preloadLabelValuesForHistogram(m.adapterPrices, map[string][]string{
		productLineLabel: productLineValues,
	})

	preloadLabelValuesForCounter(m.adapterTransportErrors, map[string][]string{
		productLineLabel:    productLineValues,
		transportErrorLabel: transportErrorValues,
	})

	preloadLabelValuesForHistogram(m.adapterRequestsTimer, map[string][]string{
		productLineLabel: productLineValues,
	})
}

func preloadLabelValuesForCounter(counter *prometheus.CounterVec, labelsWithValues map[string][]string) {
	registerLabelPermutations(labelsWithValues, func(labels prometheus.Labels) {
		counter.With(labels)
	})
}

func preloadLabelValuesForHistogram(histogram *prometheus.HistogramVec, labelsWithValues map[string][]string) {
	registerLabelPermutations(labelsWithValues, func(labels prometheus.Labels) {
		histogram.With(labels)
	})
}

func registerLabelPermutations(labelsWithValues map[string][]string, register func(prometheus.Labels)) {
	if len(labelsWithValues) == 0 {
		return
	}

	keys := make([]string, 0, len(labelsWithValues))
	values := make([][]string, 0, len(labelsWithValues))
	for k, v := range labelsWithValues {
		keys = append(keys, k)
		values = append(values, v)
	}

	labels := prometheus.Labels{}
	registerLabelPermutationsRecursive(0, keys, values, labels, register)
}

func registerLabelPermutationsRecursive(depth int, keys []string, values [][]string, labels prometheus.Labels, register func(prometheus.Labels)) {
	label := keys[depth]
	isLeaf := depth == len(keys)-1

	if isLeaf {
		for _, v := range values[depth] {
			labels[label] = v
			register(cloneLabels(labels))
		}
	} else {
		for _, v := range values[depth] {
			labels[label] = v
			registerLabelPermutationsRecursive(depth+1, keys, values, labels, register)
		}
	}
}

func cloneLabels(labels prometheus.Labels) prometheus.Labels {
	clone := prometheus.Labels{}
	for k, v := range labels {
		clone[k] = v
	}
	return clone
}
