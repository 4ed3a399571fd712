package prometheusmetrics

import (
	"github.com/prebid/aolhtb/metrics"
)

func requestTypesAsString() []string {
	values := metrics.RequestTypes()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = string(v)
	}
	return valuesAsString
}

func transportErrorsAsString() []string {
	values := metrics.TransportErrors()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = string(v)
	}
	return valuesAsString
}
