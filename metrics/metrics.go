package metrics

import (
	"time"
)

// AdapterLabels defines the labels that can be attached to the adapter metrics.
type AdapterLabels struct {
	// ProductLine is the AOL network the request went to: onedisplay or onemobile.
	ProductLine string
	RType       RequestType
}

// RequestType : Request type enumeration
type RequestType string

// The request types
const (
	// ReqTypeBrowser is a request built for the browser to send, answered through the callback endpoint.
	ReqTypeBrowser RequestType = "browser"
	// ReqTypeServer is a request sent by the server side transport.
	ReqTypeServer RequestType = "server"
)

func RequestTypes() []RequestType {
	return []RequestType{
		ReqTypeBrowser,
		ReqTypeServer,
	}
}

// TransportError describes why an outbound request produced no payload.
type TransportError string

const (
	TransportErrorTimeout     TransportError = "timeout"
	TransportErrorConnect     TransportError = "connect"
	TransportErrorBadStatus   TransportError = "bad_status"
	TransportErrorBadResponse TransportError = "bad_response"
	TransportErrorBreakerOpen TransportError = "breaker_open"
	TransportErrorRateLimited TransportError = "rate_limited"
)

func TransportErrors() []TransportError {
	return []TransportError{
		TransportErrorTimeout,
		TransportErrorConnect,
		TransportErrorBadStatus,
		TransportErrorBadResponse,
		TransportErrorBreakerOpen,
		TransportErrorRateLimited,
	}
}

// ProductLines lists the label values used for AdapterLabels.ProductLine.
func ProductLines() []string {
	return []string{"onedisplay", "onemobile"}
}

// MetricsEngine is a generic interface to record metrics into the desired backend.
// The connection and callback metrics fire per incoming HTTP request. The adapter metrics fire
// per xSlot per auction cycle, so RecordBid plus RecordPass equals the number of invoked callbacks.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordUnknownCallback()
	// RecordRequest counts an outbound bid request being generated.
	RecordRequest(labels AdapterLabels)
	// RecordBid counts a parsed bid and records its price in dollars.
	RecordBid(labels AdapterLabels, cpm float64)
	RecordPass(labels AdapterLabels)
	RecordTransportError(labels AdapterLabels, err TransportError)
	// RecordRequestTime is the time between request generation and callback invocation.
	RecordRequestTime(labels AdapterLabels, length time.Duration)
	// RecordCallbacks reports the number of callbacks registered and not yet invoked.
	RecordCallbacks(pending int)
}
