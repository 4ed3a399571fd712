package adapters

// RequestDescriptor is an outbound bid request which is ready to be sent.
// CallbackID is embedded in URL and keys the registered response handler.
type RequestDescriptor struct {
	URL        string `json:"url"`
	CallbackID string `json:"callbackId"`
}

// Parcel carries one xSlot through a request/response cycle. The adapter fills in the outcome
// when the response arrives.
type Parcel struct {
	SessionID string
	HTSlotID  string
	XSlotName string
	// RequestID is the correlation id of the request generated for this parcel.
	RequestID string
	// ServerSide is set when this process fetches the response itself instead of the browser.
	ServerSide bool

	Pass bool
	// Err explains a pass. It is nil for bids.
	Err error

	TargetingType string
	Targeting     map[string][]string
	Size          [2]int
	DealID        string
	Adm           string
	Price         float64
}

// RequestGenerator turns a parcel into an outbound request. Implementations register whatever they
// need to handle the response before returning.
type RequestGenerator interface {
	GenerateRequest(parcel *Parcel) (*RequestDescriptor, error)
}

// ResponseParser fills in the outcome of a parcel from the raw network response.
// A nil payload means the transport got nothing back, which is a pass.
type ResponseParser interface {
	ParseResponse(payload []byte, parcel *Parcel)
}

// Bidder is an adapter with both capabilities.
type Bidder interface {
	RequestGenerator
	ResponseParser
}
