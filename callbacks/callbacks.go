package callbacks

import (
	"sync"

	"github.com/golang/glog"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
)

// Handler consumes the response payload of one outbound request. A nil payload means nothing came back.
type Handler func(payload []byte) *adapters.Parcel

// Registry maps correlation ids to the handler waiting for their response. Handlers run at most once.
type Registry struct {
	handlers map[string]Handler
	metrics  metrics.MetricsEngine
	lock     sync.Mutex
}

func NewRegistry(me metrics.MetricsEngine) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		metrics:  me,
	}
}

// Register installs h under id, replacing any handler already there.
func (r *Registry) Register(id string, h Handler) {
	r.lock.Lock()
	r.handlers[id] = h
	pending := len(r.handlers)
	r.lock.Unlock()

	r.metrics.RecordCallbacks(pending)
}

// Invoke removes the handler registered under id and runs it with payload.
func (r *Registry) Invoke(id string, payload []byte) (*adapters.Parcel, error) {
	r.lock.Lock()
	h, ok := r.handlers[id]
	delete(r.handlers, id)
	pending := len(r.handlers)
	r.lock.Unlock()

	if !ok {
		glog.Warningf("Response for unknown callback %s", id)
		r.metrics.RecordUnknownCallback()
		return nil, &errortypes.UnknownCallback{CallbackID: id}
	}
	r.metrics.RecordCallbacks(pending)

	return h(payload), nil
}

// Len is the number of handlers still waiting for a response.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.handlers)
}
