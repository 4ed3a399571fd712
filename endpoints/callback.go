package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/aolhtb/callbacks"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/transport"
)

// maxCallbackBodyBytes bounds the network response a browser may post back.
const maxCallbackBodyBytes = 1 << 20

type callbackEndpoint struct {
	seat      string
	callbacks *callbacks.Registry
	analytics analytics.Runner
	clock     clock.Clock
}

// NewCallbackEndpoint settles a browser sent request. The body is the raw network response, JSONP
// wrapped or not.
func NewCallbackEndpoint(seat string, registry *callbacks.Registry, runner analytics.Runner, clk clock.Clock) httprouter.Handle {
	e := &callbackEndpoint{
		seat:      seat,
		callbacks: registry,
		analytics: runner,
		clock:     clk,
	}
	return e.Handle
}

func (e *callbackEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ao := analytics.AuctionObject{
		Status:    http.StatusOK,
		StartTime: e.clock.Now(),
	}
	defer e.analytics.LogAuctionObject(&ao)

	id := ps.ByName("callbackId")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBodyBytes))
	if err != nil {
		ao.Status = http.StatusBadRequest
		ao.Errors = append(ao.Errors, err)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Failed to read request body: %v", err)
		return
	}

	callback, payload, err := transport.UnwrapJSONP(body)
	if err != nil {
		glog.V(2).Infof("Unusable response for callback %s: %v", id, err)
		ao.Errors = append(ao.Errors, err)
		payload = nil
	} else if callback != "" && !strings.HasSuffix(callback, "."+id) {
		err = &errortypes.BadServerResponse{Message: fmt.Sprintf("response is wrapped for %s, not %s", callback, id)}
		ao.Status = http.StatusBadRequest
		ao.Errors = append(ao.Errors, err)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, err.Error())
		return
	}

	parcel, invokeErr := e.callbacks.Invoke(id, payload)
	if invokeErr != nil {
		ao.Status = http.StatusNotFound
		ao.Errors = append(ao.Errors, invokeErr)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, invokeErr.Error())
		return
	}
	ao.SlotName = parcel.XSlotName

	ao.Response = buildBidResponse(parcel, e.seat, err)
	if writeErr := writeJSON(w, http.StatusOK, ao.Response); writeErr != nil {
		glog.Errorf("Failed to send callback response for %s: %v", id, writeErr)
	}
}

