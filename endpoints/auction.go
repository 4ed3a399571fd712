package endpoints

import (
	"fmt"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/aolhtb/callbacks"
	"github.com/prebid/aolhtb/transport"
	"github.com/prebid/aolhtb/util/idutil"
)

type auctionEndpoint struct {
	bidder    slotBidder
	callbacks *callbacks.Registry
	fetcher   transport.Fetcher
	analytics analytics.Runner
	uuids     idutil.UUIDGenerator
	clock     clock.Clock
}

// NewAuctionEndpoint runs a whole request/response cycle for one slot from this process.
func NewAuctionEndpoint(bidder slotBidder, registry *callbacks.Registry, fetcher transport.Fetcher, runner analytics.Runner, uuids idutil.UUIDGenerator, clk clock.Clock) httprouter.Handle {
	e := &auctionEndpoint{
		bidder:    bidder,
		callbacks: registry,
		fetcher:   fetcher,
		analytics: runner,
		uuids:     uuids,
		clock:     clk,
	}
	return e.Handle
}

func (e *auctionEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ao := analytics.AuctionObject{
		Status:    http.StatusOK,
		StartTime: e.clock.Now(),
	}
	defer e.analytics.LogAuctionObject(&ao)

	slot := ps.ByName("slot")
	ao.SlotName = slot
	if !e.bidder.HasSlot(slot) {
		ao.Status = http.StatusNotFound
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Unknown xSlot: %s", slot)
		return
	}

	sessionID, err := sessionFor(r, e.uuids)
	if err != nil {
		glog.Errorf("Failed to generate session id: %v", err)
		ao.Status = http.StatusInternalServerError
		ao.Errors = append(ao.Errors, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	parcel := &adapters.Parcel{
		SessionID:  sessionID,
		HTSlotID:   r.URL.Query().Get("htSlot"),
		XSlotName:  slot,
		ServerSide: true,
	}
	descriptor, err := e.bidder.GenerateRequest(parcel)
	if err != nil {
		ao.Status = http.StatusBadRequest
		ao.Errors = append(ao.Errors, err)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Invalid request: %v", err)
		return
	}

	// A failed fetch settles the parcel as a pass.
	payload, fetchErr := e.fetcher.Fetch(r.Context(), labelsFor(e.bidder, parcel), descriptor.URL)
	if fetchErr != nil {
		ao.Errors = append(ao.Errors, fetchErr)
		payload = nil
	}

	settled, err := e.callbacks.Invoke(descriptor.CallbackID, payload)
	if err != nil {
		// The browser posted to the callback endpoint first.
		ao.Status = http.StatusConflict
		ao.Errors = append(ao.Errors, err)
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, err.Error())
		return
	}

	ao.Response = buildBidResponse(settled, e.bidder.Info().PartnerID, fetchErr)
	if err := writeJSON(w, http.StatusOK, ao.Response); err != nil {
		glog.Errorf("Failed to send auction response for %s: %v", slot, err)
	}
}
