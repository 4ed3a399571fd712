package endpoints

import (
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/util/idutil"
)

type requestResponse struct {
	URL        string `json:"url"`
	CallbackID string `json:"callbackId"`
	SessionID  string `json:"sessionId"`
}

type requestEndpoint struct {
	bidder slotBidder
	uuids  idutil.UUIDGenerator
}

// NewRequestEndpoint builds the bid request url for a slot and registers its callback. The browser
// sends the request and posts the response to the callback endpoint.
func NewRequestEndpoint(bidder slotBidder, uuids idutil.UUIDGenerator) httprouter.Handle {
	e := &requestEndpoint{
		bidder: bidder,
		uuids:  uuids,
	}
	return e.Handle
}

func (e *requestEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot := ps.ByName("slot")
	if !e.bidder.HasSlot(slot) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Unknown xSlot: %s", slot)
		return
	}

	sessionID, err := sessionFor(r, e.uuids)
	if err != nil {
		glog.Errorf("Failed to generate session id: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	parcel := &adapters.Parcel{
		SessionID: sessionID,
		HTSlotID:  r.URL.Query().Get("htSlot"),
		XSlotName: slot,
	}
	descriptor, err := e.bidder.GenerateRequest(parcel)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Invalid request: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, requestResponse{
		URL:        descriptor.URL,
		CallbackID: descriptor.CallbackID,
		SessionID:  sessionID,
	})
}

// sessionFor returns the session query parameter, or a fresh id when it is absent.
func sessionFor(r *http.Request, uuids idutil.UUIDGenerator) (string, error) {
	if session := r.URL.Query().Get("session"); session != "" {
		return session, nil
	}
	return uuids.Generate()
}
