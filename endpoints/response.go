package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// slotBidder is the adapter surface the endpoints drive.
type slotBidder interface {
	adapters.Bidder
	HasSlot(xSlotName string) bool
	ProductLine() config.ProductLine
	Info() *config.BidderInfo
}

// bidExt carries the slot targeting computed for the bid.
type bidExt struct {
	TargetingType string              `json:"targetingType,omitempty"`
	Targeting     map[string][]string `json:"targeting,omitempty"`
	SessionID     string              `json:"sessionId,omitempty"`
	HTSlotID      string              `json:"htSlotId,omitempty"`
}

// buildBidResponse renders a settled parcel. Passes carry a no bid reason and no seat.
func buildBidResponse(parcel *adapters.Parcel, seat string, cause error) *openrtb2.BidResponse {
	response := &openrtb2.BidResponse{ID: parcel.RequestID}
	if parcel.Pass {
		if cause == nil {
			cause = parcel.Err
		}
		response.NBR = errortypes.GetNBRCodeFromError(cause).Ptr()
		return response
	}

	ext, err := json.Marshal(bidExt{
		TargetingType: parcel.TargetingType,
		Targeting:     parcel.Targeting,
		SessionID:     parcel.SessionID,
		HTSlotID:      parcel.HTSlotID,
	})
	if err != nil {
		glog.Errorf("Failed to marshal bid ext for request %s: %v", parcel.RequestID, err)
	}

	response.SeatBid = []openrtb2.SeatBid{{
		Seat: seat,
		Bid: []openrtb2.Bid{{
			ID:     parcel.RequestID,
			ImpID:  parcel.XSlotName,
			Price:  parcel.Price,
			AdM:    parcel.Adm,
			W:      int64(parcel.Size[0]),
			H:      int64(parcel.Size[1]),
			DealID: parcel.DealID,
			Ext:    ext,
		}},
	}}
	return response
}

func labelsFor(bidder slotBidder, parcel *adapters.Parcel) metrics.AdapterLabels {
	labels := metrics.AdapterLabels{
		ProductLine: string(bidder.ProductLine()),
		RType:       metrics.ReqTypeBrowser,
	}
	if parcel.ServerSide {
		labels.RType = metrics.ReqTypeServer
	}
	return labels
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
