package aolhtb

import (
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/util/ptrutil"
)

// Bid is the normalized form of the first bid of the first seat.
type Bid struct {
	Price    float64
	Creative string
	Size     [2]int
	// DealID is nil when the response carries no dealid at all.
	DealID        *string
	TrackingPixel string
}

// BidResult is exactly one of a Bid or a NoBid.
type BidResult struct {
	Bid   *Bid
	NoBid *errortypes.NoBid
}

func (r BidResult) IsNoBid() bool {
	return r.Bid == nil
}

func noBid(reason string) BidResult {
	return BidResult{NoBid: &errortypes.NoBid{Reason: reason}}
}

// ParseBid inspects seatbid[0].bid[0] of a network response. Anything it cannot use is a NoBid; it
// never fails otherwise.
func ParseBid(payload []byte) BidResult {
	if len(payload) == 0 {
		return noBid("empty response")
	}

	bid, dataType, _, err := jsonparser.Get(payload, "seatbid", "[0]", "bid", "[0]")
	if err != nil || dataType != jsonparser.Object {
		return noBid("response carries no bid")
	}

	if _, dataType, _, _ := jsonparser.Get(bid, "nbr"); dataType != jsonparser.NotExist {
		return noBid("bid carries a no bid reason")
	}

	price, err := jsonparser.GetFloat(bid, "price")
	if err != nil {
		return noBid("bid price is missing or not a number")
	}
	// A free or negative bid cannot win a line item, so it is treated like an absent one.
	if price <= 0 {
		return noBid("bid price is not positive")
	}

	adm, err := jsonparser.GetString(bid, "adm")
	if err != nil || adm == "" {
		return noBid("bid carries no creative")
	}

	result := &Bid{
		Price:    price,
		Creative: adm,
		Size:     [2]int{coerceInt(bid, "w"), coerceInt(bid, "h")},
	}

	if value, dataType, _, err := jsonparser.Get(bid, "dealid"); err == nil && dataType != jsonparser.Null {
		dealID := string(value)
		if dataType == jsonparser.String {
			if dealID, err = jsonparser.ParseString(value); err != nil {
				return noBid("bid deal id is not a valid string")
			}
		}
		result.DealID = ptrutil.ToPtr(dealID)
	}

	if pixels, err := jsonparser.GetString(bid, "ext", "pixels"); err == nil {
		result.TrackingPixel = pixels
	}

	return BidResult{Bid: result}
}

// coerceInt reads a size dimension which the network sends either as a number or a numeric string.
// Anything else reads as zero.
func coerceInt(data []byte, key string) int {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		return 0
	}
	switch dataType {
	case jsonparser.Number, jsonparser.String:
		f, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
