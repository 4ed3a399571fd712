package aolhtb

import (
	"html"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/prebid/aolhtb/config"
)

// RenderStrategy names the key demand is registered under with the render service.
type RenderStrategy int

const (
	RenderByID RenderStrategy = iota
	RenderByIDAndSize
	RenderByIDAndPrice
)

func (s RenderStrategy) String() string {
	switch s {
	case RenderByID:
		return "id"
	case RenderByIDAndSize:
		return "id_and_size"
	case RenderByIDAndPrice:
		return "id_and_price"
	default:
		return "unknown"
	}
}

// RenderInstruction says how a bid is registered for rendering. Size is only meaningful for
// RenderByIDAndSize and Price only for RenderByIDAndPrice.
type RenderInstruction struct {
	Strategy   RenderStrategy
	CallbackID string
	// Expiry is a unix timestamp in milliseconds. Zero means the registration never expires.
	Expiry int64
	Size   [2]int
	Price  string
}

type renderDispatcher struct {
	clock clock.Clock
}

// Dispatch maps a bid onto the line item strategy. Anything other than ID_AND_PRICE registers by
// id and size. Partner validation and the bidder info loader reject any other line item type, so
// only the two known values reach here.
func (d *renderDispatcher) Dispatch(bid *Bid, strategy config.LineItemType, expiry config.DemandExpiry, callbackID, targetingPrice string) RenderInstruction {
	instruction := RenderInstruction{
		CallbackID: callbackID,
		Expiry:     d.expiry(expiry),
	}
	if strategy == config.LineItemTypeIDAndPrice {
		instruction.Strategy = RenderByIDAndPrice
		instruction.Price = targetingPrice
	} else {
		instruction.Strategy = RenderByIDAndSize
		instruction.Size = bid.Size
	}
	return instruction
}

// DispatchInternal registers by id only. The render service picks the ad id.
func (d *renderDispatcher) DispatchInternal(callbackID string, expiry config.DemandExpiry) RenderInstruction {
	return RenderInstruction{
		Strategy:   RenderByID,
		CallbackID: callbackID,
		Expiry:     d.expiry(expiry),
	}
}

func (d *renderDispatcher) expiry(expiry config.DemandExpiry) int64 {
	if !expiry.Enabled {
		return 0
	}
	return d.clock.Now().UnixMilli() + expiry.TTLMs
}

// Render writes the tracking pixel into a hidden iframe, then the creative.
func Render(w io.Writer, creative, pixel string) error {
	if pixel != "" {
		if _, err := io.WriteString(w, `<iframe width="0" height="0" frameborder="0" scrolling="no" style="display:none" srcdoc="`+html.EscapeString(pixel)+`"></iframe>`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, creative)
	return err
}
