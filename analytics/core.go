package analytics

import (
	"time"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// Module must be implemented by analytics modules to extract the required information and logging
// activities. Do not marshal the parameter objects directly as they can change over time. Use a separate
// model for each analytics module and transform as appropriate.
type Module interface {
	LogSlotEvent(*SlotEvent)
	LogAuctionObject(*AuctionObject)
	Shutdown()
}

// EventName is the header stats event emitted per xSlot outcome.
type EventName string

const (
	EventSlotBid  EventName = "hs_slot_bid"
	EventSlotPass EventName = "hs_slot_pass"
)

// SlotEvent is the header stats record for one xSlot in one auction session.
type SlotEvent struct {
	Name       EventName
	SessionID  string
	StatsID    string
	HTSlotID   string
	XSlotNames []string
	Time       time.Time
}

// Loggable object of a transaction at /htb/auction or /htb/callback
type AuctionObject struct {
	Status    int
	Errors    []error
	SlotName  string
	Response  *openrtb2.BidResponse
	StartTime time.Time
}
