package aolhtb

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/util/idutil"
)

const (
	defaultSizeID = "-1"
	defaultPageID = "0"
)

// requestBuilder produces the bid request URLs for both product lines. The only inputs which vary
// between calls with the same slot are the clock reading and the correlation id.
type requestBuilder struct {
	protocol     string
	callbackPath string
	clock        clock.Clock
	ids          idutil.IDGenerator
}

func newRequestBuilder(protocol, namespace, partnerNamespace string, clk clock.Clock, ids idutil.IDGenerator) *requestBuilder {
	return &requestBuilder{
		protocol:     protocol,
		callbackPath: "window." + namespace + "." + partnerNamespace + ".adResponseCallbacks",
		clock:        clk,
		ids:          ids,
	}
}

// Build returns the OneDisplay request for slot.
func (b *requestBuilder) Build(slot config.XSlot, networkID string, region config.Region) (*adapters.RequestDescriptor, error) {
	host, err := Resolve(region)
	if err != nil {
		return nil, err
	}

	pageID := slot.PageID
	if pageID == "" {
		pageID = defaultPageID
	}
	sizeID := slot.SizeID
	if sizeID == "" {
		sizeID = defaultSizeID
	}

	id := b.ids.Generate()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s//%s/pubapi/3.0/%s/%s/%s/%s/ADTECH;", b.protocol, host, networkID, slot.PlacementID, pageID, sizeID)
	sb.WriteString("cmd=bid;cors=yes;v=2;")
	sb.WriteString("misc=")
	sb.WriteString(strconv.FormatInt(b.clock.Now().UnixMilli(), 10))
	sb.WriteString(";callback=")
	sb.WriteString(b.callbackPath)
	sb.WriteString(".")
	sb.WriteString(id)
	sb.WriteString(";")
	if slot.BidFloor != 0 {
		sb.WriteString("bidFloor=")
		sb.WriteString(formatFloor(slot.BidFloor))
		sb.WriteString(";")
	}

	return &adapters.RequestDescriptor{
		URL:        sb.String(),
		CallbackID: id,
	}, nil
}

// BuildMobile returns the OneMobile request for slot.
func (b *requestBuilder) BuildMobile(slot config.XSlot) (*adapters.RequestDescriptor, error) {
	if slot.DCN == "" {
		return nil, &errortypes.ConfigError{Message: "Missing param dcn"}
	}
	if slot.Pos == "" {
		return nil, &errortypes.ConfigError{Message: "Missing param pos"}
	}

	id := b.ids.Generate()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s//%s/bidRequest?", b.protocol, MobileHost())
	sb.WriteString("dcn=")
	sb.WriteString(url.QueryEscape(slot.DCN))
	sb.WriteString("&pos=")
	sb.WriteString(url.QueryEscape(slot.Pos))
	sb.WriteString("&cmd=bid&misc=")
	sb.WriteString(strconv.FormatInt(b.clock.Now().UnixMilli(), 10))
	sb.WriteString("&callback=")
	sb.WriteString(url.QueryEscape(b.callbackPath + "." + id))
	if slot.BidFloor != 0 {
		sb.WriteString("&bidFloor=")
		sb.WriteString(formatFloor(slot.BidFloor))
	}

	return &adapters.RequestDescriptor{
		URL:        sb.String(),
		CallbackID: id,
	}, nil
}

func formatFloor(floor float64) string {
	return strconv.FormatFloat(floor, 'f', -1, 64)
}
