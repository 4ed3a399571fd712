package config

import (
	"fmt"
	"sort"

	"github.com/prebid/aolhtb/bidtransformer"
	"github.com/prebid/aolhtb/errortypes"
)

// Region selects the OneDisplay ad server a request is sent to.
type Region string

const (
	RegionEU   Region = "eu"
	RegionNA   Region = "na"
	RegionAsia Region = "asia"
)

// Regions returns every supported region.
func Regions() []Region {
	return []Region{RegionEU, RegionNA, RegionAsia}
}

// ProductLine identifies which AOL network the partner config targets.
type ProductLine string

const (
	ProductLineDisplay ProductLine = "onedisplay"
	ProductLineMobile  ProductLine = "onemobile"
)

// LineItemType decides how demand is registered with the render service.
type LineItemType string

const (
	LineItemTypeIDAndSize  LineItemType = "ID_AND_SIZE"
	LineItemTypeIDAndPrice LineItemType = "ID_AND_PRICE"
)

// Partner is the publisher-facing configuration of the adapter. The json tags mirror the wrapper's
// partner config shape, which is what the validation schemas are written against.
type Partner struct {
	Region    Region           `mapstructure:"region" json:"region,omitempty"`
	NetworkID string           `mapstructure:"network_id" json:"networkId,omitempty"`
	XSlots    map[string]XSlot `mapstructure:"x_slots" json:"xSlots"`
	// Mapping lists, per host slot, the xSlot names requested for it.
	Mapping map[string][]string `mapstructure:"mapping" json:"-"`

	// BidTransformer replaces the default targeting transform when set.
	BidTransformer   *bidtransformer.Config `mapstructure:"bid_transformer" json:"-"`
	LineItemType     LineItemType           `mapstructure:"line_item_type" json:"-"`
	DemandExpiry     DemandExpiry           `mapstructure:"demand_expiry" json:"-"`
	Capabilities     Capabilities           `mapstructure:"capabilities" json:"-"`
	RateLimiting     RateLimiting           `mapstructure:"rate_limiting" json:"-"`
	EnabledAnalytics *EnabledAnalytics      `mapstructure:"enabled_analytics" json:"-"`

	productLine ProductLine
}

// XSlot is one network placement. PlacementID, SizeID and PageID belong to OneDisplay; DCN and Pos
// belong to OneMobile.
type XSlot struct {
	PlacementID string  `mapstructure:"placement_id" json:"placementId,omitempty"`
	SizeID      string  `mapstructure:"size_id" json:"sizeId,omitempty"`
	PageID      string  `mapstructure:"page_id" json:"pageId,omitempty"`
	BidFloor    float64 `mapstructure:"bid_floor" json:"bidFloor,omitempty"`
	DCN         string  `mapstructure:"dcn" json:"dcn,omitempty"`
	Pos         string  `mapstructure:"pos" json:"pos,omitempty"`
}

// DemandExpiry controls the expiry timestamp attached to render registrations.
type DemandExpiry struct {
	Enabled bool  `mapstructure:"enabled"`
	TTLMs   int64 `mapstructure:"ttl_ms"`
}

// Capabilities are the wrapper features evaluated once at construction.
type Capabilities struct {
	// GPTLineItems emits targeting keys and registers demand by id and size or price.
	GPTLineItems bool `mapstructure:"gpt_line_items"`
	// ReturnCreative copies the creative markup onto the parcel.
	ReturnCreative bool `mapstructure:"return_creative"`
	// ReturnPrice stores the display price on the parcel.
	ReturnPrice bool `mapstructure:"return_price"`
	// InternalRender registers demand by id only and exposes the ad id as targeting.
	InternalRender bool `mapstructure:"internal_render"`
}

type RateLimiting struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type EnabledAnalytics struct {
	RequestTime bool `mapstructure:"request_time" yaml:"requestTime"`
}

// ProductLine returns the network the config was validated for. It is empty before validation.
func (p *Partner) ProductLine() ProductLine {
	return p.productLine
}

// SlotNames returns the configured xSlot names in a stable order.
func (p *Partner) SlotNames() []string {
	names := make([]string, 0, len(p.XSlots))
	for name := range p.XSlots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostSlotFor returns the host slot whose mapping lists xSlotName. Unmapped slots are their own host slot.
func (p *Partner) HostSlotFor(xSlotName string) string {
	for htSlot, xSlots := range p.Mapping {
		for _, name := range xSlots {
			if name == xSlotName {
				return htSlot
			}
		}
	}
	return xSlotName
}

func (p *Partner) validate(errs []error) []error {
	if _, err := ValidatePartner(p); err != nil {
		return append(errs, err)
	}

	switch p.LineItemType {
	case "", LineItemTypeIDAndSize, LineItemTypeIDAndPrice:
	default:
		errs = append(errs, fmt.Errorf("partner.line_item_type must be %s or %s, got %q", LineItemTypeIDAndSize, LineItemTypeIDAndPrice, p.LineItemType))
	}
	if p.DemandExpiry.Enabled && p.DemandExpiry.TTLMs <= 0 {
		errs = append(errs, fmt.Errorf("partner.demand_expiry.ttl_ms must be positive when demand expiry is enabled, got %d", p.DemandExpiry.TTLMs))
	}
	if p.RateLimiting.Enabled && (p.RateLimiting.RequestsPerSecond <= 0 || p.RateLimiting.Burst <= 0) {
		errs = append(errs, fmt.Errorf("partner.rate_limiting needs a positive requests_per_second and burst, got %v and %d", p.RateLimiting.RequestsPerSecond, p.RateLimiting.Burst))
	}
	if p.BidTransformer != nil {
		for _, err := range p.BidTransformer.Validate() {
			errs = append(errs, fmt.Errorf("partner.bid_transformer: %v", err))
		}
	}
	for htSlot, xSlots := range p.Mapping {
		for _, name := range xSlots {
			if _, ok := p.XSlots[name]; !ok {
				errs = append(errs, &errortypes.ConfigWarning{Message: fmt.Sprintf("partner.mapping.%s references unknown xSlot %q", htSlot, name)})
			}
		}
	}
	return errs
}
