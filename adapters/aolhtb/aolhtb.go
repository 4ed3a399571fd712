package aolhtb

import (
	"fmt"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/aolhtb/bidtransformer"
	"github.com/prebid/aolhtb/callbacks"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
	"github.com/prebid/aolhtb/render"
	"github.com/prebid/aolhtb/util/idutil"
)

// TargetingKeyAdID carries the render service ad id when the adapter renders internally.
const TargetingKeyAdID = "pubKitAdId"

// Dependencies are the collaborators an Adapter is wired to.
type Dependencies struct {
	Callbacks *callbacks.Registry
	Render    render.Service
	Events    analytics.Runner
	Metrics   metrics.MetricsEngine
	Clock     clock.Clock
	IDs       idutil.IDGenerator
}

// Adapter talks to one AOL network on behalf of one partner config.
type Adapter struct {
	info         *config.BidderInfo
	partner      config.Partner
	productLine  config.ProductLine
	lineItemType config.LineItemType
	emitEvents   bool

	requests   *requestBuilder
	dispatcher *renderDispatcher
	targeting  *bidtransformer.Transformer
	price      *bidtransformer.Transformer

	callbacks *callbacks.Registry
	render    render.Service
	events    analytics.Runner
	metrics   metrics.MetricsEngine
	clock     clock.Clock
}

var _ adapters.Bidder = (*Adapter)(nil)

// Builder validates the partner config and builds the adapter. Every error it returns is a
// ConfigError, and the adapter must not be used after one.
func Builder(info *config.BidderInfo, cfg *config.Configuration, deps Dependencies) (*Adapter, error) {
	partner := cfg.Partner

	productLine, err := config.ValidatePartner(&partner)
	if err != nil {
		return nil, err
	}
	if productLine == config.ProductLineDisplay {
		if _, err := Resolve(partner.Region); err != nil {
			return nil, &errortypes.ConfigError{Message: err.Error()}
		}
	}

	targetingCfg := bidtransformer.DefaultTargetingConfig()
	priceCfg := bidtransformer.DefaultPriceConfig()
	if partner.BidTransformer != nil {
		targetingCfg = *partner.BidTransformer
		priceCfg.InputCentsMultiplier = partner.BidTransformer.InputCentsMultiplier
	}
	targeting, err := bidtransformer.New(targetingCfg)
	if err != nil {
		return nil, &errortypes.ConfigError{Message: fmt.Sprintf("targeting bid transformer: %v", err)}
	}
	price, err := bidtransformer.New(priceCfg)
	if err != nil {
		return nil, &errortypes.ConfigError{Message: fmt.Sprintf("price bid transformer: %v", err)}
	}

	lineItemType := info.LineItemType
	if partner.LineItemType != "" {
		lineItemType = partner.LineItemType
	}
	emitEvents := info.EnabledAnalytics.RequestTime
	if partner.EnabledAnalytics != nil {
		emitEvents = partner.EnabledAnalytics.RequestTime
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}
	ids := deps.IDs
	if ids == nil {
		ids = idutil.ProcessGenerator()
	}

	return &Adapter{
		info:         info,
		partner:      partner,
		productLine:  productLine,
		lineItemType: lineItemType,
		emitEvents:   emitEvents,
		requests:     newRequestBuilder(cfg.Protocol, cfg.Namespace, info.Namespace, clk, ids),
		dispatcher:   &renderDispatcher{clock: clk},
		targeting:    targeting,
		price:        price,
		callbacks:    deps.Callbacks,
		render:       deps.Render,
		events:       deps.Events,
		metrics:      deps.Metrics,
		clock:        clk,
	}, nil
}

func (a *Adapter) ProductLine() config.ProductLine {
	return a.productLine
}

func (a *Adapter) Info() *config.BidderInfo {
	return a.info
}

// HasSlot reports whether xSlotName is configured.
func (a *Adapter) HasSlot(xSlotName string) bool {
	_, ok := a.partner.XSlots[xSlotName]
	return ok
}

// GenerateRequest builds the request for the parcel's xSlot and registers the handler for its response.
func (a *Adapter) GenerateRequest(parcel *adapters.Parcel) (*adapters.RequestDescriptor, error) {
	slot, ok := a.partner.XSlots[parcel.XSlotName]
	if !ok {
		return nil, &errortypes.ConfigError{Message: fmt.Sprintf("unknown xSlot %q", parcel.XSlotName)}
	}

	var descriptor *adapters.RequestDescriptor
	var err error
	if a.productLine == config.ProductLineMobile {
		descriptor, err = a.requests.BuildMobile(slot)
	} else {
		descriptor, err = a.requests.Build(slot, a.partner.NetworkID, a.partner.Region)
	}
	if err != nil {
		return nil, err
	}

	parcel.RequestID = descriptor.CallbackID
	if parcel.HTSlotID == "" {
		parcel.HTSlotID = a.partner.HostSlotFor(parcel.XSlotName)
	}

	labels := a.labels(parcel)
	a.metrics.RecordRequest(labels)

	start := a.clock.Now()
	a.callbacks.Register(descriptor.CallbackID, func(payload []byte) *adapters.Parcel {
		a.metrics.RecordRequestTime(labels, a.clock.Since(start))
		a.ParseResponse(payload, parcel)
		return parcel
	})

	return descriptor, nil
}

// ParseResponse fills in the parcel outcome, emits the slot event and registers demand for rendering.
func (a *Adapter) ParseResponse(payload []byte, parcel *adapters.Parcel) {
	result := ParseBid(payload)
	if result.IsNoBid() {
		a.pass(parcel, result.NoBid)
		return
	}
	bid := result.Bid

	a.emit(analytics.EventSlotBid, parcel)
	a.metrics.RecordBid(a.labels(parcel), bid.Price)

	parcel.TargetingType = a.info.TargetingType
	parcel.Targeting = make(map[string][]string)
	parcel.Size = bid.Size
	if bid.DealID != nil {
		parcel.DealID = *bid.DealID
	}

	if a.partner.Capabilities.GPTLineItems {
		targetingPrice := a.targeting.Apply(bid.Price)
		size := strconv.Itoa(bid.Size[0]) + "x" + strconv.Itoa(bid.Size[1])
		keys := a.info.TargetingKeys

		if bid.DealID != nil {
			parcel.Targeting[keys.PM] = []string{size + "_" + *bid.DealID}
		}
		parcel.Targeting[keys.OM] = []string{size + "_" + targetingPrice}
		parcel.Targeting[keys.ID] = []string{parcel.RequestID}

		instruction := a.dispatcher.Dispatch(bid, a.lineItemType, a.partner.DemandExpiry, parcel.RequestID, targetingPrice)
		if _, err := a.register(instruction, parcel, bid); err != nil {
			glog.Warningf("Failed to register %s demand for request %s: %v", instruction.Strategy, parcel.RequestID, err)
		}
	}

	if a.partner.Capabilities.ReturnCreative {
		parcel.Adm = bid.Creative
	}

	if a.partner.Capabilities.ReturnPrice {
		parcel.Price = a.price.ApplyNumber(bid.Price)
	}

	if a.partner.Capabilities.InternalRender {
		instruction := a.dispatcher.DispatchInternal(parcel.RequestID, a.partner.DemandExpiry)
		adID, err := a.register(instruction, parcel, bid)
		if err != nil {
			glog.Warningf("Failed to register demand for request %s: %v", parcel.RequestID, err)
		} else {
			parcel.Targeting[TargetingKeyAdID] = []string{adID}
		}
	}
}

func (a *Adapter) pass(parcel *adapters.Parcel, reason *errortypes.NoBid) {
	glog.V(2).Infof("%s passed on %s (request %s): %s", a.info.PartnerID, parcel.XSlotName, parcel.RequestID, reason.Reason)

	parcel.Pass = true
	parcel.Err = reason
	a.emit(analytics.EventSlotPass, parcel)
	a.metrics.RecordPass(a.labels(parcel))
}

func (a *Adapter) register(instruction RenderInstruction, parcel *adapters.Parcel, bid *Bid) (string, error) {
	reg := render.Registration{
		PartnerID: a.info.PartnerID,
		SessionID: parcel.SessionID,
		RequestID: instruction.CallbackID,
		Render:    Render,
		Creative:  bid.Creative,
		Pixel:     bid.TrackingPixel,
		Expiry:    instruction.Expiry,
	}

	switch instruction.Strategy {
	case RenderByIDAndSize:
		return a.render.RegisterAdByIDAndSize(reg, instruction.Size)
	case RenderByIDAndPrice:
		return a.render.RegisterAdByIDAndPrice(reg, instruction.Price)
	default:
		return a.render.RegisterAd(reg)
	}
}

func (a *Adapter) emit(name analytics.EventName, parcel *adapters.Parcel) {
	if !a.emitEvents {
		return
	}
	a.events.LogSlotEvent(&analytics.SlotEvent{
		Name:       name,
		SessionID:  parcel.SessionID,
		StatsID:    a.info.StatsID,
		HTSlotID:   parcel.HTSlotID,
		XSlotNames: []string{parcel.XSlotName},
		Time:       a.clock.Now(),
	})
}

func (a *Adapter) labels(parcel *adapters.Parcel) metrics.AdapterLabels {
	labels := metrics.AdapterLabels{
		ProductLine: string(a.productLine),
		RType:       metrics.ReqTypeBrowser,
	}
	if parcel.ServerSide {
		labels.RType = metrics.ReqTypeServer
	}
	return labels
}
