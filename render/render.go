package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/patrickmn/go-cache"
	"github.com/prebid/aolhtb/util/idutil"
)

// ErrAdNotFound is returned for ad ids which were never registered, have expired or were already rendered.
var ErrAdNotFound = errors.New("no ad registered for id")

// Func writes a registered ad into w.
type Func func(w io.Writer, creative, pixel string) error

// Registration is demand waiting to be rendered.
type Registration struct {
	PartnerID string
	SessionID string
	RequestID string
	Render    Func
	Creative  string
	Pixel     string
	// Expiry is a unix timestamp in milliseconds. Zero means the registration never expires.
	Expiry int64
}

// Service stores demand until the page asks for it. Each Register method returns the ad id the
// demand is reachable under.
type Service interface {
	RegisterAd(reg Registration) (string, error)
	RegisterAdByIDAndSize(reg Registration, size [2]int) (string, error)
	RegisterAdByIDAndPrice(reg Registration, price string) (string, error)
	Render(w io.Writer, adID string) error
}

// SizeKey is the ad id of demand registered by request id and size. Line item creatives rebuild it
// from the id targeting key and the slot size.
func SizeKey(requestID string, size [2]int) string {
	return requestID + "_" + strconv.Itoa(size[0]) + "x" + strconv.Itoa(size[1])
}

// PriceKey is the ad id of demand registered by request id and targeting price.
func PriceKey(requestID, price string) string {
	return requestID + "_" + price
}

// Registry is the in-process Service. Entries are rendered at most once.
type Registry struct {
	cache *cache.Cache
	clock clock.Clock
	ids   idutil.UUIDGenerator

	// guards the lookup and removal in Render
	lock sync.Mutex
}

func NewRegistry(cleanupInterval time.Duration, clk clock.Clock, ids idutil.UUIDGenerator) *Registry {
	return &Registry{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
		clock: clk,
		ids:   ids,
	}
}

func (r *Registry) RegisterAd(reg Registration) (string, error) {
	adID, err := r.ids.Generate()
	if err != nil {
		return "", fmt.Errorf("generate ad id: %w", err)
	}
	return adID, r.store(adID, reg)
}

func (r *Registry) RegisterAdByIDAndSize(reg Registration, size [2]int) (string, error) {
	adID := SizeKey(reg.RequestID, size)
	return adID, r.store(adID, reg)
}

func (r *Registry) RegisterAdByIDAndPrice(reg Registration, price string) (string, error) {
	adID := PriceKey(reg.RequestID, price)
	return adID, r.store(adID, reg)
}

func (r *Registry) store(adID string, reg Registration) error {
	if reg.Render == nil {
		return fmt.Errorf("registration %s has no render func", adID)
	}

	ttl := cache.NoExpiration
	if reg.Expiry != 0 {
		ttl = time.Duration(reg.Expiry-r.clock.Now().UnixMilli()) * time.Millisecond
		if ttl <= 0 {
			return fmt.Errorf("registration %s expired before it was stored", adID)
		}
	}
	r.cache.Set(adID, reg, ttl)
	return nil
}

// Render writes the ad registered under adID and forgets it.
func (r *Registry) Render(w io.Writer, adID string) error {
	reg, ok := r.take(adID)
	if !ok {
		return ErrAdNotFound
	}
	if reg.Expiry != 0 && r.clock.Now().UnixMilli() >= reg.Expiry {
		glog.V(2).Infof("Ad %s for session %s expired before render", adID, reg.SessionID)
		return ErrAdNotFound
	}
	return reg.Render(w, reg.Creative, reg.Pixel)
}

func (r *Registry) take(adID string) (Registration, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	value, ok := r.cache.Get(adID)
	if !ok {
		return Registration{}, false
	}
	r.cache.Delete(adID)
	return value.(Registration), true
}

// Len is the number of registrations waiting to be rendered, expired ones included until cleanup.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
