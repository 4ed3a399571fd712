package router

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/adapters/aolhtb"
	"github.com/prebid/aolhtb/analytics"
	analyticsBuild "github.com/prebid/aolhtb/analytics/build"
	"github.com/prebid/aolhtb/callbacks"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/endpoints"
	metricsConf "github.com/prebid/aolhtb/metrics/config"
	"github.com/prebid/aolhtb/render"
	"github.com/prebid/aolhtb/transport"
	"github.com/prebid/aolhtb/util/idutil"
	"github.com/rs/cors"
)

// NoCache wraps a handler so that none of its responses are cached by browsers or proxies.
type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// Router holds the main HTTP surface together with the collaborators the server needs at shutdown.
type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
	Adapter       *aolhtb.Adapter
	Callbacks     *callbacks.Registry
	Render        *render.Registry
	analytics     analytics.Runner
}

// Shutdown flushes the analytics modules.
func (r *Router) Shutdown() {
	if r.analytics != nil {
		r.analytics.Shutdown()
	}
}

// New builds the adapter from the bidder info and registers every route.
func New(cfg *config.Configuration, info *config.BidderInfo, version, revision string) (*Router, error) {
	return newRouter(cfg, info, version, revision, transportFor(cfg), clock.New())
}

func transportFor(cfg *config.Configuration) func(metrics *metricsConf.DetailedMetricsEngine) transport.Fetcher {
	return func(metrics *metricsConf.DetailedMetricsEngine) transport.Fetcher {
		return transport.NewClient(cfg.Transport, cfg.Partner.RateLimiting, metrics)
	}
}

func newRouter(cfg *config.Configuration, info *config.BidderInfo, version, revision string, fetcherFor func(*metricsConf.DetailedMetricsEngine) transport.Fetcher, clk clock.Clock) (*Router, error) {
	r := &Router{
		Router:        httprouter.New(),
		MetricsEngine: metricsConf.NewMetricsEngine(cfg),
	}

	uuids := idutil.UUIDRandomGenerator{}
	r.analytics = analyticsBuild.New(&cfg.Analytics)
	r.Callbacks = callbacks.NewRegistry(r.MetricsEngine)
	r.Render = render.NewRegistry(cfg.Render.CleanupInterval(), clk, uuids)

	adapter, err := aolhtb.Builder(info, cfg, aolhtb.Dependencies{
		Callbacks: r.Callbacks,
		Render:    r.Render,
		Events:    r.analytics,
		Metrics:   r.MetricsEngine,
		Clock:     clk,
	})
	if err != nil {
		return nil, err
	}
	r.Adapter = adapter
	glog.Infof("Adapter %s %s ready for the %s product line", info.PartnerID, info.Version, adapter.ProductLine())

	r.GET("/htb/request/:slot", endpoints.NewRequestEndpoint(adapter, uuids))
	r.POST("/htb/callback/:callbackId", endpoints.NewCallbackEndpoint(info.PartnerID, r.Callbacks, r.analytics, clk))
	r.GET("/htb/auction/:slot", endpoints.NewAuctionEndpoint(adapter, r.Callbacks, fetcherFor(r.MetricsEngine), r.analytics, uuids, clk))
	r.GET("/htb/render/:adId", endpoints.NewRenderEndpoint(r.Render))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.Handler("GET", "/version", endpoints.NewVersionEndpoint(version, revision, info.Version))

	return r, nil
}

// Admin serves the version on the admin port.
func Admin(version, revision string, info *config.BidderInfo) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/version", endpoints.NewVersionEndpoint(version, revision, info.Version))
	return mux
}

// SupportCORS lets any browser origin call the HTB endpoints with credentials.
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
