package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/adapters/aolhtb"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/aolhtb/callbacks"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
	"github.com/prebid/aolhtb/render"
	"github.com/prebid/aolhtb/util/idutil"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/openrtb/v20/openrtb3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bidPayload = `{"seatbid":[{"bid":[{"price":1.5,"adm":"<div>ad</div>","w":300,"h":250}]}]}`

type auctionRecorder struct {
	auctions []*analytics.AuctionObject
}

func (r *auctionRecorder) LogSlotEvent(*analytics.SlotEvent) {}

func (r *auctionRecorder) LogAuctionObject(ao *analytics.AuctionObject) {
	r.auctions = append(r.auctions, ao)
}

func (r *auctionRecorder) Shutdown() {}

type fixedUUID string

func (f fixedUUID) Generate() (string, error) {
	return string(f), nil
}

type fakeFetcher struct {
	payload []byte
	err     error
	urls    []string
	labels  []metrics.AdapterLabels
}

func (f *fakeFetcher) Fetch(_ context.Context, labels metrics.AdapterLabels, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	f.labels = append(f.labels, labels)
	return f.payload, f.err
}

type fixture struct {
	router    *httprouter.Router
	callbacks *callbacks.Registry
	render    *render.Registry
	analytics *auctionRecorder
	fetcher   *fakeFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	me := &metrics.MetricsEngineMock{}
	me.On("RecordRequest", mock.Anything).Return()
	me.On("RecordBid", mock.Anything, mock.Anything).Return()
	me.On("RecordPass", mock.Anything).Return()
	me.On("RecordRequestTime", mock.Anything, mock.Anything).Return()
	me.On("RecordCallbacks", mock.Anything).Return()
	me.On("RecordUnknownCallback").Return()

	clk := clock.NewMock()
	clk.Set(time.UnixMilli(1600000000000))

	f := &fixture{
		callbacks: callbacks.NewRegistry(me),
		render:    render.NewRegistry(time.Minute, clk, fixedUUID("ad-uuid")),
		analytics: &auctionRecorder{},
		fetcher:   &fakeFetcher{},
	}

	info := &config.BidderInfo{
		PartnerID:     "AolHtb",
		Namespace:     "AolHtb",
		StatsID:       "AOL",
		TargetingType: "slot",
		TargetingKeys: config.TargetingKeys{OM: "ix_aol_om", PM: "ix_aol_pm", ID: "ix_aol_id"},
		LineItemType:  config.LineItemTypeIDAndSize,
	}
	cfg := &config.Configuration{
		Protocol:  "https:",
		Namespace: "headertag",
		Partner: config.Partner{
			Region:       config.RegionNA,
			NetworkID:    "9959.1",
			XSlots:       map[string]config.XSlot{"1": {PlacementID: "1234567"}},
			Capabilities: config.Capabilities{GPTLineItems: true, ReturnCreative: true, ReturnPrice: true},
		},
	}
	adapter, err := aolhtb.Builder(info, cfg, aolhtb.Dependencies{
		Callbacks: f.callbacks,
		Render:    f.render,
		Events:    f.analytics,
		Metrics:   me,
		Clock:     clk,
		IDs:       &idutil.CounterGenerator{},
	})
	require.NoError(t, err)

	uuids := fixedUUID("session-uuid")
	f.router = httprouter.New()
	f.router.GET("/htb/request/:slot", NewRequestEndpoint(adapter, uuids))
	f.router.POST("/htb/callback/:callbackId", NewCallbackEndpoint(info.PartnerID, f.callbacks, f.analytics, clk))
	f.router.GET("/htb/auction/:slot", NewAuctionEndpoint(adapter, f.callbacks, f.fetcher, f.analytics, uuids, clk))
	f.router.GET("/htb/render/:adId", NewRenderEndpoint(f.render))
	return f
}

func (f *fixture) serve(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBidResponse(t *testing.T, recorder *httptest.ResponseRecorder) openrtb2.BidResponse {
	t.Helper()
	var response openrtb2.BidResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response), recorder.Body.String())
	return response
}

func TestRequestEndpoint(t *testing.T) {
	f := newFixture(t)

	recorder := f.serve("GET", "/htb/request/1?session=abc", "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response requestResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "_1", response.CallbackID)
	assert.Equal(t, "abc", response.SessionID)
	assert.Contains(t, response.URL, "https://adserver-us.adtech.advertising.com/pubapi/3.0/9959.1/1234567/0/-1/ADTECH;")
	assert.Equal(t, 1, f.callbacks.Len())
}

func TestRequestEndpointGeneratesSession(t *testing.T) {
	f := newFixture(t)

	recorder := f.serve("GET", "/htb/request/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"sessionId":"session-uuid"`)
}

func TestRequestEndpointUnknownSlot(t *testing.T) {
	f := newFixture(t)

	recorder := f.serve("GET", "/htb/request/9", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, 0, f.callbacks.Len())
}

func TestCallbackEndpointBid(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.serve("GET", "/htb/request/1?session=abc", "").Code)

	recorder := f.serve("POST", "/htb/callback/_1", "window.headertag.AolHtb.adResponseCallbacks._1("+bidPayload+")")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	response := decodeBidResponse(t, recorder)
	assert.Equal(t, "_1", response.ID)
	assert.Nil(t, response.NBR)
	require.Len(t, response.SeatBid, 1)
	assert.Equal(t, "AolHtb", response.SeatBid[0].Seat)
	bid := response.SeatBid[0].Bid[0]
	assert.Equal(t, "1", bid.ImpID)
	assert.Equal(t, 150.0, bid.Price)
	assert.Equal(t, "<div>ad</div>", bid.AdM)
	assert.Equal(t, int64(300), bid.W)
	assert.JSONEq(t, `{"targetingType":"slot","targeting":{"ix_aol_om":["300x250_150"],"ix_aol_id":["_1"]},"sessionId":"abc","htSlotId":"1"}`, string(bid.Ext))

	require.Len(t, f.analytics.auctions, 1)
	assert.Equal(t, http.StatusOK, f.analytics.auctions[0].Status)
	assert.Equal(t, "1", f.analytics.auctions[0].SlotName)

	assert.Equal(t, http.StatusNotFound, f.serve("POST", "/htb/callback/_1", bidPayload).Code, "callbacks are one-shot")
}

func TestCallbackEndpointPass(t *testing.T) {
	f := newFixture(t)
	f.serve("GET", "/htb/request/1", "")

	recorder := f.serve("POST", "/htb/callback/_1", `{"seatbid":[{"bid":[{"nbr":2}]}]}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decodeBidResponse(t, recorder)
	require.NotNil(t, response.NBR)
	assert.Equal(t, openrtb3.NoBidUnknownError, *response.NBR)
	assert.Empty(t, response.SeatBid)
}

func TestCallbackEndpointMalformedWrapperPasses(t *testing.T) {
	f := newFixture(t)
	f.serve("GET", "/htb/request/1", "")

	recorder := f.serve("POST", "/htb/callback/_1", "not a response")
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decodeBidResponse(t, recorder)
	require.NotNil(t, response.NBR)
	assert.Equal(t, openrtb3.NoBidTechnicalError, *response.NBR)
	assert.Len(t, f.analytics.auctions[0].Errors, 1)
}

func TestCallbackEndpointMismatchedWrapper(t *testing.T) {
	f := newFixture(t)
	f.serve("GET", "/htb/request/1", "")

	recorder := f.serve("POST", "/htb/callback/_1", "window.headertag.AolHtb.adResponseCallbacks._2("+bidPayload+")")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 1, f.callbacks.Len(), "the registered callback is left alone")
}

func TestCallbackEndpointUnknownID(t *testing.T) {
	f := newFixture(t)

	recorder := f.serve("POST", "/htb/callback/_404", bidPayload)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	require.Len(t, f.analytics.auctions, 1)
	var unknown *errortypes.UnknownCallback
	assert.ErrorAs(t, f.analytics.auctions[0].Errors[0], &unknown)
}

func TestAuctionEndpointBidAndRender(t *testing.T) {
	f := newFixture(t)
	f.fetcher.payload = []byte(bidPayload)

	recorder := f.serve("GET", "/htb/auction/1?session=s", "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	response := decodeBidResponse(t, recorder)
	require.Len(t, response.SeatBid, 1)
	assert.Equal(t, 150.0, response.SeatBid[0].Bid[0].Price)
	assert.Equal(t, []metrics.AdapterLabels{{ProductLine: "onedisplay", RType: metrics.ReqTypeServer}}, f.fetcher.labels)
	assert.Equal(t, 0, f.callbacks.Len())

	rendered := f.serve("GET", "/htb/render/_1_300x250", "")
	assert.Equal(t, http.StatusOK, rendered.Code)
	assert.Equal(t, "text/html; charset=utf-8", rendered.Header().Get("Content-Type"))
	assert.Equal(t, "<div>ad</div>", rendered.Body.String())

	assert.Equal(t, http.StatusNotFound, f.serve("GET", "/htb/render/_1_300x250", "").Code)
}

func TestAuctionEndpointTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = &errortypes.BadServerResponse{Message: "unexpected status code 500"}

	recorder := f.serve("GET", "/htb/auction/1", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decodeBidResponse(t, recorder)
	require.NotNil(t, response.NBR)
	assert.Equal(t, openrtb3.NoBidTechnicalError, *response.NBR)
	require.Len(t, f.analytics.auctions, 1)
	assert.Len(t, f.analytics.auctions[0].Errors, 1)
}

func TestAuctionEndpointUnknownSlot(t *testing.T) {
	f := newFixture(t)

	recorder := f.serve("GET", "/htb/auction/nope", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, f.fetcher.urls)
}

func TestStatusEndpoint(t *testing.T) {
	recorder := httptest.NewRecorder()
	NewStatusEndpoint("")(recorder, httptest.NewRequest("GET", "/status", nil), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	NewStatusEndpoint("ready")(recorder, httptest.NewRequest("GET", "/status", nil), nil)
	assert.Equal(t, "ready", recorder.Body.String())
}

func TestVersionEndpoint(t *testing.T) {
	recorder := httptest.NewRecorder()
	NewVersionEndpoint("", "abc123", "2.0.0")(recorder, httptest.NewRequest("GET", "/version", nil))

	assert.JSONEq(t, `{"revision":"abc123","version":"not-set","adapterVersion":"2.0.0"}`, recorder.Body.String())
}
