package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/prebid/aolhtb/config"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/net/context/ctxhttp"
	"golang.org/x/time/rate"
)

// Fetcher sends a generated bid request and returns the unwrapped response payload.
// A nil payload with a nil error means the network had nothing to say.
type Fetcher interface {
	Fetch(ctx context.Context, labels metrics.AdapterLabels, url string) ([]byte, error)
}

// Client is the server side Fetcher. It applies the configured deadline, the partner rate limit and
// one circuit breaker per product line.
type Client struct {
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
	metrics  metrics.MetricsEngine
}

// fetchError tags a failure with the metric it is reported under.
type fetchError struct {
	kind metrics.TransportError
	err  error
}

func (e *fetchError) Error() string {
	return e.err.Error()
}

func (e *fetchError) Unwrap() error {
	return e.err
}

func NewClient(cfg config.Transport, limits config.RateLimiting, me metrics.MetricsEngine) *Client {
	ts := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     time.Duration(cfg.IdleConnTimeoutSeconds) * time.Second,
	}
	return newClient(&http.Client{Transport: ts}, cfg, limits, me)
}

func newClient(httpClient *http.Client, cfg config.Transport, limits config.RateLimiting, me metrics.MetricsEngine) *Client {
	c := &Client{
		http:    httpClient,
		timeout: cfg.Timeout(),
		metrics: me,
	}
	if limits.Enabled {
		c.limiter = rate.NewLimiter(rate.Limit(limits.RequestsPerSecond), limits.Burst)
	}
	if cfg.Breaker.Enabled {
		c.breakers = make(map[string]*gobreaker.CircuitBreaker[[]byte], len(metrics.ProductLines()))
		for _, productLine := range metrics.ProductLines() {
			c.breakers[productLine] = newBreaker(productLine, cfg.Breaker)
		}
	}
	return c
}

func newBreaker(name string, cfg config.Breaker) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.OpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			glog.Warningf("Transport breaker %s moved from %s to %s", name, from, to)
		},
	})
}

// Fetch GETs url. Protocol relative urls are sent over https.
func (c *Client) Fetch(ctx context.Context, labels metrics.AdapterLabels, url string) ([]byte, error) {
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}

	if c.limiter != nil && !c.limiter.Allow() {
		return nil, c.fail(labels, &fetchError{
			kind: metrics.TransportErrorRateLimited,
			err:  &errortypes.FailedToRequestBids{Message: "partner rate limit exceeded"},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	breaker, ok := c.breakers[labels.ProductLine]
	if !ok {
		payload, err := c.get(ctx, url)
		return payload, c.fail(labels, err)
	}

	payload, err := breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &fetchError{kind: metrics.TransportErrorBreakerOpen, err: &errortypes.FailedToRequestBids{Message: err.Error()}}
	}
	return payload, c.fail(labels, err)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := ctxhttp.Get(ctx, c.http, url)
	if err != nil {
		kind := metrics.TransportErrorConnect
		if errors.Is(err, context.DeadlineExceeded) {
			kind = metrics.TransportErrorTimeout
		}
		return nil, &fetchError{kind: kind, err: &errortypes.FailedToRequestBids{Message: err.Error()}}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fetchError{kind: metrics.TransportErrorBadResponse, err: &errortypes.BadServerResponse{Message: err.Error()}}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &fetchError{kind: metrics.TransportErrorBadStatus, err: &errortypes.BadServerResponse{
			Message: fmt.Sprintf("unexpected status code %d from the bid host", resp.StatusCode),
		}}
	}

	_, payload, err := UnwrapJSONP(body)
	if err != nil {
		return nil, &fetchError{kind: metrics.TransportErrorBadResponse, err: err}
	}
	return payload, nil
}

// fail records err against labels and returns the typed error underneath.
func (c *Client) fail(labels metrics.AdapterLabels, err error) error {
	if err == nil {
		return nil
	}
	var fe *fetchError
	if !errors.As(err, &fe) {
		return err
	}
	glog.Warningf("%s bid request failed (%s): %v", labels.ProductLine, fe.kind, fe.err)
	c.metrics.RecordTransportError(labels, fe.kind)
	return fe.err
}
