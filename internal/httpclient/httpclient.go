// Package httpclient provides the HTTP client used for all calls to external APIs.
//
// Requests are retried on common transient errors, responses are logged
// and cacheable responses can be served from a cache.
package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gohugoio/httpcache"
	"github.com/hashicorp/go-retryablehttp"
)

// Defaults for Params.
const (
	defaultRetryMax     = 2
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = time.Second
	defaultTimeout      = 10 * time.Second
)

// Params configures a new HTTP client. The zero value is a valid configuration.
type Params struct {
	// Cache for HTTP responses. No caching is done when nil.
	Cache httpcache.Cache
	// Maximum number of retries.
	RetryMax int
	// Overall timeout for a request including retries.
	Timeout time.Duration
	// Transport used for requests. Defaults to [http.DefaultTransport].
	Transport http.RoundTripper
	// User agent added to every request.
	UserAgent string
}

// New returns a new HTTP client.
func New(arg Params) *http.Client {
	if arg.RetryMax == 0 {
		arg.RetryMax = defaultRetryMax
	}
	if arg.Timeout == 0 {
		arg.Timeout = defaultTimeout
	}
	var transport http.RoundTripper = userAgentTransport{
		userAgent: arg.UserAgent,
		transport: arg.Transport,
	}
	if arg.Cache != nil {
		transport = &httpcache.Transport{
			Cache:               arg.Cache,
			MarkCachedResponses: true,
			Transport:           transport,
		}
	}
	rhc := retryablehttp.NewClient()
	rhc.HTTPClient = &http.Client{Transport: transport}
	rhc.Logger = slog.Default()
	rhc.ResponseLogHook = logResponse
	rhc.RetryMax = arg.RetryMax
	rhc.RetryWaitMin = defaultRetryWaitMin
	rhc.RetryWaitMax = defaultRetryWaitMax
	c := rhc.StandardClient()
	c.Timeout = arg.Timeout
	return c
}

type userAgentTransport struct {
	userAgent string
	transport http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr := t.transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return tr.RoundTrip(req)
}
