// Package session builds the cookie-carrying HTTP client that is shared by
// every request of a run.
package session

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Options configures the HTTP session.
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Trace dumps every request and response at debug level.
	Trace bool

	// TraceBody includes bodies in traced exchanges.
	TraceBody bool

	Logger *zap.Logger

	// Transport overrides the base transport (tests).
	Transport http.RoundTripper
}

// New creates an HTTP client with a cookie jar so that cookies set by one
// response are replayed on later requests to the same site.
func New(opts Options) (*http.Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "augment-cli/1.0"
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, eris.Wrap(err, "session: create cookie jar")
	}

	base := opts.Transport
	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConnsPerHost = 2
		t.IdleConnTimeout = 90 * time.Second
		base = t
	}

	var rt http.RoundTripper = base
	if opts.Trace {
		rt = &traceTransport{
			base:     rt,
			log:      opts.Logger.Named("http"),
			dumpBody: opts.TraceBody,
		}
	}
	rt = &headerTransport{
		base:    rt,
		headers: map[string]string{"User-Agent": opts.UserAgent},
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Jar:       jar,
		Transport: rt,
	}, nil
}

// headerTransport sets fixed headers on every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
