package austin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/augment-cli/internal/session"
)

// newRewriteClient creates a cookie-carrying HTTP client whose transport
// redirects requests for any of the target prefixes to the test server.
// Cookies are still keyed by the original URL.
func newRewriteClient(t *testing.T, testServerURL string, targetPrefixes ...string) *http.Client {
	t.Helper()
	hc, err := session.New(session.Options{
		Transport: &rewriteTransport{
			base:           http.DefaultTransport,
			testServer:     testServerURL,
			targetPrefixes: targetPrefixes,
		},
	})
	require.NoError(t, err)
	return hc
}

type rewriteTransport struct {
	base           http.RoundTripper
	testServer     string
	targetPrefixes []string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	for _, prefix := range t.targetPrefixes {
		if !strings.HasPrefix(origURL, prefix) {
			continue
		}
		newURL := t.testServer + origURL[len(prefix):]
		newReq := req.Clone(req.Context())
		parsed, err := req.URL.Parse(newURL)
		if err != nil {
			return nil, err
		}
		newReq.URL = parsed
		newReq.Host = parsed.Host
		return t.base.RoundTrip(newReq)
	}
	return t.base.RoundTrip(req)
}

// newTestClient starts a client against srv with every endpoint on the
// same server: /landing, /geocode, /district.
func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *client {
	t.Helper()
	hc, err := session.New(session.Options{})
	require.NoError(t, err)

	base := []Option{
		WithHTTPClient(hc),
		WithLandingURL(srv.URL + "/landing"),
		WithGeocodeURL(srv.URL + "/geocode"),
		WithDistrictURL(srv.URL + "/district"),
		WithLogger(zap.NewNop()),
	}
	c, err := NewClient(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	return c.(*client)
}

// newObservedLogger returns a logger whose entries can be inspected.
func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}
