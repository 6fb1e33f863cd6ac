// Package austin uses the City of Austin ArcGIS services as an API: the COA
// address locator for geocoding and the council district map layer for
// point-in-district queries.
//
// The endpoints are undocumented public web services. Keep request volume
// low; the augment loop paces calls for that reason.
package austin

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/augment-cli/internal/session"
)

const (
	defaultLandingURL  = "https://www.austintexas.gov/government"
	defaultGeocodeURL  = "https://maps.austintexas.gov/arcgis/rest/services/Geocode/COA_Locator/GeocodeServer/findAddressCandidates"
	defaultDistrictURL = "https://maps.austintexas.gov/gis/rest/Shared/CouncilDistrictsFill/MapServer/0/query"
)

// Client geocodes addresses and resolves council districts.
type Client interface {
	// GeocodeAddress returns the best match for a single-line address, or
	// nil when the locator has no candidate.
	GeocodeAddress(ctx context.Context, address string) (*GeocodedAddress, error)

	// CouncilDistrict returns the district containing loc, or nil when no
	// district intersects it.
	CouncilDistrict(ctx context.Context, loc Location) (*int, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets the HTTP client. It should carry a cookie jar; the
// landing page visit only helps if its cookies are replayed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithLandingURL overrides the page visited to prime the session.
func WithLandingURL(u string) Option {
	return func(c *client) {
		c.landingURL = u
	}
}

// WithGeocodeURL overrides the findAddressCandidates endpoint.
func WithGeocodeURL(u string) Option {
	return func(c *client) {
		c.geocodeURL = u
	}
}

// WithDistrictURL overrides the council district query endpoint.
func WithDistrictURL(u string) Option {
	return func(c *client) {
		c.districtURL = u
	}
}

// WithRateLimit caps API requests per second. Zero leaves calls unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *client) {
		c.log = l
	}
}

type client struct {
	httpClient  *http.Client
	landingURL  string
	geocodeURL  string
	districtURL string
	limiter     *rate.Limiter
	log         *zap.Logger
}

// NewClient creates a Client and primes its session by visiting the landing
// page; the ArcGIS services reject calls from a fresh session.
func NewClient(ctx context.Context, opts ...Option) (Client, error) {
	c := &client{
		landingURL:  defaultLandingURL,
		geocodeURL:  defaultGeocodeURL,
		districtURL: defaultDistrictURL,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		log:         zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := session.New(session.Options{Logger: c.log})
		if err != nil {
			return nil, eris.Wrap(err, "austin: create session")
		}
		c.httpClient = hc
	}

	if err := c.prime(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *client) prime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.landingURL, nil)
	if err != nil {
		return eris.Wrap(err, "austin: build landing request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "austin: visit landing page")
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("austin: landing page returned unexpected status",
			zap.String("url", c.landingURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}
	c.log.Debug("austin: session primed", zap.String("url", c.landingURL))
	return nil
}

// get performs a GET with query params and returns the full body.
func (c *client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "austin: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "austin: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "austin: request %s", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("austin: %s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "austin: read body")
	}
	return body, nil
}
