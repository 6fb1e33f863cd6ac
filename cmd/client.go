package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/augment-cli/internal/config"
	"github.com/sells-group/augment-cli/internal/session"
	"github.com/sells-group/augment-cli/pkg/austin"
)

// newAustinClient builds the shared session and primes it against the
// configured landing page.
func newAustinClient(ctx context.Context, c config.AustinConfig, log *zap.Logger) (austin.Client, error) {
	hc, err := session.New(session.Options{
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout(),
		Trace:     c.TraceHTTP,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	return austin.NewClient(ctx,
		austin.WithHTTPClient(hc),
		austin.WithLandingURL(c.LandingURL),
		austin.WithGeocodeURL(c.GeocodeURL),
		austin.WithDistrictURL(c.DistrictURL),
		austin.WithRateLimit(c.RateLimit),
		austin.WithLogger(log),
	)
}
