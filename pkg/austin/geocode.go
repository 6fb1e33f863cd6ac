package austin

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// The locator only answers in JSONP for these parameters; the callback name
// is echoed back as the wrapper.
const jsonpCallback = "callback"

// GeocodeAddress queries findAddressCandidates for a single candidate.
func (c *client) GeocodeAddress(ctx context.Context, address string) (*GeocodedAddress, error) {
	params := url.Values{
		"outFields":    {""},
		"maxLocations": {"1"},
		"outSR":        {""},
		"searchExtent": {""},
		"f":            {"pjson"},
		"SingleLine":   {address},
		"callback":     {jsonpCallback},
		"js":           {"1"},
	}

	body, err := c.get(ctx, c.geocodeURL, params)
	if err != nil {
		return nil, eris.Wrap(err, "austin: geocode")
	}

	text := string(body)
	if !strings.HasPrefix(text, jsonpCallback+"(") {
		c.log.Warn("austin: JSONP response has an unexpected callback name",
			zap.String("prefix", head(text, 10)),
		)
	}

	payload, err := stripJSONP(text)
	if err != nil {
		return nil, eris.Wrap(err, "austin: geocode")
	}

	var resp candidatesResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, eris.Wrap(err, "austin: geocode parse response")
	}
	if resp.Candidates == nil && !hasKey([]byte(payload), "candidates") {
		return nil, eris.New("austin: geocode response has no candidates field")
	}

	if resp.Candidates == nil || len(*resp.Candidates) == 0 {
		c.log.Info("austin: no geocoded address found", zap.String("address", address))
		return nil, nil
	}

	result, err := (*resp.Candidates)[0].toResult()
	if err != nil {
		return nil, eris.Wrap(err, "austin: geocode")
	}
	return result, nil
}

// stripJSONP returns the text between the first "(" and the final two
// characters, which for the locator are ");".
func stripJSONP(text string) (string, error) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return "", eris.Errorf("jsonp: no opening parenthesis in %q", head(text, 10))
	}
	end := len(text) - 2
	if end < open+1 {
		return "", eris.Errorf("jsonp: body too short (%d bytes)", len(text))
	}
	return text[open+1 : end], nil
}

func (w wireCandidate) toResult() (*GeocodedAddress, error) {
	switch {
	case w.Address == nil:
		return nil, eris.New("candidate missing address")
	case w.Location == nil || w.Location.X == nil || w.Location.Y == nil:
		return nil, eris.New("candidate missing location")
	case w.Score == nil:
		return nil, eris.New("candidate missing score")
	case w.Extent == nil || w.Extent.XMin == nil || w.Extent.YMin == nil ||
		w.Extent.XMax == nil || w.Extent.YMax == nil:
		return nil, eris.New("candidate missing extent")
	}

	return &GeocodedAddress{
		Address:  *w.Address,
		Location: Location{X: *w.Location.X, Y: *w.Location.Y},
		Score:    int(*w.Score),
		Extent: Extent{
			XMin: *w.Extent.XMin,
			YMin: *w.Extent.YMin,
			XMax: *w.Extent.XMax,
			YMax: *w.Extent.YMax,
		},
	}, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
