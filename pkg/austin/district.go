package austin

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const districtAttribute = "COUNCIL_DISTRICT"

// CouncilDistrict runs an intersects query for the point against the council
// district layer.
func (c *client) CouncilDistrict(ctx context.Context, loc Location) (*int, error) {
	params := url.Values{
		"geometryType":   {"esriGeometryPoint"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"outFields":      {districtAttribute},
		"returnGeometry": {"false"},
		"f":              {"pjson"},
		"geometry":       {formatPoint(loc)},
	}

	body, err := c.get(ctx, c.districtURL, params)
	if err != nil {
		return nil, eris.Wrap(err, "austin: council district")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp queryResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, eris.Wrap(err, "austin: council district parse response")
	}
	if resp.Features == nil && !hasKey(body, "features") {
		return nil, eris.New("austin: council district response has no features field")
	}

	if resp.Features == nil || len(*resp.Features) == 0 {
		c.log.Info("austin: no council district found", zap.String("geometry", formatPoint(loc)))
		return nil, nil
	}

	raw, ok := (*resp.Features)[0].Attributes[districtAttribute]
	if !ok {
		return nil, eris.Errorf("austin: council district feature missing %s", districtAttribute)
	}
	district, err := districtNumber(raw)
	if err != nil {
		return nil, eris.Wrap(err, "austin: council district")
	}
	return &district, nil
}

// formatPoint serializes a location as "x,y".
func formatPoint(loc Location) string {
	return strconv.FormatFloat(loc.X, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Y, 'f', -1, 64)
}

// districtNumber converts the attribute value to an int. The layer serves
// numbers; numeric strings are accepted as well.
func districtNumber(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, eris.Wrapf(err, "%s %q is not a number", districtAttribute, n.String())
		}
		return int(math.Trunc(f)), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, eris.Wrapf(err, "%s %q is not an integer", districtAttribute, n)
		}
		return i, nil
	case nil:
		return 0, eris.Errorf("%s is null", districtAttribute)
	default:
		return 0, eris.Errorf("%s has unexpected type %T", districtAttribute, v)
	}
}
