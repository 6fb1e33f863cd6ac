package austin

import "encoding/json"

// Location is a geocoded point as returned by the COA locator. The service
// describes X as "latitude north" and Y as "longitude west"; the values and
// wire names are kept exactly as received.
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Extent is the bounding box of a candidate's uncertainty area.
type Extent struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMax float64 `json:"ymax" yaml:"ymax"`
}

// GeocodedAddress is the best candidate for a free-text address.
type GeocodedAddress struct {
	Address  string   `json:"address" yaml:"address"` // as corrected by the locator
	Location Location `json:"location" yaml:"location"`
	Score    int      `json:"score" yaml:"score"`
	Extent   Extent   `json:"extent" yaml:"extent"`
}

// findAddressCandidates response, with pointers so missing keys can be told
// apart from zero values. A null list decodes to nil as well; hasKey tells
// the two apart.
type candidatesResponse struct {
	Candidates *[]wireCandidate `json:"candidates"`
}

type wireCandidate struct {
	Address  *string       `json:"address"`
	Location *wireLocation `json:"location"`
	Score    *float64      `json:"score"`
	Extent   *wireExtent   `json:"extent"`
}

type wireLocation struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type wireExtent struct {
	XMin *float64 `json:"xmin"`
	YMin *float64 `json:"ymin"`
	XMax *float64 `json:"xmax"`
	YMax *float64 `json:"ymax"`
}

// MapServer query response.
type queryResponse struct {
	Features *[]wireFeature `json:"features"`
}

type wireFeature struct {
	Attributes map[string]any `json:"attributes"`
}

// hasKey reports whether the JSON object in data has key, whatever its value.
func hasKey(data []byte, key string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	_, ok := obj[key]
	return ok
}
