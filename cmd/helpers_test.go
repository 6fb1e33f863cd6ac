package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sells-group/augment-cli/internal/config"
)

// fakeAustin serves /landing, /geocode and /district. Addresses containing
// "Nowhere" have no candidate; addresses containing "Outside" geocode to a
// point with no district; everything else lands in district 9.
type fakeAustin struct {
	srv       *httptest.Server
	geocodes  atomic.Int32
	districts atomic.Int32
}

func newFakeAustin(t *testing.T) *fakeAustin {
	t.Helper()
	f := &fakeAustin{}
	mux := http.NewServeMux()
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "AGS_ROLES", Value: "primed", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		if _, err := r.Cookie("AGS_ROLES"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		addr := r.URL.Query().Get("SingleLine")
		w.Header().Set("Content-Type", "text/javascript")
		switch {
		case strings.Contains(addr, "Nowhere"):
			_, _ = w.Write([]byte(`callback({"spatialReference":{"wkid":2277},"candidates":[]});`))
		case strings.Contains(addr, "Outside"):
			_, _ = w.Write([]byte(candidateJSONP("1 OUTSIDE WAY", 1, 2)))
		default:
			_, _ = w.Write([]byte(candidateJSONP(strings.ToUpper(strings.TrimSpace(strings.SplitN(addr, ",", 2)[0])), 3113942.75, 10070180.02)))
		}
	})
	mux.HandleFunc("/district", func(w http.ResponseWriter, r *http.Request) {
		f.districts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("geometry") == "1,2" {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"displayFieldName":"","features":[{"attributes":{"COUNCIL_DISTRICT":9}}]}`))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func candidateJSONP(address string, x, y float64) string {
	return fmt.Sprintf(`callback({"spatialReference":{"wkid":2277},"candidates":[{"address":%q,"location":{"x":%.2f,"y":%.2f},"score":100,"attributes":{},"extent":{"xmin":%.2f,"ymin":%.2f,"xmax":%.2f,"ymax":%.2f}}]});`,
		address, x, y, x-100, y-100, x+100, y+100)
}

func (f *fakeAustin) config() *config.Config {
	return &config.Config{
		Austin: config.AustinConfig{
			LandingURL:  f.srv.URL + "/landing",
			GeocodeURL:  f.srv.URL + "/geocode",
			DistrictURL: f.srv.URL + "/district",
			UserAgent:   "augment-cli-test",
			TimeoutSecs: 5,
		},
		Log: config.LogConfig{Level: "warn", Format: "console"},
	}
}

// setAustinEnv points the config loader at f.
func (f *fakeAustin) setAustinEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUGMENT_AUSTIN_LANDING_URL", f.srv.URL+"/landing")
	t.Setenv("AUGMENT_AUSTIN_GEOCODE_URL", f.srv.URL+"/geocode")
	t.Setenv("AUGMENT_AUSTIN_DISTRICT_URL", f.srv.URL+"/district")
	t.Setenv("AUGMENT_AUGMENT_INTERVAL_SECS", "0")
}
