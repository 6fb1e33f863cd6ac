package session

import (
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	traceMaxLines = 64
	traceMaxChars = 512
)

// traceTransport logs abbreviated request and response dumps.
type traceTransport struct {
	base     http.RoundTripper
	log      *zap.Logger
	dumpBody bool
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, t.dumpBody); err == nil {
		t.log.Debug("request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.String("dump", abbreviate(string(dump), '>')),
		)
	} else {
		t.log.Debug("request dump failed", zap.Error(err))
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug("request failed",
			zap.String("url", req.URL.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	// DumpResponse replaces resp.Body with an equivalent reader when the body is dumped.
	if dump, dumpErr := httputil.DumpResponse(resp, t.dumpBody); dumpErr == nil {
		t.log.Debug("response",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("dump", abbreviate(string(dump), '<')),
		)
	} else {
		t.log.Debug("response dump failed", zap.Error(dumpErr))
	}

	return resp, nil
}

// abbreviate prefixes each line of a dump and caps both line count and width.
func abbreviate(dump string, prefix rune) string {
	lines := strings.Split(strings.TrimRight(dump, "\r\n"), "\n")

	truncated := false
	if len(lines) > traceMaxLines {
		lines = lines[:traceMaxLines]
		truncated = true
	}

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if len(line) > traceMaxChars {
			line = line[:traceMaxChars] + "…"
		}
		lines[i] = string(prefix) + " " + line
	}
	if truncated {
		lines = append(lines, string(prefix)+" …")
	}

	return strings.Join(lines, "\n")
}
