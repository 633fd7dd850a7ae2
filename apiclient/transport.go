package apiclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type loggingTransport struct {
	next http.RoundTripper
	log  pslog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}
	resp, err := t.next.RoundTrip(req)
	logger := t.log.With("request_id", id)
	path := redactedPath(req.URL)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		logger.Debug("http client request failed", "method", req.Method, "path", path, "duration_ms", elapsed, "err", err)
		return nil, err
	}
	logger.Debug("http client request", "method", req.Method, "path", path, "status", resp.StatusCode, "duration_ms", elapsed)
	logger.Trace("http client request details", "ua", req.UserAgent(), "content_type", resp.Header.Get("Content-Type"))
	return resp, nil
}

// redactedPath hides a token carried in the query string.
func redactedPath(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	query := u.Query()
	if query.Has("token") {
		query.Set("token", "redacted")
	}
	return u.EscapedPath() + "?" + query.Encode()
}
