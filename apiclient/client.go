// Package apiclient is the request gateway for the download-manager REST API.
//
// Every call reads the bearer token from the credential store at send time,
// so a login or logout takes effect on the very next request. Failures of any
// kind are reported as *RequestError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/dlmgr/internal/credential"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/pslog"
)

const (
	// DefaultTimeout bounds ordinary request/response calls.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "dlmgr"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	maxErrorBody    = 1 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend origin, optionally with a path prefix.
	BaseURL string
	// HTTPClient overrides the HTTP client. Its transport is wrapped with
	// request logging.
	HTTPClient *http.Client
	// Timeout applies to ordinary calls. Streams are not bounded by it.
	Timeout   time.Duration
	UserAgent string
	// Credentials holds the bearer token. A nil store keeps the token in memory.
	Credentials *credential.Store
	// Saver picks the local destination of downloaded files.
	Saver  Saver
	Logger pslog.Logger
}

// Client talks to the backend.
type Client struct {
	base   string
	http   *http.Client
	stream *http.Client
	creds  *credential.Store
	saver  Saver
	ua     string
	log    pslog.Logger
}

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	creds := cfg.Credentials
	if creds == nil {
		creds, err = credential.NewStore(nil, logger)
		if err != nil {
			return nil, err
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	}
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	httpClient.Transport = &loggingTransport{next: next, log: logger}
	streamClient := httpClient
	streamClient.Timeout = 0
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	saver := cfg.Saver
	if saver == nil {
		saver = DirSaver{Dir: "."}
	}
	return &Client{
		base:   base,
		http:   &httpClient,
		stream: &streamClient,
		creds:  creds,
		saver:  saver,
		ua:     ua,
		log:    logger.With("api", base),
	}, nil
}

// BaseURL returns the normalised backend origin.
func (c *Client) BaseURL() string {
	return c.base
}

// Credentials returns the credential store used for every request.
func (c *Client) Credentials() *credential.Store {
	return c.creds
}

// Send issues a request against endpoint (a path relative to the base URL,
// optionally with a query string). body is JSON encoded unless it is an
// io.Reader, which is sent verbatim. Entries in header override the defaults,
// including Content-Type. A 204 response yields a nil result.
func (c *Client) Send(ctx context.Context, method, endpoint string, body any, header http.Header) (json.RawMessage, error) {
	return c.send(ctx, method, endpoint, op{body: body, header: header})
}

// op describes one routed call.
type op struct {
	route  Route
	args   []string
	query  url.Values
	body   any
	header http.Header
	// fallback replaces the generic message for unparseable error bodies.
	fallback string
	// anonymous calls never carry the bearer token.
	anonymous bool
}

func (c *Client) send(ctx context.Context, method, endpoint string, o op) (json.RawMessage, error) {
	fallback := o.fallback
	if fallback == "" {
		fallback = fallbackDefault
	}
	req, err := c.newRequest(ctx, method, endpoint, o.body, o.header)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	if !o.anonymous {
		c.authorize(req)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp, fallback)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any, header http.Header) (*http.Request, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", schema.ErrInvalidRequest, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.ua)
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return req, nil
}

func (c *Client) authorize(req *http.Request) {
	tok, err := c.creds.Token()
	if err != nil {
		return
	}
	tok.SetAuthHeader(req)
}

// call expands route, sends body and decodes the result into out.
func (c *Client) call(ctx context.Context, route Route, args []string, query url.Values, body, out any) error {
	return c.do(ctx, op{route: route, args: args, query: query, body: body}, out)
}

func (c *Client) do(ctx context.Context, o op, out any) error {
	endpoint, err := o.endpoint()
	if err != nil {
		return &RequestError{Message: err.Error(), Err: err}
	}
	raw, err := c.send(ctx, o.route.Method, endpoint, o)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (o op) endpoint() (string, error) {
	endpoint, err := o.route.Expand(o.args...)
	if err != nil {
		return "", err
	}
	if encoded := encodeQuery(o.query); encoded != "" {
		endpoint += "?" + encoded
	}
	return endpoint, nil
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return nil
}

// encodeQuery encodes values like encodeURIComponent: spaces become %20.
func encodeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	return strings.ReplaceAll(values.Encode(), "+", "%20")
}

func normalizeBaseURL(value string) (string, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", fmt.Errorf("%w: base url is required", schema.ErrInvalidBaseURL)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrInvalidBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", schema.ErrInvalidBaseURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", schema.ErrInvalidBaseURL)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("%w: query and fragment are not allowed", schema.ErrInvalidBaseURL)
	}
	path := strings.TrimRight(parsed.EscapedPath(), "/")
	return parsed.Scheme + "://" + parsed.Host + path, nil
}
