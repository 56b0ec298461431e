// Package apiclient talks to the Hex REST API.
//
// Responses in the API's term-encoded content type are decoded into plain
// mappings; everything else is returned as raw bytes. All operations
// return the reply even for non-2xx statuses, so callers can inspect the
// decoded error body.
package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hexreg/hexreg/erlterm"
	"github.com/hexreg/hexreg/internal/version"
	"github.com/hexreg/hexreg/metadata"
	"github.com/hexreg/hexreg/transport"
)

// DefaultAPIURL is the public Hex API.
const DefaultAPIURL = "https://hex.pm/api"

// ContentType is the term-encoded media type used for typed REST bodies
// and responses.
const ContentType = "application/vnd.hex+erlang"

// ErrNoAPIKey is returned by operations that require authentication when
// no key is configured.
var ErrNoAPIKey = errors.New("apiclient: no API key configured")

// Client is a Hex REST API client.
type Client struct {
	hc        transport.Client
	apiURL    string
	apiKey    string
	headers   map[string]string
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// New creates an API client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		hc:        transport.Default(),
		apiURL:    DefaultAPIURL,
		userAgent: version.UserAgent,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithClient sets the HTTP realization.
func WithClient(hc transport.Client) Option {
	return func(c *Client) error {
		c.hc = hc
		return nil
	}
}

// WithAPIURL sets the API base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) error {
		c.apiURL = strings.TrimRight(u, "/")
		return nil
	}
}

// WithAPIKey sets the API key, sent as the authorization header.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithHeaders merges extra headers into every request. They win over the
// headers the client would otherwise set.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) error {
		if c.headers == nil {
			c.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			c.headers[k] = v
		}
		return nil
	}
}

// WithUserAgent overrides the user-agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithLogger sets a logger for debug output. Nil (the default) disables
// logging entirely.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	etag string
}

// WithEtag sends the given validator as if-none-match.
func WithEtag(etag string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.etag = etag
	}
}

// Reply is an API response. Decoded holds the term-decoded body when the
// response carries the term content type; otherwise it is nil and Body has
// the raw bytes.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Decoded    any
}

// ETag returns the etag response header, opaque and unmodified.
func (r *Reply) ETag() string {
	return r.Header.Get("etag")
}

// Get issues a GET request against an API path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Reply, error) {
	return c.request(ctx, http.MethodGet, path, nil, "", opts)
}

// Post issues a POST request with the given body and content type.
func (c *Client) Post(ctx context.Context, path string, body []byte, contentType string) (*Reply, error) {
	return c.request(ctx, http.MethodPost, path, body, contentType, nil)
}

// Delete issues a DELETE request against an API path.
func (c *Client) Delete(ctx context.Context, path string) (*Reply, error) {
	return c.request(ctx, http.MethodDelete, path, nil, "", nil)
}

func (c *Client) request(ctx context.Context, method, path string, body []byte, contentType string, opts []RequestOption) (*Reply, error) {
	cfg := requestConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	headers := map[string]string{
		"accept":     ContentType,
		"user-agent": c.userAgent,
	}
	if c.apiKey != "" {
		headers["authorization"] = c.apiKey
	}
	if cfg.etag != "" {
		headers["if-none-match"] = cfg.etag
	}
	if contentType != "" {
		headers["content-type"] = contentType
	}
	for k, v := range c.headers {
		headers[k] = v
	}

	uri := c.apiURL + path
	resp, err := c.hc.Request(ctx, method, uri, headers, body)
	if err != nil {
		return nil, err
	}
	c.log().Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	reply := &Reply{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
	if isTermResponse(resp) {
		decoded, err := decodeTerms(resp.Body)
		if err != nil {
			return nil, err
		}
		reply.Decoded = decoded
	}
	return reply, nil
}

func isTermResponse(resp *transport.Response) bool {
	return len(resp.Body) > 0 && strings.HasPrefix(resp.Header.Get("content-type"), ContentType)
}

// decodeTerms converts a term-encoded body into plain Go values. A body of
// one term decodes to that value; several terms decode to a slice.
func decodeTerms(body []byte) (any, error) {
	terms, err := erlterm.Parse(body)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(terms))
	for i, t := range terms {
		values[i] = mapped(metadata.FromTerm(t))
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// mapped coerces pair lists into mappings recursively, so callers see API
// objects as map[string]any.
func mapped(v any) any {
	switch val := v.(type) {
	case []any:
		if m, ok := pairList(val); ok {
			return m
		}
		for i, e := range val {
			val[i] = mapped(e)
		}
		return val
	default:
		return v
	}
}

func pairList(list []any) (map[string]any, bool) {
	if len(list) == 0 {
		return nil, false
	}
	m := make(map[string]any, len(list))
	for _, elem := range list {
		tup, ok := elem.(erlterm.Tuple)
		if !ok || len(tup) != 2 {
			return nil, false
		}
		key, ok := tup[0].(string)
		if !ok {
			return nil, false
		}
		m[key] = mapped(tup[1])
	}
	return m, true
}

// joinPath builds an API path from escaped segments.
func joinPath(segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

// withQuery appends an encoded query string when params is non-empty.
func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
