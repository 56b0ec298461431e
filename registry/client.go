package registry

import (
	"bytes"
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/klauspost/compress/gzip"

	"github.com/hexreg/hexreg/hexpb"
	"github.com/hexreg/hexreg/transport"
)

// DefaultRepoURL is the public Hex repository.
const DefaultRepoURL = "https://repo.hex.pm"

// ErrNoPublicKey is returned when a signed resource is fetched with
// verification enabled but no repository public key configured.
var ErrNoPublicKey = errors.New("registry: no repository public key configured")

// Client fetches signed index resources and tarballs from a repository.
//
// A zero-option client talks to the public repository over the default
// transport with signature verification enabled; a public key must be
// supplied before any signed resource can be fetched. The client holds no
// request state, so it is safe for concurrent use whenever its transport
// is.
type Client struct {
	hc        transport.Client
	repoURL   string
	publicKey *rsa.PublicKey
	verify    bool
	apiKey    string
	headers   map[string]string
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// New creates a repository client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		hc:        transport.Default(),
		repoURL:   DefaultRepoURL,
		verify:    true,
		userAgent: UserAgent,
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

// WithRepoURL sets the repository base URL.
func WithRepoURL(u string) Option {
	return func(c *Client) error {
		c.repoURL = u
		return nil
	}
}

// WithPublicKey sets the repository public key from PEM bytes.
func WithPublicKey(pemData []byte) Option {
	return func(c *Client) error {
		key, err := ParsePublicKey(pemData)
		if err != nil {
			return err
		}
		c.publicKey = key
		return nil
	}
}

// WithRSAPublicKey sets an already-parsed repository public key.
func WithRSAPublicKey(key *rsa.PublicKey) Option {
	return func(c *Client) error {
		c.publicKey = key
		return nil
	}
}

// WithVerify gates signature verification. Disabling it is for development
// and tests only.
func WithVerify(verify bool) Option {
	return func(c *Client) error {
		c.verify = verify
		return nil
	}
}

// WithAPIKey sets the repository auth key, sent as the authorization
// header. Private repositories require one.
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

// GetOption configures a single request.
type GetOption func(*getConfig)

type getConfig struct {
	etag string
}

// WithEtag sends the given validator as if-none-match; a matching server
// tag yields a 304 response with an empty body.
func WithEtag(etag string) GetOption {
	return func(cfg *getConfig) {
		cfg.etag = etag
	}
}

// Reply is the common part of every response: the status, headers, and raw
// body as returned by the transport.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ETag returns the etag response header, opaque and unmodified.
func (r *Reply) ETag() string {
	return r.Header.Get("etag")
}

// NamesResponse is the decoded /names resource. Names is set only on 200.
type NamesResponse struct {
	Reply
	Names *hexpb.Names
}

// VersionsResponse is the decoded /versions resource. Versions is set only
// on 200.
type VersionsResponse struct {
	Reply
	Versions *hexpb.Versions
}

// PackageResponse is the decoded /packages/{name} resource. Package is set
// only on 200.
type PackageResponse struct {
	Reply
	Package *hexpb.Package
}

// GetNames fetches the package name listing.
func (c *Client) GetNames(ctx context.Context, opts ...GetOption) (*NamesResponse, error) {
	reply, payload, err := c.getSigned(ctx, "/names", opts)
	if err != nil {
		return nil, err
	}
	resp := &NamesResponse{Reply: *reply}
	if payload != nil {
		resp.Names = new(hexpb.Names)
		if err := resp.Names.Unmarshal(payload); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GetVersions fetches the version listing for every package.
func (c *Client) GetVersions(ctx context.Context, opts ...GetOption) (*VersionsResponse, error) {
	reply, payload, err := c.getSigned(ctx, "/versions", opts)
	if err != nil {
		return nil, err
	}
	resp := &VersionsResponse{Reply: *reply}
	if payload != nil {
		resp.Versions = new(hexpb.Versions)
		if err := resp.Versions.Unmarshal(payload); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GetPackage fetches the release listing for one package.
func (c *Client) GetPackage(ctx context.Context, name string, opts ...GetOption) (*PackageResponse, error) {
	reply, payload, err := c.getSigned(ctx, "/packages/"+url.PathEscape(name), opts)
	if err != nil {
		return nil, err
	}
	resp := &PackageResponse{Reply: *reply}
	if payload != nil {
		resp.Package = new(hexpb.Package)
		if err := resp.Package.Unmarshal(payload); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// getSigned runs the signed-resource pipeline: request, then on 200 gunzip
// the body, check the envelope signature, and hand back the payload. Any
// other status passes through with a nil payload; a 304 body stays empty
// and is never gunzipped or verified.
func (c *Client) getSigned(ctx context.Context, path string, opts []GetOption) (*Reply, []byte, error) {
	reply, err := c.get(ctx, path, opts)
	if err != nil {
		return nil, nil, err
	}
	if reply.StatusCode != http.StatusOK {
		c.log().Debug("registry fetch", "path", path, "status", reply.StatusCode)
		return reply, nil, nil
	}

	body, err := gunzipBody(reply.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("registry: gunzip %s: %w", path, err)
	}

	var payload []byte
	if c.verify {
		if c.publicKey == nil {
			return nil, nil, ErrNoPublicKey
		}
		payload, err = VerifyPayload(body, c.publicKey)
	} else {
		payload, err = ExtractPayload(body)
	}
	if err != nil {
		return nil, nil, err
	}
	c.log().Debug("registry fetch", "path", path, "status", reply.StatusCode, "verified", c.verify)
	return reply, payload, nil
}

func (c *Client) get(ctx context.Context, path string, opts []GetOption) (*Reply, error) {
	cfg := getConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	headers := map[string]string{
		"user-agent": c.userAgent,
	}
	if c.apiKey != "" {
		headers["authorization"] = c.apiKey
	}
	if cfg.etag != "" {
		headers["if-none-match"] = cfg.etag
	}
	for k, v := range c.headers {
		headers[k] = v
	}

	resp, err := c.hc.Request(ctx, http.MethodGet, c.repoURL+path, headers, nil)
	if err != nil {
		return nil, err
	}
	return &Reply{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

func gunzipBody(body []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
