package apiclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexreg/hexreg/apiclient"
	"github.com/hexreg/hexreg/transport"
	"github.com/hexreg/hexreg/transport/transporttest"
)

const apiURL = "https://api.test/api"

func newClient(t *testing.T, hc transport.Client, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	opts = append([]apiclient.Option{
		apiclient.WithClient(hc),
		apiclient.WithAPIURL(apiURL),
	}, opts...)
	c, err := apiclient.New(opts...)
	require.NoError(t, err)
	return c
}

func termRoute(prefix string, status int, body string) transporttest.Route {
	return transporttest.Route{
		Prefix: prefix,
		Status: status,
		Header: map[string]string{"content-type": apiclient.ContentType},
		Body:   []byte(body),
	}
}

func TestGetPackageNotFound(t *testing.T) {
	fixture := transporttest.New(termRoute(
		apiURL+"/packages/nonexisting",
		http.StatusNotFound,
		"[{<<\"message\">>,<<\"Page not found\">>},{<<\"status\">>,404}].\n",
	))

	c := newClient(t, fixture)
	reply, err := c.GetPackage(context.Background(), "nonexisting")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, reply.StatusCode)
	assert.Equal(t, map[string]any{
		"message": "Page not found",
		"status":  int64(404),
	}, reply.Decoded)
}

func TestGetPackageDecodesBody(t *testing.T) {
	fixture := transporttest.New(termRoute(
		apiURL+"/packages/ecto",
		http.StatusOK,
		"[{<<\"name\">>,<<\"ecto\">>},{<<\"downloads\">>,100}].\n",
	))

	c := newClient(t, fixture)
	reply, err := c.GetPackage(context.Background(), "ecto")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":      "ecto",
		"downloads": int64(100),
	}, reply.Decoded)
}

func TestNonTermBodyLeftRaw(t *testing.T) {
	fixture := transporttest.New(transporttest.Route{
		Prefix: apiURL + "/packages/raw",
		Header: map[string]string{"content-type": "text/plain"},
		Body:   []byte("plain"),
	})

	c := newClient(t, fixture)
	reply, err := c.GetPackage(context.Background(), "raw")
	require.NoError(t, err)
	assert.Nil(t, reply.Decoded)
	assert.Equal(t, []byte("plain"), reply.Body)
}

func TestProtectedRouteNeedsAuthorization(t *testing.T) {
	fixture := transporttest.New(transporttest.Route{
		Prefix:    apiURL + "/keys",
		Protected: true,
		Header:    map[string]string{"content-type": apiclient.ContentType},
		Body:      []byte("[].\n"),
	})

	anon := newClient(t, fixture)
	reply, err := anon.Get(context.Background(), "/keys")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, reply.StatusCode)

	authed := newClient(t, fixture, apiclient.WithAPIKey("secret"))
	reply, err = authed.Get(context.Background(), "/keys")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.StatusCode)
}

func TestKeyHelpersRequireAPIKey(t *testing.T) {
	c := newClient(t, transporttest.New())
	_, err := c.ListKeys(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrNoAPIKey)
	_, err = c.DeleteAllKeys(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrNoAPIKey)
}

func TestConditionalRequest(t *testing.T) {
	fixture := transporttest.New(transporttest.Route{
		Prefix: apiURL + "/packages/ecto",
		Header: map[string]string{"content-type": apiclient.ContentType},
		Body:   []byte("[{<<\"name\">>,<<\"ecto\">>}].\n"),
		ETag:   `"abc"`,
	})

	c := newClient(t, fixture)
	reply, err := c.GetPackage(context.Background(), "ecto", apiclient.WithEtag(`"abc"`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, reply.StatusCode)
	assert.Empty(t, reply.Body)
	assert.Nil(t, reply.Decoded)
}

// recordingClient captures the last request for header assertions.
type recordingClient struct {
	method  string
	uri     string
	headers map[string]string
	body    []byte
	resp    *transport.Response
}

func (r *recordingClient) Request(_ context.Context, method, uri string, headers map[string]string, body []byte) (*transport.Response, error) {
	r.method = method
	r.uri = uri
	r.headers = headers
	r.body = body
	if r.resp != nil {
		return r.resp, nil
	}
	return &transport.Response{StatusCode: http.StatusNoContent, Header: http.Header{}}, nil
}

func TestRequestHeaders(t *testing.T) {
	rec := &recordingClient{}
	c := newClient(t, rec,
		apiclient.WithAPIKey("secret"),
		apiclient.WithHeaders(map[string]string{"x-custom": "1", "accept": "application/json"}),
	)

	_, err := c.Get(context.Background(), "/users/me", apiclient.WithEtag(`"tag"`))
	require.NoError(t, err)

	assert.Equal(t, "secret", rec.headers["authorization"])
	assert.Equal(t, `"tag"`, rec.headers["if-none-match"])
	assert.Equal(t, "1", rec.headers["x-custom"])
	// User headers merge last and win.
	assert.Equal(t, "application/json", rec.headers["accept"])
	assert.NotEmpty(t, rec.headers["user-agent"])
}

func TestPublishTarballContentType(t *testing.T) {
	rec := &recordingClient{}
	c := newClient(t, rec, apiclient.WithAPIKey("secret"))

	_, err := c.PublishTarball(context.Background(), []byte("tarball"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, apiURL+"/publish", rec.uri)
	assert.Equal(t, "application/octet-stream", rec.headers["content-type"])
	assert.Equal(t, []byte("tarball"), rec.body)
}

func TestPathEscaping(t *testing.T) {
	rec := &recordingClient{}
	c := newClient(t, rec)

	_, err := c.GetRelease(context.Background(), "my pkg", "1.0.0+build")
	require.NoError(t, err)
	assert.Equal(t, apiURL+"/packages/my%20pkg/releases/1.0.0+build", rec.uri)
}

func TestSearchPackagesQuery(t *testing.T) {
	rec := &recordingClient{}
	c := newClient(t, rec)

	_, err := c.SearchPackages(context.Background(), "json parser", 2)
	require.NoError(t, err)
	assert.Equal(t, apiURL+"/packages?page=2&search=json+parser", rec.uri)
}
