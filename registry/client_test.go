package registry_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net/http"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexreg/hexreg/hexpb"
	"github.com/hexreg/hexreg/registry"
	"github.com/hexreg/hexreg/transport"
	"github.com/hexreg/hexreg/transport/transporttest"
)

const repoURL = "https://repo.test"

func newClient(t *testing.T, fixture transport.Client, opts ...registry.Option) *registry.Client {
	t.Helper()
	opts = append([]registry.Option{
		registry.WithClient(fixture),
		registry.WithRepoURL(repoURL),
	}, opts...)
	c, err := registry.New(opts...)
	require.NoError(t, err)
	return c
}

func TestGetNames(t *testing.T) {
	key := transporttest.GenerateKey()
	names := hexpb.Names{Packages: []hexpb.NamesPackage{{Name: "ecto"}}}
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Body:   transporttest.SignedBody(names.Marshal(), key),
		ETag:   `"dummy"`,
	})

	c := newClient(t, fixture, registry.WithRSAPublicKey(&key.PublicKey))
	resp, err := c.GetNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"dummy"`, resp.ETag())
	require.NotNil(t, resp.Names)
	assert.Equal(t, names.Packages, resp.Names.Packages)
}

func TestGetNamesConditionalHit(t *testing.T) {
	key := transporttest.GenerateKey()
	names := hexpb.Names{Packages: []hexpb.NamesPackage{{Name: "ecto"}}}
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Body:   transporttest.SignedBody(names.Marshal(), key),
		ETag:   `"dummy"`,
	})

	// No public key configured: a 304 must return before the pipeline
	// would need one.
	c := newClient(t, fixture)
	resp, err := c.GetNames(context.Background(), registry.WithEtag(`"dummy"`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Equal(t, `"dummy"`, resp.ETag())
	assert.Empty(t, resp.Body)
	assert.Nil(t, resp.Names)
}

func TestGetVersions(t *testing.T) {
	key := transporttest.GenerateKey()
	versions := hexpb.Versions{Packages: []hexpb.VersionsPackage{
		{Name: "ecto", Versions: []string{"1.0.0", "1.1.0"}, Retired: []string{"1.0.0"}},
	}}
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/versions",
		Body:   transporttest.SignedBody(versions.Marshal(), key),
	})

	c := newClient(t, fixture, registry.WithRSAPublicKey(&key.PublicKey))
	resp, err := c.GetVersions(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Versions)
	assert.Equal(t, versions.Packages, resp.Versions.Packages)
}

func TestGetPackageAndTarball(t *testing.T) {
	key := transporttest.GenerateKey()
	tarballBody := []byte("outer tarball bytes")
	sum := sha256.Sum256(tarballBody)

	pkg := hexpb.Package{
		Name: "ecto",
		Releases: []hexpb.Release{{
			Version:  "1.0.0",
			Checksum: sum[:],
		}},
	}
	fixture := transporttest.New(
		transporttest.Route{
			Prefix: repoURL + "/packages/ecto",
			Body:   transporttest.SignedBody(pkg.Marshal(), key),
		},
		transporttest.Route{
			Prefix: repoURL + "/tarballs/ecto-1.0.0.tar",
			Body:   tarballBody,
		},
	)

	c := newClient(t, fixture, registry.WithRSAPublicKey(&key.PublicKey))
	pkgResp, err := c.GetPackage(context.Background(), "ecto")
	require.NoError(t, err)
	require.NotNil(t, pkgResp.Package)
	require.Len(t, pkgResp.Package.Releases, 1)

	tbResp, err := c.GetTarball(context.Background(), "ecto", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, tarballBody, tbResp.Body)

	release := pkgResp.Package.Releases[0]
	assert.NoError(t, tbResp.Verify(release.Checksum))

	var mismatch *registry.ChecksumMismatchError
	err = tbResp.Verify(make([]byte, sha256.Size))
	assert.ErrorAs(t, err, &mismatch)
}

func TestGetNamesTamperedSignature(t *testing.T) {
	key := transporttest.GenerateKey()
	names := hexpb.Names{Packages: []hexpb.NamesPackage{{Name: "ecto"}}}

	signed, err := registry.SignPayload(names.Marshal(), key)
	require.NoError(t, err)
	var msg hexpb.Signed
	require.NoError(t, msg.Unmarshal(signed))
	msg.Payload[0] ^= 0x01
	tampered := gzipBytes(t, msg.Marshal())

	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Body:   tampered,
	})

	c := newClient(t, fixture, registry.WithRSAPublicKey(&key.PublicKey))
	resp, err := c.GetNames(context.Background())
	assert.ErrorIs(t, err, registry.ErrVerification)
	assert.Nil(t, resp)
}

func TestGetNamesSkipVerify(t *testing.T) {
	key := transporttest.GenerateKey()
	names := hexpb.Names{Packages: []hexpb.NamesPackage{{Name: "ecto"}}}
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Body:   transporttest.SignedBody(names.Marshal(), key),
	})

	// No public key, verification disabled.
	c := newClient(t, fixture, registry.WithVerify(false))
	resp, err := c.GetNames(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Names)
	assert.Equal(t, "ecto", resp.Names.Packages[0].Name)
}

func TestGetNamesNoPublicKey(t *testing.T) {
	key := transporttest.GenerateKey()
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Body:   transporttest.SignedBody([]byte("payload"), key),
	})

	c := newClient(t, fixture)
	_, err := c.GetNames(context.Background())
	assert.ErrorIs(t, err, registry.ErrNoPublicKey)
}

func TestGetNamesErrorStatusPassesThrough(t *testing.T) {
	fixture := transporttest.New(transporttest.Route{
		Prefix: repoURL + "/names",
		Status: http.StatusForbidden,
		Body:   []byte("forbidden"),
	})

	c := newClient(t, fixture)
	resp, err := c.GetNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []byte("forbidden"), resp.Body)
	assert.Nil(t, resp.Names)
}

func TestPrivateRepoAuthorization(t *testing.T) {
	key := transporttest.GenerateKey()
	names := hexpb.Names{Packages: []hexpb.NamesPackage{{Name: "internal"}}}
	fixture := transporttest.New(transporttest.Route{
		Prefix:    repoURL + "/names",
		Body:      transporttest.SignedBody(names.Marshal(), key),
		Protected: true,
	})

	unauthed := newClient(t, fixture, registry.WithRSAPublicKey(&key.PublicKey))
	resp, err := unauthed.GetNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, resp.Names)

	authed := newClient(t, fixture,
		registry.WithRSAPublicKey(&key.PublicKey),
		registry.WithAPIKey("secret"),
	)
	resp, err = authed.GetNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, resp.Names)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestUnknownRoutePanics(t *testing.T) {
	fixture := transporttest.New()
	c := newClient(t, fixture)
	assert.Panics(t, func() {
		_, _ = c.GetNames(context.Background()) //nolint:errcheck // panics before returning
	})
}
