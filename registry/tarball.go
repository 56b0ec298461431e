package registry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/opencontainers/go-digest"
)

// TarballResponse carries a package tarball verbatim. The body is the
// outer tarball bytes; it is neither gzipped nor decoded by the client.
type TarballResponse struct {
	Reply
}

// ChecksumMismatchError reports a downloaded tarball whose digest differs
// from the registry-declared checksum.
type ChecksumMismatchError struct {
	Expected digest.Digest
	Actual   digest.Digest
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("registry: checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// GetTarball fetches the tarball for a package version. The caller must
// check the body against the checksum declared in the package resource,
// e.g. via Verify.
func (c *Client) GetTarball(ctx context.Context, name, version string, opts ...GetOption) (*TarballResponse, error) {
	path := fmt.Sprintf("/tarballs/%s-%s.tar", url.PathEscape(name), url.PathEscape(version))
	reply, err := c.get(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	c.log().Debug("registry fetch", "path", path, "status", reply.StatusCode, "bytes", len(reply.Body))
	return &TarballResponse{Reply: *reply}, nil
}

// Verify compares the body's SHA-256 digest against the raw checksum bytes
// declared by the registry.
func (r *TarballResponse) Verify(expected []byte) error {
	want := digest.NewDigestFromBytes(digest.SHA256, expected)
	actual := digest.FromBytes(r.Body)
	if actual != want {
		return &ChecksumMismatchError{Expected: want, Actual: actual}
	}
	return nil
}
