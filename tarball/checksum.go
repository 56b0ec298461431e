package tarball

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Checksum is a SHA-256 digest of package content.
type Checksum [sha256.Size]byte

// NewChecksum computes the SHA-256 checksum of b.
func NewChecksum(b []byte) Checksum {
	return sha256.Sum256(b)
}

// ParseChecksum decodes a 64-character hex string. Both cases are accepted.
func ParseChecksum(s string) (Checksum, error) {
	var c Checksum
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("tarball: parse checksum: %w", err)
	}
	if len(b) != sha256.Size {
		return c, fmt.Errorf("tarball: parse checksum: got %d bytes, want %d", len(b), sha256.Size)
	}
	copy(c[:], b)
	return c, nil
}

// String renders the checksum as 64 uppercase hex characters, the form
// embedded in tarballs and shown to users.
func (c Checksum) String() string {
	return strings.ToUpper(hex.EncodeToString(c[:]))
}

// Hex renders the checksum as lowercase hex, matching the registry's
// display form.
func (c Checksum) Hex() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns the raw 32-byte digest.
func (c Checksum) Bytes() []byte {
	b := make([]byte, len(c))
	copy(b, c[:])
	return b
}

// Digest returns the checksum as an OCI-style digest for interop with
// digest-keyed stores.
func (c Checksum) Digest() digest.Digest {
	return digest.NewDigestFromBytes(digest.SHA256, c[:])
}
