package tarball

import (
	"github.com/hexreg/hexreg/metadata"
)

// Version is the package tarball format version.
const Version = "3"

// Size caps enforced on creation and unpacking.
const (
	// MaxOuterSize caps the outer tarball.
	MaxOuterSize = 8 << 20

	// MaxInnerSize caps the uncompressed inner payload.
	MaxInnerSize = 64 << 20
)

// requiredFiles is the exact member set of an outer tarball, in creation
// order. The order is part of the reproducibility contract.
var requiredFiles = []string{"VERSION", "CHECKSUM", "metadata.config", "contents.tar.gz"}

// Build is the result of Create.
type Build struct {
	// Tarball holds the outer tarball bytes, ready to publish.
	Tarball []byte

	// InnerChecksum is the legacy checksum embedded in the CHECKSUM member.
	InnerChecksum Checksum

	// OuterChecksum is the authoritative checksum of the tarball bytes.
	// Compare this value against the checksum recorded by the registry.
	OuterChecksum Checksum
}

// Create builds a package tarball from metadata and files.
//
// The output is byte-reproducible: equal metadata and files yield identical
// tarballs. Returns ErrTooBig when the outer tarball exceeds MaxOuterSize
// or the uncompressed inner payload exceeds MaxInnerSize.
func Create(meta metadata.Metadata, files []File) (*Build, error) {
	metaBytes, err := metadata.Encode(meta)
	if err != nil {
		return nil, err
	}

	inner, err := writeTar(files)
	if err != nil {
		return nil, err
	}
	innerGz, err := gzipCompress(inner)
	if err != nil {
		return nil, err
	}

	innerChk := NewChecksum(concat([]byte(Version), metaBytes, innerGz))

	outer, err := writeTar([]File{
		{Name: "VERSION", Data: []byte(Version)},
		{Name: "CHECKSUM", Data: []byte(innerChk.String())},
		{Name: "metadata.config", Data: metaBytes},
		{Name: "contents.tar.gz", Data: innerGz},
	})
	if err != nil {
		return nil, err
	}

	if len(outer) > MaxOuterSize || len(inner) > MaxInnerSize {
		return nil, ErrTooBig
	}

	return &Build{
		Tarball:       outer,
		InnerChecksum: innerChk,
		OuterChecksum: NewChecksum(outer),
	}, nil
}

// CreateDocs builds a gzipped documentation tarball from files, applying
// the same size caps as Create.
func CreateDocs(files []File) ([]byte, error) {
	inner, err := writeTar(files)
	if err != nil {
		return nil, err
	}
	gz, err := gzipCompress(inner)
	if err != nil {
		return nil, err
	}
	if len(gz) > MaxOuterSize || len(inner) > MaxInnerSize {
		return nil, ErrTooBig
	}
	return gz, nil
}

func concat(parts ...[]byte) []byte {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
