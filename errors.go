package hexreg

import (
	"github.com/hexreg/hexreg/metadata"
	"github.com/hexreg/hexreg/registry"
	"github.com/hexreg/hexreg/tarball"
)

// Errors re-exported from tarball.
var (
	// ErrTooBig is returned when a tarball exceeds its size cap.
	ErrTooBig = tarball.ErrTooBig

	// ErrEmpty is returned when an outer archive has no entries.
	ErrEmpty = tarball.ErrEmpty

	// ErrInvalidInnerChecksum is returned when the CHECKSUM member does
	// not decode to 32 bytes.
	ErrInvalidInnerChecksum = tarball.ErrInvalidInnerChecksum
)

// Errors re-exported from metadata.
var (
	// ErrInvalidTerms is returned when metadata.config does not parse.
	ErrInvalidTerms = metadata.ErrInvalidTerms

	// ErrNotKeyValue is returned when metadata terms are not 2-tuples.
	ErrNotKeyValue = metadata.ErrNotKeyValue
)

// Errors re-exported from registry.
var (
	// ErrVerification is returned when a signed payload fails signature
	// verification.
	ErrVerification = registry.ErrVerification

	// ErrBadSigned is returned when a signed blob does not decode.
	ErrBadSigned = registry.ErrBadSigned

	// ErrNoPublicKey is returned when verification is enabled without a
	// configured repository public key.
	ErrNoPublicKey = registry.ErrNoPublicKey
)

// Structured error types re-exported from tarball.
type (
	// MissingFilesError reports required outer members that are absent.
	MissingFilesError = tarball.MissingFilesError

	// InvalidFilesError reports unexpected outer members.
	InvalidFilesError = tarball.InvalidFilesError

	// BadVersionError reports an unsupported VERSION member.
	BadVersionError = tarball.BadVersionError

	// InnerChecksumMismatchError reports a corrupted inner payload.
	InnerChecksumMismatchError = tarball.InnerChecksumMismatchError

	// ChecksumMismatchError reports a downloaded tarball that does not
	// match its registry-declared checksum.
	ChecksumMismatchError = registry.ChecksumMismatchError
)
