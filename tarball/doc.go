// Package tarball creates and unpacks Hex package tarballs.
//
// A package tarball is a plain tar archive with exactly four members:
// VERSION, CHECKSUM, metadata.config, and contents.tar.gz. The inner
// contents.tar.gz is a tar of the package files gzipped with a canonical
// header, so that creating the same package twice yields byte-identical
// output. Two checksums cover the artifact: the legacy inner checksum
// embedded in CHECKSUM, and the outer checksum over the whole tarball.
// The outer checksum is the authoritative identity; the inner check runs
// during unpack as a corruption detector.
package tarball
