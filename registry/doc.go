// Package registry reads signed index resources from a Hex repository.
//
// The names, versions, and package resources arrive as gzipped, signed
// protobuf blobs; the client gunzips, verifies the RSA-SHA512 signature
// against the repository public key, and decodes the typed resource.
// Tarballs are fetched verbatim and checked by the caller against the
// checksum the registry declares.
package registry
