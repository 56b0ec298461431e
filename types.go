package hexreg

import (
	"github.com/hexreg/hexreg/hexpb"
	"github.com/hexreg/hexreg/metadata"
	"github.com/hexreg/hexreg/tarball"
)

// --- Re-exports from tarball ---

// Checksum is a SHA-256 digest of package content.
type Checksum = tarball.Checksum

// File is one entry for a package tarball.
type File = tarball.File

// Build is the result of Create.
type Build = tarball.Build

// Package is the result of unpacking a tarball.
type Package = tarball.Package

// Metadata is a package metadata mapping.
type Metadata = metadata.Metadata

// Tarball format constants.
const (
	Version      = tarball.Version
	MaxOuterSize = tarball.MaxOuterSize
	MaxInnerSize = tarball.MaxInnerSize
)

// Tarball engine entry points.
var (
	Create     = tarball.Create
	CreateDocs = tarball.CreateDocs
	Unpack     = tarball.Unpack
	UnpackTo   = tarball.UnpackTo
)

// --- Re-exports from hexpb ---

// Names is the /names registry resource.
type Names = hexpb.Names

// Versions is the /versions registry resource.
type Versions = hexpb.Versions

// RegistryPackage is the /packages/{name} registry resource.
type RegistryPackage = hexpb.Package

// Release is one published version within a RegistryPackage.
type Release = hexpb.Release

// Dependency is one requirement of a Release.
type Dependency = hexpb.Dependency
