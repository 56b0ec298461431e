// Package hexpb encodes and decodes the protobuf messages of the Hex
// registry wire format: the signed envelope and the names, versions, and
// package resources.
//
// The message set is four small messages with stable field numbers, so the
// codecs are maintained by hand on top of protowire rather than generated.
// Unknown fields are skipped on decode for forward compatibility.
package hexpb

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned when a message does not decode.
var ErrMalformed = errors.New("hexpb: malformed message")

// Signed is the envelope carrying a payload and its RSA signature.
type Signed struct {
	Payload   []byte // field 1
	Signature []byte // field 2
}

// Marshal encodes the envelope.
func (s *Signed) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, s.Payload)
	b = appendBytesField(b, 2, s.Signature)
	return b
}

// Unmarshal decodes the envelope.
func (s *Signed) Unmarshal(data []byte) error {
	return eachField(data, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			s.Payload = cloneBytes(v)
		case 2:
			s.Signature = cloneBytes(v)
		}
		return nil
	})
}

// Names is the /names resource: the full package name listing.
type Names struct {
	Packages   []NamesPackage // field 1
	Repository string         // field 2
}

// NamesPackage is one entry in Names.
type NamesPackage struct {
	Name string // field 1
}

// Marshal encodes the resource.
func (n *Names) Marshal() []byte {
	var b []byte
	for _, p := range n.Packages {
		var sub []byte
		sub = appendStringField(sub, 1, p.Name)
		b = appendBytesField(b, 1, sub)
	}
	b = appendStringField(b, 2, n.Repository)
	return b
}

// Unmarshal decodes the resource.
func (n *Names) Unmarshal(data []byte) error {
	return eachField(data, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			var p NamesPackage
			if err := eachField(v, func(num protowire.Number, v []byte) error {
				if num == 1 {
					p.Name = string(v)
				}
				return nil
			}); err != nil {
				return err
			}
			n.Packages = append(n.Packages, p)
		case 2:
			n.Repository = string(v)
		}
		return nil
	})
}

// Versions is the /versions resource: every version of every package.
type Versions struct {
	Packages   []VersionsPackage // field 1
	Repository string            // field 2
}

// VersionsPackage is one entry in Versions.
type VersionsPackage struct {
	Name     string   // field 1
	Versions []string // field 2
	Retired  []string // field 3
}

// Marshal encodes the resource.
func (vs *Versions) Marshal() []byte {
	var b []byte
	for _, p := range vs.Packages {
		var sub []byte
		sub = appendStringField(sub, 1, p.Name)
		for _, v := range p.Versions {
			sub = appendStringField(sub, 2, v)
		}
		for _, r := range p.Retired {
			sub = appendStringField(sub, 3, r)
		}
		b = appendBytesField(b, 1, sub)
	}
	b = appendStringField(b, 2, vs.Repository)
	return b
}

// Unmarshal decodes the resource.
func (vs *Versions) Unmarshal(data []byte) error {
	return eachField(data, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			var p VersionsPackage
			if err := eachField(v, func(num protowire.Number, v []byte) error {
				switch num {
				case 1:
					p.Name = string(v)
				case 2:
					p.Versions = append(p.Versions, string(v))
				case 3:
					p.Retired = append(p.Retired, string(v))
				}
				return nil
			}); err != nil {
				return err
			}
			vs.Packages = append(vs.Packages, p)
		case 2:
			vs.Repository = string(v)
		}
		return nil
	})
}

// Package is the /packages/{name} resource: the release listing for one
// package.
type Package struct {
	Releases   []Release // field 1
	Name       string    // field 2
	Repository string    // field 3
}

// Release is one published version of a package.
type Release struct {
	Version      string       // field 1
	Checksum     []byte       // field 2
	Dependencies []Dependency // field 3
}

// Dependency is one requirement of a release.
type Dependency struct {
	Package     string // field 1
	Requirement string // field 2
	Optional    bool   // field 3
	App         string // field 4
}

// Marshal encodes the resource.
func (p *Package) Marshal() []byte {
	var b []byte
	for _, r := range p.Releases {
		b = appendBytesField(b, 1, r.marshal())
	}
	b = appendStringField(b, 2, p.Name)
	b = appendStringField(b, 3, p.Repository)
	return b
}

func (r *Release) marshal() []byte {
	var b []byte
	b = appendStringField(b, 1, r.Version)
	b = appendBytesField(b, 2, r.Checksum)
	for _, d := range r.Dependencies {
		var sub []byte
		sub = appendStringField(sub, 1, d.Package)
		sub = appendStringField(sub, 2, d.Requirement)
		if d.Optional {
			sub = protowire.AppendTag(sub, 3, protowire.VarintType)
			sub = protowire.AppendVarint(sub, 1)
		}
		sub = appendStringField(sub, 4, d.App)
		b = appendBytesField(b, 3, sub)
	}
	return b
}

// Unmarshal decodes the resource.
func (p *Package) Unmarshal(data []byte) error {
	return eachField(data, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			var r Release
			if err := r.unmarshal(v); err != nil {
				return err
			}
			p.Releases = append(p.Releases, r)
		case 2:
			p.Name = string(v)
		case 3:
			p.Repository = string(v)
		}
		return nil
	})
}

func (r *Release) unmarshal(data []byte) error {
	return eachField(data, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			r.Version = string(v)
		case 2:
			r.Checksum = cloneBytes(v)
		case 3:
			var d Dependency
			if err := eachField(v, func(num protowire.Number, v []byte) error {
				switch num {
				case 1:
					d.Package = string(v)
				case 2:
					d.Requirement = string(v)
				case 4:
					d.App = string(v)
				}
				return nil
			}); err != nil {
				return err
			}
			d.Optional = boolField(v, 3)
			r.Dependencies = append(r.Dependencies, d)
		}
		return nil
	})
}
