// Package hexreg is a client library for Hex-compatible package
// registries.
//
// It covers three concerns:
//
//   - Producing and consuming the package tarball format in a
//     byte-reproducible way, with dual checksums and strict validation
//     (the [tarball] subpackage).
//   - Fetching and cryptographically verifying the signed index resources
//     a repository serves: names, versions, and per-package release
//     listings (the [registry] subpackage).
//   - Talking to the registry's REST API (the [apiclient] subpackage).
//
// # Quick start
//
// Build a publishable tarball:
//
//	build, err := hexreg.Create(hexreg.Metadata{
//	    "name":    "example",
//	    "version": "1.0.0",
//	}, []hexreg.File{{Name: "src/example.erl", Data: src}})
//	if err != nil {
//	    return err
//	}
//	// build.Tarball is ready to publish; build.OuterChecksum identifies it.
//
// Fetch a verified package listing:
//
//	c, err := registry.New(registry.WithPublicKey(repoKeyPEM))
//	if err != nil {
//	    return err
//	}
//	resp, err := c.GetPackage(ctx, "ecto")
//
// All clients take an HTTP realization through the [transport.Client]
// seam; tests use the canned-route fixture in transporttest.
package hexreg
