// Package version holds the library version shared by the client
// user-agent strings.
package version

// Version is the hexreg release version.
const Version = "0.1.0"

// UserAgent is the default user-agent header value.
const UserAgent = "hexreg/" + Version + " (go)"
