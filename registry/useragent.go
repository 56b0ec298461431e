package registry

import "github.com/hexreg/hexreg/internal/version"

// UserAgent is the default user-agent header.
const UserAgent = version.UserAgent
