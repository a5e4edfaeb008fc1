package ir

// Version constants for the wire format and the module.
const (
	// IRVersion is the action/snapshot wire format version.
	IRVersion = "1"

	// Version is the reducto release version.
	Version = "0.1.0"
)
