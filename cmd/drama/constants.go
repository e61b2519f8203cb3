package main

// Default limits for CLI commands.
const (
	DefaultKeynessLimit = 50
	DefaultShowLines    = 3
	DefaultAuditLimit   = 10
)

// Valid aggregate export formats.
var validFormats = []string{"json", "csv", "markdown"}
