package ir

// Version constants for figure specs and the tool.
const (
	// SpecVersion is the figure spec schema version.
	SpecVersion = "1"

	// ToolVersion is the curves release version.
	ToolVersion = "0.1.0"
)
