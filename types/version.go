package types

// Version is the canonical project version. The CLI, the control API,
// and persisted artifacts all report this single version.
const Version = "0.3.0"
