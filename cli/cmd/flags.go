// Package cmd provides CLI commands for the spectosoft binary.
package cmd

import "github.com/urfave/cli/v2"

// Flags shared across the read-only commands.
var (
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// TUIFlag is parsed by every read-only command, but only pending
	// acts on it. The rest reject it with a pointed message instead of
	// urfave's generic "flag provided but not defined".
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (pending only)",
	}

	// ConfigFlag points at the agent config file. The default path is
	// optional; an explicitly passed path must exist.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the agent config file",
		Value:   "agent.yaml",
	}

	// DataRootFlag overrides the pending store directory.
	DataRootFlag = &cli.StringFlag{
		Name:  "data-root",
		Usage: "Pending store directory",
	}

	// S3PathFlag overrides the S3 destination for the s3 backend.
	S3PathFlag = &cli.StringFlag{
		Name:  "s3-path",
		Usage: "S3 destination as bucket or bucket/prefix (s3 backend only)",
	}
)

// ReadOnlyFlags is the flag set every read-only command starts from.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		TUIFlag,
	}
}
