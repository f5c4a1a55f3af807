// Package main provides the spectosoft CLI entrypoint.
//
// `run` starts the monitoring agent in the foreground; every other
// command is a one-shot operation against the pending store.
//
// Usage:
//
//	spectosoft <command> [options]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/cli/cmd"
	"github.com/sayandeep-bot/spectosoft/types"
)

// commit is stamped by the linker at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "spectosoft",
		Usage:          "Workstation monitoring agent",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.SweepCommand(),
			cmd.PendingCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// Only non-ExitCoder errors reach here; exitErrHandler exits
		// for everything wrapped by cli.Exit.
		os.Exit(1)
	}
}

// exitErrHandler replaces urfave/cli's default handler so codes passed
// to cli.Exit survive to the process exit status.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// cli.Exit("", n) stringifies as "exit status n"; a silent exit
	// stays silent.
	if msg := coder.Error(); msg != "" && msg != fmt.Sprintf("exit status %d", coder.ExitCode()) {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(coder.ExitCode())
}
