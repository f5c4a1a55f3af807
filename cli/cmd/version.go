package cmd

import (
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/cli/render"
	"github.com/sayandeep-bot/spectosoft/types"
)

// VersionResponse is the version command's output shape.
type VersionResponse struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// VersionCommand returns the version command. The commit is stamped at
// build time by the linker; the rest comes from the runtime.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", 1)
		}
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		return r.Render(VersionResponse{
			Version:  types.Version,
			Commit:   commit,
			Go:       runtime.Version(),
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		})
	}
}
