package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/cli/config"
	"github.com/sayandeep-bot/spectosoft/cli/render"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// SweepReport is one kind's sweep outcome in CLI output.
type SweepReport struct {
	Kind      string `json:"kind"`
	Found     int    `json:"found"`
	Uploaded  int    `json:"uploaded"`
	Failed    int    `json:"failed"`
	Remaining int    `json:"remaining"`
}

// SweepCommand returns the sweep command: one retry pass over the
// pending backlog, then exit. Useful from cron or for manually draining
// a machine before decommissioning it.
func SweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Retry delivery of the pending backlog once and exit",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			DataRootFlag,
			S3PathFlag,
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Artifact kind to sweep: video, screenshot, activity (default: all)",
			},
		),
		Action: sweepAction,
	}
}

func sweepAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for sweep command", 1)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	kinds := types.Kinds()
	if name := c.String("kind"); name != "" {
		kind := types.Kind(name)
		if !kind.Valid() {
			return cli.Exit(
				fmt.Sprintf("unknown kind: %s (must be video, screenshot, or activity)", name), 1)
		}
		kinds = []types.Kind{kind}
	}

	uploader, backendName, err := buildUploader(uploaderChoiceFrom(c, cfg))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	agentID, err := resolveAgentID(cfg)
	if err != nil {
		return err
	}

	store := pending.NewStore(resolveStoreRoot(c, cfg))
	logger := log.NewLogger(agentID).WithService("sweep")
	collector := metrics.NewCollector(agentID, backendName)
	engine := upload.NewEngine(store, uploader, logger, collector)

	reports := make([]SweepReport, 0, len(kinds))
	for _, kind := range kinds {
		res := engine.Sweep(context.Background(), kind)
		reports = append(reports, SweepReport{
			Kind:      string(res.Kind),
			Found:     res.Found,
			Uploaded:  res.Uploaded,
			Failed:    res.Failed,
			Remaining: res.Remaining(),
		})
	}

	return r.Render(reports)
}

// resolveStoreRoot applies the --data-root override and default for
// commands that open the store without assembling an agent.
func resolveStoreRoot(c *cli.Context, cfg *config.Config) string {
	if v := c.String("data-root"); v != "" {
		return v
	}
	if cfg.DataRoot != "" {
		return cfg.DataRoot
	}
	return defaultDataRoot
}
