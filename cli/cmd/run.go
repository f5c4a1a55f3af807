package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/activity"
	"github.com/sayandeep-bot/spectosoft/agent"
	"github.com/sayandeep-bot/spectosoft/capture"
	"github.com/sayandeep-bot/spectosoft/cli/config"
	"github.com/sayandeep-bot/spectosoft/control"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// defaultDataRoot holds the pending store when neither the config file
// nor --data-root says otherwise.
const defaultDataRoot = "./spectosoft-data"

// RunCommand returns the run command: the long-lived agent process.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the monitoring agent in the foreground",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{
				Name:  "services",
				Usage: "Comma-separated services to start: recording, screenshots, activity",
				Value: "recording,screenshots,activity",
			},
			// Config overrides
			&cli.StringFlag{
				Name:  "agent-id",
				Usage: "Agent identity (default: config file, then hostname)",
			},
			DataRootFlag,
			&cli.StringFlag{
				Name:  "endpoint-url",
				Usage: "HTTP collection endpoint origin",
			},
			&cli.StringFlag{
				Name:  "uploader",
				Usage: "Delivery backend: http or s3",
			},
			S3PathFlag,
			&cli.StringFlag{
				Name:  "control-listen",
				Usage: "Control API listen address",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "Path to the ffmpeg binary",
			},
		},
		Action: runAction,
	}
}

// serviceChoice holds the parsed --services selection.
type serviceChoice struct {
	recording   bool
	screenshots bool
	activity    bool
}

// uploaderChoice holds the resolved delivery backend configuration.
type uploaderChoice struct {
	backend  string
	endpoint string
	headers  map[string]string
	s3       upload.S3Config
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	applyOverrides(c, cfg)

	services, err := parseServices(c.String("services"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	agentID, err := resolveAgentID(cfg)
	if err != nil {
		return err
	}
	logger := log.NewLogger(agentID)

	uploader, backendName, err := buildUploader(uploaderChoiceFrom(c, cfg))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var prober activity.WindowProber
	if len(cfg.Activity.WindowCommand) > 0 {
		prober = &activity.CommandProber{Command: cfg.Activity.WindowCommand}
	}

	ag, err := agent.New(agent.Config{
		AgentID:      agentID,
		Version:      types.Version,
		DataRoot:     cfg.DataRoot,
		Uploader:     uploader,
		UploaderName: backendName,
		FFmpeg: capture.FFmpegConfig{
			Binary:      c.String("ffmpeg"),
			Display:     cfg.Recording.Display,
			AudioDevice: cfg.Recording.AudioDevice,
		},
		Prober:                prober,
		ScreenshotInterval:    cfg.Screenshots.Interval.Duration,
		ActivityFlushInterval: cfg.Activity.FlushInterval.Duration,
		SweepInterval:         cfg.Sweep.Interval.Duration,
		Logger:                logger,
	})
	if err != nil {
		return fmt.Errorf("cannot assemble agent: %w", err)
	}

	params, err := cfg.RecordingParams()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger.Info("agent starting", map[string]any{
		"agent_id":  agentID,
		"version":   types.Version,
		"data_root": cfg.DataRoot,
		"uploader":  backendName,
	})

	if services.recording {
		ag.StartRecording(params)
	}
	if services.screenshots {
		ag.StartScreenshots()
	}
	if services.activity {
		ag.StartActivity()
	}

	var srv *control.Server
	serverErr := make(chan error, 1)
	if cfg.Control.Listen != "" {
		srv = control.NewServer(control.ServerConfig{
			Agent:     ag,
			Listen:    cfg.Control.Listen,
			Recording: params,
			Logger:    logger,
		})
		go func() { serverErr <- srv.ListenAndServe() }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", map[string]any{"signal": sig.String()})
	case err := <-serverErr:
		logger.Error("control server failed", map[string]any{"error": err.Error()})
		runErr = err
	}

	ag.StopAll()
	if srv != nil {
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("control server shutdown failed", map[string]any{"error": err.Error()})
		}
	}
	logger.Info("agent stopped", nil)

	return runErr
}

// loadConfig resolves the agent config file. An explicitly passed path
// must exist; the default path is optional so the agent can start on a
// machine with nothing but flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !c.IsSet("config") {
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return config.Load(path)
}

// applyOverrides copies explicit flag values over the loaded config and
// fills the data root default.
func applyOverrides(c *cli.Context, cfg *config.Config) {
	if v := c.String("agent-id"); v != "" {
		cfg.AgentID = v
	}
	if v := c.String("data-root"); v != "" {
		cfg.DataRoot = v
	}
	if v := c.String("endpoint-url"); v != "" {
		cfg.Endpoint.URL = v
	}
	if v := c.String("uploader"); v != "" {
		cfg.Uploader.Backend = v
	}
	if v := c.String("control-listen"); v != "" {
		cfg.Control.Listen = v
	}
	if cfg.DataRoot == "" {
		cfg.DataRoot = defaultDataRoot
	}
}

// resolveAgentID falls back to the hostname when the config carries no
// identity.
func resolveAgentID(cfg *config.Config) (string, error) {
	if cfg.AgentID != "" {
		return cfg.AgentID, nil
	}
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("no agent_id configured and hostname unavailable: %w", err)
	}
	return host, nil
}

// parseServices parses the --services selection.
func parseServices(s string) (serviceChoice, error) {
	var choice serviceChoice
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "recording":
			choice.recording = true
		case "screenshots":
			choice.screenshots = true
		case "activity":
			choice.activity = true
		case "":
		default:
			return serviceChoice{}, fmt.Errorf(
				"unknown service %q (must be recording, screenshots, or activity)", name)
		}
	}
	return choice, nil
}

// uploaderChoiceFrom maps the file config onto the resolved choice,
// with --s3-path taking precedence over the configured bucket/prefix.
func uploaderChoiceFrom(c *cli.Context, cfg *config.Config) uploaderChoice {
	choice := uploaderChoice{
		backend:  cfg.Uploader.Backend,
		endpoint: cfg.Endpoint.URL,
		headers:  cfg.Endpoint.Headers,
		s3: upload.S3Config{
			Bucket:       cfg.Uploader.S3.Bucket,
			Prefix:       cfg.Uploader.S3.Prefix,
			Region:       cfg.Uploader.S3.Region,
			Endpoint:     cfg.Uploader.S3.Endpoint,
			UsePathStyle: cfg.Uploader.S3.PathStyle,
		},
	}
	if v := c.String("s3-path"); v != "" {
		choice.s3.Bucket, choice.s3.Prefix = upload.ParseS3Path(v)
	}
	return choice
}

// buildUploader creates the delivery backend. The returned name labels
// the backend in metrics and status output.
func buildUploader(choice uploaderChoice) (upload.Uploader, string, error) {
	switch choice.backend {
	case "http", "":
		if choice.endpoint == "" {
			return nil, "", fmt.Errorf(
				"http uploader requires an endpoint URL (endpoint.url or --endpoint-url)")
		}
		up, err := upload.NewHTTPUploader(upload.HTTPConfig{
			BaseURL: choice.endpoint,
			Headers: choice.headers,
		})
		if err != nil {
			return nil, "", err
		}
		return up, "http", nil

	case "s3":
		up, err := upload.NewS3Uploader(context.Background(), choice.s3)
		if err != nil {
			return nil, "", err
		}
		return up, "s3", nil

	default:
		return nil, "", fmt.Errorf("unknown uploader backend: %s (must be http or s3)", choice.backend)
	}
}
