package config

import (
	"fmt"
	"time"

	"github.com/sayandeep-bot/spectosoft/record"
	"github.com/sayandeep-bot/spectosoft/types"
)

// Config represents an agent.yaml configuration file.
// All values are optional and act as defaults for spectosoft run flags.
// CLI flags always override config values.
type Config struct {
	AgentID     string            `yaml:"agent_id"`
	DataRoot    string            `yaml:"data_root"`
	Endpoint    EndpointConfig    `yaml:"endpoint"`
	Uploader    UploaderConfig    `yaml:"uploader"`
	Recording   RecordingConfig   `yaml:"recording"`
	Screenshots ScreenshotsConfig `yaml:"screenshots"`
	Activity    ActivityConfig    `yaml:"activity"`
	Sweep       SweepConfig       `yaml:"sweep"`
	Control     ControlConfig     `yaml:"control"`
}

// EndpointConfig holds the HTTP collection endpoint settings.
type EndpointConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// UploaderConfig selects the delivery backend.
type UploaderConfig struct {
	// Backend is "http" (default) or "s3".
	Backend string   `yaml:"backend"`
	S3      S3Config `yaml:"s3"`
}

// S3Config holds S3 delivery settings from the config file.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// Endpoint points at an S3-compatible provider; empty uses AWS.
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// RecordingConfig holds recording defaults from the config file.
// Boolean fields are pointers so an explicit false survives merging
// over the stock defaults, which enable both.
type RecordingConfig struct {
	Width           int      `yaml:"width"`
	Height          int      `yaml:"height"`
	FPS             int      `yaml:"fps"`
	SegmentDuration Duration `yaml:"segment_duration"`
	Container       string   `yaml:"container"`
	BitrateKbps     int      `yaml:"bitrate_kbps"`
	FlipVertical    *bool    `yaml:"flip_vertical,omitempty"`
	IncludeAudio    *bool    `yaml:"include_audio,omitempty"`
	Display         string   `yaml:"display"`
	AudioDevice     string   `yaml:"audio_device"`
}

// ScreenshotsConfig holds screenshot defaults from the config file.
type ScreenshotsConfig struct {
	Interval Duration `yaml:"interval"`
}

// ActivityConfig holds activity defaults from the config file.
type ActivityConfig struct {
	FlushInterval Duration `yaml:"flush_interval"`
	// WindowCommand is the focused-window probe: an executable and its
	// arguments printing "title<TAB>app" on one line. Empty disables
	// focus events.
	WindowCommand []string `yaml:"window_command,omitempty"`
}

// SweepConfig holds retry sweep defaults from the config file.
type SweepConfig struct {
	Interval Duration `yaml:"interval"`
}

// ControlConfig holds the management API settings. An empty listen
// address disables the control server.
type ControlConfig struct {
	Listen string `yaml:"listen"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// RecordingParams merges the recording section over the stock recording
// defaults. Unset fields keep their defaults; an unknown container is
// an error.
func (c *Config) RecordingParams() (record.Params, error) {
	params := record.DefaultParams()
	r := c.Recording
	if r.Width > 0 {
		params.Width = r.Width
	}
	if r.Height > 0 {
		params.Height = r.Height
	}
	if r.FPS > 0 {
		params.FPS = r.FPS
	}
	if r.SegmentDuration.Duration > 0 {
		params.SegmentDuration = r.SegmentDuration.Duration
	}
	if r.Container != "" {
		container, err := types.ParseContainer(r.Container)
		if err != nil {
			return record.Params{}, err
		}
		params.Container = container
	}
	if r.BitrateKbps > 0 {
		params.BitrateKbps = r.BitrateKbps
	}
	if r.FlipVertical != nil {
		params.FlipVertical = *r.FlipVertical
	}
	if r.IncludeAudio != nil {
		params.IncludeAudio = *r.IncludeAudio
	}
	return params, nil
}
