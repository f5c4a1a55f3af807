package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/cli/config"
)

// newTestContext builds a cli.Context over a bare flag set. Defaults go
// in without marking the flag set; explicit values go through Set so
// c.IsSet reports them.
func newTestContext(t *testing.T, defaults, explicit map[string]string) *cli.Context {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, val := range defaults {
		fs.String(name, val, "")
	}
	for name := range explicit {
		if _, ok := defaults[name]; !ok {
			fs.String(name, "", "")
		}
	}
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			t.Fatalf("set flag %s: %v", name, err)
		}
	}
	return cli.NewContext(cli.NewApp(), fs, nil)
}

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        serviceChoice
		wantErr     bool
		errContains string
	}{
		{
			name:  "default all three",
			input: "recording,screenshots,activity",
			want:  serviceChoice{recording: true, screenshots: true, activity: true},
		},
		{
			name:  "single service",
			input: "screenshots",
			want:  serviceChoice{screenshots: true},
		},
		{
			name:  "spaces tolerated",
			input: " recording , activity ",
			want:  serviceChoice{recording: true, activity: true},
		},
		{
			name:  "empty string selects nothing",
			input: "",
			want:  serviceChoice{},
		},
		{
			name:        "unknown service rejected",
			input:       "recording,keylogger",
			wantErr:     true,
			errContains: "unknown service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseServices(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseServices(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildUploader_HTTP(t *testing.T) {
	up, name, err := buildUploader(uploaderChoice{
		backend:  "http",
		endpoint: "https://ingest.example.com",
	})
	if err != nil {
		t.Fatalf("buildUploader: %v", err)
	}
	if up == nil {
		t.Fatal("uploader is nil")
	}
	if name != "http" {
		t.Errorf("backend name = %q, want %q", name, "http")
	}
}

func TestBuildUploader_EmptyBackendDefaultsToHTTP(t *testing.T) {
	_, name, err := buildUploader(uploaderChoice{
		endpoint: "https://ingest.example.com",
	})
	if err != nil {
		t.Fatalf("buildUploader: %v", err)
	}
	if name != "http" {
		t.Errorf("backend name = %q, want %q", name, "http")
	}
}

func TestBuildUploader_HTTPRequiresEndpoint(t *testing.T) {
	_, _, err := buildUploader(uploaderChoice{backend: "http"})
	if err == nil {
		t.Fatal("expected error for missing endpoint URL")
	}
	if !strings.Contains(err.Error(), "endpoint URL") {
		t.Errorf("error %q should mention the endpoint URL", err.Error())
	}
}

func TestBuildUploader_S3RequiresBucket(t *testing.T) {
	_, _, err := buildUploader(uploaderChoice{backend: "s3"})
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("error %q should mention the bucket", err.Error())
	}
}

func TestBuildUploader_UnknownBackend(t *testing.T) {
	_, _, err := buildUploader(uploaderChoice{backend: "ftp"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown uploader backend") {
		t.Errorf("error %q should name the unknown backend", err.Error())
	}
}

func TestUploaderChoiceFrom(t *testing.T) {
	cfg := &config.Config{}
	cfg.Uploader.Backend = "s3"
	cfg.Endpoint.URL = "https://ingest.example.com"
	cfg.Endpoint.Headers = map[string]string{"Authorization": "Bearer x"}
	cfg.Uploader.S3.Bucket = "captures"
	cfg.Uploader.S3.Prefix = "fleet-a"
	cfg.Uploader.S3.Region = "eu-central-1"
	cfg.Uploader.S3.Endpoint = "https://r2.example.com"
	cfg.Uploader.S3.PathStyle = true

	choice := uploaderChoiceFrom(newTestContext(t, nil, nil), cfg)

	if choice.backend != "s3" {
		t.Errorf("backend = %q, want s3", choice.backend)
	}
	if choice.endpoint != "https://ingest.example.com" {
		t.Errorf("endpoint = %q", choice.endpoint)
	}
	if choice.headers["Authorization"] != "Bearer x" {
		t.Errorf("headers = %v", choice.headers)
	}
	if choice.s3.Bucket != "captures" || choice.s3.Prefix != "fleet-a" {
		t.Errorf("s3 bucket/prefix = %q/%q", choice.s3.Bucket, choice.s3.Prefix)
	}
	if choice.s3.Region != "eu-central-1" || choice.s3.Endpoint != "https://r2.example.com" {
		t.Errorf("s3 region/endpoint = %q/%q", choice.s3.Region, choice.s3.Endpoint)
	}
	if !choice.s3.UsePathStyle {
		t.Error("UsePathStyle should carry over from path_style")
	}
}

func TestUploaderChoiceFrom_S3PathOverride(t *testing.T) {
	cfg := &config.Config{}
	cfg.Uploader.Backend = "s3"
	cfg.Uploader.S3.Bucket = "captures"
	cfg.Uploader.S3.Prefix = "fleet-a"
	cfg.Uploader.S3.Region = "eu-central-1"

	c := newTestContext(t, nil, map[string]string{"s3-path": "drain/decommissioned"})
	choice := uploaderChoiceFrom(c, cfg)

	if choice.s3.Bucket != "drain" || choice.s3.Prefix != "decommissioned" {
		t.Errorf("s3 bucket/prefix = %q/%q, want drain/decommissioned",
			choice.s3.Bucket, choice.s3.Prefix)
	}
	if choice.s3.Region != "eu-central-1" {
		t.Errorf("region should survive the path override, got %q", choice.s3.Region)
	}
}

func TestLoadConfig_DefaultPathMayBeMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	c := newTestContext(t, map[string]string{"config": "agent.yaml"}, nil)

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.AgentID != "" || cfg.DataRoot != "" {
		t.Errorf("missing default config should yield a zero config, got %+v", cfg)
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	c := newTestContext(t,
		map[string]string{"config": "agent.yaml"},
		map[string]string{"config": filepath.Join(t.TempDir(), "nope.yaml")})

	_, err := loadConfig(c)
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error %q should say the file was not found", err.Error())
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("agent_id: ws-42\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c := newTestContext(t,
		map[string]string{"config": "agent.yaml"},
		map[string]string{"config": path})

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.AgentID != "ws-42" {
		t.Errorf("AgentID = %q, want ws-42", cfg.AgentID)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.AgentID = "from-config"
	cfg.Endpoint.URL = "https://config.example.com"

	c := newTestContext(t, nil, map[string]string{
		"agent-id":       "from-flag",
		"endpoint-url":   "https://flag.example.com",
		"uploader":       "s3",
		"control-listen": "127.0.0.1:7700",
	})
	applyOverrides(c, cfg)

	if cfg.AgentID != "from-flag" {
		t.Errorf("AgentID = %q, flag should win", cfg.AgentID)
	}
	if cfg.Endpoint.URL != "https://flag.example.com" {
		t.Errorf("Endpoint.URL = %q, flag should win", cfg.Endpoint.URL)
	}
	if cfg.Uploader.Backend != "s3" {
		t.Errorf("Uploader.Backend = %q, want s3", cfg.Uploader.Backend)
	}
	if cfg.Control.Listen != "127.0.0.1:7700" {
		t.Errorf("Control.Listen = %q", cfg.Control.Listen)
	}
	if cfg.DataRoot != defaultDataRoot {
		t.Errorf("DataRoot = %q, want the default %q", cfg.DataRoot, defaultDataRoot)
	}
}

func TestApplyOverrides_KeepsConfigWhenFlagsUnset(t *testing.T) {
	cfg := &config.Config{}
	cfg.AgentID = "from-config"
	cfg.DataRoot = "/var/lib/spectosoft"

	applyOverrides(newTestContext(t, nil, nil), cfg)

	if cfg.AgentID != "from-config" {
		t.Errorf("AgentID = %q, config value should survive", cfg.AgentID)
	}
	if cfg.DataRoot != "/var/lib/spectosoft" {
		t.Errorf("DataRoot = %q, config value should survive", cfg.DataRoot)
	}
}

func TestResolveStoreRoot(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataRoot = "/var/lib/spectosoft"

	c := newTestContext(t, nil, map[string]string{"data-root": "/tmp/override"})
	if got := resolveStoreRoot(c, cfg); got != "/tmp/override" {
		t.Errorf("flag should win, got %q", got)
	}

	c = newTestContext(t, nil, nil)
	if got := resolveStoreRoot(c, cfg); got != "/var/lib/spectosoft" {
		t.Errorf("config should win over default, got %q", got)
	}

	if got := resolveStoreRoot(c, &config.Config{}); got != defaultDataRoot {
		t.Errorf("default = %q, want %q", got, defaultDataRoot)
	}
}

func TestResolveAgentID(t *testing.T) {
	cfg := &config.Config{}
	cfg.AgentID = "ws-7"
	if got, err := resolveAgentID(cfg); err != nil || got != "ws-7" {
		t.Errorf("resolveAgentID = %q, %v; want ws-7", got, err)
	}

	got, err := resolveAgentID(&config.Config{})
	if err != nil {
		t.Fatalf("hostname fallback failed: %v", err)
	}
	if got == "" {
		t.Error("hostname fallback should not be empty")
	}
}
