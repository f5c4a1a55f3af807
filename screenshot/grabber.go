// Package screenshot captures periodic still images of the display and
// feeds them through the pending store to the delivery engine.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sayandeep-bot/spectosoft/capture"
)

// Grabber produces one encoded screenshot per call.
type Grabber interface {
	Grab(ctx context.Context) ([]byte, error)
}

// FFmpegGrabberConfig locates the grab binary and display.
type FFmpegGrabberConfig struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg" on PATH.
	Binary string
	// Display selects the screen input, as for recording.
	Display string
}

// FFmpegGrabber shoots single PNG frames of the display with a
// short-lived ffmpeg process per capture.
type FFmpegGrabber struct {
	cfg FFmpegGrabberConfig
}

var _ Grabber = (*FFmpegGrabber)(nil)

// NewFFmpegGrabber builds a grabber for the configured display.
func NewFFmpegGrabber(cfg FFmpegGrabberConfig) *FFmpegGrabber {
	return &FFmpegGrabber{cfg: cfg}
}

// Grab captures one PNG image of the display.
func (g *FFmpegGrabber) Grab(ctx context.Context) ([]byte, error) {
	bin := g.cfg.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, g.args()...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, fmt.Errorf("grab screenshot: %w: %s", err, msg)
			}
		}
		return nil, fmt.Errorf("grab screenshot: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("grab screenshot: empty image")
	}
	return out, nil
}

func (g *FFmpegGrabber) args() []string {
	format, input := capture.GrabInput(g.cfg.Display)
	return []string{
		"-loglevel", "error",
		"-f", format,
		"-i", input,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	}
}
