package activity

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Window identifies the focused window.
type Window struct {
	Title string
	App   string
}

// WindowProber reports the currently focused window.
type WindowProber interface {
	ActiveWindow() (Window, error)
}

// probeTimeout bounds one probe command run.
const probeTimeout = 3 * time.Second

// CommandProber shells out to a configured command that prints the
// focused window on its first output line as "title<TAB>app" (the app
// part is optional), e.g. a small xdotool or osascript wrapper.
type CommandProber struct {
	// Command is the executable and its arguments.
	Command []string
	// Timeout bounds one probe; 0 means the default.
	Timeout time.Duration
}

var _ WindowProber = (*CommandProber)(nil)

// ActiveWindow implements WindowProber by running the command.
func (p *CommandProber) ActiveWindow() (Window, error) {
	if len(p.Command) == 0 {
		return Window{}, errors.New("no window probe command configured")
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = probeTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...).Output()
	if err != nil {
		return Window{}, fmt.Errorf("probe active window: %w", err)
	}

	line := strings.TrimSpace(string(out))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	title, app, _ := strings.Cut(line, "\t")
	return Window{
		Title: strings.TrimSpace(title),
		App:   strings.TrimSpace(app),
	}, nil
}
