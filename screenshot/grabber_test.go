package screenshot

import (
	"strings"
	"testing"
)

func TestFFmpegGrabber_ArgsShootOnePNGFrame(t *testing.T) {
	g := NewFFmpegGrabber(FFmpegGrabberConfig{Display: ":1.0"})
	args := strings.Join(g.args(), " ")

	for _, want := range []string{
		"-frames:v 1",
		"-f image2pipe",
		"-c:v png",
		"pipe:1",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}
