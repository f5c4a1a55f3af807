package types_test

import (
	"testing"
	"time"

	"github.com/sayandeep-bot/spectosoft/types"
)

func TestKind_PendingDir(t *testing.T) {
	cases := map[types.Kind]string{
		types.KindVideo:      "video_pending",
		types.KindScreenshot: "screenshot_pending",
		types.KindActivity:   "activity_pending",
	}
	for kind, want := range cases {
		if got := kind.PendingDir(); got != want {
			t.Errorf("PendingDir(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestKind_Extensions(t *testing.T) {
	video := types.KindVideo.Extensions()
	if len(video) != 3 {
		t.Fatalf("video extensions = %v, want 3 entries", video)
	}
	if video[0] != ".mp4" {
		t.Errorf("video extensions[0] = %q, want .mp4", video[0])
	}
	if got := types.KindActivity.Extensions(); len(got) != 1 || got[0] != ".json" {
		t.Errorf("activity extensions = %v, want [.json]", got)
	}
	if got := types.Kind("bogus").Extensions(); got != nil {
		t.Errorf("unknown kind extensions = %v, want nil", got)
	}
}

func TestKind_DeliverTimeout(t *testing.T) {
	if got := types.KindVideo.DeliverTimeout(); got != 60*time.Second {
		t.Errorf("video timeout = %s, want 60s", got)
	}
	if got := types.KindScreenshot.DeliverTimeout(); got != 10*time.Second {
		t.Errorf("screenshot timeout = %s, want 10s", got)
	}
	if got := types.KindActivity.DeliverTimeout(); got != 15*time.Second {
		t.Errorf("activity timeout = %s, want 15s", got)
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".avi":  "video/x-msvideo",
		".png":  "image/png",
		".json": "application/json",
		".bin":  "application/octet-stream",
	}
	for ext, want := range cases {
		if got := types.ContentType(ext); got != want {
			t.Errorf("ContentType(%s) = %q, want %q", ext, got, want)
		}
	}
}

func TestParseContainer(t *testing.T) {
	for _, name := range []string{"mp4", "avi", "webm"} {
		c, err := types.ParseContainer(name)
		if err != nil {
			t.Fatalf("ParseContainer(%s): unexpected error: %v", name, err)
		}
		if c.Ext() != "."+name {
			t.Errorf("Ext() = %q, want .%s", c.Ext(), name)
		}
	}

	if _, err := types.ParseContainer("mkv"); err == nil {
		t.Error("ParseContainer(mkv) should reject unknown container")
	}
}

func TestTickConversions(t *testing.T) {
	// One frame at 15 fps and audio chunks at common rates convert to
	// exact tick counts with no rounding drift.
	if got := types.VideoFrameTicks(15); got != 666_666 {
		t.Errorf("VideoFrameTicks(15) = %d, want 666666", got)
	}
	if got := types.VideoFrameTicks(30); got != 333_333 {
		t.Errorf("VideoFrameTicks(30) = %d, want 333333", got)
	}
	if got := types.AudioFramesTicks(48000, 48000); got != types.TicksPerSecond {
		t.Errorf("AudioFramesTicks(1s at 48k) = %d, want %d", got, int64(types.TicksPerSecond))
	}
	if got := types.AudioFramesTicks(441, 44100); got != 100_000 {
		t.Errorf("AudioFramesTicks(441 at 44.1k) = %d, want 100000", got)
	}
}
