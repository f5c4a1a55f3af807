package capture

import (
	"testing"
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/types"
)

// collect drains out until the producer closes it, failing the test if
// that takes longer than five seconds.
func collect(t *testing.T, out <-chan types.TimedSample) []types.TimedSample {
	t.Helper()
	var samples []types.TimedSample
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s, ok := <-out:
			if !ok {
				return samples
			}
			samples = append(samples, s)
		case <-timeout:
			t.Fatal("producer did not close its channel")
		}
	}
}

func TestRunVideoProducer_TimestampsAreExactTickMultiples(t *testing.T) {
	source := NewStubFrameSource()
	collector := metrics.NewCollector("test-agent", "stub")
	out := make(chan types.TimedSample, 8)
	done := make(chan struct{})
	defer close(done)

	go RunVideoProducer(&lifecycle.Flag{}, done, VideoConfig{
		Source:    source,
		FPS:       100,
		MaxTicks:  5,
		Logger:    log.NewLogger("test-agent"),
		Collector: collector,
	}, out)

	samples := collect(t, out)
	if len(samples) != 5 {
		t.Fatalf("got %d samples, want 5", len(samples))
	}

	frameTicks := types.VideoFrameTicks(100)
	for i, s := range samples {
		if want := int64(i) * frameTicks; s.Timestamp != want {
			t.Errorf("sample %d timestamp = %d, want %d", i, s.Timestamp, want)
		}
		if FrameIndex(s.Payload) != i {
			t.Errorf("sample %d payload index = %d, want %d", i, FrameIndex(s.Payload), i)
		}
	}
	if got := collector.Snapshot().FramesCaptured; got != 5 {
		t.Errorf("FramesCaptured = %d, want 5", got)
	}
}

func TestRunVideoProducer_FailedTickSkippedWithoutTimestampGap(t *testing.T) {
	source := NewStubFrameSource()
	source.FailOn = map[int]bool{1: true}
	collector := metrics.NewCollector("test-agent", "stub")
	out := make(chan types.TimedSample, 8)
	done := make(chan struct{})
	defer close(done)

	go RunVideoProducer(&lifecycle.Flag{}, done, VideoConfig{
		Source:    source,
		FPS:       100,
		MaxTicks:  4,
		Logger:    log.NewLogger("test-agent"),
		Collector: collector,
	}, out)

	samples := collect(t, out)
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3 (one tick failed)", len(samples))
	}

	// Capture indexes 0, 2, 3 made it through; timestamps stay
	// contiguous because a skipped tick does not advance the clock.
	frameTicks := types.VideoFrameTicks(100)
	wantIndexes := []int{0, 2, 3}
	for i, s := range samples {
		if FrameIndex(s.Payload) != wantIndexes[i] {
			t.Errorf("sample %d index = %d, want %d", i, FrameIndex(s.Payload), wantIndexes[i])
		}
		if want := int64(i) * frameTicks; s.Timestamp != want {
			t.Errorf("sample %d timestamp = %d, want %d", i, s.Timestamp, want)
		}
	}
	if got := collector.Snapshot().FrameCaptureFailures; got != 1 {
		t.Errorf("FrameCaptureFailures = %d, want 1", got)
	}
}

func TestRunVideoProducer_StopsOnFlag(t *testing.T) {
	source := NewStubFrameSource()
	flag := &lifecycle.Flag{}
	out := make(chan types.TimedSample)
	done := make(chan struct{})
	defer close(done)

	go RunVideoProducer(flag, done, VideoConfig{
		Source: source,
		FPS:    100,
		Logger: log.NewLogger("test-agent"),
	}, out)

	// Take one sample to prove the producer is live, then stop it.
	select {
	case <-out:
	case <-time.After(5 * time.Second):
		t.Fatal("no sample produced")
	}
	flag.Signal()

	collect(t, out) // must close promptly
}

func TestRunVideoProducer_StopsWhenConsumerGone(t *testing.T) {
	source := NewStubFrameSource()
	out := make(chan types.TimedSample)
	done := make(chan struct{})
	close(done)

	exited := make(chan struct{})
	go func() {
		RunVideoProducer(&lifecycle.Flag{}, done, VideoConfig{
			Source: source,
			FPS:    100,
			Logger: log.NewLogger("test-agent"),
		}, out)
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not exit after consumer left")
	}
}

func TestRunVideoProducer_TickBudgetEndsProduction(t *testing.T) {
	source := NewStubFrameSource()
	out := make(chan types.TimedSample, 8)
	done := make(chan struct{})
	defer close(done)

	go RunVideoProducer(&lifecycle.Flag{}, done, VideoConfig{
		Source:   source,
		FPS:      100,
		MaxTicks: 3,
		Logger:   log.NewLogger("test-agent"),
	}, out)

	samples := collect(t, out)
	if len(samples) != 3 {
		t.Errorf("got %d samples, want 3", len(samples))
	}
	if source.Calls() != 3 {
		t.Errorf("source captures = %d, want 3", source.Calls())
	}
}
