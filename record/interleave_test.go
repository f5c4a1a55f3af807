package record

import (
	"errors"
	"testing"

	"github.com/sayandeep-bot/spectosoft/types"
)

func chunk(ts int64) types.TimedSample {
	return types.TimedSample{Payload: []byte{0xAB}, Timestamp: ts}
}

func TestInterleaver_DrainsOnlyChunksBeforeFrame(t *testing.T) {
	audio := make(chan types.TimedSample, 8)
	audio <- chunk(0)
	audio <- chunk(50)
	audio <- chunk(120)

	in := NewInterleaver(audio)
	w := &StubWriter{}

	n, err := in.DrainBefore(100, w)
	if err != nil {
		t.Fatalf("DrainBefore: %v", err)
	}
	if n != 2 {
		t.Fatalf("drained %d chunks, want 2", n)
	}

	// The chunk at 120 was pulled off the channel but is not due yet;
	// it must surface on a later drain instead of being dropped.
	n, err = in.DrainBefore(121, w)
	if err != nil {
		t.Fatalf("DrainBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("drained %d chunks, want 1", n)
	}
	if got := w.AudioCount(); got != 3 {
		t.Fatalf("writer holds %d chunks, want 3", got)
	}
	if last := w.Audio[2].Timestamp; last != 120 {
		t.Errorf("last chunk timestamp = %d, want 120", last)
	}
}

func TestInterleaver_BoundaryChunkWaitsForNextFrame(t *testing.T) {
	audio := make(chan types.TimedSample, 2)
	audio <- chunk(100)

	in := NewInterleaver(audio)
	w := &StubWriter{}

	if n, _ := in.DrainBefore(100, w); n != 0 {
		t.Fatalf("chunk at the frame timestamp drained early: n = %d", n)
	}
	if n, _ := in.DrainBefore(101, w); n != 1 {
		t.Fatalf("parked chunk not drained: n = %d", n)
	}
}

func TestInterleaver_NeverBlocksOnEmptyChannel(t *testing.T) {
	audio := make(chan types.TimedSample, 4)
	in := NewInterleaver(audio)
	w := &StubWriter{}

	n, err := in.DrainBefore(1_000_000, w)
	if err != nil {
		t.Fatalf("DrainBefore: %v", err)
	}
	if n != 0 {
		t.Fatalf("drained %d chunks from an empty channel", n)
	}
}

func TestInterleaver_NilChannelDrainsNothing(t *testing.T) {
	in := NewInterleaver(nil)
	w := &StubWriter{}

	n, err := in.DrainBefore(1<<40, w)
	if err != nil || n != 0 {
		t.Fatalf("DrainBefore = (%d, %v), want (0, nil)", n, err)
	}
	if !in.Exhausted() {
		t.Error("video-only interleaver should report exhausted")
	}
}

func TestInterleaver_ClosedChannelEndsStream(t *testing.T) {
	audio := make(chan types.TimedSample, 2)
	audio <- chunk(10)
	audio <- chunk(20)
	close(audio)

	in := NewInterleaver(audio)
	w := &StubWriter{}

	n, err := in.DrainBefore(1000, w)
	if err != nil {
		t.Fatalf("DrainBefore: %v", err)
	}
	if n != 2 {
		t.Fatalf("drained %d chunks, want 2", n)
	}
	if !in.Exhausted() {
		t.Error("interleaver should be exhausted after channel close")
	}
	if n, _ := in.DrainBefore(2000, w); n != 0 {
		t.Errorf("exhausted interleaver drained %d chunks", n)
	}
}

func TestInterleaver_PropagatesSinkError(t *testing.T) {
	audio := make(chan types.TimedSample, 1)
	audio <- chunk(10)

	boom := errors.New("sink full")
	in := NewInterleaver(audio)
	w := &StubWriter{ErrOnAudio: boom}

	if _, err := in.DrainBefore(100, w); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
