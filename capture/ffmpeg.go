package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/sayandeep-bot/spectosoft/types"
)

// FFmpegConfig locates the ffmpeg binary and the capture inputs shared
// by the ffmpeg-backed sources.
type FFmpegConfig struct {
	// Binary is the ffmpeg executable. Defaults to "ffmpeg" on PATH.
	Binary string
	// Display selects the screen input: the X11 display on Linux
	// (":0.0"), the screen index on macOS ("1"). Ignored on Windows,
	// where gdigrab always reads the desktop.
	Display string
	// AudioDevice is the loopback source, e.g. a PulseAudio monitor.
	// Defaults to "default.monitor".
	AudioDevice string
}

func (c FFmpegConfig) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "ffmpeg"
}

// GrabInput returns the ffmpeg screen-grab demuxer and input for the
// host platform. Shared with the screenshot grabber, which shoots the
// same display one frame at a time.
func GrabInput(display string) (format, input string) {
	switch runtime.GOOS {
	case "windows":
		return "gdigrab", "desktop"
	case "darwin":
		if display == "" {
			display = "1"
		}
		return "avfoundation", display
	default:
		if display == "" {
			display = ":0.0"
		}
		return "x11grab", display
	}
}

// FFmpegFrameSource streams raw BGRA frames from a display-grab ffmpeg
// process. The process paces itself at the configured rate and writes
// frames back-to-back on stdout; Capture blocks reading exactly one.
type FFmpegFrameSource struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	reader    *bufio.Reader
	frameSize int
}

// NewFFmpegFrameSource spawns the grab process for one session.
func NewFFmpegFrameSource(cfg FFmpegConfig, width, height, fps int) (*FFmpegFrameSource, error) {
	format, input := GrabInput(cfg.Display)
	size := fmt.Sprintf("%dx%d", width, height)
	args := []string{
		"-loglevel", "error",
		"-f", format,
		"-framerate", strconv.Itoa(fps),
		"-video_size", size,
		"-i", input,
		"-f", "rawvideo",
		"-pix_fmt", "bgra",
		"-s", size,
		"-r", strconv.Itoa(fps),
		"pipe:1",
	}

	cmd := exec.Command(cfg.binary(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg grab: %w", err)
	}

	return &FFmpegFrameSource{
		cmd:       cmd,
		stdout:    stdout,
		reader:    bufio.NewReaderSize(stdout, 1<<16),
		frameSize: width * height * 4,
	}, nil
}

// Capture implements FrameSource by reading one full frame from the
// grab process.
func (s *FFmpegFrameSource) Capture() ([]byte, error) {
	frame := make([]byte, s.frameSize)
	if _, err := io.ReadFull(s.reader, frame); err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

// Close stops the grab process. Safe to call while a Capture is
// blocked; the closed pipe unblocks it.
func (s *FFmpegFrameSource) Close() error {
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

var _ FrameSource = (*FFmpegFrameSource)(nil)

// ffmpegChunkFrames is the sample frames per chunk the audio reader
// hands out (10 ms at 48 kHz).
const ffmpegChunkFrames = 480

// ffmpegAudioFormat is the PCM shape the loopback process is told to
// emit. 32-bit float matches what desktop mixers produce natively.
var ffmpegAudioFormat = types.AudioFormat{SampleRate: 48000, Channels: 2, BitsPerSample: 32}

// FFmpegAudioSource captures the system output loopback via ffmpeg and
// hands it out in fixed-size chunks. A reader goroutine drains stdout
// into a buffered channel so NextChunk can honor its timeout.
type FFmpegAudioSource struct {
	cfg    FFmpegConfig
	cmd    *exec.Cmd
	stdout io.ReadCloser
	chunks chan *AudioChunk
	errs   chan error
	quit   chan struct{}
	once   sync.Once
}

// NewFFmpegAudioSource prepares a loopback source. The process starts
// on Start.
func NewFFmpegAudioSource(cfg FFmpegConfig) *FFmpegAudioSource {
	return &FFmpegAudioSource{cfg: cfg}
}

// Start implements AudioSource. It spawns the loopback process and
// waits for the first chunk as proof the device exists; ctx bounds that
// wait.
func (s *FFmpegAudioSource) Start(ctx context.Context) (types.AudioFormat, error) {
	device := s.cfg.AudioDevice
	if device == "" {
		device = "default.monitor"
	}
	args := []string{
		"-loglevel", "error",
		"-f", "pulse",
		"-i", device,
		"-ac", strconv.Itoa(ffmpegAudioFormat.Channels),
		"-ar", strconv.Itoa(ffmpegAudioFormat.SampleRate),
		"-f", "f32le",
		"pipe:1",
	}

	s.cmd = exec.Command(s.cfg.binary(), args...)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return types.AudioFormat{}, fmt.Errorf("create stdout pipe: %w", err)
	}
	s.stdout = stdout
	if err := s.cmd.Start(); err != nil {
		return types.AudioFormat{}, fmt.Errorf("start ffmpeg loopback: %w", err)
	}

	s.chunks = make(chan *AudioChunk, 64)
	s.errs = make(chan error, 1)
	s.quit = make(chan struct{})
	go s.readLoop()

	// First chunk proves the device produces data. Monitors stream
	// silence continuously, so this resolves quickly on a live system.
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			return types.AudioFormat{}, s.readErr()
		}
		// Put it back for the first NextChunk.
		s.chunks <- chunk
		return ffmpegAudioFormat, nil
	case <-ctx.Done():
		_ = s.Close()
		return types.AudioFormat{}, ctx.Err()
	}
}

// readErr reports why the reader stopped.
func (s *FFmpegAudioSource) readErr() error {
	select {
	case err := <-s.errs:
		return err
	default:
		return errors.New("audio source closed")
	}
}

// readLoop pulls fixed 10 ms chunks off the pipe until it closes.
func (s *FFmpegAudioSource) readLoop() {
	defer close(s.chunks)
	reader := bufio.NewReaderSize(s.stdout, 1<<16)
	chunkBytes := ffmpegChunkFrames * ffmpegAudioFormat.BytesPerFrame()
	for {
		pcm := make([]byte, chunkBytes)
		if _, err := io.ReadFull(reader, pcm); err != nil {
			s.errs <- fmt.Errorf("read pcm: %w", err)
			return
		}
		select {
		case s.chunks <- &AudioChunk{PCM: pcm, Frames: ffmpegChunkFrames}:
		case <-s.quit:
			return
		}
	}
}

// NextChunk implements AudioSource. Returns (nil, nil) when no chunk
// arrived within the timeout.
func (s *FFmpegAudioSource) NextChunk(timeout time.Duration) (*AudioChunk, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			return nil, s.readErr()
		}
		return chunk, nil
	case <-timer.C:
		return nil, nil
	}
}

// Close stops the loopback process and unblocks the reader. Safe to
// call more than once.
func (s *FFmpegAudioSource) Close() error {
	if s.cmd == nil {
		return nil
	}
	s.once.Do(func() {
		close(s.quit)
		_ = s.stdout.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
	})
	return nil
}

var _ AudioSource = (*FFmpegAudioSource)(nil)
