package record

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sayandeep-bot/spectosoft/iox"
	"github.com/sayandeep-bot/spectosoft/types"
)

// FFmpegWriterConfig configures ffmpeg-backed segment writers.
type FFmpegWriterConfig struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg" on PATH.
	Binary string
}

func (c FFmpegWriterConfig) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "ffmpeg"
}

// NewFFmpegWriterFactory returns a WriterFactory that encodes each
// segment with its own ffmpeg process. Raw BGRA frames stream over
// stdin; PCM audio streams over an extra pipe on fd 3. The encoder
// paces itself off the declared frame and sample rates, so sample
// timestamps never cross the process boundary.
func NewFFmpegWriterFactory(cfg FFmpegWriterConfig) WriterFactory {
	return func(spec SegmentSpec) (SegmentWriter, error) {
		return newFFmpegWriter(cfg, spec)
	}
}

type ffmpegWriter struct {
	cmd   *exec.Cmd
	video io.WriteCloser
	// audio is the write end of the fd 3 pipe, nil for video-only.
	audio  *os.File
	stderr bytes.Buffer
	path   string
	done   bool
}

var _ SegmentWriter = (*ffmpegWriter)(nil)

func newFFmpegWriter(cfg FFmpegWriterConfig, spec SegmentSpec) (*ffmpegWriter, error) {
	size := fmt.Sprintf("%dx%d", spec.Width, spec.Height)
	args := []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "bgra",
		"-s", size,
		"-r", strconv.Itoa(spec.FPS),
		"-i", "pipe:0",
	}

	var audioR, audioW *os.File
	if spec.Audio != nil {
		var err error
		audioR, audioW, err = os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("audio pipe: %w", err)
		}
		args = append(args,
			"-f", pcmFormat(spec.Audio.BitsPerSample),
			"-ar", strconv.Itoa(spec.Audio.SampleRate),
			"-ac", strconv.Itoa(spec.Audio.Channels),
			"-i", "pipe:3",
		)
	}

	if spec.FlipVertical {
		args = append(args, "-vf", "vflip")
	}
	args = append(args, codecArgs(spec)...)
	args = append(args, spec.Path)

	w := &ffmpegWriter{path: spec.Path, audio: audioW}
	w.cmd = exec.Command(cfg.binary(), args...)
	w.cmd.Stderr = &w.stderr
	if audioR != nil {
		// ExtraFiles[0] becomes fd 3 in the child.
		w.cmd.ExtraFiles = []*os.File{audioR}
	}

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		closeAll(audioR, audioW)
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	w.video = stdin

	if err := w.cmd.Start(); err != nil {
		iox.DiscardClose(stdin)
		closeAll(audioR, audioW)
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	if audioR != nil {
		// The child holds its own copy of the read end now; keeping
		// ours open would mask the EOF on finalize.
		iox.DiscardClose(audioR)
	}
	return w, nil
}

func (w *ffmpegWriter) WriteVideo(sample types.TimedSample) error {
	if _, err := w.video.Write(sample.Payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (w *ffmpegWriter) WriteAudio(sample types.TimedSample) error {
	if w.audio == nil {
		return nil
	}
	if _, err := w.audio.Write(sample.Payload); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

// Finalize closes the input pipes so ffmpeg sees EOF, waits for it to
// write the container trailer, and fsyncs the result. Idempotent.
func (w *ffmpegWriter) Finalize() error {
	if w.done {
		return nil
	}
	w.done = true

	iox.DiscardClose(w.video)
	if w.audio != nil {
		iox.DiscardClose(w.audio)
	}
	if err := w.cmd.Wait(); err != nil {
		if msg := lastLine(w.stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return iox.SyncFile(w.path)
}

// pcmFormat maps a sample width to the ffmpeg raw PCM demuxer name.
func pcmFormat(bits int) string {
	if bits == 16 {
		return "s16le"
	}
	return "f32le"
}

// codecArgs selects the codec set for the container. MP4 favors
// compatibility (H.264 with AAC, faststart for progressive playback),
// WebM pairs VP8 with Vorbis, AVI stays with MJPEG and raw PCM.
func codecArgs(spec SegmentSpec) []string {
	bitrate := strconv.Itoa(spec.BitrateKbps) + "k"
	withAudio := spec.Audio != nil
	switch spec.Container {
	case types.ContainerWebM:
		args := []string{"-c:v", "libvpx", "-b:v", bitrate}
		if withAudio {
			args = append(args, "-c:a", "libvorbis")
		}
		return args
	case types.ContainerAVI:
		args := []string{"-c:v", "mjpeg", "-q:v", "7"}
		if withAudio {
			args = append(args, "-c:a", "pcm_s16le")
		}
		return args
	default:
		args := []string{
			"-c:v", "libx264", "-preset", "veryfast",
			"-b:v", bitrate,
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		}
		if withAudio {
			args = append(args, "-c:a", "aac", "-b:a", "128k")
		}
		return args
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			iox.DiscardClose(f)
		}
	}
}

// lastLine returns the final non-empty line of ffmpeg's stderr, which
// carries the fatal message when the process exits non-zero.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
