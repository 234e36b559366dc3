package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/RaaSaaR-org/vidgen/pkg/config"
)

// EncoderOptions describes one scene clip encode.
type EncoderOptions struct {
	OutputPath string
	FPS        int
	Width      int
	Height     int
	Encoding   config.Encoding

	// AudioPath is the narration wav, "" when the scene has none.
	AudioPath string
	// MusicPath is the background music file, "" when absent.
	MusicPath string
	// MusicVolume is the 0.0-1.0 music level.
	MusicVolume float64
	// AudioDelay shifts the narration start, in seconds.
	AudioDelay float64
}

// SceneEncoder streams PNG frames into a running ffmpeg process via stdin
// and muxes optional narration and music into the output.
type SceneEncoder struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderrCh chan string
	output   string
}

// NewSceneEncoder spawns ffmpeg reading PNG frames from stdin. Callers must
// invoke Finish even after a WriteFrame error so the process is reaped.
func NewSceneEncoder(ctx context.Context, opts EncoderOptions) (*SceneEncoder, error) {
	args := buildEncoderArgs(opts)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning ffmpeg: %w", err)
	}

	// Drain stderr concurrently so ffmpeg never blocks on a full pipe.
	stderrCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stderr)
		stderrCh <- buf.String()
	}()

	return &SceneEncoder{
		cmd:      cmd,
		stdin:    stdin,
		stderrCh: stderrCh,
		output:   opts.OutputPath,
	}, nil
}

// WriteFrame pushes one encoded PNG to ffmpeg.
func (e *SceneEncoder) WriteFrame(png []byte) error {
	if _, err := e.stdin.Write(png); err != nil {
		return fmt.Errorf("writing frame to ffmpeg: %w", err)
	}
	return nil
}

// Finish closes stdin, waits for ffmpeg to exit, and returns the output
// path. A non-zero exit surfaces the last stderr line.
func (e *SceneEncoder) Finish() (string, error) {
	_ = e.stdin.Close()

	waitErr := e.cmd.Wait()
	stderr := <-e.stderrCh

	if waitErr != nil {
		return "", fmt.Errorf("ffmpeg encoding failed: %w: %s", waitErr, lastLine(stderr))
	}
	return e.output, nil
}

// buildEncoderArgs assembles the full ffmpeg argument list for a piped
// frame encode. Input ordering is fixed: frames on stdin are input 0,
// narration (when present) input 1, music the next index after that.
func buildEncoderArgs(opts EncoderOptions) []string {
	args := []string{
		"-y",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-i", "-",
	}
	args = append(args, audioInputArgs(opts.AudioPath, opts.MusicPath)...)
	args = append(args, videoCodecArgs(opts.Encoding)...)
	args = append(args, audioFilterArgs(opts)...)
	return append(args, opts.OutputPath)
}

func audioInputArgs(audioPath, musicPath string) []string {
	var args []string
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}
	if musicPath != "" {
		args = append(args, "-i", musicPath)
	}
	return args
}

func videoCodecArgs(enc config.Encoding) []string {
	return []string{
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", enc.CRF),
		"-preset", enc.Preset,
		"-movflags", "+faststart",
	}
}

func audioCodecArgs(enc config.Encoding) []string {
	return []string{
		"-c:a", "aac",
		"-b:a", enc.AudioBitrate,
		"-ar", fmt.Sprintf("%d", enc.AudioSampleRate),
	}
}

// audioFilterArgs covers the four narration/music combinations. Narration
// is delayed via adelay when the scene has leading padding, and music is
// mixed under it with amix keyed to the narration's duration.
func audioFilterArgs(opts EncoderOptions) []string {
	hasVoice := opts.AudioPath != ""
	hasMusic := opts.MusicPath != ""
	delayMS := int64(math.Round(opts.AudioDelay * 1000))

	switch {
	case hasVoice && hasMusic:
		voiceChain := "[1:a]volume=1.0[voice]"
		if delayMS > 0 {
			voiceChain = fmt.Sprintf("[1:a]adelay=%d|%d,volume=1.0[voice]", delayMS, delayMS)
		}
		filter := fmt.Sprintf(
			"%s;[2:a]volume=%.2f[music];[voice][music]amix=inputs=2:duration=first:dropout_transition=2[aout]",
			voiceChain, opts.MusicVolume)
		args := []string{"-filter_complex", filter, "-map", "0:v", "-map", "[aout]"}
		return append(args, audioCodecArgs(opts.Encoding)...)

	case hasVoice:
		var args []string
		if delayMS > 0 {
			args = append(args, "-af", fmt.Sprintf("adelay=%d|%d", delayMS, delayMS))
		}
		return append(args, audioCodecArgs(opts.Encoding)...)

	case hasMusic:
		filter := fmt.Sprintf("[1:a]volume=%.2f[aout]", opts.MusicVolume)
		args := []string{"-filter_complex", filter, "-map", "0:v", "-map", "[aout]"}
		return append(args, audioCodecArgs(opts.Encoding)...)

	default:
		return nil
	}
}

// EncodeStatic renders a single still frame as a fixed-duration clip. The
// still is written beside the output and fed to ffmpeg with -loop 1, which
// is far cheaper than piping the same frame hundreds of times.
func EncodeStatic(ctx context.Context, r Runner, png []byte, duration float64, opts EncoderOptions) error {
	stillPath := opts.OutputPath + ".still.png"
	if err := os.WriteFile(stillPath, png, 0o644); err != nil {
		return fmt.Errorf("writing still frame: %w", err)
	}
	defer os.Remove(stillPath)

	args := []string{
		"-y",
		"-loop", "1",
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", stillPath,
	}
	args = append(args, audioInputArgs(opts.AudioPath, opts.MusicPath)...)
	args = append(args, "-t", fmt.Sprintf("%.3f", duration))
	args = append(args, videoCodecArgs(opts.Encoding)...)
	args = append(args, audioFilterArgs(opts)...)
	args = append(args, opts.OutputPath)

	if err := r.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("static encode of %s: %w", filepath.Base(opts.OutputPath), err)
	}
	return nil
}
