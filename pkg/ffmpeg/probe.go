package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// HasAudioStream reports whether the media file contains an audio stream.
// Probe failures count as no audio.
func HasAudioStream(ctx context.Context, r Runner, path string) bool {
	out, err := r.Output(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// Duration returns the media file's duration in seconds via ffprobe.
func Duration(ctx context.Context, r Runner, path string) (float64, error) {
	out, err := r.Output(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", path, err)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration of %s: %w", path, err)
	}
	return secs, nil
}
