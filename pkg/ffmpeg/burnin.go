package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// BurnInSubtitles re-encodes the video with the SRT rendered into the
// picture. The original is moved aside, re-encoded into place, and the
// temporary removed on success. If the encode fails the original is
// restored so the caller still has a playable file at videoPath.
func BurnInSubtitles(ctx context.Context, r Runner, videoPath, srtPath string) error {
	tmpPath := videoPath + ".burnin.mp4"
	if err := os.Rename(videoPath, tmpPath); err != nil {
		return fmt.Errorf("staging video for subtitle burn-in: %w", err)
	}

	filter := fmt.Sprintf(
		"subtitles=filename='%s':force_style='FontSize=24,PrimaryColour=&H00FFFFFF,Alignment=2'",
		escapeFilterPath(srtPath))

	err := r.Run(ctx, "ffmpeg",
		"-y",
		"-i", tmpPath,
		"-vf", filter,
		"-c:a", "copy",
		videoPath,
	)
	if err != nil {
		os.Remove(videoPath)
		if restoreErr := os.Rename(tmpPath, videoPath); restoreErr != nil {
			return fmt.Errorf("subtitle burn-in: %w (restoring original: %v)", err, restoreErr)
		}
		return fmt.Errorf("subtitle burn-in: %w", err)
	}
	os.Remove(tmpPath)
	return nil
}

// escapeFilterPath prepares a path for use inside an ffmpeg filter string,
// where backslashes must become slashes and colons need escaping.
func escapeFilterPath(path string) string {
	s := strings.ReplaceAll(path, "\\", "/")
	return strings.ReplaceAll(s, ":", "\\:")
}
