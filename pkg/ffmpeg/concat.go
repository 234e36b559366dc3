package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/transition"
)

const concatListName = ".vidgen-concat-list.txt"

// ConcatScenes joins scene clips stream-copy, no re-encode. A single input
// is byte-copied to the output.
func ConcatScenes(ctx context.Context, r Runner, sceneFiles []string, outputPath string) error {
	if len(sceneFiles) == 0 {
		return fmt.Errorf("no scene files to concatenate")
	}
	if len(sceneFiles) == 1 {
		return copyFile(sceneFiles[0], outputPath)
	}

	listPath := filepath.Join(filepath.Dir(outputPath), concatListName)
	var list strings.Builder
	for _, f := range sceneFiles {
		fmt.Fprintf(&list, "file '%s'\n", f)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("writing concat list: %w", err)
	}
	defer os.Remove(listPath)

	err := r.Run(ctx, "ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	return nil
}

// ConcatWithTransitions joins scene clips, applying xfade and acrossfade
// filters at boundaries that have a transition. Boundaries without one get
// a near-zero fade so the filter graph stays uniform. When no boundary has
// a transition the whole join degrades to the stream-copy path.
func ConcatWithTransitions(ctx context.Context, r Runner, sceneFiles []string, durations []float64, transitions []*transition.Transition, outputPath string, enc config.Encoding) error {
	if len(sceneFiles) == 0 {
		return fmt.Errorf("no scene files to concatenate")
	}
	if len(sceneFiles) == 1 {
		return copyFile(sceneFiles[0], outputPath)
	}
	if len(durations) != len(sceneFiles) || len(transitions) != len(sceneFiles)-1 {
		return fmt.Errorf("mismatched concat inputs: %d files, %d durations, %d transitions",
			len(sceneFiles), len(durations), len(transitions))
	}

	anyTransition := false
	for _, t := range transitions {
		if t != nil {
			anyTransition = true
			break
		}
	}
	if !anyTransition {
		return ConcatScenes(ctx, r, sceneFiles, outputPath)
	}

	hasAudio := make([]bool, len(sceneFiles))
	anyAudio := false
	for i, f := range sceneFiles {
		hasAudio[i] = HasAudioStream(ctx, r, f)
		anyAudio = anyAudio || hasAudio[i]
	}

	graph := buildTransitionGraph(durations, transitions, hasAudio)

	args := []string{"-y"}
	for _, f := range sceneFiles {
		args = append(args, "-i", f)
	}
	args = append(args, "-filter_complex", graph, "-map", "[vout]")
	if anyAudio {
		args = append(args, "-map", "[aout]")
	}
	args = append(args, videoCodecArgs(enc)...)
	if anyAudio {
		args = append(args, audioCodecArgs(enc)...)
	}
	args = append(args, outputPath)

	if err := r.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("transition concat: %w", err)
	}
	return nil
}

// buildTransitionGraph assembles the xfade/acrossfade filter graph. Each
// xfade offset is the cumulative duration of preceding scenes minus the
// transition time already consumed by earlier overlaps, clamped at zero.
// Scenes without an audio stream contribute generated silence so the
// acrossfade chain always has two inputs.
func buildTransitionGraph(durations []float64, transitions []*transition.Transition, hasAudio []bool) string {
	n := len(durations)
	var parts []string

	offset := 0.0
	for i := 0; i < n-1; i++ {
		name, dur := "fade", 0.001
		if t := transitions[i]; t != nil {
			name, dur = t.Type.FFmpegName(), t.Duration
		}

		offset += durations[i] - dur
		clamped := offset
		if clamped < 0 {
			clamped = 0
		}

		inA := fmt.Sprintf("[v%d]", i)
		if i == 0 {
			inA = "[0:v]"
		}
		inB := fmt.Sprintf("[%d:v]", i+1)
		out := fmt.Sprintf("[v%d]", i+1)
		if i == n-2 {
			out = "[vout]"
		}

		parts = append(parts, fmt.Sprintf(
			"%s%sxfade=transition=%s:duration=%.3f:offset=%.3f%s",
			inA, inB, name, dur, clamped, out))
	}

	anyAudio := false
	for _, a := range hasAudio {
		anyAudio = anyAudio || a
	}
	if !anyAudio {
		return strings.Join(parts, ";")
	}

	for i := 0; i < n; i++ {
		if hasAudio[i] {
			parts = append(parts, fmt.Sprintf(
				"[%d:a]aformat=sample_rates=22050:channel_layouts=stereo,asetpts=PTS-STARTPTS[sa%d]", i, i))
		} else {
			parts = append(parts, fmt.Sprintf(
				"anullsrc=cl=stereo:r=22050[silence%d];[silence%d]atrim=0:%.3f,asetpts=PTS-STARTPTS[sa%d]",
				i, i, durations[i], i))
		}
	}

	for i := 0; i < n-1; i++ {
		dur := 0.001
		if t := transitions[i]; t != nil {
			dur = t.Duration
		}

		inA := fmt.Sprintf("[a%d]", i)
		if i == 0 {
			inA = "[sa0]"
		}
		inB := fmt.Sprintf("[sa%d]", i+1)
		out := fmt.Sprintf("[a%d]", i+1)
		if i == n-2 {
			out = "[aout]"
		}

		parts = append(parts, fmt.Sprintf("%s%sacrossfade=d=%.3f:c1=tri:c2=tri%s", inA, inB, dur, out))
	}

	return strings.Join(parts, ";")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
