// Package concat implements the assembly stage that joins per-scene clips
// into a single output video, cross-fading at boundaries that have
// transitions.
package concat

import (
	"context"

	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
	"github.com/RaaSaaR-org/vidgen/pkg/pipeline"
	"github.com/RaaSaaR-org/vidgen/pkg/ports"
)

// Stage joins scene clips into the final video for one format.
type Stage struct {
	runner ffmpeg.Runner
	logger ports.Logger
}

// New creates a concat stage.
func New(runner ffmpeg.Runner, logger ports.Logger) *Stage {
	return &Stage{
		runner: runner,
		logger: logger.WithComponent("concat"),
	}
}

// Execute joins the clips. Without transitions the join is a stream copy;
// any transition forces the re-encoding filter-graph path.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConcatInput) (pipeline.ConcatResult, error) {
	reencode := false
	for _, t := range input.Transitions {
		if t != nil {
			reencode = true
			break
		}
	}

	s.logger.Debug("Joining %d scene clips into %s (reencode=%v)",
		len(input.SceneFiles), input.OutputPath, reencode)

	var err error
	if reencode {
		err = ffmpeg.ConcatWithTransitions(ctx, s.runner, input.SceneFiles,
			input.Durations, input.Transitions, input.OutputPath, input.Encoding)
	} else {
		err = ffmpeg.ConcatScenes(ctx, s.runner, input.SceneFiles, input.OutputPath)
	}
	if err != nil {
		return pipeline.ConcatResult{}, err
	}

	// A single clip is byte-copied even when a transition was resolved, so
	// the result only counts as re-encoded with two or more inputs.
	reencoded := reencode && len(input.SceneFiles) > 1
	return pipeline.ConcatResult{OutputPath: input.OutputPath, Reencoded: reencoded}, nil
}
