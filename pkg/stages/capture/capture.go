// Package capture implements the scene capture stage: template markup is
// loaded into a browser tab, screenshotted frame by frame, and streamed
// into an ffmpeg encoder. Scenes whose markup never reads the animation
// variables are captured once and looped into a clip instead.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
	"github.com/RaaSaaR-org/vidgen/pkg/pipeline"
	"github.com/RaaSaaR-org/vidgen/pkg/ports"
	"github.com/RaaSaaR-org/vidgen/pkg/scene"
)

// Stage captures one scene into a standalone video clip. The browser is
// launched by the caller; each Execute opens its own tab, so a single Stage
// may run concurrently for different scenes.
type Stage struct {
	browser   ports.Browser
	templater ports.Templater
	runner    ffmpeg.Runner
	sink      ports.DebugSink
	logger    ports.Logger
	theme     ports.Theme

	// Encoder seams, replaceable in tests.
	newEncoder   func(ctx context.Context, opts ffmpeg.EncoderOptions) (frameEncoder, error)
	encodeStatic func(ctx context.Context, r ffmpeg.Runner, png []byte, duration float64, opts ffmpeg.EncoderOptions) error
}

// frameEncoder is the part of ffmpeg.SceneEncoder the frame loop needs.
type frameEncoder interface {
	WriteFrame(png []byte) error
	Finish() (string, error)
}

// New creates a capture stage.
func New(browser ports.Browser, templater ports.Templater, runner ffmpeg.Runner, sink ports.DebugSink, logger ports.Logger, theme ports.Theme) *Stage {
	return &Stage{
		browser:   browser,
		templater: templater,
		runner:    runner,
		sink:      sink,
		logger:    logger.WithComponent("capture"),
		theme:     theme,
		newEncoder: func(ctx context.Context, opts ffmpeg.EncoderOptions) (frameEncoder, error) {
			return ffmpeg.NewSceneEncoder(ctx, opts)
		},
		encodeStatic: ffmpeg.EncodeStatic,
	}
}

// Execute captures and encodes one scene.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	totalFrames := scene.TotalFrames(input.Duration, input.FPS)
	if totalFrames < 1 {
		return pipeline.CaptureResult{}, fmt.Errorf("scene %d has no frames to capture", input.SceneIndex+1)
	}

	tab, err := s.browser.NewTab(ctx)
	if err != nil {
		return pipeline.CaptureResult{}, fmt.Errorf("opening tab for scene %d: %w", input.SceneIndex+1, err)
	}
	defer tab.Close()

	frame0, err := s.renderMarkup(input, 0, totalFrames)
	if err != nil {
		return pipeline.CaptureResult{}, err
	}
	if s.sink.Enabled() {
		if err := s.sink.SaveSceneMarkup(input.SceneIndex, frame0); err != nil {
			s.logger.Warn("Failed to save scene markup: %v", err)
		}
	}

	if IsStaticMarkup(frame0) {
		return s.captureStatic(ctx, tab, input, frame0)
	}
	return s.captureAnimated(ctx, tab, input, frame0, totalFrames)
}

// captureStatic screenshots the scene once and loops the still into a clip.
func (s *Stage) captureStatic(ctx context.Context, tab ports.Tab, input pipeline.CaptureInput, html string) (pipeline.CaptureResult, error) {
	s.logger.Debug("Scene %d is static, capturing one frame (%.1fs)", input.SceneIndex+1, input.Duration)

	if err := tab.SetContent(ctx, html); err != nil {
		return pipeline.CaptureResult{}, fmt.Errorf("loading scene %d markup: %w", input.SceneIndex+1, err)
	}
	png, err := tab.Screenshot(ctx)
	if err != nil {
		return pipeline.CaptureResult{}, fmt.Errorf("screenshotting scene %d: %w", input.SceneIndex+1, err)
	}
	if s.sink.Enabled() {
		if err := s.sink.SaveFrame(input.SceneIndex, 0, png); err != nil {
			s.logger.Warn("Failed to save debug frame: %v", err)
		}
	}

	err = s.encodeStatic(ctx, s.runner, png, input.Duration, s.encoderOptions(input))
	if err != nil {
		return pipeline.CaptureResult{}, err
	}
	return pipeline.CaptureResult{OutputPath: input.OutputPath, Frames: 1, Static: true}, nil
}

// captureAnimated renders every frame, pushing animation state into the
// page before each screenshot and streaming screenshots to the encoder.
func (s *Stage) captureAnimated(ctx context.Context, tab ports.Tab, input pipeline.CaptureInput, frame0 string, totalFrames int) (pipeline.CaptureResult, error) {
	s.logger.Debug("Scene %d: %d frames (%.1fs)", input.SceneIndex+1, totalFrames, input.Duration)

	encoder, err := s.newEncoder(ctx, s.encoderOptions(input))
	if err != nil {
		return pipeline.CaptureResult{}, err
	}
	finished := false
	defer func() {
		// Reap the process when the loop bailed out early.
		if !finished {
			_, _ = encoder.Finish()
		}
	}()

	// The narration window: content-progress runs 0 to 1 between narration
	// start and end rather than across the whole clip.
	contentStart := input.AudioDelay * float64(input.FPS)
	contentEnd := (input.Duration - input.PaddingAfter) * float64(input.FPS)
	contentRange := contentEnd - contentStart

	for frame := 0; frame < totalFrames; frame++ {
		html := frame0
		if frame > 0 {
			html, err = s.renderMarkup(input, frame, totalFrames)
			if err != nil {
				return pipeline.CaptureResult{}, err
			}
		}
		if err := tab.SetContent(ctx, html); err != nil {
			return pipeline.CaptureResult{}, fmt.Errorf("loading scene %d frame %d: %w", input.SceneIndex+1, frame, err)
		}

		progress := float64(frame) / float64(totalFrames)
		contentProgress := progress
		if contentRange > 0 {
			contentProgress = clamp01((float64(frame) - contentStart) / contentRange)
		}
		state := ports.AnimationState{
			Frame:           frame,
			TotalFrames:     totalFrames,
			Progress:        progress,
			ContentProgress: contentProgress,
		}
		if err := tab.SetAnimationState(ctx, state); err != nil {
			return pipeline.CaptureResult{}, fmt.Errorf("setting animation state for scene %d frame %d: %w", input.SceneIndex+1, frame, err)
		}

		png, err := tab.Screenshot(ctx)
		if err != nil {
			return pipeline.CaptureResult{}, fmt.Errorf("screenshotting scene %d frame %d: %w", input.SceneIndex+1, frame, err)
		}
		if s.sink.Enabled() {
			if err := s.sink.SaveFrame(input.SceneIndex, frame, png); err != nil {
				s.logger.Warn("Failed to save debug frame: %v", err)
			}
		}
		if err := encoder.WriteFrame(png); err != nil {
			return pipeline.CaptureResult{}, err
		}
	}

	finished = true
	output, err := encoder.Finish()
	if err != nil {
		return pipeline.CaptureResult{}, err
	}
	return pipeline.CaptureResult{OutputPath: output, Frames: totalFrames}, nil
}

func (s *Stage) renderMarkup(input pipeline.CaptureInput, frame, totalFrames int) (string, error) {
	doc := ports.SceneDocument{
		Template:    input.Scene.Frontmatter.Template,
		Props:       input.Scene.Frontmatter.Props,
		Script:      input.Scene.Script,
		Width:       input.Width,
		Height:      input.Height,
		Frame:       frame,
		TotalFrames: totalFrames,
	}
	if bg := input.Scene.Frontmatter.Background; bg != nil {
		doc.Background = &ports.Background{Color: bg.Color, Image: bg.Image}
	}

	html, err := s.templater.Render(doc, s.theme)
	if err != nil {
		return "", fmt.Errorf("rendering scene %d template %q: %w", input.SceneIndex+1, doc.Template, err)
	}
	return html, nil
}

func (s *Stage) encoderOptions(input pipeline.CaptureInput) ffmpeg.EncoderOptions {
	return ffmpeg.EncoderOptions{
		OutputPath:  input.OutputPath,
		FPS:         input.FPS,
		Width:       input.Width,
		Height:      input.Height,
		Encoding:    input.Encoding,
		AudioPath:   input.AudioPath,
		MusicPath:   input.MusicPath,
		MusicVolume: input.MusicVolume,
		AudioDelay:  input.AudioDelay,
	}
}

// IsStaticMarkup reports whether rendered markup ignores the animation
// variables. Static markup looks identical on every frame, so one
// screenshot looped by ffmpeg replaces a full capture pass.
func IsStaticMarkup(html string) bool {
	return !strings.Contains(html, "--frame") &&
		!strings.Contains(html, "--progress") &&
		!strings.Contains(html, "--total-frames")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
