// Package orchestrator coordinates a full render: narration synthesis,
// duration and transition resolution, bounded-parallel scene capture per
// output format, concatenation, and subtitle generation.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ideamans/go-l10n"
	"golang.org/x/sync/errgroup"

	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
	"github.com/RaaSaaR-org/vidgen/pkg/pipeline"
	"github.com/RaaSaaR-org/vidgen/pkg/ports"
	"github.com/RaaSaaR-org/vidgen/pkg/scene"
	"github.com/RaaSaaR-org/vidgen/pkg/subtitle"
	"github.com/RaaSaaR-org/vidgen/pkg/transition"
	"github.com/RaaSaaR-org/vidgen/pkg/tts"
)

// Config parameterizes one render invocation.
type Config struct {
	Project    config.Project
	ProjectDir string
	OutputDir  string

	// Quality overrides the project's configured quality when non-empty.
	Quality string
	// FPS overrides the project's frame rate when positive.
	FPS int
	// Formats filters the declared formats by name; empty renders all.
	Formats []string
	// ChromePath is an explicit Chrome executable for capture browsers.
	ChromePath string

	// WorkDir holds intermediate scene clips. Empty means a fresh temp
	// directory removed after the render.
	WorkDir string
}

// FormatOutput is the render result for one output format.
type FormatOutput struct {
	FormatName         string    `json:"format_name"`
	OutputPath         string    `json:"output_path"`
	EffectiveDurations []float64 `json:"effective_durations"`
	SubtitlePath       string    `json:"subtitle_path,omitempty"`
}

// CaptureFactory builds a capture stage bound to a launched browser. One
// browser is launched per format, so the stage cannot be constructed up
// front.
type CaptureFactory func(browser ports.Browser) pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult]

// Orchestrator drives the render pipeline.
type Orchestrator struct {
	newBrowser     func() ports.Browser
	captureFactory CaptureFactory
	concatStage    pipeline.Stage[pipeline.ConcatInput, pipeline.ConcatResult]
	engine         tts.Engine // nil when narration is unavailable
	runner         ffmpeg.Runner
	fs             ports.FileSystem
	sink           ports.DebugSink
	logger         ports.Logger
	progress       ports.Progress

	// Seams replaceable in tests.
	synthesize func(ctx context.Context, engine tts.Engine, text, voice string, speed float64, outputPath, projectDir string) (tts.SynthesisResult, error)
	burnIn     func(ctx context.Context, r ffmpeg.Runner, videoPath, srtPath string) error
}

// New creates an Orchestrator.
func New(
	newBrowser func() ports.Browser,
	captureFactory CaptureFactory,
	concatStage pipeline.Stage[pipeline.ConcatInput, pipeline.ConcatResult],
	engine tts.Engine,
	runner ffmpeg.Runner,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
	progress ports.Progress,
) *Orchestrator {
	return &Orchestrator{
		newBrowser:     newBrowser,
		captureFactory: captureFactory,
		concatStage:    concatStage,
		engine:         engine,
		runner:         runner,
		fs:             fs,
		sink:           sink,
		logger:         logger,
		progress:       progress,
		synthesize:     tts.SynthesizeCached,
		burnIn:         ffmpeg.BurnInSubtitles,
	}
}

// Run renders every requested format and returns one FormatOutput per
// format. Narration synthesis and duration/transition resolution happen
// once; they do not depend on viewport size.
func (o *Orchestrator) Run(ctx context.Context, cfg Config, scenes []scene.Scene) ([]FormatOutput, error) {
	if len(scenes) == 0 {
		return nil, pipeline.NewRenderError(pipeline.KindConfig, -1, "", fmt.Errorf("no scenes to render"))
	}

	formats := cfg.Project.ResolveFormats(cfg.Formats)
	if len(formats) == 0 {
		return nil, pipeline.NewRenderError(pipeline.KindConfig, -1, "",
			fmt.Errorf("no formats match filter %v", cfg.Formats))
	}

	fps := cfg.Project.Video.FPS
	if cfg.FPS > 0 {
		fps = cfg.FPS
	}
	quality := cfg.Project.Output.Quality
	if cfg.Quality != "" {
		quality = cfg.Quality
	}

	if err := o.fs.MkdirAll(cfg.OutputDir); err != nil {
		return nil, pipeline.NewRenderError(pipeline.KindConfig, -1, "", err)
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "vidgen-render-")
		if err != nil {
			return nil, pipeline.NewRenderError(pipeline.KindConfig, -1, "", err)
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}

	o.logger.Info(l10n.F("Rendering %q: %d scene(s), %d format(s), %dfps, quality=%s",
		cfg.Project.Project.Name, len(scenes), len(formats), fps, quality))

	// Narration pass, format-independent.
	audioPaths, ttsDurations := o.synthesizeNarration(ctx, cfg, scenes, workDir)

	// Duration pass.
	durations := make([]float64, len(scenes))
	for i, sc := range scenes {
		durations[i] = sc.Frontmatter.Duration.Resolve(
			ttsDurations[i],
			cfg.Project.Voice.PaddingBefore,
			cfg.Project.Voice.PaddingAfter,
			cfg.Project.Voice.AutoFallbackDuration,
		)
		if sc.Frontmatter.Duration.IsAuto() {
			source := "fallback"
			if ttsDurations[i] != nil {
				source = "narration + padding"
			}
			o.logger.Debug("Scene %d: auto duration resolved to %.1fs (%s)", i+1, durations[i], source)
		}
	}

	// Transition pass.
	transitions, warnings := transition.ResolveAll(scenes, transition.Defaults{
		Name:     cfg.Project.Video.DefaultTransition,
		Duration: cfg.Project.Video.DefaultTransitionDuration,
	})
	for i, name := range warnings {
		o.logger.Warn(l10n.F("Unknown transition %q between scenes %d and %d, using fade", name, i+1, i+2))
	}

	if o.sink.Enabled() {
		o.saveRenderDebug(scenes, durations, transitions)
	}

	// Progress denominator is fixed up front: one step per narration
	// synthesis, then per format two steps per scene plus one for assembly.
	stepsPerFormat := 2*len(scenes) + 1
	totalSteps := float64(len(scenes) + len(formats)*stepsPerFormat)
	o.progress.Report(float64(len(scenes)), totalSteps, l10n.T("Narration synthesis complete"))

	results := make([]FormatOutput, 0, len(formats))
	for fmtIdx, format := range formats {
		output, err := o.renderFormat(ctx, renderFormatParams{
			cfg:         cfg,
			scenes:      scenes,
			format:      format,
			formatCount: len(formats),
			fps:         fps,
			encoding:    config.ResolveEncoding(quality, format.Platform),
			durations:   durations,
			transitions: transitions,
			audioPaths:  audioPaths,
			workDir:     workDir,
			stepsBase:   float64(len(scenes) + fmtIdx*stepsPerFormat),
			totalSteps:  totalSteps,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, output)

		// The last format's completion coincides with the final report;
		// done == total must be published exactly once.
		if fmtIdx < len(formats)-1 {
			done := float64(len(scenes) + (fmtIdx+1)*stepsPerFormat)
			o.progress.Report(done, totalSteps, l10n.F("Format %q complete", format.Name))
		}
	}

	o.progress.Report(totalSteps, totalSteps, l10n.T("Render complete"))
	return results, nil
}

// synthesizeNarration speaks each scene's script. Failures degrade the
// scene to silence and are logged, never raised.
func (o *Orchestrator) synthesizeNarration(ctx context.Context, cfg Config, scenes []scene.Scene, workDir string) ([]string, []*float64) {
	audioPaths := make([]string, len(scenes))
	ttsDurations := make([]*float64, len(scenes))

	if o.engine == nil {
		o.logger.Info(l10n.T("Narration engine unavailable, rendering silent"))
		return audioPaths, ttsDurations
	}

	for i, sc := range scenes {
		script := strings.TrimSpace(sc.Script)
		if script == "" {
			continue
		}
		voice := sc.Frontmatter.Voice
		if voice == "" {
			voice = cfg.Project.Voice.DefaultVoice
		}
		wavPath := filepath.Join(workDir, fmt.Sprintf("scene-%03d.wav", i))

		result, err := o.synthesize(ctx, o.engine, script, voice, cfg.Project.Voice.Speed, wavPath, cfg.ProjectDir)
		if err != nil {
			o.logger.Warn(l10n.F("Narration for scene %d failed (%s), continuing without audio", i+1, err))
			continue
		}
		tag := ""
		if result.Cached {
			tag = " (cached)"
		}
		o.logger.Debug("Narration scene %d: %.1fs audio%s", i+1, result.Duration, tag)
		audioPaths[i] = result.AudioPath
		d := result.Duration
		ttsDurations[i] = &d
	}
	return audioPaths, ttsDurations
}

type renderFormatParams struct {
	cfg         Config
	scenes      []scene.Scene
	format      config.Format
	formatCount int
	fps         int
	encoding    config.Encoding
	durations   []float64
	transitions []*transition.Transition
	audioPaths  []string
	workDir     string
	stepsBase   float64
	totalSteps  float64
}

// renderFormat captures all scenes for one format with bounded
// parallelism, then assembles them. The format's browser is torn down
// before returning so two browsers never run at once.
func (o *Orchestrator) renderFormat(ctx context.Context, p renderFormatParams) (FormatOutput, error) {
	name := p.format.Name
	o.logger.Info(l10n.F("Format %q: %dx%d", name, p.format.Width, p.format.Height))

	fmtDir := filepath.Join(p.workDir, name)
	if err := o.fs.MkdirAll(fmtDir); err != nil {
		return FormatOutput{}, pipeline.NewRenderError(pipeline.KindConfig, -1, name, err)
	}

	browser := o.newBrowser()
	if err := browser.Launch(ctx, ports.BrowserOptions{
		Width:      p.format.Width,
		Height:     p.format.Height,
		ChromePath: p.cfg.ChromePath,
		Headless:   true,
	}); err != nil {
		return FormatOutput{}, pipeline.NewRenderError(pipeline.KindCapture, -1, name, err)
	}
	defer browser.Close()

	captureStage := o.captureFactory(browser)

	parallel := p.cfg.Project.Video.ParallelScenes
	if parallel < 1 {
		parallel = 1
	}

	sceneFiles := make([]string, len(p.scenes))
	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range p.scenes {
		g.Go(func() error {
			derived := p.scenes[i].ApplyFormatOverrides(name)

			musicPath := derived.MusicPath()
			if musicPath != "" {
				musicPath = scene.ResolveAssetPath(musicPath, p.cfg.ProjectDir)
			}
			audioDelay, paddingAfter := 0.0, 0.0
			if p.audioPaths[i] != "" {
				audioDelay = p.cfg.Project.Voice.PaddingBefore
				paddingAfter = p.cfg.Project.Voice.PaddingAfter
			}

			result, err := captureStage.Execute(gctx, pipeline.CaptureInput{
				Scene:        derived,
				SceneIndex:   i,
				Width:        p.format.Width,
				Height:       p.format.Height,
				FPS:          p.fps,
				Duration:     p.durations[i],
				Encoding:     p.encoding,
				OutputPath:   filepath.Join(fmtDir, fmt.Sprintf("scene-%03d.mp4", i)),
				AudioPath:    p.audioPaths[i],
				MusicPath:    musicPath,
				MusicVolume:  derived.MusicVolume(),
				AudioDelay:   audioDelay,
				PaddingAfter: paddingAfter,
			})
			if err != nil {
				return pipeline.NewRenderError(pipeline.KindCapture, i, name, err)
			}

			// Report under the lock so concurrent completions cannot
			// publish a lower done value after a higher one.
			mu.Lock()
			sceneFiles[i] = result.OutputPath
			completed++
			done := p.stepsBase + float64(completed)
			o.progress.Report(done, p.totalSteps, l10n.F("Scene %d captured (%s)", i+1, name))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FormatOutput{}, err
	}

	outputPath := o.outputPath(p.cfg, name, p.formatCount)
	_, err := o.concatStage.Execute(ctx, pipeline.ConcatInput{
		SceneFiles:  sceneFiles,
		Durations:   p.durations,
		Transitions: p.transitions,
		OutputPath:  outputPath,
		Encoding:    p.encoding,
	})
	if err != nil {
		return FormatOutput{}, pipeline.NewRenderError(pipeline.KindEncoding, -1, name, err)
	}
	o.logger.Info(l10n.F("Output: %s", outputPath))

	srtPath := o.generateSubtitles(ctx, p, outputPath)

	return FormatOutput{
		FormatName:         name,
		OutputPath:         outputPath,
		EffectiveDurations: p.durations,
		SubtitlePath:       srtPath,
	}, nil
}

// outputPath derives the deterministic output filename: slug.mp4 for the
// single implicit format, slug-format.mp4 otherwise.
func (o *Orchestrator) outputPath(cfg Config, formatName string, formatCount int) string {
	slug := cfg.Project.Slug()
	if formatCount == 1 && formatName == "default" {
		return filepath.Join(cfg.OutputDir, slug+".mp4")
	}
	return filepath.Join(cfg.OutputDir, slug+"-"+formatName+".mp4")
}

// generateSubtitles writes the SRT beside the video and optionally burns
// it in. Subtitle failures never fail the render; the video stands alone.
func (o *Orchestrator) generateSubtitles(ctx context.Context, p renderFormatParams, outputPath string) string {
	subCfg := p.cfg.Project.Output.Subtitles
	if !subCfg.Enabled {
		return ""
	}

	var words []subtitle.WordTimestamp
	offset := 0.0
	for i, sc := range p.scenes {
		script := strings.TrimSpace(sc.Script)
		if script != "" && p.audioPaths[i] != "" {
			for _, w := range subtitle.EstimateWordTimestamps(script, p.durations[i]) {
				w.Start += offset
				w.End += offset
				words = append(words, w)
			}
		}
		offset += p.durations[i]
	}
	if len(words) == 0 {
		return ""
	}

	entries := subtitle.Group(words, subCfg.MaxWordsPerLine)
	srtPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".srt"
	if err := o.fs.WriteFile(srtPath, []byte(subtitle.ToSRT(entries))); err != nil {
		o.logger.Warn(l10n.F("Failed to write subtitles (%s), continuing without them", err))
		return ""
	}
	o.logger.Info(l10n.F("Subtitles: %s", srtPath))

	if subCfg.BurnIn {
		if err := o.burnIn(ctx, o.runner, outputPath, srtPath); err != nil {
			o.logger.Warn(l10n.F("Subtitle burn-in failed (%s), keeping the plain video", err))
		}
	}
	return srtPath
}

// saveRenderDebug records the resolved timing plan for inspection.
func (o *Orchestrator) saveRenderDebug(scenes []scene.Scene, durations []float64, transitions []*transition.Transition) {
	type boundary struct {
		Type     string  `json:"type"`
		Duration float64 `json:"duration"`
	}
	plan := struct {
		Scenes      []string    `json:"scenes"`
		Durations   []float64   `json:"durations"`
		Transitions []*boundary `json:"transitions"`
	}{
		Durations: durations,
	}
	for _, sc := range scenes {
		plan.Scenes = append(plan.Scenes, sc.Frontmatter.Template)
	}
	for _, t := range transitions {
		if t == nil {
			plan.Transitions = append(plan.Transitions, nil)
			continue
		}
		plan.Transitions = append(plan.Transitions, &boundary{Type: t.Type.String(), Duration: t.Duration})
	}
	if data, err := json.MarshalIndent(plan, "", "  "); err == nil {
		if err := o.sink.SaveRenderJSON(data); err != nil {
			o.logger.Warn("Failed to save render debug output: %v", err)
		}
	}
}
