package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
	"github.com/RaaSaaR-org/vidgen/pkg/pipeline"
	"github.com/RaaSaaR-org/vidgen/pkg/ports"
	"github.com/RaaSaaR-org/vidgen/pkg/scene"
	"github.com/RaaSaaR-org/vidgen/pkg/tts"
)

type mockBrowser struct {
	launched int
	closed   int
	opts     ports.BrowserOptions
}

func (m *mockBrowser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	m.launched++
	m.opts = opts
	return nil
}

func (m *mockBrowser) NewTab(ctx context.Context) (ports.Tab, error) {
	return nil, errors.New("not used")
}

func (m *mockBrowser) Close() error {
	m.closed++
	return nil
}

type mockCaptureStage struct {
	mu     sync.Mutex
	inputs []pipeline.CaptureInput
	err    error
}

func (m *mockCaptureStage) Execute(ctx context.Context, in pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	if m.err != nil {
		return pipeline.CaptureResult{}, m.err
	}
	return pipeline.CaptureResult{OutputPath: in.OutputPath, Frames: 1}, nil
}

type mockConcatStage struct {
	inputs []pipeline.ConcatInput
	err    error
}

func (m *mockConcatStage) Execute(ctx context.Context, in pipeline.ConcatInput) (pipeline.ConcatResult, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return pipeline.ConcatResult{}, m.err
	}
	return pipeline.ConcatResult{OutputPath: in.OutputPath}, nil
}

type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: map[string][]byte{}} }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return data, nil
}

func (m *memFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *memFS) MkdirAll(path string) error { return nil }

func (m *memFS) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *memFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

type nullSink struct{}

func (nullSink) Enabled() bool                             { return false }
func (nullSink) SaveFrame(int, int, []byte) error          { return nil }
func (nullSink) SaveSceneMarkup(int, string) error         { return nil }
func (nullSink) SaveRenderJSON([]byte) error               { return nil }

type testLogger struct{}

func (testLogger) Debug(string, ...interface{})          {}
func (testLogger) Info(string, ...interface{})           {}
func (testLogger) Warn(string, ...interface{})           {}
func (testLogger) Error(string, ...interface{})          {}
func (l testLogger) WithComponent(string) ports.Logger   { return l }

type progressRecord struct {
	done, total float64
}

type recordingProgress struct {
	mu      sync.Mutex
	reports []progressRecord
}

func (r *recordingProgress) Report(done, total float64, message string) {
	r.mu.Lock()
	r.reports = append(r.reports, progressRecord{done, total})
	r.mu.Unlock()
}

type fakeEngine struct {
	duration float64
	calls    int
}

func (f *fakeEngine) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (tts.SynthesisResult, error) {
	f.calls++
	return tts.SynthesisResult{AudioPath: outputPath, Duration: f.duration}, nil
}

func (f *fakeEngine) ListVoices(ctx context.Context) ([]tts.VoiceInfo, error) { return nil, nil }

func (f *fakeEngine) Name() string { return "fake" }

type fixture struct {
	orch     *Orchestrator
	browsers []*mockBrowser
	capture  *mockCaptureStage
	concat   *mockConcatStage
	fs       *memFS
	progress *recordingProgress
}

func newFixture(t *testing.T, engine tts.Engine) *fixture {
	t.Helper()
	f := &fixture{
		capture:  &mockCaptureStage{},
		concat:   &mockConcatStage{},
		fs:       newMemFS(),
		progress: &recordingProgress{},
	}
	newBrowser := func() ports.Browser {
		b := &mockBrowser{}
		f.browsers = append(f.browsers, b)
		return b
	}
	factory := func(ports.Browser) pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult] {
		return f.capture
	}
	f.orch = New(newBrowser, factory, f.concat, engine, ffmpeg.NewRunner(), f.fs, nullSink{}, testLogger{}, f.progress)
	f.orch.synthesize = func(ctx context.Context, engine tts.Engine, text, voice string, speed float64, outputPath, projectDir string) (tts.SynthesisResult, error) {
		return engine.Synthesize(ctx, text, voice, speed, outputPath)
	}
	f.orch.burnIn = func(context.Context, ffmpeg.Runner, string, string) error { return nil }
	return f
}

func fixedScene(template string, secs float64) scene.Scene {
	return scene.Scene{
		Frontmatter: scene.Frontmatter{
			Template: template,
			Duration: scene.FixedDuration(secs),
		},
	}
}

func baseConfig(t *testing.T) Config {
	t.Helper()
	project := config.Defaults()
	project.Project.Name = "Launch Teaser"
	return Config{
		Project:    project,
		ProjectDir: t.TempDir(),
		OutputDir:  t.TempDir(),
		WorkDir:    t.TempDir(),
	}
}

func TestRunSingleDefaultFormat(t *testing.T) {
	f := newFixture(t, nil)
	cfg := baseConfig(t)
	scenes := []scene.Scene{fixedScene("intro", 3.0), fixedScene("outro", 4.0)}

	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.FormatName != "default" {
		t.Errorf("expected format default, got %q", r.FormatName)
	}
	want := filepath.Join(cfg.OutputDir, "launch-teaser.mp4")
	if r.OutputPath != want {
		t.Errorf("expected output %s, got %s", want, r.OutputPath)
	}
	if len(r.EffectiveDurations) != 2 || r.EffectiveDurations[0] != 3.0 || r.EffectiveDurations[1] != 4.0 {
		t.Errorf("unexpected effective durations %v", r.EffectiveDurations)
	}
	if r.SubtitlePath != "" {
		t.Errorf("expected no subtitle file, got %q", r.SubtitlePath)
	}

	if len(f.capture.inputs) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(f.capture.inputs))
	}
	if len(f.concat.inputs) != 1 {
		t.Fatalf("expected 1 concat, got %d", len(f.concat.inputs))
	}
	if got := f.concat.inputs[0].Durations; got[0] != 3.0 || got[1] != 4.0 {
		t.Errorf("unexpected concat durations %v", got)
	}
	if len(f.browsers) != 1 || f.browsers[0].launched != 1 || f.browsers[0].closed != 1 {
		t.Errorf("expected one launched and closed browser, got %+v", f.browsers)
	}
}

func TestRunProgressMonotonic(t *testing.T) {
	f := newFixture(t, nil)
	cfg := baseConfig(t)
	cfg.Project.Video.Formats = map[string]config.FormatConfig{
		"landscape": {Width: 1920, Height: 1080},
		"portrait":  {Width: 1080, Height: 1920},
	}
	scenes := []scene.Scene{fixedScene("a", 2.0), fixedScene("b", 2.0)}

	if _, err := f.orch.Run(context.Background(), cfg, scenes); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reports := f.progress.reports
	if len(reports) == 0 {
		t.Fatal("no progress reports")
	}
	finals := 0
	prev := -1.0
	for i, r := range reports {
		if r.done < prev {
			t.Errorf("report %d: done decreased from %v to %v", i, prev, r.done)
		}
		prev = r.done
		if r.total != reports[0].total {
			t.Errorf("report %d: total changed from %v to %v", i, reports[0].total, r.total)
		}
		if r.done == r.total {
			finals++
		}
	}
	// Two formats at two scenes each: 2 + 2*(2*2+1) steps.
	if reports[0].total != 12 {
		t.Errorf("expected total 12, got %v", reports[0].total)
	}
	if finals != 1 {
		t.Errorf("expected done == total exactly once, got %d times", finals)
	}
	last := reports[len(reports)-1]
	if last.done != last.total {
		t.Errorf("final report incomplete: %v/%v", last.done, last.total)
	}
}

func TestRunMultiFormatNaming(t *testing.T) {
	f := newFixture(t, nil)
	cfg := baseConfig(t)
	cfg.Project.Video.Formats = map[string]config.FormatConfig{
		"portrait":  {Width: 1080, Height: 1920},
		"landscape": {Width: 1920, Height: 1080},
	}
	scenes := []scene.Scene{fixedScene("a", 2.0)}

	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Alphabetical order.
	if results[0].FormatName != "landscape" || results[1].FormatName != "portrait" {
		t.Fatalf("unexpected format order: %q, %q", results[0].FormatName, results[1].FormatName)
	}
	if base := filepath.Base(results[0].OutputPath); base != "launch-teaser-landscape.mp4" {
		t.Errorf("unexpected landscape output name %q", base)
	}
	if base := filepath.Base(results[1].OutputPath); base != "launch-teaser-portrait.mp4" {
		t.Errorf("unexpected portrait output name %q", base)
	}
	if len(f.browsers) != 2 {
		t.Errorf("expected one browser per format, got %d", len(f.browsers))
	}
	if f.browsers[0].opts.Width != 1920 || f.browsers[1].opts.Width != 1080 {
		t.Errorf("browser viewports did not follow formats: %v, %v", f.browsers[0].opts, f.browsers[1].opts)
	}
}

func TestRunAutoDurationFromNarration(t *testing.T) {
	engine := &fakeEngine{duration: 2.0}
	f := newFixture(t, engine)
	cfg := baseConfig(t)

	scenes := []scene.Scene{
		{Frontmatter: scene.Frontmatter{Template: "intro"}, Script: "Hello there viewers."},
		fixedScene("outro", 4.0),
	}

	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("expected 1 synthesis call, got %d", engine.calls)
	}
	// 2.0s narration plus 0.5s padding on both sides.
	if got := results[0].EffectiveDurations[0]; got != 3.0 {
		t.Errorf("expected auto duration 3.0, got %v", got)
	}

	var narrated *pipeline.CaptureInput
	for i := range f.capture.inputs {
		if f.capture.inputs[i].SceneIndex == 0 {
			narrated = &f.capture.inputs[i]
		}
	}
	if narrated == nil {
		t.Fatal("scene 0 never captured")
	}
	if narrated.AudioPath == "" {
		t.Error("narrated scene capture lacks audio path")
	}
	if narrated.AudioDelay != 0.5 || narrated.PaddingAfter != 0.5 {
		t.Errorf("expected 0.5s padding around narration, got delay=%v after=%v",
			narrated.AudioDelay, narrated.PaddingAfter)
	}
}

func TestRunAutoDurationFallbackWithoutNarration(t *testing.T) {
	f := newFixture(t, nil)
	cfg := baseConfig(t)

	scenes := []scene.Scene{{Frontmatter: scene.Frontmatter{Template: "intro"}}}
	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := results[0].EffectiveDurations[0]; got != 3.0 {
		t.Errorf("expected fallback duration 3.0, got %v", got)
	}
}

func TestRunNarrationFailureIsNonFatal(t *testing.T) {
	engine := &fakeEngine{duration: 2.0}
	f := newFixture(t, engine)
	f.orch.synthesize = func(context.Context, tts.Engine, string, string, float64, string, string) (tts.SynthesisResult, error) {
		return tts.SynthesisResult{}, errors.New("speaker unplugged")
	}
	cfg := baseConfig(t)

	scenes := []scene.Scene{{
		Frontmatter: scene.Frontmatter{Template: "intro"},
		Script:      "This narration will fail.",
	}}
	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("narration failure escalated: %v", err)
	}
	if got := results[0].EffectiveDurations[0]; got != 3.0 {
		t.Errorf("expected fallback duration 3.0 after failed narration, got %v", got)
	}
	if f.capture.inputs[0].AudioPath != "" {
		t.Error("failed narration should leave the scene silent")
	}
}

func TestRunSubtitles(t *testing.T) {
	engine := &fakeEngine{duration: 2.0}
	f := newFixture(t, engine)
	cfg := baseConfig(t)
	cfg.Project.Output.Subtitles.Enabled = true

	scenes := []scene.Scene{
		{Frontmatter: scene.Frontmatter{Template: "intro", Duration: scene.FixedDuration(3.0)}, Script: "Welcome to the show everyone."},
		fixedScene("outro", 4.0),
	}
	results, err := f.orch.Run(context.Background(), cfg, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	srt := results[0].SubtitlePath
	if srt == "" {
		t.Fatal("expected a subtitle path")
	}
	if !strings.HasSuffix(srt, ".srt") {
		t.Errorf("subtitle path %q is not .srt", srt)
	}
	data, err := f.fs.ReadFile(srt)
	if err != nil {
		t.Fatalf("subtitle file not written: %v", err)
	}
	if !strings.Contains(string(data), "Welcome") {
		t.Errorf("subtitle content missing words: %q", string(data))
	}
	if !strings.Contains(string(data), "-->") {
		t.Errorf("subtitle content missing cue timing: %q", string(data))
	}
}

func TestRunSubtitleBurnIn(t *testing.T) {
	engine := &fakeEngine{duration: 2.0}
	f := newFixture(t, engine)
	burnCalls := 0
	f.orch.burnIn = func(ctx context.Context, r ffmpeg.Runner, videoPath, srtPath string) error {
		burnCalls++
		if !strings.HasSuffix(srtPath, ".srt") {
			t.Errorf("burn-in received non-srt path %q", srtPath)
		}
		return nil
	}
	cfg := baseConfig(t)
	cfg.Project.Output.Subtitles.Enabled = true
	cfg.Project.Output.Subtitles.BurnIn = true

	scenes := []scene.Scene{{
		Frontmatter: scene.Frontmatter{Template: "intro", Duration: scene.FixedDuration(3.0)},
		Script:      "Burn these words in.",
	}}
	if _, err := f.orch.Run(context.Background(), cfg, scenes); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if burnCalls != 1 {
		t.Errorf("expected 1 burn-in call, got %d", burnCalls)
	}
}

func TestRunCaptureErrorCarriesContext(t *testing.T) {
	f := newFixture(t, nil)
	f.capture.err = errors.New("tab crashed")
	cfg := baseConfig(t)

	_, err := f.orch.Run(context.Background(), cfg, []scene.Scene{fixedScene("a", 2.0)})
	if err == nil {
		t.Fatal("expected an error")
	}
	var re *pipeline.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %T", err)
	}
	if re.Kind != pipeline.KindCapture {
		t.Errorf("expected capture kind, got %v", re.Kind)
	}
	if re.Format != "default" {
		t.Errorf("expected format context, got %q", re.Format)
	}
}

func TestRunNoScenes(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.orch.Run(context.Background(), baseConfig(t), nil); err == nil {
		t.Fatal("expected an error for an empty scene list")
	}
}

func TestRunFormatFilterNoMatch(t *testing.T) {
	f := newFixture(t, nil)
	cfg := baseConfig(t)
	cfg.Project.Video.Formats = map[string]config.FormatConfig{
		"portrait": {Width: 1080, Height: 1920},
	}
	cfg.Formats = []string{"square"}
	_, err := f.orch.Run(context.Background(), cfg, []scene.Scene{fixedScene("a", 2.0)})
	if err == nil {
		t.Fatal("expected an error for a filter matching nothing")
	}
}
