// Package main provides the CLI entry point for vidgen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/RaaSaaR-org/vidgen/pkg/adapters/chromebrowser"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/filesink"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/gotemplate"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/logger"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/nullsink"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/osfilesystem"
	"github.com/RaaSaaR-org/vidgen/pkg/adapters/progress"
	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
	"github.com/RaaSaaR-org/vidgen/pkg/orchestrator"
	"github.com/RaaSaaR-org/vidgen/pkg/pipeline"
	"github.com/RaaSaaR-org/vidgen/pkg/ports"
	"github.com/RaaSaaR-org/vidgen/pkg/scene"
	"github.com/RaaSaaR-org/vidgen/pkg/stages/capture"
	"github.com/RaaSaaR-org/vidgen/pkg/stages/concat"
	"github.com/RaaSaaR-org/vidgen/pkg/tts"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Render  RenderCmd  `cmd:"" help:"Render a project to video."`
	Preview PreviewCmd `cmd:"" help:"Render a single frame of one scene to PNG."`
	Voices  VoicesCmd  `cmd:"" help:"List available narration voices."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RenderCmd renders a full project.
type RenderCmd struct {
	Project string `arg:"" optional:"" default:"." help:"Project directory (contains vidgen.yaml and scenes/)."`

	Output  string   `short:"o" help:"Output directory (default: the project's output.directory)."`
	Quality string   `short:"q" help:"Quality preset (draft, standard, high)."`
	FPS     int      `help:"Override the project frame rate."`
	Format  []string `short:"f" help:"Only render these formats (default: all declared)."`

	ChromePath string `help:"Path to Chrome executable (falls back to CHROME_PATH env, then system default)."`

	// Debug options
	Debug    bool   `short:"d" help:"Enable debug output (per-frame PNGs, scene HTML, timing plan)."`
	DebugDir string `default:"./debug" help:"Directory for debug output."`

	// Logging options
	LogLevel   string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet      bool   `short:"Q" help:"Suppress all log output."`
	NoProgress bool   `help:"Disable the terminal progress bar."`
}

// PreviewCmd renders one frame of a scene for template iteration.
type PreviewCmd struct {
	Scene  string `arg:"" help:"Scene markdown file."`
	Output string `short:"o" required:"" help:"Output PNG file path."`

	Project    string  `short:"p" default:"." help:"Project directory for theme and templates."`
	At         float64 `default:"0.5" help:"Position in the scene to render (0.0 to 1.0)."`
	Width      int     `help:"Viewport width (default: project video width)."`
	Height     int     `help:"Viewport height (default: project video height)."`
	ChromePath string  `help:"Path to Chrome executable."`
	LogLevel   string  `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level."`
}

// VoicesCmd lists the voices of the configured narration engine.
type VoicesCmd struct {
	Project string `arg:"" optional:"" default:"." help:"Project directory."`
	Engine  string `short:"e" help:"Narration engine (default: the project's voice.engine)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("vidgen"),
		kong.Description("Render declarative markdown scenes into narrated videos."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the render command.
func (cmd *RenderCmd) Run() error {
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	project, err := config.LoadFromFile(filepath.Join(cmd.Project, "vidgen.yaml"))
	if err != nil {
		return fmt.Errorf("load project config: %w", err)
	}

	scenes, err := scene.LoadScenes(cmd.Project)
	if err != nil {
		return fmt.Errorf("load scenes: %w", err)
	}

	templater, err := gotemplate.New()
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}
	if err := templater.RegisterProjectTemplates(cmd.Project); err != nil {
		return fmt.Errorf("load project templates: %w", err)
	}

	fs := osfilesystem.New()
	runner := ffmpeg.NewRunner()

	var sink ports.DebugSink
	if cmd.Debug {
		if err := fs.MkdirAll(cmd.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cmd.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	var reporter ports.Progress = ports.NoopProgress{}
	if !cmd.Quiet && !cmd.NoProgress {
		reporter = progress.NewBar()
	}

	engine, err := tts.NewEngine(project.Voice, runner)
	if err != nil {
		log.Warn(l10n.F("Narration engine %q unavailable: %s", project.Voice.Engine, err))
		engine = nil
	}

	theme := themeFromConfig(project.Theme)
	captureFactory := func(browser ports.Browser) pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult] {
		return capture.New(browser, templater, runner, sink, log, theme)
	}

	orch := orchestrator.New(
		func() ports.Browser { return chromebrowser.New() },
		captureFactory,
		concat.New(runner, log),
		engine,
		runner,
		fs,
		sink,
		log,
		reporter,
	)

	outputDir := cmd.Output
	if outputDir == "" {
		outputDir = project.Output.Directory
	}

	results, err := orch.Run(ctx, orchestrator.Config{
		Project:    project,
		ProjectDir: cmd.Project,
		OutputDir:  outputDir,
		Quality:    cmd.Quality,
		FPS:        cmd.FPS,
		Formats:    cmd.Format,
		ChromePath: cmd.ChromePath,
	}, scenes)
	if err != nil {
		return err
	}

	for _, r := range results {
		log.Info(l10n.F("Output saved to %s", r.OutputPath))
	}
	return nil
}

// Run executes the preview command.
func (cmd *PreviewCmd) Run() error {
	log := logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	project, err := config.LoadFromFile(filepath.Join(cmd.Project, "vidgen.yaml"))
	if err != nil {
		return fmt.Errorf("load project config: %w", err)
	}

	content, err := os.ReadFile(cmd.Scene)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	sc, err := scene.Parse(string(content), cmd.Scene)
	if err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}

	templater, err := gotemplate.New()
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}
	if err := templater.RegisterProjectTemplates(cmd.Project); err != nil {
		return fmt.Errorf("load project templates: %w", err)
	}

	width := cmd.Width
	if width == 0 {
		width = project.Video.Width
	}
	height := cmd.Height
	if height == 0 {
		height = project.Video.Height
	}

	at := cmd.At
	if at < 0 {
		at = 0
	}
	if at > 1 {
		at = 1
	}
	duration := sc.Frontmatter.Duration.Resolve(nil,
		project.Voice.PaddingBefore, project.Voice.PaddingAfter,
		project.Voice.AutoFallbackDuration)
	totalFrames := scene.TotalFrames(duration, project.Video.FPS)
	frame := int(at * float64(totalFrames-1))

	var background *ports.Background
	if sc.Frontmatter.Background != nil {
		background = &ports.Background{
			Color: sc.Frontmatter.Background.Color,
			Image: sc.Frontmatter.Background.Image,
		}
	}
	html, err := templater.Render(ports.SceneDocument{
		Template:    sc.Frontmatter.Template,
		Props:       sc.Frontmatter.Props,
		Script:      sc.Script,
		Background:  background,
		Width:       width,
		Height:      height,
		Frame:       frame,
		TotalFrames: totalFrames,
	}, themeFromConfig(project.Theme))
	if err != nil {
		return fmt.Errorf("render scene markup: %w", err)
	}

	browser := chromebrowser.New()
	if err := browser.Launch(ctx, ports.BrowserOptions{
		Width:      width,
		Height:     height,
		ChromePath: cmd.ChromePath,
		Headless:   true,
	}); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	tab, err := browser.NewTab(ctx)
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer tab.Close()

	if err := tab.SetContent(ctx, html); err != nil {
		return err
	}
	progressVal := 0.0
	if totalFrames > 1 {
		progressVal = float64(frame) / float64(totalFrames)
	}
	if err := tab.SetAnimationState(ctx, ports.AnimationState{
		Frame:           frame,
		TotalFrames:     totalFrames,
		Progress:        progressVal,
		ContentProgress: progressVal,
	}); err != nil {
		return err
	}
	png, err := tab.Screenshot(ctx)
	if err != nil {
		return err
	}

	if err := osfilesystem.New().WriteFile(cmd.Output, png); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	log.Info(l10n.F("Preview saved to %s", cmd.Output))
	return nil
}

// Run executes the voices command.
func (cmd *VoicesCmd) Run() error {
	project, err := config.LoadFromFile(filepath.Join(cmd.Project, "vidgen.yaml"))
	if err != nil {
		// Voices can be listed without a project; fall back to defaults.
		project = config.Defaults()
	}
	if cmd.Engine != "" {
		project.Voice.Engine = cmd.Engine
	}

	engine, err := tts.NewEngine(project.Voice, ffmpeg.NewRunner())
	if err != nil {
		return fmt.Errorf("narration engine %q: %w", project.Voice.Engine, err)
	}

	voices, err := engine.ListVoices(context.Background())
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}

	fmt.Println(l10n.F("Voices for engine %q:", engine.Name()))
	for _, v := range voices {
		if v.Gender != "" {
			fmt.Printf("  %-30s %s (%s)\n", v.ID, v.Language, v.Gender)
		} else {
			fmt.Printf("  %-30s %s\n", v.ID, v.Language)
		}
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("vidgen version %s", version))
	return nil
}

func themeFromConfig(t config.ThemeConfig) ports.Theme {
	return ports.Theme{
		Primary:     t.Primary,
		Secondary:   t.Secondary,
		Background:  t.Background,
		Text:        t.Text,
		FontHeading: t.FontHeading,
		FontBody:    t.FontBody,
	}
}
