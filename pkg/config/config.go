// Package config provides project configuration loading and encoding
// parameter resolution.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project configuration file looked up in the
// project directory.
const ProjectFileName = "vidgen.yaml"

// Project is the full project configuration.
type Project struct {
	Project ProjectInfo  `yaml:"project"`
	Video   VideoConfig  `yaml:"video"`
	Voice   VoiceConfig  `yaml:"voice"`
	Theme   ThemeConfig  `yaml:"theme"`
	Output  OutputConfig `yaml:"output"`
}

// ProjectInfo identifies the project.
type ProjectInfo struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// VideoConfig holds rendering and transition settings.
type VideoConfig struct {
	FPS    int `yaml:"fps"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// DefaultTransition applies between every adjacent scene pair unless a
	// scene overrides it. Empty means hard cuts.
	DefaultTransition         string  `yaml:"default_transition"`
	DefaultTransitionDuration float64 `yaml:"default_transition_duration"`

	// Formats declares named output formats. Empty means a single implicit
	// "default" format at Width x Height.
	Formats map[string]FormatConfig `yaml:"formats"`

	// ParallelScenes bounds concurrent scene captures per format (default 4).
	ParallelScenes int `yaml:"parallel_scenes"`
}

// FormatConfig declares one named output format.
type FormatConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Label    string `yaml:"label"`
	Platform string `yaml:"platform"`
}

// VoiceConfig holds narration settings.
type VoiceConfig struct {
	Engine       string  `yaml:"engine"`
	DefaultVoice string  `yaml:"default_voice"`
	Speed        float64 `yaml:"speed"`

	// PaddingBefore/PaddingAfter are seconds of silence around narration in
	// auto-duration scenes.
	PaddingBefore float64 `yaml:"padding_before"`
	PaddingAfter  float64 `yaml:"padding_after"`

	// AutoFallbackDuration is used for auto-duration scenes without narration.
	AutoFallbackDuration float64 `yaml:"auto_fallback_duration"`
}

// ThemeConfig holds project-wide styling handed to templates.
type ThemeConfig struct {
	Primary     string `yaml:"primary"`
	Secondary   string `yaml:"secondary"`
	Background  string `yaml:"background"`
	Text        string `yaml:"text"`
	FontHeading string `yaml:"font_heading"`
	FontBody    string `yaml:"font_body"`
}

// OutputConfig holds output location and quality settings.
type OutputConfig struct {
	Directory string         `yaml:"directory"`
	Quality   string         `yaml:"quality"`
	Subtitles SubtitleConfig `yaml:"subtitles"`
}

// SubtitleConfig controls SRT generation.
type SubtitleConfig struct {
	Enabled         bool `yaml:"enabled"`
	BurnIn          bool `yaml:"burn_in"`
	MaxWordsPerLine int  `yaml:"max_words_per_line"`
}

// Format is a resolved output format.
type Format struct {
	Name     string
	Width    int
	Height   int
	Platform string
}

// Defaults returns a Project with default values.
func Defaults() Project {
	return Project{
		Project: ProjectInfo{
			Version: "1.0.0",
		},
		Video: VideoConfig{
			FPS:                       30,
			Width:                     1920,
			Height:                    1080,
			DefaultTransitionDuration: 0.5,
			ParallelScenes:            4,
		},
		Voice: VoiceConfig{
			Engine:               "native",
			Speed:                1.0,
			PaddingBefore:        0.5,
			PaddingAfter:         0.5,
			AutoFallbackDuration: 3.0,
		},
		Theme: ThemeConfig{
			Primary:     "#2563EB",
			Secondary:   "#7C3AED",
			Background:  "#0F172A",
			Text:        "#F8FAFC",
			FontHeading: "Inter",
			FontBody:    "Inter",
		},
		Output: OutputConfig{
			Directory: "./output",
			Quality:   "standard",
			Subtitles: SubtitleConfig{
				MaxWordsPerLine: 6,
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML file, applying defaults for
// missing fields.
func LoadFromFile(path string) (Project, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would fail mid-render.
func (p *Project) Validate() error {
	if p.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if p.Video.FPS <= 0 {
		return fmt.Errorf("video.fps must be positive, got %d", p.Video.FPS)
	}
	if p.Video.Width <= 0 || p.Video.Height <= 0 {
		return fmt.Errorf("video dimensions must be positive, got %dx%d", p.Video.Width, p.Video.Height)
	}
	for name, f := range p.Video.Formats {
		if f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("format %q dimensions must be positive, got %dx%d", name, f.Width, f.Height)
		}
	}
	return nil
}

// ResolveFormats returns the output formats to render, optionally filtered
// by name. With no declared formats a single implicit "default" format at
// the base video dimensions is returned. Named formats come back in
// alphabetical order so renders are deterministic.
func (p *Project) ResolveFormats(filter []string) []Format {
	if len(p.Video.Formats) == 0 {
		return []Format{{
			Name:   "default",
			Width:  p.Video.Width,
			Height: p.Video.Height,
		}}
	}

	names := make([]string, 0, len(p.Video.Formats))
	for name := range p.Video.Formats {
		if len(filter) > 0 && !containsName(filter, name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	formats := make([]Format, 0, len(names))
	for _, name := range names {
		fc := p.Video.Formats[name]
		formats = append(formats, Format{
			Name:     name,
			Width:    fc.Width,
			Height:   fc.Height,
			Platform: fc.Platform,
		})
	}
	return formats
}

// Slug returns the project name as a filesystem-friendly slug for output
// filenames.
func (p *Project) Slug() string {
	var b strings.Builder
	for _, r := range strings.ToLower(p.Project.Name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
