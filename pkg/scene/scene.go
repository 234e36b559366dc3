// Package scene provides the scene data model: markdown scene files with
// YAML frontmatter, the auto/fixed duration policy, and per-format override
// merging.
package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration is a scene's duration policy: automatically derived from
// narration length plus padding, or a fixed number of seconds. The zero
// value is Auto.
type Duration struct {
	fixed bool
	secs  float64
}

// AutoDuration returns the auto policy.
func AutoDuration() Duration {
	return Duration{}
}

// FixedDuration returns a fixed policy of secs seconds.
func FixedDuration(secs float64) Duration {
	return Duration{fixed: true, secs: secs}
}

// IsAuto reports whether the policy derives duration from narration.
func (d Duration) IsAuto() bool {
	return !d.fixed
}

// Fixed returns the fixed seconds value and whether the policy is fixed.
func (d Duration) Fixed() (float64, bool) {
	return d.secs, d.fixed
}

// Resolve returns the effective duration in seconds.
//
//   - Auto with narration: narrationSecs + paddingBefore + paddingAfter
//   - Auto without narration: fallback
//   - Fixed(d): d, regardless of narration
//
// Pure function; callers are responsible for non-negative inputs.
func (d Duration) Resolve(narrationSecs *float64, paddingBefore, paddingAfter, fallback float64) float64 {
	if d.fixed {
		return d.secs
	}
	if narrationSecs != nil {
		return *narrationSecs + paddingBefore + paddingAfter
	}
	return fallback
}

// UnmarshalYAML accepts "auto", a bare number, or a "5s" suffix string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be \"auto\" or a number, got %s", value.Tag)
	}

	raw := strings.TrimSpace(value.Value)
	if strings.EqualFold(raw, "auto") {
		*d = AutoDuration()
		return nil
	}

	numStr := strings.TrimSpace(strings.TrimSuffix(raw, "s"))
	secs, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return fmt.Errorf("duration must be \"auto\" or a number, got %q", raw)
	}
	*d = FixedDuration(secs)
	return nil
}

// MarshalYAML emits "auto" or the seconds value.
func (d Duration) MarshalYAML() (interface{}, error) {
	if d.fixed {
		return d.secs, nil
	}
	return "auto", nil
}

// TotalFrames returns the frame count for an effective duration at fps.
func TotalFrames(effectiveDuration float64, fps int) int {
	return int(math.Ceil(effectiveDuration * float64(fps)))
}

// Background overrides the theme background for one scene.
type Background struct {
	Color string `yaml:"color"`
	Image string `yaml:"image"`
}

// AudioConfig references background music for one scene.
type AudioConfig struct {
	// Music is a path to a music file; supports the @assets/ prefix.
	Music string `yaml:"music"`
	// MusicVolume is 0.0-1.0; nil means the 0.3 default.
	MusicVolume *float64 `yaml:"music_volume"`
}

// FormatOverride adjusts props and background when rendering one named
// output format.
type FormatOverride struct {
	Props      map[string]interface{} `yaml:"props"`
	Background *Background            `yaml:"background"`
}

// Frontmatter is the structured header of a scene file.
type Frontmatter struct {
	Template string                 `yaml:"template"`
	Duration Duration               `yaml:"duration"`
	Props    map[string]interface{} `yaml:"props"`

	Background *Background `yaml:"background"`

	TransitionIn       string   `yaml:"transition_in"`
	TransitionOut      string   `yaml:"transition_out"`
	TransitionDuration *float64 `yaml:"transition_duration"`

	Voice string       `yaml:"voice"`
	Audio *AudioConfig `yaml:"audio"`

	FormatOverrides map[string]FormatOverride `yaml:"format_overrides"`
}

// Scene is one addressable unit of video content. Scenes are read-only for
// a render pass; format-specific variants are produced by
// ApplyFormatOverrides.
type Scene struct {
	Frontmatter Frontmatter
	Script      string
	SourcePath  string
}

// MusicVolume returns the scene's music volume, defaulting to 0.3.
func (s *Scene) MusicVolume() float64 {
	if s.Frontmatter.Audio != nil && s.Frontmatter.Audio.MusicVolume != nil {
		return *s.Frontmatter.Audio.MusicVolume
	}
	return 0.3
}

// MusicPath returns the scene's music reference, or "" when absent.
func (s *Scene) MusicPath() string {
	if s.Frontmatter.Audio == nil {
		return ""
	}
	return s.Frontmatter.Audio.Music
}

// ApplyFormatOverrides returns a derived copy of the scene with the named
// format's prop and background overrides merged in. The receiver is never
// mutated, so the original scene list stays safely shared across the
// per-format render loop.
func (s *Scene) ApplyFormatOverrides(formatName string) Scene {
	derived := *s
	derived.Frontmatter.Props = copyProps(s.Frontmatter.Props)

	override, ok := s.Frontmatter.FormatOverrides[formatName]
	if !ok {
		return derived
	}

	for k, v := range override.Props {
		derived.Frontmatter.Props[k] = v
	}
	if override.Background != nil {
		bg := *override.Background
		derived.Frontmatter.Background = &bg
	}
	return derived
}

func copyProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
