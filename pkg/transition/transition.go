// Package transition resolves per-boundary cross-fade transitions between
// scenes and maps friendly names onto ffmpeg xfade filter names.
package transition

import (
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/scene"
)

// Type is a supported transition style.
type Type int

const (
	Fade Type = iota
	SlideLeft
	SlideRight
	Zoom
	Wipe
)

// DefaultDuration applies when neither scene nor project specifies one.
const DefaultDuration = 0.5

// ParseType maps a frontmatter or config name to a transition type. The
// second return reports whether the name was recognized; unrecognized names
// fall back to Fade so a typo degrades gracefully instead of failing a
// render.
func ParseType(name string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fade":
		return Fade, true
	case "slide-left", "slide_left", "slideleft":
		return SlideLeft, true
	case "slide-right", "slide_right", "slideright":
		return SlideRight, true
	case "zoom":
		return Zoom, true
	case "wipe", "wipe-left", "wipeleft":
		return Wipe, true
	default:
		return Fade, false
	}
}

// FFmpegName returns the xfade transition name for the type.
func (t Type) FFmpegName() string {
	switch t {
	case SlideLeft:
		return "slideleft"
	case SlideRight:
		return "slideright"
	case Zoom:
		return "smoothup"
	case Wipe:
		return "wipeleft"
	default:
		return "fade"
	}
}

func (t Type) String() string {
	switch t {
	case SlideLeft:
		return "slide-left"
	case SlideRight:
		return "slide-right"
	case Zoom:
		return "zoom"
	case Wipe:
		return "wipe"
	default:
		return "fade"
	}
}

// Transition is a resolved boundary transition. A nil *Transition means a
// hard cut.
type Transition struct {
	Type     Type
	Duration float64
}

// Defaults carries the project-level transition settings.
type Defaults struct {
	// Name is the project default transition; "" or "none" means hard cuts
	// unless a scene asks for a transition.
	Name string
	// Duration applies when no scene at the boundary overrides it. Zero
	// means DefaultDuration.
	Duration float64
}

// none reports whether a name explicitly disables the boundary transition.
func none(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "none")
}

// Resolve determines the transition at the boundary between an outgoing and
// an incoming scene. Precedence for the style: the outgoing scene's
// transition_out, then the incoming scene's transition_in, then the project
// default. A scene that names "none" suppresses the transition even when a
// project default exists. Duration precedence mirrors the style precedence.
//
// The returned warning is a non-empty unrecognized name, reported once per
// boundary so the caller can log it.
func Resolve(out, in *scene.Scene, defaults Defaults) (tr *Transition, warn string) {
	name := defaults.Name
	if out != nil && out.Frontmatter.TransitionOut != "" {
		name = out.Frontmatter.TransitionOut
	} else if in != nil && in.Frontmatter.TransitionIn != "" {
		name = in.Frontmatter.TransitionIn
	}

	if name == "" || none(name) {
		return nil, ""
	}

	typ, known := ParseType(name)
	if !known {
		warn = name
	}

	duration := defaults.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	if out != nil && out.Frontmatter.TransitionDuration != nil {
		duration = *out.Frontmatter.TransitionDuration
	} else if in != nil && in.Frontmatter.TransitionDuration != nil {
		duration = *in.Frontmatter.TransitionDuration
	}

	return &Transition{Type: typ, Duration: duration}, warn
}

// ResolveAll computes the n-1 boundary transitions for an ordered scene
// list. Warnings are keyed by boundary index.
func ResolveAll(scenes []scene.Scene, defaults Defaults) ([]*Transition, map[int]string) {
	if len(scenes) < 2 {
		return nil, nil
	}
	transitions := make([]*Transition, len(scenes)-1)
	warnings := map[int]string{}
	for i := 0; i < len(scenes)-1; i++ {
		tr, warn := Resolve(&scenes[i], &scenes[i+1], defaults)
		transitions[i] = tr
		if warn != "" {
			warnings[i] = warn
		}
	}
	if len(warnings) == 0 {
		warnings = nil
	}
	return transitions, warnings
}
