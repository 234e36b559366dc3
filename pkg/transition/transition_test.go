package transition

import (
	"testing"

	"github.com/RaaSaaR-org/vidgen/pkg/scene"
)

func sceneWith(out, in string, dur *float64) scene.Scene {
	return scene.Scene{
		Frontmatter: scene.Frontmatter{
			Template:           "feature",
			TransitionOut:      out,
			TransitionIn:       in,
			TransitionDuration: dur,
		},
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name      string
		wantType  Type
		wantKnown bool
	}{
		{"fade", Fade, true},
		{"slide-left", SlideLeft, true},
		{"slide_left", SlideLeft, true},
		{"slideleft", SlideLeft, true},
		{"slide_right", SlideRight, true},
		{"slideright", SlideRight, true},
		{"zoom", Zoom, true},
		{"wipe", Wipe, true},
		{"wipe-left", Wipe, true},
		{"wipeleft", Wipe, true},
		{"FADE", Fade, true},
		{"sparkle", Fade, false},
	}

	for _, tt := range tests {
		typ, known := ParseType(tt.name)
		if typ != tt.wantType || known != tt.wantKnown {
			t.Errorf("ParseType(%q) = (%v, %v), want (%v, %v)", tt.name, typ, known, tt.wantType, tt.wantKnown)
		}
	}
}

func TestFFmpegName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Fade, "fade"},
		{SlideLeft, "slideleft"},
		{SlideRight, "slideright"},
		{Zoom, "smoothup"},
		{Wipe, "wipeleft"},
	}
	for _, tt := range tests {
		if got := tt.typ.FFmpegName(); got != tt.want {
			t.Errorf("%v.FFmpegName() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	half := 0.25

	tests := []struct {
		name     string
		out, in  scene.Scene
		defaults Defaults
		want     *Transition
	}{
		{
			name:     "transition_out wins over transition_in",
			out:      sceneWith("zoom", "", nil),
			in:       sceneWith("", "wipe", nil),
			defaults: Defaults{Name: "fade"},
			want:     &Transition{Type: Zoom, Duration: 0.5},
		},
		{
			name:     "transition_in wins over default",
			out:      sceneWith("", "", nil),
			in:       sceneWith("", "slide-left", nil),
			defaults: Defaults{Name: "fade"},
			want:     &Transition{Type: SlideLeft, Duration: 0.5},
		},
		{
			name:     "default applies when scenes are silent",
			out:      sceneWith("", "", nil),
			in:       sceneWith("", "", nil),
			defaults: Defaults{Name: "wipe", Duration: 1.0},
			want:     &Transition{Type: Wipe, Duration: 1.0},
		},
		{
			name:     "no default means hard cut",
			out:      sceneWith("", "", nil),
			in:       sceneWith("", "", nil),
			defaults: Defaults{},
			want:     nil,
		},
		{
			name:     "explicit none suppresses the default",
			out:      sceneWith("none", "", nil),
			in:       sceneWith("", "fade", nil),
			defaults: Defaults{Name: "fade"},
			want:     nil,
		},
		{
			name:     "outgoing duration override wins",
			out:      sceneWith("fade", "", &half),
			in:       sceneWith("", "", nil),
			defaults: Defaults{Name: "fade", Duration: 1.0},
			want:     &Transition{Type: Fade, Duration: 0.25},
		},
		{
			name:     "incoming duration override beats default",
			out:      sceneWith("fade", "", nil),
			in:       sceneWith("", "", &half),
			defaults: Defaults{Name: "fade", Duration: 1.0},
			want:     &Transition{Type: Fade, Duration: 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Resolve(&tt.out, &tt.in, tt.defaults)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Resolve() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Resolve() = nil, want %+v", tt.want)
			}
			if got.Type != tt.want.Type || got.Duration != tt.want.Duration {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveUnknownNameWarnsAndFades(t *testing.T) {
	out := sceneWith("sparkle", "", nil)
	in := sceneWith("", "", nil)

	tr, warn := Resolve(&out, &in, Defaults{})
	if tr == nil || tr.Type != Fade {
		t.Fatalf("Resolve() = %+v, want fade fallback", tr)
	}
	if warn != "sparkle" {
		t.Errorf("warn = %q, want %q", warn, "sparkle")
	}
}

func TestResolveAll(t *testing.T) {
	scenes := []scene.Scene{
		sceneWith("zoom", "", nil),
		sceneWith("none", "", nil),
		sceneWith("", "", nil),
	}

	transitions, warnings := ResolveAll(scenes, Defaults{Name: "fade"})
	if len(transitions) != 2 {
		t.Fatalf("len(transitions) = %d, want 2", len(transitions))
	}
	if transitions[0] == nil || transitions[0].Type != Zoom {
		t.Errorf("transitions[0] = %+v, want zoom", transitions[0])
	}
	if transitions[1] != nil {
		t.Errorf("transitions[1] = %+v, want nil", transitions[1])
	}
	if warnings != nil {
		t.Errorf("warnings = %v, want nil", warnings)
	}
}

func TestResolveAllSingleScene(t *testing.T) {
	transitions, _ := ResolveAll([]scene.Scene{sceneWith("fade", "", nil)}, Defaults{Name: "fade"})
	if transitions != nil {
		t.Errorf("transitions = %v, want nil", transitions)
	}
}
