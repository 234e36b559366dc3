package pipeline

import (
	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/scene"
	"github.com/RaaSaaR-org/vidgen/pkg/transition"
)

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput contains everything needed to capture and encode one scene
// for one output format.
type CaptureInput struct {
	Scene      scene.Scene // Format-derived copy; the shared originals stay untouched
	SceneIndex int

	Width  int
	Height int
	FPS    int

	Duration float64 // Effective duration in seconds
	Encoding config.Encoding

	OutputPath string // Destination for this scene's video file

	AudioPath   string  // Narration audio file; empty means no narration
	MusicPath   string  // Background music file; empty means no music
	MusicVolume float64 // Music volume 0.0-1.0

	AudioDelay   float64 // Seconds of silence before narration starts
	PaddingAfter float64 // Seconds of tail padding after narration ends
}

// CaptureResult contains the outcome of one scene capture.
type CaptureResult struct {
	OutputPath string
	Frames     int  // Frames actually captured (1 for static scenes)
	Static     bool // True when the scene was encoded via the static-clip path
}

// =============================================================================
// Concat Stage Types
// =============================================================================

// ConcatInput contains the per-scene files and resolved transitions to join
// into one output video.
type ConcatInput struct {
	SceneFiles  []string
	Durations   []float64 // Effective duration per scene, same order as SceneFiles
	Transitions []*transition.Transition
	OutputPath  string
	Encoding    config.Encoding
}

// ConcatResult contains the outcome of concatenation.
type ConcatResult struct {
	OutputPath string
	Reencoded  bool // True when the cross-fade filter-graph path ran
}
