// Package tts synthesizes narration audio through pluggable engines: the
// platform's native speech command, Microsoft Edge neural voices via the
// edge-tts CLI, and the ElevenLabs cloud API. Synthesized audio is
// normalized to 22050 Hz wav and cached per project.
package tts

import (
	"context"
	"fmt"

	"github.com/RaaSaaR-org/vidgen/pkg/config"
	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
)

// SynthesisResult describes one synthesized narration clip.
type SynthesisResult struct {
	AudioPath string
	Duration  float64
	Cached    bool
}

// VoiceInfo is one voice an engine can speak with.
type VoiceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	Gender    string `json:"gender"`
	Engine    string `json:"engine"`
	Available bool   `json:"available"`
}

// Engine is a pluggable TTS backend. Synthesis is blocking but short, and
// runs before any browser work starts.
type Engine interface {
	Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error)
	ListVoices(ctx context.Context) ([]VoiceInfo, error)
	Name() string
}

// NewEngine builds the engine named by the project voice config.
func NewEngine(cfg config.VoiceConfig, runner ffmpeg.Runner) (Engine, error) {
	switch cfg.Engine {
	case "native":
		return NewNativeEngine(runner)
	case "edge":
		return NewEdgeEngine(runner)
	case "elevenlabs":
		return NewElevenLabsEngine(runner)
	default:
		return nil, fmt.Errorf("unknown TTS engine %q, supported: native, edge, elevenlabs", cfg.Engine)
	}
}
