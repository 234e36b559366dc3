package tts

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
)

const edgeDefaultVoice = "en-US-AriaNeural"

// EdgeEngine uses Microsoft Edge neural voices through the edge-tts Python
// CLI. No API key, but it needs network access.
type EdgeEngine struct {
	runner ffmpeg.Runner
}

// NewEdgeEngine verifies edge-tts is on PATH.
func NewEdgeEngine(runner ffmpeg.Runner) (*EdgeEngine, error) {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return nil, fmt.Errorf("edge-tts not found, install with: pip install edge-tts")
	}
	return &EdgeEngine{runner: runner}, nil
}

func (e *EdgeEngine) Name() string { return "edge" }

// edgeRate converts a speed multiplier to the edge-tts --rate form:
// 1.0 -> "+0%", 1.2 -> "+20%", 0.8 -> "-20%".
func edgeRate(speed float64) string {
	pct := int(math.Round((speed - 1.0) * 100))
	return fmt.Sprintf("%+d%%", pct)
}

func (e *EdgeEngine) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	if voice == "" {
		voice = edgeDefaultVoice
	}

	mp3Path := strings.TrimSuffix(outputPath, ".wav") + ".mp3"
	err := e.runner.Run(ctx, "edge-tts",
		"--voice", voice,
		"--rate", edgeRate(speed),
		"--text", text,
		"--write-media", mp3Path,
	)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("edge-tts: %w", err)
	}
	defer os.Remove(mp3Path)

	err = e.runner.Run(ctx, "ffmpeg",
		"-y", "-i", mp3Path,
		"-acodec", "pcm_s16le",
		"-ar", "22050",
		outputPath,
	)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("converting edge-tts output to wav: %w", err)
	}

	secs, err := ffmpeg.Duration(ctx, e.runner, outputPath)
	if err != nil {
		return SynthesisResult{}, err
	}
	return SynthesisResult{AudioPath: outputPath, Duration: secs}, nil
}

func (e *EdgeEngine) ListVoices(ctx context.Context) ([]VoiceInfo, error) {
	out, err := e.runner.Output(ctx, "edge-tts", "--list-voices")
	if err != nil {
		return nil, fmt.Errorf("listing edge-tts voices: %w", err)
	}
	return parseEdgeVoices(string(out)), nil
}

// parseEdgeVoices reads the table `edge-tts --list-voices` prints:
// "Name  Gender  ContentCategories  VoicePersonalities" rows after a
// header and separator line.
func parseEdgeVoices(output string) []VoiceInfo {
	var voices []VoiceInfo
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[0]
		if name == "Name" || strings.HasPrefix(name, "-") {
			continue
		}
		// Voice names look like "en-US-AriaNeural"; the locale prefix is
		// the language.
		lang := name
		if idx := strings.LastIndex(name, "-"); idx > 0 {
			lang = name[:idx]
		}
		voices = append(voices, VoiceInfo{
			ID: name, Name: name, Language: lang,
			Gender: strings.ToLower(fields[1]), Engine: "edge", Available: true,
		})
	}
	return voices
}
