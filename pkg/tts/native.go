package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
)

// NativeEngine shells out to the platform speech command: say on macOS,
// espeak-ng elsewhere.
type NativeEngine struct {
	runner ffmpeg.Runner
	darwin bool
}

// NewNativeEngine verifies the platform command is on PATH.
func NewNativeEngine(runner ffmpeg.Runner) (*NativeEngine, error) {
	e := &NativeEngine{runner: runner, darwin: runtime.GOOS == "darwin"}
	if _, err := exec.LookPath(e.command()); err != nil {
		return nil, fmt.Errorf("TTS command %q not found: %w", e.command(), err)
	}
	return e, nil
}

func (e *NativeEngine) Name() string { return "native" }

func (e *NativeEngine) command() string {
	if e.darwin {
		return "say"
	}
	return "espeak-ng"
}

// rate converts the 1.0-normal speed multiplier into the command's
// words-per-minute value. say idles around 200 wpm, espeak-ng around 175.
func (e *NativeEngine) rate(speed float64) string {
	base := 175.0
	if e.darwin {
		base = 200.0
	}
	return fmt.Sprintf("%d", int(speed*base))
}

func (e *NativeEngine) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	if e.darwin {
		return e.synthesizeSay(ctx, text, voice, speed, outputPath)
	}
	return e.synthesizeEspeak(ctx, text, voice, speed, outputPath)
}

func (e *NativeEngine) synthesizeSay(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	// say emits AIFF; convert to wav after.
	aiffPath := strings.TrimSuffix(outputPath, ".wav") + ".aiff"

	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "-r", e.rate(speed), "-o", aiffPath, "--", text)
	if err := e.runner.Run(ctx, "say", args...); err != nil {
		return SynthesisResult{}, fmt.Errorf("say: %w", err)
	}
	defer os.Remove(aiffPath)

	if err := e.convertToWav(ctx, aiffPath, outputPath); err != nil {
		return SynthesisResult{}, err
	}
	return e.finish(ctx, outputPath)
}

func (e *NativeEngine) synthesizeEspeak(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "-s", e.rate(speed), "-w", outputPath, "--", text)
	if err := e.runner.Run(ctx, "espeak-ng", args...); err != nil {
		return SynthesisResult{}, fmt.Errorf("espeak-ng: %w", err)
	}
	return e.finish(ctx, outputPath)
}

func (e *NativeEngine) convertToWav(ctx context.Context, src, dst string) error {
	err := e.runner.Run(ctx, "ffmpeg",
		"-y", "-i", src,
		"-acodec", "pcm_s16le",
		"-ar", "22050",
		dst,
	)
	if err != nil {
		return fmt.Errorf("converting %s to wav: %w", src, err)
	}
	return nil
}

func (e *NativeEngine) finish(ctx context.Context, outputPath string) (SynthesisResult, error) {
	secs, err := ffmpeg.Duration(ctx, e.runner, outputPath)
	if err != nil {
		return SynthesisResult{}, err
	}
	return SynthesisResult{AudioPath: outputPath, Duration: secs}, nil
}

func (e *NativeEngine) ListVoices(ctx context.Context) ([]VoiceInfo, error) {
	if e.darwin {
		out, err := e.runner.Output(ctx, "say", "-v", "?")
		if err != nil {
			return nil, fmt.Errorf("listing say voices: %w", err)
		}
		return parseSayVoices(string(out)), nil
	}

	out, err := e.runner.Output(ctx, "espeak-ng", "--voices")
	if err != nil {
		return nil, fmt.Errorf("listing espeak-ng voices: %w", err)
	}
	return parseEspeakVoices(string(out)), nil
}

// parseSayVoices reads `say -v ?` lines of the form
// "Samantha             en_US    # Hello, my name is Samantha".
func parseSayVoices(output string) []VoiceInfo {
	var voices []VoiceInfo
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, rest, ok := strings.Cut(line, "  ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		lang := "unknown"
		if fields := strings.Fields(rest); len(fields) > 0 {
			lang = fields[0]
		}
		voices = append(voices, VoiceInfo{
			ID: name, Name: name, Language: lang,
			Engine: "native", Available: true,
		})
	}
	return voices
}

// parseEspeakVoices reads `espeak-ng --voices` table rows, skipping the
// header. Columns: Pty Language Age/Gender VoiceName File.
func parseEspeakVoices(output string) []VoiceInfo {
	lines := strings.Split(output, "\n")
	var voices []VoiceInfo
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		gender := ""
		switch fields[2] {
		case "M":
			gender = "male"
		case "F":
			gender = "female"
		}
		voices = append(voices, VoiceInfo{
			ID: fields[1], Name: fields[3], Language: fields[1],
			Gender: gender, Engine: "native", Available: true,
		})
	}
	return voices
}
