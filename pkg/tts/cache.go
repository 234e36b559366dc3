package tts

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// cacheDirName is the project-relative directory holding cached narration.
const cacheDirName = "assets/voiceover"

// SynthesizeCached wraps an engine with file-based caching. The key hashes
// everything that affects the audio content; cached clips live under the
// project's assets/voiceover directory as <hash>.wav with a <hash>.json
// sidecar carrying the duration.
func SynthesizeCached(ctx context.Context, engine Engine, text, voice string, speed float64, outputPath, projectDir string) (SynthesisResult, error) {
	hash := cacheKey(engine.Name(), voice, speed, text)
	cacheDir := filepath.Join(projectDir, cacheDirName)
	cachedWav := filepath.Join(cacheDir, hash+".wav")
	cachedJSON := filepath.Join(cacheDir, hash+".json")

	if secs, ok := readSidecar(cachedJSON); ok && fileExists(cachedWav) {
		if err := copyAudio(cachedWav, outputPath); err != nil {
			return SynthesisResult{}, err
		}
		return SynthesisResult{AudioPath: outputPath, Duration: secs, Cached: true}, nil
	}

	result, err := engine.Synthesize(ctx, text, voice, speed, outputPath)
	if err != nil {
		return SynthesisResult{}, err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return SynthesisResult{}, fmt.Errorf("creating voiceover cache: %w", err)
	}
	if err := copyAudio(outputPath, cachedWav); err != nil {
		return SynthesisResult{}, err
	}
	writeSidecar(cachedJSON, result.Duration, engine.Name(), voice, text)

	return result, nil
}

// cacheKey hashes engine, voice, speed, and text with NUL separators so no
// field combination can collide with another.
func cacheKey(engineName, voice string, speed float64, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%g\x00%s", engineName, voice, speed, text)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type sidecar struct {
	Duration    float64 `json:"duration_secs"`
	Engine      string  `json:"engine"`
	Voice       string  `json:"voice"`
	TextPreview string  `json:"text_preview"`
}

// readSidecar returns the cached duration. Any read or parse failure is a
// cache miss.
func readSidecar(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return 0, false
	}
	return sc.Duration, true
}

// writeSidecar records duration plus metadata for human inspection. Sidecar
// write failures are ignored; the cache entry just won't hit next time.
func writeSidecar(path string, duration float64, engineName, voice, text string) {
	preview := []rune(text)
	if len(preview) > 80 {
		preview = preview[:80]
	}
	data, err := json.MarshalIndent(sidecar{
		Duration:    duration,
		Engine:      engineName,
		Voice:       voice,
		TextPreview: string(preview),
	}, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyAudio(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening cached audio: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying audio: %w", err)
	}
	return out.Close()
}
