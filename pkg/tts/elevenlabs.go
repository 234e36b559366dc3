package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/RaaSaaR-org/vidgen/pkg/ffmpeg"
)

const (
	elevenAPIBase      = "https://api.elevenlabs.io/v1"
	elevenAPIKeyEnv    = "ELEVEN_API_KEY"
	elevenDefaultVoice = "21m00Tcm4TlvDq8ikWAM" // Rachel
	elevenModelID      = "eleven_multilingual_v2"
)

// ElevenLabsEngine synthesizes through the ElevenLabs REST API. The API
// key comes from the ELEVEN_API_KEY environment variable.
type ElevenLabsEngine struct {
	apiKey string
	client *http.Client
	runner ffmpeg.Runner
}

// NewElevenLabsEngine reads the API key from the environment.
func NewElevenLabsEngine(runner ffmpeg.Runner) (*ElevenLabsEngine, error) {
	key := os.Getenv(elevenAPIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s env var not set, get a key at https://elevenlabs.io", elevenAPIKeyEnv)
	}
	return &ElevenLabsEngine{
		apiKey: key,
		client: &http.Client{Timeout: 60 * time.Second},
		runner: runner,
	}, nil
}

func (e *ElevenLabsEngine) Name() string { return "elevenlabs" }

func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	if voice == "" {
		voice = elevenDefaultVoice
	}

	body, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": elevenModelID,
	})
	if err != nil {
		return SynthesisResult{}, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", elevenAPIBase, voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SynthesisResult{}, err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SynthesisResult{}, fmt.Errorf("elevenlabs returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("reading elevenlabs response: %w", err)
	}

	mp3Path := strings.TrimSuffix(outputPath, ".wav") + ".mp3"
	if err := os.WriteFile(mp3Path, audio, 0o644); err != nil {
		return SynthesisResult{}, fmt.Errorf("writing mp3: %w", err)
	}
	defer os.Remove(mp3Path)

	// Convert to wav, applying atempo when the requested speed deviates
	// from normal. The API itself always speaks at 1.0.
	args := []string{"-y", "-i", mp3Path}
	if speed < 0.99 || speed > 1.01 {
		clamped := speed
		if clamped < 0.5 {
			clamped = 0.5
		}
		args = append(args, "-af", fmt.Sprintf("atempo=%g", clamped))
	}
	args = append(args, "-acodec", "pcm_s16le", "-ar", "22050", outputPath)
	if err := e.runner.Run(ctx, "ffmpeg", args...); err != nil {
		return SynthesisResult{}, fmt.Errorf("converting elevenlabs output to wav: %w", err)
	}

	secs, err := ffmpeg.Duration(ctx, e.runner, outputPath)
	if err != nil {
		return SynthesisResult{}, err
	}
	return SynthesisResult{AudioPath: outputPath, Duration: secs}, nil
}

type elevenVoice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
	Labels  struct {
		Language string `json:"language"`
		Gender   string `json:"gender"`
	} `json:"labels"`
}

type elevenVoicesResponse struct {
	Voices []elevenVoice `json:"voices"`
}

func (e *ElevenLabsEngine) ListVoices(ctx context.Context) ([]VoiceInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, elevenAPIBase+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing elevenlabs voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs voices returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseElevenVoices(data), nil
}

func parseElevenVoices(data []byte) []VoiceInfo {
	var parsed elevenVoicesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}

	voices := make([]VoiceInfo, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		lang := v.Labels.Language
		if lang == "" {
			lang = "en"
		}
		voices = append(voices, VoiceInfo{
			ID: v.VoiceID, Name: v.Name, Language: lang,
			Gender: v.Labels.Gender, Engine: "elevenlabs", Available: true,
		})
	}
	return voices
}
