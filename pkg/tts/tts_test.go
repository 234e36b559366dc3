package tts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeEngine counts synthesis calls and writes a fixed payload.
type fakeEngine struct {
	calls    int
	duration float64
}

func (f *fakeEngine) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) (SynthesisResult, error) {
	f.calls++
	if err := os.WriteFile(outputPath, []byte("fake-wav"), 0o644); err != nil {
		return SynthesisResult{}, err
	}
	return SynthesisResult{AudioPath: outputPath, Duration: f.duration}, nil
}

func (f *fakeEngine) ListVoices(ctx context.Context) ([]VoiceInfo, error) { return nil, nil }
func (f *fakeEngine) Name() string                                       { return "fake" }

func TestCacheKeyDeterministic(t *testing.T) {
	a := cacheKey("elevenlabs", "Rachel", 1.0, "Hello world")
	b := cacheKey("elevenlabs", "Rachel", 1.0, "Hello world")
	if a != b {
		t.Errorf("same inputs gave different keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64", len(a))
	}
}

func TestCacheKeyVaries(t *testing.T) {
	base := cacheKey("native", "", 1.0, "Hello")
	variants := []string{
		cacheKey("native", "", 1.0, "Goodbye"),
		cacheKey("native", "alice", 1.0, "Hello"),
		cacheKey("native", "", 1.5, "Hello"),
		cacheKey("edge", "", 1.0, "Hello"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base key", i)
		}
	}
}

func TestSynthesizeCachedRoundTrip(t *testing.T) {
	projectDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "scene-000.wav")
	engine := &fakeEngine{duration: 4.2}
	ctx := context.Background()

	first, err := SynthesizeCached(ctx, engine, "Hello world", "alice", 1.0, outPath, projectDir)
	if err != nil {
		t.Fatalf("first synthesis: %v", err)
	}
	if first.Cached {
		t.Error("first synthesis should miss the cache")
	}
	if first.Duration != 4.2 {
		t.Errorf("Duration = %v", first.Duration)
	}

	second, err := SynthesizeCached(ctx, engine, "Hello world", "alice", 1.0, outPath, projectDir)
	if err != nil {
		t.Fatalf("second synthesis: %v", err)
	}
	if !second.Cached {
		t.Error("second synthesis should hit the cache")
	}
	if second.Duration != 4.2 {
		t.Errorf("cached Duration = %v", second.Duration)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}

	data, err := os.ReadFile(outPath)
	if err != nil || string(data) != "fake-wav" {
		t.Errorf("restored audio = %q, %v", data, err)
	}
}

func TestSynthesizeCachedDifferentTextMisses(t *testing.T) {
	projectDir := t.TempDir()
	dir := t.TempDir()
	engine := &fakeEngine{duration: 2.0}
	ctx := context.Background()

	if _, err := SynthesizeCached(ctx, engine, "one", "", 1.0, filepath.Join(dir, "a.wav"), projectDir); err != nil {
		t.Fatal(err)
	}
	if _, err := SynthesizeCached(ctx, engine, "two", "", 1.0, filepath.Join(dir, "b.wav"), projectDir); err != nil {
		t.Fatal(err)
	}
	if engine.calls != 2 {
		t.Errorf("engine called %d times, want 2", engine.calls)
	}
}

func TestReadSidecarErrors(t *testing.T) {
	if _, ok := readSidecar("/nonexistent/sidecar.json"); ok {
		t.Error("missing file should miss")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := readSidecar(bad); ok {
		t.Error("invalid json should miss")
	}
}

func TestWriteSidecarTruncatesPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.json")
	writeSidecar(path, 1.0, "native", "", strings.Repeat("a", 200))

	secs, ok := readSidecar(path)
	if !ok || secs != 1.0 {
		t.Fatalf("sidecar round trip: %v %v", secs, ok)
	}
	data, _ := os.ReadFile(path)
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		t.Fatal(err)
	}
	if len(sc.TextPreview) != 80 {
		t.Errorf("preview length = %d, want 80", len(sc.TextPreview))
	}
}

func TestEdgeRate(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{1.0, "+0%"},
		{1.2, "+20%"},
		{0.8, "-20%"},
	}
	for _, tt := range tests {
		if got := edgeRate(tt.speed); got != tt.want {
			t.Errorf("edgeRate(%v) = %q, want %q", tt.speed, got, tt.want)
		}
	}
}

func TestParseElevenVoices(t *testing.T) {
	payload := []byte(`{
		"voices": [
			{"voice_id": "abc123", "name": "Rachel", "labels": {"language": "en", "gender": "female"}},
			{"voice_id": "def456", "name": "Adam", "labels": {"language": "", "gender": "male"}}
		]
	}`)

	voices := parseElevenVoices(payload)
	if len(voices) != 2 {
		t.Fatalf("len = %d, want 2", len(voices))
	}
	if voices[0].ID != "abc123" || voices[0].Gender != "female" || voices[0].Engine != "elevenlabs" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
	if voices[1].Language != "en" {
		t.Errorf("missing language should default to en, got %q", voices[1].Language)
	}

	if got := parseElevenVoices([]byte("not json")); got != nil {
		t.Errorf("invalid json should return nil, got %v", got)
	}
}

func TestParseEspeakVoices(t *testing.T) {
	output := `Pty Language       Age/Gender VoiceName          File          Other Languages
 5  af              M  Afrikaans          gmw/af
 5  en-us           M  English_(America)  gmw/en-US      (en 2)(en-r 5)`

	voices := parseEspeakVoices(output)
	if len(voices) != 2 {
		t.Fatalf("len = %d, want 2", len(voices))
	}
	if voices[0].ID != "af" || voices[0].Gender != "male" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
	if voices[1].Language != "en-us" {
		t.Errorf("voices[1].Language = %q", voices[1].Language)
	}
}

func TestParseSayVoices(t *testing.T) {
	output := `Samantha             en_US    # Hello, my name is Samantha.
Kyoko                ja_JP    # こんにちは`

	voices := parseSayVoices(output)
	if len(voices) != 2 {
		t.Fatalf("len = %d, want 2", len(voices))
	}
	if voices[0].Name != "Samantha" || voices[0].Language != "en_US" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
}
