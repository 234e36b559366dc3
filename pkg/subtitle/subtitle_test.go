package subtitle

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestEstimateWordTimestamps(t *testing.T) {
	words := EstimateWordTimestamps("The quick brown fox jumps", 5.0)
	if len(words) != 5 {
		t.Fatalf("len = %d, want 5", len(words))
	}
	if words[0].Start != 0 {
		t.Errorf("first start = %v", words[0].Start)
	}
	if math.Abs(words[4].End-5.0) > 0.001 {
		t.Errorf("last end = %v, want 5.0", words[4].End)
	}
	for i := 1; i < len(words); i++ {
		if words[i].Start < words[i-1].End {
			t.Errorf("timestamps not monotonic at %d: %v < %v", i, words[i].Start, words[i-1].End)
		}
	}
}

func TestEstimateSingleWord(t *testing.T) {
	words := EstimateWordTimestamps("Hello", 3.0)
	if len(words) != 1 {
		t.Fatalf("len = %d, want 1", len(words))
	}
	if words[0].Start != 0 || words[0].End != 3.0 || words[0].Word != "Hello" {
		t.Errorf("got %+v", words[0])
	}
}

func TestEstimateProportional(t *testing.T) {
	words := EstimateWordTimestamps("I extraordinary", 10.0)
	if len(words) != 2 {
		t.Fatalf("len = %d, want 2", len(words))
	}
	durShort := words[0].End - words[0].Start
	durLong := words[1].End - words[1].Start
	if durLong < durShort*5 {
		t.Errorf("long word %v should dwarf short word %v", durLong, durShort)
	}
}

func TestEstimateTightDuration(t *testing.T) {
	// Seven words in 2.5 seconds; gaps must shrink rather than overflow.
	words := EstimateWordTimestamps("one two three four five six seven", 2.5)
	if len(words) != 7 {
		t.Fatalf("len = %d, want 7", len(words))
	}
	if math.Abs(words[6].End-2.5) > 0.001 {
		t.Errorf("last end = %v, want 2.5", words[6].End)
	}
}

func TestEstimateDegenerateInputs(t *testing.T) {
	if words := EstimateWordTimestamps("", 5.0); words != nil {
		t.Errorf("empty text: %v", words)
	}
	if words := EstimateWordTimestamps("   ", 5.0); words != nil {
		t.Errorf("whitespace text: %v", words)
	}
	if words := EstimateWordTimestamps("Hello world", 0); words != nil {
		t.Errorf("zero duration: %v", words)
	}
}

func TestGroup(t *testing.T) {
	words := make([]WordTimestamp, 20)
	for i := range words {
		words[i] = WordTimestamp{
			Word:  fmt.Sprintf("word%d", i),
			Start: float64(i) * 0.5,
			End:   float64(i+1) * 0.5,
		}
	}

	entries := Group(words, 6)
	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4", len(entries))
	}
	if entries[0].Index != 1 || entries[0].Text != "word0 word1 word2 word3 word4 word5" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[3].Text != "word18 word19" {
		t.Errorf("entries[3].Text = %q", entries[3].Text)
	}
	if entries[0].Start != 0 || entries[0].End != 3.0 {
		t.Errorf("entries[0] span = [%v, %v]", entries[0].Start, entries[0].End)
	}
}

func TestGroupEdgeCases(t *testing.T) {
	if entries := Group(nil, 6); entries != nil {
		t.Errorf("empty input: %v", entries)
	}

	two := []WordTimestamp{
		{Word: "one", Start: 0, End: 1},
		{Word: "two", Start: 1, End: 2},
	}
	entries := Group(two, 6)
	if len(entries) != 1 || entries[0].Text != "one two" {
		t.Errorf("short input: %+v", entries)
	}

	// A zero max must not loop forever.
	entries = Group(two, 0)
	if len(entries) != 2 {
		t.Errorf("zero max: %+v", entries)
	}
}

func TestToSRT(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 0, End: 2.5, Text: "Hello world"},
		{Index: 2, Start: 2.5, End: 5.0, Text: "Goodbye world"},
	}
	srt := ToSRT(entries)
	if !strings.Contains(srt, "1\n00:00:00,000 --> 00:00:02,500\nHello world\n") {
		t.Errorf("srt missing first cue:\n%s", srt)
	}
	if !strings.Contains(srt, "2\n00:00:02,500 --> 00:00:05,000\nGoodbye world\n") {
		t.Errorf("srt missing second cue:\n%s", srt)
	}
}

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "00:00:00,000"},
		{65.5, "00:01:05,500"},
		{3661.123, "01:01:01,123"},
		{0.999, "00:00:00,999"},
	}
	for _, tt := range tests {
		if got := formatSRTTime(tt.secs); got != tt.want {
			t.Errorf("formatSRTTime(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
