// Package subtitle estimates word-level timings for narration and renders
// them as SRT.
package subtitle

import (
	"fmt"
	"strings"
)

// WordTimestamp is one word's estimated position in the narration audio.
type WordTimestamp struct {
	Word  string
	Start float64
	End   float64
}

// Entry is one subtitle cue covering a group of words.
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// EstimateWordTimestamps distributes the narration duration across words in
// proportion to character count, with a small gap between words. Gaps
// shrink when they would otherwise consume more than half the duration.
// The last word always ends exactly at totalDuration.
func EstimateWordTimestamps(text string, totalDuration float64) []WordTimestamp {
	words := strings.Fields(text)
	if len(words) == 0 || totalDuration <= 0 {
		return nil
	}

	totalChars := 0
	for _, w := range words {
		totalChars += len(w)
	}
	if totalChars == 0 {
		return nil
	}

	const gap = 0.05
	gapCount := float64(len(words) - 1)
	effectiveGap := gap
	if gap*gapCount > totalDuration*0.5 && gapCount > 0 {
		effectiveGap = (totalDuration * 0.5) / gapCount
	}
	available := totalDuration - effectiveGap*gapCount

	timestamps := make([]WordTimestamp, 0, len(words))
	cursor := 0.0
	for i, w := range words {
		end := cursor + float64(len(w))/float64(totalChars)*available
		if i == len(words)-1 {
			end = totalDuration
		}
		timestamps = append(timestamps, WordTimestamp{Word: w, Start: cursor, End: end})
		cursor = end + effectiveGap
	}
	return timestamps
}

// Group chunks word timestamps into cues of at most maxWordsPerLine words.
// Each cue spans from its first word's start to its last word's end.
func Group(words []WordTimestamp, maxWordsPerLine int) []Entry {
	if len(words) == 0 {
		return nil
	}
	if maxWordsPerLine < 1 {
		maxWordsPerLine = 1
	}

	var entries []Entry
	for i := 0; i < len(words); i += maxWordsPerLine {
		end := i + maxWordsPerLine
		if end > len(words) {
			end = len(words)
		}
		chunk := words[i:end]

		texts := make([]string, len(chunk))
		for j, w := range chunk {
			texts[j] = w.Word
		}
		entries = append(entries, Entry{
			Index: len(entries) + 1,
			Start: chunk[0].Start,
			End:   chunk[len(chunk)-1].End,
			Text:  strings.Join(texts, " "),
		})
	}
	return entries
}

// ToSRT renders cues in SubRip format.
func ToSRT(entries []Entry) string {
	var out strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&out, "%d\n%s --> %s\n%s\n\n",
			e.Index, formatSRTTime(e.Start), formatSRTTime(e.End), e.Text)
	}
	return out.String()
}

// formatSRTTime renders seconds as "HH:MM:SS,mmm".
func formatSRTTime(secs float64) string {
	totalMS := int64(secs*1000 + 0.5)
	ms := totalMS % 1000
	totalS := totalMS / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", totalS/3600, (totalS/60)%60, totalS%60, ms)
}
