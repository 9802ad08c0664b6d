// Package segmenter converts word-level speech recognition output into
// sentence-level transcript segments.
package segmenter

import (
	"math"
	"strings"

	"clipforge-ai/internal/types"
)

// Options bounds how much speech is accumulated into one segment.
type Options struct {
	// MaxDuration is the running segment duration, in seconds, that forces a
	// segment break.
	MaxDuration float64
	// MaxWords is the word count that forces a segment break.
	MaxWords int
}

func DefaultOptions() Options {
	return Options{MaxDuration: 5, MaxWords: 15}
}

// sentenceTerminators covers Latin and Arabic sentence-ending punctuation.
const sentenceTerminators = ".!?،؛"

// wordEndFallback pads a word's end time when the recognizer omitted one.
const wordEndFallback = 0.5

// BuildSegments greedily accumulates words into sentence-level segments.
// A segment closes when the appended word ends in terminator punctuation,
// the segment hits the duration or word-count bound, or input runs out.
// Empty/whitespace tokens are dropped without affecting neighbor timing.
func BuildSegments(words []types.WordTimestamp, language types.Language, opts Options) []types.TranscriptSegment {
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultOptions().MaxDuration
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultOptions().MaxWords
	}

	cleaned := make([]types.WordTimestamp, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		cleaned = append(cleaned, types.WordTimestamp{
			Text:  text,
			Start: normalizeTimestamp(w.Start),
			End:   normalizeTimestamp(w.End),
		})
	}
	if len(cleaned) == 0 {
		return nil
	}

	var segments []types.TranscriptSegment
	var current []types.WordTimestamp

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, segmentFromWords(current, language))
		current = nil
	}

	for i, w := range cleaned {
		current = append(current, w)

		switch {
		case endsSentence(w.Text):
			flush()
		case segmentDuration(current) >= opts.MaxDuration:
			flush()
		case len(current) >= opts.MaxWords:
			flush()
		case i == len(cleaned)-1:
			flush()
		}
	}

	return segments
}

// NormalizeSegments passes ready-made provider segments through the same
// timestamp normalization, for upstream services that skip word granularity.
func NormalizeSegments(segments []types.TranscriptSegment, language types.Language) []types.TranscriptSegment {
	out := make([]types.TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		start := normalizeTimestamp(seg.Start)
		end := normalizeTimestamp(seg.End)
		if end <= start {
			end = start + wordEndFallback
		}

		lang := seg.Language
		if lang == "" {
			lang = language
		}

		words := make([]types.WordTimestamp, 0, len(seg.Words))
		for _, w := range seg.Words {
			wordText := strings.TrimSpace(w.Text)
			if wordText == "" {
				continue
			}
			words = append(words, types.WordTimestamp{
				Text:  wordText,
				Start: normalizeTimestamp(w.Start),
				End:   normalizeTimestamp(w.End),
			})
		}
		if len(words) == 0 {
			words = nil
		}

		out = append(out, types.TranscriptSegment{
			Text:     text,
			Start:    start,
			End:      end,
			Language: lang,
			Words:    words,
		})
	}
	return out
}

func segmentFromWords(words []types.WordTimestamp, language types.Language) types.TranscriptSegment {
	first := words[0]
	last := words[len(words)-1]

	end := last.End
	if end <= last.Start {
		end = last.Start + wordEndFallback
	}

	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}

	retained := make([]types.WordTimestamp, len(words))
	copy(retained, words)

	return types.TranscriptSegment{
		Text:     strings.Join(texts, " "),
		Start:    first.Start,
		End:      end,
		Language: language,
		Words:    retained,
	}
}

func segmentDuration(words []types.WordTimestamp) float64 {
	if len(words) == 0 {
		return 0
	}
	last := words[len(words)-1]
	end := last.End
	if end <= last.Start {
		end = last.Start
	}
	return end - words[0].Start
}

func endsSentence(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	return strings.ContainsRune(sentenceTerminators, runes[len(runes)-1])
}

// normalizeTimestamp applies the unit heuristic: values above 1000 are
// assumed to be milliseconds. Non-finite values default to 0.
func normalizeTimestamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1000 {
		return v / 1000
	}
	return v
}
