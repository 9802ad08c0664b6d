package editor

import (
	"math"
	"sort"
	"strings"

	"clipforge-ai/internal/types"
	apperrors "clipforge-ai/pkg/errors"
)

// UpdateCaptionText replaces a caption's text. Word timestamps no longer
// match the edited text and are dropped. Marks the transcription as
// user-edited so the caption survives later trim changes.
func (s *Session) UpdateCaptionText(id int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaption(id)
	if c == nil {
		return apperrors.ErrCaptionNotFound
	}
	c.Text = strings.TrimSpace(text)
	c.WordTimestamps = nil
	s.state.HasUserEditedTranscription = true
	s.bumpAndBroadcast()
	return nil
}

// UpdateCaptionStyle patches the target caption's style, then broadcasts the
// resulting full style to every other caption. Captions in one clip share
// one look; each caption keeps its own position.
func (s *Session) UpdateCaptionStyle(id int, patch types.CaptionStylePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaption(id)
	if c == nil {
		return apperrors.ErrCaptionNotFound
	}
	c.Style = patch.Apply(c.Style)
	s.broadcastStyle(c.Style)
	s.bumpAndBroadcast()
	return nil
}

// UpdateCaptionStyleForIDs is the narrow variant used by style templates:
// it patches only the given captions, leaving the rest untouched.
func (s *Session) UpdateCaptionStyleForIDs(ids []int, patch types.CaptionStylePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for _, id := range ids {
		c := s.findCaption(id)
		if c == nil {
			continue
		}
		c.Style = patch.Apply(c.Style)
		style := c.Style
		s.state.LastEditedCaptionStyle = &style
		touched++
	}
	if touched == 0 {
		return apperrors.ErrCaptionNotFound
	}
	s.bumpAndBroadcast()
	return nil
}

// broadcastStyle applies style to every caption. Must run with s.mu held.
func (s *Session) broadcastStyle(style types.CaptionStyle) {
	for i := range s.state.Captions {
		s.state.Captions[i].Style = style
	}
	recorded := style
	s.state.LastEditedCaptionStyle = &recorded
}

// SplitCaptionAtPlayhead splits a caption into two at the word boundary
// nearest the playhead. The playhead must be strictly inside the caption and
// the caption must contain at least two words.
func (s *Session) SplitCaptionAtPlayhead(id int, playheadTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaption(id)
	if c == nil {
		return apperrors.ErrCaptionNotFound
	}
	if playheadTime <= c.StartTime || playheadTime >= c.EndTime {
		return apperrors.ErrCaptionSplitInvalid
	}
	words := strings.Fields(c.Text)
	if len(words) < 2 {
		return apperrors.ErrCaptionSplitInvalid
	}

	duration := c.EndTime - c.StartTime
	ratio := (playheadTime - c.StartTime) / duration
	splitIndex := int(math.Round(ratio * float64(len(words))))
	if splitIndex < 1 {
		splitIndex = 1
	}
	if splitIndex > len(words)-1 {
		splitIndex = len(words) - 1
	}
	boundary := c.StartTime + duration*float64(splitIndex)/float64(len(words))

	first := *c
	first.Text = strings.Join(words[:splitIndex], " ")
	first.EndTime = boundary

	second := *c
	second.Text = strings.Join(words[splitIndex:], " ")
	second.StartTime = boundary

	// Word timestamps follow the split only when they align one-to-one with
	// the words; otherwise they are stale and dropped.
	if len(c.WordTimestamps) == len(words) {
		first.WordTimestamps = c.WordTimestamps[:splitIndex]
		second.WordTimestamps = c.WordTimestamps[splitIndex:]
	} else {
		first.WordTimestamps = nil
		second.WordTimestamps = nil
	}

	out := make([]types.Caption, 0, len(s.state.Captions)+1)
	for _, existing := range s.state.Captions {
		if existing.ID == id {
			out = append(out, first, second)
			continue
		}
		out = append(out, existing)
	}
	s.state.Captions = renumber(out)
	s.state.HasUserEditedTranscription = true
	s.bumpAndBroadcast()
	return nil
}

// MergeCaptions replaces the selected captions with one spanning
// min(start)..max(end), text joined by single spaces in start-time order.
func (s *Session) MergeCaptions(ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make(map[int]bool, len(ids))
	var picked []types.Caption
	for _, id := range ids {
		if selected[id] {
			continue
		}
		if c := s.findCaption(id); c != nil {
			selected[id] = true
			picked = append(picked, *c)
		}
	}
	if len(picked) < 2 {
		return apperrors.ErrMergeInvalidSelection
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].StartTime < picked[j].StartTime })

	merged := picked[0]
	texts := make([]string, len(picked))
	wordsIntact := true
	var mergedWords []types.WordTimestamp
	for i, c := range picked {
		texts[i] = c.Text
		if c.EndTime > merged.EndTime {
			merged.EndTime = c.EndTime
		}
		if c.WordTimestamps == nil {
			wordsIntact = false
		} else if wordsIntact {
			mergedWords = append(mergedWords, c.WordTimestamps...)
		}
	}
	merged.Text = strings.Join(texts, " ")
	if wordsIntact {
		merged.WordTimestamps = mergedWords
	} else {
		merged.WordTimestamps = nil
	}

	out := make([]types.Caption, 0, len(s.state.Captions))
	inserted := false
	for _, existing := range s.state.Captions {
		if selected[existing.ID] {
			if !inserted {
				out = append(out, merged)
				inserted = true
			}
			continue
		}
		out = append(out, existing)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	s.state.Captions = renumber(out)
	s.state.HasUserEditedTranscription = true
	s.bumpAndBroadcast()
	return nil
}

// ShiftCaptions moves each selected caption by deltaMs milliseconds, holding
// its duration fixed and clamping so it never leaves the trim range.
func (s *Session) ShiftCaptions(ids []int, deltaMs float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := deltaMs / 1000
	shifted := 0
	for _, id := range ids {
		c := s.findCaption(id)
		if c == nil {
			continue
		}
		duration := c.EndTime - c.StartTime
		start := c.StartTime + delta
		if start < s.state.TrimRange.StartTime {
			start = s.state.TrimRange.StartTime
		}
		if start+duration > s.state.TrimRange.EndTime {
			start = s.state.TrimRange.EndTime - duration
			if start < s.state.TrimRange.StartTime {
				start = s.state.TrimRange.StartTime
			}
		}
		c.StartTime = start
		c.EndTime = start + duration
		shifted++
	}
	if shifted == 0 {
		return apperrors.ErrCaptionNotFound
	}
	s.state.HasUserEditedTranscription = true
	s.bumpAndBroadcast()
	return nil
}

// findCaption must run with s.mu held; the pointer is only valid under the
// lock.
func (s *Session) findCaption(id int) *types.Caption {
	for i := range s.state.Captions {
		if s.state.Captions[i].ID == id {
			return &s.state.Captions[i]
		}
	}
	return nil
}
