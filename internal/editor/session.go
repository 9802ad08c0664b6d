// Package editor owns the interactive editing state for one accepted clip:
// the trim range, the caption set derived from the transcript, and the
// reconciliation between the two as the user drags boundaries and edits text.
package editor

import (
	"math"
	"sort"
	"sync"

	"clipforge-ai/internal/types"
)

// gapEpsilon is the smallest uncaptioned region, in seconds, worth filling
// with fresh transcript captions during a trim change.
const gapEpsilon = 0.01

// StateEvent is pushed to subscribers after every successful mutation.
type StateEvent struct {
	Version int64             `json:"version"`
	State   types.EditorState `json:"state"`
}

// Session is a mutex-guarded editing aggregate. Every mutation runs to
// completion under the lock and bumps the version counter, so operations
// apply in the order they were issued and stale gap-filled captions cannot
// resurface through interleaving.
type Session struct {
	mu       sync.Mutex
	version  int64
	state    types.EditorState
	language types.Language
	nextSub  int
	subs     map[int]chan StateEvent
}

// NewSession builds a session around an accepted clip range. Captions are
// materialized from the transcript segments overlapping the range.
func NewSession(sourceVideoDuration float64, initial types.TrimRange, segments []types.TranscriptSegment) *Session {
	s := &Session{
		language: languageOf(segments),
		subs:     make(map[int]chan StateEvent),
	}
	s.state = types.EditorState{
		SourceVideoDuration:    sourceVideoDuration,
		TrimRange:              clampTrimRange(initial.StartTime, initial.EndTime, sourceVideoDuration),
		FullTranscriptSegments: segments,
	}
	s.state.Captions = s.materializeCaptions(s.state.TrimRange)
	return s
}

// Restore rebuilds a session from previously persisted state.
func Restore(state types.EditorState) *Session {
	return &Session{
		state:    state,
		language: languageOf(state.FullTranscriptSegments),
		subs:     make(map[int]chan StateEvent),
	}
}

// Snapshot returns the current version and a copy of the state safe to
// serialize outside the lock.
func (s *Session) Snapshot() (int64, types.EditorState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.copyState()
}

// Subscribe registers a listener for mutation events. The returned cancel
// func must be called when the listener goes away. Slow listeners miss
// events rather than block mutations; the snapshot they eventually read is
// always current.
func (s *Session) Subscribe() (<-chan StateEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan StateEvent, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SetTrimRange moves the trim window and reconciles the caption set.
// freshSegments optionally carries a newly obtained segment list; the wider
// of it and the cached list wins, the cached list never shrinks.
func (s *Session) SetTrimRange(startTime, endTime float64, freshSegments []types.TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTrimRangeLocked(startTime, endTime, freshSegments)
}

// setTrimRangeLocked must run with s.mu held.
func (s *Session) setTrimRangeLocked(startTime, endTime float64, freshSegments []types.TranscriptSegment) {
	newRange := clampTrimRange(startTime, endTime, s.state.SourceVideoDuration)
	s.state.FullTranscriptSegments = widestSegments(s.state.FullTranscriptSegments, freshSegments)
	if lang := languageOf(s.state.FullTranscriptSegments); lang != "" {
		s.language = lang
	}

	switch {
	case len(s.state.FullTranscriptSegments) == 0:
		// No transcript from any source: degrade to visibility filtering so
		// existing captions are never destroyed.
		for i := range s.state.Captions {
			c := &s.state.Captions[i]
			c.IsVisible = newRange.Overlaps(c.StartTime, c.EndTime)
		}
	case s.state.HasUserEditedTranscription:
		s.state.Captions = s.gapFillMerge(newRange)
	default:
		s.state.Captions = s.materializeCaptions(newRange)
	}

	s.state.TrimRange = newRange
	s.bumpAndBroadcast()
}

// UpdateTrimStart moves only the left boundary, holding the right one. The
// boundary read and the range update happen under one lock acquisition so a
// concurrent drag of the other handle cannot slip in between.
func (s *Session) UpdateTrimStart(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.state.TrimRange.EndTime
	if t > end-types.MinTrimSeparation {
		t = end - types.MinTrimSeparation
	}
	if t < 0 {
		t = 0
	}
	s.setTrimRangeLocked(t, end, nil)
}

// UpdateTrimEnd moves only the right boundary, holding the left one.
func (s *Session) UpdateTrimEnd(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.state.TrimRange.StartTime
	if t < start+types.MinTrimSeparation {
		t = start + types.MinTrimSeparation
	}
	if t > s.state.SourceVideoDuration {
		t = s.state.SourceVideoDuration
	}
	s.setTrimRangeLocked(start, t, nil)
}

// RestoreOriginalTranscription discards user caption edits for the current
// trim range and rematerializes from the transcript.
func (s *Session) RestoreOriginalTranscription() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.FullTranscriptSegments) == 0 {
		return
	}
	s.state.Captions = s.materializeCaptions(s.state.TrimRange)
	s.state.HasUserEditedTranscription = false
	s.bumpAndBroadcast()
}

// gapFillMerge keeps every user-visible caption that still overlaps the new
// range and fills the uncaptioned regions around them from the transcript.
// Edits survive a trim change; newly exposed time still gets captions.
func (s *Session) gapFillMerge(newRange types.TrimRange) []types.Caption {
	kept := make([]types.Caption, 0, len(s.state.Captions))
	for _, c := range s.state.Captions {
		if newRange.Overlaps(c.StartTime, c.EndTime) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return s.materializeCaptions(newRange)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].StartTime < kept[j].StartTime })

	style, position := s.captionTemplate()
	overlapsKept := func(start, end float64) bool {
		for _, c := range kept {
			if start < c.EndTime && end > c.StartTime {
				return true
			}
		}
		return false
	}
	var filled []types.Caption
	fill := func(gapStart, gapEnd float64) {
		if gapEnd-gapStart <= gapEpsilon {
			return
		}
		for _, seg := range s.state.FullTranscriptSegments {
			if seg.Start >= gapEnd || seg.End <= gapStart {
				continue
			}
			// A segment straddling a kept caption would duplicate its text,
			// e.g. after the caption was shifted off its segment boundary.
			if overlapsKept(seg.Start, seg.End) {
				continue
			}
			filled = append(filled, s.captionFromSegment(seg, style, position))
		}
	}

	fill(newRange.StartTime, kept[0].StartTime)
	for i := 0; i < len(kept)-1; i++ {
		fill(kept[i].EndTime, kept[i+1].StartTime)
	}
	fill(kept[len(kept)-1].EndTime, newRange.EndTime)

	merged := append(kept, filled...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].StartTime < merged[j].StartTime })
	return renumber(merged)
}

// materializeCaptions derives a fresh caption per transcript segment
// overlapping r. Style and position come from the first existing caption
// when one exists, so a restyle survives rematerialization.
func (s *Session) materializeCaptions(r types.TrimRange) []types.Caption {
	style, position := s.captionTemplate()

	var out []types.Caption
	for _, seg := range s.state.FullTranscriptSegments {
		if seg.Start < r.EndTime && seg.End > r.StartTime {
			out = append(out, s.captionFromSegment(seg, style, position))
		}
	}
	return renumber(out)
}

func (s *Session) captionFromSegment(seg types.TranscriptSegment, style types.CaptionStyle, position types.CaptionPosition) types.Caption {
	lang := seg.Language
	if lang == "" {
		lang = s.language
	}
	return types.Caption{
		Text:           seg.Text,
		StartTime:      seg.Start,
		EndTime:        seg.End,
		Position:       position,
		Style:          style,
		IsVisible:      true,
		Language:       lang,
		WordTimestamps: seg.Words,
	}
}

func (s *Session) captionTemplate() (types.CaptionStyle, types.CaptionPosition) {
	if len(s.state.Captions) > 0 {
		return s.state.Captions[0].Style, s.state.Captions[0].Position
	}
	if s.state.LastEditedCaptionStyle != nil {
		return *s.state.LastEditedCaptionStyle, types.DefaultCaptionPosition()
	}
	return types.DefaultCaptionStyle(), types.DefaultCaptionPosition()
}

func (s *Session) copyState() types.EditorState {
	out := s.state
	out.Captions = append([]types.Caption(nil), s.state.Captions...)
	out.FullTranscriptSegments = append([]types.TranscriptSegment(nil), s.state.FullTranscriptSegments...)
	if s.state.LastEditedCaptionStyle != nil {
		style := *s.state.LastEditedCaptionStyle
		out.LastEditedCaptionStyle = &style
	}
	return out
}

// bumpAndBroadcast must run with s.mu held.
func (s *Session) bumpAndBroadcast() {
	s.version++
	event := StateEvent{Version: s.version, State: s.copyState()}
	for _, sub := range s.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

func clampTrimRange(startTime, endTime, duration float64) types.TrimRange {
	if math.IsNaN(startTime) || math.IsInf(startTime, 0) {
		startTime = 0
	}
	if math.IsNaN(endTime) || math.IsInf(endTime, 0) {
		endTime = duration
	}

	if startTime < 0 {
		startTime = 0
	}
	if endTime > duration {
		endTime = duration
	}
	if endTime < startTime+types.MinTrimSeparation {
		endTime = startTime + types.MinTrimSeparation
	}
	if endTime > duration {
		endTime = duration
		startTime = endTime - types.MinTrimSeparation
		if startTime < 0 {
			startTime = 0
		}
	}
	return types.TrimRange{StartTime: startTime, EndTime: endTime}
}

// widestSegments keeps whichever list covers more of the timeline by
// min-start/max-end span. Coverage never shrinks on a trim change.
func widestSegments(current, fresh []types.TranscriptSegment) []types.TranscriptSegment {
	if len(fresh) == 0 {
		return current
	}
	if len(current) == 0 {
		return fresh
	}
	if coverage(fresh) > coverage(current) {
		return fresh
	}
	return current
}

func coverage(segments []types.TranscriptSegment) float64 {
	minStart := math.Inf(1)
	maxEnd := math.Inf(-1)
	for _, seg := range segments {
		if seg.Start < minStart {
			minStart = seg.Start
		}
		if seg.End > maxEnd {
			maxEnd = seg.End
		}
	}
	return maxEnd - minStart
}

func languageOf(segments []types.TranscriptSegment) types.Language {
	for _, seg := range segments {
		if seg.Language != "" {
			return seg.Language
		}
	}
	return ""
}

func renumber(captions []types.Caption) []types.Caption {
	for i := range captions {
		captions[i].ID = i + 1
	}
	return captions
}
