package editor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge-ai/internal/types"
)

func transcriptFixture() []types.TranscriptSegment {
	return []types.TranscriptSegment{
		{Text: "welcome to the show", Start: 0, End: 5, Language: types.LanguageEnglish},
		{Text: "our guest today", Start: 5, End: 10, Language: types.LanguageEnglish},
		{Text: "has a wild story", Start: 10, End: 15, Language: types.LanguageEnglish},
		{Text: "it starts in cairo", Start: 15, End: 20, Language: types.LanguageEnglish},
		{Text: "with a broken camera", Start: 20, End: 25, Language: types.LanguageEnglish},
	}
}

func newTestSession() *Session {
	return NewSession(30, types.TrimRange{StartTime: 5, EndTime: 15}, transcriptFixture())
}

func captionTexts(captions []types.Caption) []string {
	out := make([]string, len(captions))
	for i, c := range captions {
		out[i] = c.Text
	}
	return out
}

func TestNewSession_MaterializesOverlappingSegments(t *testing.T) {
	s := newTestSession()

	version, state := s.Snapshot()
	assert.Equal(t, int64(0), version)
	assert.Equal(t, types.TrimRange{StartTime: 5, EndTime: 15}, state.TrimRange)
	require.Len(t, state.Captions, 2)
	assert.Equal(t, []string{"our guest today", "has a wild story"}, captionTexts(state.Captions))
	assert.Equal(t, 1, state.Captions[0].ID)
	assert.Equal(t, 2, state.Captions[1].ID)
	assert.True(t, state.Captions[0].IsVisible)
	assert.Equal(t, types.DefaultCaptionStyle(), state.Captions[0].Style)
	assert.Equal(t, types.LanguageEnglish, state.Captions[0].Language)
	assert.False(t, state.HasUserEditedTranscription)
}

func TestNewSession_ClampsInitialRange(t *testing.T) {
	s := NewSession(30, types.TrimRange{StartTime: -5, EndTime: 100}, transcriptFixture())

	_, state := s.Snapshot()
	assert.Equal(t, types.TrimRange{StartTime: 0, EndTime: 30}, state.TrimRange)
	assert.Len(t, state.Captions, 5)
}

func TestSetTrimRange_RematerializesWhenUnedited(t *testing.T) {
	s := newTestSession()

	s.SetTrimRange(15, 25, nil)

	_, state := s.Snapshot()
	assert.Equal(t, []string{"it starts in cairo", "with a broken camera"}, captionTexts(state.Captions))
}

func TestSetTrimRange_Idempotent(t *testing.T) {
	s := newTestSession()

	s.SetTrimRange(5, 25, nil)
	_, first := s.Snapshot()
	s.SetTrimRange(5, 25, nil)
	_, second := s.Snapshot()

	assert.Equal(t, first.Captions, second.Captions)
}

func TestSetTrimRange_GapFillingPreservesUserEdits(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.UpdateCaptionText(1, "my corrected line"))

	s.SetTrimRange(5, 25, nil)

	_, state := s.Snapshot()
	assert.True(t, state.HasUserEditedTranscription)
	require.Len(t, state.Captions, 4)

	// The edited caption survives the trim change unmodified.
	assert.Equal(t, "my corrected line", state.Captions[0].Text)
	assert.Equal(t, 5.0, state.Captions[0].StartTime)
	assert.Equal(t, 10.0, state.Captions[0].EndTime)

	// Newly exposed time is captioned from the transcript.
	assert.Equal(t, []string{
		"my corrected line", "has a wild story", "it starts in cairo", "with a broken camera",
	}, captionTexts(state.Captions))

	// Ids are sequential after the merge.
	for i, c := range state.Captions {
		assert.Equal(t, i+1, c.ID)
	}
}

func TestSetTrimRange_GapFillingIdempotentAfterEdit(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.UpdateCaptionText(1, "edited"))

	s.SetTrimRange(5, 25, nil)
	_, first := s.Snapshot()
	s.SetTrimRange(5, 25, nil)
	_, second := s.Snapshot()

	assert.Equal(t, first.Captions, second.Captions)
}

func TestSetTrimRange_GapFillSkipsShiftedCaptionSpans(t *testing.T) {
	s := newTestSession()
	s.SetTrimRange(5, 20, nil)
	require.NoError(t, s.ShiftCaptions([]int{2}, 500))

	s.SetTrimRange(5, 20, nil)

	_, state := s.Snapshot()
	assert.Equal(t, []string{
		"our guest today", "has a wild story", "it starts in cairo",
	}, captionTexts(state.Captions))

	// The shifted caption keeps its moved position and is not doubled by a
	// fill from its original segment.
	occurrences := 0
	for _, c := range state.Captions {
		if c.Text == "has a wild story" {
			occurrences++
			assert.Equal(t, 10.5, c.StartTime)
			assert.Equal(t, 15.5, c.EndTime)
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestSetTrimRange_EditedCaptionOutsideRangeRematerializes(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.UpdateCaptionText(1, "edited"))

	// No kept caption overlaps the new range, so captions come fresh from
	// the transcript.
	s.SetTrimRange(20, 25, nil)

	_, state := s.Snapshot()
	assert.Equal(t, []string{"with a broken camera"}, captionTexts(state.Captions))
}

func TestSetTrimRange_KeepsWidestSegmentList(t *testing.T) {
	s := newTestSession()

	narrower := []types.TranscriptSegment{{Text: "x", Start: 8, End: 12}}
	s.SetTrimRange(5, 15, narrower)
	_, state := s.Snapshot()
	assert.Len(t, state.FullTranscriptSegments, 5)

	wider := append(transcriptFixture(), types.TranscriptSegment{Text: "bonus ending", Start: 25, End: 29})
	s.SetTrimRange(5, 15, wider)
	_, state = s.Snapshot()
	assert.Len(t, state.FullTranscriptSegments, 6)
}

func TestSetTrimRange_NoSegmentsDegradesToVisibility(t *testing.T) {
	s := Restore(types.EditorState{
		SourceVideoDuration: 30,
		TrimRange:           types.TrimRange{StartTime: 0, EndTime: 30},
		Captions: []types.Caption{
			{ID: 1, Text: "early", StartTime: 2, EndTime: 4, IsVisible: true},
			{ID: 2, Text: "late", StartTime: 20, EndTime: 24, IsVisible: true},
		},
	})

	s.SetTrimRange(0, 10, nil)

	_, state := s.Snapshot()
	require.Len(t, state.Captions, 2)
	assert.True(t, state.Captions[0].IsVisible)
	assert.False(t, state.Captions[1].IsVisible)
}

func TestUpdateTrimBoundaries_ClampAgainstOtherSide(t *testing.T) {
	s := newTestSession()

	// Dragging the left handle past the right one stops at the minimum
	// separation.
	s.UpdateTrimStart(20)
	_, state := s.Snapshot()
	assert.InDelta(t, 15-types.MinTrimSeparation, state.TrimRange.StartTime, 1e-9)
	assert.Equal(t, 15.0, state.TrimRange.EndTime)

	s.SetTrimRange(5, 15, nil)
	s.UpdateTrimEnd(1)
	_, state = s.Snapshot()
	assert.Equal(t, 5.0, state.TrimRange.StartTime)
	assert.InDelta(t, 5+types.MinTrimSeparation, state.TrimRange.EndTime, 1e-9)

	s.SetTrimRange(5, 15, nil)
	s.UpdateTrimEnd(100)
	_, state = s.Snapshot()
	assert.Equal(t, 30.0, state.TrimRange.EndTime)
}

func TestUpdateTrimBoundaries_ConcurrentDragsStayConsistent(t *testing.T) {
	s := newTestSession()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		startTarget := float64(i % 12)
		endTarget := float64(12 + i%15)
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.UpdateTrimStart(startTarget)
		}()
		go func() {
			defer wg.Done()
			s.UpdateTrimEnd(endTarget)
		}()
	}
	wg.Wait()

	_, state := s.Snapshot()
	r := state.TrimRange
	assert.GreaterOrEqual(t, r.EndTime-r.StartTime, types.MinTrimSeparation-1e-9)
	assert.GreaterOrEqual(t, r.StartTime, 0.0)
	assert.LessOrEqual(t, r.EndTime, state.SourceVideoDuration)
}

func TestRestoreOriginalTranscription(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.UpdateCaptionText(1, "edited away"))

	s.RestoreOriginalTranscription()

	_, state := s.Snapshot()
	assert.False(t, state.HasUserEditedTranscription)
	assert.Equal(t, []string{"our guest today", "has a wild story"}, captionTexts(state.Captions))
}

func TestSubscribe_ReceivesMutationEvents(t *testing.T) {
	s := newTestSession()
	events, cancel := s.Subscribe()
	defer cancel()

	s.SetTrimRange(10, 20, nil)

	event := <-events
	assert.Equal(t, int64(1), event.Version)
	assert.Equal(t, types.TrimRange{StartTime: 10, EndTime: 20}, event.State.TrimRange)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	s := newTestSession()
	events, cancel := s.Subscribe()

	cancel()

	_, open := <-events
	assert.False(t, open)

	// Mutations after cancel must not panic on the closed channel.
	s.SetTrimRange(10, 20, nil)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestSession()

	_, state := s.Snapshot()
	state.Captions[0].Text = "mutated outside"

	_, fresh := s.Snapshot()
	assert.Equal(t, "our guest today", fresh.Captions[0].Text)
}
