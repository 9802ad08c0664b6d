package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge-ai/internal/types"
	apperrors "clipforge-ai/pkg/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestUpdateCaptionText(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.UpdateCaptionText(2, "  a better line  "))

	_, state := s.Snapshot()
	assert.Equal(t, "a better line", state.Captions[1].Text)
	assert.Nil(t, state.Captions[1].WordTimestamps)
	assert.True(t, state.HasUserEditedTranscription)

	err := s.UpdateCaptionText(99, "nope")
	assert.True(t, apperrors.Is(err, apperrors.CodeCaptionNotFound))
}

func TestUpdateCaptionStyle_BroadcastsToAllCaptions(t *testing.T) {
	s := Restore(types.EditorState{
		SourceVideoDuration: 30,
		TrimRange:           types.TrimRange{StartTime: 0, EndTime: 30},
		Captions: []types.Caption{
			{ID: 1, Text: "one", StartTime: 0, EndTime: 5, Style: types.DefaultCaptionStyle(), Position: types.CaptionPosition{X: 0.5, Y: 0.8}},
			{ID: 2, Text: "two", StartTime: 5, EndTime: 10, Style: types.DefaultCaptionStyle(), Position: types.CaptionPosition{X: 0.2, Y: 0.1}},
		},
	})

	require.NoError(t, s.UpdateCaptionStyle(1, types.CaptionStylePatch{
		FontSize: intPtr(64),
		Bold:     boolPtr(true),
	}))

	_, state := s.Snapshot()
	for _, c := range state.Captions {
		assert.Equal(t, 64, c.Style.FontSize)
		assert.True(t, c.Style.Bold)
		// Untouched fields keep their values.
		assert.Equal(t, "Inter", c.Style.FontFamily)
	}

	// Positions stay per-caption.
	assert.Equal(t, types.CaptionPosition{X: 0.5, Y: 0.8}, state.Captions[0].Position)
	assert.Equal(t, types.CaptionPosition{X: 0.2, Y: 0.1}, state.Captions[1].Position)

	require.NotNil(t, state.LastEditedCaptionStyle)
	assert.Equal(t, 64, state.LastEditedCaptionStyle.FontSize)

	// Style edits alone do not flip the transcription-edited flag.
	assert.False(t, state.HasUserEditedTranscription)
}

func TestUpdateCaptionStyleForIDs_TouchesOnlySelection(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.UpdateCaptionStyleForIDs([]int{2}, types.CaptionStylePatch{
		FontColor: strPtr("#FFD700"),
	}))

	_, state := s.Snapshot()
	assert.Equal(t, "#FFFFFF", state.Captions[0].Style.FontColor)
	assert.Equal(t, "#FFD700", state.Captions[1].Style.FontColor)

	err := s.UpdateCaptionStyleForIDs([]int{98, 99}, types.CaptionStylePatch{})
	assert.True(t, apperrors.Is(err, apperrors.CodeCaptionNotFound))
}

func splitFixture() *Session {
	return Restore(types.EditorState{
		SourceVideoDuration: 10,
		TrimRange:           types.TrimRange{StartTime: 0, EndTime: 10},
		Captions: []types.Caption{
			{ID: 1, Text: "one two three four", StartTime: 0, EndTime: 4, Style: types.DefaultCaptionStyle(), IsVisible: true},
		},
	})
}

func TestSplitCaptionAtPlayhead(t *testing.T) {
	s := splitFixture()

	require.NoError(t, s.SplitCaptionAtPlayhead(1, 3))

	_, state := s.Snapshot()
	require.Len(t, state.Captions, 2)

	assert.Equal(t, "one two three", state.Captions[0].Text)
	assert.Equal(t, 0.0, state.Captions[0].StartTime)
	assert.Equal(t, 3.0, state.Captions[0].EndTime)

	assert.Equal(t, "four", state.Captions[1].Text)
	assert.Equal(t, 3.0, state.Captions[1].StartTime)
	assert.Equal(t, 4.0, state.Captions[1].EndTime)

	// Both halves inherit the parent's style and the ids are sequential.
	assert.Equal(t, types.DefaultCaptionStyle(), state.Captions[1].Style)
	assert.Equal(t, 1, state.Captions[0].ID)
	assert.Equal(t, 2, state.Captions[1].ID)
	assert.True(t, state.HasUserEditedTranscription)
}

func TestSplitCaptionAtPlayhead_SplitIndexClamped(t *testing.T) {
	s := splitFixture()

	// Ratio rounds to index 0; clamped to 1 so both halves have text.
	require.NoError(t, s.SplitCaptionAtPlayhead(1, 0.1))

	_, state := s.Snapshot()
	require.Len(t, state.Captions, 2)
	assert.Equal(t, "one", state.Captions[0].Text)
	assert.Equal(t, "two three four", state.Captions[1].Text)
	assert.Equal(t, 1.0, state.Captions[0].EndTime)
}

func TestSplitCaptionAtPlayhead_Preconditions(t *testing.T) {
	s := splitFixture()

	assert.True(t, apperrors.Is(s.SplitCaptionAtPlayhead(1, 0), apperrors.CodeCaptionSplitInvalid))
	assert.True(t, apperrors.Is(s.SplitCaptionAtPlayhead(1, 4), apperrors.CodeCaptionSplitInvalid))
	assert.True(t, apperrors.Is(s.SplitCaptionAtPlayhead(99, 2), apperrors.CodeCaptionNotFound))

	single := Restore(types.EditorState{
		SourceVideoDuration: 10,
		TrimRange:           types.TrimRange{StartTime: 0, EndTime: 10},
		Captions:            []types.Caption{{ID: 1, Text: "word", StartTime: 0, EndTime: 4}},
	})
	assert.True(t, apperrors.Is(single.SplitCaptionAtPlayhead(1, 2), apperrors.CodeCaptionSplitInvalid))

	// Failed preconditions leave state untouched.
	_, state := s.Snapshot()
	require.Len(t, state.Captions, 1)
	assert.Equal(t, "one two three four", state.Captions[0].Text)
}

func TestMergeCaptions(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.MergeCaptions([]int{2, 1}))

	_, state := s.Snapshot()
	require.Len(t, state.Captions, 1)
	assert.Equal(t, "our guest today has a wild story", state.Captions[0].Text)
	assert.Equal(t, 5.0, state.Captions[0].StartTime)
	assert.Equal(t, 15.0, state.Captions[0].EndTime)
	assert.Equal(t, 1, state.Captions[0].ID)
	assert.True(t, state.HasUserEditedTranscription)
}

func TestMergeCaptions_RequiresTwoResolvableIds(t *testing.T) {
	s := newTestSession()

	assert.True(t, apperrors.Is(s.MergeCaptions([]int{1}), apperrors.CodeMergeInvalidSelection))
	assert.True(t, apperrors.Is(s.MergeCaptions([]int{1, 1}), apperrors.CodeMergeInvalidSelection))
	assert.True(t, apperrors.Is(s.MergeCaptions([]int{1, 99}), apperrors.CodeMergeInvalidSelection))

	_, state := s.Snapshot()
	assert.Len(t, state.Captions, 2)
}

func TestShiftCaptions(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.ShiftCaptions([]int{1}, 2000))

	_, state := s.Snapshot()
	assert.Equal(t, 7.0, state.Captions[0].StartTime)
	assert.Equal(t, 12.0, state.Captions[0].EndTime)
	assert.True(t, state.HasUserEditedTranscription)
}

func TestShiftCaptions_ClampedToTrimRange(t *testing.T) {
	s := newTestSession()

	// Trim range is [5, 15]; a large negative shift pins the caption to the
	// left edge with its duration intact.
	require.NoError(t, s.ShiftCaptions([]int{2}, -60000))

	_, state := s.Snapshot()
	assert.Equal(t, 5.0, state.Captions[1].StartTime)
	assert.Equal(t, 10.0, state.Captions[1].EndTime)

	// And a large positive shift pins it to the right edge.
	require.NoError(t, s.ShiftCaptions([]int{2}, 60000))
	_, state = s.Snapshot()
	assert.Equal(t, 10.0, state.Captions[1].StartTime)
	assert.Equal(t, 15.0, state.Captions[1].EndTime)
}

func TestShiftCaptions_NoResolvableIds(t *testing.T) {
	s := newTestSession()
	err := s.ShiftCaptions([]int{42}, 1000)
	assert.True(t, apperrors.Is(err, apperrors.CodeCaptionNotFound))
}
