package candidate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge-ai/internal/types"
	apperrors "clipforge-ai/pkg/errors"
)

func segmentsFixture() []types.TranscriptSegment {
	return []types.TranscriptSegment{
		{Text: "a", Start: 10, End: 15},
		{Text: "b", Start: 15, End: 22},
		{Text: "c", Start: 22, End: 30},
		{Text: "d", Start: 50, End: 57},
		{Text: "e", Start: 57, End: 60},
	}
}

func TestParseCandidates_PlainArray(t *testing.T) {
	raw := `[{"title": "Opening hook", "start": 10, "end": 55, "category": "hook", "tags": ["intro"], "score": 80}]`

	got, err := ParseCandidates(raw, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Opening hook", got[0].Title)
	assert.Equal(t, 10.0, got[0].Start)
	assert.Equal(t, 55.0, got[0].End)
	assert.Equal(t, []string{"intro"}, got[0].Tags)
	require.NotNil(t, got[0].Score)
	assert.Equal(t, 80.0, *got[0].Score)
}

func TestParseCandidates_CodeFenceAndSmartQuotes(t *testing.T) {
	fenced := "Sure! Here you go:\n```json\n[{\"title\": \"Fenced\", \"start\": 0, \"end\": 45}]\n```"
	smart := `[{“title”: “Fenced”, “start”: 0, “end”: 45}]`

	fromFenced, err := ParseCandidates(fenced, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	fromSmart, err := ParseCandidates(smart, nil, 1200, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, fromFenced, fromSmart)
}

func TestParseCandidates_RepairPass(t *testing.T) {
	raw := `[{title: "Needs repair", start: 5, end: 50,},]`

	got, err := ParseCandidates(raw, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Needs repair", got[0].Title)
}

func TestParseCandidates_ClipsWrapperUnwrapped(t *testing.T) {
	raw := `{"clips": [{"title": "Wrapped", "start": 0, "end": 40}]}`

	got, err := ParseCandidates(raw, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Wrapped", got[0].Title)
}

func TestParseCandidates_ClockTimestamps(t *testing.T) {
	raw := `[{"title": "Clock", "start": "00:01:00", "end": "00:02:15"}]`

	got, err := ParseCandidates(raw, nil, 3600, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 60.0, got[0].Start)
	assert.Equal(t, 135.0, got[0].End)
}

func TestParseCandidates_Unparsable(t *testing.T) {
	_, err := ParseCandidates("I could not find any highlights, sorry!", nil, 1200, DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeCandidatesUnparsable))
}

func TestParseCandidates_BoundarySnapping(t *testing.T) {
	raw := `[{"title": "Snapped", "start": 12.4, "end": 58.9, "score": 90}]`

	got, err := ParseCandidates(raw, segmentsFixture(), 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 12.4 snaps back to the segment start at 10 (2.4s away); 58.9 snaps
	// forward to the segment end at 60 (1.1s away).
	assert.Equal(t, 10.0, got[0].Start)
	assert.Equal(t, 60.0, got[0].End)
}

func TestParseCandidates_SnapOutsideTolerance(t *testing.T) {
	// Nearest enclosing start boundary is 4s behind: out of the 3s
	// tolerance, so the raw start is kept.
	segments := []types.TranscriptSegment{
		{Text: "a", Start: 10, End: 20},
		{Text: "b", Start: 40, End: 48},
	}
	raw := `[{"title": "No snap", "start": 14, "end": 47.5}]`

	got, err := ParseCandidates(raw, segments, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 14.0, got[0].Start)
	assert.Equal(t, 48.0, got[0].End)
}

func TestParseCandidates_SnapDiscardedOnInversion(t *testing.T) {
	// The inverted raw range would snap start to 11 and end to 9.5. That
	// snap is discarded rather than emitted, and the still-inverted raw
	// candidate is then dropped structurally.
	segments := []types.TranscriptSegment{
		{Text: "a", Start: 5, End: 9.5},
		{Text: "b", Start: 11, End: 20},
	}
	raw := `[{"title": "Inverted", "start": 12, "end": 9}]`

	got, err := ParseCandidates(raw, segments, 1200, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCandidates_ValidationFilters(t *testing.T) {
	raw := `[
		{"title": "", "start": 0, "end": 45},
		{"title": "Too short", "start": 0, "end": 10, "score": 90},
		{"title": "Too long", "start": 0, "end": 200, "score": 90},
		{"title": "Low score", "start": 0, "end": 45, "score": 40},
		{"title": "Keeper", "start": 0, "end": 45, "score": 90},
		{"title": "Unscored keeper", "start": 100, "end": 160}
	]`

	got, err := ParseCandidates(raw, nil, 3600, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Keeper", got[0].Title)
	assert.Equal(t, "Unscored keeper", got[1].Title)
}

func TestParseCandidates_FallbackToStructural(t *testing.T) {
	// Every candidate fails duration validation, so the parser falls back
	// to all structurally valid ones rather than returning nothing.
	raw := `[{"title": "Short", "start": 0, "end": 5}, {"title": "", "start": 0, "end": 5}]`

	got, err := ParseCandidates(raw, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Short", got[0].Title)
}

func TestParseCandidates_DuplicateTitlesDropped(t *testing.T) {
	raw := `[
		{"title": "The big reveal", "start": 0, "end": 45, "score": 90},
		{"title": "The big reveal!", "start": 100, "end": 145, "score": 85}
	]`

	got, err := ParseCandidates(raw, nil, 3600, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "The big reveal", got[0].Title)
}

func TestParseCandidates_DurationTierCaps(t *testing.T) {
	testCases := []struct {
		durationMinutes float64
		wantMax         int
	}{
		{4, 2},
		{8, 3},
		{15, 5},
		{42, 7},
		{55, 10},
		{90, 12},
	}

	titles := []string{
		"Opening cold open", "Guest introduction", "First big laugh",
		"The wild childhood story", "Career turning point", "Industry hot take",
		"Audience question round", "Behind the scenes secret", "Heated disagreement",
		"Surprise phone call", "The emotional apology", "Rapid fire segment",
		"Sponsor transition gone wrong", "Closing life advice", "Blooper reel moment",
	}
	var raw string
	for i, title := range titles {
		if i > 0 {
			raw += ","
		}
		raw += fmt.Sprintf(`{"title": %q, "start": %d, "end": %d, "score": %d}`,
			title, i*100, i*100+45, 95-i)
	}
	raw = "[" + raw + "]"

	for _, tc := range testCases {
		got, err := ParseCandidates(raw, nil, tc.durationMinutes*60, DefaultOptions())
		require.NoError(t, err)
		assert.Len(t, got, tc.wantMax, "duration %v minutes", tc.durationMinutes)
		// Best-first order is preserved under truncation.
		assert.Equal(t, titles[0], got[0].Title)
	}
}

func TestParseCandidates_FewerCandidatesNeverPadded(t *testing.T) {
	raw := `[{"title": "Only one", "start": 0, "end": 45, "score": 90}]`

	got, err := ParseCandidates(raw, nil, 3600, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseCandidates_MalformedElementsSkipped(t *testing.T) {
	raw := `[{"title": "Good", "start": 0, "end": 45}, {"title": "Bad", "start": "nonsense", "end": 50}]`

	got, err := ParseCandidates(raw, nil, 1200, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Title)
}
