package types

// Language is a transcript language code.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// MinTrimSeparation is the minimum trim range width in seconds, enforced on
// every mutation.
const MinTrimSeparation = 0.1

// WordTimestamp is a single word with its spoken time range. Produced only
// by the speech recognition collaborator; immutable once received.
type WordTimestamp struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is a sentence-level slice of the transcript. Segments
// are the canonical timeline: created once per transcription, never mutated,
// only filtered or sliced.
type TranscriptSegment struct {
	Text     string          `json:"text"`
	Start    float64         `json:"start"`
	End      float64         `json:"end"`
	Language Language        `json:"language"`
	Words    []WordTimestamp `json:"words,omitempty"`
}

// TranscriptionResult is what the ASR collaborator hands back: word-level
// timestamps when the provider supports them, otherwise ready-made segments.
type TranscriptionResult struct {
	Words    []WordTimestamp     `json:"words,omitempty"`
	Segments []TranscriptSegment `json:"segments,omitempty"`
	Language Language            `json:"language"`
}

// ClipCandidate is a ranked highlight proposal. It exists only between
// generation and being accepted as a trim range.
type ClipCandidate struct {
	Title    string   `json:"title"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	// Score is 0..100 when the generation service provides one; candidates
	// without a score are kept for backward compatibility.
	Score *float64 `json:"score,omitempty"`
}

// Duration returns the candidate length in seconds.
func (c ClipCandidate) Duration() float64 {
	return c.End - c.Start
}

// TrimRange is the currently selected clip window.
// Invariant: 0 <= StartTime < EndTime <= source duration.
type TrimRange struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Overlaps reports whether the segment [start, end) intersects the range.
func (r TrimRange) Overlaps(start, end float64) bool {
	return start < r.EndTime && end > r.StartTime
}

// CaptionPosition is an absolute position in render space, expressed as
// fractions of the frame so the renderer stays resolution independent.
type CaptionPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CaptionStyle is the full visual style of a caption. Captions in one clip
// share one look; see editor.Session.UpdateCaptionStyle.
type CaptionStyle struct {
	FontFamily      string  `json:"fontFamily"`
	FontSize        int     `json:"fontSize"`
	FontColor       string  `json:"fontColor"`
	StrokeColor     string  `json:"strokeColor"`
	StrokeWidth     float64 `json:"strokeWidth"`
	BackgroundColor string  `json:"backgroundColor"`
	Bold            bool    `json:"bold"`
	Italic          bool    `json:"italic"`
}

// CaptionStylePatch carries only the style fields the caller wants to change.
type CaptionStylePatch struct {
	FontFamily      *string  `json:"fontFamily,omitempty"`
	FontSize        *int     `json:"fontSize,omitempty"`
	FontColor       *string  `json:"fontColor,omitempty"`
	StrokeColor     *string  `json:"strokeColor,omitempty"`
	StrokeWidth     *float64 `json:"strokeWidth,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	Bold            *bool    `json:"bold,omitempty"`
	Italic          *bool    `json:"italic,omitempty"`
}

// Apply merges the patch into a style and returns the result.
func (p CaptionStylePatch) Apply(style CaptionStyle) CaptionStyle {
	if p.FontFamily != nil {
		style.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		style.FontSize = *p.FontSize
	}
	if p.FontColor != nil {
		style.FontColor = *p.FontColor
	}
	if p.StrokeColor != nil {
		style.StrokeColor = *p.StrokeColor
	}
	if p.StrokeWidth != nil {
		style.StrokeWidth = *p.StrokeWidth
	}
	if p.BackgroundColor != nil {
		style.BackgroundColor = *p.BackgroundColor
	}
	if p.Bold != nil {
		style.Bold = *p.Bold
	}
	if p.Italic != nil {
		style.Italic = *p.Italic
	}
	return style
}

// DefaultCaptionStyle is the look applied when no caption exists to copy
// style from.
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		FontFamily:  "Inter",
		FontSize:    42,
		FontColor:   "#FFFFFF",
		StrokeColor: "#000000",
		StrokeWidth: 2,
	}
}

// DefaultCaptionPosition centers captions in the lower third.
func DefaultCaptionPosition() CaptionPosition {
	return CaptionPosition{X: 0.5, Y: 0.8}
}

// Caption is derived data: either materialized fresh from a transcript
// segment overlapping the trim range, or a user-edited record that survives
// trim changes while it still overlaps. Fields are copied by value from the
// originating segment; a caption never holds a live segment reference. The
// renderer treats every caption as fully self-contained.
type Caption struct {
	ID             int             `json:"id"`
	Text           string          `json:"text"`
	StartTime      float64         `json:"startTime"`
	EndTime        float64         `json:"endTime"`
	Position       CaptionPosition `json:"position"`
	Style          CaptionStyle    `json:"style"`
	IsVisible      bool            `json:"isVisible"`
	Language       Language        `json:"language"`
	WordTimestamps []WordTimestamp `json:"wordTimestamps,omitempty"`
}

// EditorState is the aggregate owned by the timeline synchronizer.
type EditorState struct {
	SourceVideoDuration float64   `json:"sourceVideoDuration"`
	TrimRange           TrimRange `json:"trimRange"`
	Captions            []Caption `json:"captions"`
	// FullTranscriptSegments always holds the widest known segment list seen
	// so far (by min-start/max-end coverage); it never shrinks.
	FullTranscriptSegments     []TranscriptSegment `json:"fullTranscriptSegments"`
	HasUserEditedTranscription bool                `json:"hasUserEditedTranscription"`
	// LastEditedCaptionStyle lives on the aggregate rather than in a
	// module-level singleton so editor sessions cannot cross-talk.
	LastEditedCaptionStyle *CaptionStyle `json:"lastEditedCaptionStyle,omitempty"`
}
