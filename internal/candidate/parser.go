// Package candidate turns raw generation service output into validated,
// boundary-snapped clip candidates.
package candidate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"clipforge-ai/internal/types"
	apperrors "clipforge-ai/pkg/errors"
	"clipforge-ai/pkg/util"
)

// Options bounds candidate validation.
type Options struct {
	MinDuration float64
	MaxDuration float64
	MinScore    float64
	// SnapTolerance is the max distance, in seconds, a boundary may move to
	// land on a transcript segment boundary.
	SnapTolerance float64
}

func DefaultOptions() Options {
	return Options{
		MinDuration:   30,
		MaxDuration:   90,
		MinScore:      65,
		SnapTolerance: 3,
	}
}

// duplicateTitleRatio is the levenshtein similarity above which two titles
// are treated as the same candidate emitted twice.
const duplicateTitleRatio = 0.9

// ParseCandidates applies three passes in order: recovery parsing of the raw
// text, boundary snapping onto transcript segments, and validation/capping.
// Candidates come back in the order received; the generation service is
// expected to rank best-first.
//
// A response with no extractable JSON fails with CodeCandidatesUnparsable.
// Filtering every candidate out is not an error: the structurally valid ones
// are returned as a fallback so the caller always has something to show.
func ParseCandidates(rawText string, segments []types.TranscriptSegment, videoDurationSeconds float64, opts Options) ([]types.ClipCandidate, error) {
	if opts.MaxDuration <= 0 {
		opts = DefaultOptions()
	}

	parsed, err := recoverClipList(rawText)
	if err != nil {
		return nil, err
	}

	snapped := make([]types.ClipCandidate, 0, len(parsed))
	for _, c := range parsed {
		snapped = append(snapped, snapToSegments(c, segments, opts.SnapTolerance))
	}

	structural := dedupeTitles(filterStructural(snapped))

	valid := make([]types.ClipCandidate, 0, len(structural))
	for _, c := range structural {
		if c.Duration() < opts.MinDuration || c.Duration() > opts.MaxDuration {
			continue
		}
		if c.Score != nil && *c.Score < opts.MinScore {
			continue
		}
		valid = append(valid, c)
	}

	// Never hand back nothing when the response did parse.
	if len(valid) == 0 {
		valid = structural
	}

	limit := maxCandidatesForDuration(videoDurationSeconds)
	if len(valid) > limit {
		valid = valid[:limit]
	}
	return valid, nil
}

// rawClip tolerates the shapes generation services actually emit: numeric or
// clock-formatted timestamps and an optional score.
type rawClip struct {
	Title    string      `json:"title"`
	Start    flexSeconds `json:"start"`
	End      flexSeconds `json:"end"`
	Category string      `json:"category"`
	Tags     []string    `json:"tags"`
	Score    *float64    `json:"score"`
}

// recoverClipList extracts and parses the clip array. The response is either
// a bare array or wrapped in {"clips": [...]}; the ambiguity is resolved
// here and never leaks further into the pipeline.
func recoverClipList(rawText string) ([]types.ClipCandidate, error) {
	jsonStr := util.ExtractJSONFromText(rawText)

	elements, err := decodeClipArray(jsonStr)
	if err != nil {
		// One repair pass: trailing commas, bare keys.
		elements, err = decodeClipArray(util.RepairJSON(jsonStr))
	}
	if err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeCandidatesUnparsable,
			"Generation response contained no parsable clip list", truncate(rawText, 200), err)
	}

	out := make([]types.ClipCandidate, 0, len(elements))
	for _, element := range elements {
		var c rawClip
		if json.Unmarshal(element, &c) != nil {
			continue
		}
		out = append(out, types.ClipCandidate{
			Title:    strings.TrimSpace(c.Title),
			Start:    float64(c.Start),
			End:      float64(c.End),
			Category: strings.TrimSpace(c.Category),
			Tags:     c.Tags,
			Score:    c.Score,
		})
	}
	return out, nil
}

func decodeClipArray(jsonStr string) ([]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &elements); err == nil {
		return elements, nil
	}

	var wrapper struct {
		Clips []json.RawMessage `json:"clips"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Clips == nil {
		return nil, fmt.Errorf("object response has no clips array")
	}
	return wrapper.Clips, nil
}

// snapToSegments moves each boundary independently onto the nearest
// enclosing segment boundary within tolerance: start snaps backward, end
// snaps forward. A snap that would invert the range is discarded.
func snapToSegments(c types.ClipCandidate, segments []types.TranscriptSegment, tolerance float64) types.ClipCandidate {
	if len(segments) == 0 || tolerance <= 0 {
		return c
	}

	snappedStart := c.Start
	for _, seg := range segments {
		if seg.Start <= c.Start && c.Start-seg.Start <= tolerance {
			snappedStart = seg.Start
		}
	}

	snappedEnd := c.End
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg.End >= c.End && seg.End-c.End <= tolerance {
			snappedEnd = seg.End
		}
	}

	if snappedEnd <= snappedStart {
		return c
	}
	c.Start = snappedStart
	c.End = snappedEnd
	return c
}

func filterStructural(candidates []types.ClipCandidate) []types.ClipCandidate {
	out := make([]types.ClipCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Title == "" {
			continue
		}
		if math.IsNaN(c.Start) || math.IsInf(c.Start, 0) || math.IsNaN(c.End) || math.IsInf(c.End, 0) {
			continue
		}
		if c.Start >= c.End {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupeTitles drops later candidates whose title is near-identical to an
// earlier one; generators occasionally emit the same highlight twice with
// minor rewording.
func dedupeTitles(candidates []types.ClipCandidate) []types.ClipCandidate {
	out := make([]types.ClipCandidate, 0, len(candidates))
	for _, c := range candidates {
		duplicate := false
		for _, kept := range out {
			ratio := levenshtein.RatioForStrings(
				[]rune(strings.ToLower(kept.Title)),
				[]rune(strings.ToLower(c.Title)),
				levenshtein.DefaultOptions,
			)
			if ratio >= duplicateTitleRatio {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, c)
		}
	}
	return out
}

// maxCandidatesForDuration is an upper bound only; fewer high-quality
// candidates are never padded to reach it.
func maxCandidatesForDuration(durationSeconds float64) int {
	minutes := durationSeconds / 60
	switch {
	case minutes <= 5:
		return 2
	case minutes <= 10:
		return 3
	case minutes <= 20:
		return 5
	case minutes <= 40:
		return 7
	case minutes <= 60:
		return 10
	default:
		return 12
	}
}

// flexSeconds accepts a JSON number, a numeric string, or an HH:MM:SS clock
// string.
type flexSeconds float64

func (f *flexSeconds) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexSeconds(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseClockOrNumber(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*f = flexSeconds(v)
	return nil
}

func parseClockOrNumber(s string) (float64, error) {
	if !strings.Contains(s, ":") {
		return strconv.ParseFloat(s, 64)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
		}
		total = total*60 + v
	}
	return total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
