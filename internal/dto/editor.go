package dto

import "clipforge-ai/internal/types"

// CreateEditorSessionReq opens an editing session from an accepted clip
// candidate of a finished task.
type CreateEditorSessionReq struct {
	TaskId         string `json:"task_id"`
	CandidateIndex int    `json:"candidate_index"`
}

type CreateEditorSessionResData struct {
	Token string            `json:"token"`
	State types.EditorState `json:"state"`
}

type EditorStateResData struct {
	Token   string            `json:"token"`
	Version int64             `json:"version"`
	State   types.EditorState `json:"state"`
}

// SetTrimRangeReq moves the trim window. Segments optionally carries a
// freshly supplied segment list; the synchronizer keeps whichever list
// covers more of the timeline.
type SetTrimRangeReq struct {
	StartTime float64                   `json:"start_time"`
	EndTime   float64                   `json:"end_time"`
	Segments  []types.TranscriptSegment `json:"segments,omitempty"`
}

type UpdateTrimBoundaryReq struct {
	Time float64 `json:"time"`
}

type UpdateCaptionTextReq struct {
	CaptionId int    `json:"caption_id"`
	Text      string `json:"text"`
}

type UpdateCaptionStyleReq struct {
	CaptionId int                     `json:"caption_id"`
	Style     types.CaptionStylePatch `json:"style"`
}

type UpdateCaptionStyleForIdsReq struct {
	CaptionIds []int                   `json:"caption_ids"`
	Style      types.CaptionStylePatch `json:"style"`
}

type SplitCaptionReq struct {
	CaptionId    int     `json:"caption_id"`
	PlayheadTime float64 `json:"playhead_time"`
}

type MergeCaptionsReq struct {
	CaptionIds []int `json:"caption_ids"`
}

type ExportCaptionsResData struct {
	FileName    string `json:"file_name"`
	DownloadUrl string `json:"download_url"`
}

type ShiftCaptionsReq struct {
	CaptionIds []int   `json:"caption_ids"`
	DeltaMs    float64 `json:"delta_ms"`
}
