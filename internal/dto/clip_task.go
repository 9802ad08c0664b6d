package dto

import "clipforge-ai/internal/types"

// AudioChunk is one pre-split piece of the source audio. Long sources are
// chunked upstream; offsets realign word timestamps after transcription.
type AudioChunk struct {
	Url           string  `json:"url"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

// StartClipTaskReq requests transcription plus clip candidate generation for
// one source video.
type StartClipTaskReq struct {
	Url             string       `json:"url"`
	AudioChunks     []AudioChunk `json:"audio_chunks"`
	DurationSeconds float64      `json:"duration_seconds"`
	Language        string       `json:"language"`
	ReuseTaskId     string       `json:"reuse_task_id"`
}

type StartClipTaskResData struct {
	TaskId string `json:"task_id"`
}

type GetClipTaskReq struct {
	TaskId string `form:"taskId"`
}

// TaskHistoryItem is a task list entry. The heavy segment and candidate
// payloads stay out of list responses; GetClipTask returns them per task.
type TaskHistoryItem struct {
	TaskId          string  `json:"task_id"`
	VideoSrc        string  `json:"video_src"`
	Status          int8    `json:"status"`
	StatusMsg       string  `json:"status_msg"`
	FailReason      string  `json:"fail_reason,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	CreateTime      int64   `json:"create_time"`
}

type GetClipTaskResData struct {
	TaskId          string                    `json:"task_id"`
	Status          int8                      `json:"status"`
	StatusMsg       string                    `json:"status_msg"`
	FailReason      string                    `json:"fail_reason,omitempty"`
	DurationSeconds float64                   `json:"duration_seconds"`
	Candidates      []types.ClipCandidate     `json:"candidates,omitempty"`
	Segments        []types.TranscriptSegment `json:"segments,omitempty"`
}
