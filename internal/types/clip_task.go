package types

// Clip task status values.
const (
	ClipTaskStatusProcessing int8 = iota + 1
	ClipTaskStatusSuccess
	ClipTaskStatusFailed
)

// ClipTask is the persisted record of one analysis run: transcription plus
// candidate generation for a single source video.
type ClipTask struct {
	Id              uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	TaskId          string  `json:"task_id" gorm:"uniqueIndex;size:64"`
	VideoSrc        string  `json:"video_src"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	Language        string  `json:"language"`
	Status          int8    `json:"status"`
	StatusMsg       string  `json:"status_msg"`
	FailReason      string  `json:"fail_reason"`
	// SegmentsJson and CandidatesJson store the transcript segments and clip
	// candidates as serialized JSON blobs.
	SegmentsJson   string `json:"-" gorm:"type:text"`
	CandidatesJson string `json:"-" gorm:"type:text"`
	CreateTime     int64  `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime     int64  `json:"update_time" gorm:"autoUpdateTime"`
}

// EditorSessionRecord is the best-effort persisted snapshot of an editor
// session. The in-memory session stays authoritative; this exists so a
// restarted server can list what users were working on.
type EditorSessionRecord struct {
	Id         uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	Token      string `json:"token" gorm:"uniqueIndex;size:64"`
	TaskId     string `json:"task_id" gorm:"index;size:64"`
	StateJson  string `json:"-" gorm:"type:text"`
	UpdateTime int64  `json:"update_time" gorm:"autoUpdateTime"`
}
