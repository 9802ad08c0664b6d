package service

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipforge-ai/internal/dto"
	"clipforge-ai/internal/editor"
	"clipforge-ai/internal/storage"
	"clipforge-ai/internal/types"
	"clipforge-ai/log"
	apperrors "clipforge-ai/pkg/errors"
)

// editorSessions maps session token to its live aggregate. The in-memory
// session is authoritative; the DB snapshot only lets a restarted server
// resume what users were working on.
var editorSessions sync.Map

type sessionEntry struct {
	session *editor.Session
	taskId  string
}

// CreateEditorSession opens an editing session from an accepted candidate of
// a finished clip task.
func (s *Service) CreateEditorSession(req dto.CreateEditorSessionReq) (*dto.CreateEditorSessionResData, error) {
	task, err := storage.GetTask(req.TaskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}
	if task.Status != types.ClipTaskStatusSuccess {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "Task has not finished analyzing")
	}

	var candidates []types.ClipCandidate
	if err := json.Unmarshal([]byte(task.CandidatesJson), &candidates); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "Stored candidates are unreadable", err)
	}
	if req.CandidateIndex < 0 || req.CandidateIndex >= len(candidates) {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "Candidate index out of range")
	}

	var segments []types.TranscriptSegment
	if task.SegmentsJson != "" {
		if err := json.Unmarshal([]byte(task.SegmentsJson), &segments); err != nil {
			log.GetLogger().Warn("stored segments are unreadable", zap.String("task_id", task.TaskId), zap.Error(err))
		}
	}
	// The cache keeps the widest list it has seen; feeding the stored list
	// through it resolves which one covers more of the timeline.
	s.SegmentCache.Put(task.TaskId, segments)
	if cached, ok := s.SegmentCache.Get(task.TaskId); ok {
		segments = cached
	}

	chosen := candidates[req.CandidateIndex]
	session := editor.NewSession(task.DurationSeconds, types.TrimRange{
		StartTime: chosen.Start,
		EndTime:   chosen.End,
	}, segments)

	token := uuid.New().String()
	editorSessions.Store(token, sessionEntry{session: session, taskId: task.TaskId})
	s.persistSession(token, task.TaskId, session)

	_, state := session.Snapshot()
	return &dto.CreateEditorSessionResData{Token: token, State: state}, nil
}

// GetEditorState returns the current version and state of a session.
func (s *Service) GetEditorState(token string) (*dto.EditorStateResData, error) {
	entry, err := s.getSession(token)
	if err != nil {
		return nil, err
	}
	return stateRes(token, entry.session), nil
}

// SubscribeEditorEvents registers a listener for session mutations.
func (s *Service) SubscribeEditorEvents(token string) (<-chan editor.StateEvent, func(), error) {
	entry, err := s.getSession(token)
	if err != nil {
		return nil, nil, err
	}
	events, cancel := entry.session.Subscribe()
	return events, cancel, nil
}

// CloseEditorSession drops the live session and its persisted snapshot.
func (s *Service) CloseEditorSession(token string) error {
	editorSessions.Delete(token)
	return storage.DeleteEditorSession(token)
}

func (s *Service) SetTrimRange(token string, req dto.SetTrimRangeReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		segments := req.Segments
		// Consult the cache for a wider list than the one supplied.
		if len(segments) > 0 {
			s.SegmentCache.Put(entry.taskId, segments)
		}
		if cached, ok := s.SegmentCache.Get(entry.taskId); ok {
			segments = cached
		}
		entry.session.SetTrimRange(req.StartTime, req.EndTime, segments)
		return nil
	})
}

func (s *Service) UpdateTrimStart(token string, req dto.UpdateTrimBoundaryReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		entry.session.UpdateTrimStart(req.Time)
		return nil
	})
}

func (s *Service) UpdateTrimEnd(token string, req dto.UpdateTrimBoundaryReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		entry.session.UpdateTrimEnd(req.Time)
		return nil
	})
}

func (s *Service) RestoreOriginalTranscription(token string) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		entry.session.RestoreOriginalTranscription()
		return nil
	})
}

func (s *Service) UpdateCaptionText(token string, req dto.UpdateCaptionTextReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.UpdateCaptionText(req.CaptionId, req.Text)
	})
}

func (s *Service) UpdateCaptionStyle(token string, req dto.UpdateCaptionStyleReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.UpdateCaptionStyle(req.CaptionId, req.Style)
	})
}

func (s *Service) UpdateCaptionStyleForIds(token string, req dto.UpdateCaptionStyleForIdsReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.UpdateCaptionStyleForIDs(req.CaptionIds, req.Style)
	})
}

func (s *Service) SplitCaption(token string, req dto.SplitCaptionReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.SplitCaptionAtPlayhead(req.CaptionId, req.PlayheadTime)
	})
}

func (s *Service) MergeCaptions(token string, req dto.MergeCaptionsReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.MergeCaptions(req.CaptionIds)
	})
}

func (s *Service) ShiftCaptions(token string, req dto.ShiftCaptionsReq) (*dto.EditorStateResData, error) {
	return s.mutateSession(token, func(entry sessionEntry) error {
		return entry.session.ShiftCaptions(req.CaptionIds, req.DeltaMs)
	})
}

func (s *Service) mutateSession(token string, mutate func(sessionEntry) error) (*dto.EditorStateResData, error) {
	entry, err := s.getSession(token)
	if err != nil {
		return nil, err
	}
	if err := mutate(entry); err != nil {
		return nil, err
	}
	s.persistSession(token, entry.taskId, entry.session)
	return stateRes(token, entry.session), nil
}

func (s *Service) getSession(token string) (sessionEntry, error) {
	if val, ok := editorSessions.Load(token); ok {
		return val.(sessionEntry), nil
	}

	record, err := storage.GetEditorSession(token)
	if err != nil {
		return sessionEntry{}, apperrors.ErrSessionNotFound
	}
	var state types.EditorState
	if err := json.Unmarshal([]byte(record.StateJson), &state); err != nil {
		return sessionEntry{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "Stored session state is unreadable", err)
	}

	entry := sessionEntry{session: editor.Restore(state), taskId: record.TaskId}
	actual, _ := editorSessions.LoadOrStore(token, entry)
	return actual.(sessionEntry), nil
}

// persistSession snapshots the session to the DB. Best effort: persistence
// failures are logged, never surfaced, since the in-memory session stays
// authoritative.
func (s *Service) persistSession(token, taskId string, session *editor.Session) {
	_, state := session.Snapshot()
	stateJson, err := json.Marshal(state)
	if err != nil {
		log.GetLogger().Warn("failed to serialize editor session", zap.String("token", token), zap.Error(err))
		return
	}
	err = storage.SaveEditorSession(&types.EditorSessionRecord{
		Token:     token,
		TaskId:    taskId,
		StateJson: string(stateJson),
	})
	if err != nil {
		log.GetLogger().Warn("failed to persist editor session", zap.String("token", token), zap.Error(err))
	}
}

func stateRes(token string, session *editor.Session) *dto.EditorStateResData {
	version, state := session.Snapshot()
	return &dto.EditorStateResData{
		Token:   token,
		Version: version,
		State:   state,
	}
}
