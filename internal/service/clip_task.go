package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clipforge-ai/config"
	"clipforge-ai/internal/candidate"
	"clipforge-ai/internal/dto"
	"clipforge-ai/internal/segmenter"
	"clipforge-ai/internal/storage"
	"clipforge-ai/internal/types"
	"clipforge-ai/log"
	"clipforge-ai/pkg/asr"
	apperrors "clipforge-ai/pkg/errors"
	"clipforge-ai/pkg/util"
)

// CreateClipTask validates the request and persists a processing record.
// Processing itself is dispatched separately (goroutine, in-process runner,
// or queue worker) and always goes through RunClipTask.
func (s *Service) CreateClipTask(req dto.StartClipTaskReq) (*dto.StartClipTaskResData, error) {
	if req.Url == "" && len(req.AudioChunks) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "A source url or audio chunks are required")
	}
	if req.DurationSeconds <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "duration_seconds must be positive")
	}

	taskId := req.ReuseTaskId
	if taskId == "" {
		taskId = util.GenerateRandStringWithUpperLowerNum(12)
	}

	task := &types.ClipTask{
		TaskId:          taskId,
		VideoSrc:        req.Url,
		DurationSeconds: req.DurationSeconds,
		Language:        req.Language,
		Status:          types.ClipTaskStatusProcessing,
		StatusMsg:       "Transcribing",
	}
	if err := storage.SaveTask(task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to persist task", err)
	}

	return &dto.StartClipTaskResData{TaskId: taskId}, nil
}

// StartClipTask creates the task record and processes it on a background
// goroutine. Used when neither the queue nor the in-process runner is wired.
func (s *Service) StartClipTask(req dto.StartClipTaskReq) (*dto.StartClipTaskResData, error) {
	res, err := s.CreateClipTask(req)
	if err != nil {
		return nil, err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.GetLogger().Error("clip task panicked",
					zap.String("task_id", res.TaskId), zap.Any("panic", r))
				s.markTaskFailed(res.TaskId, fmt.Errorf("internal error: %v", r))
			}
		}()
		if err := s.RunClipTask(res.TaskId, req); err != nil {
			log.GetLogger().Error("clip task failed",
				zap.String("task_id", res.TaskId), zap.Error(err))
		}
	}()

	return res, nil
}

// RunClipTask executes the full pipeline synchronously: chunked
// transcription with key rotation, segment building, candidate generation
// and parsing. The task record is updated as it progresses.
func (s *Service) RunClipTask(taskId string, req dto.StartClipTaskReq) error {
	ctx := context.Background()
	language := types.Language(req.Language)

	result, err := s.transcribeSource(ctx, req, language)
	if err != nil {
		s.markTaskFailed(taskId, err)
		return err
	}

	var segments []types.TranscriptSegment
	if len(result.Words) > 0 {
		segments = segmenter.BuildSegments(result.Words, result.Language, segmenter.Options{
			MaxDuration: float64(config.Conf.App.SegmentDuration),
			MaxWords:    config.Conf.App.MaxSegmentWords,
		})
	} else {
		segments = segmenter.NormalizeSegments(result.Segments, result.Language)
	}
	if len(segments) == 0 {
		err := apperrors.ErrTranscriptEmpty
		s.markTaskFailed(taskId, err)
		return err
	}

	s.SegmentCache.Put(taskId, segments)
	if err := s.updateTaskProgress(taskId, segments, "Selecting highlights"); err != nil {
		s.markTaskFailed(taskId, err)
		return err
	}

	rawText, err := s.ChatCompleter.ChatCompletion(buildClipPrompt(segments))
	if err != nil {
		// Quota and auth rejections keep their own code; everything else
		// surfaces as an analysis failure.
		if !apperrors.Is(err, apperrors.CodeLLMQuotaExceeded) {
			err = apperrors.Wrap(apperrors.CodeClipAnalysisFailed, "Clip analysis failed", err)
		}
		s.markTaskFailed(taskId, err)
		return err
	}

	candidates, err := candidate.ParseCandidates(rawText, segments, req.DurationSeconds, candidate.Options{
		MinDuration:   float64(config.Conf.Clipper.MinClipDuration),
		MaxDuration:   float64(config.Conf.Clipper.MaxClipDuration),
		MinScore:      float64(config.Conf.Clipper.MinScore),
		SnapTolerance: config.Conf.Clipper.SnapTolerance,
	})
	if err != nil {
		s.markTaskFailed(taskId, err)
		return err
	}

	return s.finishTask(taskId, segments, candidates)
}

// GetTaskStatus returns the task state with its segments and candidates.
func (s *Service) GetTaskStatus(req dto.GetClipTaskReq) (*dto.GetClipTaskResData, error) {
	task, err := storage.GetTask(req.TaskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}

	res := &dto.GetClipTaskResData{
		TaskId:          task.TaskId,
		Status:          task.Status,
		StatusMsg:       task.StatusMsg,
		FailReason:      task.FailReason,
		DurationSeconds: task.DurationSeconds,
	}
	if task.SegmentsJson != "" {
		if err := json.Unmarshal([]byte(task.SegmentsJson), &res.Segments); err != nil {
			log.GetLogger().Warn("stored segments are unreadable", zap.String("task_id", task.TaskId), zap.Error(err))
		}
	}
	if task.CandidatesJson != "" {
		if err := json.Unmarshal([]byte(task.CandidatesJson), &res.Candidates); err != nil {
			log.GetLogger().Warn("stored candidates are unreadable", zap.String("task_id", task.TaskId), zap.Error(err))
		}
	}
	return res, nil
}

// transcribeSource transcribes every audio chunk concurrently, realigns each
// chunk by its offset and merges the results in timeline order.
func (s *Service) transcribeSource(ctx context.Context, req dto.StartClipTaskReq, language types.Language) (*types.TranscriptionResult, error) {
	chunks := req.AudioChunks
	if len(chunks) == 0 {
		chunks = []dto.AudioChunk{{Url: req.Url}}
	}

	concurrency := config.Conf.Transcribe.ChunkConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*types.TranscriptionResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			result, err := s.transcribeWithRotation(gctx, chunk.Url, language)
			if err != nil {
				return err
			}
			offsetResult(result, chunk.OffsetSeconds)
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &types.TranscriptionResult{Language: language}
	for _, r := range results {
		if merged.Language == "" {
			merged.Language = r.Language
		}
		merged.Words = append(merged.Words, r.Words...)
		merged.Segments = append(merged.Segments, r.Segments...)
	}
	sort.SliceStable(merged.Words, func(i, j int) bool { return merged.Words[i].Start < merged.Words[j].Start })
	sort.SliceStable(merged.Segments, func(i, j int) bool { return merged.Segments[i].Start < merged.Segments[j].Start })
	return merged, nil
}

// transcribeWithRotation retries quota/auth failures with a freshly obtained
// key, up to the configured attempt cap. Transport failures do not retry and
// do not exhaust the key.
func (s *Service) transcribeWithRotation(ctx context.Context, audioURL string, language types.Language) (*types.TranscriptionResult, error) {
	maxAttempts := config.Conf.Transcribe.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := s.KeyPool.GetAvailableKey()
		if err != nil {
			return nil, err
		}

		result, err := s.Transcriber.Transcribe(ctx, audioURL, language, key)
		if err == nil {
			return result, nil
		}
		if asr.IsQuotaOrAuth(err) {
			log.GetLogger().Warn("transcription key exhausted, rotating",
				zap.Int("attempt", attempt+1), zap.Error(err))
			s.KeyPool.MarkExhausted(key)
			lastErr = err
			continue
		}
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "Transcription failed", err)
	}
	return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "Transcription failed after retries", lastErr)
}

func offsetResult(result *types.TranscriptionResult, offsetSeconds float64) {
	if offsetSeconds == 0 {
		return
	}
	for i := range result.Words {
		result.Words[i].Start += offsetSeconds
		result.Words[i].End += offsetSeconds
	}
	for i := range result.Segments {
		result.Segments[i].Start += offsetSeconds
		result.Segments[i].End += offsetSeconds
		for j := range result.Segments[i].Words {
			result.Segments[i].Words[j].Start += offsetSeconds
			result.Segments[i].Words[j].End += offsetSeconds
		}
	}
}

// buildClipPrompt renders the transcript with timestamps so the generation
// service can answer with second-accurate ranges.
func buildClipPrompt(segments []types.TranscriptSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&sb, "[%.1f - %.1f] %s\n", seg.Start, seg.End, seg.Text)
	}

	basePrompt := config.Conf.Clipper.Prompt
	if basePrompt == "" {
		basePrompt = types.ClipAnalysisPrompt
	}
	return fmt.Sprintf(basePrompt,
		config.Conf.Clipper.MinClipDuration,
		config.Conf.Clipper.MaxClipDuration,
		sb.String(),
	)
}

func (s *Service) updateTaskProgress(taskId string, segments []types.TranscriptSegment, statusMsg string) error {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to load task", err)
	}

	segmentsJson, err := json.Marshal(segments)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "Failed to serialize segments", err)
	}
	task.SegmentsJson = string(segmentsJson)
	task.StatusMsg = statusMsg
	if err := storage.SaveTask(task); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to persist task", err)
	}
	return nil
}

func (s *Service) finishTask(taskId string, segments []types.TranscriptSegment, candidates []types.ClipCandidate) error {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to load task", err)
	}

	candidatesJson, err := json.Marshal(candidates)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "Failed to serialize candidates", err)
	}
	task.CandidatesJson = string(candidatesJson)
	task.Status = types.ClipTaskStatusSuccess
	task.StatusMsg = "Done"
	task.FailReason = ""
	if err := storage.SaveTask(task); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to persist task", err)
	}

	log.GetLogger().Info("clip task finished",
		zap.String("task_id", taskId),
		zap.Int("segments", len(segments)),
		zap.Int("candidates", len(candidates)))
	return nil
}

func (s *Service) markTaskFailed(taskId string, taskErr error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return
	}
	task.Status = types.ClipTaskStatusFailed
	task.StatusMsg = "Failed"
	task.FailReason = apperrors.GetMessage(taskErr)
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("failed to mark task failed", zap.String("task_id", taskId), zap.Error(err))
	}
}
