package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"clipforge-ai/internal/appdirs"
	"clipforge-ai/internal/dto"
	"clipforge-ai/internal/types"
	"clipforge-ai/log"
	apperrors "clipforge-ai/pkg/errors"
	"clipforge-ai/pkg/util"
)

const srtFileName = "captions.srt"

var appDirsResolver = appdirs.Resolve

// ExportCaptionsSRT renders the session's visible captions as an SRT file in
// the task's working directory. Timestamps are clip-relative so the file
// lines up with the rendered clip, not the source video.
func (s *Service) ExportCaptionsSRT(token string) (*dto.ExportCaptionsResData, error) {
	entry, err := s.getSession(token)
	if err != nil {
		return nil, err
	}
	_, state := entry.session.Snapshot()

	captions := make([]types.Caption, 0, len(state.Captions))
	for _, c := range state.Captions {
		if c.IsVisible && strings.TrimSpace(c.Text) != "" {
			captions = append(captions, c)
		}
	}
	if len(captions) == 0 {
		return nil, apperrors.New(apperrors.CodeCaptionNotFound, "Session has no visible captions to export")
	}
	sort.SliceStable(captions, func(i, j int) bool { return captions[i].StartTime < captions[j].StartTime })

	safeTaskId := util.SanitizePathName(entry.taskId)
	dirs, err := appDirsResolver()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to resolve task directory", err)
	}
	taskDir := appdirs.TaskDirFor(dirs, safeTaskId)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to create task directory", err)
	}

	srtPath := filepath.Join(taskDir, srtFileName)
	if err := os.WriteFile(srtPath, []byte(renderSRT(captions, state.TrimRange.StartTime)), 0o644); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to write subtitle file", err)
	}

	log.GetLogger().Info("captions exported",
		zap.String("token", token), zap.String("path", srtPath), zap.Int("captions", len(captions)))

	return &dto.ExportCaptionsResData{
		FileName:    srtFileName,
		DownloadUrl: fmt.Sprintf("/api/file/%s/%s/%s", appdirs.TaskRootName, safeTaskId, srtFileName),
	}, nil
}

func renderSRT(captions []types.Caption, clipStart float64) string {
	var sb strings.Builder
	for i, c := range captions {
		start := c.StartTime - clipStart
		end := c.EndTime - clipStart
		if start < 0 {
			start = 0
		}
		if end < start {
			end = start
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTime(start), formatSRTTime(end), c.Text)
	}
	return sb.String()
}

func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", totalSec/3600, (totalSec%3600)/60, totalSec%60, ms)
}
