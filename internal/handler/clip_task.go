package handler

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clipforge-ai/internal/appdirs"
	"clipforge-ai/internal/dto"
	"clipforge-ai/internal/queue"
	"clipforge-ai/internal/response"
	"clipforge-ai/internal/storage"
	"clipforge-ai/internal/taskrunner"
	"clipforge-ai/internal/types"
	"clipforge-ai/log"
	apperrors "clipforge-ai/pkg/errors"
	"clipforge-ai/pkg/util"
)

func (h *Handler) StartClipTask(c *gin.Context) {
	var req dto.StartClipTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartClipTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartClipTask received request", zap.String("url", req.Url))

	h.reloadServiceIfNeeded()

	switch {
	case h.Queue != nil:
		data, err := h.Service.CreateClipTask(req)
		if err != nil {
			response.ErrorResponse(c, err)
			return
		}
		if err := h.Queue.EnqueueClipTask(queue.ClipTaskPayload{TaskID: data.TaskId, Req: req}); err != nil {
			response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "Failed to enqueue task", err))
			return
		}
		response.Success(c, data)
	case h.Runner != nil:
		data, err := h.Service.CreateClipTask(req)
		if err != nil {
			response.ErrorResponse(c, err)
			return
		}
		if err := h.Runner.SubmitClipTask(taskrunner.ClipTaskPayload{TaskID: data.TaskId, Req: req}); err != nil {
			response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "Failed to submit task", err))
			return
		}
		response.Success(c, data)
	default:
		data, err := h.Service.StartClipTask(req)
		if err != nil {
			response.ErrorResponse(c, err)
			return
		}
		response.Success(c, data)
	}
}

func (h *Handler) GetClipTask(c *gin.Context) {
	var req dto.GetClipTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.GetTaskStatus(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(50)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to load task history", err))
		return
	}
	response.Success(c, lo.Map(tasks, func(item types.ClipTask, _ int) dto.TaskHistoryItem {
		return dto.TaskHistoryItem{
			TaskId:          item.TaskId,
			VideoSrc:        item.VideoSrc,
			Status:          item.Status,
			StatusMsg:       item.StatusMsg,
			FailReason:      item.FailReason,
			DurationSeconds: item.DurationSeconds,
			CreateTime:      item.CreateTime,
		}
	}))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to delete task", err))
		return
	}
	h.Service.SegmentCache.Delete(taskId)

	// Exported artifacts go with the task. Best effort.
	if dirs, err := appDirsResolver(); err == nil {
		taskDir := appdirs.TaskDirFor(dirs, util.SanitizePathName(taskId))
		if err := os.RemoveAll(taskDir); err != nil {
			log.GetLogger().Warn("failed to remove task artifacts", zap.String("task_id", taskId), zap.Error(err))
		}
	}
	response.Success(c, nil)
}
