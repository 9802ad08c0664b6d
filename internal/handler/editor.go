package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge-ai/internal/dto"
	"clipforge-ai/internal/response"
	"clipforge-ai/log"
	apperrors "clipforge-ai/pkg/errors"
)

func (h *Handler) CreateEditorSession(c *gin.Context) {
	var req dto.CreateEditorSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("CreateEditorSession",
		zap.String("task_id", req.TaskId), zap.Int("candidate_index", req.CandidateIndex))

	data, err := h.Service.CreateEditorSession(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetEditorState(c *gin.Context) {
	data, err := h.Service.GetEditorState(c.Param("token"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) CloseEditorSession(c *gin.Context) {
	if err := h.Service.CloseEditorSession(c.Param("token")); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to close session", err))
		return
	}
	response.Success(c, nil)
}

func (h *Handler) SetTrimRange(c *gin.Context) {
	var req dto.SetTrimRangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.SetTrimRange(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) UpdateTrimStart(c *gin.Context) {
	var req dto.UpdateTrimBoundaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.UpdateTrimStart(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) UpdateTrimEnd(c *gin.Context) {
	var req dto.UpdateTrimBoundaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.UpdateTrimEnd(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) RestoreTranscription(c *gin.Context) {
	data, err := h.Service.RestoreOriginalTranscription(c.Param("token"))
	respondState(c, data, err)
}

func (h *Handler) UpdateCaptionText(c *gin.Context) {
	var req dto.UpdateCaptionTextReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.UpdateCaptionText(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) UpdateCaptionStyle(c *gin.Context) {
	var req dto.UpdateCaptionStyleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.UpdateCaptionStyle(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) UpdateCaptionStyleForIds(c *gin.Context) {
	var req dto.UpdateCaptionStyleForIdsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.UpdateCaptionStyleForIds(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) SplitCaption(c *gin.Context) {
	var req dto.SplitCaptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.SplitCaption(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) MergeCaptions(c *gin.Context) {
	var req dto.MergeCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.MergeCaptions(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) ShiftCaptions(c *gin.Context) {
	var req dto.ShiftCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	data, err := h.Service.ShiftCaptions(c.Param("token"), req)
	respondState(c, data, err)
}

func (h *Handler) ExportCaptions(c *gin.Context) {
	data, err := h.Service.ExportCaptionsSRT(c.Param("token"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func respondState(c *gin.Context, data *dto.EditorStateResData, err error) {
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
