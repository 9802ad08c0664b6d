package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge-ai/config"
	"clipforge-ai/internal/queue"
	"clipforge-ai/internal/response"
	"clipforge-ai/internal/service"
	"clipforge-ai/internal/taskrunner"
	"clipforge-ai/log"
	apperrors "clipforge-ai/pkg/errors"
)

// Handler carries the service plus whichever dispatch backend is wired:
// the Redis-backed queue, the in-process runner, or neither (tasks then run
// on a plain goroutine).
type Handler struct {
	Service *service.Service
	Queue   *queue.Queue
	Runner  *taskrunner.Runner
}

// configUpdated flags that the config changed and the service needs to be
// rebuilt before the next task starts.
var configUpdated bool

func NewHandler(svc *service.Service, q *queue.Queue, runner *taskrunner.Runner) *Handler {
	return &Handler{
		Service: svc,
		Queue:   q,
		Runner:  runner,
	}
}

func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var incoming config.Config
	if err := c.ShouldBindJSON(&incoming); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	previous := config.Conf
	config.Conf = incoming
	if err := config.CheckConfig(); err != nil {
		config.Conf = previous
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid configuration", err))
		return
	}
	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("failed to save config", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to save configuration", err))
		return
	}

	configUpdated = true
	log.GetLogger().Info("configuration updated")
	response.Success(c, nil)
}

// reloadServiceIfNeeded rebuilds the service after a config change so new
// keys, endpoints and limits take effect without a restart.
func (h *Handler) reloadServiceIfNeeded() {
	if !configUpdated {
		return
	}
	log.GetLogger().Info("config changed, rebuilding service")
	h.Service = service.NewService()
	configUpdated = false
}
