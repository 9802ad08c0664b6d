// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipforge-ai/internal/service"
	"clipforge-ai/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleClipTask processes clip analysis tasks
func (h *TaskHandlers) HandleClipTask(ctx context.Context, t *asynq.Task) error {
	var payload ClipTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing clip task",
		zap.String("task_id", payload.TaskID),
		zap.String("url", payload.Req.Url))

	// RunClipTask marks the task record failed on error; returning the
	// error still lets asynq apply its retry policy.
	if err := h.service.RunClipTask(payload.TaskID, payload.Req); err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Clip task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeClipTask, h.HandleClipTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
