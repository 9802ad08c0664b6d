package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge-ai/config"
	"clipforge-ai/internal/handler"
	"clipforge-ai/internal/queue"
	"clipforge-ai/internal/router"
	"clipforge-ai/internal/service"
	"clipforge-ai/internal/taskrunner"
	"clipforge-ai/log"
)

// StartBackend wires the service, a task dispatch backend and the HTTP API,
// then blocks serving requests.
func StartBackend() error {
	svc := service.NewService()

	var q *queue.Queue
	var runner *taskrunner.Runner
	if config.Conf.Queue.Enabled {
		q = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
		log.GetLogger().Info("task dispatch: asynq queue", zap.String("redis_addr", config.Conf.Queue.RedisAddr))
	} else {
		runner = taskrunner.New(svc, taskrunner.DefaultConfig())
		log.GetLogger().Info("task dispatch: in-process runner")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	hdl := handler.NewHandler(svc, q, runner)
	router.SetupRouter(engine, hdl)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("backend listening", zap.String("addr", addr))
	return engine.Run(addr)
}
