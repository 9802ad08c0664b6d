package main

import (
	"os"

	"go.uber.org/zap"

	"clipforge-ai/config"
	"clipforge-ai/internal/server"
	"clipforge-ai/internal/storage"
	"clipforge-ai/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		return
	}
	if created {
		path, _ := config.ResolveConfigPath()
		log.GetLogger().Info("wrote default config, fill in your keys and restart", zap.String("path", path))
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid config", zap.Error(err))
		return
	}

	storage.InitDB()

	// Mark any stale "processing" tasks as failed (zombie cleanup).
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale tasks as failed", zap.Int64("count", count))
	}

	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("backend failed to start", zap.Error(err))
		os.Exit(1)
	}
}
