package service

import (
	"time"

	"go.uber.org/zap"

	"clipforge-ai/config"
	"clipforge-ai/internal/cache"
	"clipforge-ai/internal/types"
	"clipforge-ai/log"
	"clipforge-ai/pkg/asr"
	"clipforge-ai/pkg/keypool"
	"clipforge-ai/pkg/openai"
)

type Service struct {
	Transcriber   types.Transcriber
	ChatCompleter types.ChatCompleter
	KeyPool       *keypool.Pool
	SegmentCache  *cache.SegmentCache
}

func NewService() *Service {
	var transcriber types.Transcriber
	switch config.Conf.Transcribe.Provider {
	case "openai", "":
		transcriber = asr.NewClient(config.Conf.Transcribe.BaseUrl, config.Conf.App.Proxy)
	default:
		log.GetLogger().Warn("unknown transcription provider, using openai-compatible client",
			zap.String("provider", config.Conf.Transcribe.Provider))
		transcriber = asr.NewClient(config.Conf.Transcribe.BaseUrl, config.Conf.App.Proxy)
	}
	log.GetLogger().Info("transcription provider selected", zap.String("provider", config.Conf.Transcribe.Provider))

	chatCompleter := openai.NewClient(
		config.Conf.Llm.BaseUrl,
		config.Conf.Llm.ApiKey,
		config.Conf.App.Proxy,
		config.Conf.Llm.Model,
	)

	pool := keypool.New(
		config.Conf.Transcribe.ApiKeys,
		time.Duration(config.Conf.Transcribe.KeyCooldownMinutes)*time.Minute,
	)

	return &Service{
		Transcriber:   transcriber,
		ChatCompleter: chatCompleter,
		KeyPool:       pool,
		SegmentCache:  cache.NewSegmentCache(),
	}
}
