package router

import (
	"github.com/gin-gonic/gin"

	"clipforge-ai/internal/handler"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/clip/task", hdl.StartClipTask)
		api.GET("/clip/task", hdl.GetClipTask)
		api.GET("/clip/history", hdl.GetTaskHistory)
		api.DELETE("/clip/task/:taskId", hdl.DeleteTask)

		api.POST("/editor/session", hdl.CreateEditorSession)
		api.GET("/editor/session/:token", hdl.GetEditorState)
		api.DELETE("/editor/session/:token", hdl.CloseEditorSession)
		api.GET("/editor/session/:token/events", hdl.EditorEvents)

		api.POST("/editor/session/:token/trim", hdl.SetTrimRange)
		api.POST("/editor/session/:token/trim/start", hdl.UpdateTrimStart)
		api.POST("/editor/session/:token/trim/end", hdl.UpdateTrimEnd)
		api.POST("/editor/session/:token/transcription/restore", hdl.RestoreTranscription)

		api.POST("/editor/session/:token/caption/text", hdl.UpdateCaptionText)
		api.POST("/editor/session/:token/caption/style", hdl.UpdateCaptionStyle)
		api.POST("/editor/session/:token/caption/style/batch", hdl.UpdateCaptionStyleForIds)
		api.POST("/editor/session/:token/caption/split", hdl.SplitCaption)
		api.POST("/editor/session/:token/caption/merge", hdl.MergeCaptions)
		api.POST("/editor/session/:token/caption/shift", hdl.ShiftCaptions)
		api.POST("/editor/session/:token/export/srt", hdl.ExportCaptions)

		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)

		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}
}
