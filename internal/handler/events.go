package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipforge-ai/internal/response"
	"clipforge-ai/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The editor UI is served from arbitrary local origins.
		return true
	},
}

const eventWriteTimeout = 10 * time.Second

// EditorEvents streams session mutation events (version plus full state)
// over a websocket so every open editor view stays in sync.
func (h *Handler) EditorEvents(c *gin.Context) {
	token := c.Param("token")
	events, cancel, err := h.Service.SubscribeEditorEvents(token)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		log.GetLogger().Error("websocket upgrade failed", zap.String("token", token), zap.Error(err))
		return
	}

	go func() {
		defer cancel()
		defer conn.Close()

		// Drain the read side to notice a client disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			}
		}
	}()
}
