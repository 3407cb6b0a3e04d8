package rooms

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterRealtimeHandler exposes the SSE join endpoint. A client opts into
// rooms by name (`?rooms=project:1,user:2`). Room admission is not checked
// against project membership; any authenticated client may join any room
// by id.
func RegisterRealtimeHandler(r *gin.Engine, b *Broadcaster, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/realtime", middleWares...)

	g.GET("", func(c *gin.Context) {
		roomNames := strings.Split(c.Query("rooms"), ",")
		messages := b.Subscribe(c.Request.Context(), roomNames)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			msg, ok := <-messages
			if !ok {
				return false
			}
			c.SSEvent(msg.Event, mustMarshal(msg))
			return true
		})
	})
}

func mustMarshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
