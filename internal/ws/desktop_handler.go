package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DesktopHandler upgrades an authenticated request to a websocket that
// receives desktop.version events for the signed-in user.
func DesktopHandler(hub *DesktopHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
			return
		}
		uVal, ok := c.Get("user")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user := uVal.(models.User)
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newDesktopClient(hub, conn, user.UserID)
		hub.register <- client

		go client.writePump()
		client.readPump()
	}
}
