package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clirdec/presence/internal/models"
)

// MonitoringHandler upgrades staff dashboard connections. Requires an
// authenticated admin or faculty user from the auth middleware.
func MonitoringHandler(hub *MonitoringHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		uVal, ok := c.Get("user")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user := uVal.(models.User)
		role := strings.ToLower(user.Role)
		if role != models.RoleAdmin && role != models.RoleFaculty {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newMonitoringClient(hub, conn)
		hub.register <- client

		go client.writePump()
		client.readPump()
	}
}
