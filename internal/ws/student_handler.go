package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/seb_proctor/internal/middleware"
)

// StudentHandler streams the caller's own record changes. Admins pass the
// same as students, matching the role gate on the exam routes.
func StudentHandler(hubs *Hubs) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hubs == nil || hubs.Student == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
			return
		}
		caller, ok := middleware.CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if caller.Role != middleware.RoleSiswa && caller.Role != middleware.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newStudentClient(hubs.Student, conn, caller.ID)
		hubs.Student.register <- client

		go client.writePump()
		client.readPump()
	}
}
