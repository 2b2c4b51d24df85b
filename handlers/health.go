package handlers

import (
	"net/http"

	"qartelbot/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency check.
func HealthHandler(status func() utils.HealthStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := status()
		code := http.StatusOK
		state := "ok"
		if !s.Healthy() {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "checks": s})
	}
}
