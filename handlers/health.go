package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tavolo/utils"
)

// HealthHandler serves the latest health snapshot gathered by the monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
