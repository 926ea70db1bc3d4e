package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness. geminiReady may be nil; otherwise it tells
// callers whether live generation is possible or requests get the mock.
func HealthCheck(version string, geminiReady func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := "live"
		if geminiReady != nil && !geminiReady() {
			mode = "mock"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"message":    "Recipe AI API is running",
			"version":    version,
			"generation": mode,
		})
	}
}
