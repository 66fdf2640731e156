package middleware

import (
	"time"

	"github.com/alimgiray/reviewgate/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs HTTP requests with method, path, status and duration
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
			"delivery_id": c.GetHeader("X-GitHub-Delivery"),
			"event":       c.GetHeader("X-GitHub-Event"),
		})

		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("http")
			return
		}
		entry.Info("http")
	}
}
