package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/metrics"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// RequestLogger logs each request with structured fields and records
// request metrics under the route's handler name.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}

		metrics.RequestsTotal.WithLabelValues(handler, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(handler).Observe(elapsed.Seconds())

		logger.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
