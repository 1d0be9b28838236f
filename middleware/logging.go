package middleware

import (
	"time"

	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. IDs in the path are masked in production.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", utils.MaskPath(c.Request.URL.Path)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			utils.Log.Error("request", fields...)
		case status >= 400:
			utils.Log.Warn("request", fields...)
		default:
			utils.Log.Info("request", fields...)
		}
	}
}
