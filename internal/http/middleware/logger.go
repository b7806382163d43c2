package middleware

import (
	"net/http"
	"time"

	"travelcheckout/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			utils.Logger().Error("http", fields...)
			return
		}
		utils.Logger().Info("http", fields...)
	}
}

// Recovery turns a panic into a 500 with the request id and logs the value.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.Logger().Error("panic",
			zap.String("request_id", GetRequestID(c)),
			zap.Any("recovered", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":    "internal error",
			"code":       "internal_error",
			"request_id": GetRequestID(c),
		})
	})
}
