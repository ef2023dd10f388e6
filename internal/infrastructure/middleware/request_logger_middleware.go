package middleware

import (
	"time"

	"streamgate/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLoggerMiddleware tags every request with a request id and emits one
// structured access-log line after the handler chain completes. When the
// access gate resolved a user, their external id is included for correlation.
func RequestLoggerMiddleware(ctxLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		if user, ok := UserFromContext(c); ok {
			ctx = logger.ContextWithTelegramID(ctx, user.TelegramID)
		}

		ctxLogger.LogRequest(ctx,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
