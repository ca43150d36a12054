package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/trace"
	"social-content/logger"
)

// RequestTrace 는 모든 inbound 요청에 요청 id 를 보장하고 응답 후 한 줄로 로깅한다.
// 들어온 X-Request-Id 가 있으면 그대로 이어 쓴다.
func RequestTrace(lg logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(trace.HeaderRequestID)
		if requestID == "" {
			requestID = trace.NewRequestID()
		}
		c.Request = c.Request.WithContext(trace.WithRequest(c.Request.Context(), requestID))
		c.Writer.Header().Set(trace.HeaderRequestID, requestID)

		c.Next()

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
			"span_id":    trace.CurrentSpanID(c.Request.Context()),
		}
		if actor, ok := c.Get("actor_id"); ok {
			fields["actor_id"] = actor
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			logger.WarnWithFields(lg, "completed request", fields)
			return
		}
		logger.InfoWithFields(lg, "completed request", fields)
	}
}
