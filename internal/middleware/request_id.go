package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/pkg/logutil"
)

const ContextRequestIDKey = "request_id"

// RequestID honors an incoming X-Request-Id or generates one, echoes it back
// and attaches it to the request-scoped logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", reqID)
		c.Set(ContextRequestIDKey, reqID)
		ctx := logutil.WithFields(c.Request.Context(), zap.String("request_id", reqID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
