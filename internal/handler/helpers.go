package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/middleware"
	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
	"github.com/olekhv/contactbook/internal/pkg/logutil"
	"github.com/olekhv/contactbook/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

// handleError covers the generic tail of the error taxonomy. Handlers answer
// the cases with endpoint-specific wording (contact/user not found, duplicate
// email) before falling through to this.
func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsUnauthorized(err):
		c.Header("WWW-Authenticate", "Bearer")
		response.Detail(c, http.StatusUnauthorized, "Could not validate credentials")
	case appErr.IsNotFound(err):
		response.Detail(c, http.StatusNotFound, "Not found")
	case appErr.IsConflict(err):
		response.Detail(c, http.StatusConflict, "Conflict")
	case err == appErr.ErrInvalid:
		response.Detail(c, http.StatusUnprocessableEntity, "Invalid request")
	case err == appErr.ErrTooMany:
		response.Detail(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
	default:
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Detail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func requestBaseURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}
