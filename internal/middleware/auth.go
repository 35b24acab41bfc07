package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/olekhv/contactbook/internal/model"
	"github.com/olekhv/contactbook/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
)

// UserResolver turns a raw bearer token into a live user record, or reports
// that the caller is unauthenticated.
type UserResolver interface {
	ResolveUser(ctx context.Context, rawToken string) (*model.User, error)
}

// BearerAuth rejects requests without a valid bearer token. A missing header,
// a malformed or expired token and a token whose subject no longer exists all
// produce the same 401.
func BearerAuth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}
		user, err := resolver.ResolveUser(c.Request.Context(), rawToken)
		if err != nil {
			unauthorized(c)
			return
		}
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserEmailKey, user.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.AbortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
}
