package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/olekhv/contactbook/internal/model"
	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
)

type stubResolver struct {
	user *model.User
}

func (r stubResolver) ResolveUser(ctx context.Context, rawToken string) (*model.User, error) {
	if r.user == nil || rawToken != "good-token" {
		return nil, appErr.ErrUnauthorized
	}
	return r.user, nil
}

func newAuthTestRouter(resolver UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", BearerAuth(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserIDKey)})
	})
	return r
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	router := newAuthTestRouter(stubResolver{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/probe", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestBearerAuth_MalformedHeader(t *testing.T) {
	router := newAuthTestRouter(stubResolver{user: &model.User{ID: "u1"}})
	for _, header := range []string{"good-token", "Basic good-token", "Bearer "} {
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	router := newAuthTestRouter(stubResolver{user: &model.User{ID: "u1"}})
	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	router := newAuthTestRouter(stubResolver{user: &model.User{ID: "u1", Email: "a@example.com"}})
	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "u1")
}
