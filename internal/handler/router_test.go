package handler_test

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/olekhv/contactbook/internal/config"
	"github.com/olekhv/contactbook/internal/filestore"
	"github.com/olekhv/contactbook/internal/handler"
	"github.com/olekhv/contactbook/internal/pkg/token"
	"github.com/olekhv/contactbook/internal/repo"
	"github.com/olekhv/contactbook/internal/service"
	"github.com/olekhv/contactbook/internal/testutil"
)

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error {
	return nil
}

type testEnv struct {
	router *gin.Engine
	signer *token.Signer
}

func setupRouter(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(conn)
	contactRepo := repo.NewContactRepo(conn)
	outboxRepo := repo.NewOutboxRepo(conn)

	signer := token.NewSigner([]byte("test-secret"), 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
	mailer := service.NewMailerService(outboxRepo, noopSender{}, 3)
	authService := service.NewAuthService(userRepo, signer, mailer, "http://127.0.0.1:8000")
	contactService := service.NewContactService(contactRepo)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	avatarService := service.NewAvatarService(userRepo, store)

	router := gin.New()
	handler.RegisterRoutes(router, handler.RouterDeps{
		Auth:                   handler.NewAuthHandler(authService),
		Contacts:               handler.NewContactHandler(contactService),
		Avatar:                 handler.NewAvatarHandler(avatarService),
		Resolver:               authService,
		ContactCreatePerMinute: 5,
	})

	return &testEnv{router: router, signer: signer}, cleanup
}

func newTestEmail() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf) + "@example.com"
}

func (e *testEnv) doJSON(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, path, email, pass string) map[string]interface{} {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, path, "", map[string]string{"email": email, "password": pass})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (e *testEnv) login(t *testing.T, email, pass string) string {
	t.Helper()
	form := url.Values{"username": {email}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.Equal(t, "bearer", tokens["token_type"])
	require.NotEmpty(t, tokens["refresh_token"])
	return tokens["access_token"]
}

func janeBody() map[string]string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return map[string]string{
		"first_name":   "Jane",
		"last_name":    "Doe",
		"email":        hex.EncodeToString(buf) + "@x.com",
		"phone_number": "555-0100",
		"birthday":     "1990-01-01",
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	user := env.register(t, "/register/", email, "password")
	require.Equal(t, email, user["email"])
	require.Equal(t, false, user["is_active"])
	require.NotEmpty(t, user["id"])

	rec := env.doJSON(t, http.MethodPost, "/register/", "", map[string]string{"email": email, "password": "password"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Email already registered")
}

func TestCreateUserActivatesImmediately(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	user := env.register(t, "/users/", newTestEmail(), "password")
	require.Equal(t, true, user["is_active"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	env.register(t, "/users/", email, "right-password")

	attempt := func(user, pass string) *httptest.ResponseRecorder {
		form := url.Values{"username": {user}, "password": {pass}}
		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	wrongPass := attempt(email, "wrong-password")
	unknownUser := attempt(newTestEmail(), "right-password")
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPass.Body.String(), unknownUser.Body.String())
	require.Contains(t, wrongPass.Body.String(), "Incorrect email or password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/users/me/"},
		{http.MethodGet, "/contacts/"},
		{http.MethodPost, "/contacts/"},
		{http.MethodGet, "/contacts/some-id"},
	} {
		rec := env.doJSON(t, probe.method, probe.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", probe.method, probe.path)
		require.Contains(t, rec.Body.String(), "Could not validate credentials")
	}
}

func TestContactLifecycle(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	env.register(t, "/users/", email, "password")
	access := env.login(t, email, "password")

	body := janeBody()
	rec := env.doJSON(t, http.MethodPost, "/contacts/", access, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	contactID, _ := created["id"].(string)
	require.NotEmpty(t, contactID)

	rec = env.doJSON(t, http.MethodGet, "/contacts/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Jane", list[0]["first_name"])

	// partial update changes only the supplied field
	rec = env.doJSON(t, http.MethodPut, "/contacts/"+contactID, access, map[string]string{"first_name": "New"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "New", updated["first_name"])
	require.Equal(t, "Doe", updated["last_name"])
	require.Equal(t, body["email"], updated["email"])

	// an empty value counts as "not supplied"
	rec = env.doJSON(t, http.MethodPut, "/contacts/"+contactID, access, map[string]string{"first_name": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "New", updated["first_name"])

	rec = env.doJSON(t, http.MethodDelete, "/contacts/"+contactID, access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/contacts/"+contactID, access, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Contact not found")
}

func TestContactCrossUserIsolation(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	aliceEmail := newTestEmail()
	bobEmail := newTestEmail()
	env.register(t, "/users/", aliceEmail, "password")
	env.register(t, "/users/", bobEmail, "password")
	aliceToken := env.login(t, aliceEmail, "password")
	bobToken := env.login(t, bobEmail, "password")

	rec := env.doJSON(t, http.MethodPost, "/contacts/", aliceToken, janeBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	contactID, _ := created["id"].(string)

	rec = env.doJSON(t, http.MethodGet, "/contacts/"+contactID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.doJSON(t, http.MethodPut, "/contacts/"+contactID, bobToken, map[string]string{"first_name": "Taken"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.doJSON(t, http.MethodDelete, "/contacts/"+contactID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/contacts/", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Empty(t, list)
}

func TestContactCreateRateLimited(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	env.register(t, "/users/", email, "password")
	access := env.login(t, email, "password")

	for i := 0; i < 5; i++ {
		rec := env.doJSON(t, http.MethodPost, "/contacts/", access, janeBody())
		require.Equal(t, http.StatusCreated, rec.Code, "create %d: %s", i+1, rec.Body.String())
	}
	rec := env.doJSON(t, http.MethodPost, "/contacts/", access, janeBody())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestVerifyEmail(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	env.register(t, "/register/", email, "password")

	verifyToken, err := env.signer.Issue(email, token.KindVerify)
	require.NoError(t, err)

	rec := env.doJSON(t, http.MethodGet, "/verify/"+verifyToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Email verified")

	access := env.login(t, email, "password")
	rec = env.doJSON(t, http.MethodGet, "/users/me/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, true, me["is_active"])
}

func TestVerifyEmailRejectsBadToken(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	rec := env.doJSON(t, http.MethodGet, "/verify/garbage", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Avatar upload deliberately performs no bearer check today; this pins the
// current behavior. See the TODO on AvatarHandler.Upload.
func TestAvatarUploadWithoutAuth(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	email := newTestEmail()
	user := env.register(t, "/users/", email, "password")
	userID, _ := user["id"].(string)
	require.NotEmpty(t, userID)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/users/%s/avatar", userID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "avatar_url")

	rec = env.doJSON(t, http.MethodPost, "/users/unknown-user/avatar", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAvatarUploadUnknownUser(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/does-not-exist/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "User not found")
}

func TestValidationFailures(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	rec := env.doJSON(t, http.MethodPost, "/register/", "", map[string]string{"email": "not-an-email", "password": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	email := newTestEmail()
	env.register(t, "/users/", email, "password")
	access := env.login(t, email, "password")

	body := janeBody()
	body["birthday"] = "01/01/1990"
	rec = env.doJSON(t, http.MethodPost, "/contacts/", access, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "birthday")
}
