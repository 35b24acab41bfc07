package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
	"github.com/olekhv/contactbook/internal/pkg/response"
	"github.com/olekhv/contactbook/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Register creates an inactive account and queues the verification mail.
func (h *AuthHandler) Register(c *gin.Context) {
	h.register(c, false)
}

// CreateUser is the legacy companion of Register that activates the account
// immediately and skips verification.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	h.register(c, true)
}

func (h *AuthHandler) register(c *gin.Context, activate bool) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, activate)
	if err != nil {
		if appErr.IsConflict(err) {
			response.Detail(c, http.StatusConflict, "Email already registered")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		IsActive: user.IsActive,
	})
}

// Token handles the form-encoded login and returns the bearer token pair.
func (h *AuthHandler) Token(c *gin.Context) {
	username := c.PostForm("username")
	pass := c.PostForm("password")
	if username == "" || pass == "" {
		response.Detail(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}
	access, refresh, err := h.auth.Login(c.Request.Context(), username, pass)
	if err != nil {
		if appErr.IsUnauthorized(err) {
			c.Header("WWW-Authenticate", "Bearer")
			response.Detail(c, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), getUserID(c))
	if err != nil {
		if appErr.IsNotFound(err) {
			response.Detail(c, http.StatusNotFound, "User not found")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
	})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	err := h.auth.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		if appErr.IsNotFound(err) {
			response.Detail(c, http.StatusNotFound, "User not found")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Email verified"})
}
