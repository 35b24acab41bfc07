package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
	"github.com/olekhv/contactbook/internal/pkg/response"
	"github.com/olekhv/contactbook/internal/service"
)

type AvatarHandler struct {
	avatars *service.AvatarService
}

func NewAvatarHandler(avatars *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// Upload replaces the avatar of the user in the path.
// TODO: require a bearer token and check the caller is the target user; any
// client can currently overwrite any avatar.
func (h *AvatarHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "failed to open file")
		return
	}
	defer opened.Close()

	avatarURL, err := h.avatars.UpdateAvatar(c.Request.Context(), c.Param("id"), opened, file.Size, file.Filename, requestBaseURL(c))
	if err != nil {
		if appErr.IsNotFound(err) {
			response.Detail(c, http.StatusNotFound, "User not found")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"avatar_url": avatarURL})
}

// GetFile serves locally stored avatars; object-store backends expose their
// own public URLs instead.
func (h *AvatarHandler) GetFile(c *gin.Context) {
	if h.avatars.StoreType() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.avatars.OpenFile(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = file.Seek(0, io.SeekStart)
	_, _ = io.Copy(c.Writer, file)
}
