package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
	"github.com/olekhv/contactbook/internal/pkg/response"
	"github.com/olekhv/contactbook/internal/service"
)

const birthdayLayout = "2006-01-02"

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type createContactRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneNumber    string `json:"phone_number" binding:"required"`
	Birthday       string `json:"birthday" binding:"required"`
	AdditionalInfo string `json:"additional_info"`
}

type updateContactRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	PhoneNumber    *string `json:"phone_number"`
	Birthday       *string `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if _, err := time.Parse(birthdayLayout, req.Birthday); err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "birthday must be YYYY-MM-DD")
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), getUserID(c), service.ContactCreateInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       req.Birthday,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		if appErr.IsConflict(err) {
			response.Detail(c, http.StatusConflict, "Email already in use")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, contact)
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.contacts.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		h.notFoundOr(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Birthday != nil && *req.Birthday != "" {
		if _, err := time.Parse(birthdayLayout, *req.Birthday); err != nil {
			response.Detail(c, http.StatusUnprocessableEntity, "birthday must be YYYY-MM-DD")
			return
		}
	}
	contact, err := h.contacts.Update(c.Request.Context(), getUserID(c), c.Param("id"), service.ContactPatch{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       req.Birthday,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		if appErr.IsConflict(err) {
			response.Detail(c, http.StatusConflict, "Email already in use")
			return
		}
		h.notFoundOr(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		h.notFoundOr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// notFoundOr collapses "no such contact" and "someone else's contact" into
// one answer.
func (h *ContactHandler) notFoundOr(c *gin.Context, err error) {
	if appErr.IsNotFound(err) {
		response.Detail(c, http.StatusNotFound, "Contact not found")
		return
	}
	handleError(c, err)
}
