package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olekhv/contactbook/internal/middleware"
)

type RouterDeps struct {
	Auth     *AuthHandler
	Contacts *ContactHandler
	Avatar   *AvatarHandler
	Resolver middleware.UserResolver
	// ContactCreatePerMinute caps POST /contacts/ per caller.
	ContactCreatePerMinute int
}

// RegisterRoutes wires the public HTTP surface. Paths, trailing slashes
// included, match the published API contract.
func RegisterRoutes(r gin.IRouter, deps RouterDeps) {
	r.POST("/register/", deps.Auth.Register)
	r.POST("/users/", deps.Auth.CreateUser)
	r.POST("/token", deps.Auth.Token)
	r.GET("/verify/:token", deps.Auth.Verify)
	r.POST("/users/:id/avatar", deps.Avatar.Upload)
	r.GET("/files/:key", deps.Avatar.GetFile)

	authed := r.Group("", middleware.BearerAuth(deps.Resolver))
	authed.GET("/users/me/", deps.Auth.Me)
	authed.POST("/contacts/", middleware.RateLimit(deps.ContactCreatePerMinute, time.Minute), deps.Contacts.Create)
	authed.GET("/contacts/", deps.Contacts.List)
	authed.GET("/contacts/:id", deps.Contacts.Get)
	authed.PUT("/contacts/:id", deps.Contacts.Update)
	authed.DELETE("/contacts/:id", deps.Contacts.Delete)
}
