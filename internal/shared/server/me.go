package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// identity is what /me reports about the caller.
type identity struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		id := identity{
			UserID:  middleware.UserIDFromContext(c),
			IsGuest: middleware.IsGuest(c),
			Email:   middleware.UserEmailFromContext(c),
			Name:    middleware.UserNameFromContext(c),
		}
		if id.UserID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		respond.OK(c, id)
	})
}
