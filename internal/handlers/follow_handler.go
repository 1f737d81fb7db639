package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/profile/:username/follow/", h.FollowUser, middleware.LoginRequired())
	g.GET("/profile/:username/unfollow/", h.UnfollowUser, middleware.LoginRequired())
}

// FollowUser follows the author and returns to their profile
func (h *FollowHandler) FollowUser(c echo.Context) error {
	username := c.Param("username")
	if err := h.follows.Follow(c.Request().Context(), middleware.UserID(c), username); err != nil {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", username))
}

// UnfollowUser unfollows the author and returns to the follow feed
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	if err := h.follows.Unfollow(c.Request().Context(), middleware.UserID(c), c.Param("username")); err != nil {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, "/follow/")
}
