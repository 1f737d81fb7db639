package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comment/", h.AddComment, middleware.LoginRequired())
}

// AddComment always lands back on the post; an empty comment is dropped.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var form models.CommentForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	_, err = h.posts.AddComment(c.Request().Context(), middleware.UserID(c), id, form.Text)
	var verr *services.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, detailURL(id))
}
