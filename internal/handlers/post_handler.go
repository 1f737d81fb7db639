package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/validators"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/:id/", h.GetPost)
	g.GET("/create/", h.CreateForm, middleware.LoginRequired())
	g.POST("/create/", h.CreatePost, middleware.LoginRequired())
	g.GET("/posts/:id/edit/", h.EditForm, middleware.LoginRequired())
	g.POST("/posts/:id/edit/", h.UpdatePost, middleware.LoginRequired())
}

// GetPost shows a post with its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.posts.Detail(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.Render(http.StatusOK, "post_detail.html", echo.Map{"Detail": detail})
}

func (h *PostHandler) CreateForm(c echo.Context) error {
	return h.renderForm(c, models.PostForm{}, 0, nil)
}

// CreatePost publishes a post and sends the author to their profile
func (h *PostHandler) CreatePost(c echo.Context) error {
	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, form, 0, validators.FieldErrors(err))
	}

	user := middleware.CurrentUser(c)
	_, err := h.posts.Create(c.Request().Context(), user.ID, postInput(c, form))
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return h.renderForm(c, form, 0, verr.Fields)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", user.Username))
}

// EditForm shows the edit form to the author; everyone else is sent back
// to the post.
func (h *PostHandler) EditForm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.posts.Editable(c.Request().Context(), middleware.UserID(c), id)
	if errors.Is(err, services.ErrForbidden) {
		return c.Redirect(http.StatusFound, detailURL(id))
	}
	if err != nil {
		return httpError(err)
	}

	form := models.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = *post.GroupID
	}
	return h.renderForm(c, form, id, nil)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	// authorship is checked before the form so strangers never see errors
	if _, err := h.posts.Editable(ctx, userID, id); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return c.Redirect(http.StatusFound, detailURL(id))
		}
		return httpError(err)
	}

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, form, id, validators.FieldErrors(err))
	}

	_, err = h.posts.Update(ctx, userID, id, postInput(c, form))
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return h.renderForm(c, form, id, verr.Fields)
	case errors.Is(err, services.ErrForbidden):
		return c.Redirect(http.StatusFound, detailURL(id))
	case err != nil:
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, detailURL(id))
}

// renderForm shows the create form, or the edit form when postID is set.
func (h *PostHandler) renderForm(c echo.Context, form models.PostForm, postID uint, errs map[string]string) error {
	groups, err := h.posts.Groups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "create_post.html", echo.Map{
		"Form":   form,
		"Groups": groups,
		"Errors": errs,
		"IsEdit": postID != 0,
		"PostID": postID,
	})
}

func postInput(c echo.Context, form models.PostForm) services.PostInput {
	in := services.PostInput{Text: form.Text, GroupID: form.Group}
	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		in.Image = fh
	} else if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		c.Logger().Debugf("read image upload: %v", err)
	}
	return in
}

func detailURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}
