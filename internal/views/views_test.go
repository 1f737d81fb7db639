package views

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(func(key string) string { return "/media/" + key })
	require.NoError(t, err)
	return r
}

func TestFragment_Listing(t *testing.T) {
	r := newRenderer(t)
	group := &models.Group{Title: "Cats", Slug: "cats"}
	page := services.Page{
		Posts: []models.Post{{
			ID:      7,
			Text:    "<b>hello</b>",
			PubDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Author:  models.User{Username: "leo"},
			Group:   group,
			Image:   "posts/a.gif",
		}},
		Page: pagination.New(11, services.PostsPerPage, 1),
	}

	out, err := r.Fragment("listing", map[string]interface{}{"Page": page})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `href="/profile/leo/"`)
	assert.Contains(t, html, `href="/group/cats/"`)
	assert.Contains(t, html, `src="/media/posts/a.gif"`)
	assert.Contains(t, html, "&lt;b&gt;hello&lt;/b&gt;", "post text is escaped")
	assert.Contains(t, html, "1 March 2024")
	assert.Contains(t, html, "Page 1 of 2")
	assert.Contains(t, html, `href="?page=2"`)
}

func TestRender_PageWithViewer(t *testing.T) {
	r := newRenderer(t)
	e := echo.New()
	c := e.NewContext(nil, nil)
	c.Set(ViewerKey, &models.User{ID: 1, Username: "leo"})

	var buf bytes.Buffer
	err := r.Render(&buf, "index.html", echo.Map{"Listing": template.HTML("<p>listing</p>")}, c)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>listing</p>")
	assert.Contains(t, buf.String(), `href="/profile/leo/"`)
	assert.Contains(t, buf.String(), "Log out")

	buf.Reset()
	err = r.Render(&buf, "index.html", echo.Map{"Listing": template.HTML("")}, e.NewContext(nil, nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Log in")
}

func TestRender_UnknownPage(t *testing.T) {
	r := newRenderer(t)
	err := r.Render(&bytes.Buffer{}, "missing.html", nil, nil)
	assert.Error(t, err)
}
