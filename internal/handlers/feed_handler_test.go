package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexIsCachedUntilCleared(t *testing.T) {
	app := newTestApp(t, nil)
	leo := testutil.CreateUser(t, app.db, "leo")
	testutil.CreatePost(t, app.db, leo, nil, "first post")
	cl := app.client(t)

	before := cl.get("/")
	require.Equal(t, http.StatusOK, before.Code)
	assert.Contains(t, before.Body.String(), "first post")

	testutil.CreatePost(t, app.db, leo, nil, "fresh post")
	stale := cl.get("/")
	assert.Equal(t, before.Body.String(), stale.Body.String())

	require.NoError(t, app.store.Clear(context.Background()))
	after := cl.get("/")
	assert.Contains(t, after.Body.String(), "fresh post")
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t, nil)
	leo := testutil.CreateUser(t, app.db, "leo")
	for i := 0; i < 13; i++ {
		testutil.CreatePost(t, app.db, leo, nil, fmt.Sprintf("post-%02d", i))
	}
	cl := app.client(t)

	first := cl.get("/").Body.String()
	assert.Contains(t, first, "post-12")
	assert.NotContains(t, first, "post-02")
	assert.Contains(t, first, "Page 1 of 2")

	second := cl.get("/?page=2").Body.String()
	assert.Contains(t, second, "post-02")
	assert.Contains(t, second, "post-00")
	assert.NotContains(t, second, "post-03")

	// out of range and garbage page numbers still render a page
	assert.Contains(t, cl.get("/?page=99").Body.String(), "post-00")
	assert.Contains(t, cl.get("/?page=abc").Body.String(), "post-12")
}

func TestOutOfRangePagesShareOneCacheEntry(t *testing.T) {
	app := newTestApp(t, nil)
	leo := testutil.CreateUser(t, app.db, "leo")
	for i := 0; i < 13; i++ {
		testutil.CreatePost(t, app.db, leo, nil, fmt.Sprintf("post-%02d", i))
	}
	cl := app.client(t)

	last := cl.get("/?page=2").Body.String()
	for n := 3; n < 200; n++ {
		rec := cl.get(fmt.Sprintf("/?page=%d", n))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, last, rec.Body.String())
	}
	cl.get("/?page=-5")
	cl.get("/?page=junk")

	assert.Equal(t, 2, app.store.Len(), "one entry per real page")
}

func TestGroupAndProfilePages(t *testing.T) {
	app := newTestApp(t, nil)
	leo := testutil.CreateUser(t, app.db, "leo")
	ann := testutil.CreateUser(t, app.db, "ann")
	cats := testutil.CreateGroup(t, app.db, "Cats", "cats")
	testutil.CreatePost(t, app.db, leo, cats, "whiskers")
	testutil.CreatePost(t, app.db, ann, nil, "no group here")
	cl := app.client(t)

	rec := cl.get("/group/cats/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "whiskers")
	assert.NotContains(t, rec.Body.String(), "no group here")

	rec = cl.get("/profile/ann/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Posts: 1")
	assert.Contains(t, rec.Body.String(), "no group here")
	assert.NotContains(t, rec.Body.String(), "/profile/ann/follow/", "anonymous viewers get no follow button")

	cl.login("leo")
	assert.Contains(t, cl.get("/profile/ann/").Body.String(), "/profile/ann/follow/")
	assert.NotContains(t, cl.get("/profile/leo/").Body.String(), "/profile/leo/follow/")
}

func TestMissingPagesRenderNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)

	for _, path := range []string{"/group/nope/", "/profile/nobody/", "/posts/999/", "/posts/abc/", "/no/such/page/"} {
		rec := cl.get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Page not found", path)
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.client(t).get("/group/cats?page=2")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/group/cats/?page=2", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.client(t).get("/health/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"yatube"}`, rec.Body.String())
}
