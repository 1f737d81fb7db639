package handlers

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the post listings. The home listing and the follow
// feed are cached as rendered fragments for ttl.
type FeedHandler struct {
	feed  *services.FeedService
	cache cache.Store
	ttl   time.Duration
	views fragmentRenderer
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService, store cache.Store, ttl time.Duration, views fragmentRenderer) *FeedHandler {
	return &FeedHandler{feed: feed, cache: store, ttl: ttl, views: views}
}

// RegisterFeedRoutes registers the listing pages
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/", h.Index)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/profile/:username/", h.Profile)
	g.GET("/follow/", h.FollowIndex, middleware.LoginRequired())
}

// Index shows every post. Within the cache window a new post may not show
// up yet. Fragments are keyed by the clamped page so out-of-range numbers
// share the last page's entry.
func (h *FeedHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	number, err := h.feed.AllPageNumber(ctx, pagination.ParseNumber(c.QueryParam("page")))
	if err != nil {
		return err
	}

	listing, err := cache.Fragment(ctx, h.cache, cache.IndexPageKey(number), h.ttl, func() ([]byte, error) {
		page, err := h.feed.ListAll(ctx, number)
		if err != nil {
			return nil, err
		}
		return h.listing(page)
	})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index.html", echo.Map{"Listing": template.HTML(listing)})
}

func (h *FeedHandler) GroupPosts(c echo.Context) error {
	group, page, err := h.feed.ListByGroup(c.Request().Context(), c.Param("slug"), pagination.ParseNumber(c.QueryParam("page")))
	if err != nil {
		return httpError(err)
	}
	listing, err := h.listing(page)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "group_list.html", echo.Map{
		"Group":   group,
		"Listing": template.HTML(listing),
	})
}

func (h *FeedHandler) Profile(c echo.Context) error {
	profile, err := h.feed.ListByAuthor(c.Request().Context(), c.Param("username"), middleware.UserID(c), pagination.ParseNumber(c.QueryParam("page")))
	if err != nil {
		return httpError(err)
	}
	listing, err := h.listing(profile.Page)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "profile.html", echo.Map{
		"Profile": profile,
		"Listing": template.HTML(listing),
	})
}

// FollowIndex shows the posts of the authors the viewer follows. The
// fragment is cached per viewer and dropped on every follow change.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	ctx := c.Request().Context()
	viewerID := middleware.UserID(c)
	number, err := h.feed.FollowFeedPageNumber(ctx, viewerID, pagination.ParseNumber(c.QueryParam("page")))
	if err != nil {
		return httpError(err)
	}

	listing, err := h.followListing(ctx, viewerID, number)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "follow.html", echo.Map{"Listing": template.HTML(listing)})
}

func (h *FeedHandler) followListing(ctx context.Context, viewerID uint, number int) ([]byte, error) {
	return cache.Fragment(ctx, h.cache, cache.FollowPostsKey(viewerID, number), h.ttl, func() ([]byte, error) {
		page, err := h.feed.ListFollowFeed(ctx, viewerID, number)
		if err != nil {
			return nil, err
		}
		return h.listing(page)
	})
}

func (h *FeedHandler) listing(page services.Page) ([]byte, error) {
	return h.views.Fragment("listing", echo.Map{"Page": page})
}
