package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/repositories"
)

// PostsPerPage is the size of every post listing.
const PostsPerPage = 10

// Page is one window of a post listing.
type Page struct {
	Posts []models.Post
	pagination.Page
}

// ProfilePage is an author's listing plus the viewer's relation to them.
type ProfilePage struct {
	Author         *models.User
	Following      bool
	PostCount      int64
	FollowerCount  int64
	FollowingCount int64
	Page
}

// FeedService resolves the post listings shown on the read-only pages.
type FeedService struct {
	posts   repositories.PostRepository
	groups  repositories.GroupRepository
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewFeedService(posts repositories.PostRepository, groups repositories.GroupRepository, users repositories.UserRepository, follows repositories.FollowRepository) *FeedService {
	return &FeedService{posts: posts, groups: groups, users: users, follows: follows}
}

// ListAll returns every post, newest first.
func (s *FeedService) ListAll(ctx context.Context, page int) (Page, error) {
	return s.list(ctx, repositories.PostFilter{}, page)
}

// ListByGroup returns the posts of the group with the given slug.
func (s *FeedService) ListByGroup(ctx context.Context, slug string, page int) (*models.Group, Page, error) {
	group, err := s.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, Page{}, lookupErr("group "+slug, err)
	}
	p, err := s.list(ctx, repositories.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		return nil, Page{}, err
	}
	return group, p, nil
}

// ListByAuthor returns an author's posts. viewerID is 0 for anonymous
// viewers, who never follow anyone.
func (s *FeedService) ListByAuthor(ctx context.Context, username string, viewerID uint, page int) (ProfilePage, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return ProfilePage{}, lookupErr("author "+username, err)
	}

	p, err := s.list(ctx, repositories.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return ProfilePage{}, err
	}
	out := ProfilePage{Author: author, PostCount: p.Total, Page: p}

	if viewerID != 0 {
		if out.Following, err = s.follows.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return ProfilePage{}, fmt.Errorf("check follow: %w", err)
		}
	}
	if out.FollowerCount, err = s.follows.GetFollowersCount(ctx, author.ID); err != nil {
		return ProfilePage{}, fmt.Errorf("count followers: %w", err)
	}
	if out.FollowingCount, err = s.follows.GetFollowingCount(ctx, author.ID); err != nil {
		return ProfilePage{}, fmt.Errorf("count following: %w", err)
	}
	return out, nil
}

// ListFollowFeed returns the posts of every author viewerID follows.
func (s *FeedService) ListFollowFeed(ctx context.Context, viewerID uint, page int) (Page, error) {
	if viewerID == 0 {
		return Page{}, ErrUnauthorized
	}
	return s.list(ctx, repositories.PostFilter{FollowerID: viewerID}, page)
}

// AllPageNumber clamps requested into the pages of the home listing.
func (s *FeedService) AllPageNumber(ctx context.Context, requested int) (int, error) {
	return s.pageNumber(ctx, repositories.PostFilter{}, requested)
}

// FollowFeedPageNumber clamps requested into the pages of viewerID's
// follow feed.
func (s *FeedService) FollowFeedPageNumber(ctx context.Context, viewerID uint, requested int) (int, error) {
	if viewerID == 0 {
		return 0, ErrUnauthorized
	}
	return s.pageNumber(ctx, repositories.PostFilter{FollowerID: viewerID}, requested)
}

func (s *FeedService) pageNumber(ctx context.Context, filter repositories.PostFilter, requested int) (int, error) {
	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return pagination.New(total, PostsPerPage, requested).Number, nil
}

func (s *FeedService) list(ctx context.Context, filter repositories.PostFilter, requested int) (Page, error) {
	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return Page{}, fmt.Errorf("count posts: %w", err)
	}
	pg := pagination.New(total, PostsPerPage, requested)

	posts, err := s.posts.ListPosts(ctx, filter, pg.Offset(), pg.Size)
	if err != nil {
		return Page{}, fmt.Errorf("list posts: %w", err)
	}
	return Page{Posts: posts, Page: pg}, nil
}

// lookupErr turns a repository miss into ErrNotFound.
func lookupErr(what string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
