package services

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/repositories"
)

// FollowService adds and removes follow edges and drops the follow-feed
// fragments they affect.
type FollowService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	cache   cache.Store
}

func NewFollowService(users repositories.UserRepository, follows repositories.FollowRepository, store cache.Store) *FollowService {
	return &FollowService{users: users, follows: follows, cache: store}
}

// Follow makes userID follow the named author. Following yourself is a
// no-op and following twice keeps a single edge.
func (s *FollowService) Follow(ctx context.Context, userID uint, authorUsername string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	author, err := s.users.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return lookupErr("author "+authorUsername, err)
	}
	if author.ID == userID {
		return nil
	}

	created, err := s.follows.CreateFollow(ctx, userID, author.ID)
	if err != nil {
		return fmt.Errorf("follow %s: %w", authorUsername, err)
	}
	if created {
		metrics.FollowChanges.WithLabelValues("follow").Inc()
	}
	s.invalidate(ctx)
	return nil
}

// Unfollow removes the edge if there is one.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, authorUsername string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	author, err := s.users.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return lookupErr("author "+authorUsername, err)
	}

	removed, err := s.follows.DeleteFollow(ctx, userID, author.ID)
	if err != nil {
		return fmt.Errorf("unfollow %s: %w", authorUsername, err)
	}
	if removed {
		metrics.FollowChanges.WithLabelValues("unfollow").Inc()
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops every reader's follow feed. The next render of any
// follow-feed page recomputes from the database.
func (s *FollowService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cache.FollowPostsPrefix()); err != nil {
		log.Printf("invalidate follow feed: %v", err)
	}
}
