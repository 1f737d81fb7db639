// Package cache holds the shared page-fragment cache.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a key-value store with per-entry expiry.
type Store interface {
	// Get reports ok=false for a missing or expired key.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

const (
	indexPagePrefix   = "index_page:"
	followPostsPrefix = "follow_posts:"
)

// IndexPageKey names the home listing fragment for one page number.
func IndexPageKey(page int) string {
	return fmt.Sprintf("%s%d", indexPagePrefix, page)
}

// FollowPostsKey names the follow-feed fragment of one reader.
func FollowPostsKey(userID uint, page int) string {
	return fmt.Sprintf("%s%d:%d", followPostsPrefix, userID, page)
}

// FollowPostsPrefix covers the follow-feed fragments of every reader.
func FollowPostsPrefix() string {
	return followPostsPrefix
}
