package services_test

import (
	"testing"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/anonto42/yatube/pkg/storage"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	store  *cache.MemoryStore
	feed   *services.FeedService
	follow *services.FollowService
	posts  *services.PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := cache.NewMemoryStore()

	users := repositories.NewPostgresUserRepository(db)
	groups := repositories.NewPostgresGroupRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)

	return &fixture{
		db:     db,
		store:  store,
		feed:   services.NewFeedService(posts, groups, users, follows),
		follow: services.NewFollowService(users, follows, store),
		posts:  services.NewPostService(posts, groups, comments, storage.NewLocalStore(t.TempDir(), "/media/")),
	}
}
