//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Run with: MONGO_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/repositories/
func newMongoRepo(t *testing.T) (*repositories.MongoPostRepository, *gorm.DB) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("yatube_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	pg := testutil.NewDB(t)
	repo := repositories.NewMongoPostRepository(db, pg)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo, pg
}

func TestMongoPostRepository_CreateAndList(t *testing.T) {
	repo, pg := newMongoRepo(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, pg, "author")
	cats := testutil.CreateGroup(t, pg, "Cats", "cats")

	for i := 0; i < 13; i++ {
		post := &models.Post{Text: fmt.Sprintf("post %d", i), AuthorID: author.ID}
		if i%2 == 0 {
			post.GroupID = &cats.ID
		}
		require.NoError(t, repo.CreatePost(ctx, post))
		assert.EqualValues(t, i+1, post.ID, "ids are allocated in sequence")
	}

	total, err := repo.CountPosts(ctx, repositories.PostFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 13, total)

	first, err := repo.ListPosts(ctx, repositories.PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, "post 12", first[0].Text)
	assert.Equal(t, "author", first[0].Author.Username)
	require.NotNil(t, first[0].Group)
	assert.Equal(t, "Cats", first[0].Group.Title)

	grouped, err := repo.CountPosts(ctx, repositories.PostFilter{GroupID: cats.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 7, grouped)
}

func TestMongoPostRepository_GetAndUpdate(t *testing.T) {
	repo, pg := newMongoRepo(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, pg, "author")
	cats := testutil.CreateGroup(t, pg, "Cats", "cats")

	post := &models.Post{Text: "draft", AuthorID: author.ID, GroupID: &cats.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	post.Text = "final"
	post.GroupID = nil
	post.Image = "posts/a.gif"
	require.NoError(t, repo.UpdatePost(ctx, post))

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, "posts/a.gif", got.Image)

	_, err = repo.GetPostByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePost(ctx, &models.Post{ID: 999, Text: "x"}), repositories.ErrNotFound)
}

func TestMongoPostRepository_FollowFilter(t *testing.T) {
	repo, pg := newMongoRepo(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, pg, "reader")
	leo := testutil.CreateUser(t, pg, "leo")
	ann := testutil.CreateUser(t, pg, "ann")
	require.NoError(t, repo.CreatePost(ctx, &models.Post{Text: "by leo", AuthorID: leo.ID}))
	require.NoError(t, repo.CreatePost(ctx, &models.Post{Text: "by ann", AuthorID: ann.ID}))

	feed := repositories.PostFilter{FollowerID: reader.ID}
	n, err := repo.CountPosts(ctx, feed)
	require.NoError(t, err)
	assert.Zero(t, n, "following nobody means an empty feed")

	_, err = repositories.NewPostgresFollowRepository(pg).CreateFollow(ctx, reader.ID, leo.ID)
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx, feed, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "by leo", posts[0].Text)
}
