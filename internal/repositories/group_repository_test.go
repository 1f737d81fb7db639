package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresGroupRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewPostgresGroupRepository(db)

	require.NoError(t, repo.UpsertGroup(ctx, &models.Group{Title: "Cats", Slug: "cats", Description: "v1"}))
	require.NoError(t, repo.UpsertGroup(ctx, &models.Group{Title: "Cats!", Slug: "cats", Description: "v2"}))
	require.NoError(t, repo.UpsertGroup(ctx, &models.Group{Title: "Birds", Slug: "birds"}))

	groups, err := repo.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Birds", groups[0].Title)

	cats, err := repo.GetGroupBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats!", cats.String())
	assert.Equal(t, "v2", cats.Description)

	_, err = repo.GetGroupBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
