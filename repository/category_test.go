package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTree(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	root, err := repo.Create(ctx, "backend", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "/backend", root.Path)

	child, err := repo.Create(ctx, "go", &root.ID, "/backend/go")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "frontend", nil, "")
	require.NoError(t, err)

	missing := uint(999)
	_, err = repo.Create(ctx, "orphan", &missing, "")
	assert.Equal(t, KindNotFound, KindOf(err))

	tree, err := repo.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "backend", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, child.ID, tree[0].Children[0].ID)
	assert.Empty(t, tree[1].Children)

	children, err := repo.Children(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	c, err := repo.Create(ctx, "misc", nil, "")
	require.NoError(t, err)

	_, err = repo.Update(ctx, c.ID, CategoryUpdate{ParentID: &c.ID})
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	name := "other"
	updated, err := repo.Update(ctx, c.ID, CategoryUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "other", updated.Name)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.Equal(t, KindNotFound, KindOf(repo.Delete(ctx, c.ID)))
}
