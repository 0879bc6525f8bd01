package services

import (
	"testing"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinkResolveCountsVisits(t *testing.T) {
	env := newTestEnv(t)

	link, err := env.links.Create(env.db, RecipePath(7))
	require.NoError(t, err)
	assert.Len(t, link.Code, shortCodeLength)

	reused, err := env.links.Create(env.db, RecipePath(7))
	require.NoError(t, err)
	assert.Equal(t, link.Code, reused.Code)

	for range 3 {
		path, err := env.links.Resolve(env.ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, "/recipes/7/", path)
	}

	var stored models.ShortLink
	require.NoError(t, env.db.First(&stored, link.ID).Error)
	assert.Equal(t, uint64(3), stored.UsageCount)
}

func TestShortLinkUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.links.Resolve(env.ctx, "missing")
	requireKind(t, err, types.KindNotFound, "shortlinks.not_found")
}

func TestShortLinkEvictedAfterRecipeDelete(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "bread", nil)

	code, err := env.recipes.ShortLink(env.ctx, recipe.ID)
	require.NoError(t, err)
	_, err = env.links.Resolve(env.ctx, code)
	require.NoError(t, err)

	require.NoError(t, env.recipes.Delete(env.ctx, ViewerOf(author), recipe.ID))
	_, err = env.links.Resolve(env.ctx, code)
	requireKind(t, err, types.KindNotFound, "shortlinks.not_found")
}

func TestShortCodesAreBase62(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		code := newShortCode()
		require.Len(t, code, shortCodeLength)
		for _, ch := range code {
			assert.Contains(t, base62, string(ch))
		}
		seen[code] = true
	}
	assert.Len(t, seen, 100)
}
