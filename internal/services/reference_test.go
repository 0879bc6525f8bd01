package services

import (
	"testing"

	"github.com/localnerve/foodgram/data"
	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(views []IngredientView) []string {
	out := []string{}
	for _, v := range views {
		out = append(out, v.Name)
	}
	return out
}

func TestIngredientsPrefixAndSearch(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateIngredient(t, env.db, "sugar", "g")
	testhelpers.CreateIngredient(t, env.db, "salt", "g")
	testhelpers.CreateIngredient(t, env.db, "Sour cream", "g")
	testhelpers.CreateIngredient(t, env.db, "butter", "g")

	all, err := env.reference.Ingredients(env.ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	prefixed, err := env.reference.Ingredients(env.ctx, "s", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"salt", "Sour cream", "sugar"}, names(prefixed))

	searched, err := env.reference.Ingredients(env.ctx, "", "btr")
	require.NoError(t, err)
	assert.Equal(t, []string{"butter"}, names(searched))

	none, err := env.reference.Ingredients(env.ctx, "x", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTagsAndSeeds(t *testing.T) {
	env := newTestEnv(t)

	loaded, err := database.LoadTags(env.db, data.Tags)
	require.NoError(t, err)
	assert.Positive(t, loaded)
	again, err := database.LoadTags(env.db, data.Tags)
	require.NoError(t, err)
	assert.Zero(t, again)

	tags, err := env.reference.Tags(env.ctx)
	require.NoError(t, err)
	assert.Len(t, tags, int(loaded))

	tag, err := env.reference.Tag(env.ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tags[0], tag)

	_, err = env.reference.Tag(env.ctx, 9999)
	requireKind(t, err, types.KindNotFound, "tags.not_found")

	_, err = env.reference.Ingredient(env.ctx, 9999)
	requireKind(t, err, types.KindNotFound, "ingredients.not_found")
}
