// recipes_test.go
//
// A recipe sharing backend: recipes, favorites, shopping lists and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram.
// foodgram is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"testing"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipeScenario(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, env.db, "sugar", "g")

	view, err := env.recipes.Create(env.ctx, ViewerOf(author), recipeInput(
		tagList(breakfast.ID),
		lines(flour.ID, 200, sugar.ID, 100),
	))
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, uint32(15), view.CookingTime)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, IngredientLineView{ID: flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200}, view.Ingredients[0])
	assert.Equal(t, IngredientLineView{ID: sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 100}, view.Ingredients[1])
	assert.Equal(t, []TagView{{ID: breakfast.ID, Name: "breakfast", Slug: "breakfast"}}, view.Tags)
	assert.Equal(t, author.ID, view.Author.ID)
	assert.False(t, view.Author.IsSubscribed)
	assert.Contains(t, view.Image, "http://localhost:3000/media/recipes/")

	assert.Equal(t, int64(2), count(t, env.db, &models.RecipeIngredient{}))
	assert.Equal(t, int64(1), countTable(t, env.db, "recipe_tags"))

	var stored models.Recipe
	require.NoError(t, env.db.Preload("ShortLink").First(&stored, view.ID).Error)
	require.NotNil(t, stored.ShortLink)
	assert.Equal(t, RecipePath(view.ID), stored.ShortLink.FullPath)

	anonymous, err := env.recipes.Get(env.ctx, Viewer{}, view.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
	assert.False(t, anonymous.IsInShoppingCart)
}

func TestCreateRecipeRequiresUser(t *testing.T) {
	env := newTestEnv(t)
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	_, err := env.recipes.Create(env.ctx, Viewer{}, recipeInput(tagList(tag.ID), lines(flour.ID, 1)))
	requireKind(t, err, types.KindUnauthenticated, "auth.required")
}

func TestCreateRecipeValidation(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	tests := []struct {
		name      string
		input     func() RecipeInput
		errorType string
	}{
		{"empty ingredients", func() RecipeInput {
			return recipeInput(tagList(tag.ID), lines())
		}, "recipes.validation.ingredients_empty"},
		{"missing ingredients", func() RecipeInput {
			return recipeInput(tagList(tag.ID), nil)
		}, "recipes.validation.ingredients_required"},
		{"duplicate ingredients", func() RecipeInput {
			return recipeInput(tagList(tag.ID), lines(flour.ID, 1, flour.ID, 2))
		}, "recipes.validation.ingredients_duplicate"},
		{"unknown ingredient", func() RecipeInput {
			return recipeInput(tagList(tag.ID), lines(flour.ID, 1, 999, 2))
		}, "recipes.validation.ingredients_not_found"},
		{"amount too small", func() RecipeInput {
			return recipeInput(tagList(tag.ID), lines(flour.ID, 0))
		}, "recipes.validation.amount_range"},
		{"amount too large", func() RecipeInput {
			return recipeInput(tagList(tag.ID), lines(flour.ID, 32001))
		}, "recipes.validation.amount_range"},
		{"empty tags", func() RecipeInput {
			return recipeInput(tagList(), lines(flour.ID, 1))
		}, "recipes.validation.tags_empty"},
		{"duplicate tags", func() RecipeInput {
			return recipeInput(tagList(tag.ID, tag.ID), lines(flour.ID, 1))
		}, "recipes.validation.tags_duplicate"},
		{"unknown tag", func() RecipeInput {
			return recipeInput(tagList(404), lines(flour.ID, 1))
		}, "recipes.validation.tags_not_found"},
		{"cooking time zero", func() RecipeInput {
			in := recipeInput(tagList(tag.ID), lines(flour.ID, 1))
			in.CookingTime = ptr(types.FlexUint64(0))
			return in
		}, "recipes.validation.cooking_time_range"},
		{"blank name", func() RecipeInput {
			in := recipeInput(tagList(tag.ID), lines(flour.ID, 1))
			in.Name = ptr("  ")
			return in
		}, "recipes.validation.name_required"},
		{"missing image", func() RecipeInput {
			in := recipeInput(tagList(tag.ID), lines(flour.ID, 1))
			in.Image = nil
			return in
		}, "recipes.validation.image_required"},
		{"bad image", func() RecipeInput {
			in := recipeInput(tagList(tag.ID), lines(flour.ID, 1))
			in.Image = ptr("data:text/plain;base64,aGVsbG8=")
			return in
		}, "recipes.validation.image_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := count(t, env.db, &models.Recipe{})
			_, err := env.recipes.Create(env.ctx, ViewerOf(author), tt.input())
			requireKind(t, err, types.KindValidation, tt.errorType)
			assert.Equal(t, before, count(t, env.db, &models.Recipe{}))
			assert.Zero(t, count(t, env.db, &models.RecipeIngredient{}))
			assert.Zero(t, count(t, env.db, &models.ShortLink{}))
		})
	}
}

func TestCreateRecipeReportsMissingIDs(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	_, err := env.recipes.Create(env.ctx, ViewerOf(author), recipeInput(tagList(tag.ID), lines(flour.ID, 1, 77, 1, 78, 1)))
	var ce *types.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []uint64{77, 78}, ce.Details["ids"])
}

func TestUpdateRecipeWithoutIngredientsKeepsLines(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "bread", []*models.Tag{tag}, testhelpers.Line{Ingredient: flour, Amount: 500})

	_, err := env.recipes.Update(env.ctx, ViewerOf(author), recipe.ID, RecipeInput{
		Tags: tagList(tag.ID),
		Name: ptr("Rye bread"),
	})
	requireKind(t, err, types.KindValidation, "recipes.validation.ingredients_required")

	var stored []models.RecipeIngredient
	require.NoError(t, env.db.Where("recipe_id = ?", recipe.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, uint32(500), stored[0].Amount)

	var names []string
	require.NoError(t, env.db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Pluck("name", &names).Error)
	assert.Equal(t, []string{"bread"}, names)
}

func TestUpdateRecipeReplacesLinesAndKeepsOmittedScalars(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	lunch := testhelpers.CreateTag(t, env.db, "lunch")
	dinner := testhelpers.CreateTag(t, env.db, "dinner")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	milk := testhelpers.CreateIngredient(t, env.db, "milk", "ml")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "bread", []*models.Tag{lunch}, testhelpers.Line{Ingredient: flour, Amount: 500})

	view, err := env.recipes.Update(env.ctx, ViewerOf(author), recipe.ID, RecipeInput{
		Tags:        tagList(dinner.ID),
		Ingredients: lines(milk.ID, 250),
	})
	require.NoError(t, err)

	assert.Equal(t, "bread", view.Name)
	assert.Equal(t, uint32(10), view.CookingTime)
	assert.Equal(t, []TagView{{ID: dinner.ID, Name: "dinner", Slug: "dinner"}}, view.Tags)
	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, milk.ID, view.Ingredients[0].ID)
	assert.Equal(t, int64(1), count(t, env.db, &models.RecipeIngredient{}))
}

func TestUpdateRecipePermissions(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	other := testhelpers.CreateUser(t, env.db, "bob")
	staff := testhelpers.CreateUser(t, env.db, "admin")
	require.NoError(t, env.db.Model(staff).Update("is_staff", true).Error)
	staff.IsStaff = true

	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "bread", []*models.Tag{tag}, testhelpers.Line{Ingredient: flour, Amount: 500})
	input := RecipeInput{Tags: tagList(tag.ID), Ingredients: lines(flour.ID, 300)}

	_, err := env.recipes.Update(env.ctx, ViewerOf(other), recipe.ID, input)
	requireKind(t, err, types.KindForbidden, "recipes.forbidden")

	_, err = env.recipes.Update(env.ctx, ViewerOf(staff), recipe.ID, input)
	require.NoError(t, err)

	_, err = env.recipes.Update(env.ctx, ViewerOf(author), 9999, input)
	requireKind(t, err, types.KindNotFound, "recipes.not_found")
}

func TestDeleteRecipeRemovesReferences(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	fan := testhelpers.CreateUser(t, env.db, "bob")
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	view, err := env.recipes.Create(env.ctx, ViewerOf(author), recipeInput(tagList(tag.ID), lines(flour.ID, 100)))
	require.NoError(t, err)
	recipe := &models.Recipe{ID: view.ID}
	testhelpers.AddFavorite(t, env.db, fan, recipe)
	testhelpers.AddToCart(t, env.db, fan, recipe)

	err = env.recipes.Delete(env.ctx, ViewerOf(fan), view.ID)
	requireKind(t, err, types.KindForbidden, "recipes.forbidden")

	require.NoError(t, env.recipes.Delete(env.ctx, ViewerOf(author), view.ID))
	assert.Zero(t, count(t, env.db, &models.Recipe{}))
	assert.Zero(t, count(t, env.db, &models.RecipeIngredient{}))
	assert.Zero(t, count(t, env.db, &models.Favorite{}))
	assert.Zero(t, count(t, env.db, &models.ShoppingCartEntry{}))
	assert.Zero(t, count(t, env.db, &models.ShortLink{}))
	assert.Zero(t, countTable(t, env.db, "recipe_tags"))

	_, err = env.recipes.Get(env.ctx, Viewer{}, view.ID)
	requireKind(t, err, types.KindNotFound, "recipes.not_found")
}

func TestListRecipesFlagsAndFilters(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast")
	lunch := testhelpers.CreateTag(t, env.db, "lunch")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	both := testhelpers.CreateRecipe(t, env.db, alice, "both", []*models.Tag{breakfast, lunch}, testhelpers.Line{Ingredient: flour, Amount: 1})
	morning := testhelpers.CreateRecipe(t, env.db, bob, "morning", []*models.Tag{breakfast}, testhelpers.Line{Ingredient: flour, Amount: 1})
	plain := testhelpers.CreateRecipe(t, env.db, bob, "plain", nil, testhelpers.Line{Ingredient: flour, Amount: 1})

	testhelpers.AddFavorite(t, env.db, alice, morning)
	testhelpers.AddToCart(t, env.db, alice, plain)
	testhelpers.Subscribe(t, env.db, alice, bob)

	page := PageRequest{}.Normalize(6)
	ids := func(p Page[RecipeView]) []uint64 {
		out := []uint64{}
		for _, r := range p.Results {
			out = append(out, r.ID)
		}
		return out
	}

	t.Run("anonymous sees no flags", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, Viewer{}, RecipeFilter{}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.Count)
		assert.Equal(t, []uint64{plain.ID, morning.ID, both.ID}, ids(p))
		for _, r := range p.Results {
			assert.False(t, r.IsFavorited)
			assert.False(t, r.IsInShoppingCart)
			assert.False(t, r.Author.IsSubscribed)
		}
	})

	t.Run("anonymous boolean filters are ignored", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, Viewer{}, RecipeFilter{IsFavorited: ptr(true)}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.Count)
	})

	t.Run("viewer flags", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, ViewerOf(alice), RecipeFilter{}, page)
		require.NoError(t, err)
		byID := map[uint64]RecipeView{}
		for _, r := range p.Results {
			byID[r.ID] = r
		}
		assert.True(t, byID[morning.ID].IsFavorited)
		assert.False(t, byID[morning.ID].IsInShoppingCart)
		assert.True(t, byID[plain.ID].IsInShoppingCart)
		assert.True(t, byID[plain.ID].Author.IsSubscribed)
		assert.False(t, byID[both.ID].Author.IsSubscribed)
	})

	t.Run("tags use OR without duplicates", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, Viewer{}, RecipeFilter{TagSlugs: []string{"breakfast", "lunch"}}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(2), p.Count)
		assert.Equal(t, []uint64{morning.ID, both.ID}, ids(p))
	})

	t.Run("author", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, Viewer{}, RecipeFilter{AuthorID: ptr(bob.ID)}, page)
		require.NoError(t, err)
		assert.Equal(t, []uint64{plain.ID, morning.ID}, ids(p))
	})

	t.Run("favorited and not in cart", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, ViewerOf(alice), RecipeFilter{IsFavorited: ptr(true)}, page)
		require.NoError(t, err)
		assert.Equal(t, []uint64{morning.ID}, ids(p))

		p, err = env.recipes.List(env.ctx, ViewerOf(alice), RecipeFilter{IsInShoppingCart: ptr(false)}, page)
		require.NoError(t, err)
		assert.Equal(t, []uint64{morning.ID, both.ID}, ids(p))
	})

	t.Run("pagination", func(t *testing.T) {
		p, err := env.recipes.List(env.ctx, Viewer{}, RecipeFilter{}, PageRequest{Page: 2, Limit: 2}.Normalize(6))
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.Count)
		assert.Equal(t, []uint64{both.ID}, ids(p))
		assert.False(t, p.HasNext())
		assert.True(t, p.HasPrevious())
	})
}

func TestRecipeShortLink(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "bread", nil)

	code, err := env.recipes.ShortLink(env.ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	again, err := env.recipes.ShortLink(env.ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)
	assert.Equal(t, int64(1), count(t, env.db, &models.ShortLink{}))

	_, err = env.recipes.ShortLink(env.ctx, 9999)
	requireKind(t, err, types.KindNotFound, "recipes.not_found")
}
