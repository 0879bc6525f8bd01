package services

import (
	"strings"
	"testing"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListIsolatedBetweenCarts(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	carol := testhelpers.CreateUser(t, env.db, "carol")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, env.db, "sugar", "g")

	pancakes := testhelpers.CreateRecipe(t, env.db, alice, "pancakes", nil,
		testhelpers.Line{Ingredient: flour, Amount: 200},
		testhelpers.Line{Ingredient: sugar, Amount: 100},
	)
	bread := testhelpers.CreateRecipe(t, env.db, carol, "bread", nil,
		testhelpers.Line{Ingredient: flour, Amount: 300},
	)
	testhelpers.AddToCart(t, env.db, bob, pancakes)
	testhelpers.AddToCart(t, env.db, carol, bread)

	items, err := env.shopping.Build(env.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 200},
		{Name: "sugar", MeasurementUnit: "g", Amount: 100},
	}, items)

	items, err = env.shopping.Build(env.ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{{Name: "flour", MeasurementUnit: "g", Amount: 300}}, items)
}

func TestShoppingListIsAdditive(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	flourKg := testhelpers.CreateIngredient(t, env.db, "flour (bulk)", "kg")
	eggs := testhelpers.CreateIngredient(t, env.db, "eggs", "pcs")

	first := testhelpers.CreateRecipe(t, env.db, alice, "first", nil,
		testhelpers.Line{Ingredient: flour, Amount: 32000},
		testhelpers.Line{Ingredient: eggs, Amount: 2},
	)
	second := testhelpers.CreateRecipe(t, env.db, alice, "second", nil,
		testhelpers.Line{Ingredient: flour, Amount: 32000},
		testhelpers.Line{Ingredient: flourKg, Amount: 1},
	)

	testhelpers.AddToCart(t, env.db, alice, second)
	before, err := env.shopping.Build(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 32000},
		{Name: "flour (bulk)", MeasurementUnit: "kg", Amount: 1},
	}, before)

	testhelpers.AddToCart(t, env.db, alice, first)
	after, err := env.shopping.Build(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "flour", MeasurementUnit: "g", Amount: 64000},
		{Name: "flour (bulk)", MeasurementUnit: "kg", Amount: 1},
	}, after)
}

func TestShoppingListEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	items, err := env.shopping.Build(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestShoppingListDownload(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, alice, "bread", nil, testhelpers.Line{Ingredient: flour, Amount: 500})
	testhelpers.AddToCart(t, env.db, alice, recipe)

	doc, err := env.shopping.Download(env.ctx, ViewerOf(alice))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.ContentType, "text/plain"))
	assert.Contains(t, string(doc.Data), "flour (g): 500")

	_, err = env.shopping.Download(env.ctx, Viewer{})
	requireKind(t, err, types.KindUnauthenticated, "auth.required")
}

func TestShoppingListIgnoresCartOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, env.db, "sugar", "g")
	milk := testhelpers.CreateIngredient(t, env.db, "milk", "ml")

	pancakes := testhelpers.CreateRecipe(t, env.db, alice, "pancakes", nil,
		testhelpers.Line{Ingredient: flour, Amount: 200},
		testhelpers.Line{Ingredient: milk, Amount: 300},
	)
	cake := testhelpers.CreateRecipe(t, env.db, alice, "cake", nil,
		testhelpers.Line{Ingredient: sugar, Amount: 150},
		testhelpers.Line{Ingredient: flour, Amount: 250},
	)
	bread := testhelpers.CreateRecipe(t, env.db, alice, "bread", nil,
		testhelpers.Line{Ingredient: flour, Amount: 500},
	)

	for _, r := range []*models.Recipe{pancakes, cake, bread} {
		testhelpers.AddToCart(t, env.db, alice, r)
	}
	for _, r := range []*models.Recipe{bread, cake, pancakes} {
		testhelpers.AddToCart(t, env.db, bob, r)
	}

	forward, err := env.shopping.Build(env.ctx, alice.ID)
	require.NoError(t, err)
	reverse, err := env.shopping.Build(env.ctx, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, []models.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 950},
		{Name: "milk", MeasurementUnit: "ml", Amount: 300},
		{Name: "sugar", MeasurementUnit: "g", Amount: 150},
	}, forward)
	assert.Equal(t, forward, reverse)
}
