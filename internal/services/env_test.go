package services

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/foodgram/internal/render"
	"github.com/localnerve/foodgram/internal/storage"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx           context.Context
	db            *gorm.DB
	media         *storage.Local
	composer      *Composer
	links         *ShortLinks
	recipes       *RecipeService
	relations     *RelationService
	subscriptions *SubscriptionService
	shopping      *ShoppingListService
	users         *UserService
	auth          *AuthService
	reference     *ReferenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	media, err := storage.NewLocal(t.TempDir(), "http://localhost:3000/media")
	require.NoError(t, err)
	links, err := NewShortLinks(db, 16)
	require.NoError(t, err)

	composer := NewComposer(db, media)
	return &testEnv{
		ctx:           context.Background(),
		db:            db,
		media:         media,
		composer:      composer,
		links:         links,
		recipes:       NewRecipeService(db, media, links, composer),
		relations:     NewRelationService(db, composer),
		subscriptions: NewSubscriptionService(db, composer),
		shopping:      NewShoppingListService(db, render.Text{}, "txt"),
		users:         NewUserService(db, media, composer),
		auth:          NewAuthService(db, "test-secret", time.Hour),
		reference:     NewReferenceService(db),
	}
}

// insertBeforeCreate commits query right before the next insert into table
// opens its transaction, so the insert meets a row its pre-check missed.
func insertBeforeCreate(t *testing.T, db *gorm.DB, table, query string, args ...interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:begin_transaction").Register("test:insert_before_create", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, query, args...); err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.True(t, fired, "no insert into %s was intercepted", table)
	})
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func countTable(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, kind types.Kind, errorType string) {
	t.Helper()
	require.Error(t, err)
	var ce *types.CustomError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, kind, ce.Kind, ce.Message)
	if errorType != "" {
		require.Equal(t, errorType, ce.Type)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func tagList(ids ...uint64) *types.FlexList[types.FlexUint64] {
	list := types.FlexList[types.FlexUint64]{}
	for _, id := range ids {
		list = append(list, types.FlexUint64(id))
	}
	return &list
}

func lines(pairs ...uint64) *[]IngredientAmount {
	out := []IngredientAmount{}
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, IngredientAmount{ID: types.FlexUint64(pairs[i]), Amount: types.FlexUint64(pairs[i+1])})
	}
	return &out
}

func recipeInput(tags *types.FlexList[types.FlexUint64], ingredients *[]IngredientAmount) RecipeInput {
	return RecipeInput{
		Tags:        tags,
		Ingredients: ingredients,
		Image:       ptr(testhelpers.PNGDataURI),
		Name:        ptr("Pancakes"),
		Text:        ptr("Mix and fry."),
		CookingTime: ptr(types.FlexUint64(15)),
	}
}
