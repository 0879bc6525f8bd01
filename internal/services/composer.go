// composer.go
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
	"context"
	"fmt"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/storage"
	"gorm.io/gorm"
)

// Composer turns entities into viewer-specific views. Viewer flags are
// existence checks scoped to the viewer and computed once per batch.
type Composer struct {
	DB    *gorm.DB
	Media storage.Storage
}

// NewComposer creates a Composer.
func NewComposer(db *gorm.DB, media storage.Storage) *Composer {
	return &Composer{DB: db, Media: media}
}

func (c *Composer) imageURL(image models.JSON[models.ImageRef]) string {
	if !image.Valid {
		return ""
	}
	return c.Media.URL(image.Data().Key)
}

func (c *Composer) avatarURL(user *models.User) *string {
	if !user.Avatar.Valid {
		return nil
	}
	url := c.imageURL(user.Avatar)
	return &url
}

// relatedIDs returns the subset of ids that the viewer is related to through
// table.column, e.g. the recipes among ids the viewer has favorited.
func (c *Composer) relatedIDs(ctx context.Context, viewer Viewer, table, column string, ids []uint64) (map[uint64]bool, error) {
	found := make(map[uint64]bool)
	if !viewer.Authenticated() || len(ids) == 0 {
		return found, nil
	}

	var matched []uint64
	err := c.DB.WithContext(ctx).
		Table(table).
		Where("user_id = ?", viewer.UserID).
		Where(column+" IN ?", ids).
		Pluck(column, &matched).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s for viewer: %w", table, err)
	}
	for _, id := range matched {
		found[id] = true
	}
	return found, nil
}

func (c *Composer) userView(user *models.User, subscribed map[uint64]bool) UserView {
	return UserView{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed[user.ID],
		Avatar:       c.avatarURL(user),
	}
}

// UserViews composes users for the viewer. A viewer is never subscribed to themselves.
func (c *Composer) UserViews(ctx context.Context, viewer Viewer, users []models.User) ([]UserView, error) {
	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		if u.ID != viewer.UserID {
			ids = append(ids, u.ID)
		}
	}
	subscribed, err := c.relatedIDs(ctx, viewer, "subscriptions", "author_id", ids)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, c.userView(&users[i], subscribed))
	}
	return views, nil
}

// UserView composes a single user.
func (c *Composer) UserView(ctx context.Context, viewer Viewer, user *models.User) (UserView, error) {
	views, err := c.UserViews(ctx, viewer, []models.User{*user})
	if err != nil {
		return UserView{}, err
	}
	return views[0], nil
}

// RecipeViews composes recipes loaded with Author, Tags and Lines.Ingredient.
func (c *Composer) RecipeViews(ctx context.Context, viewer Viewer, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]uint64, 0, len(recipes))
	authorIDs := make([]uint64, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		if r.AuthorID != viewer.UserID {
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	favorited, err := c.relatedIDs(ctx, viewer, "favorites", "recipe_id", recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := c.relatedIDs(ctx, viewer, "shopping_cart", "recipe_id", recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := c.relatedIDs(ctx, viewer, "subscriptions", "author_id", authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]

		tags := make([]TagView, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, TagView{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}

		lines := make([]IngredientLineView, 0, len(r.Lines))
		for _, l := range r.Lines {
			lines = append(lines, IngredientLineView{
				ID:              l.Ingredient.ID,
				Name:            l.Ingredient.Name,
				MeasurementUnit: l.Ingredient.MeasurementUnit,
				Amount:          l.Amount,
			})
		}

		views = append(views, RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           c.userView(&r.Author, subscribed),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            c.imageURL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return views, nil
}

// Compose composes a single recipe for the viewer.
func (c *Composer) Compose(ctx context.Context, viewer Viewer, recipe *models.Recipe) (RecipeView, error) {
	views, err := c.RecipeViews(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return RecipeView{}, err
	}
	return views[0], nil
}

// ShortView composes the compact recipe view. It carries no viewer state.
func (c *Composer) ShortView(recipe *models.Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       c.imageURL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// SubscriptionViews composes followed authors. Each author's recipe list is
// capped to recipesLimit (0 for all) while RecipesCount is the true total.
func (c *Composer) SubscriptionViews(ctx context.Context, viewer Viewer, authors []models.User, recipesLimit int) ([]SubscriptionView, error) {
	userViews, err := c.UserViews(ctx, viewer, authors)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint64, 0, len(authors))
	for _, a := range authors {
		authorIDs = append(authorIDs, a.ID)
	}

	var recipes []models.Recipe
	if len(authorIDs) > 0 {
		err = c.DB.WithContext(ctx).
			Where("author_id IN ?", authorIDs).
			Order("pub_date DESC, id DESC").
			Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load author recipes: %w", err)
		}
	}

	byAuthor := make(map[uint64][]RecipeShortView, len(authors))
	counts := make(map[uint64]int64, len(authors))
	for i := range recipes {
		r := &recipes[i]
		counts[r.AuthorID]++
		if recipesLimit > 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], c.ShortView(r))
	}

	views := make([]SubscriptionView, 0, len(authors))
	for i, a := range authors {
		shorts := byAuthor[a.ID]
		if shorts == nil {
			shorts = []RecipeShortView{}
		}
		views = append(views, SubscriptionView{
			UserView:     userViews[i],
			Recipes:      shorts,
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}
