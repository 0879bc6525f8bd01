// shopping.go
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
	"time"

	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/metrics"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/render"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ShoppingListService aggregates a user's cart and renders it.
type ShoppingListService struct {
	DB       *gorm.DB
	Renderer render.Renderer
	Format   string
	log      zerolog.Logger
}

// NewShoppingListService creates a ShoppingListService.
func NewShoppingListService(db *gorm.DB, renderer render.Renderer, format string) *ShoppingListService {
	return &ShoppingListService{
		DB:       db,
		Renderer: renderer,
		Format:   format,
		log:      logging.WithComponent("shopping_list"),
	}
}

// Build sums the amounts of every ingredient line across the recipes in the
// user's cart, grouped by ingredient name and unit and ordered by name.
func (s *ShoppingListService) Build(ctx context.Context, userID uint64) ([]models.ShoppingListItem, error) {
	items := []models.ShoppingListItem{}
	err := s.DB.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "shopping_list")).
		Table("shopping_cart").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	return items, nil
}

// Download builds the viewer's list and renders it as a document.
func (s *ShoppingListService) Download(ctx context.Context, viewer Viewer) (render.Document, error) {
	if !viewer.Authenticated() {
		return render.Document{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	start := time.Now()

	items, err := s.Build(ctx, viewer.UserID)
	if err != nil {
		metrics.ShoppingListRenders.WithLabelValues(s.Format, "error").Inc()
		return render.Document{}, err
	}

	doc, err := s.Renderer.Render(ctx, render.ShoppingList{
		Owner:       viewer.Username,
		GeneratedAt: time.Now().UTC(),
		Items:       items,
	})
	if err != nil {
		metrics.ShoppingListRenders.WithLabelValues(s.Format, "error").Inc()
		s.log.Error().Err(err).Uint64("user_id", viewer.UserID).Msg("failed to render shopping list")
		return render.Document{}, err
	}

	metrics.ShoppingListRenders.WithLabelValues(s.Format, "ok").Inc()
	metrics.ShoppingListRenderDuration.Observe(time.Since(start).Seconds())
	return doc, nil
}
