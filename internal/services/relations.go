// relations.go
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
	"errors"
	"fmt"

	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/metrics"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/types"
	"gorm.io/gorm"
)

// RelationKind selects the user to recipe relation a toggle acts on.
type RelationKind int

const (
	Favorites RelationKind = iota
	ShoppingCart
)

func (k RelationKind) String() string {
	if k == ShoppingCart {
		return "shopping_cart"
	}
	return "favorites"
}

func (k RelationKind) entry(userID, recipeID uint64) interface{} {
	if k == ShoppingCart {
		return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (k RelationKind) model() interface{} {
	if k == ShoppingCart {
		return &models.ShoppingCartEntry{}
	}
	return &models.Favorite{}
}

func (k RelationKind) label() string {
	if k == ShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

// RelationService adds and removes favorites and shopping cart entries.
type RelationService struct {
	DB       *gorm.DB
	Composer *Composer
}

// NewRelationService creates a RelationService.
func NewRelationService(db *gorm.DB, composer *Composer) *RelationService {
	return &RelationService{DB: db, Composer: composer}
}

func (s *RelationService) recipe(ctx context.Context, recipeID uint64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.DB.WithContext(ctx).First(&recipe, recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("recipes.not_found", "Recipe %d not found", recipeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %d: %w", recipeID, err)
	}
	return &recipe, nil
}

// Add relates the recipe to the viewer and returns its short view.
// An existing pair fails with Conflict, also when a concurrent Add wins the
// race to the unique index.
func (s *RelationService) Add(ctx context.Context, kind RelationKind, viewer Viewer, recipeID uint64) (RecipeShortView, error) {
	if !viewer.Authenticated() {
		return RecipeShortView{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return RecipeShortView{}, err
	}

	db := s.DB.WithContext(ctx)
	conflict := types.Conflict(kind.String()+".conflict", "Recipe %d is already in %s", recipeID, kind.label())

	var existing int64
	if err := db.Model(kind.model()).
		Where("user_id = ? AND recipe_id = ?", viewer.UserID, recipeID).
		Count(&existing).Error; err != nil {
		return RecipeShortView{}, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if existing > 0 {
		return RecipeShortView{}, conflict
	}

	if err := db.Create(kind.entry(viewer.UserID, recipeID)).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return RecipeShortView{}, conflict
		}
		return RecipeShortView{}, fmt.Errorf("failed to add to %s: %w", kind, err)
	}

	metrics.RelationChanges.WithLabelValues(kind.String(), "add").Inc()
	return s.Composer.ShortView(recipe), nil
}

// Remove deletes the pair. A missing recipe or pair fails with NotFound.
func (s *RelationService) Remove(ctx context.Context, kind RelationKind, viewer Viewer, recipeID uint64) error {
	if !viewer.Authenticated() {
		return types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", viewer.UserID, recipeID).
		Delete(kind.model())
	if result.Error != nil {
		return fmt.Errorf("failed to remove from %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound(kind.String()+".not_found", "Recipe %d is not in %s", recipeID, kind.label())
	}

	metrics.RelationChanges.WithLabelValues(kind.String(), "remove").Inc()
	return nil
}
