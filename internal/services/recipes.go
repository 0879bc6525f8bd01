// recipes.go
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
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/metrics"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/storage"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxRecipeNameLength = 256

// IngredientAmount is one requested recipe line.
type IngredientAmount struct {
	ID     types.FlexUint64 `json:"id"`
	Amount types.FlexUint64 `json:"amount"`
}

// RecipeInput is the body of a recipe create or update. Nil means omitted.
type RecipeInput struct {
	Tags        *types.FlexList[types.FlexUint64] `json:"tags"`
	Ingredients *[]IngredientAmount              `json:"ingredients"`
	Image       *string                          `json:"image"`
	Name        *string                          `json:"name"`
	Text        *string                          `json:"text"`
	CookingTime *types.FlexUint64                `json:"cooking_time"`
}

// RecipeFilter narrows ListRecipes. The boolean filters apply to the
// requesting viewer and are ignored for anonymous viewers.
type RecipeFilter struct {
	AuthorID         *uint64
	TagSlugs         []string
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// RecipeService owns the recipe aggregate: the recipe row, its lines, tags and short link.
type RecipeService struct {
	DB       *gorm.DB
	Media    storage.Storage
	Links    *ShortLinks
	Composer *Composer
	log      zerolog.Logger
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(db *gorm.DB, media storage.Storage, links *ShortLinks, composer *Composer) *RecipeService {
	return &RecipeService{
		DB:       db,
		Media:    media,
		Links:    links,
		Composer: composer,
		log:      logging.WithComponent("recipes"),
	}
}

type recipeLine struct {
	ingredientID uint64
	amount       uint32
}

type validRecipe struct {
	tagIDs      []uint64
	lines       []recipeLine
	name        *string
	text        *string
	cookingTime *uint32
	image       *storage.Blob
}

// validateRecipeInput checks the input without touching the store. Tags
// and ingredients are required for both create and update.
func validateRecipeInput(input RecipeInput, create bool) (*validRecipe, error) {
	out := &validRecipe{}

	if input.Tags == nil {
		return nil, types.ValidationError("recipes.validation.tags_required", "tags is required")
	}
	if len(*input.Tags) == 0 {
		return nil, types.ValidationError("recipes.validation.tags_empty", "tags must not be empty")
	}
	for _, id := range *input.Tags {
		out.tagIDs = append(out.tagIDs, id.Uint64())
	}
	if dups := types.Duplicates(out.tagIDs); len(dups) > 0 {
		return nil, types.ValidationError("recipes.validation.tags_duplicate", "tags contain duplicates").With("ids", dups)
	}

	if input.Ingredients == nil {
		return nil, types.ValidationError("recipes.validation.ingredients_required", "ingredients is required")
	}
	if len(*input.Ingredients) == 0 {
		return nil, types.ValidationError("recipes.validation.ingredients_empty", "ingredients must not be empty")
	}
	ingredientIDs := make([]uint64, 0, len(*input.Ingredients))
	var outOfRange []uint64
	for _, line := range *input.Ingredients {
		id, amount := line.ID.Uint64(), line.Amount.Uint64()
		ingredientIDs = append(ingredientIDs, id)
		if amount < models.MinAmount || amount > models.MaxAmount {
			outOfRange = append(outOfRange, id)
			continue
		}
		out.lines = append(out.lines, recipeLine{ingredientID: id, amount: uint32(amount)})
	}
	if dups := types.Duplicates(ingredientIDs); len(dups) > 0 {
		return nil, types.ValidationError("recipes.validation.ingredients_duplicate", "ingredients contain duplicates").With("ids", dups)
	}
	if len(outOfRange) > 0 {
		return nil, types.ValidationError("recipes.validation.amount_range",
			"amount must be between %d and %d", models.MinAmount, models.MaxAmount).With("ids", outOfRange)
	}

	if input.CookingTime != nil {
		ct := input.CookingTime.Uint64()
		if ct < models.MinCookingTime || ct > models.MaxCookingTime {
			return nil, types.ValidationError("recipes.validation.cooking_time_range",
				"cooking_time must be between %d and %d", models.MinCookingTime, models.MaxCookingTime)
		}
		v := uint32(ct)
		out.cookingTime = &v
	} else if create {
		return nil, types.ValidationError("recipes.validation.cooking_time_required", "cooking_time is required")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, types.ValidationError("recipes.validation.name_required", "name must not be blank")
		}
		if utf8.RuneCountInString(name) > maxRecipeNameLength {
			return nil, types.ValidationError("recipes.validation.name_length", "name must be at most %d characters", maxRecipeNameLength)
		}
		out.name = &name
	} else if create {
		return nil, types.ValidationError("recipes.validation.name_required", "name is required")
	}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, types.ValidationError("recipes.validation.text_required", "text must not be blank")
		}
		out.text = &text
	} else if create {
		return nil, types.ValidationError("recipes.validation.text_required", "text is required")
	}

	if input.Image != nil && *input.Image != "" {
		blob, err := storage.DecodeDataURI(*input.Image)
		if err != nil {
			return nil, types.ValidationError("recipes.validation.image_invalid", "%v", err)
		}
		out.image = &blob
	} else if create {
		return nil, types.ValidationError("recipes.validation.image_required", "image is required")
	}

	return out, nil
}

// missingIDs returns the ids that have no row in table.
func missingIDs(db *gorm.DB, table string, ids []uint64) ([]uint64, error) {
	var found []uint64
	if err := db.Table(table).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", table, err)
	}
	var missing []uint64
	for _, id := range ids {
		if !slices.Contains(found, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *RecipeService) checkReferences(ctx context.Context, v *validRecipe) error {
	db := s.DB.WithContext(ctx)

	missing, err := missingIDs(db, "tags", v.tagIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return types.ValidationError("recipes.validation.tags_not_found", "tags not found: %v", missing).With("ids", missing)
	}

	ingredientIDs := make([]uint64, 0, len(v.lines))
	for _, l := range v.lines {
		ingredientIDs = append(ingredientIDs, l.ingredientID)
	}
	missing, err = missingIDs(db, "ingredients", ingredientIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return types.ValidationError("recipes.validation.ingredients_not_found", "ingredients not found: %v", missing).With("ids", missing)
	}
	return nil
}

func replaceLines(tx *gorm.DB, recipeID uint64, v *validRecipe) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear recipe lines: %w", err)
	}
	lines := make([]models.RecipeIngredient, 0, len(v.lines))
	for _, l := range v.lines {
		lines = append(lines, models.RecipeIngredient{RecipeID: recipeID, IngredientID: l.ingredientID, Amount: l.amount})
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to write recipe lines: %w", err)
	}

	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	links := make([]map[string]interface{}, 0, len(v.tagIDs))
	for _, id := range v.tagIDs {
		links = append(links, map[string]interface{}{"recipe_id": recipeID, "tag_id": id})
	}
	if err := tx.Table("recipe_tags").Create(&links).Error; err != nil {
		return fmt.Errorf("failed to write recipe tags: %w", err)
	}
	return nil
}

// translateWriteError maps constraint failures raised by a concurrent
// change of the referenced rows onto validation errors.
func translateWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return types.ValidationError("recipes.validation.reference_missing", "a referenced tag or ingredient no longer exists")
	case database.IsDuplicateKey(err):
		return types.ValidationError("recipes.validation.ingredients_duplicate", "ingredients contain duplicates")
	case database.IsCheckViolation(err):
		return types.ValidationError("recipes.validation.range", "a value is out of range")
	}
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return err
}

func (s *RecipeService) discardBlob(key string) {
	if key == "" {
		return
	}
	if err := s.Media.Delete(context.Background(), key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete image blob")
	}
}

func (s *RecipeService) load(ctx context.Context, id uint64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Lines.Ingredient").
		First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("recipes.not_found", "Recipe %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// Get returns the recipe composed for the viewer.
func (s *RecipeService) Get(ctx context.Context, viewer Viewer, id uint64) (RecipeView, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return RecipeView{}, err
	}
	return s.Composer.Compose(ctx, viewer, recipe)
}

// Create validates and stores a recipe with its lines, tags and short link
// in one transaction.
func (s *RecipeService) Create(ctx context.Context, viewer Viewer, input RecipeInput) (RecipeView, error) {
	if !viewer.Authenticated() {
		return RecipeView{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}

	v, err := validateRecipeInput(input, true)
	if err != nil {
		return RecipeView{}, err
	}
	if err := s.checkReferences(ctx, v); err != nil {
		return RecipeView{}, err
	}

	ref, err := s.Media.Save(ctx, "recipes", *v.image)
	if err != nil {
		return RecipeView{}, err
	}

	recipe := models.Recipe{
		AuthorID:    viewer.UserID,
		Name:        *v.name,
		Text:        *v.text,
		Image:       models.NewJSON(ref),
		CookingTime: *v.cookingTime,
		PubDate:     time.Now().UTC(),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if err := replaceLines(tx, recipe.ID, v); err != nil {
			return err
		}
		link, err := s.Links.Create(tx, RecipePath(recipe.ID))
		if err != nil {
			return err
		}
		if err := tx.Model(&recipe).UpdateColumn("short_link_id", link.ID).Error; err != nil {
			return fmt.Errorf("failed to link short link: %w", err)
		}
		return nil
	})
	if err != nil {
		s.discardBlob(ref.Key)
		return RecipeView{}, translateWriteError(err)
	}

	metrics.RecipeWrites.WithLabelValues("create").Inc()
	s.log.Info().Uint64("recipe_id", recipe.ID).Uint64("author_id", viewer.UserID).Msg("recipe created")

	return s.Get(ctx, viewer, recipe.ID)
}

// Update replaces the tags and lines of a recipe and any scalar fields
// present in the input. Only the author or staff may update.
func (s *RecipeService) Update(ctx context.Context, viewer Viewer, id uint64, input RecipeInput) (RecipeView, error) {
	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecipeView{}, types.NotFound("recipes.not_found", "Recipe %d not found", id)
		}
		return RecipeView{}, fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	if !viewer.CanEdit(recipe.AuthorID) {
		return RecipeView{}, types.Forbidden("recipes.forbidden", "Only the author may change this recipe")
	}

	v, err := validateRecipeInput(input, false)
	if err != nil {
		return RecipeView{}, err
	}
	if err := s.checkReferences(ctx, v); err != nil {
		return RecipeView{}, err
	}

	updates := map[string]interface{}{}
	if v.name != nil {
		updates["name"] = *v.name
	}
	if v.text != nil {
		updates["text"] = *v.text
	}
	if v.cookingTime != nil {
		updates["cooking_time"] = *v.cookingTime
	}

	var newKey, oldKey string
	if v.image != nil {
		ref, err := s.Media.Save(ctx, "recipes", *v.image)
		if err != nil {
			return RecipeView{}, err
		}
		newKey = ref.Key
		if recipe.Image.Valid {
			oldKey = recipe.Image.Data().Key
		}
		updates["image"] = models.NewJSON(ref)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		return replaceLines(tx, id, v)
	})
	if err != nil {
		s.discardBlob(newKey)
		return RecipeView{}, translateWriteError(err)
	}
	s.discardBlob(oldKey)

	metrics.RecipeWrites.WithLabelValues("update").Inc()
	s.log.Info().Uint64("recipe_id", id).Uint64("user_id", viewer.UserID).Msg("recipe updated")

	return s.Get(ctx, viewer, id)
}

// Delete removes a recipe and everything that references it.
func (s *RecipeService) Delete(ctx context.Context, viewer Viewer, id uint64) error {
	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).Preload("ShortLink").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("recipes.not_found", "Recipe %d not found", id)
		}
		return fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	if !viewer.CanEdit(recipe.AuthorID) {
		return types.Forbidden("recipes.forbidden", "Only the author may delete this recipe")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Favorite{}, &models.ShoppingCartEntry{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe references: %w", err)
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}
		if err := tx.Omit(clause.Associations).Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		if recipe.ShortLinkID != nil {
			if err := tx.Delete(&models.ShortLink{}, *recipe.ShortLinkID).Error; err != nil {
				return fmt.Errorf("failed to delete short link: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if recipe.ShortLink != nil {
		s.Links.Evict(recipe.ShortLink.Code)
	}
	if recipe.Image.Valid {
		s.discardBlob(recipe.Image.Data().Key)
	}

	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	s.log.Info().Uint64("recipe_id", id).Uint64("user_id", viewer.UserID).Msg("recipe deleted")
	return nil
}

// List returns a page of recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewer Viewer, filter RecipeFilter, page PageRequest) (Page[RecipeView], error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&models.Recipe{})

	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if viewer.Authenticated() {
		q = scopeToViewer(q, db, "favorites", viewer, filter.IsFavorited)
		q = scopeToViewer(q, db, "shopping_cart", viewer, filter.IsInShoppingCart)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[RecipeView]{}, fmt.Errorf("failed to count recipes: %w", err)
	}
	if err := page.Check(total); err != nil {
		return Page[RecipeView]{}, err
	}

	var recipes []models.Recipe
	err := q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Lines.Ingredient").
		Order("recipes.pub_date DESC, recipes.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return Page[RecipeView]{}, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := s.Composer.RecipeViews(ctx, viewer, recipes)
	if err != nil {
		return Page[RecipeView]{}, err
	}
	return Page[RecipeView]{Count: total, Results: views, Request: page}, nil
}

// scopeToViewer keeps (want=true) or drops (want=false) recipes related to the viewer through table.
func scopeToViewer(q, db *gorm.DB, table string, viewer Viewer, want *bool) *gorm.DB {
	if want == nil {
		return q
	}
	related := db.Table(table).Select("recipe_id").Where("user_id = ?", viewer.UserID)
	if *want {
		return q.Where("recipes.id IN (?)", related)
	}
	return q.Where("recipes.id NOT IN (?)", related)
}

// ShortLink returns the short code of a recipe, creating it for recipes
// stored without one.
func (s *RecipeService) ShortLink(ctx context.Context, id uint64) (string, error) {
	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).Preload("ShortLink").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", types.NotFound("recipes.not_found", "Recipe %d not found", id)
		}
		return "", fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	if recipe.ShortLink != nil {
		return recipe.ShortLink.Code, nil
	}

	var code string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.Links.Create(tx, RecipePath(id))
		if err != nil {
			return err
		}
		code = link.Code
		return tx.Model(&recipe).UpdateColumn("short_link_id", link.ID).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to create short link: %w", err)
	}
	return code, nil
}
