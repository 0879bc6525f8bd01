package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"
)

// ReferenceService serves tags and ingredients.
type ReferenceService struct {
	DB *gorm.DB
}

// NewReferenceService creates a ReferenceService.
func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{DB: db}
}

// Tags lists every tag by id.
func (s *ReferenceService) Tags(ctx context.Context) ([]TagView, error) {
	var tags []models.Tag
	if err := s.DB.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, TagView{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return views, nil
}

// Tag returns one tag.
func (s *ReferenceService) Tag(ctx context.Context, id uint64) (TagView, error) {
	var tag models.Tag
	err := s.DB.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TagView{}, types.NotFound("tags.not_found", "Tag %d not found", id)
	}
	if err != nil {
		return TagView{}, fmt.Errorf("failed to load tag %d: %w", id, err)
	}
	return TagView{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}, nil
}

type ingredientSource []models.Ingredient

func (s ingredientSource) String(i int) string { return s[i].Name }
func (s ingredientSource) Len() int            { return len(s) }

func ingredientView(i models.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// Ingredients lists ingredients by name. A non-empty prefix keeps names
// starting with it. A non-empty search ranks the remaining names by fuzzy
// match and drops the ones that do not match.
func (s *ReferenceService) Ingredients(ctx context.Context, prefix, search string) ([]IngredientView, error) {
	q := s.DB.WithContext(ctx).Order("name")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	views := make([]IngredientView, 0, len(ingredients))
	if search = strings.TrimSpace(search); search != "" {
		for _, m := range fuzzy.FindFrom(search, ingredientSource(ingredients)) {
			views = append(views, ingredientView(ingredients[m.Index]))
		}
		return views, nil
	}
	for _, i := range ingredients {
		views = append(views, ingredientView(i))
	}
	return views, nil
}

// Ingredient returns one ingredient.
func (s *ReferenceService) Ingredient(ctx context.Context, id uint64) (IngredientView, error) {
	var ingredient models.Ingredient
	err := s.DB.WithContext(ctx).First(&ingredient, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return IngredientView{}, types.NotFound("ingredients.not_found", "Ingredient %d not found", id)
	}
	if err != nil {
		return IngredientView{}, fmt.Errorf("failed to load ingredient %d: %w", id, err)
	}
	return ingredientView(ingredient), nil
}
