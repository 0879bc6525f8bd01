package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/foodgram/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagFixture struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// LoadIngredients inserts the ingredients in a JSON array, skipping names
// that already exist. It returns the number of new rows.
func LoadIngredients(db *gorm.DB, raw []byte) (int64, error) {
	var fixtures []ingredientFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return 0, fmt.Errorf("failed to parse ingredients: %w", err)
	}
	if len(fixtures) == 0 {
		return 0, nil
	}

	rows := make([]models.Ingredient, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, models.Ingredient{Name: f.Name, MeasurementUnit: f.MeasurementUnit})
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to load ingredients: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// LoadTags inserts the tags in a JSON array, skipping existing ones.
func LoadTags(db *gorm.DB, raw []byte) (int64, error) {
	var fixtures []tagFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return 0, fmt.Errorf("failed to parse tags: %w", err)
	}
	if len(fixtures) == 0 {
		return 0, nil
	}

	rows := make([]models.Tag, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, models.Tag{Name: f.Name, Slug: f.Slug})
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to load tags: %w", result.Error)
	}
	return result.RowsAffected, nil
}
