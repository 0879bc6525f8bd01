package models

import (
	"time"
)

// Amount and cooking time bounds.
const (
	MinAmount      = 1
	MaxAmount      = 32000
	MinCookingTime = 1
	MaxCookingTime = 32000
)

// Ingredient is reference data: a product and the unit it is measured in.
type Ingredient struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"size:128;not null;index:idx_ingredients_name,unique"`
	MeasurementUnit string `gorm:"size:64;not null"`
}

// Tag is reference data used to categorize recipes.
type Tag struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:32;not null;index:idx_tags_name,unique"`
	Slug string `gorm:"size:32;not null;index:idx_tags_slug,unique"`
}

// Recipe is authored by a user. Lines hold the ingredient amounts.
type Recipe struct {
	ID          uint64             `gorm:"primaryKey;autoIncrement"`
	AuthorID    uint64             `gorm:"not null;index"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:256;not null"`
	Text        string             `gorm:"type:text;not null"`
	Image       JSON[ImageRef]     `gorm:"not null"`
	CookingTime uint32             `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	PubDate     time.Time          `gorm:"not null;index"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;joinForeignKey:recipe_id;joinReferences:tag_id;constraint:OnDelete:CASCADE"`
	Lines       []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	ShortLinkID *uint64            `gorm:"index"`
	ShortLink   *ShortLink         `gorm:"foreignKey:ShortLinkID;constraint:OnDelete:SET NULL"`
}

// RecipeIngredient is one line of a recipe: an ingredient and its amount.
type RecipeIngredient struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	RecipeID     uint64     `gorm:"not null;index:idx_recipe_ingredients_pair,unique"`
	IngredientID uint64     `gorm:"not null;index:idx_recipe_ingredients_pair,unique;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       uint32     `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}

// TableName overrides the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
