// fixtures.go
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

package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/localnerve/foodgram/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PNGDataURI is a 1x1 transparent PNG as a base64 data URI.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateUser stores a user whose password is username + "-password".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(username+"-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "First " + username,
		LastName:  "Last " + username,
		Password:  string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}

// CreateTag stores a tag with a slug derived from name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: name}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create tag %s: %v", name, err)
	}
	return &tag
}

// CreateIngredient stores an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return &ingredient
}

// Line is an ingredient amount for CreateRecipe.
type Line struct {
	Ingredient *models.Ingredient
	Amount     uint32
}

// CreateRecipe stores a recipe directly, bypassing validation. Recipes
// created later sort first.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, lines ...Line) *models.Recipe {
	t.Helper()

	var last models.Recipe
	pubDate := time.Now().UTC()
	if err := db.Order("pub_date DESC").Limit(1).Find(&last).Error; err == nil && last.ID != 0 && !pubDate.After(last.PubDate) {
		pubDate = last.PubDate.Add(time.Second)
	}

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Steps for " + name,
		Image:       models.NewJSON(models.ImageRef{Key: fmt.Sprintf("recipes/%s.png", name), ContentType: "image/png", Size: 1}),
		CookingTime: 10,
		PubDate:     pubDate,
	}
	if err := db.Omit(clause.Associations).Create(&recipe).Error; err != nil {
		t.Fatalf("Failed to create recipe %s: %v", name, err)
	}
	for _, tag := range tags {
		if err := db.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error; err != nil {
			t.Fatalf("Failed to tag recipe %s: %v", name, err)
		}
	}
	for _, line := range lines {
		ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit(clause.Associations).Create(&ri).Error; err != nil {
			t.Fatalf("Failed to add line to recipe %s: %v", name, err)
		}
	}
	return &recipe
}

// AddToCart puts a recipe in the user's shopping cart.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	entry := models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.Omit(clause.Associations).Create(&entry).Error; err != nil {
		t.Fatalf("Failed to add recipe %d to cart: %v", recipe.ID, err)
	}
}

// AddFavorite marks a recipe as a favorite of the user.
func AddFavorite(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	fav := models.Favorite{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.Omit(clause.Associations).Create(&fav).Error; err != nil {
		t.Fatalf("Failed to favorite recipe %d: %v", recipe.ID, err)
	}
}

// Subscribe makes user follow author.
func Subscribe(t *testing.T, db *gorm.DB, user, author *models.User) {
	t.Helper()
	sub := models.Subscription{UserID: user.ID, AuthorID: author.ID}
	if err := db.Omit(clause.Associations).Create(&sub).Error; err != nil {
		t.Fatalf("Failed to subscribe %d to %d: %v", user.ID, author.ID, err)
	}
}
