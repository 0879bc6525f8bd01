package models

import (
	"time"
)

// Favorite marks a recipe as a favorite of a user.
type Favorite struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:idx_favorites_pair,unique"`
	RecipeID  uint64 `gorm:"not null;index:idx_favorites_pair,unique;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShoppingCartEntry puts a recipe in a user's shopping cart.
type ShoppingCartEntry struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:idx_shopping_cart_pair,unique"`
	RecipeID  uint64 `gorm:"not null;index:idx_shopping_cart_pair,unique;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShortLink maps a short code to a full site path.
type ShortLink struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	Code       string `gorm:"size:16;not null;index:idx_short_links_code,unique"`
	FullPath   string `gorm:"size:255;not null;index:idx_short_links_path,unique"`
	UsageCount uint64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

// ShoppingListItem is one aggregated row of a shopping list. It is not persisted.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}

// TableName overrides the table name for ShoppingCartEntry
func (ShoppingCartEntry) TableName() string {
	return "shopping_cart"
}

// TableName overrides the table name for ShortLink
func (ShortLink) TableName() string {
	return "short_links"
}

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&ShortLink{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCartEntry{},
		&Subscription{},
		&AuthToken{},
	}
}
