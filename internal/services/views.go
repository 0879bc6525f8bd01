package services

// UserView is the public profile of a user.
type UserView struct {
	Email        string  `json:"email"`
	ID           uint64  `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// TagView is a tag as listed and embedded in recipes.
type TagView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IngredientView is an ingredient as listed.
type IngredientView struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientLineView is an ingredient with the amount a recipe uses.
type IngredientLineView struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          uint32 `json:"amount"`
}

// RecipeView is a recipe composed for one viewer.
type RecipeView struct {
	ID               uint64               `json:"id"`
	Tags             []TagView            `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      uint32               `json:"cooking_time"`
}

// RecipeShortView is the compact recipe used by toggles and subscriptions.
type RecipeShortView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime uint32 `json:"cooking_time"`
}

// SubscriptionView is a followed author with their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// RegisteredUserView is returned by registration.
type RegisteredUserView struct {
	Email     string `json:"email"`
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AvatarView is returned after an avatar upload.
type AvatarView struct {
	Avatar string `json:"avatar"`
}
