package types

import "github.com/google/uuid"

// IngredientAmountRequest is one ingredient line of a recipe body
type IngredientAmountRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount float64   `json:"amount"`
}

// RecipeRequest is the body of recipe create and update. Image is a base64
// data URI and may be omitted on update.
type RecipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
}

// TagRequest is the body of tag create and update
type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// IngredientRequest is the body of ingredient create and update
type IngredientRequest struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RegisterRequest is the body of user registration
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// SetPasswordRequest changes the caller's password
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
