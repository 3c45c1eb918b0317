package service

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/shoppinglist"
	"gorm.io/gorm"
)

// ShoppingService builds the shopping list of a user's cart.
type ShoppingService struct {
	db *gorm.DB
}

func NewShoppingService(db *gorm.DB) *ShoppingService {
	return &ShoppingService{db: db}
}

// Report aggregates every ingredient record of every recipe in user's cart.
func (s *ShoppingService) Report(ctx context.Context, user policy.Principal) ([]shoppinglist.Line, error) {
	if !user.Authenticated {
		return nil, AuthorizationError("authentication required")
	}

	rows := []shoppinglist.Row{}
	err := s.db.WithContext(ctx).
		Model(&models.ShoppingListMembership{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, ingredient_records.amount AS amount").
		Joins("JOIN ingredient_records ON ingredient_records.recipe_id = shopping_list_memberships.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_records.ingredient_id").
		Where("shopping_list_memberships.user_id = ?", user.ID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	return shoppinglist.Aggregate(rows), nil
}
