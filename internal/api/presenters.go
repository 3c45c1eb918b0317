package api

import (
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

func userResponse(u models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func userViewResponse(v service.UserView) types.UserResponse {
	return userResponse(v.User, v.IsSubscribed)
}

func tagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func recipeResponse(v service.RecipeView) types.RecipeResponse {
	r := v.Recipe
	tags := make([]types.TagResponse, 0, len(r.RecipeTags))
	for _, t := range r.Tags() {
		tags = append(tags, tagResponse(t))
	}
	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.IngredientRecords))
	for _, rec := range r.IngredientRecords {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              rec.IngredientID,
			Name:            rec.Ingredient.Name,
			MeasurementUnit: rec.Ingredient.MeasurementUnit,
			Amount:          rec.Amount,
		})
	}
	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           userResponse(r.Author, v.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func recipeShortResponse(r models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func subscriptionResponse(s service.Subscription) types.SubscriptionResponse {
	recipes := make([]types.RecipeShortResponse, len(s.Recipes))
	for i, r := range s.Recipes {
		recipes[i] = recipeShortResponse(r)
	}
	return types.SubscriptionResponse{
		UserResponse: userResponse(s.Author, s.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}
