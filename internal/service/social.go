package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
	IsSubscribed bool
}

// SocialService manages follows, favorites and shopping cart membership.
type SocialService struct {
	db *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// Follow subscribes user to author and returns the author's subscription card.
func (s *SocialService) Follow(ctx context.Context, user policy.Principal, authorID uuid.UUID, recipesLimit int) (*Subscription, error) {
	if !user.Authenticated {
		return nil, AuthorizationError("authentication required")
	}
	author, err := loadUser(ctx, s.db, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == user.ID {
		return nil, ValidationError("author", "you cannot subscribe to yourself")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := edgeExists(tx, &models.Follow{}, "user_id = ? AND author_id = ?", user.ID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return ConflictError("already subscribed to %s", author.Username)
		}
		return createEdge(tx, &models.Follow{UserID: user.ID, AuthorID: authorID},
			ConflictError("already subscribed to %s", author.Username))
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID.String()).Str("author_id", authorID.String()).Msg("subscribed")
	subs, err := s.cards(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unfollow removes the subscription of user to author.
func (s *SocialService) Unfollow(ctx context.Context, user policy.Principal, authorID uuid.UUID) error {
	if !user.Authenticated {
		return AuthorizationError("authentication required")
	}
	if _, err := loadUser(ctx, s.db, authorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", user.ID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return MissingRelationError("subscription")
	}
	logging.Info().Str("user_id", user.ID.String()).Str("author_id", authorID.String()).Msg("unsubscribed")
	return nil
}

// Subscriptions lists the authors user follows, most recent first. Each card
// carries at most recipesLimit recipes; a negative limit means all of them.
func (s *SocialService) Subscriptions(ctx context.Context, user policy.Principal, page Page, recipesLimit int) (*Paged[Subscription], error) {
	if !user.Authenticated {
		return nil, AuthorizationError("authentication required")
	}
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Follow{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var follows []models.Follow
	err := db.Preload("Author").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&follows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	authors := make([]models.User, len(follows))
	for i, f := range follows {
		authors[i] = f.Author
	}
	cards, err := s.cards(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &Paged[Subscription]{Count: total, Page: page, Items: cards}, nil
}

// IsSubscribed reports whether viewer follows author. Anonymous viewers follow nobody.
func (s *SocialService) IsSubscribed(ctx context.Context, viewer policy.Principal, authorID uuid.UUID) (bool, error) {
	if !viewer.Authenticated {
		return false, nil
	}
	return edgeExists(s.db.WithContext(ctx), &models.Follow{}, "user_id = ? AND author_id = ?", viewer.ID, authorID)
}

// AddFavorite marks a recipe as a favorite of user and returns the recipe.
func (s *SocialService) AddFavorite(ctx context.Context, user policy.Principal, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addRecipeEdge(ctx, user, recipeID, &models.Favorite{}, &models.Favorite{UserID: user.ID, RecipeID: recipeID}, "favorites")
}

func (s *SocialService) RemoveFavorite(ctx context.Context, user policy.Principal, recipeID uuid.UUID) error {
	return s.removeRecipeEdge(ctx, user, recipeID, &models.Favorite{}, "favorite")
}

// AddToShoppingList puts a recipe into user's cart and returns the recipe.
func (s *SocialService) AddToShoppingList(ctx context.Context, user policy.Principal, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addRecipeEdge(ctx, user, recipeID, &models.ShoppingListMembership{}, &models.ShoppingListMembership{UserID: user.ID, RecipeID: recipeID}, "shopping cart")
}

func (s *SocialService) RemoveFromShoppingList(ctx context.Context, user policy.Principal, recipeID uuid.UUID) error {
	return s.removeRecipeEdge(ctx, user, recipeID, &models.ShoppingListMembership{}, "shopping cart entry")
}

func (s *SocialService) addRecipeEdge(ctx context.Context, user policy.Principal, recipeID uuid.UUID, model, edge interface{}, list string) (*models.Recipe, error) {
	if !user.Authenticated {
		return nil, AuthorizationError("authentication required")
	}
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return notFoundOr(err, "recipe")
		}
		exists, err := edgeExists(tx, model, "user_id = ? AND recipe_id = ?", user.ID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			return ConflictError("recipe is already in %s", list)
		}
		return createEdge(tx, edge, ConflictError("recipe is already in %s", list))
	})
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("user_id", user.ID.String()).
		Str("recipe_id", recipeID.String()).
		Str("list", list).
		Msg("recipe added")
	return &recipe, nil
}

func (s *SocialService) removeRecipeEdge(ctx context.Context, user policy.Principal, recipeID uuid.UUID, model interface{}, relation string) error {
	if !user.Authenticated {
		return AuthorizationError("authentication required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
			return notFoundOr(err, "recipe")
		}
		res := tx.Where("user_id = ? AND recipe_id = ?", user.ID, recipeID).Delete(model)
		if res.Error != nil {
			return fmt.Errorf("failed to remove %s: %w", relation, res.Error)
		}
		if res.RowsAffected == 0 {
			return MissingRelationError(relation)
		}
		return nil
	})
}

// cards builds subscription cards for authors, with recipes newest first.
func (s *SocialService) cards(ctx context.Context, authors []models.User, recipesLimit int) ([]Subscription, error) {
	cards := make([]Subscription, len(authors))
	if len(authors) == 0 {
		return cards, nil
	}
	db := s.db.WithContext(ctx)

	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	byAuthor := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byAuthor[c.AuthorID] = c.Total
	}

	for i, author := range authors {
		recipes := []models.Recipe{}
		if recipesLimit != 0 {
			q := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id DESC")
			if recipesLimit > 0 {
				q = q.Limit(recipesLimit)
			}
			if err := q.Find(&recipes).Error; err != nil {
				return nil, fmt.Errorf("failed to load recipes of %s: %w", author.Username, err)
			}
		}
		cards[i] = Subscription{
			Author:       author,
			Recipes:      recipes,
			RecipesCount: byAuthor[author.ID],
			IsSubscribed: true,
		}
	}
	return cards, nil
}

func loadUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func edgeExists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %T: %w", model, err)
	}
	return count > 0, nil
}

// createEdge inserts edge, reporting a unique-index violation as conflict.
func createEdge(tx *gorm.DB, edge interface{}, conflict *Error) error {
	err := tx.Create(edge).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	if err != nil {
		return fmt.Errorf("failed to create %T: %w", edge, err)
	}
	return nil
}
