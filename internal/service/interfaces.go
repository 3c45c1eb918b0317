package service

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/shoppinglist"
	"github.com/foodgram/backend/internal/types"
	"github.com/google/uuid"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	ResolvePrincipal(ctx context.Context, token string) (policy.Principal, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Get(ctx context.Context, viewer policy.Principal, id uuid.UUID) (*UserView, error)
	List(ctx context.Context, viewer policy.Principal, page Page) (*Paged[UserView], error)
	SetPassword(ctx context.Context, p policy.Principal, in SetPasswordInput) error
}

// ICatalogService defines the interface for tag and ingredient operations
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	CreateTag(ctx context.Context, in TagInput) (*models.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, in TagInput) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, in IngredientInput) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, in IngredientInput) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uuid.UUID) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, author policy.Principal, in RecipeInput) (*RecipeView, error)
	Update(ctx context.Context, p policy.Principal, id uuid.UUID, in RecipeInput) (*RecipeView, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
	Get(ctx context.Context, viewer policy.Principal, id uuid.UUID) (*RecipeView, error)
	List(ctx context.Context, viewer policy.Principal, f RecipeFilter, page Page) (*Paged[RecipeView], error)
}

// ISocialService defines the interface for follows, favorites and the cart
type ISocialService interface {
	Follow(ctx context.Context, user policy.Principal, authorID uuid.UUID, recipesLimit int) (*Subscription, error)
	Unfollow(ctx context.Context, user policy.Principal, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, user policy.Principal, page Page, recipesLimit int) (*Paged[Subscription], error)
	AddFavorite(ctx context.Context, user policy.Principal, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, user policy.Principal, recipeID uuid.UUID) error
	AddToShoppingList(ctx context.Context, user policy.Principal, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromShoppingList(ctx context.Context, user policy.Principal, recipeID uuid.UUID) error
}

// IShoppingService defines the interface for the shopping list report
type IShoppingService interface {
	Report(ctx context.Context, user policy.Principal) ([]shoppinglist.Line, error)
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ IUserService     = (*UserService)(nil)
	_ ICatalogService  = (*CatalogService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ ISocialService   = (*SocialService)(nil)
	_ IShoppingService = (*ShoppingService)(nil)
)
