// Package api maps HTTP requests onto the service layer.
package api

import (
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services are the use cases the API exposes.
type Services struct {
	Auth     service.IAuthService
	Users    service.IUserService
	Catalog  service.ICatalogService
	Recipes  service.IRecipeService
	Social   service.ISocialService
	Shopping service.IShoppingService
}

// Limiters throttle recipe writes. Nil limiters are disabled.
type Limiters struct {
	RecipeCreate *middleware.RateLimiter
	RecipeModify *middleware.RateLimiter
}

// API holds the handlers behind the route table.
type API struct {
	enforcer *policy.Enforcer
	limits   Limiters

	auth    *AuthHandler
	users   *UserHandler
	catalog *CatalogHandler
	recipes *RecipeHandler
	health  *HealthHandler
}

func New(svc Services, enforcer *policy.Enforcer, limits Limiters, db *gorm.DB, redisClient *redis.Client) *API {
	return &API{
		enforcer: enforcer,
		limits:   limits,
		auth:     NewAuthHandler(svc.Auth),
		users:    NewUserHandler(svc.Users, svc.Social),
		catalog:  NewCatalogHandler(svc.Catalog),
		recipes:  NewRecipeHandler(svc.Recipes, svc.Social, svc.Shopping),
		health:   NewHealthHandler(db, redisClient),
	}
}
