package api

import (
	"net/http"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route binds a method and path to a handler behind a permission policy.
// A nil Policy admits every caller. Middleware runs after the permission check.
type Route struct {
	Method     string
	Path       string
	Policy     policy.Policy
	Handler    gin.HandlerFunc
	Middleware []gin.HandlerFunc
}

// Register mounts routes on r.
func Register(r gin.IRouter, routes []Route) {
	for _, rt := range routes {
		handlers := make([]gin.HandlerFunc, 0, len(rt.Middleware)+2)
		handlers = append(handlers, middleware.RequirePermission(rt.Policy))
		handlers = append(handlers, rt.Middleware...)
		handlers = append(handlers, rt.Handler)
		r.Handle(rt.Method, rt.Path, handlers...)
	}
}

// Routes returns the full route table of the API.
func (a *API) Routes() []Route {
	catalog := policy.NewReadOnlyOrAdminWrite(a.enforcer)
	recipes := policy.NewAuthorOrReadOnly(a.enforcer)
	social := policy.NewAuthenticated(a.enforcer, policy.ResourceSocial)
	account := policy.NewAuthenticated(a.enforcer, policy.ResourceAccount)
	anyone := policy.AllowAny{}

	createLimit := a.limits.RecipeCreate.PerUser()
	modifyLimit := a.limits.RecipeModify.PerRecipe()

	return []Route{
		{Method: http.MethodGet, Path: "/api/tags", Policy: catalog, Handler: a.catalog.ListTags},
		{Method: http.MethodPost, Path: "/api/tags", Policy: catalog, Handler: a.catalog.CreateTag},
		{Method: http.MethodGet, Path: "/api/tags/:id", Policy: catalog, Handler: a.catalog.GetTag},
		{Method: http.MethodPatch, Path: "/api/tags/:id", Policy: catalog, Handler: a.catalog.UpdateTag},
		{Method: http.MethodDelete, Path: "/api/tags/:id", Policy: catalog, Handler: a.catalog.DeleteTag},

		{Method: http.MethodGet, Path: "/api/ingredients", Policy: catalog, Handler: a.catalog.ListIngredients},
		{Method: http.MethodPost, Path: "/api/ingredients", Policy: catalog, Handler: a.catalog.CreateIngredient},
		{Method: http.MethodGet, Path: "/api/ingredients/:id", Policy: catalog, Handler: a.catalog.GetIngredient},
		{Method: http.MethodPatch, Path: "/api/ingredients/:id", Policy: catalog, Handler: a.catalog.UpdateIngredient},
		{Method: http.MethodDelete, Path: "/api/ingredients/:id", Policy: catalog, Handler: a.catalog.DeleteIngredient},

		{Method: http.MethodGet, Path: "/api/recipes", Policy: recipes, Handler: a.recipes.ListRecipes},
		{Method: http.MethodPost, Path: "/api/recipes", Policy: recipes, Handler: a.recipes.CreateRecipe, Middleware: []gin.HandlerFunc{createLimit}},
		{Method: http.MethodGet, Path: "/api/recipes/download_shopping_cart", Policy: social, Handler: a.recipes.DownloadShoppingCart},
		{Method: http.MethodGet, Path: "/api/recipes/:id", Policy: recipes, Handler: a.recipes.GetRecipe},
		{Method: http.MethodPatch, Path: "/api/recipes/:id", Policy: recipes, Handler: a.recipes.UpdateRecipe, Middleware: []gin.HandlerFunc{modifyLimit}},
		{Method: http.MethodDelete, Path: "/api/recipes/:id", Policy: recipes, Handler: a.recipes.DeleteRecipe},
		{Method: http.MethodPost, Path: "/api/recipes/:id/favorite", Policy: social, Handler: a.recipes.AddFavorite},
		{Method: http.MethodDelete, Path: "/api/recipes/:id/favorite", Policy: social, Handler: a.recipes.RemoveFavorite},
		{Method: http.MethodPost, Path: "/api/recipes/:id/shopping_cart", Policy: social, Handler: a.recipes.AddToShoppingCart},
		{Method: http.MethodDelete, Path: "/api/recipes/:id/shopping_cart", Policy: social, Handler: a.recipes.RemoveFromShoppingCart},

		{Method: http.MethodPost, Path: "/api/users", Policy: anyone, Handler: a.users.Register},
		{Method: http.MethodGet, Path: "/api/users", Policy: anyone, Handler: a.users.ListUsers},
		{Method: http.MethodGet, Path: "/api/users/me", Policy: account, Handler: a.users.Me},
		{Method: http.MethodPost, Path: "/api/users/set_password", Policy: account, Handler: a.users.SetPassword},
		{Method: http.MethodGet, Path: "/api/users/subscriptions", Policy: social, Handler: a.users.Subscriptions},
		{Method: http.MethodGet, Path: "/api/users/:id", Policy: anyone, Handler: a.users.GetUser},
		{Method: http.MethodPost, Path: "/api/users/:id/subscribe", Policy: social, Handler: a.users.Subscribe},
		{Method: http.MethodDelete, Path: "/api/users/:id/subscribe", Policy: social, Handler: a.users.Unsubscribe},

		{Method: http.MethodPost, Path: "/api/auth/token/login", Policy: anyone, Handler: a.auth.Login},

		{Method: http.MethodGet, Path: "/health", Handler: a.health.Health},
		{Method: http.MethodGet, Path: "/metrics", Handler: gin.WrapH(promhttp.Handler())},
	}
}
