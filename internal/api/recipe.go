package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/shoppinglist"
	"github.com/foodgram/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecipeHandler struct {
	recipes  service.IRecipeService
	social   service.ISocialService
	shopping service.IShoppingService
}

func NewRecipeHandler(recipes service.IRecipeService, social service.ISocialService, shopping service.IShoppingService) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		social:   social,
		shopping: shopping,
	}
}

// ListRecipes supports ?tags=slug (repeatable), ?author=id, ?is_favorited=0|1,
// ?is_in_shopping_cart=0|1 and page/limit pagination.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, ok := recipeFilter(c)
	if !ok {
		return
	}
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	recipes, err := h.recipes.List(c.Request.Context(), middleware.PrincipalFrom(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, recipes, recipeResponse))
}

func recipeFilter(c *gin.Context) (service.RecipeFilter, bool) {
	var f service.RecipeFilter
	f.Tags = c.QueryArray("tags")
	if raw := c.Query("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, service.ValidationError("author", "must be a user id"))
			return f, false
		}
		f.AuthorID = &id
	}
	var ok bool
	if f.IsFavorited, ok = boolQuery(c, "is_favorited"); !ok {
		return f, false
	}
	if f.IsInShoppingCart, ok = boolQuery(c, "is_in_shopping_cart"); !ok {
		return f, false
	}
	return f, true
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(*recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), middleware.PrincipalFrom(c), recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeResponse(*recipe))
}

// UpdateRecipe replaces the tags and ingredients of a recipe. The image may
// be omitted to keep the current one.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(*recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipeInput(req types.RecipeRequest) service.RecipeInput {
	ingredients := make([]service.IngredientAmount, len(req.Ingredients))
	for i, ia := range req.Ingredients {
		ingredients[i] = service.IngredientAmount{ID: ia.ID, Amount: ia.Amount}
	}
	return service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Tags:        req.Tags,
		Ingredients: ingredients,
	}
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addEdge(c, metrics.EdgeFavorite, h.social.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeEdge(c, metrics.EdgeFavorite, h.social.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addEdge(c, metrics.EdgeCart, h.social.AddToShoppingList)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeEdge(c, metrics.EdgeCart, h.social.RemoveFromShoppingList)
}

func (h *RecipeHandler) addEdge(c *gin.Context, edge string, add func(context.Context, policy.Principal, uuid.UUID) (*models.Recipe, error)) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordEdge(edge, true)
	c.JSON(http.StatusCreated, recipeShortResponse(*recipe))
}

func (h *RecipeHandler) removeEdge(c *gin.Context, edge string, remove func(context.Context, policy.Principal, uuid.UUID) error) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordEdge(edge, false)
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart renders the caller's shopping list as an attachment.
// ?format=csv selects CSV; plain text is the default.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	format, err := shoppinglist.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, service.ValidationError("format", "must be txt or csv"))
		return
	}
	p := middleware.PrincipalFrom(c)
	lines, err := h.shopping.Report(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, lines); err != nil {
		respondError(c, fmt.Errorf("failed to render shopping list: %w", err))
		return
	}
	metrics.RecordDownload(string(format))
	logging.Ctx(c.Request.Context()).Info().
		Str("user_id", p.ID.String()).
		Int("lines", len(lines)).
		Str("format", string(format)).
		Msg("shopping list downloaded")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
