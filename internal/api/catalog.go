package api

import (
	"net/http"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves tags and ingredients. Lists are not paginated.
type CatalogHandler struct {
	catalog service.ICatalogService
}

func NewCatalogHandler(catalog service.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertAll(tags, tagResponse))
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagResponse(*tag))
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req types.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), service.TagInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tagResponse(*tag))
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	var req types.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.catalog.UpdateTag(c.Request.Context(), id, service.TagInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagResponse(*tag))
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "tag")
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListIngredients filters by a case-insensitive name prefix in ?name=.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertAll(ingredients, ingredientResponse))
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredientResponse(*ingredient))
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req types.IngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.catalog.CreateIngredient(c.Request.Context(), service.IngredientInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredientResponse(*ingredient))
}

func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	var req types.IngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.catalog.UpdateIngredient(c.Request.Context(), id, service.IngredientInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredientResponse(*ingredient))
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient")
	if !ok {
		return
	}
	if err := h.catalog.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func convertAll[T, R any](items []T, convert func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}
