package api

import (
	"net/http"
	"strconv"

	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  service.IUserService
	social service.ISocialService
}

func NewUserHandler(users service.IUserService, social service.ISocialService) *UserHandler {
	return &UserHandler{users: users, social: social}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), service.RegisterInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.RegisteredUserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	users, err := h.users.List(c.Request.Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, users, userViewResponse))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userViewResponse(*user))
}

func (h *UserHandler) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	user, err := h.users.Get(c.Request.Context(), p, p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userViewResponse(*user))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	in := service.SetPasswordInput{CurrentPassword: req.CurrentPassword, NewPassword: req.NewPassword}
	if err := h.users.SetPassword(c.Request.Context(), middleware.PrincipalFrom(c), in); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	subs, err := h.social.Subscriptions(c.Request.Context(), middleware.PrincipalFrom(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, subs, subscriptionResponse))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	sub, err := h.social.Follow(c.Request.Context(), middleware.PrincipalFrom(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordEdge(metrics.EdgeFollow, true)
	c.JSON(http.StatusCreated, subscriptionResponse(*sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.social.Unfollow(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordEdge(metrics.EdgeFollow, false)
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=; absent means every recipe.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return -1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, service.ValidationError("recipes_limit", "must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
