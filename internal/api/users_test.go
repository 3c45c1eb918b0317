package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/users", types.RegisterRequest{
		Email:     "carol@example.com",
		Username:  "carol",
		FirstName: "Carol",
		LastName:  "Cook",
		Password:  "s3cret-pass",
	}, nil)
	expectStatus(t, w, http.StatusCreated)
	registered := decode[types.RegisteredUserResponse](t, w)
	assert.Equal(t, "carol", registered.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = h.do(http.MethodPost, "/api/users", types.RegisterRequest{
		Email: "carol@example.com", Username: "carol2", FirstName: "C", LastName: "C", Password: "s3cret-pass",
	}, nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = h.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "carol@example.com", Password: "wrong"}, nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = h.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "carol@example.com", Password: "s3cret-pass"}, nil)
	expectStatus(t, w, http.StatusOK)
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	req := newRequest(http.MethodGet, "/api/users/me")
	req.Header.Set("Authorization", "Token "+token)
	w = serve(h, req)
	expectStatus(t, w, http.StatusOK)
	me := decode[types.UserResponse](t, w)
	assert.Equal(t, registered.ID, me.ID)
	assert.False(t, me.IsSubscribed)
}

func TestSetPasswordEndpoint(t *testing.T) {
	h := newHarness(t)
	alice := testhelpers.CreateUser(t, h.db, "alice")

	w := h.do(http.MethodPost, "/api/users/set_password", types.SetPasswordRequest{
		CurrentPassword: "wrong", NewPassword: "another-pass",
	}, alice)
	expectStatus(t, w, http.StatusBadRequest)

	w = h.do(http.MethodPost, "/api/users/set_password", types.SetPasswordRequest{
		CurrentPassword: testhelpers.Password, NewPassword: "another-pass",
	}, alice)
	expectStatus(t, w, http.StatusNoContent)

	w = h.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: alice.Email, Password: "another-pass"}, nil)
	expectStatus(t, w, http.StatusOK)
}

func TestSubscribeEndpoints(t *testing.T) {
	h := newHarness(t)
	alice := testhelpers.CreateUser(t, h.db, "alice")
	bob := testhelpers.CreateUser(t, h.db, "bob")
	lunch := testhelpers.CreateTag(t, h.db, "lunch")
	salt := testhelpers.CreateIngredient(t, h.db, "Salt", "g")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, h.db, bob, fmt.Sprintf("Soup %d", i), []*models.Tag{lunch}, testhelpers.Amount{Ingredient: salt, Amount: 1})
	}
	path := "/api/users/" + bob.ID.String() + "/subscribe"

	w := h.do(http.MethodPost, path+"?recipes_limit=2", nil, alice)
	expectStatus(t, w, http.StatusCreated)
	sub := decode[types.SubscriptionResponse](t, w)
	assert.Equal(t, "bob", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 3, sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	expectStatus(t, h.do(http.MethodPost, path, nil, alice), http.StatusBadRequest)
	expectStatus(t, h.do(http.MethodPost, "/api/users/"+alice.ID.String()+"/subscribe", nil, alice), http.StatusBadRequest)
	expectStatus(t, h.do(http.MethodPost, path+"?recipes_limit=-1", nil, alice), http.StatusBadRequest)

	w = h.do(http.MethodGet, "/api/users/"+bob.ID.String(), nil, alice)
	expectStatus(t, w, http.StatusOK)
	assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)

	w = h.do(http.MethodGet, "/api/users/subscriptions", nil, alice)
	expectStatus(t, w, http.StatusOK)
	page := decode[types.PageResponse[types.SubscriptionResponse]](t, w)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 3)

	w = h.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=0", nil, alice)
	page = decode[types.PageResponse[types.SubscriptionResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Empty(t, page.Results[0].Recipes)
	assert.EqualValues(t, 3, page.Results[0].RecipesCount)

	expectStatus(t, h.do(http.MethodDelete, path, nil, alice), http.StatusNoContent)
	expectStatus(t, h.do(http.MethodDelete, path, nil, alice), http.StatusBadRequest)
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t)
	alice := testhelpers.CreateUser(t, h.db, "alice")
	admin := testhelpers.CreateAdmin(t, h.db, "root")
	testhelpers.CreateIngredient(t, h.db, "Salt", "g")
	testhelpers.CreateIngredient(t, h.db, "Sugar", "g")
	testhelpers.CreateIngredient(t, h.db, "Flour", "g")

	w := h.do(http.MethodGet, "/api/ingredients?name=s", nil, nil)
	expectStatus(t, w, http.StatusOK)
	found := decode[[]types.IngredientResponse](t, w)
	require.Len(t, found, 2)
	assert.Equal(t, "Salt", found[0].Name)

	tag := types.TagRequest{Name: "Dinner", Color: "#123ABC", Slug: "dinner"}
	expectStatus(t, h.do(http.MethodPost, "/api/tags", tag, alice), http.StatusForbidden)

	w = h.do(http.MethodPost, "/api/tags", tag, admin)
	expectStatus(t, w, http.StatusCreated)
	created := decode[types.TagResponse](t, w)
	assert.Equal(t, "dinner", created.Slug)

	w = h.do(http.MethodPost, "/api/tags", tag, admin)
	expectStatus(t, w, http.StatusBadRequest)

	w = h.do(http.MethodGet, "/api/tags", nil, nil)
	expectStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]types.TagResponse](t, w), 1)

	w = h.do(http.MethodPost, "/api/tags", types.TagRequest{Name: "Bad", Color: "red", Slug: "bad"}, admin)
	expectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "color", decode[middleware.ErrorResponse](t, w).Field)

	expectStatus(t, h.do(http.MethodDelete, "/api/tags/"+created.ID.String(), nil, admin), http.StatusNoContent)
	expectStatus(t, h.do(http.MethodGet, "/api/tags/"+created.ID.String(), nil, nil), http.StatusNotFound)
}
