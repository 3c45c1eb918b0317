package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	t      *testing.T
	db     *gorm.DB
	auth   *service.AuthService
	engine *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	enforcer := policy.MustNewEnforcer()
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	images := storage.NewLocalStore(t.TempDir(), "/media")

	a := api.New(api.Services{
		Auth:     auth,
		Users:    service.NewUserService(db),
		Catalog:  service.NewCatalogService(db),
		Recipes:  service.NewRecipeService(db, images, policy.NewAuthorOrReadOnly(enforcer)),
		Social:   service.NewSocialService(db),
		Shopping: service.NewShoppingService(db),
	}, enforcer, api.Limiters{}, db, nil)

	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.Authenticate(auth))
	api.Register(engine, a.Routes())

	return &harness{t: t, db: db, auth: auth, engine: engine}
}

// do sends a JSON request, authenticated as user when user is not nil.
func (h *harness) do(method, path string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := h.auth.GenerateToken(user)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(h *harness, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}
