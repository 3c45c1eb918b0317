package service_test

import (
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	recipes  *service.RecipeService
	social   *service.SocialService
	catalog  *service.CatalogService
	users    *service.UserService
	shopping *service.ShoppingService
	auth     *service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	enforcer := policy.MustNewEnforcer()
	images := storage.NewLocalStore(t.TempDir(), "/media")
	return &fixture{
		db:       db,
		recipes:  service.NewRecipeService(db, images, policy.NewAuthorOrReadOnly(enforcer)),
		social:   service.NewSocialService(db),
		catalog:  service.NewCatalogService(db),
		users:    service.NewUserService(db),
		shopping: service.NewShoppingService(db),
		auth:     service.NewAuthService(db, "test-secret", 0),
	}
}

func as(u *models.User) policy.Principal {
	return service.PrincipalOf(u)
}
