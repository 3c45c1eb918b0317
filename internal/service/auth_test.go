package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, f.db, "alice")

	token, err := f.auth.Login(ctx, "ALICE@example.com", testhelpers.Password)
	require.NoError(t, err)

	claims, err := f.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "foodgram", claims.Issuer)

	_, err = f.auth.Login(ctx, alice.Email, "wrong-password")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.auth.Login(ctx, "nobody@example.com", testhelpers.Password)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestResolvePrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testhelpers.CreateAdmin(t, f.db, "root")

	token, err := f.auth.GenerateToken(admin)
	require.NoError(t, err)

	p, err := f.auth.ResolvePrincipal(ctx, token)
	require.NoError(t, err)
	assert.True(t, p.Authenticated)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, admin.ID, p.ID)

	ghost := &models.User{ID: uuid.New(), Username: "ghost"}
	token, err = f.auth.GenerateToken(ghost)
	require.NoError(t, err)
	p, err = f.auth.ResolvePrincipal(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	assert.False(t, p.Authenticated)
}

func TestValidateTokenRejects(t *testing.T) {
	f := newFixture(t)
	alice := testhelpers.CreateUser(t, f.db, "alice")

	other := service.NewAuthService(f.db, "another-secret", time.Hour)
	foreign, err := other.GenerateToken(alice)
	require.NoError(t, err)

	expired, err := service.NewAuthService(f.db, "test-secret", time.Nanosecond).GenerateToken(alice)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: "foodgram"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     none,
	} {
		_, err := f.auth.ValidateToken(token)
		assert.ErrorIs(t, err, service.ErrInvalidToken, name)
	}
}
