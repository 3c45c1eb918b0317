package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidToken is returned for malformed, expired or revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "foodgram"

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ValidationError("", "unable to log in with provided credentials")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return "", ValidationError("", "unable to log in with provided credentials")
	}

	return s.GenerateToken(&user)
}

// GenerateToken signs an HS256 token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ResolvePrincipal turns a token into the principal of its user. A token for
// a deleted user is invalid.
func (s *AuthService) ResolvePrincipal(ctx context.Context, tokenString string) (policy.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return policy.Anonymous(), err
	}
	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.Anonymous(), fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	if err != nil {
		return policy.Anonymous(), fmt.Errorf("failed to load user: %w", err)
	}
	return PrincipalOf(&user), nil
}

// PrincipalOf returns the authenticated principal of user.
func PrincipalOf(user *models.User) policy.Principal {
	return policy.Principal{
		ID:            user.ID,
		Username:      user.Username,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
		Authenticated: true,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
