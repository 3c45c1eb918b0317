package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// SetPasswordInput changes the caller's password.
type SetPasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// UserView is a user annotated for the viewer.
type UserView struct {
	User         models.User
	IsSubscribed bool
}

type UserService struct {
	db     *gorm.DB
	social *SocialService
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, social: NewSocialService(db)}
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, false)
}

// CreateAdmin creates an account with staff and superuser rights.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, true)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, admin bool) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hashed,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := edgeExists(tx, &models.User{}, "email = ?", in.Email)
		if err != nil {
			return err
		}
		if taken {
			return &Error{Kind: KindConflict, Field: "email", Message: "this email is already in use"}
		}
		if taken, err = edgeExists(tx, &models.User{}, "username = ?", in.Username); err != nil {
			return err
		}
		if taken {
			return &Error{Kind: KindConflict, Field: "username", Message: "this username is already taken"}
		}
		return createEdge(tx, &user, ConflictError("account already exists"))
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID.String()).Bool("admin", admin).Msg("user registered")
	return &user, nil
}

// Get returns a user annotated with whether viewer follows them.
func (s *UserService) Get(ctx context.Context, viewer policy.Principal, id uuid.UUID) (*UserView, error) {
	user, err := loadUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.social.IsSubscribed(ctx, viewer, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserView{User: *user, IsSubscribed: subscribed}, nil
}

// List returns a page of users ordered by username.
func (s *UserService) List(ctx context.Context, viewer policy.Principal, page Page) (*Paged[UserView], error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	users := []models.User{}
	if err := db.Order("username ASC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	views, err := s.annotate(ctx, viewer, users)
	if err != nil {
		return nil, err
	}
	return &Paged[UserView]{Count: total, Page: page, Items: views}, nil
}

// SetPassword replaces the caller's password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, p policy.Principal, in SetPasswordInput) error {
	if !p.Authenticated {
		return AuthorizationError("authentication required")
	}
	if err := validateStruct(in); err != nil {
		return err
	}
	user, err := loadUser(ctx, s.db, p.ID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, in.CurrentPassword) {
		return ValidationError("current_password", "invalid password")
	}
	hashed, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	logging.Info().Str("user_id", p.ID.String()).Msg("password changed")
	return nil
}

// FindByEmail loads a user by email address.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// Delete removes a user with their recipes, follows in both directions,
// favorites and cart.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipes []uuid.UUID
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", id).Pluck("id", &recipes).Error; err != nil {
			return fmt.Errorf("failed to load recipes: %w", err)
		}
		if err := deleteRecipes(tx, recipes); err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follows: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ShoppingListMembership{}).Error; err != nil {
			return fmt.Errorf("failed to delete shopping cart: %w", err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("user")
		}
		return nil
	})
}

func (s *UserService) annotate(ctx context.Context, viewer policy.Principal, users []models.User) ([]UserView, error) {
	views := make([]UserView, len(users))
	for i := range users {
		views[i].User = users[i]
	}
	if !viewer.Authenticated || len(users) == 0 {
		return views, nil
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	follows, err := edgeSet(s.db.WithContext(ctx).Model(&models.Follow{}), "author_id", viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].IsSubscribed = follows[views[i].User.ID]
	}
	return views, nil
}
