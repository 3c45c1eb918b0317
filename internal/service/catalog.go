package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagInput carries the writable fields of a tag.
type TagInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"required,max=200,slug"`
}

// IngredientInput carries the writable fields of an ingredient.
type IngredientInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

// CatalogService manages tags and ingredients.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListTags returns every tag ordered by name. Tags are not paginated.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "tag")
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	in.Color = strings.ToUpper(in.Color)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	tag := models.Tag{Name: in.Name, Color: in.Color, Slug: in.Slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, id uuid.UUID, in TagInput) (*models.Tag, error) {
	in.Color = strings.ToUpper(in.Color)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, id); err != nil {
		return nil, err
	}
	tag.Name, tag.Color, tag.Slug = in.Name, in.Color, in.Slug
	if err := s.db.WithContext(ctx).Save(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return tag, nil
}

// DeleteTag removes the tag and detaches it from every recipe.
func (s *CatalogService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to detach tag: %w", err)
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete tag: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("tag")
		}
		return nil
	})
}

func (s *CatalogService) ensureSlugFree(ctx context.Context, slug string, except uuid.UUID) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Tag{}).Where("slug = ?", slug)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check tag slug: %w", err)
	}
	if count > 0 {
		return ConflictError("tag with slug %q already exists", slug)
	}
	return nil
}

// ListIngredients returns ingredients whose name starts with prefix, ignoring
// case, ordered by name. An empty prefix returns the whole catalog.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	q := s.db.WithContext(ctx).Order("name ASC")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "ingredient")
	}
	return &ingredient, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, in IngredientInput) (*models.Ingredient, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureIngredientNameFree(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	ingredient := models.Ingredient{Name: in.Name, MeasurementUnit: in.MeasurementUnit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return &ingredient, nil
}

func (s *CatalogService) UpdateIngredient(ctx context.Context, id uuid.UUID, in IngredientInput) (*models.Ingredient, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ingredient, err := s.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureIngredientNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}
	ingredient.Name, ingredient.MeasurementUnit = in.Name, in.MeasurementUnit
	if err := s.db.WithContext(ctx).Save(ingredient).Error; err != nil {
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	return ingredient, nil
}

// DeleteIngredient refuses to remove an ingredient that recipes still use.
func (s *CatalogService) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.IngredientRecord{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
			return fmt.Errorf("failed to check ingredient usage: %w", err)
		}
		if used > 0 {
			return ConflictError("ingredient is used by %d recipe(s)", used)
		}
		res := tx.Delete(&models.Ingredient{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete ingredient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("ingredient")
		}
		return nil
	})
}

// UpsertIngredients inserts missing ingredients and updates the unit of
// existing ones, matched by name. It returns how many rows were created.
func (s *CatalogService) UpsertIngredients(ctx context.Context, items []IngredientInput) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, in := range items {
			if err := validateStruct(in); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			var existing models.Ingredient
			err := tx.Where("name = ?", in.Name).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Ingredient{Name: in.Name, MeasurementUnit: in.MeasurementUnit}).Error; err != nil {
					return fmt.Errorf("failed to create ingredient %q: %w", in.Name, err)
				}
				created++
			case err != nil:
				return fmt.Errorf("failed to load ingredient %q: %w", in.Name, err)
			case existing.MeasurementUnit != in.MeasurementUnit:
				if err := tx.Model(&existing).Update("measurement_unit", in.MeasurementUnit).Error; err != nil {
					return fmt.Errorf("failed to update ingredient %q: %w", in.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// UpsertTags inserts missing tags and updates existing ones, matched by slug.
func (s *CatalogService) UpsertTags(ctx context.Context, items []TagInput) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, in := range items {
			in.Color = strings.ToUpper(in.Color)
			if err := validateStruct(in); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			var existing models.Tag
			err := tx.Where("slug = ?", in.Slug).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Tag{Name: in.Name, Color: in.Color, Slug: in.Slug}).Error; err != nil {
					return fmt.Errorf("failed to create tag %q: %w", in.Slug, err)
				}
				created++
			case err != nil:
				return fmt.Errorf("failed to load tag %q: %w", in.Slug, err)
			default:
				existing.Name, existing.Color = in.Name, in.Color
				if err := tx.Save(&existing).Error; err != nil {
					return fmt.Errorf("failed to update tag %q: %w", in.Slug, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *CatalogService) ensureIngredientNameFree(ctx context.Context, name string, except uuid.UUID) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("name = ?", name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ingredient name: %w", err)
	}
	if count > 0 {
		return ConflictError("ingredient %q already exists", name)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
