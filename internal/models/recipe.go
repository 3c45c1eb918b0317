package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is owned by its author. Tags and ingredient amounts live in the
// RecipeTag and IngredientRecord join rows.
type Recipe struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Image       string    `gorm:"size:512;not null" json:"image"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:cooking_time > 0" json:"cooking_time"`

	RecipeTags        []RecipeTag        `gorm:"foreignKey:RecipeID" json:"-"`
	IngredientRecords []IngredientRecord `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Tags returns the recipe's tags in the order they were attached.
func (r *Recipe) Tags() []Tag {
	tags := make([]Tag, 0, len(r.RecipeTags))
	for _, rt := range r.RecipeTags {
		tags = append(tags, rt.Tag)
	}
	return tags
}

// RecipeTag attaches a tag to a recipe.
type RecipeTag struct {
	ID       uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_tags_unique" json:"recipe_id"`
	TagID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_tags_unique;index" json:"tag_id"`
	Tag      Tag       `gorm:"foreignKey:TagID" json:"tag"`
}

func (rt *RecipeTag) BeforeCreate(tx *gorm.DB) error {
	assignID(&rt.ID)
	return nil
}

// IngredientRecord is the quantity of one ingredient used by one recipe.
type IngredientRecord struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredient_records_unique" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredient_records_unique;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
	Amount       float64    `gorm:"not null;check:amount > 0" json:"amount"`
}

func (ir *IngredientRecord) BeforeCreate(tx *gorm.DB) error {
	assignID(&ir.ID)
	return nil
}
