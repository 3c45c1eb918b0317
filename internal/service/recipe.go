package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientAmount is one ingredient line of a recipe body.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount float64   `json:"amount" validate:"gt=0"`
}

// RecipeInput carries the writable fields of a recipe. Image is a base64 data
// URI; it is required on create and keeps the stored image when empty on update.
type RecipeInput struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"gt=0"`
	Image       string             `json:"image"`
	Tags        []uuid.UUID        `json:"tags" validate:"min=1,unique,dive,required"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"min=1,unique=ID,dive"`
}

// RecipeFilter narrows a recipe listing. Nil pointers mean "no filter".
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uuid.UUID
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// RecipeView is a recipe annotated for the viewer who asked for it.
type RecipeView struct {
	Recipe           models.Recipe
	AuthorSubscribed bool
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService handles recipe operations
type RecipeService struct {
	db      *gorm.DB
	images  storage.ImageStore
	objects policy.Policy
}

// NewRecipeService creates a new RecipeService instance. objects decides who
// may change an existing recipe.
func NewRecipeService(db *gorm.DB, images storage.ImageStore, objects policy.Policy) *RecipeService {
	return &RecipeService{
		db:      db,
		images:  images,
		objects: objects,
	}
}

// Create stores a recipe with its tags and ingredient amounts in one transaction.
func (s *RecipeService) Create(ctx context.Context, author policy.Principal, in RecipeInput) (*RecipeView, error) {
	if !author.Authenticated {
		return nil, AuthorizationError("authentication required")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, ValidationError("image", "this field is required")
	}
	img, err := decodeImage(in.Image)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, img.Data, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        in.Name,
		Image:       imageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceComponents(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", author.ID.String()).
		Msg("recipe created")
	return s.Get(ctx, author, recipe.ID)
}

// Update replaces the recipe's scalar fields, tags and ingredient amounts.
// Only the author or an admin may update.
func (s *RecipeService) Update(ctx context.Context, p policy.Principal, id uuid.UUID, in RecipeInput) (*RecipeView, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.objects.HasObjectPermission(p, http.MethodPatch, recipe.AuthorID) {
		return nil, AuthorizationError("only the author can change this recipe")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	var img *storage.Image
	if in.Image != "" {
		if img, err = decodeImage(in.Image); err != nil {
			return nil, err
		}
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         in.Name,
		"text":         in.Text,
		"cooking_time": in.CookingTime,
	}
	if img != nil {
		imageURL, err := s.images.Save(ctx, img.Data, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		updates["image"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Recipe
		lock := tx
		if tx.Dialector.Name() == "postgres" {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := lock.First(&locked, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "recipe")
		}
		if err := tx.Model(&locked).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return replaceComponents(tx, id, in)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("recipe_id", id.String()).Str("user_id", p.ID.String()).Msg("recipe updated")
	return s.Get(ctx, p, id)
}

// Delete removes the recipe and every row that references it.
func (s *RecipeService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.objects.HasObjectPermission(p, http.MethodDelete, recipe.AuthorID) {
		return AuthorizationError("only the author can delete this recipe")
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRecipes(tx, []uuid.UUID{id})
	}); err != nil {
		return err
	}
	logging.Info().Str("recipe_id", id.String()).Str("user_id", p.ID.String()).Msg("recipe deleted")
	return nil
}

// Get returns one recipe with author, tags and ingredients, annotated for viewer.
func (s *RecipeService) Get(ctx context.Context, viewer policy.Principal, id uuid.UUID) (*RecipeView, error) {
	var recipe models.Recipe
	if err := withDetails(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "recipe")
	}
	views, err := s.annotate(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a page of recipes, newest first. Favorite and cart filters
// apply to authenticated viewers only.
func (s *RecipeService) List(ctx context.Context, viewer policy.Principal, f RecipeFilter, page Page) (*Paged[RecipeView], error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Recipe{})

	if len(f.Tags) > 0 {
		tagged := db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if f.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if viewer.Authenticated {
		if f.IsFavorited != nil {
			q = filterByEdge(q, db.Model(&models.Favorite{}), viewer.ID, *f.IsFavorited)
		}
		if f.IsInShoppingCart != nil {
			q = filterByEdge(q, db.Model(&models.ShoppingListMembership{}), viewer.ID, *f.IsInShoppingCart)
		}
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := []models.Recipe{}
	err := withDetails(q).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := s.annotate(ctx, viewer, recipes)
	if err != nil {
		return nil, err
	}
	return &Paged[RecipeView]{Count: total, Page: page, Items: views}, nil
}

func (s *RecipeService) load(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "recipe")
	}
	return &recipe, nil
}

func (s *RecipeService) annotate(ctx context.Context, viewer policy.Principal, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = recipes[i]
	}
	if !viewer.Authenticated || len(recipes) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	authors := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authors[i] = r.AuthorID
	}

	db := s.db.WithContext(ctx)
	favorites, err := edgeSet(db.Model(&models.Favorite{}), "recipe_id", viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	cart, err := edgeSet(db.Model(&models.ShoppingListMembership{}), "recipe_id", viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	follows, err := edgeSet(db.Model(&models.Follow{}), "author_id", viewer.ID, authors)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].IsFavorited = favorites[views[i].Recipe.ID]
		views[i].IsInShoppingCart = cart[views[i].Recipe.ID]
		views[i].AuthorSubscribed = follows[views[i].Recipe.AuthorID]
	}
	return views, nil
}

// checkReferences fails with a ValidationError naming the first tag or
// ingredient id that does not exist.
func (s *RecipeService) checkReferences(ctx context.Context, in RecipeInput) error {
	db := s.db.WithContext(ctx)

	var tags []uuid.UUID
	if err := db.Model(&models.Tag{}).Where("id IN ?", in.Tags).Pluck("id", &tags).Error; err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	if id, ok := firstMissing(in.Tags, tags); ok {
		return ValidationError("tags", "tag %s does not exist", id)
	}

	wanted := make([]uuid.UUID, len(in.Ingredients))
	for i, ia := range in.Ingredients {
		wanted[i] = ia.ID
	}
	var ingredients []uuid.UUID
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", wanted).Pluck("id", &ingredients).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	if id, ok := firstMissing(wanted, ingredients); ok {
		return ValidationError("ingredients", "ingredient %s does not exist", id)
	}
	return nil
}

// replaceComponents inserts the tag and ingredient rows of in for recipeID.
// Callers clear the old rows first.
func replaceComponents(tx *gorm.DB, recipeID uuid.UUID, in RecipeInput) error {
	tags := make([]models.RecipeTag, len(in.Tags))
	for i, tagID := range in.Tags {
		tags[i] = models.RecipeTag{RecipeID: recipeID, TagID: tagID}
	}
	if err := tx.Omit(clause.Associations).Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}

	records := make([]models.IngredientRecord, len(in.Ingredients))
	for i, ia := range in.Ingredients {
		records[i] = models.IngredientRecord{RecipeID: recipeID, IngredientID: ia.ID, Amount: ia.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to attach ingredients: %w", err)
	}
	return nil
}

// deleteRecipes removes recipes and everything that references them.
func deleteRecipes(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	dependents := []interface{}{
		&models.IngredientRecord{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.ShoppingListMembership{},
	}
	for _, model := range dependents {
		if err := tx.Where("recipe_id IN ?", ids).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete %T rows: %w", model, err)
		}
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Recipe{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("recipe")
	}
	return nil
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").
		Preload("RecipeTags.Tag").
		Preload("IngredientRecords.Ingredient")
}

// filterByEdge keeps recipes that do (or do not) have an edge from userID in edges.
func filterByEdge(q, edges *gorm.DB, userID uuid.UUID, present bool) *gorm.DB {
	sub := edges.Select("recipe_id").Where("user_id = ?", userID)
	if present {
		return q.Where("recipes.id IN (?)", sub)
	}
	return q.Where("recipes.id NOT IN (?)", sub)
}

// edgeSet returns which of targets userID is linked to through column.
func edgeSet(edges *gorm.DB, column string, userID uuid.UUID, targets []uuid.UUID) (map[uuid.UUID]bool, error) {
	var linked []uuid.UUID
	if err := edges.Where("user_id = ?", userID).Where(column+" IN ?", targets).Pluck(column, &linked).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s links: %w", column, err)
	}
	set := make(map[uuid.UUID]bool, len(linked))
	for _, id := range linked {
		set[id] = true
	}
	return set, nil
}

func firstMissing(wanted, found []uuid.UUID) (uuid.UUID, bool) {
	have := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	for _, id := range wanted {
		if !have[id] {
			return id, true
		}
	}
	return uuid.Nil, false
}

func decodeImage(uri string) (*storage.Image, error) {
	img, err := storage.DecodeDataURI(uri)
	if errors.Is(err, storage.ErrInvalidImage) {
		return nil, ValidationError("image", "%s", err.Error())
	}
	return img, err
}
