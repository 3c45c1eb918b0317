package service_test

import (
	"context"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lunch, err := f.catalog.CreateTag(ctx, service.TagInput{Name: "Lunch", Color: "#49b64e", Slug: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, "#49B64E", lunch.Color)

	_, err = f.catalog.CreateTag(ctx, service.TagInput{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"})
	require.NoError(t, err)

	_, err = f.catalog.CreateTag(ctx, service.TagInput{Name: "Again", Color: "#000000", Slug: "lunch"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.catalog.CreateTag(ctx, service.TagInput{Name: "Bad", Color: "red", Slug: "bad"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.catalog.CreateTag(ctx, service.TagInput{Name: "Bad", Color: "#000000", Slug: "no spaces"})
	assert.ErrorIs(t, err, service.ErrValidation)

	tags, err := f.catalog.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	updated, err := f.catalog.UpdateTag(ctx, lunch.ID, service.TagInput{Name: "Lunch", Color: "#000000", Slug: "lunch"})
	require.NoError(t, err, "a tag keeps its own slug")
	assert.Equal(t, "#000000", updated.Color)

	_, err = f.catalog.UpdateTag(ctx, lunch.ID, service.TagInput{Name: "Lunch", Color: "#000000", Slug: "breakfast"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.catalog.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteTagDetachesRecipes(t *testing.T) {
	w := newRecipeWorld(t)
	ctx := context.Background()
	soup := testhelpers.CreateRecipe(t, w.db, w.alice, "Soup", []*models.Tag{w.lunch, w.breakfast}, testhelpers.Amount{Ingredient: w.salt, Amount: 1})

	require.NoError(t, w.catalog.DeleteTag(ctx, w.lunch.ID))
	assert.ErrorIs(t, w.catalog.DeleteTag(ctx, w.lunch.ID), service.ErrNotFound)

	view, err := w.recipes.Get(ctx, as(w.alice), soup.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{w.breakfast.ID}, tagIDs(view.Recipe))
}

func TestListIngredientsByPrefix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Sugar", "salt", "Sour cream", "Milk", "50%_cream"} {
		testhelpers.CreateIngredient(t, f.db, name, "g")
	}

	names := func(prefix string) []string {
		t.Helper()
		items, err := f.catalog.ListIngredients(ctx, prefix)
		require.NoError(t, err)
		out := []string{}
		for _, i := range items {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Sour cream", "Sugar", "salt"}, names("s"))
	assert.Equal(t, []string{"Sour cream", "Sugar", "salt"}, names("S"))
	assert.Equal(t, []string{"Sugar"}, names("su"))
	assert.Empty(t, names("cream"), "matches the start of the name only")
	assert.Equal(t, []string{"50%_cream"}, names("50%_"))
	assert.Empty(t, names("5_"), "wildcards are literal")
	assert.Len(t, names(""), 5)
}

func TestIngredients(t *testing.T) {
	w := newRecipeWorld(t)
	ctx := context.Background()

	pepper, err := w.catalog.CreateIngredient(ctx, service.IngredientInput{Name: "Pepper", MeasurementUnit: "g"})
	require.NoError(t, err)

	_, err = w.catalog.CreateIngredient(ctx, service.IngredientInput{Name: "Pepper", MeasurementUnit: "pinch"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = w.catalog.CreateIngredient(ctx, service.IngredientInput{Name: "Pepper"})
	assert.ErrorIs(t, err, service.ErrValidation)

	updated, err := w.catalog.UpdateIngredient(ctx, pepper.ID, service.IngredientInput{Name: "Pepper", MeasurementUnit: "pinch"})
	require.NoError(t, err)
	assert.Equal(t, "pinch", updated.MeasurementUnit)

	testhelpers.CreateRecipe(t, w.db, w.alice, "Soup", []*models.Tag{w.lunch}, testhelpers.Amount{Ingredient: w.salt, Amount: 1})
	assert.ErrorIs(t, w.catalog.DeleteIngredient(ctx, w.salt.ID), service.ErrConflict, "ingredient in use")

	require.NoError(t, w.catalog.DeleteIngredient(ctx, pepper.ID))
	_, err = w.catalog.GetIngredient(ctx, pepper.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpsertCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testhelpers.CreateIngredient(t, f.db, "Salt", "g")

	created, err := f.catalog.UpsertIngredients(ctx, []service.IngredientInput{
		{Name: "Salt", MeasurementUnit: "kg"},
		{Name: "Milk", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	salt, err := f.catalog.ListIngredients(ctx, "salt")
	require.NoError(t, err)
	require.Len(t, salt, 1)
	assert.Equal(t, "kg", salt[0].MeasurementUnit)

	_, err = f.catalog.UpsertIngredients(ctx, []service.IngredientInput{{Name: "Broken"}})
	assert.ErrorIs(t, err, service.ErrValidation)

	created, err = f.catalog.UpsertTags(ctx, []service.TagInput{
		{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
		{Name: "Dinner", Color: "#8775d2", Slug: "dinner"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.catalog.UpsertTags(ctx, []service.TagInput{{Name: "Late lunch", Color: "#49B64E", Slug: "lunch"}})
	require.NoError(t, err)
	assert.Zero(t, created)

	tags, err := f.catalog.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Late lunch", tags[1].Name)
	assert.Equal(t, "#8775D2", tags[0].Color)
}
