package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Limit: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Limit: MaxPageSize}, NewPage(3, 1000))
	assert.Equal(t, 20, NewPage(3, 10).Offset())
	assert.True(t, NewPage(1, 6).HasNext(7))
	assert.False(t, NewPage(2, 6).HasNext(12))
}

func TestErrorKinds(t *testing.T) {
	missing := MissingRelationError("favorite")
	assert.ErrorIs(t, missing, ErrNotFound)
	assert.ErrorIs(t, missing, ErrMissingRelation)
	assert.NotErrorIs(t, NotFoundError("recipe"), ErrMissingRelation)
	assert.Equal(t, "tags: must not be empty", ValidationError("tags", "must not be empty").Error())
	assert.Equal(t, KindConflict, KindOf(ConflictError("taken")))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))

	assert.ErrorIs(t, notFoundOr(gorm.ErrRecordNotFound, "tag"), ErrNotFound)
	assert.Equal(t, Kind(""), KindOf(notFoundOr(errors.New("io"), "tag")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestFirstMissing(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	id, ok := firstMissing([]uuid.UUID{a, b, c}, []uuid.UUID{c, a})
	assert.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = firstMissing([]uuid.UUID{a}, []uuid.UUID{a})
	assert.False(t, ok)
}

func TestValidateStructFieldPath(t *testing.T) {
	err := validateStruct(RecipeInput{
		Name:        "Soup",
		Text:        "Boil",
		CookingTime: 1,
		Tags:        []uuid.UUID{uuid.New()},
		Ingredients: []IngredientAmount{{ID: uuid.New(), Amount: 1}, {ID: uuid.New(), Amount: -1}},
	})
	var serr *Error
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "ingredients[1].amount", serr.Field)
	assert.Equal(t, "must be greater than 0", serr.Message)
}
