package user

import (
	"context"
	"testing"

	apperrors "codeclinic/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Create(t *testing.T) {
	store := NewStore(nil)

	profile, err := store.Create(context.Background(), &CreateRequest{
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "ada", profile.Username)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.False(t, profile.CreatedAt.IsZero())
}

func TestStore_Create_Validation(t *testing.T) {
	store := NewStore(nil)

	testCases := []struct {
		name string
		req  *CreateRequest
	}{
		{"Missing username", &CreateRequest{Email: "a@b.com"}},
		{"Missing email", &CreateRequest{Username: "ada"}},
		{"Whitespace only", &CreateRequest{Username: "  ", Email: "\t"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), tc.req)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
		})
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.Create(ctx, &CreateRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	// Same address with different casing is still a duplicate
	_, err = store.Create(ctx, &CreateRequest{Username: "ada2", Email: "Ada@Example.COM"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
}

func TestStore_GetAndGetByEmail(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Create(ctx, &CreateRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	byID, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byEmail, err := store.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(nil)

	_, err := store.Get(context.Background(), "missing")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)

	_, err = store.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestStore_List_OldestFirst(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first, err := store.Create(ctx, &CreateRequest{Username: "first", Email: "first@example.com"})
	require.NoError(t, err)
	second, err := store.Create(ctx, &CreateRequest{Username: "second", Email: "second@example.com"})
	require.NoError(t, err)

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, first.ID, profiles[0].ID)
	assert.Equal(t, second.ID, profiles[1].ID)
}
