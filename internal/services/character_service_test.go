package services

import (
	"context"
	"testing"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCharacterService() *CharacterService {
	mem := store.NewMemoryStore(testTable)
	return NewCharacterService(repository.NewCharacterRepository(mem, testTable))
}

func TestCreateCharacter_RequiresName(t *testing.T) {
	s := newCharacterService()

	_, err := s.CreateCharacter(context.Background(), "user-1", "  ", "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestCreateCharacter_ListedByOwner(t *testing.T) {
	s := newCharacterService()
	ctx := context.Background()

	created, err := s.CreateCharacter(ctx, "user-1", "Maro", "A wandering scribe.", "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = s.CreateCharacter(ctx, "user-2", "Ila", "", "")
	require.NoError(t, err)

	characters, err := s.ListCharacters(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "Maro", characters[0].Name)
}

func TestUpdateCharacter_PartialAndOwned(t *testing.T) {
	s := newCharacterService()
	ctx := context.Background()

	created, err := s.CreateCharacter(ctx, "user-1", "Maro", "A wandering scribe.", "")
	require.NoError(t, err)

	_, err = s.UpdateCharacter(ctx, "user-2", created.ID, "Stolen", "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	// Blank fields stay untouched.
	updated, err := s.UpdateCharacter(ctx, "user-1", created.ID, "", "Now a court scribe.", "")
	require.NoError(t, err)
	assert.Equal(t, "Maro", updated.Name)
	assert.Equal(t, "Now a court scribe.", updated.Bio)
}

func TestGetCharacter_Missing(t *testing.T) {
	s := newCharacterService()

	_, err := s.GetCharacter(context.Background(), "char-missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
