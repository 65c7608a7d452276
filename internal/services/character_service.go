package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/Dias221467/World_Chronicle/internal/store"
)

// CharacterService encapsulates the business logic for characters.
type CharacterService struct {
	repo *repository.CharacterRepository
}

// NewCharacterService creates a new instance of CharacterService.
func NewCharacterService(repo *repository.CharacterRepository) *CharacterService {
	return &CharacterService{repo: repo}
}

// CreateCharacter stores a new character owned by the actor.
func (s *CharacterService) CreateCharacter(ctx context.Context, actorID, name, bio, avatarURL string) (*models.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := models.FormatTime(time.Now())
	character := &models.Character{
		ID:        newID(),
		OwnerID:   actorID,
		Name:      name,
		Bio:       strings.TrimSpace(bio),
		AvatarURL: strings.TrimSpace(avatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.CreateCharacter(ctx, character)
	if err != nil {
		return nil, apperrors.Internal("failed to create character", err)
	}
	return created, nil
}

// GetCharacter fetches a character by id.
func (s *CharacterService) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("character_id is required")
	}

	character, err := s.repo.GetCharacter(ctx, id)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("character not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load character", err)
	}
	return character, nil
}

// UpdateCharacter applies a partial update to a character the actor owns.
// Empty fields are left untouched.
func (s *CharacterService) UpdateCharacter(ctx context.Context, actorID, id, name, bio, avatarURL string) (*models.Character, error) {
	character, err := s.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if character.OwnerID != actorID {
		return nil, apperrors.Forbidden("you do not own this character")
	}

	fields := map[string]string{
		"updated_at": models.FormatTime(time.Now()),
	}
	if name = strings.TrimSpace(name); name != "" {
		fields["name"] = name
	}
	if bio = strings.TrimSpace(bio); bio != "" {
		fields["bio"] = bio
	}
	if avatarURL = strings.TrimSpace(avatarURL); avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}

	updated, err := s.repo.UpdateCharacterFields(ctx, id, fields)
	if err != nil {
		return nil, apperrors.Internal("failed to update character", err)
	}
	return updated, nil
}

// ListCharacters fetches every character a user owns.
func (s *CharacterService) ListCharacters(ctx context.Context, ownerID string) ([]models.Character, error) {
	characters, err := s.repo.ListCharactersByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("failed to list characters", err)
	}
	return characters, nil
}
