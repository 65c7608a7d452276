package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
)

// CharacterRepository handles storage of character records.
type CharacterRepository struct {
	store store.Store
	table string
}

// NewCharacterRepository creates a new instance of CharacterRepository.
func NewCharacterRepository(s store.Store, table string) *CharacterRepository {
	return &CharacterRepository{store: s, table: table}
}

func characterKey(id string) store.Key {
	return store.Key{PK: "CHAR#" + id, SK: "INFO"}
}

func characterFromItem(item store.Item) *models.Character {
	return &models.Character{
		ID:        store.String(item, "character_id"),
		OwnerID:   store.String(item, "owner_id"),
		Name:      store.String(item, "name"),
		Bio:       store.String(item, "bio"),
		AvatarURL: store.String(item, "avatar_url"),
		CreatedAt: store.String(item, "created_at"),
		UpdatedAt: store.String(item, "updated_at"),
	}
}

// CreateCharacter stores a new character, indexed by its owner for listing.
func (r *CharacterRepository) CreateCharacter(ctx context.Context, character *models.Character) (*models.Character, error) {
	key := characterKey(character.ID)
	item := store.Item{
		store.AttrPK:      key.PK,
		store.AttrSK:      key.SK,
		store.AttrOwnerPK: "USER#" + character.OwnerID,
		store.AttrOwnerSK: key.PK,
		"character_id":    character.ID,
		"owner_id":        character.OwnerID,
		"name":            character.Name,
		"bio":             character.Bio,
		"avatar_url":      character.AvatarURL,
		"created_at":      character.CreatedAt,
		"updated_at":      character.UpdatedAt,
	}
	if err := r.store.PutItem(ctx, r.table, item); err != nil {
		logger.Log.WithError(err).WithField("character_id", character.ID).Error("Failed to create character")
		return nil, fmt.Errorf("failed to create character: %v", err)
	}

	logger.Log.WithField("character_id", character.ID).Info("Character created successfully")
	return character, nil
}

// GetCharacter fetches a character by its id.
func (r *CharacterRepository) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	item, err := r.store.GetItem(ctx, r.table, characterKey(id))
	if err != nil {
		return nil, err
	}
	return characterFromItem(item), nil
}

// UpdateCharacterFields applies a partial attribute update to a character.
func (r *CharacterRepository) UpdateCharacterFields(ctx context.Context, id string, fields map[string]string) (*models.Character, error) {
	set := make(store.Item, len(fields))
	for name, value := range fields {
		set[name] = value
	}

	item, err := r.store.UpdateItem(ctx, r.table, characterKey(id), set, nil)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("character_id", id).Info("Character updated successfully")
	return characterFromItem(item), nil
}

// ListCharactersByOwner fetches every character a user owns.
func (r *CharacterRepository) ListCharactersByOwner(ctx context.Context, ownerID string) ([]models.Character, error) {
	items, err := r.store.Query(ctx, r.table, store.Query{
		Index:     store.IndexOwner,
		Partition: "USER#" + ownerID,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("owner_id", ownerID).Error("Failed to list characters by owner")
		return nil, fmt.Errorf("failed to list characters: %v", err)
	}

	characters := make([]models.Character, 0, len(items))
	for _, item := range items {
		if store.String(item, "character_id") == "" {
			continue
		}
		characters = append(characters, *characterFromItem(item))
	}
	return characters, nil
}
