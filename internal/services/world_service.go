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
	"github.com/Dias221467/World_Chronicle/pkg/logger"
)

// WorldService handles worlds and the membership workflow: request-join
// creates a pending affiliation, approval by the host activates it.
type WorldService struct {
	worldRepo       *repository.WorldRepository
	affiliationRepo *repository.AffiliationRepository
	characterRepo   *repository.CharacterRepository
}

// NewWorldService creates a new instance of WorldService.
func NewWorldService(worldRepo *repository.WorldRepository, affiliationRepo *repository.AffiliationRepository, characterRepo *repository.CharacterRepository) *WorldService {
	return &WorldService{
		worldRepo:       worldRepo,
		affiliationRepo: affiliationRepo,
		characterRepo:   characterRepo,
	}
}

// CreateWorld stores a new world hosted by the actor.
func (s *WorldService) CreateWorld(ctx context.Context, actorID, name, description string) (*models.World, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := models.FormatTime(time.Now())
	world := &models.World{
		ID:          newID(),
		HostID:      actorID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.worldRepo.CreateWorld(ctx, world)
	if err != nil {
		return nil, apperrors.Internal("failed to create world", err)
	}
	return created, nil
}

// GetWorld fetches a world by id.
func (s *WorldService) GetWorld(ctx context.Context, id string) (*models.World, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("world_id is required")
	}

	world, err := s.worldRepo.GetWorld(ctx, id)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("world not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load world", err)
	}
	return world, nil
}

// RequestJoinWorld asks membership for a character the actor owns. Repeating
// the request returns the existing affiliation instead of creating a second
// membership for the same character.
func (s *WorldService) RequestJoinWorld(ctx context.Context, actorID, worldID, characterID string) (*models.Affiliation, error) {
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return nil, apperrors.InvalidInput("world_id is required")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return nil, apperrors.InvalidInput("character_id is required")
	}

	world, err := s.worldRepo.GetWorld(ctx, worldID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("world not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load world", err)
	}

	character, err := s.characterRepo.GetCharacter(ctx, characterID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("character not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load character", err)
	}
	if character.OwnerID != actorID {
		return nil, apperrors.Forbidden("you do not own this character")
	}

	existing, err := s.affiliationRepo.GetAffiliationByMembership(ctx, world.ID, character.ID)
	if err == nil {
		logger.Log.WithField("affiliation_id", existing.ID).Info("Join request repeated, returning existing affiliation")
		return existing, nil
	}
	if !errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.Internal("failed to check membership", err)
	}

	now := models.FormatTime(time.Now())
	affiliation := &models.Affiliation{
		ID:          newID(),
		WorldID:     world.ID,
		CharacterID: character.ID,
		OwnerID:     actorID,
		Status:      models.AffiliationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.affiliationRepo.CreateAffiliation(ctx, affiliation)
	if err != nil {
		return nil, apperrors.Internal("failed to create affiliation", err)
	}
	return created, nil
}

// ApproveAffiliation activates a pending affiliation. Only the world's host
// may approve.
func (s *WorldService) ApproveAffiliation(ctx context.Context, actorID, affiliationID string) (*models.Affiliation, error) {
	affiliationID = strings.TrimSpace(affiliationID)
	if affiliationID == "" {
		return nil, apperrors.InvalidInput("affiliation_id is required")
	}

	affiliation, err := s.affiliationRepo.GetAffiliation(ctx, affiliationID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("affiliation not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load affiliation", err)
	}

	world, err := s.worldRepo.GetWorld(ctx, affiliation.WorldID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("world not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load world", err)
	}
	if world.HostID != actorID {
		return nil, apperrors.Forbidden("only the host can approve affiliations")
	}

	affiliation.UpdatedAt = models.FormatTime(time.Now())
	updated, err := s.affiliationRepo.UpdateAffiliationStatus(ctx, affiliation, models.AffiliationActive)
	if err != nil {
		return nil, apperrors.Internal("failed to approve affiliation", err)
	}

	logger.Log.WithField("affiliation_id", affiliationID).Info("Affiliation approved")
	return updated, nil
}

// ListWorldsByHost fetches every world the actor hosts.
func (s *WorldService) ListWorldsByHost(ctx context.Context, hostID string) ([]models.World, error) {
	worlds, err := s.worldRepo.ListWorldsByHost(ctx, hostID)
	if err != nil {
		return nil, apperrors.Internal("failed to list worlds", err)
	}
	return worlds, nil
}
