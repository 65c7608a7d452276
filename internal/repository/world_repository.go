package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
)

// WorldRepository handles storage of world records.
type WorldRepository struct {
	store store.Store
	table string
}

// NewWorldRepository creates a new instance of WorldRepository.
func NewWorldRepository(s store.Store, table string) *WorldRepository {
	return &WorldRepository{store: s, table: table}
}

func worldKey(id string) store.Key {
	return store.Key{PK: "WORLD#" + id, SK: "INFO"}
}

func worldFromItem(item store.Item) *models.World {
	return &models.World{
		ID:          store.String(item, "world_id"),
		HostID:      store.String(item, "host_id"),
		Name:        store.String(item, "name"),
		Description: store.String(item, "description"),
		CreatedAt:   store.String(item, "created_at"),
		UpdatedAt:   store.String(item, "updated_at"),
	}
}

// CreateWorld stores a new world, indexed by its host for listing.
func (r *WorldRepository) CreateWorld(ctx context.Context, world *models.World) (*models.World, error) {
	key := worldKey(world.ID)
	item := store.Item{
		store.AttrPK:      key.PK,
		store.AttrSK:      key.SK,
		store.AttrOwnerPK: "USER#" + world.HostID,
		store.AttrOwnerSK: key.PK,
		"world_id":        world.ID,
		"host_id":         world.HostID,
		"name":            world.Name,
		"description":     world.Description,
		"created_at":      world.CreatedAt,
		"updated_at":      world.UpdatedAt,
	}
	if err := r.store.PutItem(ctx, r.table, item); err != nil {
		logger.Log.WithError(err).WithField("world_id", world.ID).Error("Failed to create world")
		return nil, fmt.Errorf("failed to create world: %v", err)
	}

	logger.Log.WithField("world_id", world.ID).Info("World created successfully")
	return world, nil
}

// GetWorld fetches a world by its id.
func (r *WorldRepository) GetWorld(ctx context.Context, id string) (*models.World, error) {
	item, err := r.store.GetItem(ctx, r.table, worldKey(id))
	if err != nil {
		return nil, err
	}
	return worldFromItem(item), nil
}

// ListWorldsByHost fetches every world hosted by a user.
func (r *WorldRepository) ListWorldsByHost(ctx context.Context, hostID string) ([]models.World, error) {
	items, err := r.store.Query(ctx, r.table, store.Query{
		Index:     store.IndexOwner,
		Partition: "USER#" + hostID,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("host_id", hostID).Error("Failed to list worlds by host")
		return nil, fmt.Errorf("failed to list worlds: %v", err)
	}

	worlds := make([]models.World, 0, len(items))
	for _, item := range items {
		if store.String(item, "world_id") == "" {
			continue
		}
		worlds = append(worlds, *worldFromItem(item))
	}
	return worlds, nil
}
