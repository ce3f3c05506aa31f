// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Plant
// model, including the dispatcher's due-plant query.
//
// Ownership is enforced at this layer: every per-plant function takes the
// owning userID and scopes the query with it, so a caller can never reach
// another user's plant by guessing IDs.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
)

// CreatePlant inserts a new Plant row owned by userID. The plant ID is a
// randomly generated UUID and CreatedAt is set to UTC. The caller is
// expected to have applied defaults and validation already.
func CreatePlant(ctx context.Context, db *gorm.DB, p *domain.Plant) (*domain.Plant, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlant fetches a plant by ID scoped to its owner, preloading the
// species reference. Returns ErrNotFound when missing or owned by someone
// else.
func GetPlant(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Plant, error) {
	var p domain.Plant
	err := db.WithContext(ctx).
		Preload("Species").
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PlantOwned reports whether the plant exists and belongs to userID. Cheaper
// than GetPlant when the caller only needs an ownership check.
func PlantOwned(ctx context.Context, db *gorm.DB, id, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Plant{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&n).Error
	return n > 0, err
}

// ListPlants returns the user's plants ordered by urgency (nearest due date
// first, then newest). Archived plants are excluded unless includeArchived
// is set.
func ListPlants(ctx context.Context, db *gorm.DB, userID string, includeArchived bool) ([]domain.Plant, error) {
	q := db.WithContext(ctx).
		Preload("Species").
		Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var out []domain.Plant
	err := q.Order("next_watering_at asc").Order("created_at desc").Find(&out).Error
	return out, err
}

// UpdatePlantFields applies the given column map to a plant scoped to its
// owner. Returns ErrNotFound when no row matches.
func UpdatePlantFields(ctx context.Context, db *gorm.DB, id, userID string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Plant{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetWateringSchedule persists the derived schedule fields after a watering
// or a recompute. nextAt is required; lastAt may be nil when the recompute
// was triggered by a configuration change rather than a watering.
func SetWateringSchedule(ctx context.Context, db *gorm.DB, id string, lastAt *time.Time, nextAt time.Time) error {
	cols := map[string]any{"next_watering_at": nextAt}
	if lastAt != nil {
		cols["last_watered_at"] = *lastAt
	}
	res := db.WithContext(ctx).
		Model(&domain.Plant{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ArchivePlant soft-retires a plant from schedules and listings without
// deleting its history. Returns ErrNotFound when no row matches.
func ArchivePlant(ctx context.Context, db *gorm.DB, id, userID string) error {
	return UpdatePlantFields(ctx, db, id, userID, map[string]any{"is_archived": true})
}

// DeletePlant removes a plant; care actions and messages cascade with it.
// Returns ErrNotFound when no row matches.
func DeletePlant(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Plant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDuePlants returns every non-archived plant whose due date has passed
// and whose owner has notifications enabled, with owner and species
// preloaded. This is the bulk-reminder candidate query.
func ListDuePlants(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Plant, error) {
	var out []domain.Plant
	err := db.WithContext(ctx).
		Preload("Species").
		Preload("User").
		Joins("JOIN users ON users.id = plants.user_id").
		Where("plants.is_archived = ?", false).
		Where("plants.next_watering_at IS NOT NULL AND plants.next_watering_at <= ?", now).
		Where("users.notifications_enabled = ?", true).
		Where("users.deleted_at IS NULL").
		Find(&out).Error
	return out, err
}

// ListUserDuePlants returns one user's non-archived plants with a passed
// due date, most urgent first.
func ListUserDuePlants(ctx context.Context, db *gorm.DB, userID string, now time.Time) ([]domain.Plant, error) {
	var out []domain.Plant
	err := db.WithContext(ctx).
		Preload("Species").
		Where("user_id = ? AND is_archived = ?", userID, false).
		Where("next_watering_at IS NOT NULL AND next_watering_at <= ?", now).
		Order("next_watering_at asc").
		Find(&out).Error
	return out, err
}
