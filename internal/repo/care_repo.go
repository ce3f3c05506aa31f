// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only CareAction log.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
)

// CreateCareAction appends a care event to a plant's log.
func CreateCareAction(ctx context.Context, db *gorm.DB, plantID, userID string, actionType domain.ActionType, notes *string) (*domain.CareAction, error) {
	a := &domain.CareAction{
		ID:         uuid.NewString(),
		PlantID:    plantID,
		UserID:     userID,
		ActionType: actionType,
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListCareActions returns a plant's care history, newest first, capped at
// limit when limit > 0.
func ListCareActions(ctx context.Context, db *gorm.DB, plantID string, limit int) ([]domain.CareAction, error) {
	q := db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.CareAction
	err := q.Find(&out).Error
	return out, err
}

// CountCareActions returns the total log length for a plant, optionally
// filtered to a single action type (pass "" for all).
func CountCareActions(ctx context.Context, db *gorm.DB, plantID string, actionType domain.ActionType) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.CareAction{}).Where("plant_id = ?", plantID)
	if actionType != "" {
		q = q.Where("action_type = ?", actionType)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}
