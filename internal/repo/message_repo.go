// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for generated
// plant messages.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
)

// CreatePlantMessage inserts a generated message addressed to the plant's
// owner.
func CreatePlantMessage(ctx context.Context, db *gorm.DB, plantID string, messageType domain.MessageType, content string) (*domain.PlantMessage, error) {
	m := &domain.PlantMessage{
		ID:          uuid.NewString(),
		PlantID:     plantID,
		MessageType: messageType,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListPlantMessages returns a plant's messages, newest first, capped at
// limit when limit > 0.
func ListPlantMessages(ctx context.Context, db *gorm.DB, plantID string, limit int) ([]domain.PlantMessage, error) {
	q := db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.PlantMessage
	err := q.Find(&out).Error
	return out, err
}

// MarkMessagesRead flags every unread message of a plant as read and
// returns how many rows changed.
func MarkMessagesRead(ctx context.Context, db *gorm.DB, plantID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.PlantMessage{}).
		Where("plant_id = ? AND is_read = ?", plantID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnreadMessages returns the number of unread messages for a plant.
func CountUnreadMessages(ctx context.Context, db *gorm.DB, plantID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PlantMessage{}).
		Where("plant_id = ? AND is_read = ?", plantID, false).
		Count(&total).Error
	return total, err
}
