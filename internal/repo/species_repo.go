// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Species
// catalog, including the idempotent startup seed.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
)

// ListSpecies returns the whole catalog ordered by common name.
func ListSpecies(ctx context.Context, db *gorm.DB) ([]domain.Species, error) {
	var out []domain.Species
	err := db.WithContext(ctx).Order("common_name asc").Find(&out).Error
	return out, err
}

// GetSpecies fetches one catalog entry by ID, or ErrNotFound if missing.
func GetSpecies(ctx context.Context, db *gorm.DB, id string) (*domain.Species, error) {
	var s domain.Species
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SearchSpecies matches the query case-insensitively against common and
// latin names. An empty query returns an empty slice.
func SearchSpecies(ctx context.Context, db *gorm.DB, query string) ([]domain.Species, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []domain.Species{}, nil
	}
	like := "%" + strings.ToLower(q) + "%"
	var out []domain.Species
	err := db.WithContext(ctx).
		Where("LOWER(common_name) LIKE ? OR LOWER(latin_name) LIKE ?", like, like).
		Order("common_name asc").
		Find(&out).Error
	return out, err
}

// CountSpecies returns the catalog size.
func CountSpecies(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Species{}).Count(&total).Error
	return total, err
}

// seedSpecies is the built-in catalog inserted on first startup. Base
// intervals are a summer-neutral baseline; the per-species winter/summer
// multipliers carry the seasonal variation.
var seedSpecies = []domain.Species{
	{CommonName: "Monstera", LatinName: "Monstera deliciosa", WateringFrequencyDays: 7, WateringWinterMultiplier: 1.5, WateringSummerMultiplier: 0.8, LightRequirement: "bright-indirect", CareLevel: "easy"},
	{CommonName: "Snake Plant", LatinName: "Sansevieria trifasciata", WateringFrequencyDays: 14, WateringWinterMultiplier: 2.0, WateringSummerMultiplier: 1.0, LightRequirement: "low", CareLevel: "easy"},
	{CommonName: "Pothos", LatinName: "Epipremnum aureum", WateringFrequencyDays: 7, WateringWinterMultiplier: 1.5, WateringSummerMultiplier: 0.85, LightRequirement: "medium", CareLevel: "easy"},
	{CommonName: "Peace Lily", LatinName: "Spathiphyllum wallisii", WateringFrequencyDays: 5, WateringWinterMultiplier: 1.4, WateringSummerMultiplier: 0.8, LightRequirement: "medium", CareLevel: "medium"},
	{CommonName: "Fiddle Leaf Fig", LatinName: "Ficus lyrata", WateringFrequencyDays: 7, WateringWinterMultiplier: 1.6, WateringSummerMultiplier: 0.9, LightRequirement: "bright-indirect", CareLevel: "hard"},
	{CommonName: "Spider Plant", LatinName: "Chlorophytum comosum", WateringFrequencyDays: 7, WateringWinterMultiplier: 1.5, WateringSummerMultiplier: 0.85, LightRequirement: "medium", CareLevel: "easy"},
	{CommonName: "Rubber Plant", LatinName: "Ficus elastica", WateringFrequencyDays: 8, WateringWinterMultiplier: 1.6, WateringSummerMultiplier: 0.9, LightRequirement: "bright-indirect", CareLevel: "medium"},
	{CommonName: "ZZ Plant", LatinName: "Zamioculcas zamiifolia", WateringFrequencyDays: 14, WateringWinterMultiplier: 2.0, WateringSummerMultiplier: 1.0, LightRequirement: "low", CareLevel: "easy"},
	{CommonName: "Aloe Vera", LatinName: "Aloe barbadensis", WateringFrequencyDays: 14, WateringWinterMultiplier: 2.0, WateringSummerMultiplier: 0.8, LightRequirement: "bright-direct", CareLevel: "easy"},
	{CommonName: "Orchid", LatinName: "Phalaenopsis amabilis", WateringFrequencyDays: 7, WateringWinterMultiplier: 1.3, WateringSummerMultiplier: 0.85, LightRequirement: "bright-indirect", CareLevel: "medium"},
	{CommonName: "Cactus", LatinName: "Cactaceae", WateringFrequencyDays: 21, WateringWinterMultiplier: 2.0, WateringSummerMultiplier: 0.75, LightRequirement: "bright-direct", CareLevel: "easy"},
	{CommonName: "Calathea", LatinName: "Calathea orbifolia", WateringFrequencyDays: 5, WateringWinterMultiplier: 1.4, WateringSummerMultiplier: 0.8, LightRequirement: "medium", CareLevel: "hard"},
}

// SeedSpecies inserts the built-in catalog when the species table is empty.
// Re-running it against a populated table is a no-op, so startup can call
// it unconditionally.
func SeedSpecies(ctx context.Context, db *gorm.DB) (int, error) {
	total, err := CountSpecies(ctx, db)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([]domain.Species, len(seedSpecies))
	copy(rows, seedSpecies)
	for i := range rows {
		rows[i].ID = uuid.NewString()
		rows[i].CreatedAt = now
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
