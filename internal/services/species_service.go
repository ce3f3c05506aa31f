// Package services – SpeciesService
//
// Read-only access to the species catalog plus the idempotent startup seed.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/repo"
)

// SpeciesService provides catalog lookups for plant species.
type SpeciesService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewSpeciesService constructs a SpeciesService.
func NewSpeciesService(db *gorm.DB) *SpeciesService {
	return &SpeciesService{DB: db}
}

// List returns the full catalog.
func (s *SpeciesService) List(ctx context.Context) ([]domain.Species, error) {
	return repo.ListSpecies(ctx, s.DB)
}

// Get returns one species, mapping missing rows to ErrSpeciesNotFound.
func (s *SpeciesService) Get(ctx context.Context, id string) (*domain.Species, error) {
	sp, err := repo.GetSpecies(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSpeciesNotFound
	}
	return sp, err
}

// Search matches the query against common and latin names. Queries shorter
// than two characters are rejected.
func (s *SpeciesService) Search(ctx context.Context, query string) ([]domain.Species, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < 2 {
		return nil, ErrQueryTooShort
	}
	return repo.SearchSpecies(ctx, s.DB, q)
}

// Seed populates the catalog on first startup; a populated table is left
// untouched. Returns the number of rows inserted.
func (s *SpeciesService) Seed(ctx context.Context) (int, error) {
	return repo.SeedSpecies(ctx, s.DB)
}
