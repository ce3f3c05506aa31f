// Package services – PlantService
//
// This file implements PlantService, the application-level component that
// owns the plant lifecycle: creation with an initial schedule, partial
// updates with schedule recomputation, archiving and deletion, and the care
// log. Recording a watering is the one care action with side effects: it
// advances the schedule and makes the plant say thanks, atomically.
//
// Observability: the write paths are OpenTelemetry-instrumented; spans
// include plant/user identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/plantmsg"
	"github.com/verdant/go-plant-backend/internal/repo"
	"github.com/verdant/go-plant-backend/internal/watering"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PlantCreate is the input for creating a plant. Optional fields fall back
// to defaults (medium pot, friendly personality, acquisition = now).
type PlantCreate struct {
	Nickname           string
	SpeciesID          *string
	CustomSpecies      *string
	Location           *string
	PotSize            domain.PotSize
	Personality        domain.Personality
	CustomWateringDays *int
	AcquiredAt         *time.Time
}

// PlantUpdate is a partial update over a plant's configuration. Nil fields
// are left untouched; ClearSpecies and ClearCustomInterval explicitly null
// their targets. Changing the species, pot size, or custom interval
// recomputes the due date.
type PlantUpdate struct {
	Nickname            *string
	SpeciesID           *string
	ClearSpecies        bool
	CustomSpecies       *string
	Location            *string
	PotSize             *domain.PotSize
	Personality         *domain.Personality
	CustomWateringDays  *int
	ClearCustomInterval bool
	IsArchived          *bool
}

// CareInput is the payload for recording a care action.
type CareInput struct {
	ActionType domain.ActionType
	Notes      *string
}

// PlantWithStatus pairs a plant with its computed watering status for
// presentation.
type PlantWithStatus struct {
	domain.Plant
	WateringStatus watering.StatusInfo `json:"watering_status"`
}

// PlantService coordinates plant persistence, schedule computation, and
// generated messages.
type PlantService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Now supplies the current time; defaults to time.Now via NewPlantService.
	// Injected so schedule computation is testable.
	Now func() time.Time
}

// NewPlantService constructs a PlantService on the given handle.
func NewPlantService(db *gorm.DB) *PlantService {
	return &PlantService{DB: db, Now: time.Now}
}

func (s *PlantService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// withStatus wraps a plant with its status as of now.
func (s *PlantService) withStatus(p domain.Plant) PlantWithStatus {
	return PlantWithStatus{Plant: p, WateringStatus: watering.Status(p.NextWateringAt, s.now())}
}

// resolveSpecies loads the referenced species, mapping missing rows to
// ErrSpeciesNotFound. A nil id resolves to (nil, nil).
func (s *PlantService) resolveSpecies(ctx context.Context, id *string) (*domain.Species, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	sp, err := repo.GetSpecies(ctx, s.DB, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSpeciesNotFound
	}
	return sp, err
}

// validateCreate normalizes and validates creation input in place.
func validateCreate(in *PlantCreate) error {
	in.Nickname = strings.TrimSpace(in.Nickname)
	if in.Nickname == "" {
		return ErrNicknameRequired
	}
	if in.PotSize == "" {
		in.PotSize = domain.PotMedium
	}
	if !in.PotSize.Valid() {
		return ErrInvalidPotSize
	}
	if in.Personality == "" {
		in.Personality = domain.PersonalityFriendly
	}
	if !in.Personality.Valid() {
		return ErrInvalidPersonality
	}
	if in.CustomWateringDays != nil && *in.CustomWateringDays < 1 {
		return ErrInvalidInterval
	}
	return nil
}

// Create validates input, persists the plant with an initial due date
// computed as of now, and records the plant's greeting message, all in one
// transaction.
func (s *PlantService) Create(ctx context.Context, userID string, in PlantCreate) (*PlantWithStatus, error) {
	tr := otel.Tracer("services/PlantService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	species, err := s.resolveSpecies(ctx, in.SpeciesID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acquired := now
	if in.AcquiredAt != nil {
		acquired = *in.AcquiredAt
	}

	plant := domain.Plant{
		UserID:             userID,
		SpeciesID:          in.SpeciesID,
		Nickname:           in.Nickname,
		CustomSpecies:      in.CustomSpecies,
		Location:           in.Location,
		PotSize:            in.PotSize,
		Personality:        in.Personality,
		CustomWateringDays: in.CustomWateringDays,
		AcquiredAt:         acquired,
	}
	next := watering.NextWateringDate(&plant, species, now, now)
	plant.NextWateringAt = &next

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreatePlant(ctx, tx, &plant)
		if err != nil {
			return err
		}
		greeting := plantmsg.Greeting(created.Personality)
		_, err = repo.CreatePlantMessage(ctx, tx, created.ID, domain.MessageGreeting, greeting)
		return err
	})
	if err != nil {
		return nil, err
	}

	plant.Species = species
	out := s.withStatus(plant)
	return &out, nil
}

// Get returns one of the user's plants with its computed status.
func (s *PlantService) Get(ctx context.Context, userID, plantID string) (*PlantWithStatus, error) {
	p, err := repo.GetPlant(ctx, s.DB, plantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}
	out := s.withStatus(*p)
	return &out, nil
}

// List returns the user's plants, most urgent first, each with its status.
func (s *PlantService) List(ctx context.Context, userID string, includeArchived bool) ([]PlantWithStatus, error) {
	plants, err := repo.ListPlants(ctx, s.DB, userID, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]PlantWithStatus, 0, len(plants))
	for _, p := range plants {
		out = append(out, s.withStatus(p))
	}
	return out, nil
}

// NeedingWater returns the user's plants whose due date has passed.
func (s *PlantService) NeedingWater(ctx context.Context, userID string) ([]PlantWithStatus, error) {
	plants, err := repo.ListUserDuePlants(ctx, s.DB, userID, s.now())
	if err != nil {
		return nil, err
	}
	out := make([]PlantWithStatus, 0, len(plants))
	for _, p := range plants {
		out = append(out, s.withStatus(p))
	}
	return out, nil
}

// Update applies a partial configuration update. When a field affecting the
// interval changes (custom interval, species, pot size), the due date is
// recomputed anchored at the last watering (or now for a never-watered
// plant), inside the same transaction as the field update.
func (s *PlantService) Update(ctx context.Context, userID, plantID string, upd PlantUpdate) (*PlantWithStatus, error) {
	tr := otel.Tracer("services/PlantService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("plant.id", plantID),
		),
	)
	defer span.End()

	cols := map[string]any{}
	reschedule := false

	if upd.Nickname != nil {
		nick := strings.TrimSpace(*upd.Nickname)
		if nick == "" {
			return nil, ErrNicknameRequired
		}
		cols["nickname"] = nick
	}
	if upd.ClearSpecies {
		cols["species_id"] = nil
		reschedule = true
	} else if upd.SpeciesID != nil {
		if _, err := s.resolveSpecies(ctx, upd.SpeciesID); err != nil {
			return nil, err
		}
		cols["species_id"] = *upd.SpeciesID
		reschedule = true
	}
	if upd.CustomSpecies != nil {
		cols["custom_species"] = *upd.CustomSpecies
	}
	if upd.Location != nil {
		cols["location"] = *upd.Location
	}
	if upd.PotSize != nil {
		if !upd.PotSize.Valid() {
			return nil, ErrInvalidPotSize
		}
		cols["pot_size"] = *upd.PotSize
		reschedule = true
	}
	if upd.Personality != nil {
		if !upd.Personality.Valid() {
			return nil, ErrInvalidPersonality
		}
		cols["personality"] = *upd.Personality
	}
	if upd.ClearCustomInterval {
		cols["custom_watering_days"] = nil
		reschedule = true
	} else if upd.CustomWateringDays != nil {
		if *upd.CustomWateringDays < 1 {
			return nil, ErrInvalidInterval
		}
		cols["custom_watering_days"] = *upd.CustomWateringDays
		reschedule = true
	}
	if upd.IsArchived != nil {
		cols["is_archived"] = *upd.IsArchived
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdatePlantFields(ctx, tx, plantID, userID, cols); err != nil {
			return err
		}
		if !reschedule {
			return nil
		}
		p, err := repo.GetPlant(ctx, tx, plantID, userID)
		if err != nil {
			return err
		}
		now := s.now()
		from := now
		if p.LastWateredAt != nil {
			from = *p.LastWateredAt
		}
		next := watering.NextWateringDate(p, p.Species, from, now)
		return repo.SetWateringSchedule(ctx, tx, plantID, nil, next)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}

	return s.Get(ctx, userID, plantID)
}

// Archive soft-retires a plant; its history stays queryable but it leaves
// listings and reminder runs.
func (s *PlantService) Archive(ctx context.Context, userID, plantID string) error {
	err := repo.ArchivePlant(ctx, s.DB, plantID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPlantNotFound
	}
	return err
}

// Delete removes a plant; its care log and messages cascade.
func (s *PlantService) Delete(ctx context.Context, userID, plantID string) error {
	err := repo.DeletePlant(ctx, s.DB, plantID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPlantNotFound
	}
	return err
}

// RecordCare appends a care action to the plant's log. A watering action
// additionally advances last-watered to now, recomputes the due date, and
// records the plant's thank-you message; the three writes commit or roll
// back together.
func (s *PlantService) RecordCare(ctx context.Context, userID, plantID string, in CareInput) (*domain.CareAction, error) {
	tr := otel.Tracer("services/PlantService")
	ctx, span := tr.Start(ctx, "RecordCare",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("plant.id", plantID),
			attribute.String("care.action", string(in.ActionType)),
		),
	)
	defer span.End()

	if !in.ActionType.Valid() {
		return nil, ErrInvalidAction
	}

	plant, err := repo.GetPlant(ctx, s.DB, plantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}

	var action *domain.CareAction
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := repo.CreateCareAction(ctx, tx, plantID, userID, in.ActionType, in.Notes)
		if err != nil {
			return err
		}
		action = a

		if in.ActionType != domain.ActionWatering {
			return nil
		}

		now := s.now()
		next := watering.NextWateringDate(plant, plant.Species, now, now)
		if err := repo.SetWateringSchedule(ctx, tx, plantID, &now, next); err != nil {
			return err
		}
		thanks := plantmsg.Thanks(plant.Personality)
		_, err = repo.CreatePlantMessage(ctx, tx, plantID, domain.MessageWateringThanks, thanks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// CareHistory returns the plant's care log, newest first.
func (s *PlantService) CareHistory(ctx context.Context, userID, plantID string, limit int) ([]domain.CareAction, error) {
	if _, err := s.Get(ctx, userID, plantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return repo.ListCareActions(ctx, s.DB, plantID, limit)
}

// Messages returns the plant's generated messages, newest first.
func (s *PlantService) Messages(ctx context.Context, userID, plantID string, limit int) ([]domain.PlantMessage, error) {
	if _, err := s.Get(ctx, userID, plantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return repo.ListPlantMessages(ctx, s.DB, plantID, limit)
}

// MarkMessagesRead flags all of the plant's unread messages as read.
func (s *PlantService) MarkMessagesRead(ctx context.Context, userID, plantID string) error {
	if _, err := s.Get(ctx, userID, plantID); err != nil {
		return err
	}
	_, err := repo.MarkMessagesRead(ctx, s.DB, plantID)
	return err
}
