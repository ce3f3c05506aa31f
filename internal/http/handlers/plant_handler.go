// Plant HTTP handlers.
//
// This file exposes REST endpoints for plant resources:
//   - POST   /plants                     (create)
//   - GET    /plants                     (list, optional archived, ETag support)
//   - GET    /plants/needing-water       (due/overdue subset)
//   - GET    /plants/{id}                (fetch one with watering status)
//   - PUT    /plants/{id}                (partial update, may reschedule)
//   - DELETE /plants/{id}                (soft delete)
//   - POST   /plants/{id}/archive        (archive, keeps history)
//   - POST   /plants/{id}/care           (record a care action)
//   - GET    /plants/{id}/care           (care history)
//   - GET    /plants/{id}/messages       (generated messages, ETag support)
//   - POST   /plants/{id}/messages/read  (mark all read)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/repo"
	"github.com/verdant/go-plant-backend/internal/services"
	"github.com/verdant/go-plant-backend/internal/sysutil"
	"github.com/verdant/go-plant-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PlantService defines plant lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PlantService interface {
	// Create registers a plant for userID and computes its first due date.
	Create(ctx context.Context, userID string, in services.PlantCreate) (*services.PlantWithStatus, error)
	// Get returns a single plant with its computed watering status.
	Get(ctx context.Context, userID, plantID string) (*services.PlantWithStatus, error)
	// List returns the user's plants, optionally including archived ones.
	List(ctx context.Context, userID string, includeArchived bool) ([]services.PlantWithStatus, error)
	// NeedingWater returns the subset of plants due or overdue right now.
	NeedingWater(ctx context.Context, userID string) ([]services.PlantWithStatus, error)
	// Update applies a partial update, recomputing the schedule when needed.
	Update(ctx context.Context, userID, plantID string, upd services.PlantUpdate) (*services.PlantWithStatus, error)
	// Archive hides a plant from listings while keeping its history.
	Archive(ctx context.Context, userID, plantID string) error
	// Delete soft-deletes a plant.
	Delete(ctx context.Context, userID, plantID string) error
	// RecordCare logs a care action; watering actions reset the schedule.
	RecordCare(ctx context.Context, userID, plantID string, in services.CareInput) (*domain.CareAction, error)
	// CareHistory returns the most recent care actions for a plant.
	CareHistory(ctx context.Context, userID, plantID string, limit int) ([]domain.CareAction, error)
	// Messages returns the most recent generated messages for a plant.
	Messages(ctx context.Context, userID, plantID string, limit int) ([]domain.PlantMessage, error)
	// MarkMessagesRead flags all of a plant's messages as read.
	MarkMessagesRead(ctx context.Context, userID, plantID string) error
}

// SpeciesService defines read access to the species catalog.
type SpeciesService interface {
	// List returns the full catalog ordered by common name.
	List(ctx context.Context) ([]domain.Species, error)
	// Get returns a species by ID.
	Get(ctx context.Context, id string) (*domain.Species, error)
	// Search matches species by common or latin name (min 2 chars).
	Search(ctx context.Context, query string) ([]domain.Species, error)
}

// UserService defines user profile and settings operations.
type UserService interface {
	// Get returns the user record by local ID.
	Get(ctx context.Context, userID string) (*domain.User, error)
	// UpdateSettings applies a partial settings update.
	UpdateSettings(ctx context.Context, userID string, upd services.UserSettingsUpdate) (*domain.User, error)
}

// ReminderService defines the dispatcher operations exposed over HTTP.
type ReminderService interface {
	// RunBulkReminders walks all due plants and sends reminders.
	RunBulkReminders(ctx context.Context) (services.RunReport, error)
	// SendTestReminders sends a capped batch of sample reminders to userID.
	SendTestReminders(ctx context.Context, userID string) (services.TestReport, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for plants, species, users, and reminders.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	plantSvc    PlantService
	speciesSvc  SpeciesService
	userSvc     UserService
	reminderSvc ReminderService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(plantSvc PlantService, speciesSvc SpeciesService, userSvc UserService, reminderSvc ReminderService) *Handlers {
	return &Handlers{plantSvc: plantSvc, speciesSvc: speciesSvc, userSvc: userSvc, reminderSvc: reminderSvc}
}

// userID extracts the authenticated user id from Gin context (set by the
// identity middleware). If absent, it falls back to "X-User-ID" header (tests
// use it). It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// CreatePlantRequest is the JSON payload for registering a plant.
type CreatePlantRequest struct {
	// Nickname names the plant (required, 1-100 chars).
	Nickname string `json:"nickname" binding:"required,min=1,max=100"`
	// SpeciesID optionally links the plant to a catalog species (UUID).
	SpeciesID *string `json:"species_id"`
	// CustomSpecies is a free-text species label when no catalog entry fits.
	CustomSpecies *string `json:"custom_species"`
	// Location is a free-text spot description ("kitchen windowsill").
	Location *string `json:"location"`
	// PotSize defaults to "medium" when empty.
	PotSize string `json:"pot_size"`
	// Personality defaults to "friendly" when empty.
	Personality string `json:"personality"`
	// CustomWateringDays overrides the species interval (>= 1).
	CustomWateringDays *int `json:"custom_watering_days"`
	// AcquiredAt defaults to now when omitted.
	AcquiredAt *time.Time `json:"acquired_at"`
}

// UpdatePlantRequest is the JSON payload for a partial plant update.
// Omitted fields are left untouched; the clear_* flags explicitly null
// their targets.
type UpdatePlantRequest struct {
	Nickname            *string `json:"nickname"`
	SpeciesID           *string `json:"species_id"`
	ClearSpecies        bool    `json:"clear_species"`
	CustomSpecies       *string `json:"custom_species"`
	Location            *string `json:"location"`
	PotSize             *string `json:"pot_size"`
	Personality         *string `json:"personality"`
	CustomWateringDays  *int    `json:"custom_watering_days"`
	ClearCustomInterval bool    `json:"clear_custom_interval"`
	IsArchived          *bool   `json:"is_archived"`
}

// RecordCareRequest is the JSON payload for logging a care action.
type RecordCareRequest struct {
	// ActionType is one of: watering, fertilizing, repotting, pruning, misting.
	ActionType string `json:"action_type" binding:"required"`
	// Notes optionally annotates the action.
	Notes *string `json:"notes"`
}

// ListPlantsResponse wraps the plant collection.
type ListPlantsResponse struct {
	Plants []services.PlantWithStatus `json:"plants"`
	Total  int                        `json:"total"`
}

//
// Helpers
//

// serviceErr translates service-layer sentinel errors into HTTP responses.
// It returns true when the error was handled.
func serviceErr(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, services.ErrPlantNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "plant not found")
	case errors.Is(err, services.ErrSpeciesNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "species not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrNicknameRequired),
		errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrInvalidPotSize),
		errors.Is(err, services.ErrInvalidPersonality),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrQueryTooShort):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrRunInProgress):
		fail(c, http.StatusConflict, ErrCodeRunInProgress, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
	return true
}

// plantID validates the :id path param as a UUID. On failure it writes a 400
// and returns "".
func plantID(c *gin.Context) string {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "plant id must be a UUID")
		return ""
	}
	return id
}

// potSize uppercases a JSON value into the stored enum form. Clients send
// "large", the schema stores "LARGE".
func potSize(s string) domain.PotSize {
	return domain.PotSize(strings.ToUpper(strings.TrimSpace(s)))
}

func personality(s string) domain.Personality {
	return domain.Personality(strings.ToUpper(strings.TrimSpace(s)))
}

func actionType(s string) domain.ActionType {
	return domain.ActionType(strings.ToUpper(strings.TrimSpace(s)))
}

// potSizePtr converts an optional string into the typed pointer expected by
// the service's partial-update struct.
func potSizePtr(s *string) *domain.PotSize {
	if s == nil {
		return nil
	}
	v := potSize(*s)
	return &v
}

func personalityPtr(s *string) *domain.Personality {
	if s == nil {
		return nil
	}
	v := personality(*s)
	return &v
}

//
// Handlers
//

// CreatePlant registers a new plant for the current user and returns it with
// the computed watering status.
func (h *Handlers) CreatePlant(c *gin.Context) {
	var req CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.plantSvc.Create(c.Request.Context(), userID(c), services.PlantCreate{
		Nickname:           strings.TrimSpace(req.Nickname),
		SpeciesID:          req.SpeciesID,
		CustomSpecies:      req.CustomSpecies,
		Location:           req.Location,
		PotSize:            potSize(req.PotSize),
		Personality:        personality(req.Personality),
		CustomWateringDays: req.CustomWateringDays,
		AcquiredAt:         req.AcquiredAt,
	})
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPlants returns the user's plants with watering status. Supports weak
// ETag via If-None-Match and may return 304. Pass ?include_archived=true to
// include archived plants.
func (h *Handlers) ListPlants(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	includeArchived := sysutil.IsTruthy(c.Query("include_archived"))

	// ETag pre-check (best effort).
	if db := h.plantDB(); db != nil && !includeArchived {
		count, maxTS, err := repo.PlantsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"plants:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.plantSvc.List(ctx, uid, includeArchived)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListPlantsResponse{Plants: items, Total: len(items)})
}

// NeedingWater returns the user's plants whose status is soon, overdue, or
// critical, ordered most urgent first.
func (h *Handlers) NeedingWater(c *gin.Context) {
	items, err := h.plantSvc.NeedingWater(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListPlantsResponse{Plants: items, Total: len(items)})
}

// GetPlant returns a single plant with its watering status.
func (h *Handlers) GetPlant(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}
	p, err := h.plantSvc.Get(c.Request.Context(), userID(c), id)
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdatePlant applies a partial update to a plant owned by the current user.
// Changing the species, pot size, or custom interval recomputes the due date.
func (h *Handlers) UpdatePlant(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}

	var req UpdatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.plantSvc.Update(c.Request.Context(), userID(c), id, services.PlantUpdate{
		Nickname:            req.Nickname,
		SpeciesID:           req.SpeciesID,
		ClearSpecies:        req.ClearSpecies,
		CustomSpecies:       req.CustomSpecies,
		Location:            req.Location,
		PotSize:             potSizePtr(req.PotSize),
		Personality:         personalityPtr(req.Personality),
		CustomWateringDays:  req.CustomWateringDays,
		ClearCustomInterval: req.ClearCustomInterval,
		IsArchived:          req.IsArchived,
	})
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, p)
}

// ArchivePlant hides a plant from default listings while keeping its history.
func (h *Handlers) ArchivePlant(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}
	if serviceErr(c, h.plantSvc.Archive(c.Request.Context(), userID(c), id)) {
		return
	}
	noContent(c)
}

// DeletePlant soft-deletes a plant owned by the current user.
func (h *Handlers) DeletePlant(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}
	if serviceErr(c, h.plantSvc.Delete(c.Request.Context(), userID(c), id)) {
		return
	}
	noContent(c)
}

// RecordCare logs a care action for a plant. A watering action resets the
// plant's schedule and responds with the created action.
func (h *Handlers) RecordCare(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}

	var req RecordCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	action, err := h.plantSvc.RecordCare(c.Request.Context(), userID(c), id, services.CareInput{
		ActionType: actionType(req.ActionType),
		Notes:      req.Notes,
	})
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusCreated, action)
}

// ListCare returns the most recent care actions for a plant (newest first,
// ?limit= caps the page, default 50, max 200).
func (h *Handlers) ListCare(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), 50), 50, 200)

	actions, err := h.plantSvc.CareHistory(c.Request.Context(), userID(c), id, limit)
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, gin.H{"actions": actions, "total": len(actions)})
}

// ListMessages returns the plant's generated messages (newest first). Supports
// weak ETag via If-None-Match and may return 304.
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	id := plantID(c)
	if id == "" {
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), 50), 50, 200)

	// ETag pre-check (best effort), only after confirming the plant belongs
	// to the caller so a guessed UUID leaks nothing about another user's
	// messages. Non-owners fall through to the service call and its 404.
	if db := h.plantDB(); db != nil {
		if owned, err := repo.PlantOwned(ctx, db, id, userID(c)); err == nil && owned {
			count, maxTS, err := repo.MessagesStats(ctx, db, id)
			if err == nil {
				var ts int64
				if maxTS != nil {
					ts = maxTS.Unix()
				}
				etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, id, count, ts)
				c.Header("ETag", etag)
				if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	msgs, err := h.plantSvc.Messages(ctx, userID(c), id, limit)
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, gin.H{"messages": msgs, "total": len(msgs)})
}

// MarkMessagesRead flags all of the plant's messages as read.
func (h *Handlers) MarkMessagesRead(c *gin.Context) {
	id := plantID(c)
	if id == "" {
		return
	}
	if serviceErr(c, h.plantSvc.MarkMessagesRead(c.Request.Context(), userID(c), id)) {
		return
	}
	noContent(c)
}

// plantDB exposes the concrete service's DB handle for ETag stat queries.
// Returns nil when the handler was wired with a non-GORM implementation
// (e.g., a test double), in which case conditional GETs are skipped.
func (h *Handlers) plantDB() *gorm.DB {
	if svc, ok := h.plantSvc.(*services.PlantService); ok {
		return svc.DB
	}
	return nil
}
