// Package services defines the business logic for plants, species, users,
// and reminders. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Plant-related errors.
var (
	// ErrPlantNotFound indicates that the requested plant does not exist or
	// is not accessible to the current user.
	ErrPlantNotFound = errors.New("plant not found")

	// ErrNicknameRequired is returned when a plant is created without a
	// nickname.
	ErrNicknameRequired = errors.New("nickname is required")

	// ErrInvalidInterval is returned when a custom watering interval is zero
	// or negative. The scheduler assumes validated inputs, so the boundary
	// rejects these before they reach it.
	ErrInvalidInterval = errors.New("custom watering interval must be at least 1 day")

	// ErrInvalidPotSize is returned when a pot size is outside the fixed set.
	ErrInvalidPotSize = errors.New("unknown pot size")

	// ErrInvalidPersonality is returned when a personality tag is outside
	// the fixed set.
	ErrInvalidPersonality = errors.New("unknown personality")

	// ErrInvalidAction is returned when a care action type is outside the
	// fixed set.
	ErrInvalidAction = errors.New("unknown care action type")
)

// Species- and user-related errors.
var (
	// ErrSpeciesNotFound indicates that the referenced species does not exist.
	ErrSpeciesNotFound = errors.New("species not found")

	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrQueryTooShort is returned when a species search query is shorter
	// than two characters.
	ErrQueryTooShort = errors.New("query must be at least 2 characters")
)

// Dispatcher errors.
var (
	// ErrRunInProgress is returned when a bulk reminder run is requested
	// while a previous run is still in flight.
	ErrRunInProgress = errors.New("reminder run already in progress")
)
