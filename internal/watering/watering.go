package watering

import (
	"fmt"
	"math"
	"time"

	"github.com/verdant/go-plant-backend/internal/domain"
)

// DefaultIntervalDays is the fallback base interval when a plant has neither
// a custom override nor a species.
const DefaultIntervalDays = 7

// potSizeMultipliers scales the interval by pot category: small pots dry out
// faster, large pots hold moisture longer.
var potSizeMultipliers = map[domain.PotSize]float64{
	domain.PotTiny:   0.70,
	domain.PotSmall:  0.85,
	domain.PotMedium: 1.00,
	domain.PotLarge:  1.15,
	domain.PotXLarge: 1.30,
}

// PotMultiplier returns the interval multiplier for a pot size. Unknown
// sizes fall back to the medium (1.0) factor.
func PotMultiplier(p domain.PotSize) float64 {
	if m, ok := potSizeMultipliers[p]; ok {
		return m
	}
	return 1.0
}

// AdjustedIntervalDays applies the season and pot multipliers to a base
// interval and rounds to the nearest whole day, clamped to at least one day
// so the due date always lands strictly after the reference date.
func AdjustedIntervalDays(baseDays int, seasonMultiplier, potMultiplier float64) int {
	days := int(math.Round(float64(baseDays) * seasonMultiplier * potMultiplier))
	if days < 1 {
		days = 1
	}
	return days
}

// NextWateringDate computes when the plant is next due, counting calendar
// days from the reference date (last watering or creation time).
//
// The base interval is the plant's custom override when set, otherwise the
// species' base frequency, otherwise DefaultIntervalDays. The season is
// looked up from now, not from the reference date: a plant watered in
// August but rescheduled in December follows the winter cadence. Species
// define their own winter/summer multipliers (spring/autumn are implicitly
// 1.0); plants without a species use the generic seasonal table.
//
// Calendar-day arithmetic (AddDate) keeps the result stable across DST
// shifts and month/year rollover.
func NextWateringDate(plant *domain.Plant, species *domain.Species, from, now time.Time) time.Time {
	baseDays := DefaultIntervalDays
	if plant.CustomWateringDays != nil && *plant.CustomWateringDays > 0 {
		baseDays = *plant.CustomWateringDays
	} else if species != nil && species.WateringFrequencyDays > 0 {
		baseDays = species.WateringFrequencyDays
	}

	season := CurrentSeason(now)
	seasonMultiplier := season.Multiplier
	if species != nil {
		switch season.Name {
		case Winter:
			seasonMultiplier = species.WateringWinterMultiplier
		case Summer:
			seasonMultiplier = species.WateringSummerMultiplier
		default:
			seasonMultiplier = 1.0
		}
	}

	days := AdjustedIntervalDays(baseDays, seasonMultiplier, PotMultiplier(plant.PotSize))
	return from.AddDate(0, 0, days)
}

// StatusName is the lateness classification of a due date.
type StatusName string

// Watering statuses, ordered from comfortable to urgent.
const (
	StatusOK       StatusName = "ok"
	StatusSoon     StatusName = "soon"
	StatusOverdue  StatusName = "overdue"
	StatusCritical StatusName = "critical"
)

// StatusInfo is the result of classifying a due date against a reference
// time. DaysUntil is negative when the due date has passed.
type StatusInfo struct {
	Status    StatusName `json:"status"`
	DaysUntil int        `json:"days_until"`
	Message   string     `json:"message"`
}

// Status classifies how late (or comfortable) a due date is relative to now.
//
// DaysUntil = ceil((next − now) in days). The four bands partition the
// integer line: > 2 ok, 0..2 soon, −3..−1 overdue, < −3 critical. A nil due
// date reports ok with a placeholder message. Total and pure.
func Status(next *time.Time, now time.Time) StatusInfo {
	if next == nil {
		return StatusInfo{Status: StatusOK, DaysUntil: 0, Message: "No watering schedule set"}
	}

	daysUntil := int(math.Ceil(next.Sub(now).Hours() / 24))

	switch {
	case daysUntil > 2:
		return StatusInfo{
			Status:    StatusOK,
			DaysUntil: daysUntil,
			Message:   fmt.Sprintf("Water in %d days", daysUntil),
		}
	case daysUntil >= 0:
		msg := fmt.Sprintf("Water in %d days", daysUntil)
		if daysUntil == 0 {
			msg = "Water today!"
		} else if daysUntil == 1 {
			msg = "Water tomorrow"
		}
		return StatusInfo{Status: StatusSoon, DaysUntil: daysUntil, Message: msg}
	case daysUntil >= -3:
		return StatusInfo{
			Status:    StatusOverdue,
			DaysUntil: daysUntil,
			Message:   fmt.Sprintf("Watering overdue by %d days", -daysUntil),
		}
	default:
		return StatusInfo{
			Status:    StatusCritical,
			DaysUntil: daysUntil,
			Message:   fmt.Sprintf("Water now! Overdue by %d days", -daysUntil),
		}
	}
}
