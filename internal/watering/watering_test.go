package watering

import (
	"testing"
	"time"

	"github.com/verdant/go-plant-backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestCurrentSeason_MonthMapping(t *testing.T) {
	cases := []struct {
		month time.Month
		want  SeasonName
		mult  float64
	}{
		{time.December, Winter, 1.5},
		{time.January, Winter, 1.5},
		{time.February, Winter, 1.5},
		{time.March, Spring, 1.0},
		{time.May, Spring, 1.0},
		{time.June, Summer, 0.75},
		{time.August, Summer, 0.75},
		{time.September, Autumn, 1.0},
		{time.November, Autumn, 1.0},
	}
	for _, tc := range cases {
		s := CurrentSeason(date(2025, tc.month, 15))
		if s.Name != tc.want || s.Multiplier != tc.mult {
			t.Errorf("CurrentSeason(%v) = %v/%v; want %v/%v", tc.month, s.Name, s.Multiplier, tc.want, tc.mult)
		}
	}
}

func TestAdjustedIntervalDays_RoundsAndClamps(t *testing.T) {
	cases := []struct {
		base int
		sm   float64
		pm   float64
		want int
	}{
		{7, 2.0, 1.15, 16}, // round(16.1)
		{10, 1.0, 1.0, 10},
		{7, 0.75, 0.70, 4}, // round(3.675)
		{1, 0.75, 0.70, 1}, // round(0.525) clamped
		{3, 1.5, 0.85, 4},  // round(3.825)
	}
	for _, tc := range cases {
		if got := AdjustedIntervalDays(tc.base, tc.sm, tc.pm); got != tc.want {
			t.Errorf("AdjustedIntervalDays(%d, %v, %v) = %d; want %d", tc.base, tc.sm, tc.pm, got, tc.want)
		}
	}
}

func TestNextWateringDate_CustomIntervalNeutralSeason(t *testing.T) {
	// 10-day override, no species, medium pot, spring (1.0x): exactly 10 days out.
	plant := &domain.Plant{PotSize: domain.PotMedium, CustomWateringDays: intPtr(10)}
	from := date(2025, time.April, 1)

	got := NextWateringDate(plant, nil, from, from)
	want := date(2025, time.April, 11)
	if !got.Equal(want) {
		t.Fatalf("NextWateringDate = %v; want %v", got, want)
	}
	if !got.After(from) {
		t.Fatalf("due date %v not after reference %v", got, from)
	}
}

func TestNextWateringDate_SpeciesWinterLargePot(t *testing.T) {
	// Base 7, species winter 2.0x, large pot 1.15x -> round(16.1) = 16 days.
	plant := &domain.Plant{PotSize: domain.PotLarge}
	species := &domain.Species{
		WateringFrequencyDays:    7,
		WateringWinterMultiplier: 2.0,
		WateringSummerMultiplier: 0.6,
	}
	from := date(2025, time.January, 10)

	got := NextWateringDate(plant, species, from, from)
	want := date(2025, time.January, 26)
	if !got.Equal(want) {
		t.Fatalf("NextWateringDate = %v; want %v", got, want)
	}
}

func TestNextWateringDate_SeasonFromNowNotFromReference(t *testing.T) {
	// Reference in August, evaluated in January: winter cadence applies.
	plant := &domain.Plant{PotSize: domain.PotMedium}
	from := date(2024, time.August, 1)
	now := date(2025, time.January, 15)

	got := NextWateringDate(plant, nil, from, now)
	// 7 * 1.5 (winter generic) * 1.0 = round(10.5) = 11 days after reference.
	want := date(2024, time.August, 12)
	if !got.Equal(want) {
		t.Fatalf("NextWateringDate = %v; want %v", got, want)
	}
}

func TestNextWateringDate_FallbackWithoutSpeciesOrOverride(t *testing.T) {
	plant := &domain.Plant{PotSize: domain.PotMedium}
	from := date(2025, time.April, 1)

	got := NextWateringDate(plant, nil, from, from)
	want := from.AddDate(0, 0, DefaultIntervalDays)
	if !got.Equal(want) {
		t.Fatalf("NextWateringDate = %v; want default-interval %v", got, want)
	}
}

func TestNextWateringDate_MonthRollover(t *testing.T) {
	plant := &domain.Plant{PotSize: domain.PotMedium, CustomWateringDays: intPtr(10)}
	from := date(2025, time.March, 28)

	got := NextWateringDate(plant, nil, from, from)
	want := date(2025, time.April, 7)
	if !got.Equal(want) {
		t.Fatalf("NextWateringDate = %v; want %v", got, want)
	}
}

func TestStatus_NilDueDate(t *testing.T) {
	got := Status(nil, date(2025, time.April, 1))
	if got.Status != StatusOK || got.DaysUntil != 0 || got.Message == "" {
		t.Fatalf("Status(nil) = %+v; want ok/0 with placeholder", got)
	}
}

func TestStatus_BandBoundaries(t *testing.T) {
	now := date(2025, time.April, 10)
	cases := []struct {
		days int
		want StatusName
	}{
		{3, StatusOK},
		{2, StatusSoon},
		{1, StatusSoon},
		{0, StatusSoon},
		{-1, StatusOverdue},
		{-3, StatusOverdue},
		{-4, StatusCritical},
		{-30, StatusCritical},
		{14, StatusOK},
	}
	for _, tc := range cases {
		due := now.AddDate(0, 0, tc.days)
		got := Status(&due, now)
		if got.Status != tc.want {
			t.Errorf("Status(now%+dd) = %v; want %v", tc.days, got.Status, tc.want)
		}
		if got.DaysUntil != tc.days {
			t.Errorf("Status(now%+dd).DaysUntil = %d; want %d", tc.days, got.DaysUntil, tc.days)
		}
		if got.Message == "" {
			t.Errorf("Status(now%+dd) has empty message", tc.days)
		}
	}
}

func TestStatus_DistinguishesTodayAndTomorrow(t *testing.T) {
	now := date(2025, time.April, 10)

	today := Status(&now, now)
	if today.Message != "Water today!" {
		t.Fatalf("due-now message = %q", today.Message)
	}

	due := now.AddDate(0, 0, 1)
	tomorrow := Status(&due, now)
	if tomorrow.Message != "Water tomorrow" {
		t.Fatalf("due-tomorrow message = %q", tomorrow.Message)
	}
}

func TestStatus_Idempotent(t *testing.T) {
	now := date(2025, time.April, 10)
	due := now.AddDate(0, 0, -2)

	first := Status(&due, now)
	second := Status(&due, now)
	if first != second {
		t.Fatalf("Status not idempotent: %+v vs %+v", first, second)
	}
}

func TestPotMultiplier_Table(t *testing.T) {
	cases := map[domain.PotSize]float64{
		domain.PotTiny:   0.70,
		domain.PotSmall:  0.85,
		domain.PotMedium: 1.00,
		domain.PotLarge:  1.15,
		domain.PotXLarge: 1.30,
	}
	for size, want := range cases {
		if got := PotMultiplier(size); got != want {
			t.Errorf("PotMultiplier(%v) = %v; want %v", size, got, want)
		}
	}
	if got := PotMultiplier(domain.PotSize("GIGANTIC")); got != 1.0 {
		t.Errorf("PotMultiplier(unknown) = %v; want 1.0", got)
	}
}
