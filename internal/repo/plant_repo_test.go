package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
)

func TestCreatePlant_AssignsIDAndPersists(t *testing.T) {
	db := newRepoDB(t)
	u := seedUser(t, db, 1001)

	p := seedPlant(t, db, u.ID, "Fern Gully")
	require.NotEmpty(t, p.ID)

	got, err := GetPlant(context.Background(), db, p.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fern Gully", got.Nickname)
	assert.Equal(t, domain.PotMedium, got.PotSize)
	assert.False(t, got.IsArchived)
}

func TestGetPlant_ScopedToOwner(t *testing.T) {
	db := newRepoDB(t)
	owner := seedUser(t, db, 1)
	other := seedUser(t, db, 2)
	p := seedPlant(t, db, owner.ID, "Mine")

	_, err := GetPlant(context.Background(), db, p.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlantOwned(t *testing.T) {
	db := newRepoDB(t)
	owner := seedUser(t, db, 3)
	other := seedUser(t, db, 4)
	p := seedPlant(t, db, owner.ID, "Mine")
	ctx := context.Background()

	owned, err := PlantOwned(ctx, db, p.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = PlantOwned(ctx, db, p.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, owned)

	owned, err = PlantOwned(ctx, db, "no-such-id", owner.ID)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestGetPlant_PreloadsSpecies(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, 3)

	_, err := SeedSpecies(ctx, db)
	require.NoError(t, err)
	species, err := ListSpecies(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, species)

	p, err := CreatePlant(ctx, db, &domain.Plant{
		UserID:      u.ID,
		SpeciesID:   &species[0].ID,
		Nickname:    "Cataloged",
		PotSize:     domain.PotSmall,
		Personality: domain.PersonalityWise,
		AcquiredAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	got, err := GetPlant(ctx, db, p.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Species)
	assert.Equal(t, species[0].CommonName, got.Species.CommonName)
}

func TestListPlants_ExcludesArchivedByDefault(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, 4)

	active := seedPlant(t, db, u.ID, "Active")
	archived := seedPlant(t, db, u.ID, "Retired")
	require.NoError(t, ArchivePlant(ctx, db, archived.ID, u.ID))

	got, err := ListPlants(ctx, db, u.ID, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	all, err := ListPlants(ctx, db, u.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdatePlantFields_NotFoundAndNoop(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, 5)
	p := seedPlant(t, db, u.ID, "Target")

	// Empty column map is a no-op, not an error.
	require.NoError(t, UpdatePlantFields(ctx, db, p.ID, u.ID, nil))

	err := UpdatePlantFields(ctx, db, "missing", u.ID, map[string]any{"nickname": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, UpdatePlantFields(ctx, db, p.ID, u.ID, map[string]any{"nickname": "Renamed"}))
	got, err := GetPlant(ctx, db, p.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Nickname)
}

func TestSetWateringSchedule_PersistsBothFields(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, 6)
	p := seedPlant(t, db, u.ID, "Thirsty")

	watered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	next := watered.AddDate(0, 0, 7)
	require.NoError(t, SetWateringSchedule(ctx, db, p.ID, &watered, next))

	got, err := GetPlant(ctx, db, p.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastWateredAt)
	require.NotNil(t, got.NextWateringAt)
	assert.True(t, got.LastWateredAt.Equal(watered))
	assert.True(t, got.NextWateringAt.Equal(next))

	// A recompute without a watering leaves last_watered_at alone.
	later := next.AddDate(0, 0, 3)
	require.NoError(t, SetWateringSchedule(ctx, db, p.ID, nil, later))
	got, err = GetPlant(ctx, db, p.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, got.LastWateredAt.Equal(watered))
	assert.True(t, got.NextWateringAt.Equal(later))
}

func TestDeletePlant_RemovesAndReportsMissing(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	u := seedUser(t, db, 7)
	p := seedPlant(t, db, u.ID, "Doomed")

	require.NoError(t, DeletePlant(ctx, db, p.ID, u.ID))
	_, err := GetPlant(ctx, db, p.ID, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, DeletePlant(ctx, db, p.ID, u.ID), gorm.ErrRecordNotFound)
}

func TestListDuePlants_FiltersCandidates(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	future := now.Add(48 * time.Hour)

	subscribed := seedUser(t, db, 10)
	muted, err := CreateUser(ctx, db, &domain.User{TelegramID: 11, NotificationsEnabled: false})
	require.NoError(t, err)

	due := seedPlant(t, db, subscribed.ID, "Due")
	require.NoError(t, SetWateringSchedule(ctx, db, due.ID, nil, past))

	notDue := seedPlant(t, db, subscribed.ID, "Not due")
	require.NoError(t, SetWateringSchedule(ctx, db, notDue.ID, nil, future))

	// Never scheduled: no due date at all.
	seedPlant(t, db, subscribed.ID, "Unscheduled")

	archived := seedPlant(t, db, subscribed.ID, "Archived")
	require.NoError(t, SetWateringSchedule(ctx, db, archived.ID, nil, past))
	require.NoError(t, ArchivePlant(ctx, db, archived.ID, subscribed.ID))

	mutedPlant := seedPlant(t, db, muted.ID, "Muted owner")
	require.NoError(t, SetWateringSchedule(ctx, db, mutedPlant.ID, nil, past))

	got, err := ListDuePlants(ctx, db, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
	// Owner is preloaded for the notification destination.
	assert.Equal(t, subscribed.TelegramID, got[0].User.TelegramID)
}

func TestListUserDuePlants_OrderedMostUrgentFirst(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	u := seedUser(t, db, 20)

	newer := seedPlant(t, db, u.ID, "Slightly late")
	require.NoError(t, SetWateringSchedule(ctx, db, newer.ID, nil, now.Add(-1*time.Hour)))

	older := seedPlant(t, db, u.ID, "Very late")
	require.NoError(t, SetWateringSchedule(ctx, db, older.ID, nil, now.Add(-72*time.Hour)))

	got, err := ListUserDuePlants(ctx, db, u.ID, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, newer.ID, got[1].ID)
}
