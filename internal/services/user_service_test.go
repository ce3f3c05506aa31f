package services

import (
	"context"
	"errors"
	"testing"
)

func TestUserFindOrCreate_CreatesOnFirstContact(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	u, err := svc.FindOrCreate(context.Background(), TelegramIdentity{
		TelegramID: 777,
		Username:   "sprout",
		FirstName:  "Sprout",
	})
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if u.ID == "" || u.TelegramID != 777 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.LanguageCode != "en" {
		t.Fatalf("default language not applied: %q", u.LanguageCode)
	}
	if !u.NotificationsEnabled {
		t.Fatal("new users must start with notifications enabled")
	}
}

func TestUserFindOrCreate_StableAcrossCalls(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	ident := TelegramIdentity{TelegramID: 778, Username: "leafy", LanguageCode: "de"}

	first, err := svc.FindOrCreate(ctx, ident)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.FindOrCreate(ctx, ident)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same identity produced different users: %s vs %s", first.ID, second.ID)
	}
}

func TestUserFindOrCreate_CanonicalizesLanguage(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 781, LanguageCode: "EN-us"})
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if u.LanguageCode != "en-US" {
		t.Fatalf("tag not canonicalized: %q", u.LanguageCode)
	}

	// A tag that does not parse falls back to English instead of being
	// stored raw.
	u, err = svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 782, LanguageCode: "!!"})
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if u.LanguageCode != "en" {
		t.Fatalf("malformed tag not rejected: %q", u.LanguageCode)
	}
}

func TestUserFindOrCreate_RefreshesChangedProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 779, Username: "oldname"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 779, Username: "newname", FirstName: "New"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated.ID != u.ID {
		t.Fatal("profile refresh must not create a second user")
	}
	if updated.Username != "newname" || updated.FirstName != "New" {
		t.Fatalf("profile not refreshed: %+v", updated)
	}
}

func TestUserUpdateSettings(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 780})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	off := false
	tz := "Europe/Athens"
	got, err := svc.UpdateSettings(ctx, u.ID, UserSettingsUpdate{
		Timezone:             &tz,
		NotificationsEnabled: &off,
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.Timezone != tz || got.NotificationsEnabled {
		t.Fatalf("settings not applied: %+v", got)
	}
	// Untouched field keeps its value.
	if got.LanguageCode != "en" {
		t.Fatalf("language changed unexpectedly: %q", got.LanguageCode)
	}

	if _, err := svc.UpdateSettings(ctx, "missing", UserSettingsUpdate{Timezone: &tz}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserUpdateSettings_CanonicalizesLanguage(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.FindOrCreate(ctx, TelegramIdentity{TelegramID: 783})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upper := "RU"
	got, err := svc.UpdateSettings(ctx, u.ID, UserSettingsUpdate{LanguageCode: &upper})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.LanguageCode != "ru" {
		t.Fatalf("tag not canonicalized: %q", got.LanguageCode)
	}

	garbage := "not a tag"
	got, err = svc.UpdateSettings(ctx, u.ID, UserSettingsUpdate{LanguageCode: &garbage})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.LanguageCode != "en" {
		t.Fatalf("malformed tag not rejected: %q", got.LanguageCode)
	}
}

func TestUserGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
