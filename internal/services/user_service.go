// Package services – UserService
//
// This file implements the UserService, which resolves chat-platform
// identities to local users and manages user settings. Identity data arrives
// pre-verified from the gateway; this layer only mirrors it.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/repo"
)

// TelegramIdentity is the trusted identity payload extracted by the auth
// middleware from the platform's init data.
type TelegramIdentity struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// UserSettingsUpdate is a partial update over user settings. Nil fields are
// left untouched.
type UserSettingsUpdate struct {
	Timezone             *string
	NotificationsEnabled *bool
	LanguageCode         *string
}

// UserService provides user resolution and settings management.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// normalizeLanguage canonicalizes a client-supplied BCP 47 tag ("EN-us"
// becomes "en-US"). Empty or malformed input falls back to English.
func normalizeLanguage(s string) string {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil || tag == language.Und {
		return language.English.String()
	}
	return tag.String()
}

// FindOrCreate resolves a Telegram identity to a local user, creating one on
// first contact and refreshing mirrored profile fields when they changed.
func (s *UserService) FindOrCreate(ctx context.Context, ident TelegramIdentity) (*domain.User, error) {
	lang := normalizeLanguage(ident.LanguageCode)

	existing, err := repo.GetUserByTelegramID(ctx, s.DB, ident.TelegramID)
	if err == nil {
		if existing.Username == ident.Username &&
			existing.FirstName == ident.FirstName &&
			existing.LastName == ident.LastName &&
			existing.LanguageCode == lang {
			return existing, nil
		}
		if err := repo.UpdateUserProfile(ctx, s.DB, existing.ID, ident.Username, ident.FirstName, ident.LastName, lang); err != nil {
			return nil, err
		}
		return repo.GetUser(ctx, s.DB, existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return repo.CreateUser(ctx, s.DB, &domain.User{
		TelegramID:           ident.TelegramID,
		Username:             ident.Username,
		FirstName:            ident.FirstName,
		LastName:             ident.LastName,
		LanguageCode:         lang,
		NotificationsEnabled: true,
	})
}

// Get returns a user by ID, mapping missing rows to ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateSettings applies a partial settings update and returns the updated
// user.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, upd UserSettingsUpdate) (*domain.User, error) {
	cols := map[string]any{}
	if upd.Timezone != nil {
		cols["timezone"] = *upd.Timezone
	}
	if upd.NotificationsEnabled != nil {
		cols["notifications_enabled"] = *upd.NotificationsEnabled
	}
	if upd.LanguageCode != nil {
		cols["language_code"] = normalizeLanguage(*upd.LanguageCode)
	}

	if err := repo.UpdateUserSettings(ctx, s.DB, userID, cols); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}
