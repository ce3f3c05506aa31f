// User HTTP handlers.
//
// This file exposes endpoints for the current user's profile and settings:
//   - GET /users/me           (profile)
//   - PUT /users/me/settings  (partial settings update)
//
// Identity comes from the trusted-header middleware; there is no user lookup
// by arbitrary ID over HTTP.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdant/go-plant-backend/internal/services"
)

// UpdateSettingsRequest is the JSON payload for a partial settings update.
// Omitted fields are left untouched.
type UpdateSettingsRequest struct {
	// Timezone is an IANA zone name, e.g. "Europe/Amsterdam".
	Timezone *string `json:"timezone"`
	// NotificationsEnabled toggles reminder delivery for this user.
	NotificationsEnabled *bool `json:"notifications_enabled"`
	// LanguageCode is a short language tag, e.g. "en".
	LanguageCode *string `json:"language_code"`
}

// Me returns the current user's profile.
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.userSvc.Get(c.Request.Context(), userID(c))
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateSettings applies a partial update to the current user's settings and
// returns the updated profile.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown timezone")
			return
		}
	}

	u, err := h.userSvc.UpdateSettings(c.Request.Context(), userID(c), services.UserSettingsUpdate{
		Timezone:             req.Timezone,
		NotificationsEnabled: req.NotificationsEnabled,
		LanguageCode:         req.LanguageCode,
	})
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, u)
}
