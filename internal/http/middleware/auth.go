// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity from trusted Telegram headers. The
// service sits behind a gateway that already validated the Mini App init data
// signature, so the headers here are taken as authoritative:
//
//	X-Telegram-User-ID    (required, numeric)
//	X-Telegram-Username   (optional)
//	X-Telegram-First-Name (optional)
//	X-Telegram-Last-Name  (optional)
//	X-Telegram-Language   (optional, BCP 47-ish short code)
//
// On success the local user record is found or created and its ID is stored in
// the Gin context under "userID" so downstream handlers, logging, and rate
// limiting can key on it.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/services"
)

const (
	headerTelegramUserID    = "X-Telegram-User-ID"
	headerTelegramUsername  = "X-Telegram-Username"
	headerTelegramFirstName = "X-Telegram-First-Name"
	headerTelegramLastName  = "X-Telegram-Last-Name"
	headerTelegramLanguage  = "X-Telegram-Language"

	// ctxKeyUserID is the Gin context key for the resolved local user ID.
	ctxKeyUserID = "userID"
	// ctxKeyUser is the Gin context key for the resolved user record.
	ctxKeyUser = "user"
)

// IdentityResolver maps a trusted Telegram identity to a local user record.
// *services.UserService satisfies it.
type IdentityResolver interface {
	FindOrCreate(ctx context.Context, ident services.TelegramIdentity) (*domain.User, error)
}

// TelegramIdentity returns a Gin middleware that resolves the caller from the
// trusted identity headers and rejects requests without a usable identity.
//
// Responses:
//   - 401 {"code":"unauthorized"} when X-Telegram-User-ID is missing or not
//     a positive integer
//   - 500 {"code":"internal_error"} when the user lookup/creation fails
//
// Place this after Logger() so resolution failures carry the request ID, and
// before the rate limiter if per-user buckets are desired.
func TelegramIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerTelegramUserID))
		tgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tgID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing or invalid identity",
			})
			return
		}

		u, err := resolver.FindOrCreate(c.Request.Context(), services.TelegramIdentity{
			TelegramID:   tgID,
			Username:     strings.TrimSpace(c.GetHeader(headerTelegramUsername)),
			FirstName:    strings.TrimSpace(c.GetHeader(headerTelegramFirstName)),
			LastName:     strings.TrimSpace(c.GetHeader(headerTelegramLastName)),
			LanguageCode: strings.TrimSpace(c.GetHeader(headerTelegramLanguage)),
		})
		if err != nil {
			LoggerFrom(c).Error().Err(err).Int64("telegram_id", tgID).Msg("identity resolution failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "internal_error",
				"message":    "could not resolve user",
			})
			return
		}

		c.Set(ctxKeyUserID, u.ID)
		c.Set(ctxKeyUser, u)
		c.Next()
	}
}

// UserFrom returns the resolved user record stored by TelegramIdentity, or
// nil when the middleware did not run for this request.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
