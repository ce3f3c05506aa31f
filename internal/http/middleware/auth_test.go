package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/services"
)

type fakeResolver struct {
	lastIdent services.TelegramIdentity
	user      *domain.User
	err       error
}

func (f *fakeResolver) FindOrCreate(ctx context.Context, ident services.TelegramIdentity) (*domain.User, error) {
	f.lastIdent = ident
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}
	return &domain.User{ID: "local-1", TelegramID: ident.TelegramID}, nil
}

func identityRouter(resolver IdentityResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(TelegramIdentity(resolver))
	r.GET("/whoami", func(c *gin.Context) {
		u := UserFrom(c)
		uid, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"user_id": uid, "telegram_id": u.TelegramID})
	})
	return r
}

func TestTelegramIdentity_MissingOrInvalidHeader(t *testing.T) {
	resolver := &fakeResolver{}
	r := identityRouter(resolver)

	for _, raw := range []string{"", "abc", "-5", "0", "1.5"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if raw != "" {
			req.Header.Set("X-Telegram-User-ID", raw)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("id %q expected 401, got %d", raw, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body["code"] != "unauthorized" {
			t.Fatalf("error code = %v", body["code"])
		}
	}
	if resolver.lastIdent.TelegramID != 0 {
		t.Fatalf("resolver called despite invalid identity: %+v", resolver.lastIdent)
	}
}

func TestTelegramIdentity_ResolvesAndStoresUser(t *testing.T) {
	resolver := &fakeResolver{user: &domain.User{ID: "u-55", TelegramID: 9001}}
	r := identityRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Telegram-User-ID", " 9001 ")
	req.Header.Set("X-Telegram-Username", "ferncare")
	req.Header.Set("X-Telegram-First-Name", "Fern")
	req.Header.Set("X-Telegram-Language", "nl")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("whoami -> %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["user_id"] != "u-55" {
		t.Fatalf("user_id = %v", body["user_id"])
	}
	if resolver.lastIdent.TelegramID != 9001 ||
		resolver.lastIdent.Username != "ferncare" ||
		resolver.lastIdent.FirstName != "Fern" ||
		resolver.lastIdent.LanguageCode != "nl" {
		t.Fatalf("identity headers not forwarded: %+v", resolver.lastIdent)
	}
}

func TestTelegramIdentity_ResolutionFailure_500(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db down")}
	r := identityRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Telegram-User-ID", "123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("resolution failure -> %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["code"] != "internal_error" {
		t.Fatalf("error code = %v", body["code"])
	}
}

func TestUserFrom_NilWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if UserFrom(c) != nil {
		t.Fatalf("expected nil user without identity middleware")
	}
	c.Set("user", "not-a-user")
	if UserFrom(c) != nil {
		t.Fatalf("expected nil user for wrong-typed value")
	}
}
