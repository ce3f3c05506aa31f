package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramSend_Success(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	n := NewTelegramNotifier("123:abc", WithAPIBase(srv.URL))
	if err := n.Send(context.Background(), 4242, "water me"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody.ChatID != 4242 || gotBody.Text != "water me" {
		t.Fatalf("payload = %+v", gotBody)
	}
	if gotBody.ParseMode != "Markdown" {
		t.Fatalf("parse mode = %q", gotBody.ParseMode)
	}
}

func TestTelegramSend_APIRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  403,
			"description": "bot was blocked by the user",
		})
	}))
	defer srv.Close()

	n := NewTelegramNotifier("123:abc", WithAPIBase(srv.URL))
	err := n.Send(context.Background(), 1, "hi")
	if err == nil {
		t.Fatal("expected an error for ok=false envelope")
	}
	if !strings.Contains(err.Error(), "blocked") {
		t.Fatalf("error should carry the API description, got %v", err)
	}
}

func TestTelegramSend_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	n := NewTelegramNotifier("t", WithAPIBase(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, 1, "hi"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestTelegramSend_GarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("t", WithAPIBase(srv.URL))
	if err := n.Send(context.Background(), 1, "hi"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestNopNotifier_AlwaysSucceeds(t *testing.T) {
	if err := (NopNotifier{}).Send(context.Background(), 99, "anything"); err != nil {
		t.Fatalf("NopNotifier must never fail: %v", err)
	}
}
