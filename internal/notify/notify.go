// Package notify defines the outbound notification channel used by the
// reminder dispatcher and provides the Telegram Bot API implementation.
//
// The channel is an explicit dependency injected where it is needed; there
// is no package-level client, so tests and multiple instances can run in
// isolation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier delivers one message to a chat-platform destination. A non-nil
// error means delivery did not happen and the caller may skip follow-up
// bookkeeping for the message.
type Notifier interface {
	Send(ctx context.Context, destinationID int64, text string) error
}

// DefaultAPIBase is the production Telegram Bot API endpoint. Overridable
// for tests and proxies.
const DefaultAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages through the Telegram Bot API sendMessage
// method. Safe for concurrent use.
type TelegramNotifier struct {
	token   string
	apiBase string
	client  *http.Client
}

// TelegramOption customizes a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithAPIBase points the notifier at an alternate Bot API base URL.
func WithAPIBase(base string) TelegramOption {
	return func(n *TelegramNotifier) { n.apiBase = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(n *TelegramNotifier) { n.client = c }
}

// NewTelegramNotifier constructs a notifier for the given bot token with a
// bounded request timeout.
func NewTelegramNotifier(token string, opts ...TelegramOption) *TelegramNotifier {
	n := &TelegramNotifier{
		token:   token,
		apiBase: DefaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// sendMessageResponse is the subset of the Bot API envelope we inspect.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Send delivers text to the Telegram chat identified by destinationID.
// Failures (transport errors, non-2xx statuses, ok=false envelopes) are
// returned as errors so the dispatcher can observe them.
func (n *TelegramNotifier) Send(ctx context.Context, destinationID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    destinationID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read sendMessage response: %w", err)
	}

	var out sendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram sendMessage rejected (status %d, code %d): %s",
			resp.StatusCode, out.ErrorCode, out.Description)
	}
	return nil
}

// NopNotifier logs would-be deliveries at debug level and reports success.
// Used when no bot token is configured (local development).
type NopNotifier struct{}

// Send implements Notifier.
func (NopNotifier) Send(ctx context.Context, destinationID int64, text string) error {
	log.Debug().Int64("destination_id", destinationID).Int("len", len(text)).Msg("notification dropped (nop channel)")
	return nil
}
