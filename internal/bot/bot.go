// Package bot implements the inbound Telegram command surface: a long-poll
// loop over the Bot API getUpdates method answering the /start, /plants,
// /water, and /help commands plus the quick-water callback buttons.
//
// Commands go through the same application services as the REST API, so a
// quick water from chat records the care action, reschedules the plant, and
// stores the thank-you message in one transaction.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/notify"
	"github.com/verdant/go-plant-backend/internal/services"
	"github.com/verdant/go-plant-backend/internal/watering"
)

const (
	// waterCallbackPrefix tags quick-water buttons; the suffix is a plant ID.
	waterCallbackPrefix = "water:"
	// waterMenuCap bounds the /water keyboard to the most urgent plants.
	waterMenuCap = 10
)

// Bot is a Telegram Bot API long-poll client bound to the application
// services. Safe for a single Run loop; not safe to Run concurrently.
type Bot struct {
	token       string
	apiBase     string
	webAppURL   string
	client      *http.Client
	pollTimeout time.Duration

	users  *services.UserService
	plants *services.PlantService
}

// Option customizes a Bot.
type Option func(*Bot)

// WithAPIBase points the bot at an alternate Bot API base URL.
func WithAPIBase(base string) Option {
	return func(b *Bot) { b.apiBase = base }
}

// WithWebAppURL attaches an "open the app" web-app button to /start and to
// the empty-garden replies. Empty disables the button.
func WithWebAppURL(url string) Option {
	return func(b *Bot) { b.webAppURL = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) { b.client = c }
}

// WithPollTimeout sets the getUpdates long-poll window.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) { b.pollTimeout = d }
}

// New constructs a Bot for the given token. The HTTP client timeout leaves
// headroom over the long-poll window so getUpdates is not cut short.
func New(token string, users *services.UserService, plants *services.PlantService, opts ...Option) *Bot {
	b := &Bot{
		token:       token,
		apiBase:     notify.DefaultAPIBase,
		pollTimeout: 30 * time.Second,
		users:       users,
		plants:      plants,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = &http.Client{Timeout: b.pollTimeout + 10*time.Second}
	}
	return b
}

// Telegram wire types, trimmed to the fields the command surface reads.

type update struct {
	UpdateID      int64     `json:"update_id"`
	Message       *message  `json:"message,omitempty"`
	CallbackQuery *callback `json:"callback_query,omitempty"`
}

type message struct {
	MessageID int64    `json:"message_id"`
	From      *account `json:"from,omitempty"`
	Chat      chat     `json:"chat"`
	Text      string   `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type callback struct {
	ID      string   `json:"id"`
	From    account  `json:"from"`
	Message *message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

type inlineButton struct {
	Text         string      `json:"text"`
	CallbackData string      `json:"callback_data,omitempty"`
	WebApp       *webAppInfo `json:"web_app,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

// apiEnvelope is the Bot API response wrapper.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Run polls getUpdates until ctx is cancelled, dispatching every update.
// Poll failures are logged and retried after a short pause.
func (b *Bot) Run(ctx context.Context) error {
	log.Info().Msg("bot command loop started")
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed, retrying")
			t := time.NewTimer(time.Second)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			continue
		}
		for i := range updates {
			if updates[i].UpdateID >= offset {
				offset = updates[i].UpdateID + 1
			}
			b.handle(ctx, &updates[i])
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	var out []update
	err := b.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(b.pollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}, &out)
	return out, err
}

// handle routes one update. Updates without a sender (channel posts, edits)
// are ignored.
func (b *Bot) handle(ctx context.Context, upd *update) {
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil:
		b.handleCommand(ctx, upd.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, m *message) {
	cmd, _, _ := strings.Cut(strings.TrimSpace(m.Text), " ")
	cmd, _, _ = strings.Cut(cmd, "@") // strip the /cmd@botname suffix
	switch strings.ToLower(cmd) {
	case "/start":
		b.start(ctx, m.Chat.ID)
	case "/help":
		b.help(ctx, m.Chat.ID)
	case "/plants":
		b.plantsSummary(ctx, m)
	case "/water":
		b.waterMenu(ctx, m)
	}
}

func (b *Bot) start(ctx context.Context, chatID int64) {
	text := "🌿 *Welcome!*\n\n" +
		"I help you look after your houseplants. Each plant gets its own " +
		"personality and will message you when it is thirsty.\n\n" +
		"*Commands:*\n" +
		"/plants - status of every plant\n" +
		"/water - log a quick watering\n" +
		"/help - full help"
	b.send(ctx, chatID, text, b.webAppKeyboard("🌱 Open the app"))
}

func (b *Bot) help(ctx context.Context, chatID int64) {
	text := "🌿 *Help*\n\n" +
		"*Commands:*\n" +
		"/start - welcome and app link\n" +
		"/plants - status of every plant\n" +
		"/water - log a quick watering\n" +
		"/help - this message\n\n" +
		"Watering schedules follow the season, so most plants are watered " +
		"less often in winter."
	b.send(ctx, chatID, text, nil)
}

// plantsSummary replies with one status line per non-archived plant, most
// urgent first.
func (b *Bot) plantsSummary(ctx context.Context, m *message) {
	u, err := b.users.FindOrCreate(ctx, identity(m.From))
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", m.From.ID).Msg("bot user resolution failed")
		return
	}
	plants, err := b.plants.List(ctx, u.ID, false)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("bot plant listing failed")
		return
	}
	if len(plants) == 0 {
		b.send(ctx, m.Chat.ID,
			"🌱 No plants yet. Open the app and add your first one!",
			b.webAppKeyboard("🌿 Add a plant"))
		return
	}

	var sb strings.Builder
	sb.WriteString("🌿 *Your plants:*\n\n")
	for i := range plants {
		p := &plants[i]
		sb.WriteString(statusEmoji(p.WateringStatus.Status))
		sb.WriteString(" *")
		sb.WriteString(p.Nickname)
		sb.WriteString("*")
		if p.Species != nil {
			sb.WriteString(" (")
			sb.WriteString(p.Species.CommonName)
			sb.WriteString(")")
		}
		sb.WriteString("\n   ")
		sb.WriteString(p.WateringStatus.Message)
		sb.WriteString("\n\n")
	}
	b.send(ctx, m.Chat.ID, sb.String(), nil)
}

// waterMenu replies with a quick-water button per plant, capped to the most
// urgent ones.
func (b *Bot) waterMenu(ctx context.Context, m *message) {
	u, err := b.users.FindOrCreate(ctx, identity(m.From))
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", m.From.ID).Msg("bot user resolution failed")
		return
	}
	plants, err := b.plants.List(ctx, u.ID, false)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("bot plant listing failed")
		return
	}
	if len(plants) == 0 {
		b.send(ctx, m.Chat.ID, "🌱 No plants yet.", b.webAppKeyboard("🌿 Add a plant"))
		return
	}
	if len(plants) > waterMenuCap {
		plants = plants[:waterMenuCap]
	}

	rows := make([][]inlineButton, 0, len(plants))
	for i := range plants {
		rows = append(rows, []inlineButton{{
			Text:         "💧 " + plants[i].Nickname,
			CallbackData: waterCallbackPrefix + plants[i].ID,
		}})
	}
	b.send(ctx, m.Chat.ID, "🌿 Which plant did you water?", &inlineKeyboard{InlineKeyboard: rows})
}

// handleCallback records the quick-water action behind a water: button and
// relays the plant's stored thank-you message.
func (b *Bot) handleCallback(ctx context.Context, q *callback) {
	plantID, ok := strings.CutPrefix(q.Data, waterCallbackPrefix)
	if !ok {
		return
	}

	u, err := b.users.FindOrCreate(ctx, identity(&q.From))
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", q.From.ID).Msg("bot user resolution failed")
		b.answer(ctx, q.ID, "Something went wrong")
		return
	}

	if _, err := b.plants.RecordCare(ctx, u.ID, plantID, services.CareInput{ActionType: domain.ActionWatering}); err != nil {
		if errors.Is(err, services.ErrPlantNotFound) {
			b.answer(ctx, q.ID, "Plant not found")
		} else {
			log.Error().Err(err).Str("plant_id", plantID).Msg("quick water failed")
			b.answer(ctx, q.ID, "Could not record the watering")
		}
		return
	}
	b.answer(ctx, q.ID, "✅ Watering logged!")

	if q.Message == nil {
		return
	}
	// RecordCare stored the thank-you as the plant's newest message.
	msgs, err := b.plants.Messages(ctx, u.ID, plantID, 1)
	if err != nil || len(msgs) == 0 {
		return
	}
	p, err := b.plants.Get(ctx, u.ID, plantID)
	if err != nil {
		return
	}
	b.send(ctx, q.Message.Chat.ID, "🌿 *"+p.Nickname+":*\n"+msgs[0].Content, nil)
}

func (b *Bot) webAppKeyboard(label string) *inlineKeyboard {
	if b.webAppURL == "" {
		return nil
	}
	return &inlineKeyboard{
		InlineKeyboard: [][]inlineButton{{{Text: label, WebApp: &webAppInfo{URL: b.webAppURL}}}},
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *inlineKeyboard) {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if kb != nil {
		payload["reply_markup"] = kb
	}
	if err := b.call(ctx, "sendMessage", payload, nil); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("bot reply failed")
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	if err := b.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		log.Warn().Err(err).Msg("answerCallbackQuery failed")
	}
}

// call posts payload to a Bot API method and decodes the envelope, then the
// result into out when out is non-nil.
func (b *Bot) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		return fmt.Errorf("telegram %s rejected (status %d, code %d): %s",
			method, resp.StatusCode, env.ErrorCode, env.Description)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

func identity(a *account) services.TelegramIdentity {
	return services.TelegramIdentity{
		TelegramID:   a.ID,
		Username:     a.Username,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		LanguageCode: a.LanguageCode,
	}
}

func statusEmoji(s watering.StatusName) string {
	switch s {
	case watering.StatusSoon:
		return "💧"
	case watering.StatusOverdue:
		return "⚠️"
	case watering.StatusCritical:
		return "🆘"
	default:
		return "✅"
	}
}
