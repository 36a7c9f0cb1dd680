package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"ai-chatbot-be/internal/channel"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/orchestrator"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	Name = "telegram"

	QuickPrefix     = "quick_"
	MaxQuickReplies = 6
	// MaxCallbackData is Telegram's limit for callback_data, in bytes.
	MaxCallbackData = 64
)

var ErrNotConfigured = errors.New("telegram bot token not configured")

// Bot answers Telegram updates delivered to the webhook endpoint.
type Bot struct {
	bot       *bot.Bot
	processor channel.Processor
	logger    logger.ILogger
}

// New builds a webhook driven bot. secret, when set, must match the
// X-Telegram-Bot-Api-Secret-Token header of every update.
func New(token, secret string, processor channel.Processor, log logger.ILogger, opts ...bot.Option) (*Bot, error) {
	if token == "" {
		return nil, ErrNotConfigured
	}
	b := &Bot{processor: processor, logger: log}

	options := []bot.Option{bot.WithDefaultHandler(b.handleUpdate)}
	if secret != "" {
		options = append(options, bot.WithWebhookSecretToken(secret))
	}
	options = append(options, opts...)

	api, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	b.bot = api
	return b, nil
}

// Start processes webhook updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	go b.bot.StartWebhook(ctx)
}

func (b *Bot) WebhookHandler() http.HandlerFunc {
	return b.bot.WebhookHandler()
}

// SetWebhook points Telegram at url, reusing the configured secret.
func (b *Bot) SetWebhook(ctx context.Context, url, secret string) error {
	ok, err := b.bot.SetWebhook(ctx, &bot.SetWebhookParams{URL: url, SecretToken: secret})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("telegram refused webhook %q", url)
	}
	return nil
}

// Incoming is the part of an update the chat pipeline cares about.
type Incoming struct {
	ChatID     int64
	UserID     string
	Text       string
	CallbackID string
	Meta       map[string]interface{}
}

// ParseUpdate extracts text from a message or a quick reply button press.
// ok is false for updates the bot ignores.
func ParseUpdate(update *models.Update) (in Incoming, ok bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Text == "" || msg.From == nil {
			return in, false
		}
		return Incoming{
			ChatID: msg.Chat.ID,
			UserID: strconv.FormatInt(msg.From.ID, 10),
			Text:   msg.Text,
			Meta: map[string]interface{}{
				"chat_id":    msg.Chat.ID,
				"message_id": msg.ID,
				"username":   msg.From.Username,
				"first_name": msg.From.FirstName,
			},
		}, true

	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message.Message == nil {
			return Incoming{CallbackID: q.ID}, false
		}
		text := strings.TrimPrefix(q.Data, QuickPrefix)
		if text == "" {
			return Incoming{CallbackID: q.ID}, false
		}
		return Incoming{
			ChatID:     q.Message.Message.Chat.ID,
			UserID:     strconv.FormatInt(q.From.ID, 10),
			Text:       text,
			CallbackID: q.ID,
			Meta: map[string]interface{}{
				"chat_id":  q.Message.Message.Chat.ID,
				"callback": true,
			},
		}, true
	}
	return in, false
}

// Keyboard lays quick replies out one per row. It returns nil when there are none.
func Keyboard(replies []string) *models.InlineKeyboardMarkup {
	if len(replies) == 0 {
		return nil
	}
	if len(replies) > MaxQuickReplies {
		replies = replies[:MaxQuickReplies]
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(replies))
	for _, r := range replies {
		rows = append(rows, []models.InlineKeyboardButton{{Text: r, CallbackData: CallbackData(r)}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CallbackData prefixes reply and cuts it to Telegram's limit on a rune boundary.
func CallbackData(reply string) string {
	data := QuickPrefix + reply
	if len(data) <= MaxCallbackData {
		return data
	}
	cut := MaxCallbackData
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return data[:cut]
}

func (b *Bot) handleUpdate(ctx context.Context, api *bot.Bot, update *models.Update) {
	in, ok := ParseUpdate(update)
	if in.CallbackID != "" {
		if _, err := api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: in.CallbackID}); err != nil {
			b.logger.Warn("Telegram", "Failed to answer callback", map[string]interface{}{"error": err.Error()})
		}
	}
	if !ok {
		return
	}

	res := b.processor.Process(ctx, orchestrator.Message{
		Text:    in.Text,
		UserID:  in.UserID,
		Channel: Name,
		Meta:    in.Meta,
	})

	params := &bot.SendMessageParams{ChatID: in.ChatID, Text: res.Reply}
	if kb := Keyboard(res.QuickReplies); kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := api.SendMessage(ctx, params); err != nil {
		b.logger.Error("Telegram", "Failed to send reply", map[string]interface{}{"chat_id": in.ChatID, "error": err.Error()})
	}
}
