package tgbotapi

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
)

// Bot implements telegram.Bot on top of go-telegram-bot-api
type Bot struct {
	api         *tgbotapi.BotAPI
	log         *logger.Logger
	rateLimiter *rate.Limiter
	username    string
}

// Config contains Telegram bot configuration
type Config struct {
	Token          string
	Debug          bool
	HTTPTimeout    time.Duration // Must exceed the long-poll timeout
	RateLimitBurst int           // Rate limiter burst (default: 5)
	RateLimitRate  float64       // Messages per second (default: 25)
}

var _ telegram.Bot = (*Bot)(nil)

// NewBot creates a new Telegram bot instance and verifies the token with getMe
func NewBot(cfg Config, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}

	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 35 * time.Second
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 5
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 25
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	api.Debug = cfg.Debug

	log.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		log:         log.With("component", "telegram_bot"),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
		username:    api.Self.UserName,
	}, nil
}

// Username returns the bot's username
func (b *Bot) Username() string {
	return b.username
}

// GetUpdates performs one long-poll request. The Bot API call is not
// context-aware, so cancellation abandons the in-flight request.
func (b *Bot) GetUpdates(ctx context.Context, offset, limit, timeoutSeconds int) ([]telegram.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Limit = limit
	cfg.Timeout = timeoutSeconds
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	type result struct {
		updates []tgbotapi.Update
		err     error
	}
	done := make(chan result, 1)
	go func() {
		updates, err := b.api.GetUpdates(cfg)
		done <- result{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrap(res.err, "get updates")
		}
		out := make([]telegram.Update, 0, len(res.updates))
		for _, u := range res.updates {
			out = append(out, convertUpdate(u))
		}
		return out, nil
	}
}

// SendMessage sends a plain text message
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.SendMessageWithOptions(chatID, text, telegram.MessageOptions{})
	return err
}

// SendMessageWithOptions sends message with custom options
func (b *Bot) SendMessageWithOptions(chatID int64, text string, opts telegram.MessageOptions) (int, error) {
	if err := b.rateLimiter.Wait(context.Background()); err != nil {
		return 0, errors.Wrap(err, "rate limiter error")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	msg.DisableWebPagePreview = opts.DisableWebPagePreview
	msg.DisableNotification = opts.DisableNotification

	if opts.ReplyToMessageID > 0 {
		msg.ReplyToMessageID = opts.ReplyToMessageID
	}
	if !opts.Keyboard.IsEmpty() {
		msg.ReplyMarkup = convertKeyboardToTgbotapi(*opts.Keyboard)
	}

	sentMsg, err := b.api.Send(msg)
	if err != nil {
		b.log.Warnw("Failed to send message", "chat_id", chatID, "parse_mode", opts.ParseMode, "error", err)
		return 0, errors.Wrap(err, "failed to send telegram message")
	}

	return sentMsg.MessageID, nil
}

// SendPhoto uploads an in-memory image
func (b *Bot) SendPhoto(chatID int64, image []byte, caption string) error {
	if err := b.rateLimiter.Wait(context.Background()); err != nil {
		return errors.Wrap(err, "rate limiter error")
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: image})
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		b.log.Warnw("Failed to send photo", "chat_id", chatID, "bytes", len(image), "error", err)
		return errors.Wrap(err, "failed to send telegram photo")
	}
	return nil
}

// AnswerCallback answers callback query
func (b *Bot) AnswerCallback(callbackQueryID string, text string, showAlert bool) error {
	callback := tgbotapi.NewCallback(callbackQueryID, text)
	callback.ShowAlert = showAlert

	if _, err := b.api.Request(callback); err != nil {
		b.log.Warnw("Failed to answer callback", "callback_id", callbackQueryID, "error", err)
		return errors.Wrap(err, "failed to answer callback query")
	}
	return nil
}

// FileURL resolves a file id into a temporary download URL
func (b *Bot) FileURL(fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", errors.Wrap(err, "get file url")
	}
	return url, nil
}

// convertUpdate converts tgbotapi.Update to telegram.Update (abstraction layer)
func convertUpdate(tgUpdate tgbotapi.Update) telegram.Update {
	update := telegram.Update{
		UpdateID: tgUpdate.UpdateID,
	}

	if tgUpdate.Message != nil {
		update.Message = convertMessage(tgUpdate.Message)
	}
	if tgUpdate.CallbackQuery != nil {
		update.CallbackQuery = convertCallbackQuery(tgUpdate.CallbackQuery)
	}

	return update
}

func convertMessage(tgMsg *tgbotapi.Message) *telegram.Message {
	msg := &telegram.Message{
		MessageID: tgMsg.MessageID,
		Text:      tgMsg.Text,
	}

	if tgMsg.From != nil {
		msg.From = convertUser(tgMsg.From)
	}
	if tgMsg.Chat != nil {
		msg.Chat = convertChat(tgMsg.Chat)
	}
	if tgMsg.Voice != nil {
		msg.Voice = &telegram.Voice{
			FileID:   tgMsg.Voice.FileID,
			Duration: tgMsg.Voice.Duration,
			MimeType: tgMsg.Voice.MimeType,
		}
	}
	if tgMsg.ReplyToMessage != nil {
		msg.ReplyTo = convertMessage(tgMsg.ReplyToMessage)
	}

	msg.ParseCommand()
	return msg
}

func convertCallbackQuery(tgCallback *tgbotapi.CallbackQuery) *telegram.CallbackQuery {
	callback := &telegram.CallbackQuery{
		ID:   tgCallback.ID,
		Data: tgCallback.Data,
	}

	if tgCallback.From != nil {
		callback.From = convertUser(tgCallback.From)
	}
	if tgCallback.Message != nil {
		callback.Message = convertMessage(tgCallback.Message)
	}

	return callback
}

func convertUser(tgUser *tgbotapi.User) *telegram.User {
	return &telegram.User{
		ID:        tgUser.ID,
		FirstName: tgUser.FirstName,
		LastName:  tgUser.LastName,
		Username:  tgUser.UserName,
		IsBot:     tgUser.IsBot,
	}
}

func convertChat(tgChat *tgbotapi.Chat) *telegram.Chat {
	return &telegram.Chat{
		ID:       tgChat.ID,
		Type:     tgChat.Type,
		Title:    tgChat.Title,
		Username: tgChat.UserName,
	}
}

func convertKeyboardToTgbotapi(keyboard telegram.InlineKeyboardMarkup) tgbotapi.InlineKeyboardMarkup {
	tgRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard.InlineKeyboard))

	for _, row := range keyboard.InlineKeyboard {
		if len(row) == 0 {
			continue
		}
		tgRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			tgButton := tgbotapi.InlineKeyboardButton{
				Text: button.Text,
			}
			if button.CallbackData != "" {
				data := button.CallbackData
				tgButton.CallbackData = &data
			}
			if button.URL != "" {
				url := button.URL
				tgButton.URL = &url
			}
			tgRow = append(tgRow, tgButton)
		}
		tgRows = append(tgRows, tgRow)
	}

	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: tgRows,
	}
}
