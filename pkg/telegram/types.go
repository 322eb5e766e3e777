package telegram

import (
	"context"
)

// Parse modes accepted by the Bot API
const (
	ParseModeNone     = ""
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Sender is the outbound half of the bot. Background workers only need this.
type Sender interface {
	// SendMessage sends a plain text message
	SendMessage(chatID int64, text string) error

	// SendMessageWithOptions sends a message with parse mode, keyboard, etc. and returns its message id
	SendMessageWithOptions(chatID int64, text string, opts MessageOptions) (int, error)

	// SendPhoto sends a PNG/JPEG image with an optional caption
	SendPhoto(chatID int64, image []byte, caption string) error
}

// UpdateSource is the inbound half of the bot: a blocking long-poll fetch.
// offset is the first update id wanted; -1 asks for the most recent update only.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset, limit, timeoutSeconds int) ([]Update, error)
}

// Bot interface abstracts telegram bot operations (for dependency injection)
type Bot interface {
	Sender
	UpdateSource

	// AnswerCallback answers callback query, clearing the client's spinner
	AnswerCallback(callbackQueryID string, text string, showAlert bool) error

	// FileURL returns a direct download URL for an uploaded file (voice notes)
	FileURL(fileID string) (string, error)

	// Username returns the bot's own username without the leading @
	Username() string
}

// MessageOptions defines options for sending messages
type MessageOptions struct {
	// Keyboard for inline buttons
	Keyboard *InlineKeyboardMarkup

	// ParseMode (Markdown, HTML)
	ParseMode string

	// DisableWebPagePreview disables link previews
	DisableWebPagePreview bool

	// DisableNotification sends message silently
	DisableNotification bool

	// ReplyToMessageID replies to specific message
	ReplyToMessageID int
}

// TemplateRenderer defines interface for rendering message templates
type TemplateRenderer interface {
	// Render renders a template with data (accepts any type - struct or map)
	Render(templatePath string, data interface{}) (string, error)
}
