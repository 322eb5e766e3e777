package telegram

import (
	"regexp"
	"strings"
)

// Chat types reported by Telegram
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Update represents an incoming Telegram update (abstraction from tgbotapi)
type Update struct {
	UpdateID int `json:"update_id"`

	// Message is present if this is a regular message
	Message *Message `json:"message,omitempty"`

	// CallbackQuery is present if this is a callback from inline keyboard
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int      `json:"message_id"`
	From      *User    `json:"from,omitempty"`
	Chat      *Chat    `json:"chat"`
	Text      string   `json:"text,omitempty"`
	Voice     *Voice   `json:"voice,omitempty"`
	IsCommand bool     `json:"-"` // Computed field, not from JSON
	Command   string   `json:"-"` // Parsed command (without /, lowercased)
	Target    string   `json:"-"` // Bot named in /command@botname, empty when absent
	Arguments string   `json:"-"` // Command arguments
	ReplyTo   *Message `json:"reply_to_message,omitempty"`
}

// Voice is a voice note reference; the audio itself is fetched via Bot.FileURL
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	MimeType string `json:"mime_type,omitempty"`
}

// CallbackQuery represents a callback query from inline keyboard button
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"` // "action:arg"
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"` // "private", "group", "supergroup", "channel"
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// IsPrivate reports whether this is a one-to-one conversation
func (c *Chat) IsPrivate() bool {
	return c != nil && c.Type == ChatTypePrivate
}

// HasMessage checks if update contains a message
func (u *Update) HasMessage() bool {
	return u.Message != nil
}

// HasCallback checks if update contains a callback query
func (u *Update) HasCallback() bool {
	return u.CallbackQuery != nil
}

// HasVoice checks if update carries a voice note
func (u *Update) HasVoice() bool {
	return u.Message != nil && u.Message.Voice != nil
}

// ChatID returns the chat the update originated from, or 0 if unknown
func (u *Update) ChatID() int64 {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

// ParseCommand parses command from message text.
// Call this after JSON unmarshaling to populate IsCommand, Command, Arguments.
// Format: /command args or /command@botname args
func (m *Message) ParseCommand() {
	if m == nil || m.Text == "" {
		return
	}

	if m.Text[0] != '/' {
		m.IsCommand = false
		return
	}

	parts := strings.Fields(m.Text[1:])
	if len(parts) == 0 {
		return
	}

	m.IsCommand = true

	commandPart := parts[0]
	m.Target = ""
	if at := strings.IndexByte(commandPart, '@'); at != -1 {
		m.Target = commandPart[at+1:]
		commandPart = commandPart[:at]
	}
	m.Command = strings.ToLower(commandPart)

	if len(parts) > 1 {
		m.Arguments = strings.Join(parts[1:], " ")
	}
}

// Addresses reports whether the message is directed at the bot in a group:
// either it mentions @botUsername or it replies to one of the bot's messages.
func (m *Message) Addresses(botUsername string) bool {
	if m == nil || botUsername == "" {
		return false
	}
	if mentionPattern(botUsername).MatchString(m.Text) {
		return true
	}
	return m.ReplyTo != nil && m.ReplyTo.From != nil && m.ReplyTo.From.IsBot &&
		strings.EqualFold(m.ReplyTo.From.Username, botUsername)
}

// AddressedTo reports whether a command may be handled by botUsername:
// either it names no bot or it names this one.
func (m *Message) AddressedTo(botUsername string) bool {
	return m.Target == "" || strings.EqualFold(m.Target, botUsername)
}

// StripMention removes @botUsername from the text (case-insensitive)
func StripMention(text, botUsername string) string {
	if botUsername == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(mentionPattern(botUsername).ReplaceAllString(text, ""))
}

func mentionPattern(botUsername string) *regexp.Regexp {
	return regexp.MustCompile("(?i)@" + regexp.QuoteMeta(botUsername))
}
