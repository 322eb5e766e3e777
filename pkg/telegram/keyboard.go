package telegram

import "strings"

// CallbackSeparator splits the action tag from its argument in callback data
const CallbackSeparator = ":"

// Telegram rejects callback payloads longer than this
const maxCallbackDataLen = 64

// InlineKeyboardMarkup represents an inline keyboard (abstraction from tgbotapi)
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton
}

// InlineKeyboardButton represents a button in inline keyboard
type InlineKeyboardButton struct {
	Text         string
	CallbackData string
	URL          string
}

// NewInlineKeyboardMarkup creates a new inline keyboard markup
func NewInlineKeyboardMarkup(rows ...[]InlineKeyboardButton) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// NewInlineKeyboardRow creates a row of inline keyboard buttons
func NewInlineKeyboardRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// NewInlineKeyboardButtonData creates a button with callback data
func NewInlineKeyboardButtonData(text, callbackData string) InlineKeyboardButton {
	return InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// NewInlineKeyboardButtonURL creates a button with URL
func NewInlineKeyboardButtonURL(text, url string) InlineKeyboardButton {
	return InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// NewActionButton creates a button whose callback data is "action:arg"
func NewActionButton(text, action, arg string) InlineKeyboardButton {
	data := action
	if arg != "" {
		data = action + CallbackSeparator + arg
	}
	if len(data) > maxCallbackDataLen {
		data = data[:maxCallbackDataLen]
	}
	return NewInlineKeyboardButtonData(text, data)
}

// ParseCallbackData splits "action:arg" into its parts. The action is lowercased.
func ParseCallbackData(data string) (action, arg string) {
	action, arg, _ = strings.Cut(strings.TrimSpace(data), CallbackSeparator)
	return strings.ToLower(action), arg
}

// IsEmpty reports whether the keyboard has no buttons
func (k *InlineKeyboardMarkup) IsEmpty() bool {
	if k == nil {
		return true
	}
	for _, row := range k.InlineKeyboard {
		if len(row) > 0 {
			return false
		}
	}
	return true
}
