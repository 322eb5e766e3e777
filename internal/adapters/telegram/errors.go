package telegram

import (
	"fmt"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/telegram"
)

// FormatError maps domain errors to replies. Validation errors are handled by
// the registry before this is consulted.
func FormatError(err error) (string, bool) {
	var tErr *errors.TickerError
	switch {
	case errors.As(err, &tErr):
		return fmt.Sprintf("❌ Symbol %s not recognized in US, NSE or BSE markets.", tErr.Symbol), true
	case errors.Is(err, errors.ErrTickerNotFound):
		return "❌ Symbol not recognized in US, NSE or BSE markets.", true
	case errors.Is(err, errors.ErrRateLimitExceeded):
		return "⏱️ Market data is rate limited right now. Please try again in a minute.", true
	default:
		return "", false
	}
}

// FormatErrorText is FormatError with the registry's validation and generic fallbacks
func FormatErrorText(err error) string {
	var vErr *errors.ValidationError
	if errors.As(err, &vErr) {
		return "❌ " + vErr.Message
	}
	if text, ok := FormatError(err); ok {
		return text
	}
	return telegram.GenericErrorReply
}
