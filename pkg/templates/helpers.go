package templates

import (
	"html"
	"strings"
	"text/template"
	"unicode/utf8"
)

// EscapeHTML escapes text for Telegram HTML parse mode.
// Telegram only requires <, > and & to be escaped; quotes are left as is.
func EscapeHTML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(text)
}

// SafeText removes invalid UTF-8 sequences and escapes HTML
func SafeText(text string) string {
	return EscapeHTML(strings.ToValidUTF8(text, ""))
}

// UnescapeHTML reverses entity escaping done by upstream APIs (e.g. Reddit titles)
func UnescapeHTML(text string) string {
	return html.UnescapeString(text)
}

// Truncate shortens text to at most max runes, appending an ellipsis when cut
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max == 1 {
		return "…"
	}
	return strings.TrimRightFunc(string(runes[:max-1]), isSpace) + "…"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

// DefaultFuncs are available to every template
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"safe":     SafeText,
		"truncate": func(max int, s string) string { return Truncate(s, max) },
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"join":     strings.Join,
		"add":      func(a, b int) int { return a + b },
	}
}
