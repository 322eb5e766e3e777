package telegram

import (
	"fmt"

	"marketpulse/internal/domain/user"
	"marketpulse/pkg/templates"
)

// 20 MB is the Bot API download limit
const maxVoiceBytes = 20 << 20

const (
	voiceUnsupportedReply = "🎙️ Voice notes are not enabled on this bot. Please type your question."
	voiceFailedReply      = "🎙️ Sorry, I couldn't make out that voice note. Please try again or type your question."
	groupNudgeReply       = "👋 Mention a ticker (e.g. AAPL or RELIANCE) or use /help to see available commands."
	pongReply             = "🏓 Pong!"
	noteSavedReply        = "📝 Note saved. Use /profile to see what your notes say about you."
	donateFallbackReply   = "☕ Thanks for thinking of us! Donations are not set up yet."
)

// Usage hints shown as validation errors
const (
	usageAdd      = "Usage: /add TICKER\nExample: /add AAPL"
	usageRemove   = "Usage: /remove TICKER\nExample: /remove BYND"
	usageInterval = "Usage: /interval MINUTES\nExample: /interval 5"
	usageTicker   = "Usage: /%s TICKER\nExample: /%s AAPL"
	usageAsk      = "Usage: /ask TICKER QUESTION\nExample: /ask CCCC Who are their competitors?"
	usageCompare  = "Usage: /compare TICKER1 TICKER2\nExample: /compare AAPL MSFT"
	usageNote     = "Usage: /note TEXT\nExample: /note Bullish on cloud software, waiting for a pullback"
	badInterval   = "Invalid number. Please provide minutes as a number (e.g., /interval 5)"
)

func addedReply(ticker string) string {
	return fmt.Sprintf("✅ Added %s to monitoring list!\n\nChanges will take effect on next check cycle.", ticker)
}

func alreadyWatchedReply(ticker string) string {
	return fmt.Sprintf("ℹ️ %s is already being monitored", ticker)
}

func removedReply(ticker string) string {
	return fmt.Sprintf("✅ Disabled monitoring for %s\n\nChanges will take effect on next check cycle.", ticker)
}

func notWatchedReply(ticker string) string {
	return fmt.Sprintf("❌ %s not found in monitoring list", ticker)
}

func intervalSetReply(minutes int) string {
	return fmt.Sprintf("✅ Check interval set to %d minutes\n\nChanges will take effect on next check cycle.", minutes)
}

func riskSetReply(risk user.RiskProfile) string {
	return fmt.Sprintf("✅ Risk profile set to %s", risk)
}

func riskCurrentReply(risk user.RiskProfile) string {
	return fmt.Sprintf("⚖️ Your risk profile is <b>%s</b>.\nPick a new one below or use /risk aggressive|moderate|conservative.", risk)
}

func analysingReply(ticker string) string {
	return fmt.Sprintf("🔍 <b>Analyzing %s...</b>\nFetching financials and AI commentary. This may take a moment.", templates.EscapeHTML(ticker))
}

func consultingReply(ticker string) string {
	return fmt.Sprintf("🤔 <b>Consulting AI about %s...</b>", templates.EscapeHTML(ticker))
}

func heardReply(text string) string {
	return fmt.Sprintf("🎙️ <i>%s</i>", templates.EscapeHTML(text))
}

func donateReply(url string) string {
	return fmt.Sprintf("☕ Enjoying MarketPulse? You can support development here:\n%s", url)
}

func aboutReply(version string) string {
	return fmt.Sprintf("ℹ️ <b>MarketPulse</b> %s\n\n"+
		"Quotes, fundamentals, news and Reddit sentiment for US and Indian stocks, "+
		"with AI commentary and watchlist alerts.\n\n"+
		"Data: Finnhub, Reddit. Not investment advice.", templates.EscapeHTML(version))
}
