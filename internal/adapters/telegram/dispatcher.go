package telegram

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"marketpulse/internal/adapters/ai"
	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/usage"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/metrics"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/onboarding"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
)

// Users is the user state the dispatcher touches and mutates
type Users interface {
	Touch(ctx context.Context, telegramID int64, username string, countCommand bool) (*user.User, error)
	SetRisk(ctx context.Context, telegramID int64, input string) (user.RiskProfile, error)
	SetInterval(ctx context.Context, telegramID int64, minutes int) error
}

// Watchlist mutates a user's monitored tickers
type Watchlist interface {
	Add(ctx context.Context, userID int64, raw string) (string, bool, error)
	Remove(ctx context.Context, userID int64, raw string) (string, bool, error)
}

// Notes stores investment notes
type Notes interface {
	Add(ctx context.Context, userID int64, text string) (*note.Note, error)
}

// Onboarding drives the multi-step signup conversation
type Onboarding interface {
	Pending(u *user.User) bool
	Start(ctx context.Context, u *user.User) (*onboarding.Reply, error)
	Handle(ctx context.Context, u *user.User, ev onboarding.Event) (*onboarding.Reply, error)
}

// Resolver maps a raw ticker onto its market symbol
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (market.Resolution, error)
}

// Assembler builds command contexts
type Assembler interface {
	Assemble(ctx context.Context, userID int64, ticker string, sections analysis.Section) (*analysis.CommandContext, error)
	AssemblePair(ctx context.Context, userID int64, first, second string, sections analysis.Section) (*analysis.CommandContext, error)
	ForUser(ctx context.Context, userID int64, sections analysis.Section) *analysis.CommandContext
	Trending(ctx context.Context, limit int) market.Trending
}

// Scanner runs the multi-symbol market scans
type Scanner interface {
	Premarket(ctx context.Context, userID int64) (*analysis.CommandContext, error)
	Sectors(ctx context.Context, userID int64) (*analysis.CommandContext, error)
	Sector(ctx context.Context, userID int64, name string) (*analysis.CommandContext, error)
	Undervalued(ctx context.Context, userID int64) (*analysis.CommandContext, error)
}

// Advisor writes LLM commentary. It never fails.
type Advisor interface {
	Analysis(ctx context.Context, cc *analysis.CommandContext) string
	Why(ctx context.Context, cc *analysis.CommandContext) string
	Compare(ctx context.Context, cc *analysis.CommandContext) string
	Ask(ctx context.Context, cc *analysis.CommandContext) string
}

// Renderer formats reports
type Renderer interface {
	Render(kind report.Kind, cc *analysis.CommandContext) (report.Report, error)
}

// Charts draws price charts
type Charts interface {
	PriceChart(c market.Candles, m market.Market) ([]byte, error)
}

// Config carries static values shown by informational commands
type Config struct {
	Version            string
	DonateURL          string
	TrendingLimit      int
	RateLimitPerMinute int // 0 disables the per-user limit
	Started            time.Time
	Offset             func() int // poller's last seen update id
}

// Deps groups the dispatcher collaborators. Transcriber and Usage may be nil.
type Deps struct {
	Users       Users
	Watchlist   Watchlist
	Notes       Notes
	Onboarding  Onboarding
	Resolver    Resolver
	Assembler   Assembler
	Scanner     Scanner
	Advisor     Advisor
	Renderer    Renderer
	Charts      Charts
	Transcriber ai.Transcriber
	Usage       UsageLog
}

// UsageLog stores handled commands and reports the most used ones
type UsageLog interface {
	usage.Recorder
	TopCommands(ctx context.Context, window time.Duration, limit int) ([]usage.CommandCount, error)
}

// Dispatcher routes every inbound update: callbacks first, then voice notes,
// then commands, then free text.
type Dispatcher struct {
	bot      telegram.Bot
	registry *telegram.CommandRegistry
	deps     Deps
	cfg      Config
	http     *http.Client
	now      func() time.Time
	log      *logger.Logger
}

var _ telegram.UpdateHandler = (*Dispatcher)(nil)

// NewDispatcher creates the dispatcher and registers the command surface
func NewDispatcher(bot telegram.Bot, deps Deps, cfg Config, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Get()
	}
	if cfg.Started.IsZero() {
		cfg.Started = time.Now()
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = 10
	}

	d := &Dispatcher{
		bot:      bot,
		registry: telegram.NewCommandRegistry(bot, log),
		deps:     deps,
		cfg:      cfg,
		http:     &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
		log:      log.With("component", "dispatcher"),
	}

	d.registry.SetErrorFormatter(FormatError)
	d.registry.Use(telegram.LoggingMiddleware(d.log))
	d.registry.Use(telegram.MetricsMiddleware(metrics.RecordCommand))
	d.registry.Use(telegram.AfterMiddleware(d.recordUsage))
	if cfg.RateLimitPerMinute > 0 {
		d.registry.Use(telegram.RateLimitMiddleware(cfg.RateLimitPerMinute, d.log))
	}
	// innermost, so a panic still reaches the usage and metrics hooks as an error
	d.registry.Use(telegram.RecoveryMiddleware(d.log))
	d.registerCommands()

	return d
}

// Registry exposes the command registry (for /help and tests)
func (d *Dispatcher) Registry() *telegram.CommandRegistry {
	return d.registry
}

// HandleUpdate is the single entry point called by the poller
func (d *Dispatcher) HandleUpdate(ctx context.Context, update telegram.Update) error {
	switch {
	case update.HasCallback():
		metrics.RecordUpdate("callback")
		return d.handleCallback(ctx, update.CallbackQuery)
	case update.HasVoice():
		metrics.RecordUpdate("voice")
		return d.handleVoice(ctx, update.Message)
	case update.HasMessage():
		msg := update.Message
		msg.ParseCommand()
		if msg.IsCommand {
			metrics.RecordUpdate("command")
			return d.handleCommand(ctx, msg)
		}
		metrics.RecordUpdate("text")
		return d.handleText(ctx, msg)
	default:
		metrics.RecordUpdate("ignored")
		return nil
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	if !msg.AddressedTo(d.bot.Username()) {
		d.log.Debugw("Ignoring command for another bot", "command", msg.Command, "target", msg.Target)
		return nil
	}

	u, err := d.deps.Users.Touch(ctx, msg.From.ID, msg.From.Username, true)
	if err != nil {
		return errors.Wrap(err, "load user")
	}

	d.log.Debugw("Routing command",
		"telegram_id", msg.From.ID,
		"chat_id", msg.Chat.ID,
		"command", msg.Command,
		"has_args", msg.Arguments != "",
	)
	return d.registry.Handle(ctx, u, msg)
}

// handleCallback answers the button press and then routes "action:arg".
// Actions named after a command run that command with arg as its arguments.
func (d *Dispatcher) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if err := d.bot.AnswerCallback(cb.ID, "", false); err != nil {
		d.log.Warnw("Failed to answer callback", "callback_id", cb.ID, "error", err)
	}
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	action, arg := telegram.ParseCallbackData(cb.Data)
	d.log.Debugw("Processing callback", "telegram_id", cb.From.ID, "action", action, "arg", arg)

	u, err := d.deps.Users.Touch(ctx, cb.From.ID, cb.From.Username, false)
	if err != nil {
		return errors.Wrap(err, "load user")
	}
	chatID := cb.Message.Chat.ID

	if action == onboarding.ActionRisk {
		if d.deps.Onboarding.Pending(u) {
			reply, err := d.deps.Onboarding.Handle(ctx, u, onboarding.Event{Kind: onboarding.EventCallback, Text: cb.Data})
			if err != nil {
				return err
			}
			return d.sendOnboarding(chatID, reply)
		}
		risk, err := d.deps.Users.SetRisk(ctx, u.TelegramID, arg)
		if err != nil {
			return d.bot.SendMessage(chatID, FormatErrorText(err))
		}
		return d.bot.SendMessage(chatID, riskSetReply(risk))
	}

	if !d.registry.HasCommand(action) {
		d.log.Warnw("Unknown callback action", "action", action, "data", cb.Data)
		return nil
	}

	msg := &telegram.Message{
		MessageID: cb.Message.MessageID,
		From:      cb.From,
		Chat:      cb.Message.Chat,
		Text:      "/" + action + " " + arg,
		IsCommand: true,
		Command:   action,
		Arguments: arg,
	}
	return d.registry.Handle(ctx, u, msg)
}

// handleVoice transcribes a voice note and answers it as free text
func (d *Dispatcher) handleVoice(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	if d.deps.Transcriber == nil {
		return d.bot.SendMessage(msg.Chat.ID, voiceUnsupportedReply)
	}

	text, err := d.transcribe(ctx, msg.Voice)
	if err != nil {
		d.log.Warnw("Voice transcription failed", "telegram_id", msg.From.ID, "error", err)
		return d.bot.SendMessage(msg.Chat.ID, voiceFailedReply)
	}
	if strings.TrimSpace(text) == "" {
		return d.bot.SendMessage(msg.Chat.ID, voiceFailedReply)
	}

	if _, err := d.bot.SendMessageWithOptions(msg.Chat.ID, heardReply(text), telegram.MessageOptions{ParseMode: telegram.ParseModeHTML}); err != nil {
		d.log.Warnw("Failed to echo transcription", "chat_id", msg.Chat.ID, "error", err)
	}

	transcribed := *msg
	transcribed.Voice = nil
	transcribed.Text = text
	transcribed.ParseCommand()
	if transcribed.IsCommand {
		return d.handleCommand(ctx, &transcribed)
	}
	return d.answerFreeText(ctx, &transcribed, text)
}

func (d *Dispatcher) transcribe(ctx context.Context, voice *telegram.Voice) (string, error) {
	url, err := d.bot.FileURL(voice.FileID)
	if err != nil {
		return "", errors.Wrap(err, "resolve voice file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "build voice request")
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "download voice")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(errors.ErrUnavailable, "download voice: status %d", resp.StatusCode)
	}

	return d.deps.Transcriber.Transcribe(ctx, io.LimitReader(resp.Body, maxVoiceBytes), "voice.ogg")
}

// handleText routes free text: onboarding first in private chats, the idle
// fallback otherwise. Group chats only answer when the bot is addressed.
func (d *Dispatcher) handleText(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}

	if !msg.Chat.IsPrivate() {
		if !msg.Addresses(d.bot.Username()) {
			return nil
		}
		return d.answerFreeText(ctx, msg, telegram.StripMention(msg.Text, d.bot.Username()))
	}

	return d.answerFreeText(ctx, msg, msg.Text)
}

func (d *Dispatcher) answerFreeText(ctx context.Context, msg *telegram.Message, text string) error {
	u, err := d.deps.Users.Touch(ctx, msg.From.ID, msg.From.Username, false)
	if err != nil {
		return errors.Wrap(err, "load user")
	}

	// onboarding steps are only answered in private chats
	if !msg.Chat.IsPrivate() {
		if ticker, ok := onboarding.PlausibleTicker(text); ok {
			return d.askAbout(ctx, u, msg, ticker, text)
		}
		return d.bot.SendMessage(msg.Chat.ID, groupNudgeReply)
	}

	reply, err := d.deps.Onboarding.Handle(ctx, u, onboarding.Event{Kind: onboarding.EventText, Text: text})
	if err != nil {
		return err
	}
	if reply.Ticker != "" {
		return d.askAbout(ctx, u, msg, reply.Ticker, text)
	}
	return d.sendOnboarding(msg.Chat.ID, reply)
}

// askAbout runs /ask for a ticker found in free text
func (d *Dispatcher) askAbout(ctx context.Context, u *user.User, msg *telegram.Message, ticker, question string) error {
	return d.registry.Handle(ctx, u, &telegram.Message{
		MessageID: msg.MessageID,
		From:      msg.From,
		Chat:      msg.Chat,
		Text:      question,
		IsCommand: true,
		Command:   "ask",
		Arguments: ticker + " " + question,
	})
}

func (d *Dispatcher) sendOnboarding(chatID int64, reply *onboarding.Reply) error {
	if reply == nil || reply.Text == "" {
		return nil
	}
	_, err := d.bot.SendMessageWithOptions(chatID, reply.Text, telegram.MessageOptions{
		ParseMode: reply.ParseMode,
		Keyboard:  reply.Keyboard,
	})
	return err
}

// recordUsage writes one usage row per handled command
func (d *Dispatcher) recordUsage(c *telegram.CommandContext, err error, took time.Duration) {
	if d.deps.Usage == nil {
		return
	}
	status := usage.StatusOK
	if err != nil {
		status = usage.StatusError
	}
	ev := usage.NewEvent(c.TelegramID, c.ChatID, c.Command, c.Args, status, took)
	if recErr := d.deps.Usage.Record(context.WithoutCancel(c.Ctx), ev); recErr != nil {
		d.log.Warnw("Failed to record command usage", "command", c.Command, "error", recErr)
	}
}
