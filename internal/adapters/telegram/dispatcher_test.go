package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/usage"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/onboarding"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
)

type sent struct {
	chatID int64
	text   string
	opts   telegram.MessageOptions
	photo  []byte
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []sent
	answered []string
	fileURL  string
	failText string // SendMessageWithOptions fails for exactly this text
}

func (b *fakeBot) SendMessage(chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sent{chatID: chatID, text: text})
	return nil
}

func (b *fakeBot) SendMessageWithOptions(chatID int64, text string, opts telegram.MessageOptions) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failText != "" && text == b.failText {
		return 0, errors.New("telegram: message is too long")
	}
	b.sent = append(b.sent, sent{chatID: chatID, text: text, opts: opts})
	return len(b.sent), nil
}

func (b *fakeBot) SendPhoto(chatID int64, image []byte, caption string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sent{chatID: chatID, text: caption, photo: image})
	return nil
}

func (b *fakeBot) GetUpdates(ctx context.Context, offset, limit, timeoutSeconds int) ([]telegram.Update, error) {
	return nil, nil
}

func (b *fakeBot) AnswerCallback(id, text string, showAlert bool) error {
	b.answered = append(b.answered, id)
	return nil
}

func (b *fakeBot) FileURL(fileID string) (string, error) {
	return b.fileURL + "/" + fileID, nil
}

func (b *fakeBot) Username() string { return "MarketPulseBot" }

func (b *fakeBot) last(t *testing.T) sent {
	t.Helper()
	require.NotEmpty(t, b.sent, "nothing was sent")
	return b.sent[len(b.sent)-1]
}

func (b *fakeBot) texts() []string {
	out := make([]string, 0, len(b.sent))
	for _, s := range b.sent {
		out = append(out, s.text)
	}
	return out
}

type fakeUsers struct {
	users     map[int64]*user.User
	intervals map[int64]int
	touchErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]*user.User{}, intervals: map[int64]int{}}
}

func (f *fakeUsers) Touch(ctx context.Context, id int64, username string, countCommand bool) (*user.User, error) {
	if f.touchErr != nil {
		return nil, f.touchErr
	}
	u, ok := f.users[id]
	if !ok {
		u = user.New(id, username, time.Now())
		f.users[id] = u
	}
	if countCommand {
		u.CommandCount++
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SaveOnboarding(ctx context.Context, u *user.User) error {
	cp := *u
	f.users[u.TelegramID] = &cp
	return nil
}

func (f *fakeUsers) SetRisk(ctx context.Context, id int64, input string) (user.RiskProfile, error) {
	risk, ok := user.ParseRiskProfile(input)
	if !ok {
		return "", errors.NewValidationError("risk", "Risk level must be aggressive, moderate or conservative", input)
	}
	f.users[id].Risk = risk
	return risk, nil
}

func (f *fakeUsers) SetInterval(ctx context.Context, id int64, minutes int) error {
	if minutes < user.MinIntervalMinutes || minutes > user.MaxIntervalMinutes {
		return errors.NewValidationError("interval", "Interval cannot exceed 24 hours (1440 minutes)", minutes)
	}
	f.intervals[id] = minutes
	return nil
}

type fakeWatchlist struct {
	entries map[string]bool
}

func (f *fakeWatchlist) Add(ctx context.Context, userID int64, raw string) (string, bool, error) {
	t := strings.ToUpper(raw)
	if f.entries[t] {
		return t, false, nil
	}
	f.entries[t] = true
	return t, true, nil
}

func (f *fakeWatchlist) Remove(ctx context.Context, userID int64, raw string) (string, bool, error) {
	t := strings.ToUpper(raw)
	if !f.entries[t] {
		return t, false, nil
	}
	delete(f.entries, t)
	return t, true, nil
}

type fakeNotes struct{ texts []string }

func (f *fakeNotes) Add(ctx context.Context, userID int64, text string) (*note.Note, error) {
	f.texts = append(f.texts, text)
	return &note.Note{UserID: userID, Text: text}, nil
}

// fakeResolver knows AAPL (US) and RELIANCE (NSE)
type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, symbol string) (market.Resolution, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch s {
	case "AAPL", "MSFT":
		return market.Resolution{Input: s, Symbol: s, Market: market.US}, nil
	case "RELIANCE", "RELIANCE.NS":
		return market.Resolution{Input: s, Symbol: "RELIANCE.NS", Market: market.NSE}, nil
	default:
		return market.Resolution{}, errors.NewTickerError(s)
	}
}

func subjectFor(res market.Resolution) analysis.Subject {
	sym := res.Symbol
	return analysis.Subject{
		Resolution: res,
		Info:       res.Market.Info(),
		Data: analysis.Data{
			Quote:        market.Quote{Symbol: sym, Price: market.Some(187.4), ChangePercent: market.Some(1.2)},
			Fundamentals: market.EmptyFundamentals(sym),
			Profile:      market.EmptyProfile(sym),
			Performance:  market.EmptyPerformance(sym),
			News:         market.EmptyNews(sym),
			Sentiment:    market.EmptySentiment(sym),
			Ownership:    market.EmptyOwnership(sym),
			Candles:      market.EmptyCandles(sym),
		},
	}
}

type fakeAssembler struct {
	sections analysis.Section
	panicOn  string
}

func (f *fakeAssembler) Assemble(ctx context.Context, userID int64, ticker string, sections analysis.Section) (*analysis.CommandContext, error) {
	if f.panicOn != "" && strings.EqualFold(ticker, f.panicOn) {
		panic("provider exploded")
	}
	f.sections = sections
	res, err := fakeResolver{}.Resolve(ctx, ticker)
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}
	return &analysis.CommandContext{Subjects: []analysis.Subject{subjectFor(res)}, Now: time.Now()}, nil
}

func (f *fakeAssembler) AssemblePair(ctx context.Context, userID int64, first, second string, sections analysis.Section) (*analysis.CommandContext, error) {
	a, err := f.Assemble(ctx, userID, first, sections)
	if err != nil {
		return nil, err
	}
	b, err := f.Assemble(ctx, userID, second, sections)
	if err != nil {
		return nil, err
	}
	a.Subjects = append(a.Subjects, b.Subjects...)
	return a, nil
}

func (f *fakeAssembler) ForUser(ctx context.Context, userID int64, sections analysis.Section) *analysis.CommandContext {
	return &analysis.CommandContext{
		User: analysis.UserContext{TelegramID: userID, Risk: user.RiskModerate, IntervalMinutes: 15, Watchlist: []string{"AAPL"}},
		Now:  time.Now(),
	}
}

func (f *fakeAssembler) Trending(ctx context.Context, limit int) market.Trending {
	return market.Trending{Sources: []string{"stocks"}}
}

type fakeScanner struct{}

func (fakeScanner) Premarket(ctx context.Context, userID int64) (*analysis.CommandContext, error) {
	return &analysis.CommandContext{}, nil
}

func (fakeScanner) Sectors(ctx context.Context, userID int64) (*analysis.CommandContext, error) {
	return &analysis.CommandContext{}, nil
}

func (fakeScanner) Sector(ctx context.Context, userID int64, name string) (*analysis.CommandContext, error) {
	return nil, errors.NewValidationError("sector", "Unknown sector. Try one of: Technology", name)
}

func (fakeScanner) Undervalued(ctx context.Context, userID int64) (*analysis.CommandContext, error) {
	return &analysis.CommandContext{}, nil
}

type fakeAdvisor struct{ question string }

func (f *fakeAdvisor) Analysis(ctx context.Context, cc *analysis.CommandContext) string { return "solid" }
func (f *fakeAdvisor) Why(ctx context.Context, cc *analysis.CommandContext) string      { return "earnings" }
func (f *fakeAdvisor) Compare(ctx context.Context, cc *analysis.CommandContext) string  { return "both fine" }
func (f *fakeAdvisor) Ask(ctx context.Context, cc *analysis.CommandContext) string {
	f.question = cc.Question
	return "Because of iPhone sales."
}

type fakeCharts struct{}

func (fakeCharts) PriceChart(c market.Candles, m market.Market) ([]byte, error) {
	if len(c.Bars) < 2 {
		return nil, errors.Wrap(errors.ErrUnavailable, "not enough bars")
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

type fakeTranscriber struct {
	text  string
	audio string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	b, _ := io.ReadAll(audio)
	f.audio = string(b)
	return f.text, nil
}

type fakeUsage struct{ events []*usage.Event }

func (f *fakeUsage) Record(ctx context.Context, e *usage.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeUsage) TopCommands(ctx context.Context, window time.Duration, limit int) ([]usage.CommandCount, error) {
	counts := map[string]int64{}
	for _, e := range f.events {
		counts[e.Command]++
	}
	var out []usage.CommandCount
	for cmd, n := range counts {
		out = append(out, usage.CommandCount{Command: cmd, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	bot       *fakeBot
	users     *fakeUsers
	watchlist *fakeWatchlist
	notes     *fakeNotes
	assembler *fakeAssembler
	advisor   *fakeAdvisor
	usage     *fakeUsage
	logs      *observer.ObservedLogs
	d         *Dispatcher
}

func newFixture(t *testing.T, transcriber *fakeTranscriber) *fixture {
	t.Helper()

	renderer, err := report.NewRenderer()
	require.NoError(t, err)

	f := &fixture{
		bot:       &fakeBot{},
		users:     newFakeUsers(),
		watchlist: &fakeWatchlist{entries: map[string]bool{}},
		notes:     &fakeNotes{},
		assembler: &fakeAssembler{},
		advisor:   &fakeAdvisor{},
		usage:     &fakeUsage{},
	}
	deps := Deps{
		Users:      f.users,
		Watchlist:  f.watchlist,
		Notes:      f.notes,
		Onboarding: onboarding.NewService(f.users, nil, logger.Nop()),
		Resolver:   fakeResolver{},
		Assembler:  f.assembler,
		Scanner:    fakeScanner{},
		Advisor:    f.advisor,
		Renderer:   renderer,
		Charts:     fakeCharts{},
		Usage:      f.usage,
	}
	if transcriber != nil {
		deps.Transcriber = transcriber
	}
	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	f.d = NewDispatcher(f.bot, deps, Config{Version: "1.2.3", Offset: func() int { return 77 }}, logger.New(zap.New(core)))
	return f
}

func privateText(id int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			From:      &telegram.User{ID: id, Username: "trader"},
			Chat:      &telegram.Chat{ID: id, Type: telegram.ChatTypePrivate},
			Text:      text,
		},
	}
}

func groupText(id int64, text string) telegram.Update {
	u := privateText(id, text)
	u.Message.Chat = &telegram.Chat{ID: -100, Type: telegram.ChatTypeSupergroup}
	return u
}

func callback(id int64, data string) telegram.Update {
	return telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			From: &telegram.User{ID: id},
			Message: &telegram.Message{
				MessageID: 11,
				Chat:      &telegram.Chat{ID: id, Type: telegram.ChatTypePrivate},
			},
			Data: data,
		},
	}
}

func (f *fixture) send(t *testing.T, u telegram.Update) {
	t.Helper()
	require.NoError(t, f.d.HandleUpdate(context.Background(), u))
}

func TestUnknownCommandReply(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/frobnicate now"))

	assert.Equal(t, "❌ Unknown command: /frobnicate\n\nUse /help to see available commands.", f.bot.last(t).text)
}

func TestCommandMatchingIgnoresCaseAndBotSuffix(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/PING@MarketPulseBot"))
	assert.Equal(t, pongReply, f.bot.last(t).text)

	f.send(t, privateText(1, "/Analyze AAPL"))
	assert.Contains(t, f.bot.texts()[1], "Analyzing AAPL")
	assert.Equal(t, analysis.SectionsAnalysis, f.assembler.sections)
	assert.Equal(t, telegram.ParseModeHTML, f.bot.last(t).opts.ParseMode)
}

func TestUnrecognizedSymbol(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/snapshot zzzz"))

	assert.Equal(t, "❌ Symbol ZZZZ not recognized in US, NSE or BSE markets.", f.bot.last(t).text)
}

func TestValidationErrorsShowUsage(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/add"))
	assert.Equal(t, "❌ "+usageAdd, f.bot.last(t).text)

	f.send(t, privateText(1, "/interval soon"))
	assert.Equal(t, "❌ "+badInterval, f.bot.last(t).text)

	f.send(t, privateText(1, "/interval 5000"))
	assert.Equal(t, "❌ Interval cannot exceed 24 hours (1440 minutes)", f.bot.last(t).text)

	f.send(t, privateText(1, "/interval 5"))
	assert.Equal(t, intervalSetReply(5), f.bot.last(t).text)
	assert.Equal(t, 5, f.users.intervals[1])
}

func TestAddResolvesAndReportsDuplicates(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/add reliance"))
	assert.Equal(t, addedReply("RELIANCE.NS"), f.bot.last(t).text)

	f.send(t, privateText(1, "/add RELIANCE.NS"))
	assert.Equal(t, alreadyWatchedReply("RELIANCE.NS"), f.bot.last(t).text)

	f.send(t, privateText(1, "/remove RELIANCE"))
	assert.Equal(t, removedReply("RELIANCE.NS"), f.bot.last(t).text)

	f.send(t, privateText(1, "/remove AAPL"))
	assert.Equal(t, notWatchedReply("AAPL"), f.bot.last(t).text)
}

func TestCallbackRunsCommand(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, callback(1, "snapshot:AAPL"))

	assert.Equal(t, []string{"cb-1"}, f.bot.answered)
	last := f.bot.last(t)
	assert.Contains(t, last.text, "(AAPL)")
	require.NotNil(t, last.opts.Keyboard)
	assert.Equal(t, analysis.SectionsSnapshot, f.assembler.sections)
}

func TestCallbackUnknownActionIsIgnored(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, callback(1, "teleport:AAPL"))

	assert.Equal(t, []string{"cb-1"}, f.bot.answered)
	assert.Empty(t, f.bot.sent)
}

func TestOnboardingFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/start"))
	assert.Contains(t, f.bot.last(t).text, "What is your risk appetite?")
	assert.Equal(t, user.StepAwaitingRisk, f.users.users[1].Step)

	f.send(t, privateText(1, "maybe"))
	assert.Equal(t, user.StepAwaitingRisk, f.users.users[1].Step)

	f.send(t, callback(1, "risk:aggressive"))
	assert.Contains(t, f.bot.last(t).text, "Which sectors, themes or stocks interest you?")
	assert.Equal(t, user.StepAwaitingInterests, f.users.users[1].Step)
	assert.Equal(t, user.RiskAggressive, f.users.users[1].Risk)

	before := len(f.bot.sent)
	f.send(t, callback(1, "risk:conservative"))
	require.Len(t, f.bot.sent, before+1)
	assert.Contains(t, f.bot.last(t).text, "Please tell me which sectors")
	assert.Equal(t, user.StepAwaitingInterests, f.users.users[1].Step)
	assert.Equal(t, user.RiskAggressive, f.users.users[1].Risk)

	f.send(t, privateText(1, "AI and Indian banks"))
	assert.Equal(t, user.StepComplete, f.users.users[1].Step)
	assert.Equal(t, "AI and Indian banks", f.users.users[1].Interests)
}

func TestIdleTextWithTickerAsksAdvisor(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "what about AAPL earnings?"))

	assert.Equal(t, "what about AAPL earnings?", f.advisor.question)
	assert.Contains(t, f.bot.last(t).text, "AI Answer for AAPL")
}

func TestGroupTextNeedsAddressing(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, groupText(1, "AAPL is ripping"))
	assert.Empty(t, f.bot.sent)

	f.send(t, groupText(1, "@MarketPulseBot why is AAPL up"))
	assert.Equal(t, "why is AAPL up", f.advisor.question)
	assert.Equal(t, int64(-100), f.bot.last(t).chatID)
}

func TestGroupCommandsForOtherBotsAreIgnored(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, groupText(1, "/ping@SomeOtherBot"))
	f.send(t, groupText(1, "/frob@SomeOtherBot"))
	assert.Empty(t, f.bot.sent)
	assert.Empty(t, f.usage.events)

	f.send(t, groupText(1, "/ping@marketpulsebot"))
	assert.Equal(t, "🏓 Pong!", f.bot.last(t).text)
	assert.Equal(t, int64(-100), f.bot.last(t).chatID)
}

func TestHandlerPanicGetsGenericReply(t *testing.T) {
	f := newFixture(t, nil)
	f.assembler.panicOn = "AAPL"

	f.send(t, privateText(1, "/snapshot AAPL"))

	assert.Equal(t, telegram.GenericErrorReply, f.bot.last(t).text)
	require.Len(t, f.usage.events, 1)
	assert.Equal(t, usage.StatusError, f.usage.events[0].Status)
}

func TestTouchFailureSurfacesToPoller(t *testing.T) {
	f := newFixture(t, nil)
	f.users.touchErr = errors.New("connection refused")

	err := f.d.HandleUpdate(context.Background(), privateText(1, "/ping"))
	assert.Error(t, err)
}

func TestUsageIsRecordedPerCommand(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/ping"))
	f.send(t, privateText(1, "/note Long on cloud"))

	require.Len(t, f.usage.events, 2)
	assert.Equal(t, "ping", f.usage.events[0].Command)
	assert.Equal(t, usage.StatusOK, f.usage.events[0].Status)
	assert.Equal(t, "note", f.usage.events[1].Command)
	assert.Equal(t, "Long on cloud", f.usage.events[1].Args)
	assert.Equal(t, []string{"Long on cloud"}, f.notes.texts)
}

func TestStatusShowsOffset(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/status"))

	text := f.bot.last(t).text
	assert.Contains(t, text, "Agent Status")
	assert.Contains(t, text, "Last update id: 77")
	assert.Contains(t, text, "Version: 1.2.3")
	assert.NotContains(t, text, "Top commands")

	f.send(t, privateText(1, "/ping"))
	f.send(t, privateText(1, "/ping"))
	f.send(t, privateText(1, "/status"))
	assert.Contains(t, f.bot.last(t).text, "Top commands (24h): /ping (2) /status (1)")
}

func TestChartWithoutHistory(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/chart AAPL"))

	assert.Equal(t, "📉 No price history available for AAPL right now.", f.bot.last(t).text)
	assert.Equal(t, analysis.SectionQuote|analysis.SectionCandles, f.assembler.sections)
}

func TestSectorValidation(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/sector crypto"))

	assert.Equal(t, "❌ Unknown sector. Try one of: Technology", f.bot.last(t).text)
}

func TestRiskCommand(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/risk"))
	assert.Contains(t, f.bot.last(t).text, "Moderate")
	assert.NotNil(t, f.bot.last(t).opts.Keyboard)

	f.send(t, privateText(1, "/risk 3"))
	assert.Equal(t, riskSetReply(user.RiskConservative), f.bot.last(t).text)

	f.send(t, privateText(1, "/risk yolo"))
	assert.Equal(t, "❌ Risk level must be aggressive, moderate or conservative", f.bot.last(t).text)
}

func TestVoiceWithoutTranscriber(t *testing.T) {
	f := newFixture(t, nil)
	u := privateText(1, "")
	u.Message.Voice = &telegram.Voice{FileID: "abc"}

	f.send(t, u)

	assert.Equal(t, voiceUnsupportedReply, f.bot.last(t).text)
}

func TestVoiceIsTranscribedAndAnswered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voice-1", r.URL.Path)
		_, _ = w.Write([]byte("OGGDATA"))
	}))
	defer srv.Close()

	tr := &fakeTranscriber{text: "Is MSFT a buy?"}
	f := newFixture(t, tr)
	f.bot.fileURL = srv.URL

	u := privateText(1, "")
	u.Message.Voice = &telegram.Voice{FileID: "voice-1", Duration: 3}
	f.send(t, u)

	assert.Equal(t, "OGGDATA", tr.audio)
	assert.Equal(t, heardReply("Is MSFT a buy?"), f.bot.texts()[0])
	assert.Equal(t, "Is MSFT a buy?", f.advisor.question)
	assert.Contains(t, f.bot.last(t).text, "AI Answer for MSFT")
}

func TestVoiceEchoFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OGGDATA"))
	}))
	defer srv.Close()

	f := newFixture(t, &fakeTranscriber{text: "Is MSFT a buy?"})
	f.bot.fileURL = srv.URL
	f.bot.failText = heardReply("Is MSFT a buy?")

	u := privateText(1, "")
	u.Message.Voice = &telegram.Voice{FileID: "voice-1"}
	f.send(t, u)

	warned := f.logs.FilterMessage("Failed to echo transcription").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Contains(t, f.bot.last(t).text, "AI Answer for MSFT")
}

func TestHelpListsCommands(t *testing.T) {
	f := newFixture(t, nil)

	f.send(t, privateText(1, "/help"))

	text := f.bot.last(t).text
	for _, cmd := range []string{"/add", "/analyse", "/compare", "/premarket", "/note"} {
		assert.Contains(t, text, cmd)
	}
	assert.True(t, f.d.Registry().HasCommand("analyze"))
}
