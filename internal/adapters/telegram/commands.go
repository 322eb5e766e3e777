package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketpulse/internal/domain/user"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/onboarding"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/telegram"
)

// Command categories for /help grouping
const (
	categoryWatchlist = "Watchlist"
	categoryResearch  = "Research"
	categoryMarket    = "Market"
	categoryYou       = "You"
	categoryBot       = "Bot"
)

const (
	statusUsageWindow = 24 * time.Hour
	statusTopCommands = 3
)

func (d *Dispatcher) registerCommands() {
	for _, c := range []telegram.CommandConfig{
		{Name: "start", Description: "Restart onboarding", Category: categoryYou, Handler: d.handleStart},
		{Name: "help", Description: "Show available commands", Category: categoryBot, Handler: d.handleHelp},

		{Name: "add", Description: "Monitor a stock", Usage: "/add TICKER", Category: categoryWatchlist, Handler: d.handleAdd},
		{Name: "remove", Description: "Stop monitoring a stock", Usage: "/remove TICKER", Category: categoryWatchlist, Handler: d.handleRemove},
		{Name: "list", Description: "Show monitored stocks", Category: categoryWatchlist, Handler: d.handleList},
		{Name: "interval", Description: "Alert check interval", Usage: "/interval MINUTES", Category: categoryWatchlist, Handler: d.handleInterval},
		{Name: "status", Description: "Bot and watchlist status", Category: categoryWatchlist, Handler: d.handleStatus},

		{Name: "snapshot", Description: "Quote and key metrics", Usage: "/snapshot TICKER", Category: categoryResearch, Handler: d.handleSnapshot},
		{Name: "analyse", Aliases: []string{"analyze"}, Description: "Deep report with AI commentary", Usage: "/analyse TICKER", Category: categoryResearch, Handler: d.handleAnalyse},
		{Name: "why", Description: "Why is it moving today", Usage: "/why TICKER", Category: categoryResearch, Handler: d.handleWhy},
		{Name: "chart", Description: "Price chart", Usage: "/chart TICKER", Category: categoryResearch, Handler: d.handleChart},
		{Name: "news", Description: "Latest company news", Usage: "/news TICKER", Category: categoryResearch, Handler: d.handleNews},
		{Name: "ask", Description: "Ask the AI about a stock", Usage: "/ask TICKER QUESTION", Category: categoryResearch, Handler: d.handleAsk},
		{Name: "compare", Description: "Side by side comparison", Usage: "/compare A B", Category: categoryResearch, Handler: d.handleCompare},

		{Name: "premarket", Description: "Index proxies and top news", Category: categoryMarket, Handler: d.handlePremarket},
		{Name: "sector", Description: "Sector performance or leaders", Usage: "/sector [NAME]", Category: categoryMarket, Handler: d.handleSector},
		{Name: "undervalued", Description: "Value screen over large caps", Category: categoryMarket, Handler: d.handleUndervalued},
		{Name: "trending", Description: "Most mentioned tickers on Reddit", Category: categoryMarket, Handler: d.handleTrending},

		{Name: "risk", Description: "Show or set your risk profile", Usage: "/risk [LEVEL]", Category: categoryYou, Handler: d.handleRisk},
		{Name: "note", Description: "Save an investment note", Usage: "/note TEXT", Category: categoryYou, Handler: d.handleNote},
		{Name: "profile", Description: "Profile derived from your notes", Category: categoryYou, Handler: d.handleProfile},

		{Name: "ping", Description: "Check the bot is alive", Category: categoryBot, Hidden: true, Handler: d.handlePing},
		{Name: "donate", Description: "Support development", Category: categoryBot, Hidden: true, Handler: d.handleDonate},
		{Name: "about", Description: "About this bot", Category: categoryBot, Hidden: true, Handler: d.handleAbout},
	} {
		d.registry.MustRegister(c)
	}
}

// userOf returns the user the dispatcher attached to the command
func userOf(c *telegram.CommandContext) *user.User {
	if u, ok := c.User.(*user.User); ok && u != nil {
		return u
	}
	return user.New(c.TelegramID, "", time.Now())
}

func (d *Dispatcher) reply(c *telegram.CommandContext, kind report.Kind, cc *analysis.CommandContext) error {
	rep, err := d.deps.Renderer.Render(kind, cc)
	if err != nil {
		return errors.Wrapf(err, "render %s", kind)
	}
	return c.ReplyWithOptions(rep.Text, rep.Options())
}

func tickerArg(c *telegram.CommandContext) (string, error) {
	fields := c.ArgFields()
	if len(fields) == 0 {
		return "", errors.NewValidationError("ticker", fmt.Sprintf(usageTicker, c.Command, c.Command), "")
	}
	return fields[0], nil
}

func (d *Dispatcher) handleStart(c *telegram.CommandContext) error {
	reply, err := d.deps.Onboarding.Start(c.Ctx, userOf(c))
	if err != nil {
		return err
	}
	return d.sendOnboarding(c.ChatID, reply)
}

func (d *Dispatcher) handleHelp(c *telegram.CommandContext) error {
	return d.reply(c, report.KindHelp, d.deps.Assembler.ForUser(c.Ctx, c.TelegramID, 0))
}

func (d *Dispatcher) handleAdd(c *telegram.CommandContext) error {
	fields := c.ArgFields()
	if len(fields) == 0 {
		return errors.NewValidationError("ticker", usageAdd, "")
	}

	res, err := d.deps.Resolver.Resolve(c.Ctx, fields[0])
	if err != nil {
		return err
	}
	ticker, created, err := d.deps.Watchlist.Add(c.Ctx, c.TelegramID, res.Symbol)
	if err != nil {
		return err
	}
	if !created {
		return c.Reply(alreadyWatchedReply(ticker))
	}
	return c.Reply(addedReply(ticker))
}

func (d *Dispatcher) handleRemove(c *telegram.CommandContext) error {
	fields := c.ArgFields()
	if len(fields) == 0 {
		return errors.NewValidationError("ticker", usageRemove, "")
	}

	ticker, removed, err := d.deps.Watchlist.Remove(c.Ctx, c.TelegramID, fields[0])
	if err != nil {
		return err
	}
	if !removed {
		// RELIANCE is stored as RELIANCE.NS
		if res, resErr := d.deps.Resolver.Resolve(c.Ctx, fields[0]); resErr == nil && res.Symbol != ticker {
			ticker, removed, err = d.deps.Watchlist.Remove(c.Ctx, c.TelegramID, res.Symbol)
			if err != nil {
				return err
			}
		}
	}
	if !removed {
		return c.Reply(notWatchedReply(ticker))
	}
	return c.Reply(removedReply(ticker))
}

func (d *Dispatcher) handleList(c *telegram.CommandContext) error {
	return d.reply(c, report.KindWatchlist, d.deps.Assembler.ForUser(c.Ctx, c.TelegramID, 0))
}

func (d *Dispatcher) handleInterval(c *telegram.CommandContext) error {
	fields := c.ArgFields()
	if len(fields) == 0 {
		return errors.NewValidationError("interval", usageInterval, "")
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return errors.NewValidationError("interval", badInterval, fields[0])
	}
	if err := d.deps.Users.SetInterval(c.Ctx, c.TelegramID, minutes); err != nil {
		return err
	}
	return c.Reply(intervalSetReply(minutes))
}

func (d *Dispatcher) handleStatus(c *telegram.CommandContext) error {
	cc := d.deps.Assembler.ForUser(c.Ctx, c.TelegramID, 0)
	cc.Status = analysis.Status{
		Uptime:  d.now().Sub(d.cfg.Started),
		Version: d.cfg.Version,
	}
	if d.cfg.Offset != nil {
		cc.Status.PollOffset = d.cfg.Offset()
	}
	if d.deps.Usage != nil {
		top, err := d.deps.Usage.TopCommands(c.Ctx, statusUsageWindow, statusTopCommands)
		if err != nil {
			d.log.Warnw("Failed to load command stats", "error", err)
		}
		cc.Status.TopCommands = top
	}
	return d.reply(c, report.KindStatus, cc)
}

func (d *Dispatcher) handleSnapshot(c *telegram.CommandContext) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}
	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionsSnapshot)
	if err != nil {
		return err
	}
	return d.reply(c, report.KindSnapshot, cc)
}

func (d *Dispatcher) handleAnalyse(c *telegram.CommandContext) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}
	_ = c.ReplyWithOptions(analysingReply(strings.ToUpper(ticker)), telegram.MessageOptions{ParseMode: telegram.ParseModeHTML})

	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionsAnalysis)
	if err != nil {
		return err
	}
	cc.AIText = d.deps.Advisor.Analysis(c.Ctx, cc)
	return d.reply(c, report.KindAnalysis, cc)
}

func (d *Dispatcher) handleWhy(c *telegram.CommandContext) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}
	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionsWhy)
	if err != nil {
		return err
	}
	cc.AIText = d.deps.Advisor.Why(c.Ctx, cc)
	return d.reply(c, report.KindWhy, cc)
}

func (d *Dispatcher) handleChart(c *telegram.CommandContext) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}
	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionQuote|analysis.SectionCandles)
	if err != nil {
		return err
	}

	subj := cc.Primary()
	png, err := d.deps.Charts.PriceChart(subj.Data.Candles, subj.Market())
	if err != nil {
		if errors.Is(err, errors.ErrUnavailable) {
			return c.Reply(fmt.Sprintf("📉 No price history available for %s right now.", subj.Symbol()))
		}
		return errors.Wrap(err, "draw chart")
	}

	caption := fmt.Sprintf("📈 %s · %d sessions", subj.Symbol(), len(subj.Data.Candles.Bars))
	return c.Bot.SendPhoto(c.ChatID, png, caption)
}

func (d *Dispatcher) handleNews(c *telegram.CommandContext) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}
	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionQuote|analysis.SectionProfile|analysis.SectionNews)
	if err != nil {
		return err
	}
	return d.reply(c, report.KindNews, cc)
}

func (d *Dispatcher) handleAsk(c *telegram.CommandContext) error {
	fields := c.ArgFields()
	if len(fields) < 2 {
		return errors.NewValidationError("question", usageAsk, c.Args)
	}
	ticker := fields[0]
	question := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.Args), ticker))

	_ = c.ReplyWithOptions(consultingReply(strings.ToUpper(ticker)), telegram.MessageOptions{ParseMode: telegram.ParseModeHTML})

	cc, err := d.deps.Assembler.Assemble(c.Ctx, c.TelegramID, ticker, analysis.SectionsAsk)
	if err != nil {
		return err
	}
	cc.Question = question
	cc.AIText = d.deps.Advisor.Ask(c.Ctx, cc)
	return d.reply(c, report.KindAsk, cc)
}

func (d *Dispatcher) handleCompare(c *telegram.CommandContext) error {
	fields := c.ArgFields()
	if len(fields) < 2 {
		return errors.NewValidationError("tickers", usageCompare, c.Args)
	}
	cc, err := d.deps.Assembler.AssemblePair(c.Ctx, c.TelegramID, fields[0], fields[1], analysis.SectionsCompare)
	if err != nil {
		return err
	}
	cc.AIText = d.deps.Advisor.Compare(c.Ctx, cc)
	return d.reply(c, report.KindCompare, cc)
}

func (d *Dispatcher) handlePremarket(c *telegram.CommandContext) error {
	cc, err := d.deps.Scanner.Premarket(c.Ctx, c.TelegramID)
	if err != nil {
		return err
	}
	return d.reply(c, report.KindPremarket, cc)
}

func (d *Dispatcher) handleSector(c *telegram.CommandContext) error {
	if name := strings.TrimSpace(c.Args); name != "" {
		cc, err := d.deps.Scanner.Sector(c.Ctx, c.TelegramID, name)
		if err != nil {
			return err
		}
		return d.reply(c, report.KindSector, cc)
	}
	cc, err := d.deps.Scanner.Sectors(c.Ctx, c.TelegramID)
	if err != nil {
		return err
	}
	return d.reply(c, report.KindSectors, cc)
}

func (d *Dispatcher) handleUndervalued(c *telegram.CommandContext) error {
	cc, err := d.deps.Scanner.Undervalued(c.Ctx, c.TelegramID)
	if err != nil {
		return err
	}
	return d.reply(c, report.KindUndervalued, cc)
}

func (d *Dispatcher) handleTrending(c *telegram.CommandContext) error {
	cc := d.deps.Assembler.ForUser(c.Ctx, c.TelegramID, 0)
	cc.Trending = d.deps.Assembler.Trending(c.Ctx, d.cfg.TrendingLimit)
	return d.reply(c, report.KindTrending, cc)
}

func (d *Dispatcher) handleRisk(c *telegram.CommandContext) error {
	if strings.TrimSpace(c.Args) == "" {
		return c.ReplyWithOptions(riskCurrentReply(userOf(c).RiskOrDefault()), telegram.MessageOptions{
			ParseMode: telegram.ParseModeHTML,
			Keyboard:  onboarding.RiskKeyboard(),
		})
	}
	risk, err := d.deps.Users.SetRisk(c.Ctx, c.TelegramID, c.Args)
	if err != nil {
		return err
	}
	return c.Reply(riskSetReply(risk))
}

func (d *Dispatcher) handleNote(c *telegram.CommandContext) error {
	if strings.TrimSpace(c.Args) == "" {
		return errors.NewValidationError("note", usageNote, "")
	}
	if _, err := d.deps.Notes.Add(c.Ctx, c.TelegramID, c.Args); err != nil {
		return err
	}
	return c.Reply(noteSavedReply)
}

func (d *Dispatcher) handleProfile(c *telegram.CommandContext) error {
	return d.reply(c, report.KindProfile, d.deps.Assembler.ForUser(c.Ctx, c.TelegramID, analysis.SectionNotes))
}

func (d *Dispatcher) handlePing(c *telegram.CommandContext) error {
	return c.Reply(pongReply)
}

func (d *Dispatcher) handleDonate(c *telegram.CommandContext) error {
	if d.cfg.DonateURL == "" {
		return c.Reply(donateFallbackReply)
	}
	return c.Reply(donateReply(d.cfg.DonateURL))
}

func (d *Dispatcher) handleAbout(c *telegram.CommandContext) error {
	return c.ReplyWithOptions(aboutReply(d.cfg.Version), telegram.MessageOptions{ParseMode: telegram.ParseModeHTML})
}
