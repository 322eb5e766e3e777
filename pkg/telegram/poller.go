package telegram

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// DefaultPollTimeout is the long-poll wait in seconds
const DefaultPollTimeout = 30

// UpdateHandler processes a single update. Errors are reported back to the poller
// so it can log them and answer the user with a generic reply.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update) error
}

// UpdateHandlerFunc adapts a function to UpdateHandler
type UpdateHandlerFunc func(ctx context.Context, update Update) error

// HandleUpdate calls f(ctx, update)
func (f UpdateHandlerFunc) HandleUpdate(ctx context.Context, update Update) error {
	return f(ctx, update)
}

// PollerConfig configures the long-poll loop
type PollerConfig struct {
	// Timeout is the long-poll wait in seconds
	Timeout int
	// Limit caps updates per fetch (Telegram allows 1-100; 0 lets the server decide)
	Limit int
	// HandlerTimeout bounds a single update's processing; 0 disables the deadline
	HandlerTimeout time.Duration
	// Backoff applies to failed fetches
	Backoff Backoff
	// OnOffset is called after each offset advance (metrics)
	OnOffset func(offset int)
	// OnFetchError is called for every failed fetch (metrics)
	OnFetchError func(err error)
}

// Poller is the single long-polling loop of the bot.
//
// Offsets are advanced before an update is dispatched, so an update whose handler
// crashes is not delivered again: delivery is at-most-once. On start the poller
// skips any backlog and only handles updates that arrive afterwards.
type Poller struct {
	source   UpdateSource
	handler  UpdateHandler
	replier  Sender
	cfg      PollerConfig
	lastSeen atomic.Int64
	log      *logger.Logger
}

// NewPoller creates a poller. replier may be nil, in which case handler faults are only logged.
func NewPoller(source UpdateSource, handler UpdateHandler, replier Sender, cfg PollerConfig, log *logger.Logger) *Poller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPollTimeout
	}
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff()
	}

	return &Poller{
		source:  source,
		handler: handler,
		replier: replier,
		cfg:     cfg,
		log:     log.With("component", "poller"),
	}
}

// Offset returns the id of the last update taken off the stream
func (p *Poller) Offset() int {
	return int(p.lastSeen.Load())
}

// Run resynchronizes and then polls until ctx is cancelled.
// It returns ctx.Err() on shutdown, or an error once the backoff policy is exhausted.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.resyncWithRetry(ctx); err != nil {
		return err
	}

	p.log.Infow("Polling started", "offset", p.Offset(), "timeout_s", p.cfg.Timeout)

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			p.log.Infow("Polling stopped", "offset", p.Offset())
			return err
		}

		_, err := p.PollOnce(ctx)
		if err == nil {
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		failures++
		if p.cfg.OnFetchError != nil {
			p.cfg.OnFetchError(err)
		}
		if p.cfg.Backoff.Exhausted(failures) {
			return errors.Wrapf(err, "giving up after %d failed fetches", failures-1)
		}

		delay := p.cfg.Backoff.Delay(failures)
		p.log.Warnw("Fetching updates failed, backing off",
			"attempt", failures,
			"delay", delay.String(),
			"error", err,
		)
		_ = p.cfg.Backoff.Wait(ctx, failures)
	}
}

// Resync skips history: it asks for the single most recent update and marks it seen
// without dispatching it.
func (p *Poller) Resync(ctx context.Context) error {
	updates, err := p.source.GetUpdates(ctx, -1, 1, 0)
	if err != nil {
		return errors.Wrap(err, "resync offset")
	}
	if len(updates) == 0 {
		return nil
	}

	latest := updates[len(updates)-1].UpdateID
	p.advance(latest)
	p.log.Infow("Skipped pending updates", "offset", latest)
	return nil
}

func (p *Poller) resyncWithRetry(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := p.Resync(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.cfg.Backoff.Exhausted(attempt) {
			return err
		}
		p.log.Warnw("Resync failed, retrying", "attempt", attempt, "error", err)
		if waitErr := p.cfg.Backoff.Wait(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}
}

// PollOnce performs one fetch and dispatches the batch in order.
// It returns the number of updates dispatched.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	updates, err := p.source.GetUpdates(ctx, p.Offset()+1, p.cfg.Limit, p.cfg.Timeout)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, update := range updates {
		// Replayed or out-of-order ids would break offset monotonicity
		if int64(update.UpdateID) <= p.lastSeen.Load() {
			p.log.Debugw("Dropping already seen update", "update_id", update.UpdateID)
			continue
		}

		p.advance(update.UpdateID)
		p.dispatch(ctx, update)
		dispatched++
	}

	return dispatched, nil
}

func (p *Poller) advance(updateID int) {
	p.lastSeen.Store(int64(updateID))
	if p.cfg.OnOffset != nil {
		p.cfg.OnOffset(updateID)
	}
}

// dispatch runs the handler with panic recovery; faults never escape the loop
func (p *Poller) dispatch(parent context.Context, update Update) {
	ctx := context.WithoutCancel(parent)
	if p.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.HandlerTimeout)
		defer cancel()
	}

	err := p.safeHandle(ctx, update)
	if err == nil {
		return
	}

	p.log.Errorw("Update handler failed",
		"update_id", update.UpdateID,
		"chat_id", update.ChatID(),
		"error", err,
	)

	if p.replier == nil {
		return
	}
	if chatID := update.ChatID(); chatID != 0 {
		if sendErr := p.replier.SendMessage(chatID, GenericErrorReply); sendErr != nil {
			p.log.Warnw("Failed to send error reply", "chat_id", chatID, "error", sendErr)
		}
	}
}

func (p *Poller) safeHandle(ctx context.Context, update Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update %d: handler panicked: %v", update.UpdateID, r)
		}
	}()
	return p.handler.HandleUpdate(ctx, update)
}
