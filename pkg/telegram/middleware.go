package telegram

import (
	"fmt"
	"sync"
	"time"

	"marketpulse/pkg/logger"
)

// LoggingMiddleware logs command execution with timing
func LoggingMiddleware(log *logger.Logger) CommandMiddleware {
	return func(next CommandHandler) CommandHandler {
		return func(ctx *CommandContext) error {
			start := time.Now()

			log.Infow("Executing command",
				"command", ctx.Command,
				"telegram_id", ctx.TelegramID,
				"has_args", ctx.Args != "",
			)

			err := next(ctx)

			log.Debugw("Command finished",
				"command", ctx.Command,
				"telegram_id", ctx.TelegramID,
				"duration_ms", time.Since(start).Milliseconds(),
				"ok", err == nil,
			)

			return err
		}
	}
}

// RecoveryMiddleware turns a panic in a command handler into an error,
// which the registry then answers with the generic reply.
func RecoveryMiddleware(log *logger.Logger) CommandMiddleware {
	return func(next CommandHandler) CommandHandler {
		return func(ctx *CommandContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("Command handler panicked",
						"command", ctx.Command,
						"telegram_id", ctx.TelegramID,
						"panic", r,
					)
					err = fmt.Errorf("command %s panicked: %v", ctx.Command, r)
				}
			}()

			return next(ctx)
		}
	}
}

// RateLimitMiddleware prevents command spam with a per-user sliding minute window
func RateLimitMiddleware(maxPerMinute int, log *logger.Logger) CommandMiddleware {
	var mu sync.Mutex
	requests := make(map[int64][]time.Time)

	return func(next CommandHandler) CommandHandler {
		return func(ctx *CommandContext) error {
			now := time.Now()
			userID := ctx.TelegramID
			cutoff := now.Add(-1 * time.Minute)

			mu.Lock()
			valid := requests[userID][:0]
			for _, ts := range requests[userID] {
				if ts.After(cutoff) {
					valid = append(valid, ts)
				}
			}
			limited := len(valid) >= maxPerMinute
			if !limited {
				valid = append(valid, now)
			}
			requests[userID] = valid
			mu.Unlock()

			if limited {
				log.Warnw("Rate limit exceeded",
					"telegram_id", userID,
					"command", ctx.Command,
				)
				return ctx.Reply("⏱️ Slow down! Please wait a moment before trying again.")
			}

			return next(ctx)
		}
	}
}

// MetricsMiddleware tracks command usage metrics
func MetricsMiddleware(recordMetric func(command string, success bool, duration time.Duration)) CommandMiddleware {
	return func(next CommandHandler) CommandHandler {
		return func(ctx *CommandContext) error {
			start := time.Now()
			err := next(ctx)
			recordMetric(ctx.Command, err == nil, time.Since(start))
			return err
		}
	}
}

// AfterMiddleware runs hook once the handler has returned, whatever the outcome
func AfterMiddleware(hook func(ctx *CommandContext, err error, took time.Duration)) CommandMiddleware {
	return func(next CommandHandler) CommandHandler {
		return func(ctx *CommandContext) error {
			start := time.Now()
			err := next(ctx)
			hook(ctx, err, time.Since(start))
			return err
		}
	}
}
