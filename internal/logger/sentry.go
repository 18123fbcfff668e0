package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sentryFlushTimeout = 2 * time.Second

// InitSentry initialises error reporting. With an empty DSN the SDK stays
// disabled and every capture call is a no-op. The returned func flushes
// buffered events and must be called before exit.
func InitSentry(dsn, environment, release string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func() {}, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

// CaptureError reports err to Sentry with the given tags.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if id := RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// Recover creates a middleware that turns a handler panic into an error log
// and a Sentry event, so one bad update never stops the poller.
func Recover(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "Recovered from handler panic",
						"update_id", update.ID,
						"request_id", RequestID(ctx),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					sentry.CurrentHub().Recover(r)
				}
			}()
			next(ctx, b, update)
		}
	}
}
