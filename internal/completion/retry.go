package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/ratelimit"
)

const maxBackoff = 30 * time.Second

// RetryingClient retries NetworkFailure errors with exponential backoff.
// Auth and malformed-response failures are returned at once.
type RetryingClient struct {
	next       Client
	maxRetries int
	baseDelay  time.Duration
	log        *slog.Logger
	timer      retry.Timer
}

// NewRetryingClient wraps next with at most maxRetries extra attempts.
func NewRetryingClient(next Client, maxRetries int, baseDelay time.Duration, log *slog.Logger) *RetryingClient {
	if log == nil {
		log = slog.Default()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingClient{
		next:       next,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		log:        log.With("component", "completion_retry"),
	}
}

func (r *RetryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError("retry", NetworkFailure, 0, err)
	}

	var (
		reply   string
		lastErr error
	)

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(r.maxRetries) + 1),
		retry.Delay(r.baseDelay),
		retry.MaxDelay(maxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.log.WarnContext(ctx, "Completion attempt failed",
				"attempt", n+1,
				"max_retries", r.maxRetries,
				"error_kind", KindOf(err),
				"error", err,
			)
		}),
	}
	if r.timer != nil {
		opts = append(opts, retry.WithTimer(r.timer))
	}

	err := retry.Do(func() error {
		text, err := r.next.Complete(ctx, prompt)
		if err != nil {
			lastErr = err
			return err
		}
		reply = text
		return nil
	}, opts...)
	if err == nil {
		return reply, nil
	}

	// A cancelled backoff wait returns the bare context error.
	var cErr *Error
	if errors.As(err, &cErr) {
		return "", err
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", newError("retry", NetworkFailure, 0, err)
}

// PacedClient spaces outbound calls to a fixed rate shared by all users.
type PacedClient struct {
	next    Client
	limiter ratelimit.Limiter
}

// NewPacedClient limits next to rps calls per second. A non-positive rps
// returns next unchanged.
func NewPacedClient(next Client, rps int) Client {
	if rps <= 0 {
		return next
	}
	return &PacedClient{next: next, limiter: ratelimit.New(rps)}
}

func (p *PacedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError("pacer", NetworkFailure, 0, err)
	}
	p.limiter.Take()
	return p.next.Complete(ctx, prompt)
}
