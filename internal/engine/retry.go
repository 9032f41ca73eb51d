package engine

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Backoff controls retries of idempotent upstream reads.
type Backoff struct {
	Attempts int // retries after the first call
	Initial  time.Duration
	Max      time.Duration
}

// ReadBackoff is used for Data API list calls. Attempts comes from
// YOUTUBE_READ_RETRIES and is 0 unless configured, so by default a failed
// read is reported and the creator retries by hand. Writes are never retried
// here: replies go through the ledger instead.
func ReadBackoff() Backoff {
	return Backoff{
		Attempts: cfg.ReadRetries,
		Initial:  500 * time.Millisecond,
		Max:      8 * time.Second,
	}
}

// HTTPStatusError is implemented by upstream errors that carry a status code.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// Retry calls fn until it succeeds, fails permanently, or attempts run out.
func Retry(ctx context.Context, b Backoff, op string, fn func() error) error {
	wait := b.Initial
	var err error
	for attempt := 0; ; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil || !Transient(err) || attempt >= b.Attempts {
			return err
		}

		slog.Debug("retrying", slog.String("op", op), slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait), slog.Any("error", err))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
		if wait > b.Max {
			wait = b.Max
		}
	}
}

// Transient reports whether err is worth retrying: rate limits, 5xx and
// network failures. Quota errors (403) are final.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se HTTPStatusError
	if errors.As(err, &se) {
		switch se.HTTPStatus() {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
