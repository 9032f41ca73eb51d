package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

var fastBackoff = Backoff{Attempts: 3, Initial: time.Millisecond, Max: 4 * time.Millisecond}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", statusErr(429), true},
		{"503 wrapped", fmt.Errorf("youtube commentThreads: %w", statusErr(503)), true},
		{"403 quota", statusErr(403), false},
		{"404", statusErr(404), false},
		{"plain", errors.New("bad json"), false},
		{"dns timeout", &net.DNSError{IsTimeout: true}, true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetry_EventuallySucceeds(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastBackoff, "test", func() error {
		calls++
		if calls < 3 {
			return statusErr(503)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_PermanentStopsAtOnce(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastBackoff, "test", func() error {
		calls++
		return statusErr(403)
	})
	if err == nil || calls != 1 {
		t.Errorf("err = %v, calls = %d; want error after 1 call", err, calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastBackoff, "test", func() error {
		calls++
		return statusErr(500)
	})
	var se HTTPStatusError
	if !errors.As(err, &se) || se.HTTPStatus() != 500 {
		t.Errorf("err = %v, want last status error", err)
	}
	if calls != fastBackoff.Attempts+1 {
		t.Errorf("calls = %d, want %d", calls, fastBackoff.Attempts+1)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, fastBackoff, "test", func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestReadBackoff_OffByDefault(t *testing.T) {
	Init(Config{})
	if got := ReadBackoff().Attempts; got != 0 {
		t.Errorf("Attempts = %d, want 0", got)
	}

	Init(Config{ReadRetries: -2})
	if got := ReadBackoff().Attempts; got != 0 {
		t.Errorf("negative retries: Attempts = %d, want 0", got)
	}

	Init(Config{ReadRetries: 2})
	if got := ReadBackoff().Attempts; got != 2 {
		t.Errorf("Attempts = %d, want 2", got)
	}
}
