package llmclient

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetrySucceedsAfterTransientErrors(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), 3, func(attempt int) (string, error) {
		attempts++
		if attempt < 3 {
			return "", &ProviderError{Provider: "test", Class: ErrTransient, Err: errors.New("rate limited")}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryStopsImmediatelyOnPermanentError(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), 5, func(int) (string, error) {
		attempts++
		return "", &ProviderError{Provider: "test", Class: ErrConfiguration, Err: errors.New("bad api key")}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on configuration error)", attempts)
	}
}

func TestWithRetryExhaustsMaxAttempts(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), 2, func(int) (string, error) {
		attempts++
		return "", &ProviderError{Provider: "test", Class: ErrTransient, Err: errors.New("server busy")}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	cases := map[int]error{
		401: ErrConfiguration,
		403: ErrConfiguration,
		400: ErrPermanent,
		404: ErrPermanent,
		429: ErrTransient,
		500: ErrTransient,
		503: ErrTransient,
		418: ErrPermanent,
	}
	for status, want := range cases {
		if got := classifyHTTPStatus(status); got != want {
			t.Errorf("classifyHTTPStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestLooksTransient(t *testing.T) {
	if !looksTransient(errors.New("dial tcp: connection reset by peer")) {
		t.Error("expected connection reset to be transient")
	}
	if looksTransient(errors.New("invalid request: missing field")) {
		t.Error("expected validation error to not be transient")
	}
}
