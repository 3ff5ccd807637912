package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "abc", limit: 0, expect: ""},
		{name: "fits", input: "abc", limit: 3, expect: "abc"},
		{name: "hard cut without ellipsis", input: "abcdef", limit: 4, expect: "abcd"},
		{name: "keeps whitespace", input: "  ab  ", limit: 4, expect: "  ab"},
		{name: "counts runes not bytes", input: "привет", limit: 3, expect: "при"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

type fakeTimer struct {
	c       chan time.Time
	stopped bool
}

func stubTimer(t *testing.T) *fakeTimer {
	t.Helper()

	ft := &fakeTimer{c: make(chan time.Time, 1)}
	original := newTimer
	newTimer = func(time.Duration) (<-chan time.Time, func() bool) {
		return ft.c, func() bool {
			ft.stopped = true
			return true
		}
	}
	t.Cleanup(func() { newTimer = original })

	return ft
}

func TestWaitForReturnsOnCancel(t *testing.T) {
	ft := stubTimer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !ft.stopped {
		t.Fatal("expected timer to be stopped")
	}
}

func TestWaitForExpires(t *testing.T) {
	ft := stubTimer(t)
	ft.c <- time.Now()

	if err := WaitFor(context.Background(), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ft.stopped {
		t.Fatal("expected timer to be stopped")
	}
}

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
