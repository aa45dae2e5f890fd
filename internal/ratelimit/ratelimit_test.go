package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_Unlimited(t *testing.T) {
	l := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unlimited limiter refused call %d: %v", i, err)
		}
	}
}

func TestWait_SecondCallThrottled(t *testing.T) {
	l := New(2)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first call must pass: %v", err)
	}
	// The next token is 500ms away, beyond the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatalf("second immediate call must be throttled")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(0.001)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first call must pass: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatalf("want error on a cancelled context")
	}
}
