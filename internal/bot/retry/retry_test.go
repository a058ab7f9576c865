package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDoAlwaysFailing(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	_, err := Do(context.Background(), zap.NewNop(), "always_fail", 3, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, boom
		})

	if calls != 3 {
		t.Errorf("expected exactly 3 invocations, got %d", calls)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 || exhausted.Op != "always_fail" {
		t.Errorf("unexpected error fields: %+v", exhausted)
	}
	if !errors.Is(err, boom) {
		t.Error("ExhaustedError should wrap the last underlying error")
	}
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	calls := 0

	got, err := Do(context.Background(), zap.NewNop(), "flaky", 3, time.Millisecond,
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 invocations, got %d", calls)
	}
}

func TestDoFirstAttemptSuccess(t *testing.T) {
	calls := 0

	got, err := Do(context.Background(), zap.NewNop(), "stable", 5, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 42, nil
		})

	if err != nil || got != 42 || calls != 1 {
		t.Errorf("got (%d, %v) after %d calls", got, err, calls)
	}
}

func TestDoContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, zap.NewNop(), "cancelled", 5, time.Minute,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("transient")
		})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 invocation before cancellation, got %d", calls)
	}
}

func TestDo2(t *testing.T) {
	a, b, err := Do2(context.Background(), zap.NewNop(), "pair", 3, time.Millisecond,
		func(ctx context.Context) (int, string, error) {
			return 7, "seven", nil
		})
	if err != nil || a != 7 || b != "seven" {
		t.Errorf("got (%d, %q, %v)", a, b, err)
	}
}
