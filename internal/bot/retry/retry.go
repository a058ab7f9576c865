package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/briannichols0702/moneybuybot/internal/bot/monitor"

	"go.uber.org/zap"
)

// ExhaustedError 重试次数用尽后返回，包裹最后一次的底层错误
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do 以固定间隔重试执行fn，最多attempts次
// 低频调用场景，不做抖动和指数退避
func Do[T any](ctx context.Context, tl *zap.Logger, op string, attempts int, delay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		monitor.RPCRetryFailures.WithLabelValues(op).Inc()
		tl.Warn("Retryable operation failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, &ExhaustedError{Op: op, Attempts: attempts, Err: lastErr}
}

// Do2 同Do，用于返回两个值的操作
func Do2[T1, T2 any](ctx context.Context, tl *zap.Logger, op string, attempts int, delay time.Duration, fn func(context.Context) (T1, T2, error)) (T1, T2, error) {
	type pair struct {
		a T1
		b T2
	}
	v, err := Do(ctx, tl, op, attempts, delay, func(ctx context.Context) (pair, error) {
		a, b, err := fn(ctx)
		return pair{a, b}, err
	})
	return v.a, v.b, err
}
