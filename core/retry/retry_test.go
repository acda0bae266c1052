package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastPolicy keeps test backoffs in the nanosecond range.
func fastPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, Base: time.Nanosecond, Max: time.Microsecond}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3), nil, nil, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Do() = %q, want ok", got)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestDo_ExhaustionReturnsLastErrorUnwrapped(t *testing.T) {
	first := errors.New("boom 1")
	last := errors.New("boom 2")

	calls := 0
	_, err := Do(context.Background(), fastPolicy(2), nil, nil, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, first
		}
		return 0, last
	})

	if calls != 2 {
		t.Errorf("op called %d times, want exactly MaxAttempts=2", calls)
	}
	// The last error must come back verbatim, never wrapped.
	if err != last {
		t.Errorf("Do() error = %v, want the identical last error", err)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal")

	calls := 0
	_, err := Do(context.Background(), fastPolicy(5), func(err error) bool { return false }, nil,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, fatal
		})

	if calls != 1 {
		t.Errorf("op called %d times, want 1 (non-retryable must not consume budget)", calls)
	}
	if err != fatal {
		t.Errorf("Do() error = %v, want the identical error", err)
	}
}

func TestDo_HookFiresBeforeEveryRetryAfterFirst(t *testing.T) {
	var hookAttempts []int
	hook := func(attempt int, lastErr error) {
		if lastErr == nil {
			t.Error("hook received nil lastErr")
		}
		hookAttempts = append(hookAttempts, attempt)
	}

	boom := errors.New("boom")
	_, _ = Do(context.Background(), fastPolicy(3), nil, hook, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	want := []int{2, 3}
	if len(hookAttempts) != len(want) {
		t.Fatalf("hook fired %d times, want %d", len(hookAttempts), len(want))
	}
	for i, attempt := range want {
		if hookAttempts[i] != attempt {
			t.Errorf("hook call %d got attempt %d, want %d", i, hookAttempts[i], attempt)
		}
	}
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	boom := errors.New("boom")
	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 3, Base: time.Hour, Max: time.Hour}, nil, nil,
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, boom
		})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestPolicy_Backoff(t *testing.T) {
	policy := Policy{Base: 100 * time.Millisecond, Min: 150 * time.Millisecond, Max: time.Second}.withDefaults()

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "first wait clamped up to min", attempt: 1, want: 150 * time.Millisecond},
		{name: "second wait doubles", attempt: 2, want: 200 * time.Millisecond},
		{name: "third wait doubles again", attempt: 3, want: 400 * time.Millisecond},
		{name: "large attempt clamped to max", attempt: 10, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Backoff(tt.attempt); got != tt.want {
				t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestPolicy_Defaults(t *testing.T) {
	policy := Policy{}.withDefaults()

	if policy.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", policy.MaxAttempts)
	}
	if policy.Base != 200*time.Millisecond {
		t.Errorf("Base = %v, want 200ms", policy.Base)
	}
	if policy.Min != 0 {
		t.Errorf("Min = %v, want 0", policy.Min)
	}
	if policy.Max != 30*time.Second {
		t.Errorf("Max = %v, want 30s", policy.Max)
	}
}
