package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewDiscardLogger()}
	calls := 0
	err := r.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}
	boom := errors.New("boom")
	calls := 0
	err := r.Do(context.Background(), "op", func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	r := &RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}
	calls := 0
	err := r.Do(context.Background(), "op", func() error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRandomPacerBounds(t *testing.T) {
	p := NewRandomPacer()
	for i := 0; i < 50; i++ {
		d := p.pick(10*time.Millisecond, 20*time.Millisecond)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}
}

func TestRandomPacerHonoursContext(t *testing.T) {
	p := NewRandomPacer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Pause(ctx, time.Hour, 2*time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoPacer(t *testing.T) {
	start := time.Now()
	require.NoError(t, NoPacer{}.Pause(context.Background(), time.Hour, time.Hour))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
