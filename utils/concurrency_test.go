package utils

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	assert.True(t, s.Add("https://example.com/1"), "first Add should return true")
	assert.False(t, s.Add("https://example.com/1/"), "trailing slash should count as the same URL")
	assert.False(t, s.Add("https://example.com/1#top"), "fragment should be ignored")
	assert.True(t, s.Contains("https://example.com/1"))
	assert.Equal(t, 1, s.Size())
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	fj := NewForkJoin()
	for i := 0; i < 100; i++ {
		fj.Go("add", func() error {
			if s.Add("https://example.com/same") {
				atomic.AddInt64(&added, 1)
			}
			return nil
		})
	}
	fj.Wait()

	assert.Equal(t, int64(1), added)
}

func TestForkJoinRunsConcurrently(t *testing.T) {
	fj := NewForkJoin()
	start := time.Now()
	for _, name := range []string{"a", "b"} {
		fj.Go(name, func() error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}
	errs := fj.Wait()

	assert.Empty(t, errs)
	assert.Less(t, time.Since(start), 95*time.Millisecond)
}

func TestForkJoinCollectsErrorsAndPanics(t *testing.T) {
	fj := NewForkJoin()
	boom := errors.New("boom")
	fj.Go("err", func() error { return boom })
	fj.Go("panic", func() error { panic("kaboom") })
	fj.Go("ok", func() error { return nil })

	errs := fj.Wait()
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs["err"], boom)
	assert.Contains(t, errs["panic"].Error(), "kaboom")
}
