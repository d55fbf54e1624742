package browser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTab struct {
	mu       sync.Mutex
	closes   int
	navigate func(ctx context.Context, url string) (Snapshot, error)
}

func (t *fakeTab) Navigate(ctx context.Context, url string) (Snapshot, error) {
	return t.navigate(ctx, url)
}

func (t *fakeTab) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	return nil
}

type fakeLauncher struct {
	mu       sync.Mutex
	tabs     []*fakeTab
	openErr  error
	navigate func(ctx context.Context, url string) (Snapshot, error)
}

func (l *fakeLauncher) NewTab(ctx context.Context, p Profile) (Tab, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tab := &fakeTab{navigate: l.navigate}
	l.tabs = append(l.tabs, tab)
	return tab, nil
}

func newTestFetcher(l Launcher, retries int) *Fetcher {
	return NewFetcher(l, Options{MaxRetries: retries, RetryDelay: time.Millisecond})
}

func TestFetcherReleasesTabOnNavigationFailure(t *testing.T) {
	boom := errors.New("net::ERR_CONNECTION_RESET")
	l := &fakeLauncher{navigate: func(context.Context, string) (Snapshot, error) {
		return Snapshot{}, boom
	}}
	f := newTestFetcher(l, 1)

	for i := 0; i < 100; i++ {
		_, err := f.Fetch(context.Background(), EnglishProfile(time.Second), "https://example.com/game")
		require.ErrorIs(t, err, boom)
	}

	require.Len(t, l.tabs, 100)
	for i, tab := range l.tabs {
		assert.Equal(t, 1, tab.closes, "tab %d closed %d times", i, tab.closes)
	}
}

func TestFetcherReleasesTabOnPanic(t *testing.T) {
	l := &fakeLauncher{navigate: func(context.Context, string) (Snapshot, error) {
		return Snapshot{StatusCode: 200}, nil
	}}
	f := newTestFetcher(l, 1)

	assert.Panics(t, func() {
		_ = f.Session(context.Background(), EnglishProfile(time.Second), func(s *Session) error {
			panic("extractor blew up")
		})
	})
	require.Len(t, l.tabs, 1)
	assert.Equal(t, 1, l.tabs[0].closes)
}

func TestFetcherOpenFailure(t *testing.T) {
	l := &fakeLauncher{openErr: errors.New("no chrome")}
	f := newTestFetcher(l, 1)

	called := false
	err := f.Session(context.Background(), NorwegianProfile(time.Second), func(s *Session) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, l.tabs)
}

func TestVisitNotFound(t *testing.T) {
	l := &fakeLauncher{navigate: func(_ context.Context, url string) (Snapshot, error) {
		return Snapshot{URL: url, StatusCode: 404, HTML: "<html></html>"}, nil
	}}
	f := newTestFetcher(l, 3)

	snap, err := f.Fetch(context.Background(), EnglishProfile(time.Second), "https://example.com/missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 404, snap.StatusCode)
	assert.Len(t, l.tabs, 1)
	assert.Equal(t, 1, l.tabs[0].closes)
}

func TestVisitRetriesTransientErrors(t *testing.T) {
	attempts := 0
	l := &fakeLauncher{navigate: func(_ context.Context, url string) (Snapshot, error) {
		attempts++
		if attempts < 2 {
			return Snapshot{}, context.DeadlineExceeded
		}
		return Snapshot{URL: url, StatusCode: 200, HTML: "<html><body>ok</body></html>"}, nil
	}}
	f := newTestFetcher(l, 3)

	snap, err := f.Fetch(context.Background(), EnglishProfile(time.Second), "https://example.com/slow")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 200, snap.StatusCode)
}

func TestVisitAppliesProfileTimeout(t *testing.T) {
	l := &fakeLauncher{navigate: func(ctx context.Context, _ string) (Snapshot, error) {
		<-ctx.Done()
		return Snapshot{}, ctx.Err()
	}}
	f := newTestFetcher(l, 1)

	start := time.Now()
	_, err := f.Fetch(context.Background(), EnglishProfile(20*time.Millisecond), "https://example.com/hang")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProfilesLanguages(t *testing.T) {
	assert.Contains(t, EnglishProfile(0).AcceptLanguage, "en-US")
	assert.True(t, len(NorwegianProfile(0).AcceptLanguage) > 0)
	assert.Equal(t, "nb-NO", NorwegianProfile(0).AcceptLanguage[:5])
}
