// Package browser drives headless page loads for the scrapers. A Fetcher
// hands out one exclusive tab per Session and always releases it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

// ErrNotFound is returned by Visit when the page answered 404 or 410.
var ErrNotFound = errors.New("browser: page not found")

// DesktopUserAgent is sent by every profile unless overridden.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Profile describes how a tab presents itself to a site.
type Profile struct {
	Name           string
	UserAgent      string
	AcceptLanguage string
	Width          int
	Height         int
	Timeout        time.Duration
}

// EnglishProfile is used for the USD price guide.
func EnglishProfile(timeout time.Duration) Profile {
	return Profile{
		Name:           "en",
		UserAgent:      DesktopUserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
		Width:          1366,
		Height:         768,
		Timeout:        timeout,
	}
}

// NorwegianProfile is used for the Norwegian marketplace.
func NorwegianProfile(timeout time.Duration) Profile {
	return Profile{
		Name:           "nb",
		UserAgent:      DesktopUserAgent,
		AcceptLanguage: "nb-NO,nb;q=0.9,no;q=0.8,nn;q=0.7,en-US;q=0.6,en;q=0.5",
		Width:          1366,
		Height:         768,
		Timeout:        timeout,
	}
}

// Snapshot is the serialized state of a loaded page.
type Snapshot struct {
	URL        string
	StatusCode int
	HTML       string
}

// NotFound reports whether the page answered with a gone/missing status.
func (s Snapshot) NotFound() bool {
	return s.StatusCode == http.StatusNotFound || s.StatusCode == http.StatusGone
}

// Tab is one exclusive page. Close must be safe to call more than once.
type Tab interface {
	Navigate(ctx context.Context, url string) (Snapshot, error)
	Close() error
}

// Launcher opens tabs configured for a profile. A Launcher that fails midway
// must release whatever it already acquired before returning the error.
type Launcher interface {
	NewTab(ctx context.Context, p Profile) (Tab, error)
}

// Options tune a Fetcher.
type Options struct {
	Pacer      utils.Pacer
	PaceMin    time.Duration
	PaceMax    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *utils.Logger
}

// Fetcher loads pages through a Launcher with human-like pacing.
type Fetcher struct {
	launcher Launcher
	pacer    utils.Pacer
	paceMin  time.Duration
	paceMax  time.Duration
	retry    *utils.RetryConfig
	logger   *utils.Logger
}

// NewFetcher creates a Fetcher. A nil Pacer means no pacing.
func NewFetcher(l Launcher, opts Options) *Fetcher {
	if opts.Pacer == nil {
		opts.Pacer = utils.NoPacer{}
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDiscardLogger()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &Fetcher{
		launcher: l,
		pacer:    opts.Pacer,
		paceMin:  opts.PaceMin,
		paceMax:  opts.PaceMax,
		logger:   opts.Logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   opts.RetryDelay,
			Logger:      opts.Logger,
			Retryable: func(err error) bool {
				return !errors.Is(err, context.Canceled)
			},
		},
	}
}

// Session opens one tab for p, runs fn with it and closes the tab exactly
// once on every exit path, panics included.
func (f *Fetcher) Session(ctx context.Context, p Profile, fn func(s *Session) error) error {
	tab, err := f.launcher.NewTab(ctx, p)
	if err != nil {
		return fmt.Errorf("browser: open %s tab: %w", p.Name, err)
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			f.logger.Warn("[browser] closing %s tab: %v", p.Name, cerr)
		}
	}()

	return fn(&Session{fetcher: f, tab: tab, profile: p})
}

// Fetch loads a single URL in a fresh session.
func (f *Fetcher) Fetch(ctx context.Context, p Profile, url string) (Snapshot, error) {
	var snap Snapshot
	err := f.Session(ctx, p, func(s *Session) error {
		var err error
		snap, err = s.Visit(ctx, url)
		return err
	})
	return snap, err
}

// Session is a tab borrowed from a Fetcher for the duration of one callback.
type Session struct {
	fetcher *Fetcher
	tab     Tab
	profile Profile
}

// Visit navigates the session's tab to url, pausing before and after the
// load. Transient navigation errors are retried; a 404/410 yields the
// snapshot together with ErrNotFound.
func (s *Session) Visit(ctx context.Context, url string) (Snapshot, error) {
	f := s.fetcher
	if err := f.pacer.Pause(ctx, f.paceMin, f.paceMax); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	err := f.retry.Do(ctx, "visit "+url, func() error {
		navCtx, cancel := s.withTimeout(ctx)
		defer cancel()

		var err error
		snap, err = s.tab.Navigate(navCtx, url)
		return err
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("browser: visit %s: %w", url, err)
	}

	f.logger.Debug("[browser] %s %d %s (%d bytes)", s.profile.Name, snap.StatusCode, snap.URL, len(snap.HTML))
	if snap.NotFound() {
		return snap, ErrNotFound
	}

	if err := f.pacer.Pause(ctx, f.paceMin, f.paceMax); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.profile.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.profile.Timeout)
}
