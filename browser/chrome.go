package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configure the shared browser process.
type ChromeOptions struct {
	ExecPath string
	Headless bool
}

// ChromeLauncher opens chromedp tabs inside a single, lazily started browser.
type ChromeLauncher struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewChromeLauncher prepares the allocator. Chrome itself starts on the first NewTab.
func NewChromeLauncher(o ChromeOptions) *ChromeLauncher {
	bin := o.ExecPath
	if bin == "" {
		bin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1366, 768),
		chromedp.UserAgent(DesktopUserAgent),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &ChromeLauncher{
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}
}

// NewTab opens a new tab configured for p. If configuring the tab fails the
// tab is closed before the error is returned.
func (l *ChromeLauncher) NewTab(ctx context.Context, p Profile) (Tab, error) {
	l.startOnce.Do(func() {
		l.startErr = chromedp.Run(l.browserCtx)
	})
	if l.startErr != nil {
		return nil, fmt.Errorf("chrome start: %w", l.startErr)
	}

	tabCtx, cancel := chromedp.NewContext(l.browserCtx)
	tab := &chromeTab{ctx: tabCtx, cancel: cancel}

	// The first Run attaches the target and its event loop lives as long as
	// the context it was given, so it must be the tab context itself.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = tab.Close()
		return nil, fmt.Errorf("chrome tab attach: %w", err)
	}

	setupCtx, stop := bindCaller(tabCtx, ctx)
	defer stop()

	err := chromedp.Run(setupCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": p.AcceptLanguage}),
		emulation.SetUserAgentOverride(p.UserAgent).
			WithAcceptLanguage(p.AcceptLanguage).
			WithPlatform("Win32"),
		chromedp.EmulateViewport(int64(p.Width), int64(p.Height)),
	)
	if err != nil {
		_ = tab.Close()
		return nil, fmt.Errorf("chrome tab setup: %w", err)
	}
	return tab, nil
}

// Close shuts the browser down.
func (l *ChromeLauncher) Close() {
	l.cancelBrowser()
	l.cancelAlloc()
}

type chromeTab struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (t *chromeTab) Navigate(ctx context.Context, url string) (Snapshot, error) {
	runCtx, stop := bindCaller(t.ctx, ctx)
	defer stop()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return Snapshot{}, fmt.Errorf("navigate: %w", err)
	}

	snap := Snapshot{URL: url}
	if resp != nil {
		snap.StatusCode = int(resp.Status)
	}

	err = chromedp.Run(runCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&snap.URL),
		chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

func (t *chromeTab) Close() error {
	t.closeOnce.Do(t.cancel)
	return nil
}

// bindCaller derives a context from the chromedp tab context that also ends
// when the caller's context does. Cancelling it does not close the tab.
func bindCaller(tabCtx, caller context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if dl, ok := caller.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(tabCtx, dl)
	} else {
		runCtx, cancel = context.WithCancel(tabCtx)
	}
	stop := context.AfterFunc(caller, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
