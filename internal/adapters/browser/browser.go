// Package browser owns the one Chrome process and the one logical page
// the engine is allowed to drive. All navigation and evaluation against
// the platform is serialized through WithTab; there is deliberately no
// concurrency here, because two simultaneous navigations against one
// session are both semantically invalid and a strong anti-automation
// signal.
package browser

import (
	"context"
	"os"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// HeadlessEnv forces headless mode. The default is headful: the login
// flow needs a window the user can scan a QR code in.
const HeadlessEnv = "REDNOTE_HEADLESS"

// ChromePathEnv points at an explicit Chrome/Chromium binary.
const ChromePathEnv = "CHROME_PATH"

// Browser manages a single Chrome process and enforces serialized tab
// usage (one tab at a time).
type Browser struct {
	allocCtx context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	opts     []chromedp.ExecAllocatorOption

	mu     sync.Mutex
	tabSem chan struct{}
}

// New creates a browser with exactly one Chrome instance and one tab
// allowed at a time.
func New(options ...chromedp.ExecAllocatorOption) (*Browser, error) {
	headless := os.Getenv(HeadlessEnv) == "true"

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),

		// Keep the profile quiet: background fetches and sync traffic
		// are noise the platform's defenses can key on.
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-domain-reliability", true),
		chromedp.Flag("disable-features", "Translate,BackForwardCache"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
	)

	opts = append(opts, options...)

	if chromePath := os.Getenv(ChromePathEnv); chromePath != "" {
		log.GlobalInfo("browser using custom chrome path", "path", chromePath)
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	b := &Browser{
		opts:   opts,
		tabSem: make(chan struct{}, 1), // HARD LIMIT: 1 tab
	}

	if err := b.start(); err != nil {
		return nil, err
	}

	return b, nil
}

// start initializes or restarts the Chrome process.
func (b *Browser) start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), b.opts...)
	ctx, _ := chromedp.NewContext(allocCtx)

	// Force Chrome startup
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return err
	}

	b.allocCtx = allocCtx
	b.ctx = ctx
	b.cancel = cancel

	log.GlobalInfo("browser chrome started", "headless", os.Getenv(HeadlessEnv) == "true")
	return nil
}

// WithTab executes fn with exclusive access to a browser tab. Tabs
// share the browser profile, so cookies set during one operation (the
// login flow included) are visible to every later one.
func (b *Browser) WithTab(fn func(ctx context.Context) error) error {
	b.tabSem <- struct{}{}
	defer func() { <-b.tabSem }()

	tabCtx, tabCancel, err := b.acquireTab()
	if err != nil {
		return err
	}
	defer tabCancel()

	return fn(tabCtx)
}

// acquireTab creates a new browser tab and performs a health check.
// If the browser is unhealthy, it restarts Chrome and creates a new
// tab. Returns exactly one valid tab context with its cancel function.
func (b *Browser) acquireTab() (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	b.mu.Unlock()

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()

		log.GlobalWarn("browser tab failed, restarting chrome", "error", err)

		if restartErr := b.start(); restartErr != nil {
			return nil, nil, restartErr
		}

		b.mu.Lock()
		tabCtx, tabCancel = chromedp.NewContext(b.ctx)
		b.mu.Unlock()
	}

	return tabCtx, tabCancel, nil
}

// Close shuts down the browser completely. Safe to call regardless of
// which operation was in flight; the allocator cancel tears down page,
// browser context and process in that order.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
		log.GlobalInfo("browser chrome stopped")
	}
}
