package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options configures a single dedicated Adapter.
type Options struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration // default per-operation timeout
	RemoteURL      string        // optional CDP/websocket endpoint, bypasses local launch
	HTTPUsername   string
	HTTPPassword   string
}

func (o Options) withDefaults() Options {
	if o.ViewportWidth == 0 {
		o.ViewportWidth = 1920
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = 1080
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Adapter is a single-page browser-control facade. Every operation is
// serialized onto one dedicated worker goroutine backing one playwright.Page;
// an Adapter must not be shared across concurrent logical agent runs.
type Adapter struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	worker  *worker
	opts    Options
}

// New launches (or connects to) a browser and returns an Adapter bound to a
// single fresh page. The caller owns the returned Adapter and must call
// Close on every exit path.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	opts = opts.withDefaults()

	if err := playwright.Install(&playwright.RunOptions{Verbose: false}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var browser playwright.Browser
	if opts.RemoteURL != "" {
		browser, err = pw.Chromium.Connect(opts.RemoteURL)
	} else {
		browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
			Timeout:  playwright.Float(float64(opts.Timeout.Milliseconds())),
		})
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		AcceptDownloads:   playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if opts.HTTPUsername != "" {
		contextOpts.HttpCredentials = &playwright.HttpCredentials{
			Username: opts.HTTPUsername,
			Password: opts.HTTPPassword,
		}
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Adapter{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		worker:  newWorker(page),
		opts:    opts,
	}, nil
}

// Close tears down the page, context, browser and Playwright runtime, in
// that order, collecting (not short-circuiting on) the first error.
func (a *Adapter) Close() error {
	a.worker.stop()
	var firstErr error
	if err := a.bctx.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *Adapter) timeoutMs() float64 {
	return float64(a.opts.Timeout.Milliseconds())
}
