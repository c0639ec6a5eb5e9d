package browser

import (
	"context"
	"encoding/base64"

	"github.com/playwright-community/playwright-go"
)

// contentCharLimit bounds how much page HTML is ever returned to the caller,
// since a model's context window cannot absorb an arbitrary page.
const contentCharLimit = 20000

// URL returns the page's current URL.
func (a *Adapter) URL(ctx context.Context) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.URL(), nil
	})
}

// Title returns the page's title.
func (a *Adapter) Title(ctx context.Context) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.Title()
	})
}

// Content returns the page's full HTML, truncated to contentCharLimit.
func (a *Adapter) Content(ctx context.Context) (string, error) {
	html, err := do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.Content()
	})
	if err != nil {
		return "", err
	}
	if len(html) > contentCharLimit {
		html = html[:contentCharLimit] + "... [truncated]"
	}
	return html, nil
}

// ScreenshotOptions controls how a page or element screenshot is captured.
type ScreenshotOptions struct {
	FullPage bool
	Quality  int // JPEG quality 0-100, ignored for PNG
}

// Screenshot captures the current page as a base64-encoded JPEG.
func (a *Adapter) Screenshot(ctx context.Context, opts ScreenshotOptions) (string, error) {
	quality := opts.Quality
	if quality <= 0 {
		quality = 80
	}
	raw, err := do(ctx, a.worker, func(p playwright.Page) ([]byte, error) {
		return p.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(opts.FullPage),
			Type:     playwright.ScreenshotTypeJpeg,
			Quality:  playwright.Int(quality),
		})
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ScreenshotElement captures the first element matching selector.
func (a *Adapter) ScreenshotElement(ctx context.Context, selector string) (string, error) {
	raw, err := do(ctx, a.worker, func(p playwright.Page) ([]byte, error) {
		return p.Locator(selector).First().Screenshot(playwright.LocatorScreenshotOptions{
			Type: playwright.ScreenshotTypeJpeg,
		})
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Evaluate runs an arbitrary JavaScript expression in the page context and
// returns its (loosely-typed) result.
func (a *Adapter) Evaluate(ctx context.Context, script string) (any, error) {
	return do(ctx, a.worker, func(p playwright.Page) (any, error) {
		return p.Evaluate(script)
	})
}
