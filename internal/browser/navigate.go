package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Goto navigates the page to url and waits for DOM content to load.
func (a *Adapter) Goto(ctx context.Context, url string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	if err != nil {
		return fmt.Errorf("goto %q: %w", url, err)
	}
	return nil
}

// Back navigates the page history backward one entry.
func (a *Adapter) Back(ctx context.Context) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.GoBack()
		return true, err
	})
	return err
}

// Forward navigates the page history forward one entry.
func (a *Adapter) Forward(ctx context.Context) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.GoForward()
		return true, err
	})
	return err
}

// Reload reloads the current page.
func (a *Adapter) Reload(ctx context.Context) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.Reload()
		return true, err
	})
	return err
}
