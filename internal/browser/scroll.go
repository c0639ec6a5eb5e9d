package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// ScrollBy scrolls the window by (dx, dy) pixels.
func (a *Adapter) ScrollBy(ctx context.Context, dx, dy int) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy))
		return true, err
	})
	return err
}

// ScrollTo scrolls the window to the absolute (x, y) position.
func (a *Adapter) ScrollTo(ctx context.Context, x, y int) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		_, err := p.Evaluate(fmt.Sprintf("window.scrollTo(%d, %d)", x, y))
		return true, err
	})
	return err
}

// ScrollToElement scrolls selector into view.
func (a *Adapter) ScrollToElement(ctx context.Context, selector string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// ScrollPage scrolls the viewport in direction ("up"|"down") by amount pixels.
func (a *Adapter) ScrollPage(ctx context.Context, direction string, amount int) error {
	dy := amount
	if direction == "up" {
		dy = -amount
	}
	return a.ScrollBy(ctx, 0, dy)
}
