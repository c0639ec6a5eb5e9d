package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ClickStrategy names which fallback tier ultimately succeeded.
type ClickStrategy string

const (
	ClickNormal       ClickStrategy = "normal"
	ClickForced       ClickStrategy = "force"
	ClickJSElement    ClickStrategy = "js_element_click"
	ClickJSDispatched ClickStrategy = "js_dispatch_event"
)

// Click clicks selector, escalating through four tiers until one succeeds:
// a normal click, a forced click (bypasses actionability checks such as
// "intercepts pointer events"), an in-page el.click(), and finally an
// in-page dispatchEvent('click'). The winning strategy is returned.
func (a *Adapter) Click(ctx context.Context, selector string, button string) (ClickStrategy, error) {
	if button == "" {
		button = "left"
	}
	return do(ctx, a.worker, func(p playwright.Page) (ClickStrategy, error) {
		loc := p.Locator(selector).First()

		if err := loc.Click(playwright.LocatorClickOptions{
			Button:  playwright.MouseButton(button),
			Timeout: playwright.Float(a.timeoutMs()),
		}); err == nil {
			return ClickNormal, nil
		}

		if err := loc.Click(playwright.LocatorClickOptions{
			Button:  playwright.MouseButton(button),
			Force:   playwright.Bool(true),
			Timeout: playwright.Float(a.timeoutMs()),
		}); err == nil {
			return ClickForced, nil
		}

		if _, err := loc.Evaluate("el => el.click()", nil); err == nil {
			return ClickJSElement, nil
		}

		script := "el => el.dispatchEvent(new MouseEvent('click', {bubbles: true, cancelable: true}))"
		if _, err := loc.Evaluate(script, nil); err != nil {
			return "", fmt.Errorf("click %q: all strategies failed: %w", selector, err)
		}
		return ClickJSDispatched, nil
	})
}

// DoubleClick double-clicks the first element matching selector.
func (a *Adapter) DoubleClick(ctx context.Context, selector string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().Dblclick(playwright.LocatorDblclickOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// Hover moves the pointer over the first element matching selector.
func (a *Adapter) Hover(ctx context.Context, selector string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().Hover(playwright.LocatorHoverOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// Press sends a single keyboard key (e.g. "Enter", "Tab") to the focused element.
func (a *Adapter) Press(ctx context.Context, key string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		return true, p.Keyboard().Press(key)
	})
	return err
}

// Fill clears and sets the value of the first element matching selector.
func (a *Adapter) Fill(ctx context.Context, selector, value string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// Type sends key-by-key input to the first element matching selector,
// simulating a real typist rather than a programmatic value assignment.
func (a *Adapter) Type(ctx context.Context, selector, text string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// SelectOption chooses value in the first <select> matching selector.
func (a *Adapter) SelectOption(ctx context.Context, selector, value string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) ([]string, error) {
		return p.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
			Values: &[]string{value},
		})
	})
	return err
}

// Check ticks a checkbox/radio matching selector.
func (a *Adapter) Check(ctx context.Context, selector string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().Check(playwright.LocatorCheckOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// Uncheck clears a checkbox matching selector.
func (a *Adapter) Uncheck(ctx context.Context, selector string) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.Locator(selector).First().Uncheck(playwright.LocatorUncheckOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		})
		return true, err
	})
	return err
}

// normalizeText lower-cases and trims for case-insensitive substring matching,
// mirroring the text comparisons used throughout the smart click operations.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
