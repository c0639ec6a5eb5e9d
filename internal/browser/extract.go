package browser

import (
	"context"

	"github.com/playwright-community/playwright-go"
)

// GetText returns the text content of the first element matching selector.
func (a *Adapter) GetText(ctx context.Context, selector string) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.Locator(selector).First().TextContent()
	})
}

// GetAttribute returns the named attribute of the first element matching selector.
func (a *Adapter) GetAttribute(ctx context.Context, selector, attribute string) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		v, err := p.Locator(selector).First().GetAttribute(attribute)
		return v, err
	})
}

// GetInputValue returns the current value of the first input/select/textarea matching selector.
func (a *Adapter) GetInputValue(ctx context.Context, selector string) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.Locator(selector).First().InputValue()
	})
}

// GetInnerHTML returns the innerHTML of the first element matching selector.
func (a *Adapter) GetInnerHTML(ctx context.Context, selector string) (string, error) {
	return do(ctx, a.worker, func(p playwright.Page) (string, error) {
		return p.Locator(selector).First().InnerHTML()
	})
}

// IsVisible reports whether the first element matching selector is visible.
func (a *Adapter) IsVisible(ctx context.Context, selector string) (bool, error) {
	return do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		return p.Locator(selector).First().IsVisible()
	})
}

// IsEnabled reports whether the first element matching selector is enabled.
func (a *Adapter) IsEnabled(ctx context.Context, selector string) (bool, error) {
	return do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		return p.Locator(selector).First().IsEnabled()
	})
}

// CountElements counts all elements matching selector.
func (a *Adapter) CountElements(ctx context.Context, selector string) (int, error) {
	return do(ctx, a.worker, func(p playwright.Page) (int, error) {
		return p.Locator(selector).Count()
	})
}

// BoundingBox is the pixel rectangle of an element relative to the page.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// GetBoundingBox returns the bounding box of the first element matching selector.
func (a *Adapter) GetBoundingBox(ctx context.Context, selector string) (*BoundingBox, error) {
	return do(ctx, a.worker, func(p playwright.Page) (*BoundingBox, error) {
		box, err := p.Locator(selector).First().BoundingBox()
		if err != nil || box == nil {
			return nil, err
		}
		return &BoundingBox{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
	})
}

// LinkInfo describes one <a> element discovered by GetAllLinks.
type LinkInfo struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// GetAllLinks returns up to limit visible links on the page.
func (a *Adapter) GetAllLinks(ctx context.Context, limit int) ([]LinkInfo, error) {
	return do(ctx, a.worker, func(p playwright.Page) ([]LinkInfo, error) {
		raw, err := p.Evaluate(`(limit) => Array.from(document.querySelectorAll('a[href]'))
			.filter(a => a.offsetParent !== null)
			.slice(0, limit)
			.map(a => ({text: (a.innerText || '').trim().slice(0, 120), href: a.href}))`, limit)
		if err != nil {
			return nil, err
		}
		return decodeSlice[LinkInfo](raw)
	})
}

// InputInfo describes one form input discovered by GetAllInputs.
type InputInfo struct {
	Selector    string `json:"selector"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// GetAllInputs returns up to limit visible inputs on the page.
func (a *Adapter) GetAllInputs(ctx context.Context, limit int) ([]InputInfo, error) {
	return do(ctx, a.worker, func(p playwright.Page) ([]InputInfo, error) {
		raw, err := p.Evaluate(`(limit) => Array.from(document.querySelectorAll('input, textarea, select'))
			.filter(el => el.offsetParent !== null)
			.slice(0, limit)
			.map(el => ({
				selector: el.id ? '#' + el.id : (el.name ? '[name="' + el.name + '"]' : el.tagName.toLowerCase()),
				type: el.type || el.tagName.toLowerCase(),
				name: el.name || '',
				placeholder: el.placeholder || ''
			}))`, limit)
		if err != nil {
			return nil, err
		}
		return decodeSlice[InputInfo](raw)
	})
}

// ButtonInfo describes one clickable button discovered by GetAllButtons.
type ButtonInfo struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

// GetAllButtons returns up to limit visible buttons on the page.
func (a *Adapter) GetAllButtons(ctx context.Context, limit int) ([]ButtonInfo, error) {
	return do(ctx, a.worker, func(p playwright.Page) ([]ButtonInfo, error) {
		raw, err := p.Evaluate(`(limit) => Array.from(document.querySelectorAll('button, [role="button"], input[type="submit"]'))
			.filter(el => el.offsetParent !== null)
			.slice(0, limit)
			.map(el => ({
				selector: el.id ? '#' + el.id : el.tagName.toLowerCase(),
				text: (el.innerText || el.value || '').trim().slice(0, 80)
			}))`, limit)
		if err != nil {
			return nil, err
		}
		return decodeSlice[ButtonInfo](raw)
	})
}
