package browser

import (
	"context"

	"github.com/playwright-community/playwright-go"
)

// overlayCloseSelectors are common close/dismiss controls for cookie banners,
// consent dialogs and promotional modals, tried in order.
var overlayCloseSelectors = []string{
	"#onetrust-accept-btn-handler",
	".onetrust-close-btn-handler",
	"#onetrust-reject-all-handler",
	".cc-dismiss",
	".cc-allow",
	".cc-btn",
	"button[aria-label='Close']",
	"button[aria-label='close']",
	"button[aria-label='Dismiss']",
	"[aria-label='Close dialog']",
	"[data-testid='close-button']",
	"[data-dismiss='modal']",
	".modal-close",
	".modal__close",
	".close-button",
	".popup-close",
	".overlay-close",
	".dialog-close",
	"button.close",
	"a.close",
	".gdpr-banner button",
	".cookie-consent button",
	"#cookie-banner button",
	".cookie-notice .accept",
	"#CybotCookiebotDialogBodyButtonAccept",
	".fc-cta-consent",
	".qc-cmp2-summary-buttons button",
	"[class*='cookie'] button[class*='accept']",
	"[class*='consent'] button[class*='accept']",
	"[id*='cookie'] button[id*='accept']",
	"svg[aria-label='Close']",
	"[data-close-modal]",
	".newsletter-popup .close",
	".email-signup-close",
	".interstitial-close",
}

// overlayDismissTexts are button/link texts that commonly dismiss an overlay,
// matched case-insensitively as a substring against visible clickable elements.
var overlayDismissTexts = []string{
	"accept all",
	"accept cookies",
	"i accept",
	"agree",
	"allow all",
	"no thanks",
	"not now",
	"maybe later",
	"close",
	"dismiss",
	"got it",
	"ok",
	"continue",
	"skip",
	"x",
}

// DismissResult reports which overlay-dismissal strategies actually fired.
type DismissResult struct {
	ClickedSelectors []string
	ClickedTexts     []string
	EscapeSent       bool
	JSHideRan        bool
}

const overlayHideScript = `() => {
	const selectors = ['.modal-backdrop', '.overlay', '[class*="backdrop"]', '[class*="overlay"]', '[role="dialog"]', '[aria-modal="true"]'];
	let hid = false;
	for (const sel of selectors) {
		document.querySelectorAll(sel).forEach(el => {
			const style = window.getComputedStyle(el);
			if (style.position === 'fixed' || style.position === 'absolute') {
				el.style.display = 'none';
				el.style.visibility = 'hidden';
				el.style.opacity = '0';
				el.style.pointerEvents = 'none';
				hid = true;
			}
		});
	}
	document.body.style.overflow = '';
	document.documentElement.style.overflow = '';
	return hid;
}`

// DismissOverlays is a best-effort attempt to close cookie banners, consent
// dialogs and promotional overlays. It never fails: every strategy is
// attempted and the result records which ones fired.
func (a *Adapter) DismissOverlays(ctx context.Context) DismissResult {
	var result DismissResult

	for _, sel := range overlayCloseSelectors {
		clicked, _ := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
			loc := p.Locator(sel).First()
			visible, err := loc.IsVisible()
			if err != nil || !visible {
				return false, nil
			}
			if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(1000)}); err != nil {
				return false, nil
			}
			return true, nil
		})
		if clicked {
			result.ClickedSelectors = append(result.ClickedSelectors, sel)
		}
	}

	for _, text := range overlayDismissTexts {
		clicked, _ := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
			loc := p.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(false)}).First()
			visible, err := loc.IsVisible()
			if err != nil || !visible {
				return false, nil
			}
			if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(1000)}); err != nil {
				return false, nil
			}
			return true, nil
		})
		if clicked {
			result.ClickedTexts = append(result.ClickedTexts, text)
		}
	}

	_, escErr := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		return true, p.Keyboard().Press("Escape")
	})
	result.EscapeSent = escErr == nil

	hid, _ := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		v, err := p.Evaluate(overlayHideScript)
		if err != nil {
			return false, nil
		}
		b, _ := v.(bool)
		return b, nil
	})
	result.JSHideRan = hid

	return result
}
