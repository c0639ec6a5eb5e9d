package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// ElementType narrows ClickText's search to a class of clickable elements.
type ElementType string

const (
	ElementAny     ElementType = "any"
	ElementButton  ElementType = "button"
	ElementLink    ElementType = "link"
	ElementHeading ElementType = "heading"
)

var elementTypeSelectors = map[ElementType]string{
	ElementButton:  "button, [role=button], input[type=submit]",
	ElementLink:    "a",
	ElementHeading: "h1, h2, h3, h4",
	ElementAny:     "a, button, [role=button], input[type=submit], h1, h2, h3, h4, span, div",
}

// ClickText clicks the first visible element whose text matches text. It
// tries an accessibility-role locator first, then falls back to an in-page
// case-insensitive substring scan over a fixed set of clickable tags.
func (a *Adapter) ClickText(ctx context.Context, text string, elementType ElementType, exact bool) error {
	if elementType == "" {
		elementType = ElementAny
	}

	clicked, _ := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		roles := []string{"button", "link"}
		if elementType == ElementButton {
			roles = []string{"button"}
		} else if elementType == ElementLink {
			roles = []string{"link"}
		}
		for _, role := range roles {
			loc := p.GetByRole(playwright.AriaRole(role), playwright.PageGetByRoleOptions{
				Name:  text,
				Exact: playwright.Bool(exact),
			}).First()
			visible, err := loc.IsVisible()
			if err != nil || !visible {
				continue
			}
			if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(a.timeoutMs())}); err == nil {
				return true, nil
			}
		}
		return false, nil
	})
	if clicked {
		return nil
	}

	selector := elementTypeSelectors[elementType]
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		script := fmt.Sprintf(`(args) => {
			const els = Array.from(document.querySelectorAll(args.selector));
			const target = args.text.toLowerCase();
			const exact = args.exact;
			for (const el of els) {
				if (el.offsetParent === null) continue;
				const t = (el.innerText || el.textContent || '').trim().toLowerCase();
				if (exact ? t === target : t.includes(target)) {
					el.click();
					return true;
				}
			}
			return false;
		}`)
		v, err := p.Evaluate(script, map[string]any{"selector": selector, "text": text, "exact": exact})
		if err != nil {
			return false, err
		}
		ok, _ := v.(bool)
		if !ok {
			return false, fmt.Errorf("no visible element with text %q", text)
		}
		return true, nil
	})
	return err
}

// ClickNth clicks the index'th (0-based) element matching selector, scrolling
// it into view first and retrying with a forced click on failure.
func (a *Adapter) ClickNth(ctx context.Context, selector string, index int) error {
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		loc := p.Locator(selector).Nth(index)
		if err := loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: playwright.Float(a.timeoutMs()),
		}); err != nil {
			return false, fmt.Errorf("scroll to %q[%d]: %w", selector, index, err)
		}
		if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(a.timeoutMs())}); err == nil {
			return true, nil
		}
		if err := loc.Click(playwright.LocatorClickOptions{
			Force:   playwright.Bool(true),
			Timeout: playwright.Float(a.timeoutMs()),
		}); err != nil {
			return false, fmt.Errorf("click %q[%d]: %w", selector, index, err)
		}
		return true, nil
	})
	return err
}

// modalSelectors is a fixed list of common modal/dialog containers, tried in
// order; the first visible match is used.
var modalSelectors = []string{
	"[role='dialog']",
	"[role='alertdialog']",
	"[aria-modal='true']",
	".modal.show",
	".modal.in",
	".modal-dialog",
	".modal-content",
	".dialog",
	".popup",
	".overlay-content",
	"#modal",
	".MuiDialog-root",
	".ant-modal",
	".chakra-modal__content",
	"[data-testid='modal']",
	"[class*='Modal'][class*='open']",
	"dialog[open]",
}

// ModalContent is a structured snapshot of the first visible modal dialog.
type ModalContent struct {
	Found  bool       `json:"found"`
	Title  string     `json:"title,omitempty"`
	Text   string      `json:"text,omitempty"`
	Buttons []ButtonInfo `json:"buttons,omitempty"`
	Links   []LinkInfo   `json:"links,omitempty"`
	Inputs  []InputInfo  `json:"inputs,omitempty"`
	Images  []string     `json:"images,omitempty"`
}

// ExtractModalContent scans modalSelectors for the first visible candidate
// and extracts a structured summary of its contents. Returns {Found:false}
// if no visible modal exists.
func (a *Adapter) ExtractModalContent(ctx context.Context) (ModalContent, error) {
	return do(ctx, a.worker, func(p playwright.Page) (ModalContent, error) {
		script := `(selectors) => {
			function isVisible(el) {
				if (!el) return false;
				const r = el.getBoundingClientRect();
				if (r.width === 0 || r.height === 0) return false;
				const s = window.getComputedStyle(el);
				return s.display !== 'none' && s.visibility !== 'hidden' && s.opacity !== '0';
			}
			let modal = null;
			for (const sel of selectors) {
				const el = document.querySelector(sel);
				if (isVisible(el)) { modal = el; break; }
			}
			if (!modal) return {found: false};

			const heading = modal.querySelector('h1, h2, h3, [class*="title"], [class*="header"]');
			const buttons = Array.from(modal.querySelectorAll('button, [role="button"]'))
				.filter(isVisible).slice(0, 10)
				.map(b => ({selector: b.id ? '#'+b.id : 'button', text: (b.innerText||'').trim().slice(0,80)}));
			const links = Array.from(modal.querySelectorAll('a[href]'))
				.filter(isVisible).slice(0, 10)
				.map(a => ({text: (a.innerText||'').trim().slice(0,120), href: a.href}));
			const inputs = Array.from(modal.querySelectorAll('input, textarea, select'))
				.filter(isVisible).slice(0, 10)
				.map(i => ({selector: i.id ? '#'+i.id : i.tagName.toLowerCase(), type: i.type||i.tagName.toLowerCase(), name: i.name||'', placeholder: i.placeholder||''}));
			const images = Array.from(modal.querySelectorAll('img[src]'))
				.filter(isVisible).slice(0, 5)
				.map(img => img.src);

			return {
				found: true,
				title: heading ? (heading.innerText||'').trim().slice(0,200) : '',
				text: (modal.innerText||'').trim().slice(0, 2000),
				buttons, links, inputs, images
			};
		}`
		v, err := p.Evaluate(script, modalSelectors)
		if err != nil {
			return ModalContent{}, err
		}
		decoded, err := decodeSingle[ModalContent](v)
		if err != nil {
			return ModalContent{}, err
		}
		return decoded, nil
	})
}

// decodeSingle re-marshals a loosely-typed Evaluate() result into T.
func decodeSingle[T any](raw any) (T, error) {
	var out T
	wrapped, err := decodeSlice[T]([]any{raw})
	if err != nil || len(wrapped) == 0 {
		return out, err
	}
	return wrapped[0], nil
}

// FindAndClickStrategy names which tier of FindAndClick ultimately succeeded.
type FindAndClickStrategy string

const (
	StrategyTextMatch    FindAndClickStrategy = "text_match"
	StrategySelector     FindAndClickStrategy = "selector"
	StrategyForceSelector FindAndClickStrategy = "force_selector"
	StrategyJSTextWalk   FindAndClickStrategy = "js_text_walk"
)

// FindAndClick is the most forgiving click primitive: it dismisses overlays,
// optionally scrolls, then escalates through text matching, a raw CSS
// selector, a forced CSS selector, and finally an in-page DOM tree-walk
// comparing lower-cased innerText. target may be plain text or a selector;
// both interpretations are attempted at each applicable tier.
func (a *Adapter) FindAndClick(ctx context.Context, target string, scrollFirst bool) (FindAndClickStrategy, error) {
	a.DismissOverlays(ctx)

	if scrollFirst {
		a.ScrollBy(ctx, 0, 300)
	}

	if err := a.ClickText(ctx, target, ElementAny, false); err == nil {
		return StrategyTextMatch, nil
	}

	if _, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		loc := p.Locator(target).First()
		if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(a.timeoutMs())}); err != nil {
			return false, err
		}
		return true, nil
	}); err == nil {
		return StrategySelector, nil
	}

	if _, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		loc := p.Locator(target).First()
		if err := loc.Click(playwright.LocatorClickOptions{
			Force:   playwright.Bool(true),
			Timeout: playwright.Float(a.timeoutMs()),
		}); err != nil {
			return false, err
		}
		return true, nil
	}); err == nil {
		return StrategyForceSelector, nil
	}

	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		script := `(text) => {
			const target = text.toLowerCase();
			const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_ELEMENT);
			let node = walker.currentNode;
			while (node) {
				if (node.offsetParent !== null) {
					const t = (node.innerText || '').trim().toLowerCase();
					if (t && t.includes(target) && t.length < 200) {
						node.click();
						return true;
					}
				}
				node = walker.nextNode();
			}
			return false;
		}`
		v, err := p.Evaluate(script, target)
		if err != nil {
			return false, err
		}
		ok, _ := v.(bool)
		if !ok {
			return false, fmt.Errorf("no element found for %q by any strategy", target)
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return StrategyJSTextWalk, nil
}

// PageStructure is a token-budgeted snapshot of the interactive elements on
// a page, intended to fit a model's working context.
type PageStructure struct {
	URL     string      `json:"url"`
	Title   string      `json:"title"`
	Inputs  []InputInfo `json:"inputs"`
	Buttons []ButtonInfo `json:"buttons"`
	Links   []LinkInfo   `json:"links"`
	Selects []InputInfo  `json:"selects"`
}

// GetPageStructure captures a capped snapshot: up to 20 inputs, 20 buttons,
// 15 links and 10 selects, each reduced to a best-guess stable selector.
func (a *Adapter) GetPageStructure(ctx context.Context) (PageStructure, error) {
	url, err := a.URL(ctx)
	if err != nil {
		return PageStructure{}, err
	}
	title, _ := a.Title(ctx)

	inputs, err := a.GetAllInputs(ctx, 20)
	if err != nil {
		return PageStructure{}, err
	}
	buttons, err := a.GetAllButtons(ctx, 20)
	if err != nil {
		return PageStructure{}, err
	}
	links, err := a.GetAllLinks(ctx, 15)
	if err != nil {
		return PageStructure{}, err
	}

	selects, err := do(ctx, a.worker, func(p playwright.Page) ([]InputInfo, error) {
		raw, err := p.Evaluate(`(limit) => Array.from(document.querySelectorAll('select'))
			.filter(el => el.offsetParent !== null)
			.slice(0, limit)
			.map(el => ({selector: el.id ? '#'+el.id : (el.name ? '[name="'+el.name+'"]' : 'select'), type: 'select', name: el.name||'', placeholder: ''}))`, 10)
		if err != nil {
			return nil, err
		}
		return decodeSlice[InputInfo](raw)
	})
	if err != nil {
		return PageStructure{}, err
	}

	return PageStructure{
		URL:     url,
		Title:   title,
		Inputs:  inputs,
		Buttons: buttons,
		Links:   links,
		Selects: selects,
	}, nil
}
