package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// WaitForSelector waits for selector to reach state ("visible"|"attached"|
// "hidden"|"detached"). selector may be a comma-separated list of
// alternatives; each alternative is tried in turn with an evenly split
// share of timeout, and the first to reach the state wins.
func (a *Adapter) WaitForSelector(ctx context.Context, selector string, state string, timeout time.Duration) error {
	if state == "" {
		state = "visible"
	}
	if timeout <= 0 {
		timeout = a.opts.Timeout
	}

	alternatives := splitSelectorList(selector)
	share := timeout / time.Duration(len(alternatives))
	if share <= 0 {
		share = timeout
	}

	var lastErr error
	for _, alt := range alternatives {
		_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
			_, err := p.WaitForSelector(alt, playwright.PageWaitForSelectorOptions{
				State:   playwright.WaitForSelectorState(state),
				Timeout: playwright.Float(float64(share.Milliseconds())),
			})
			return true, err
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("wait for selector %q (state=%s): %w", selector, state, lastErr)
}

func splitSelectorList(selector string) []string {
	parts := strings.Split(selector, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, selector)
	}
	return out
}

// WaitForNavigation waits for the page's load state to settle.
func (a *Adapter) WaitForNavigation(ctx context.Context, timeout time.Duration) error {
	ms := a.timeoutMs()
	if timeout > 0 {
		ms = float64(timeout.Milliseconds())
	}
	_, err := do(ctx, a.worker, func(p playwright.Page) (bool, error) {
		err := p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			Timeout: playwright.Float(ms),
		})
		return true, err
	})
	return err
}

// WaitForTimeout pauses for the given duration, for use when no deterministic
// signal exists for a page to settle.
func (a *Adapter) WaitForTimeout(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
