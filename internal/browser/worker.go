// Package browser drives a single Playwright page through the composite
// operations a browser-automation agent needs: primitive navigation and
// interaction, plus higher-level "smart" operations (overlay dismissal,
// text-based clicking, find-and-click) that absorb the flakiness of real
// pages behind a small set of fallback ladders.
package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// job is one unit of work submitted to a worker's command queue.
type job struct {
	fn   func(playwright.Page) (any, error)
	done chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// worker serializes every operation against a single playwright.Page onto one
// goroutine, since the underlying browser engine is not safe for concurrent use
// from multiple goroutines.
type worker struct {
	page    playwright.Page
	queue   chan job
	closeCh chan struct{}
}

func newWorker(page playwright.Page) *worker {
	w := &worker{
		page:    page,
		queue:   make(chan job),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	for {
		select {
		case j := <-w.queue:
			value, err := j.fn(w.page)
			j.done <- jobResult{value: value, err: err}
		case <-w.closeCh:
			return
		}
	}
}

// do enqueues fn and blocks until it has run on the worker goroutine, or ctx
// is done, whichever happens first. A cancelled context does not interrupt an
// already-running fn; it only stops waiting for it.
func do[T any](ctx context.Context, w *worker, fn func(playwright.Page) (T, error)) (T, error) {
	var zero T
	wrapped := func(p playwright.Page) (any, error) {
		return fn(p)
	}
	j := job{fn: wrapped, done: make(chan jobResult, 1)}

	select {
	case w.queue <- j:
	case <-w.closeCh:
		return zero, fmt.Errorf("browser worker closed")
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case res := <-j.done:
		if res.err != nil {
			return zero, res.err
		}
		if res.value == nil {
			return zero, nil
		}
		v, ok := res.value.(T)
		if !ok {
			return zero, fmt.Errorf("browser worker: unexpected result type %T", res.value)
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (w *worker) stop() {
	close(w.closeCh)
}
