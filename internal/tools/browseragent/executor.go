package browseragent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayfarerhq/pilot/internal/browser"
	"github.com/wayfarerhq/pilot/pkg/models"
)

type handlerFunc func(ctx context.Context, adapter *browser.Adapter, args map[string]any) (map[string]any, error)

// Executor dispatches a (name, arguments) tool invocation onto a
// browser.Adapter. It never returns an error to the caller for expected
// failures; those are folded into the AgentToolResult envelope.
type Executor struct {
	registry *Registry
	adapter  *browser.Adapter
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

// NewExecutor builds an Executor bound to one browser.Adapter and validates
// that every registered tool has a handler.
func NewExecutor(registry *Registry, adapter *browser.Adapter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{registry: registry, adapter: adapter, logger: logger}
	e.handlers = e.buildHandlers()
	e.validateHandlerCoverage()
	return e
}

func (e *Executor) validateHandlerCoverage() {
	for _, name := range e.registry.Names() {
		if _, ok := e.handlers[name]; !ok {
			e.logger.Warn("browseragent: tool has no handler", "tool", name)
		}
	}
	for name := range e.handlers {
		if _, ok := e.registry.Get(name); !ok {
			e.logger.Debug("browseragent: handler has no matching tool definition", "tool", name)
		}
	}
}

// Execute dispatches one tool invocation. It never panics or propagates an
// error from a failed browser operation; failures are reported in the
// returned AgentToolResult.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) *models.AgentToolResult {
	handler, ok := e.handlers[name]
	if !ok {
		return &models.AgentToolResult{
			Success: false,
			Tool:    name,
			Error:   fmt.Sprintf("unknown tool: %s (available: %v)", name, e.registry.Names()),
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	e.logger.Info("browseragent: executing tool", "tool", name)
	fields, err := func() (result map[string]any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in tool handler: %v", r)
			}
		}()
		return handler(ctx, e.adapter, args)
	}()
	if err != nil {
		e.logger.Debug("browseragent: tool failed", "tool", name, "error", err)
		return &models.AgentToolResult{
			Success:   false,
			Tool:      name,
			Error:     err.Error(),
			ErrorKind: errorKind(err),
		}
	}
	return &models.AgentToolResult{Success: true, Tool: name, Fields: fields}
}

func errorKind(err error) string {
	if err == context.DeadlineExceeded || err == context.Canceled {
		return "timeout"
	}
	return "browser_error"
}

// --- argument helpers -------------------------------------------------

func strArg(args map[string]any, key string, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

func requireStr(args map[string]any, key string) (string, error) {
	v := strArg(args, key, "")
	if v == "" {
		return "", fmt.Errorf("%q parameter is required", key)
	}
	return v, nil
}

// --- handler map --------------------------------------------------------

func (e *Executor) buildHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"navigate": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			url, err := requireStr(args, "url")
			if err != nil {
				return nil, err
			}
			if err := a.Goto(ctx, url); err != nil {
				return nil, err
			}
			return map[string]any{"url": url}, nil
		},
		"go_back":    func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) { return nil, a.Back(ctx) },
		"go_forward": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) { return nil, a.Forward(ctx) },
		"reload":     func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) { return nil, a.Reload(ctx) },

		"click": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			strategy, err := a.Click(ctx, selector, strArg(args, "button", "left"))
			if err != nil {
				return nil, err
			}
			return map[string]any{"strategy": string(strategy)}, nil
		},
		"click_text": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			text, err := requireStr(args, "text")
			if err != nil {
				return nil, err
			}
			elType := browser.ElementType(strArg(args, "element_type", "any"))
			if err := a.ClickText(ctx, text, elType, boolArg(args, "exact", false)); err != nil {
				return nil, err
			}
			return nil, nil
		},
		"click_nth": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.ClickNth(ctx, selector, intArg(args, "index", 0))
		},
		"double_click": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.DoubleClick(ctx, selector)
		},
		"hover": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.Hover(ctx, selector)
		},

		"fill": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.Fill(ctx, selector, strArg(args, "value", ""))
		},
		"type_text": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.Type(ctx, selector, strArg(args, "text", ""))
		},
		"press_key": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			key, err := requireStr(args, "key")
			if err != nil {
				return nil, err
			}
			return nil, a.Press(ctx, key)
		},
		"select_option": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.SelectOption(ctx, selector, strArg(args, "value", ""))
		},
		"check": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.Check(ctx, selector)
		},
		"uncheck": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.Uncheck(ctx, selector)
		},

		"scroll": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			direction, err := requireStr(args, "direction")
			if err != nil {
				return nil, err
			}
			return nil, a.ScrollPage(ctx, direction, intArg(args, "amount", 500))
		},
		"scroll_to_element": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			return nil, a.ScrollToElement(ctx, selector)
		},

		"wait_for_element": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			state := strArg(args, "state", "visible")
			timeout := time.Duration(intArg(args, "timeout", 30000)) * time.Millisecond
			return nil, a.WaitForSelector(ctx, selector, state, timeout)
		},
		"wait": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			timeout := time.Duration(intArg(args, "timeout", 1000)) * time.Millisecond
			return nil, a.WaitForTimeout(ctx, timeout)
		},

		"extract_text": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			text, err := a.GetText(ctx, selector)
			if err != nil {
				return nil, err
			}
			return map[string]any{"text": text}, nil
		},
		"extract_attribute": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			attribute, err := requireStr(args, "attribute")
			if err != nil {
				return nil, err
			}
			value, err := a.GetAttribute(ctx, selector, attribute)
			if err != nil {
				return nil, err
			}
			return map[string]any{"value": value}, nil
		},
		"extract_all_text": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) {
			text, err := a.GetText(ctx, "body")
			if err != nil {
				return nil, err
			}
			return map[string]any{"text": text}, nil
		},
		"count_elements": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			count, err := a.CountElements(ctx, selector)
			if err != nil {
				return nil, err
			}
			return map[string]any{"count": count}, nil
		},
		"is_visible": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			selector, err := requireStr(args, "selector")
			if err != nil {
				return nil, err
			}
			visible, err := a.IsVisible(ctx, selector)
			if err != nil {
				return nil, err
			}
			return map[string]any{"visible": visible}, nil
		},

		"get_page_info": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) {
			url, err := a.URL(ctx)
			if err != nil {
				return nil, err
			}
			title, err := a.Title(ctx)
			if err != nil {
				return nil, err
			}
			content, err := a.Content(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"url": url, "title": title, "content": content}, nil
		},
		"get_page_structure": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) {
			structure, err := a.GetPageStructure(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"url":     structure.URL,
				"title":   structure.Title,
				"inputs":  structure.Inputs,
				"buttons": structure.Buttons,
				"links":   structure.Links,
				"selects": structure.Selects,
			}, nil
		},
		"screenshot": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			shot, err := a.Screenshot(ctx, browser.ScreenshotOptions{FullPage: boolArg(args, "full_page", false)})
			if err != nil {
				return nil, err
			}
			return map[string]any{"screenshot": shot}, nil
		},
		"dismiss_overlays": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) {
			result := a.DismissOverlays(ctx)
			return map[string]any{
				"clicked_selectors": result.ClickedSelectors,
				"clicked_texts":     result.ClickedTexts,
				"escape_sent":       result.EscapeSent,
				"js_hide_ran":       result.JSHideRan,
			}, nil
		},
		"extract_modal_content": func(ctx context.Context, a *browser.Adapter, _ map[string]any) (map[string]any, error) {
			modal, err := a.ExtractModalContent(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"found":   modal.Found,
				"title":   modal.Title,
				"text":    modal.Text,
				"buttons": modal.Buttons,
				"links":   modal.Links,
				"inputs":  modal.Inputs,
				"images":  modal.Images,
			}, nil
		},
		"find_and_click": func(ctx context.Context, a *browser.Adapter, args map[string]any) (map[string]any, error) {
			target, err := requireStr(args, "target")
			if err != nil {
				return nil, err
			}
			strategy, err := a.FindAndClick(ctx, target, boolArg(args, "scroll_first", false))
			if err != nil {
				return nil, err
			}
			return map[string]any{"strategy": string(strategy)}, nil
		},
	}
}
