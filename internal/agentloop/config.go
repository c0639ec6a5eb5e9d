// Package agentloop drives the observe/think/act cycle that turns a natural
// language task into a sequence of browser tool calls, emitting a stream of
// AgentEvents and ending with generated test code.
package agentloop

import (
	"time"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// Config controls one AgentLoop run.
type Config struct {
	MaxSteps               int
	Timeout                time.Duration
	Headless               bool
	ViewportWidth          int
	ViewportHeight         int
	Framework              models.Framework
	Language               models.ScriptLanguage
	UseBoostPrompt         bool
	UseStructuredExecution bool
	VerifyEachStep         bool
	Temperature            float64

	// HTTPUsername/HTTPPassword supply basic-auth credentials for a
	// protected starting URL, forwarded to the browser context.
	HTTPUsername string
	HTTPPassword string

	// StepDelay is the cooperative yield between iterations. Zero means
	// the default of 500ms; tests set this to 0 explicitly via NoDelay.
	StepDelay time.Duration
	NoDelay   bool
}

// DefaultConfig matches the documented defaults for an agent run.
func DefaultConfig() Config {
	return Config{
		MaxSteps:       30,
		Timeout:        300 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		Framework:      models.FrameworkPlaywright,
		Language:       models.LangTypeScript,
		UseBoostPrompt: true,
		Temperature:    0.0,
		StepDelay:      500 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxSteps == 0 {
		c.MaxSteps = 30
	}
	if c.ViewportWidth == 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = 720
	}
	if c.Framework == "" {
		c.Framework = models.FrameworkPlaywright
	}
	if c.Language == "" {
		c.Language = models.LangTypeScript
	}
	if c.StepDelay == 0 && !c.NoDelay {
		c.StepDelay = 500 * time.Millisecond
	}
	return c
}

const maxRepeatedToolCalls = 3
const maxNoToolCallStreak = 5

// actionableTools are tool names whose successful execution counts toward
// the completion discipline's "at least one real action" requirement.
var actionableTools = map[string]bool{
	"click": true, "fill": true, "submit": true,
	"press_key": true, "check": true, "select_option": true,
}

// stepToolSet maps a structured-execution step's action word to the tool
// names that satisfy it.
var stepToolSet = map[string][]string{
	"click":    {"click", "click_text", "click_nth", "find_and_click"},
	"fill":     {"fill", "type_text"},
	"type":     {"fill", "type_text"},
	"scroll":   {"scroll", "scroll_to_element"},
	"wait":     {"wait", "wait_for_element"},
	"navigate": {"navigate"},
	"press":    {"press_key"},
	"hover":    {"hover"},
	"select":   {"select_option"},
	"check":    {"check"},
	"uncheck":  {"uncheck"},
}

// screenshotWorthyTools take a DOM-mutating action likely to change what's
// on screen, so a fresh screenshot is emitted after they succeed.
var screenshotWorthyTools = map[string]bool{
	"navigate": true, "click": true, "fill": true,
	"scroll": true, "click_text": true, "find_and_click": true,
}
