// Package codegen turns a deterministic TestStep plan into an executable
// Playwright test script.
package codegen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// Generator converts a TestStep plan into source code. When TemplatesDir
// names an existing directory containing a "<framework>_<language>.tmpl"
// file, that template is rendered instead of the built-in inline tables.
type Generator struct {
	TemplatesDir string
}

// New returns a Generator using the built-in inline emission tables.
func New() *Generator {
	return &Generator{}
}

// Generate produces the script and a suggested filename for steps.
func (g *Generator) Generate(steps []models.TestStep, framework models.Framework, language models.ScriptLanguage) models.CodeGenResult {
	code := g.generate(steps, framework, language)
	return models.CodeGenResult{Code: code, Filename: generateFilename(steps, language)}
}

func (g *Generator) generate(steps []models.TestStep, framework models.Framework, language models.ScriptLanguage) string {
	if g.TemplatesDir != "" {
		if code, ok := renderTemplate(g.TemplatesDir, framework, language, steps); ok {
			return code
		}
	}
	switch language {
	case models.LangPython:
		return generatePython(steps)
	case models.LangJavaScript:
		return generateJavaScript(steps)
	default:
		return generateTypeScript(steps)
	}
}

func generateTypeScript(steps []models.TestStep) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, stepToTypeScript(s))
	}
	body := strings.Join(lines, "\n  ")
	return fmt.Sprintf("import { test, expect } from '@playwright/test';\n\ntest('generated test', async ({ page }) => {\n  %s\n});\n", body)
}

func generateJavaScript(steps []models.TestStep) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, stepToTypeScript(s)) // Playwright JS syntax matches TypeScript.
	}
	body := strings.Join(lines, "\n  ")
	return fmt.Sprintf("const { test, expect } = require('@playwright/test');\n\ntest('generated test', async ({ page }) => {\n  %s\n});\n", body)
}

func generatePython(steps []models.TestStep) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, stepToPython(s))
	}
	body := strings.Join(lines, "\n    ")
	return fmt.Sprintf("import pytest\nfrom playwright.sync_api import Page, expect\n\n\ndef test_generated(page: Page) -> None:\n    %s\n", body)
}

func escapeSingle(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func escapeDouble(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func stepToTypeScript(s models.TestStep) string {
	action := strings.ToLower(s.Action)
	selector := escapeSingle(s.Selector)
	value := escapeSingle(s.Value)

	switch action {
	case "navigate":
		return fmt.Sprintf("await page.goto('%s');", value)
	case "click":
		return fmt.Sprintf("await page.click('%s');", selector)
	case "click_text":
		return fmt.Sprintf("await page.getByText('%s').click();", value)
	case "click_nth":
		index := s.Value
		if index == "" {
			index = "0"
		}
		return fmt.Sprintf("await page.locator('%s').nth(%s).click();", selector, index)
	case "double_click":
		return fmt.Sprintf("await page.dblclick('%s');", selector)
	case "fill":
		return fmt.Sprintf("await page.fill('%s', '%s');", selector, value)
	case "type":
		return fmt.Sprintf("await page.type('%s', '%s');", selector, value)
	case "press":
		if selector != "" {
			return fmt.Sprintf("await page.press('%s', '%s');", selector, value)
		}
		return fmt.Sprintf("await page.keyboard.press('%s');", value)
	case "hover":
		return fmt.Sprintf("await page.hover('%s');", selector)
	case "select":
		return fmt.Sprintf("await page.selectOption('%s', '%s');", selector, value)
	case "check":
		return fmt.Sprintf("await page.check('%s');", selector)
	case "uncheck":
		return fmt.Sprintf("await page.uncheck('%s');", selector)
	case "scroll":
		direction, amount := parseScrollValue(s.Value)
		if direction == "up" {
			return fmt.Sprintf("await page.mouse.wheel(0, -%d);", amount)
		}
		return fmt.Sprintf("await page.mouse.wheel(0, %d);", amount)
	case "scroll_to":
		return fmt.Sprintf("await page.locator('%s').scrollIntoViewIfNeeded();", selector)
	case "wait":
		return fmt.Sprintf("await page.waitForTimeout(%s);", waitTimeout(s.Value))
	case "wait_for":
		if s.Expected == "visible" {
			return fmt.Sprintf("await page.locator('%s').waitFor({ state: 'visible' });", selector)
		}
		return fmt.Sprintf("await page.waitForSelector('%s');", selector)
	case "assert", "expect":
		if s.Expected != "" {
			return fmt.Sprintf("await expect(page.locator('%s')).toContainText('%s');", selector, escapeSingle(s.Expected))
		}
		return fmt.Sprintf("await expect(page.locator('%s')).toBeVisible();", selector)
	default:
		return fmt.Sprintf("// Unknown action: %s", action)
	}
}

func stepToPython(s models.TestStep) string {
	action := strings.ToLower(s.Action)
	selector := escapeDouble(s.Selector)
	value := escapeDouble(s.Value)

	switch action {
	case "navigate":
		return fmt.Sprintf(`page.goto("%s")`, value)
	case "click":
		return fmt.Sprintf(`page.click("%s")`, selector)
	case "click_text":
		return fmt.Sprintf(`page.get_by_text("%s").click()`, value)
	case "click_nth":
		index := s.Value
		if index == "" {
			index = "0"
		}
		return fmt.Sprintf(`page.locator("%s").nth(%s).click()`, selector, index)
	case "double_click":
		return fmt.Sprintf(`page.dblclick("%s")`, selector)
	case "fill":
		return fmt.Sprintf(`page.fill("%s", "%s")`, selector, value)
	case "type":
		return fmt.Sprintf(`page.type("%s", "%s")`, selector, value)
	case "press":
		if selector != "" {
			return fmt.Sprintf(`page.press("%s", "%s")`, selector, value)
		}
		return fmt.Sprintf(`page.keyboard.press("%s")`, value)
	case "hover":
		return fmt.Sprintf(`page.hover("%s")`, selector)
	case "select":
		return fmt.Sprintf(`page.select_option("%s", "%s")`, selector, value)
	case "check":
		return fmt.Sprintf(`page.check("%s")`, selector)
	case "uncheck":
		return fmt.Sprintf(`page.uncheck("%s")`, selector)
	case "scroll":
		direction, amount := parseScrollValue(s.Value)
		if direction == "up" {
			return fmt.Sprintf(`page.mouse.wheel(0, -%d)`, amount)
		}
		return fmt.Sprintf(`page.mouse.wheel(0, %d)`, amount)
	case "scroll_to":
		return fmt.Sprintf(`page.locator("%s").scroll_into_view_if_needed()`, selector)
	case "wait":
		return fmt.Sprintf(`page.wait_for_timeout(%s)`, waitTimeout(s.Value))
	case "wait_for":
		if s.Expected == "visible" {
			return fmt.Sprintf(`page.locator("%s").wait_for(state="visible")`, selector)
		}
		return fmt.Sprintf(`page.wait_for_selector("%s")`, selector)
	case "assert", "expect":
		if s.Expected != "" {
			return fmt.Sprintf(`expect(page.locator("%s")).to_contain_text("%s")`, selector, escapeDouble(s.Expected))
		}
		return fmt.Sprintf(`expect(page.locator("%s")).to_be_visible()`, selector)
	default:
		return fmt.Sprintf("# Unknown action: %s", action)
	}
}

func parseScrollValue(value string) (direction string, amount int) {
	amount = 500
	if value == "" {
		return "", amount
	}
	parts := strings.SplitN(value, ":", 2)
	direction = parts[0]
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			amount = n
		}
	}
	return direction, amount
}

func waitTimeout(value string) string {
	if n, err := strconv.Atoi(value); err == nil {
		return strconv.Itoa(n)
	}
	return "1000"
}

var (
	protocolRe    = regexp.MustCompile(`^https?://`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]`)
	repeatDashRe  = regexp.MustCompile(`-+`)
	filenameExten = map[models.ScriptLanguage]string{
		models.LangTypeScript: ".spec.ts",
		models.LangPython:     "_test.py",
		models.LangJavaScript: ".spec.js",
	}
)

func generateFilename(steps []models.TestStep, language models.ScriptLanguage) string {
	name := "generated"
	for _, s := range steps {
		if strings.ToLower(s.Action) != "navigate" || s.Value == "" {
			continue
		}
		url := protocolRe.ReplaceAllString(s.Value, "")
		host := strings.SplitN(url, "/", 2)[0]
		candidate := strings.SplitN(host, ".", 2)[0]
		if candidate != "" && candidate != "www" {
			name = candidate
			break
		}
	}

	name = strings.ToLower(name)
	name = nonAlnumRe.ReplaceAllString(name, "-")
	name = repeatDashRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "generated"
	}

	ext, ok := filenameExten[language]
	if !ok {
		ext = ".spec.ts"
	}
	return fmt.Sprintf("test-%s%s", name, ext)
}

func renderTemplate(templatesDir string, framework models.Framework, language models.ScriptLanguage, steps []models.TestStep) (string, bool) {
	path := filepath.Join(templatesDir, fmt.Sprintf("%s_%s.tmpl", framework, language))
	return renderTemplateFile(path, steps)
}
