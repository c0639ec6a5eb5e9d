package codegen

import (
	"strings"
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestGenerateTypeScriptNavigateAndClick(t *testing.T) {
	steps := []models.TestStep{
		{Action: "navigate", Value: "https://example.com"},
		{Action: "click", Selector: "button#submit"},
	}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)

	if !strings.Contains(result.Code, "import { test, expect }") {
		t.Errorf("missing import header:\n%s", result.Code)
	}
	if !strings.Contains(result.Code, "await page.goto('https://example.com');") {
		t.Errorf("missing goto call:\n%s", result.Code)
	}
	if !strings.Contains(result.Code, "await page.click('button#submit');") {
		t.Errorf("missing click call:\n%s", result.Code)
	}
	if result.Filename != "test-example.spec.ts" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestGeneratePythonFillAndAssert(t *testing.T) {
	steps := []models.TestStep{
		{Action: "fill", Selector: "input#email", Value: "test@example.com"},
		{Action: "assert", Selector: ".message", Expected: "Success"},
	}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangPython)

	if !strings.Contains(result.Code, "import pytest") {
		t.Errorf("missing pytest import:\n%s", result.Code)
	}
	if !strings.Contains(result.Code, `page.fill("input#email", "test@example.com")`) {
		t.Errorf("missing fill call:\n%s", result.Code)
	}
	if !strings.Contains(result.Code, `to_contain_text("Success")`) {
		t.Errorf("missing assertion:\n%s", result.Code)
	}
}

func TestGenerateJavaScriptUsesPlaywrightRequireHeader(t *testing.T) {
	steps := []models.TestStep{{Action: "navigate", Value: "https://example.com"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangJavaScript)
	if !strings.Contains(result.Code, "require('@playwright/test')") {
		t.Errorf("missing require header:\n%s", result.Code)
	}
}

func TestWaitForVisibleUsesLocatorWaitFor(t *testing.T) {
	steps := []models.TestStep{{Action: "wait_for", Selector: ".dashboard", Expected: "visible"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)
	if !strings.Contains(result.Code, "waitFor({ state: 'visible' });") {
		t.Errorf("missing waitFor call:\n%s", result.Code)
	}
}

func TestUnknownActionBecomesComment(t *testing.T) {
	steps := []models.TestStep{{Action: "teleport"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)
	if !strings.Contains(result.Code, "// Unknown action: teleport") {
		t.Errorf("expected commented unknown action:\n%s", result.Code)
	}
}

func TestGenerateFilenameStripsProtocol(t *testing.T) {
	steps := []models.TestStep{{Action: "navigate", Value: "https://my-site.test/login"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangPython)
	if result.Filename != "test-my-site_test.py" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestGenerateFilenameSkipsWWWLabel(t *testing.T) {
	// A lone "www.<host>" navigate target yields no usable label (matching
	// the fallback-to-"generated" behavior when nothing else qualifies).
	steps := []models.TestStep{{Action: "navigate", Value: "https://www.example.com/login"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangPython)
	if result.Filename != "test-generated_test.py" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestGenerateFilenameFallsBackToGenerated(t *testing.T) {
	steps := []models.TestStep{{Action: "click", Selector: "#x"}}
	result := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)
	if result.Filename != "test-generated.spec.ts" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	steps := []models.TestStep{
		{Action: "navigate", Value: "https://example.com"},
		{Action: "fill", Selector: "#q", Value: "laptop"},
	}
	a := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)
	b := New().Generate(steps, models.FrameworkPlaywright, models.LangTypeScript)
	if a.Code != b.Code || a.Filename != b.Filename {
		t.Fatal("expected byte-identical output for the same input")
	}
}
