package codegen

import (
	"os"
	"strings"
	"text/template"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// renderTemplateFile renders path (if it exists) against steps using the
// standard library's text/template. It reports ok=false when the template
// file is absent, so callers fall back to the inline emission tables.
func renderTemplateFile(path string, steps []models.TestStep) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	tmpl, err := template.New(path).ParseFiles(path)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateBaseName(path), struct{ Steps []models.TestStep }{Steps: steps}); err != nil {
		return "", false
	}
	return b.String(), true
}

func templateBaseName(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
