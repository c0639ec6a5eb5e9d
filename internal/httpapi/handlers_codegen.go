package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// handleGenerateCode handles POST /api/generate-code: a standalone codegen
// call that takes an already-built TestStep list rather than driving a
// browser.
func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.CodeGenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if len(req.Steps) == 0 {
		writeJSONError(w, http.StatusUnprocessableEntity, "steps must not be empty")
		return
	}
	if req.Framework == "" {
		req.Framework = models.FrameworkPlaywright
	}
	if req.Language == "" {
		req.Language = models.LangTypeScript
	}

	result := s.codegen.Generate(req.Steps, req.Framework, req.Language)
	writeJSON(w, result)
}
