package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wayfarerhq/pilot/internal/config"
	"github.com/wayfarerhq/pilot/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.BrowserAgentConfig{}, config.TracingConfig{}, nil)
}

func TestHandleHealthReportsStatusAndVersion(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "healthy" || body["version"] != Version {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleListSessionsStartsEmpty(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/agent/sessions", nil)
	rec := httptest.NewRecorder()

	s.mux().ServeHTTP(rec, req)

	var body struct {
		ActiveSessions []string `json:"active_sessions"`
		Count          int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Count != 0 || len(body.ActiveSessions) != 0 {
		t.Fatalf("expected no active sessions, got %+v", body)
	}
}

func TestHandleStopSessionReturns404ForUnknownID(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/agent/stop/does-not-exist", nil)
	rec := httptest.NewRecorder()

	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStopSessionStopsKnownSession(t *testing.T) {
	s := newTestServer(t)
	session := s.sessions.Create()

	req := httptest.NewRequest(http.MethodPost, "/api/agent/stop/"+session.ID, nil)
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !session.StopRequested() {
		t.Fatal("expected session to be marked stopped")
	}
}

func TestHandleGenerateCodeProducesScript(t *testing.T) {
	s := newTestServer(t)
	reqBody := models.CodeGenRequest{
		Steps: []models.TestStep{
			{Action: "navigate", Value: "https://x.test"},
			{Action: "click", Selector: "button#go"},
		},
		Framework: models.FrameworkPlaywright,
		Language:  models.LangTypeScript,
	}
	data, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-code", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var result models.CodeGenResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if result.Code == "" || result.Filename == "" {
		t.Fatalf("expected non-empty code and filename, got %+v", result)
	}
}

func TestHandleGenerateCodeRejectsEmptySteps(t *testing.T) {
	s := newTestServer(t)
	data, _ := json.Marshal(models.CodeGenRequest{Framework: models.FrameworkPlaywright, Language: models.LangTypeScript})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-code", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleRunAgentRejectsInvalidRequest(t *testing.T) {
	s := newTestServer(t)
	data, _ := json.Marshal(models.AgentRequest{Task: "", URL: "https://x.test", Provider: models.ProviderGemini})

	req := httptest.NewRequest(http.MethodPost, "/api/agent", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleRunAgentRejectsMissingAPIKey(t *testing.T) {
	s := newTestServer(t)
	data, _ := json.Marshal(models.AgentRequest{Task: "click login", URL: "https://x.test", Provider: models.ProviderGemini})

	req := httptest.NewRequest(http.MethodPost, "/api/agent", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body=%s", rec.Code, rec.Body.String())
	}
}
