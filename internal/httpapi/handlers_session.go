package httpapi

import (
	"net/http"
	"strings"
)

// handleStopSession handles POST /api/agent/stop/{id}.
func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/agent/stop/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "session id is required")
		return
	}
	if !s.sessions.Stop(id) {
		writeJSONError(w, http.StatusNotFound, "session not found or already completed")
		return
	}
	writeJSON(w, map[string]any{
		"status":     "stopping",
		"session_id": id,
		"message":    "Agent stop requested",
	})
}

// handleStopAll handles POST /api/agent/stop-all.
func (s *Server) handleStopAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count := s.sessions.StopAll()
	writeJSON(w, map[string]any{
		"status":        "success",
		"stopped_count": count,
		"message":       "requested stop for all running agents",
	})
}

// handleListSessions handles GET /api/agent/sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	active := s.sessions.ListActive()
	writeJSON(w, map[string]any{
		"active_sessions": active,
		"count":           len(active),
	})
}
