package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wayfarerhq/pilot/internal/agentloop"
	"github.com/wayfarerhq/pilot/internal/llmclient"
	"github.com/wayfarerhq/pilot/pkg/models"
)

// sessionGracePeriod is how long a completed session stays registered so a
// stop request racing the run's final event still finds it.
const sessionGracePeriod = time.Second

// handleRunAgent handles POST /api/agent: it starts one browser-agent run
// and streams its AgentEvents back as SSE, ending with a `complete` or
// `error` frame.
func (s *Server) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	req.Normalize()
	if err := validateAgentRequest(&req); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	apiKey, err := resolveAPIKey(r.Header.Get("X-API-Key"), req.APIKey, req.Provider, s.cfg.ProviderAPIKeyEnv)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client, err := llmclient.New(r.Context(), req.Provider, apiKey)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "failed to initialize provider: "+err.Error())
		return
	}

	session := s.sessions.Create()
	defer time.AfterFunc(sessionGracePeriod, func() { s.sessions.Remove(session.ID) })

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, flusher, "session", models.AgentEvent{
		Type: models.EventSession, SessionID: session.ID, Timestamp: now(),
	}); err != nil {
		s.logger.Warn("agent stream write failed", "session_id", session.ID, "error", err)
		return
	}

	loop := agentloop.New(client, s.tools, s.loopConfig(&req), s.tracer)
	events := loop.Run(r.Context(), req.Task, req.URL, session)

	for {
		select {
		case <-r.Context().Done():
			session.RequestStop()
			// Drain so the loop's goroutine isn't left blocked on a send.
			for range events {
			}
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, flusher, string(event.Type), event); err != nil {
				s.logger.Warn("agent stream write failed", "session_id", session.ID, "error", err)
				session.RequestStop()
				for range events {
				}
				return
			}
		}
	}
}

// loopConfig translates a validated AgentRequest plus server defaults into
// an agentloop.Config.
func (s *Server) loopConfig(req *models.AgentRequest) agentloop.Config {
	cfg := agentloop.DefaultConfig()
	cfg.MaxSteps = s.cfg.DefaultMaxSteps
	cfg.Timeout = s.cfg.DefaultTimeout
	cfg.Headless = *req.Headless
	cfg.Framework = req.Framework
	cfg.Language = req.Language
	cfg.UseBoostPrompt = *req.UseBoostPrompt
	cfg.UseStructuredExecution = req.UseStructuredExecution
	cfg.VerifyEachStep = *req.VerifyEachStep
	if req.HTTPCredentials != nil {
		cfg.HTTPUsername = req.HTTPCredentials.Username
		cfg.HTTPPassword = req.HTTPCredentials.Password
	}
	return cfg
}
