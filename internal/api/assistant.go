package api

import (
	"errors"
	"net/http"

	"github.com/goldenleaf/goldpay/internal/assistant"
	"github.com/goldenleaf/goldpay/internal/service"
)

type assistantRequest struct {
	Prompt string `json:"prompt"`
	Email  string `json:"email"`
	Force  bool   `json:"force"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Prompt == "" {
		writeError(w, service.BadRequest("prompt is required"))
		return
	}

	// Rate limit by email when present, remote address otherwise.
	actor := req.Email
	if actor == "" {
		actor = r.RemoteAddr
	}

	result, err := s.assistant.Suggest(r.Context(), req.Prompt, actor, req.Force)
	if err != nil {
		var cooldownErr *assistant.CooldownError
		if errors.As(err, &cooldownErr) {
			assistantRequests.WithLabelValues("cooldown").Inc()
			resp := map[string]any{"error": cooldownErr.Error()}
			if cooldownErr.Cached != "" {
				resp["suggestion"] = cooldownErr.Cached
				resp["cached"] = true
			}
			writeJSON(w, http.StatusTooManyRequests, resp)
			return
		}
		var upstreamErr *assistant.UpstreamError
		if errors.As(err, &upstreamErr) {
			assistantRequests.WithLabelValues("upstream_error").Inc()
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "suggestion service unavailable"})
			return
		}
		assistantRequests.WithLabelValues("error").Inc()
		writeError(w, err)
		return
	}

	outcome := "generated"
	if result.Cached {
		outcome = "cached"
	}
	assistantRequests.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"suggestion": result.Suggestion,
		"cached":     result.Cached,
	})
}
