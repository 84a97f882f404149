package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Response  string `json:"response"`
	ToolsUsed string `json:"tools_used"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query must not be empty"})
		return
	}

	result := s.agent.Run(r.Context(), req.Query, nil)
	writeJSON(w, http.StatusOK, queryResponse{
		Response:  result.Response,
		ToolsUsed: result.ToolsUsed,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
