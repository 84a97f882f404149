package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsProgress struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsFinal struct {
	Type      string `json:"type"`
	Response  string `json:"response"`
	ToolsUsed string `json:"tools_used"`
}

type wsError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// handleWebsocket answers queries over a websocket, streaming progress
// hints ahead of the final result. Each connection handles queries one
// at a time; progress writes are serialised with the final write.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var req queryRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read failed", "err", err)
			}
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			if err := conn.WriteJSON(wsError{Type: "error", Error: "query must not be empty"}); err != nil {
				return
			}
			continue
		}

		var mu sync.Mutex
		onProgress := func(hint string) {
			mu.Lock()
			defer mu.Unlock()
			if err := conn.WriteJSON(wsProgress{Type: "progress", Content: hint}); err != nil {
				slog.Warn("websocket progress write failed", "err", err)
			}
		}

		result := s.agent.Run(r.Context(), req.Query, onProgress)

		mu.Lock()
		err = conn.WriteJSON(wsFinal{
			Type:      "final",
			Response:  result.Response,
			ToolsUsed: result.ToolsUsed,
		})
		mu.Unlock()
		if err != nil {
			slog.Warn("websocket write failed", "err", err)
			return
		}
	}
}
