package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/poleguard/repeal/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	ID         string `json:"id"` // echoed back, lets clients correlate
	Infraction string `json:"infraction"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type    string          `json:"type"` // "verdict" or "error"
	ID      string          `json:"id,omitempty"`
	Verdict *engine.Verdict `json:"verdict,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// handleWebSocket evaluates infractions streamed over a WebSocket
// connection, one verdict per incoming message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}
		if req.Infraction == "" {
			s.sendWSError(conn, req.ID, "infraction is required")
			continue
		}

		verdict, err := s.eval.Evaluate(r.Context(), req.Infraction)
		if err != nil {
			s.sendWSError(conn, req.ID, "evaluation failed: "+err.Error())
			continue
		}

		if s.history != nil {
			version := s.store.Stats().LastUpdated
			if _, err := s.history.RecordVerdict(r.Context(), req.Infraction, verdict, version); err != nil {
				log.Printf("server: recording verdict: %v", err)
			}
		}

		s.sendWSResponse(conn, wsResponse{Type: "verdict", ID: req.ID, Verdict: &verdict})
	}
}

func (s *Server) sendWSResponse(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, id, message string) {
	s.sendWSResponse(conn, wsResponse{Type: "error", ID: id, Error: message})
}
