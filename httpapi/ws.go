package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"messenger/sink"
)

const writeWait = 10 * time.Second

// subscriptionRequest is the inbound frame on a notification connection.
type subscriptionRequest struct {
	Action   string `json:"action"`
	Property string `json:"property"`
}

// propertiesFrame is pushed once on connect so the client knows what it
// can subscribe to without a separate discovery call.
type propertiesFrame struct {
	Properties []string `json:"properties"`
}

// handleWebsocket upgrades the connection into the notification channel:
// subscribe/unsubscribe frames flow in, property-change events flow out.
// The session id travels as a query parameter because browsers can't set
// headers on websocket dials.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing or malformed session_id")
		return
	}

	// Validate the session before upgrading; the property list doubles
	// as the bootstrap frame.
	properties, err := s.admin.Properties(sessionID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	listener := sink.NewListener(s.connectionBufferSize)

	defer func() {
		if err := s.admin.DetachListener(sessionID, listener); err != nil {
			s.log.Debug("listener detach failed", "session_id", sessionID, "error", err)
		}
		_ = conn.Close()
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(propertiesFrame{Properties: properties}); err != nil {
		return
	}

	done := make(chan struct{})
	go s.readSubscriptions(conn, sessionID, listener, done)
	s.writeEvents(conn, listener, done)
}

// readSubscriptions drains inbound frames until the client disconnects.
func (s *Server) readSubscriptions(conn *websocket.Conn, sessionID int64, listener *sink.Listener, done chan<- struct{}) {
	defer close(done)
	for {
		var req subscriptionRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Action {
		case "subscribe":
			if err := s.admin.Subscribe(sessionID, listener, req.Property); err != nil {
				s.log.Debug("subscribe rejected",
					"session_id", sessionID, "property", req.Property, "error", err)
			}
		case "unsubscribe":
			if err := s.admin.Unsubscribe(sessionID, listener, req.Property); err != nil {
				s.log.Debug("unsubscribe rejected",
					"session_id", sessionID, "property", req.Property, "error", err)
			}
		default:
			s.log.Debug("unknown subscription action", "action", req.Action)
		}
	}
}

// writeEvents pushes publisher events to the client until the reader
// side reports a disconnect or a write fails.
func (s *Server) writeEvents(conn *websocket.Conn, listener *sink.Listener, done <-chan struct{}) {
	for {
		select {
		case evt := <-listener.Events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
