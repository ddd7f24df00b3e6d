// Package httpapi exposes the remote-call surface over HTTP/JSON and the
// notification channel over a websocket. Handlers stay thin: decode,
// delegate to the administration, map errors, encode.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"messenger/errors"
	"messenger/services"
)

// sessionHeader carries the caller's session id on every authenticated
// request.
const sessionHeader = "X-Session-Id"

type Server struct {
	log      *slog.Logger
	admin    services.IAdministration
	validate *validator.Validate
	upgrader websocket.Upgrader

	// connectionBufferSize is the per-connection event buffer between
	// the publisher fan-out and the websocket write loop.
	connectionBufferSize int
}

func NewServer(log *slog.Logger, admin services.IAdministration, connectionBufferSize int) *Server {
	return &Server{
		log:                  log,
		admin:                admin,
		validate:             validator.New(),
		upgrader:             websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		connectionBufferSize: connectionBufferSize,
	}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/api/contacts", s.handleGetContacts).Methods(http.MethodGet)
	r.HandleFunc("/api/contacts", s.handleAddContact).Methods(http.MethodPost)
	r.HandleFunc("/api/contacts/{name}", s.handleRemoveContact).Methods(http.MethodDelete)

	r.HandleFunc("/api/chats", s.handleGetChats).Methods(http.MethodGet)
	r.HandleFunc("/api/chats", s.handleNewChat).Methods(http.MethodPost)
	r.HandleFunc("/api/chats/{id}/messages", s.handleSendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/chats/{id}/files/{filename}", s.handleGetFile).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)

	return r
}

// session extracts and parses the session header. A missing or
// malformed header is reported as a bad request before any lookup.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(sessionHeader)
	sessionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing or malformed "+sessionHeader+" header")
		return 0, false
	}
	return sessionID, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := s.validate.Struct(into); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Debug("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a typed service error onto its transport status.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeError(w, status, err.Error())
}
