package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"messenger/domain"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	SessionID int64 `json:"session_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	sessionID, err := s.admin.Register(req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	// SessionFailed (-1) still travels as a 200: the client must be able
	// to tell "username taken" from "server unreachable".
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sessionID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	sessionID, err := s.admin.Login(req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sessionID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.admin.Logout(sessionID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contactRequest struct {
	Contact string `json:"contact" validate:"required"`
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}

	added, err := s.admin.AddContact(sessionID, req.Contact)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

func (s *Server) handleRemoveContact(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.admin.RemoveContact(sessionID, mux.Vars(r)["name"]); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContacts(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	contacts, err := s.admin.GetContacts(sessionID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"contacts": contacts})
}

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.admin.NewChat(sessionID, req.Contact); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetChats(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	chats, err := s.admin.GetParticipatingChats(sessionID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

type sendMessageRequest struct {
	Kind     string     `json:"kind" validate:"required,oneof=text file"`
	Text     string     `json:"text"`
	Filename string     `json:"filename"`
	Data     []byte     `json:"data"`
	SentAt   *time.Time `json:"sent_at"`
}

// toDomain builds the message through the domain constructors so
// validation lives in exactly one place.
func (req sendMessageRequest) toDomain(author string) (domain.Message, error) {
	switch domain.MessageKind(req.Kind) {
	case domain.KindFile:
		if req.SentAt != nil {
			return domain.NewFileMessageAt(*req.SentAt, author, req.Filename, req.Data)
		}
		return domain.NewFileMessage(author, req.Filename, req.Data)
	default:
		if req.SentAt != nil {
			return domain.NewTextMessageAt(*req.SentAt, author, req.Text)
		}
		return domain.NewTextMessage(author, req.Text)
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}

	author, err := s.admin.Username(sessionID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	message, err := req.toDomain(author)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := s.admin.SendMessage(r.Context(), sessionID, chatID, message); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}

	data, err := s.admin.GetFile(r.Context(), sessionID, chatID, mux.Vars(r)["filename"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		s.log.Debug("file response aborted", "error", err)
	}
}

func (s *Server) chatID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	chatID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed chat id")
		return 0, false
	}
	return chatID, true
}
