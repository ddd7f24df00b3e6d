// Package filestore exposes the file storage service over HTTP and
// provides the client the chat server uses to reach it. The surface is
// deliberately narrow: get a blob, put a blob.
package filestore

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"messenger/contract"
	"messenger/errors"
)

type Server struct {
	storage contract.FileStorage
	log     *slog.Logger
}

func NewServer(storage contract.FileStorage, log *slog.Logger) *Server {
	return &Server{storage: storage, log: log}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/files/{name}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/files/{name}", s.handlePut).Methods(http.MethodPut)
	return r
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	data, err := s.storage.GetFile(r.Context(), name)
	if err != nil {
		if !errors.Is(err, errors.ErrFileNotFound) {
			s.log.Error("file read failed", "filename", name, "error", err)
		}
		http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		s.log.Debug("file response aborted", "filename", name, "error", err)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if err := s.storage.StoreData(r.Context(), name, data); err != nil {
		s.log.Error("file write failed", "filename", name, "error", err)
		http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
