// Package api provides HTTP handlers for the signup service endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuaspower/signupflow/internal/models"
)

// messageRequest is the body of POST /sessions/{id}/messages.
type messageRequest struct {
	Message string `json:"message"`
}

// sessionsHandler handles POST /sessions (create) and GET /sessions (list).
func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodPost:
		session, err := s.mgr.CreateSession()
		if err != nil {
			slog.Error("Server.sessionsHandler: failed to create session", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create session"))
			return
		}
		writeJSONResponse(w, http.StatusCreated, models.Success(session))
	case http.MethodGet:
		sessions, err := s.st.ListSessions()
		if err != nil {
			slog.Error("Server.sessionsHandler: failed to list sessions", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list sessions"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(sessions))
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.sessionsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// sessionDetailHandler routes /sessions/{id} and /sessions/{id}/messages.
func (s *Server) sessionDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] != "":
		s.getSessionHandler(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "messages":
		s.postMessageHandler(w, r, segments[0])
	default:
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
	}
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, err := s.mgr.GetSession(id)
	if errors.Is(err, models.ErrSessionNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	if err != nil {
		slog.Error("Server.getSessionHandler: failed to load session", "error", err, "session_id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load session"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(session))
}

func (s *Server) postMessageHandler(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.postMessageHandler: failed to decode JSON", "error", err, "session_id", id)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	session, err := s.mgr.ProcessMessage(r.Context(), id, req.Message)
	switch {
	case errors.Is(err, models.ErrEmptyMessage):
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Message cannot be empty"))
		return
	case errors.Is(err, models.ErrSessionNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	case errors.Is(err, models.ErrSessionTerminal):
		writeJSONResponse(w, http.StatusConflict, models.Error("Session has already ended"))
		return
	case err != nil:
		slog.Error("Server.postMessageHandler: failed to process message", "error", err, "session_id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(session))
}

// applicationsHandler handles GET /applications.
func (s *Server) applicationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.applicationsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	apps, err := s.st.ListApplications()
	if err != nil {
		slog.Error("Server.applicationsHandler: failed to list applications", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list applications"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(apps))
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Service is healthy", nil))
}
