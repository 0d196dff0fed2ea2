// ABOUTME: Register, login and logout handlers.
// ABOUTME: Successful register/login issue a session returned in the body and as a cookie.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/tracker"
)

type sessionResponse struct {
	SessionToken string `json:"session_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	username, password := f.value("username"), f.value("password")

	err = s.tracker.Register(r.Context(), username, password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, tracker.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.startSession(w, r, username, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	username, password := f.value("username"), f.value("password")

	if err := s.tracker.Login(r.Context(), username, password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.startSession(w, r, username, http.StatusOK)
}

// handleLoginInfo is where unauthenticated clients are sent. It describes
// how to log in.
func (s *Server) handleLoginInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "login required",
		"login":    "POST " + loginPath,
		"register": "POST /auth/register",
		"fields":   []string{"username", "password"},
	})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, username string, status int) {
	token, err := s.sessions.Issue(r.Context(), username)
	if err != nil {
		s.log.WithError(err).WithField("user", username).Error("issue session failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.metrics.SessionIssued()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessionTTL),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, sessionResponse{SessionToken: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if tok := sessionToken(r); tok != "" {
		if err := s.sessions.Revoke(r.Context(), tok); err != nil {
			s.log.WithError(err).Warn("revoke session failed")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
