package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oneminnews/oneminnews/internal/session"
)

// SessionManager signs the user in and out.
type SessionManager interface {
	Login(ctx context.Context, token, userID string) (*session.Session, error)
	Logout(ctx context.Context) error
}

type sessionResponse struct {
	SignedIn bool             `json:"signed_in"`
	Session  *session.Session `json:"session,omitempty"`
}

// GetSession handles GET /api/session. It reports the session the request
// carries.
func GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		writeJSON(w, http.StatusOK, sessionResponse{SignedIn: ok, Session: s})
	}
}

// Login handles POST /api/session. The body carries the identity token and
// optionally the user id; the id defaults to the token's subject.
func Login(manager SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token  string `json:"token"`
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		s, err := manager.Login(r.Context(), body.Token, body.UserID)
		if err != nil {
			if errors.Is(err, session.ErrMalformedToken) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("sign in failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to sign in")
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, Session: s})
	}
}

// Logout handles DELETE /api/session.
func Logout(manager SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.Logout(r.Context()); err != nil {
			slog.Error("sign out failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to sign out")
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false})
	}
}
