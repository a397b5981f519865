package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-admin-console/consolesession"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the caller's console session
const ContextKeySession ContextKey = "console_session"

func sessionFromContext(ctx context.Context) *consolesession.Session {
	session, _ := ctx.Value(ContextKeySession).(*consolesession.Session)
	return session
}

// sessionFromRequest resolves the session cookie. Unknown or expired sessions yield nil.
func (s *Server) sessionFromRequest(r *http.Request) *consolesession.Session {
	cookie, err := r.Cookie(loggedInSessionID)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := s.sessions.Get(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring session cookie")
		return nil
	}
	return session
}

// RouteGuardMiddleware loads the session into the request context and keeps
// signed-out users off the console pages and signed-in users off the login
// pages. Only presence of the upstream cookies is checked; their validity is
// the API's business.
func (s *Server) RouteGuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.sessionFromRequest(r)
		if session != nil {
			r = r.WithContext(context.WithValue(r.Context(), ContextKeySession, session))
		}

		path := r.URL.Path
		if isProtectedRoute(path) && (session == nil || !session.Authenticated()) {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		if isPublicRoute(path) && session != nil && session.Client.AccessToken() != "" {
			redirectSuccess(w, r, RouteUpdateProfile)
			return
		}
		next(w, r)
	}
}

// RequireSession is for the JSON routes: without credentials the caller gets a 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if session == nil || !session.Authenticated() {
			writeError(w, r, apperrors.ErrNoCredentials)
			return
		}
		next(w, r)
	}
}

// RequireSessionPage is for form posts: without credentials the caller is sent to the login page.
func (s *Server) RequireSessionPage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if session == nil || !session.Authenticated() {
			redirectWithError(w, r, RouteLogin, "Session expired")
			return
		}
		next(w, r)
	}
}
