package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/apiclient"
)

const (
	// loggedInSessionID is the name of the cookie that ties the browser to its console session
	loggedInSessionID = "loggedInSessionId"
	// resetEmailCookieName carries the email through the forgot-password steps
	resetEmailCookieName = "reset_email"
	resetEmailMaxAge     = 15 * 60
)

func loginSessionCookie(r *http.Request, sessionID string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     loggedInSessionID,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	http.SetCookie(w, loginSessionCookie(r, sessionID, maxAge))
}

func (s *Server) ClearLoginSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, loginSessionCookie(r, "", -1))
}

// endSession forgets the caller's console session once the API has refused
// its refresh token, so the login page is reachable again.
func endSession(w http.ResponseWriter, r *http.Request) {
	if session := sessionFromContext(r.Context()); session != nil {
		session.End()
	}
	http.SetCookie(w, loginSessionCookie(r, "", -1))
}

// formError sends a failed form post back to path with the API's message.
// A refused refresh ends the session and goes to the login page instead.
func formError(w http.ResponseWriter, r *http.Request, path string, err error, fallback string) {
	if errors.Is(err, apiclient.ErrRefreshFailed) {
		endSession(w, r)
		redirectWithError(w, r, RouteLogin, "Session expired")
		return
	}
	redirectWithError(w, r, path, userMessage(err, fallback))
}

func (s *Server) SetResetEmailCookie(w http.ResponseWriter, email string, r *http.Request, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     resetEmailCookieName,
		Value:    url.QueryEscape(email),
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func resetEmail(r *http.Request) string {
	cookie, err := r.Cookie(resetEmailCookieName)
	if err != nil {
		return ""
	}
	email, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return email
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
