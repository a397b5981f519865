package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// PageData is what every console page shell is rendered with.
type PageData struct {
	AppName  string
	Title    string
	Path     string
	Error    string
	UserName string
	Role     string
}

// PageHandler renders the page shell. The page fetches its data from the JSON API.
func (s *Server) PageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			AppName: s.config.GetAppName(),
			Title:   title,
			Path:    r.URL.Path,
			Error:   r.URL.Query().Get("error"),
		}
		if session := sessionFromContext(r.Context()); session != nil {
			data.UserName = session.Name
			data.Role = session.Role
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.page.Execute(w, data); err != nil {
			log.Err(err).Str("page", title).Msg("Failed to render page")
		}
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONMessage(w, http.StatusOK, "ok")
	}
}

type sessionInfo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionInfoHandler returns who is signed in.
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": sessionInfo{
				ID:        session.ID,
				UserID:    session.UserID,
				Email:     session.Email,
				Name:      session.Name,
				Role:      session.Role,
				ExpiresAt: session.ExpiresAt,
			},
		})
	}
}

// DashboardHandler returns the user, team and event totals.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := sessionFromContext(r.Context()).API.Summary(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": summary})
	}
}
