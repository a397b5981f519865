package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/consolesession"
	"github.com/jrsteele09/go-admin-console/internal/config"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	handler    http.Handler
	routes     []string
	config     config.Config
	sessions   consolesession.Repo
	apiOptions []apiclient.Option
	cors       *cors.Cors
	page       *template.Template
}

// New builds the console. options are applied to every upstream client the
// console creates, after the ones derived from the config.
func New(cfg config.Config, sessions consolesession.Repo, options ...apiclient.Option) (*Server, error) {
	page, err := template.ParseFS(templateFiles, "templates/page.html")
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Server New] failed to parse page template")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessions,
		page:     page,
		cors: cors.New(cors.Options{
			AllowedOrigins:   cfg.GetAllowedOrigins().List(),
			AllowedMethods:   splitList(cfg.GetAllowedMethods()),
			AllowedHeaders:   splitList(cfg.GetAllowedHeaders()),
			ExposedHeaders:   []string{"HX-Refresh", "HX-Redirect"},
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	}
	s.apiOptions = append([]apiclient.Option{
		apiclient.WithTimeout(cfg.GetAPITimeout()),
		apiclient.WithRefreshPath(cfg.GetRefreshPath()),
		apiclient.WithTokenNotFoundSignal(cfg.GetTokenNotFoundSignal()),
	}, options...)

	s.initRoutes()
	s.logRoutes()

	s.handler = s.RecoverMiddleware(s.LoggingMiddleware(s.CorsMiddleware(s.RouteGuardMiddleware(s.mux.ServeHTTP))))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// newSession starts a console session with its own upstream client.
func (s *Server) newSession() (*consolesession.Session, error) {
	return consolesession.New(s.config.GetAPIBaseURL(), s.config.GetMaxSessionAge(), s.apiOptions...)
}

// PurgeSessions drops expired sessions every interval until ctx is done.
// It is a no-op for repos that expire sessions on their own.
func (s *Server) PurgeSessions(ctx context.Context, every time.Duration) {
	purger, ok := s.sessions.(interface{ PurgeExpired() int })
	if !ok {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := purger.PurgeExpired(); n > 0 {
				log.Info().Int("count", n).Msg("Purged expired console sessions")
			}
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
