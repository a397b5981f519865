package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-console/adminapi"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

// Content kinds served under /api/content/{kind}
const (
	contentPrivacy = "privacy"
	contentTerms   = "terms"
	contentFAQ     = "faq"
)

func unknownContent(kind string) error {
	return fmt.Errorf("unknown content %q: %w", kind, apperrors.ErrNotFound)
}

func (s *Server) GetContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := sessionFromContext(r.Context()).API
		switch kind := r.PathValue("kind"); kind {
		case contentPrivacy:
			env, err := api.GetPrivacy(r.Context())
			respond(w, r, env, err)
		case contentTerms:
			env, err := api.GetTerms(r.Context())
			respond(w, r, env, err)
		case contentFAQ:
			env, err := api.ListFAQ(r.Context())
			respond(w, r, env, err)
		default:
			writeError(w, r, unknownContent(kind))
		}
	}
}

func (s *Server) CreateContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := sessionFromContext(r.Context()).API
		kind := r.PathValue("kind")
		if kind != contentPrivacy && kind != contentTerms && kind != contentFAQ {
			writeError(w, r, unknownContent(kind))
			return
		}

		var body adminapi.DocumentBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		var (
			env *adminapi.Envelope[adminapi.Document]
			err error
		)
		switch kind {
		case contentPrivacy:
			env, err = api.CreatePrivacy(r.Context(), body)
		case contentTerms:
			env, err = api.CreateTerms(r.Context(), body)
		case contentFAQ:
			env, err = api.CreateFAQ(r.Context(), body)
		}
		respond(w, r, env, err)
	}
}

func (s *Server) GetContentItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := sessionFromContext(r.Context()).API
		id := r.PathValue("id")

		var (
			env *adminapi.Envelope[adminapi.Document]
			err error
		)
		switch kind := r.PathValue("kind"); kind {
		case contentPrivacy:
			env, err = api.GetPrivacyByID(r.Context(), id)
		case contentTerms:
			env, err = api.GetTermsByID(r.Context(), id)
		case contentFAQ:
			env, err = api.GetFAQ(r.Context(), id)
		default:
			err = unknownContent(kind)
		}
		respond(w, r, env, err)
	}
}

// UpdateContentItemHandler edits an FAQ. Privacy and terms are versioned by creating a new one.
func (s *Server) UpdateContentItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if kind := r.PathValue("kind"); kind != contentFAQ {
			writeError(w, r, unknownContent(kind))
			return
		}
		var body adminapi.DocumentBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		env, err := sessionFromContext(r.Context()).API.UpdateFAQ(r.Context(), r.PathValue("id"), body)
		respond(w, r, env, err)
	}
}

func (s *Server) DeleteContentItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if kind := r.PathValue("kind"); kind != contentFAQ {
			writeError(w, r, unknownContent(kind))
			return
		}
		env, err := sessionFromContext(r.Context()).API.DeleteFAQ(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

func (s *Server) ListContactsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.ListContacts(r.Context())
		respond(w, r, env, err)
	}
}

func (s *Server) GetContactHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.GetContact(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}
