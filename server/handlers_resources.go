package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-console/adminapi"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

func jsonPayload(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", apperrors.ErrInvalidRequest)
	}
	return json.RawMessage(body), nil
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) (*adminapi.Resource, bool) {
	res, err := sessionFromContext(r.Context()).API.Resource(r.PathValue("collection"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return res, true
}

func (s *Server) ListResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		env, err := res.List(r.Context(), pageQuery(r))
		respond(w, r, env, err)
	}
}

func (s *Server) GetResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		env, err := res.Get(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

// CreateResourceHandler forwards JSON or multipart (image upload) bodies unchanged.
func (s *Server) CreateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		body, contentType, err := readBody(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var env *adminapi.Raw
		if isMultipart(contentType) {
			env, err = res.CreateForm(r.Context(), contentType, body)
		} else if payload, perr := jsonPayload(body); perr != nil {
			err = perr
		} else {
			env, err = res.Create(r.Context(), payload)
		}
		respond(w, r, env, err)
	}
}

func (s *Server) UpdateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		body, contentType, err := readBody(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var env *adminapi.Raw
		if isMultipart(contentType) {
			env, err = res.UpdateForm(r.Context(), r.PathValue("id"), contentType, body)
		} else if payload, perr := jsonPayload(body); perr != nil {
			err = perr
		} else {
			env, err = res.Update(r.Context(), r.PathValue("id"), payload)
		}
		respond(w, r, env, err)
	}
}

func (s *Server) DeleteResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resource(w, r)
		if !ok {
			return
		}
		env, err := res.Delete(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

func (s *Server) DropdownOptionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := sessionFromContext(r.Context()).API.DropdownOptions(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": opts})
	}
}

func (s *Server) GetSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.GetSettings(r.Context())
		respond(w, r, env, err)
	}
}

// SaveSettingsHandler forwards the settings form; the logo makes it multipart.
func (s *Server) SaveSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := sessionFromContext(r.Context()).API
		body, contentType, err := readBody(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var env *adminapi.Raw
		if isJSON(contentType) {
			var payload json.RawMessage
			if payload, err = jsonPayload(body); err == nil {
				env, err = api.SaveSettingsJSON(r.Context(), payload)
			}
		} else {
			env, err = api.SaveSettings(r.Context(), contentType, body)
		}
		respond(w, r, env, err)
	}
}
