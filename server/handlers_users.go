package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-admin-console/adminapi"
)

func pageQuery(r *http.Request) adminapi.PageQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return adminapi.PageQuery{Page: page, Limit: limit}
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.GetProfile(r.Context())
		respond(w, r, env, err)
	}
}

// UpdateProfileHandler accepts JSON, or a multipart form when a photo is uploaded.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := sessionFromContext(r.Context()).API
		if isMultipart(r.Header.Get("Content-Type")) {
			body, contentType, err := readBody(w, r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			env, err := api.UpdateProfileForm(r.Context(), contentType, body)
			respond(w, r, env, err)
			return
		}

		var update adminapi.UserUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			writeError(w, r, err)
			return
		}
		env, err := api.UpdateProfile(r.Context(), update)
		respond(w, r, env, err)
	}
}

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := adminapi.UserQuery{
			PageQuery: pageQuery(r),
			Role:      r.URL.Query().Get("role"),
			Search:    r.URL.Query().Get("search"),
		}
		env, err := sessionFromContext(r.Context()).API.ListUsers(r.Context(), q)
		respond(w, r, env, err)
	}
}

func (s *Server) RegisterUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminapi.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		env, err := sessionFromContext(r.Context()).API.RegisterUser(r.Context(), req)
		respond(w, r, env, err)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.GetUserByID(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update adminapi.UserUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			writeError(w, r, err)
			return
		}
		env, err := sessionFromContext(r.Context()).API.UpdateUserByID(r.Context(), r.PathValue("id"), update)
		respond(w, r, env, err)
	}
}

func (s *Server) DisableUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.DisableUser(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

func (s *Server) ToggleUserVisibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.ToggleUserVisibility(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}

func (s *Server) RestoreUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := sessionFromContext(r.Context()).API.RestoreUser(r.Context(), r.PathValue("id"))
		respond(w, r, env, err)
	}
}
