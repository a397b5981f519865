package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/apiclient"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 10 << 20 // Room for image uploads

type messageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageEnvelope{Success: status < 400, Message: message})
}

// writeError maps err onto a response. Upstream API errors are passed through
// verbatim so the browser sees the API's own status and message. A failed
// token refresh means the session is over, whatever the API answered.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrRefreshFailed):
		endSession(w, r)
		if isHTMXRequest(r) {
			w.Header().Set("HX-Redirect", RouteLogin)
		}
		writeJSONMessage(w, http.StatusUnauthorized, "Session expired, please log in again")
	case errors.Is(err, apperrors.ErrNoCredentials):
		if isHTMXRequest(r) {
			w.Header().Set("HX-Redirect", RouteLogin)
		}
		writeJSONMessage(w, http.StatusUnauthorized, "Please log in")
	case errors.As(err, &apiErr):
		if len(apiErr.Body) > 0 && json.Valid(apiErr.Body) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(apiErr.StatusCode)
			_, _ = w.Write(apiErr.Body)
			return
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		writeJSONMessage(w, apiErr.StatusCode, msg)
	case errors.Is(err, apperrors.ErrNotAdmin):
		writeJSONMessage(w, http.StatusForbidden, "Only admin can login")
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSONMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		writeJSONMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeJSONMessage(w, http.StatusGatewayTimeout, "The API did not answer in time")
	default:
		log.Err(err).Str("path", r.URL.Path).Msg("Upstream call failed")
		writeJSONMessage(w, http.StatusBadGateway, "The API could not be reached")
	}
}

// respond writes v as JSON, or the error.
func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// userMessage is the text shown on a redirect after a failed form post.
// Refresh failures never get here; formError ends the session first.
func userMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apperrors.ErrNotAdmin):
		return "Only admin can login"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return fallback
}

// readBody returns the raw request body with its content type, for forwarding upstream.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}
	return body, r.Header.Get("Content-Type"), nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "multipart/form-data"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}
	return nil
}

// formValues reads a url-encoded form or a flat JSON object.
func formValues(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	if isJSON(r.Header.Get("Content-Type")) {
		var fields map[string]string
		if err := decodeJSON(w, r, &fields); err != nil {
			return nil, err
		}
		values := url.Values{}
		for k, v := range fields {
			values.Set(k, v)
		}
		return values, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}
	return r.PostForm, nil
}
