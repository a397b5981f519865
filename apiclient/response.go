package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	return nil
}

// APIError is a non-2xx answer from the upstream API. The envelope fields are
// surfaced as-is so callers can show the API's own message.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // Envelope "message"
	Code       string // Envelope "code", when the API sends one
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

type errorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func newAPIError(req Request, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: status,
		Body:       body,
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Message
		apiErr.Code = env.Code
	}
	return apiErr
}

// refreshPayload accepts the token at the top level or inside "data".
type refreshPayload struct {
	AccessToken string `json:"accessToken"`
	Data        struct {
		AccessToken string `json:"accessToken"`
	} `json:"data"`
}

func (p refreshPayload) accessToken() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.Data.AccessToken
}
