package apiclient

import (
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"golang.org/x/oauth2"
)

// Request describes one logical call to the upstream API.
// It is a value: replaying it after a token refresh works on a copy, so the
// caller's request is never mutated.
type Request struct {
	Method      string
	Path        string      // Relative to the client's base URL, e.g. "/teams/42"
	Query       url.Values  // Optional query string
	Header      http.Header // Optional extra headers
	Body        []byte      // Kept as bytes so the call can be replayed
	ContentType string

	retried bool          // Set once the request has been through a token refresh
	bearer  *oauth2.Token // Token attached for the replay
}

func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

// NewJSONRequest encodes payload as the JSON body of the request. A nil payload sends no body.
func NewJSONRequest(method, path string, payload any) (Request, error) {
	req := NewRequest(method, path)
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, apperrors.Wrapf(err, "[apiclient NewJSONRequest] failed to encode %s %s", method, path)
	}
	req.Body = body
	req.ContentType = "application/json"
	return req, nil
}

func (r Request) WithQuery(query url.Values) Request {
	r.Query = query
	return r
}

// Retried reports whether the request already went through a token refresh.
func (r Request) Retried() bool {
	return r.retried
}

// retryWith returns the copy that is replayed after a refresh.
func (r Request) retryWith(tok *oauth2.Token) Request {
	r.Header = r.Header.Clone()
	r.retried = true
	r.bearer = tok
	return r
}
