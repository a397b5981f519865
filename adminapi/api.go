package adminapi

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-admin-console/apiclient"
)

// API is the typed catalogue of the upstream admin endpoints. Every call goes
// through the session's apiclient.Client, so an expired access token is
// refreshed and the call replayed transparently.
type API struct {
	client *apiclient.Client
}

func New(client *apiclient.Client) *API {
	return &API{client: client}
}

func (a *API) Client() *apiclient.Client {
	return a.client
}

// Envelope is the wrapper every upstream answer comes in.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       T           `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// Raw is an envelope whose data is passed through untouched.
type Raw = Envelope[json.RawMessage]

// PageQuery selects a page of a listing. Zero values are left to the API defaults.
type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// IDRequest is the body of the endpoints that take the target id in the payload.
type IDRequest struct {
	ID string `json:"id"`
}

func decode[T any](resp *apiclient.Response, err error) (*Envelope[T], error) {
	if err != nil {
		return nil, err
	}
	env := &Envelope[T]{}
	if err := resp.Decode(env); err != nil {
		return nil, err
	}
	return env, nil
}
