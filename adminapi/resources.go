package adminapi

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"

	"github.com/jrsteele09/go-admin-console/apiclient"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

// Collections that share the same paginated CRUD shape upstream.
const (
	Teams       = "teams"
	Events      = "events"
	TeamTypes   = "team-types"
	AgeTypes    = "age-types"
	SeasonTypes = "season-types"
	GameTypes   = "game-types"
)

var collections = []string{Teams, Events, TeamTypes, AgeTypes, SeasonTypes, GameTypes}

// CatalogItem is the common shape of the team, age, season and game types.
type CatalogItem struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// Resource is one CRUD collection. Create and Update take either JSON or a
// raw multipart form (image uploads); updates are POSTed to /{name}/{id}.
type Resource struct {
	client *apiclient.Client
	name   string
}

// Resource returns the named collection, or ErrNotFound for an unknown name.
func (a *API) Resource(name string) (*Resource, error) {
	if !slices.Contains(collections, name) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "[adminapi Resource] unknown collection %q", name)
	}
	return &Resource{client: a.client, name: name}, nil
}

func (r *Resource) path(id string) string {
	if id == "" {
		return "/" + r.name
	}
	return "/" + r.name + "/" + url.PathEscape(id)
}

func (r *Resource) List(ctx context.Context, q PageQuery) (*Raw, error) {
	return decode[json.RawMessage](r.client.Get(ctx, r.path(""), q.values()))
}

func (r *Resource) Get(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](r.client.Get(ctx, r.path(id), nil))
}

func (r *Resource) Create(ctx context.Context, payload any) (*Raw, error) {
	return decode[json.RawMessage](r.client.PostJSON(ctx, r.path(""), payload))
}

func (r *Resource) CreateForm(ctx context.Context, contentType string, body []byte) (*Raw, error) {
	return decode[json.RawMessage](r.client.Post(ctx, r.path(""), contentType, body))
}

func (r *Resource) Update(ctx context.Context, id string, payload any) (*Raw, error) {
	return decode[json.RawMessage](r.client.PostJSON(ctx, r.path(id), payload))
}

func (r *Resource) UpdateForm(ctx context.Context, id, contentType string, body []byte) (*Raw, error) {
	return decode[json.RawMessage](r.client.Post(ctx, r.path(id), contentType, body))
}

func (r *Resource) Delete(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](r.client.Delete(ctx, r.path(id), nil))
}

// ListCatalog lists a type collection decoded into CatalogItems.
func (r *Resource) ListCatalog(ctx context.Context) ([]CatalogItem, error) {
	env, err := decode[[]CatalogItem](r.client.Get(ctx, r.path(""), nil))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
