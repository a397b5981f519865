package adminapi

import (
	"context"
	"encoding/json"
	"net/url"
)

type User struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Phone      string   `json:"phone,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Photo      *string  `json:"photo,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	IsActive   bool     `json:"isActive"`
	IsVerified bool     `json:"isVerified"`
	IsHidden   bool     `json:"isHidden"`
	IsDeleted  bool     `json:"isDeleted"`
}

// UserQuery filters the user listing. Role and Search are always sent, as the API expects.
type UserQuery struct {
	PageQuery
	Role   string
	Search string
}

func (q UserQuery) values() url.Values {
	v := q.PageQuery.values()
	v.Set("role", q.Role)
	v.Set("search", q.Search)
	return v
}

// UserUpdate carries only the fields being changed.
type UserUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	Role       *string  `json:"role,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Photo      *string  `json:"photo,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	IsActive   *bool    `json:"isActive,omitempty"`
	IsVerified *bool    `json:"isVerified,omitempty"`
}

func (a *API) ListUsers(ctx context.Context, q UserQuery) (*Envelope[[]User], error) {
	return decode[[]User](a.client.Get(ctx, "/users", q.values()))
}

// GetProfile returns the signed-in admin.
func (a *API) GetProfile(ctx context.Context) (*Envelope[User], error) {
	return decode[User](a.client.Get(ctx, "/users/user", nil))
}

func (a *API) UpdateProfile(ctx context.Context, update UserUpdate) (*Envelope[User], error) {
	return decode[User](a.client.PostJSON(ctx, "/users/user", update))
}

// UpdateProfileForm forwards a multipart profile form (photo upload) as-is.
func (a *API) UpdateProfileForm(ctx context.Context, contentType string, body []byte) (*Envelope[User], error) {
	return decode[User](a.client.Post(ctx, "/users/user", contentType, body))
}

func (a *API) GetUserByID(ctx context.Context, id string) (*Envelope[User], error) {
	return decode[User](a.client.Get(ctx, "/users/musician/"+url.PathEscape(id), nil))
}

func (a *API) UpdateUserByID(ctx context.Context, id string, update UserUpdate) (*Envelope[User], error) {
	return decode[User](a.client.PostJSON(ctx, "/users/admin/"+url.PathEscape(id), update))
}

// ToggleUserVisibility flips the user's hidden flag.
func (a *API) ToggleUserVisibility(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](a.client.Post(ctx, "/users/hide/"+url.PathEscape(id), "", nil))
}

func (a *API) RestoreUser(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](a.client.PatchJSON(ctx, "/users/restore", IDRequest{ID: id}))
}

// DisableUser soft-deletes the user; the id travels in the request body.
func (a *API) DisableUser(ctx context.Context, id string) (*Raw, error) {
	return decode[json.RawMessage](a.client.Delete(ctx, "/users", IDRequest{ID: id}))
}
