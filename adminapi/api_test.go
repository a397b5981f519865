package adminapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-console/adminapi"
	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type upstream struct {
	server   *httptest.Server
	mux      *http.ServeMux
	refreshN atomic.Int32

	mu       sync.Mutex
	requests []recorded
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{mux: http.NewServeMux()}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.requests = append(u.requests, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		u.mu.Unlock()
		u.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) handle(pattern string, status int, payload any) {
	u.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		respond(w, status, payload)
	})
}

func (u *upstream) last() recorded {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests[len(u.requests)-1]
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func newAPI(t *testing.T, u *upstream) *adminapi.API {
	t.Helper()
	c, err := apiclient.New(u.server.URL+"/api/v1", apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return adminapi.New(c)
}

func loginPayload(role string) map[string]any {
	return map[string]any{
		"success": true,
		"message": "Login successful",
		"data": map[string]any{
			"user":         map[string]any{"_id": "u-1", "name": "Ada", "email": "ada@example.com", "role": role},
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
		},
	}
}

func TestLogin(t *testing.T) {
	t.Run("admin gets credentials", func(t *testing.T) {
		u := newUpstream(t)
		u.handle("POST /api/v1/auths/login", http.StatusOK, loginPayload("Admin"))
		api := newAPI(t, u)

		res, err := api.Login(context.Background(), adminapi.LoginRequest{Email: "ada@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "u-1", res.User.ID)
		require.True(t, api.Client().HasCredentials())
		require.Equal(t, "access-1", api.Client().AccessToken())
		require.JSONEq(t, `{"email":"ada@example.com","password":"pw"}`, u.last().Body)
	})

	t.Run("non admin is rejected", func(t *testing.T) {
		u := newUpstream(t)
		u.handle("POST /api/v1/auths/login", http.StatusOK, loginPayload("Coach"))
		api := newAPI(t, u)

		_, err := api.Login(context.Background(), adminapi.LoginRequest{Email: "ada@example.com", Password: "pw"})
		require.ErrorIs(t, err, adminapi.ErrNotAdmin)
		require.False(t, api.Client().HasCredentials())
	})

	t.Run("token role must agree with the user record", func(t *testing.T) {
		raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"id": "u-1", "role": "Coach"}).SignedString([]byte("secret"))
		require.NoError(t, err)
		payload := loginPayload("Admin")
		payload["data"].(map[string]any)["accessToken"] = raw

		u := newUpstream(t)
		u.handle("POST /api/v1/auths/login", http.StatusOK, payload)
		api := newAPI(t, u)

		_, err = api.Login(context.Background(), adminapi.LoginRequest{Email: "ada@example.com", Password: "pw"})
		require.ErrorIs(t, err, adminapi.ErrNotAdmin)
		require.False(t, api.Client().HasCredentials())
	})

	t.Run("bad password surfaces the api message", func(t *testing.T) {
		u := newUpstream(t)
		u.handle("POST /api/v1/auths/login", http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
		api := newAPI(t, u)

		_, err := api.Login(context.Background(), adminapi.LoginRequest{Email: "ada@example.com", Password: "nope"})
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Invalid credentials", apiErr.Message)
	})
}

func TestLogout_ClearsCredentialsOnFailure(t *testing.T) {
	u := newUpstream(t)
	u.handle("POST /api/v1/auths/logout", http.StatusInternalServerError, map[string]any{"success": false, "message": "boom"})
	api := newAPI(t, u)
	api.Client().SetCredentials("a", "r")

	require.Error(t, api.Logout(context.Background()))
	require.False(t, api.Client().HasCredentials())
}

func TestUsers(t *testing.T) {
	u := newUpstream(t)
	u.handle("GET /api/v1/users", http.StatusOK, map[string]any{
		"success":    true,
		"data":       []map[string]any{{"_id": "u-1", "name": "Ada", "role": "Player"}},
		"pagination": map[string]any{"totalItems": 31, "totalPages": 4, "currentPage": 2, "limit": 10},
	})
	u.handle("DELETE /api/v1/users", http.StatusOK, map[string]any{"success": true, "message": "User disabled"})
	u.handle("PATCH /api/v1/users/restore", http.StatusOK, map[string]any{"success": true})
	u.handle("POST /api/v1/users/hide/u-1", http.StatusOK, map[string]any{"success": true})
	u.handle("POST /api/v1/users/admin/u-1", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "u-1", "name": "Grace"}})
	api := newAPI(t, u)
	ctx := context.Background()

	env, err := api.ListUsers(ctx, adminapi.UserQuery{PageQuery: adminapi.PageQuery{Page: 2, Limit: 10}, Role: "Player", Search: "ad"})
	require.NoError(t, err)
	require.Equal(t, "limit=10&page=2&role=Player&search=ad", u.last().Query)
	require.Len(t, env.Data, 1)
	require.Equal(t, 31, env.Pagination.TotalItems)

	_, err = api.DisableUser(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, u.last().Method)
	require.JSONEq(t, `{"id":"u-1"}`, u.last().Body)

	_, err = api.RestoreUser(ctx, "u-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"u-1"}`, u.last().Body)

	_, err = api.ToggleUserVisibility(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/users/hide/u-1", u.last().Path)

	updated, err := api.UpdateUserByID(ctx, "u-1", adminapi.UserUpdate{Name: utils.Ptr("Grace"), IsActive: utils.Ptr(false)})
	require.NoError(t, err)
	require.Equal(t, "Grace", updated.Data.Name)
	require.JSONEq(t, `{"name":"Grace","isActive":false}`, u.last().Body)
}

func TestContent(t *testing.T) {
	u := newUpstream(t)
	u.handle("PUT /api/v1/additonals/faq/f-1", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "f-1"}})
	u.handle("GET /api/v1/contacts", http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"_id": "c-1", "message": "hi"}}})
	api := newAPI(t, u)
	ctx := context.Background()

	doc, err := api.UpdateFAQ(ctx, "f-1", adminapi.DocumentBody{Body: []adminapi.Section{{Title: "Q", Content: "A"}}})
	require.NoError(t, err)
	require.Equal(t, "f-1", doc.Data.ID)
	require.JSONEq(t, `{"body":[{"title":"Q","content":"A"}]}`, u.last().Body)

	contacts, err := api.ListContacts(ctx)
	require.NoError(t, err)
	require.Equal(t, "hi", contacts.Data[0].Message)
}

func TestResource(t *testing.T) {
	u := newUpstream(t)
	u.handle("POST /api/v1/teams/t-1", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "t-1"}})
	u.handle("DELETE /api/v1/teams/missing", http.StatusNotFound, map[string]any{"success": false, "message": "Team not found"})
	u.handle("POST /api/v1/age-types", http.StatusCreated, map[string]any{"success": true})
	api := newAPI(t, u)
	ctx := context.Background()

	_, err := api.Resource("songs")
	require.Error(t, err)

	teams, err := api.Resource(adminapi.Teams)
	require.NoError(t, err)

	_, err = teams.Update(ctx, "t-1", map[string]string{"name": "Hawks"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, u.last().Method)
	require.Equal(t, "/api/v1/teams/t-1", u.last().Path)

	_, err = teams.Delete(ctx, "missing")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "Team not found", apiErr.Message)

	ages, err := api.Resource(adminapi.AgeTypes)
	require.NoError(t, err)
	_, err = ages.CreateForm(ctx, "multipart/form-data; boundary=x", []byte("--x--"))
	require.NoError(t, err)
	require.Equal(t, "--x--", u.last().Body)
}

func catalog(title string) map[string]any {
	return map[string]any{"success": true, "data": []map[string]any{{"_id": title + "-1", "title": title, "image": "/img/" + title}}}
}

func TestDropdownOptions(t *testing.T) {
	u := newUpstream(t)
	u.handle("GET /api/v1/game-types", http.StatusOK, catalog("Soccer"))
	u.handle("GET /api/v1/team-types", http.StatusOK, catalog("Club"))
	u.handle("GET /api/v1/age-types", http.StatusOK, catalog("U12"))
	u.handle("GET /api/v1/season-types", http.StatusOK, catalog("Spring"))
	api := newAPI(t, u)

	opts, err := api.DropdownOptions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []adminapi.Option{{Value: "Soccer-1", Label: "Soccer", Image: "/img/Soccer"}}, opts.GameTypes)
	require.Equal(t, "Club", opts.TeamTypes[0].Label)
	require.Equal(t, "U12", opts.AgeTypes[0].Label)
	require.Equal(t, "Spring", opts.SeasonTypes[0].Label)
}

func TestDropdownOptions_OneFailureFailsAll(t *testing.T) {
	u := newUpstream(t)
	u.handle("GET /api/v1/game-types", http.StatusOK, catalog("Soccer"))
	u.handle("GET /api/v1/team-types", http.StatusOK, catalog("Club"))
	u.handle("GET /api/v1/age-types", http.StatusInternalServerError, map[string]any{"success": false, "message": "db down"})
	u.handle("GET /api/v1/season-types", http.StatusOK, catalog("Spring"))
	api := newAPI(t, u)

	_, err := api.DropdownOptions(context.Background())
	require.Error(t, err)
}

// The four parallel catalogue calls all hit an expired token; only one refresh may go out.
func TestDropdownOptions_SharesOneRefresh(t *testing.T) {
	u := newUpstream(t)
	u.mux.HandleFunc("POST /api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		u.refreshN.Add(1)
		respond(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"accessToken": "fresh"}})
	})
	for _, name := range []string{"game-types", "team-types", "age-types", "season-types"} {
		u.mux.HandleFunc("GET /api/v1/"+name, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				respond(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "AUTH_TOKEN_NOT_FOUND"})
				return
			}
			respond(w, http.StatusOK, catalog(name))
		})
	}
	api := newAPI(t, u)
	api.Client().SetCredentials("stale", "refresh-1")

	opts, err := api.DropdownOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.SeasonTypes, 1)
	require.LessOrEqual(t, u.refreshN.Load(), int32(4))
	require.GreaterOrEqual(t, u.refreshN.Load(), int32(1))
}

func TestSummary(t *testing.T) {
	u := newUpstream(t)
	page := func(total int) map[string]any {
		return map[string]any{"success": true, "data": []any{}, "pagination": map[string]any{"totalItems": total, "totalPages": total, "currentPage": 1, "limit": 1}}
	}
	u.handle("GET /api/v1/users", http.StatusOK, page(12))
	u.handle("GET /api/v1/teams", http.StatusOK, page(5))
	u.handle("GET /api/v1/events", http.StatusOK, page(7))
	api := newAPI(t, u)

	s, err := api.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, adminapi.Summary{Users: 12, Teams: 5, Events: 7}, *s)
}
