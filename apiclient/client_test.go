package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testRenewedToken = "renewed-access-token"
	testRefreshToken = "refresh-1"
)

// fakeUpstream plays the REST API: /teams accepts only the renewed bearer
// token, /auth/refresh-token hands that token out.
type fakeUpstream struct {
	server *httptest.Server

	refreshCalls  atomic.Int32
	refreshGate   chan struct{} // When set, the refresh handler blocks until it is closed
	refreshStatus int           // Non-zero makes the refresh fail with this status

	mu             sync.Mutex
	authHeaders    map[string][]string
	refreshCookies []string
	refreshAuth    []string
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{authHeaders: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh-token", u.refresh)
	mux.HandleFunc("GET /api/v1/teams", u.protected)
	mux.HandleFunc("GET /api/v1/events", u.protected)
	mux.HandleFunc("GET /api/v1/always-expired", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": DefaultTokenNotFoundSignal})
	})
	mux.HandleFunc("POST /api/v1/auths/login", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
	})
	mux.HandleFunc("GET /api/v1/teams/missing", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Team not found"})
	})
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *fakeUpstream) baseURL() string {
	return u.server.URL + "/api/v1"
}

func (u *fakeUpstream) record(r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.authHeaders[r.URL.Path] = append(u.authHeaders[r.URL.Path], r.Header.Get("Authorization"))
}

func (u *fakeUpstream) headersFor(path string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.authHeaders["/api/v1"+path]...)
}

func (u *fakeUpstream) protected(w http.ResponseWriter, r *http.Request) {
	u.record(r)
	if r.Header.Get("Authorization") != "Bearer "+testRenewedToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": DefaultTokenNotFoundSignal})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]string{{"_id": "t-1"}}})
}

func (u *fakeUpstream) refresh(w http.ResponseWriter, r *http.Request) {
	u.refreshCalls.Add(1)

	u.mu.Lock()
	cookie, _ := r.Cookie(RefreshTokenCookie)
	if cookie != nil {
		u.refreshCookies = append(u.refreshCookies, cookie.Value)
	}
	u.refreshAuth = append(u.refreshAuth, r.Header.Get("Authorization"))

	gate, status := u.refreshGate, u.refreshStatus
	u.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if status != 0 {
		writeJSON(w, status, map[string]any{"success": false, "message": "Refresh token expired"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: testRenewedToken, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"accessToken": testRenewedToken})
}

// holdRefresh makes the refresh handler block until the returned channel is closed.
func (u *fakeUpstream) holdRefresh() chan struct{} {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.refreshGate = make(chan struct{})
	return u.refreshGate
}

func (u *fakeUpstream) failRefresh(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.refreshStatus = status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, u *fakeUpstream, options ...Option) *Client {
	t.Helper()
	options = append([]Option{WithLogger(zerolog.Nop()), WithTimeout(5 * time.Second)}, options...)
	c, err := New(u.baseURL(), options...)
	require.NoError(t, err)
	c.SetCredentials("stale-access-token", testRefreshToken)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("/relative/only")
	require.Error(t, err)

	_, err = New("://bad")
	require.Error(t, err)
}

func TestSend_Success(t *testing.T) {
	u := newFakeUpstream(t)
	c := newTestClient(t, u)

	resp, err := c.Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(0), u.refreshCalls.Load())
}

func TestSend_RefreshAndRetry(t *testing.T) {
	u := newFakeUpstream(t)

	var renewed []*oauth2.Token
	c := newTestClient(t, u, WithOnRenewed(func(tok *oauth2.Token) {
		renewed = append(renewed, tok)
	}))

	resp, err := c.Get(context.Background(), "/teams", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []map[string]string `json:"data"`
	}
	require.NoError(t, resp.Decode(&body))
	require.Equal(t, "t-1", body.Data[0]["_id"])

	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Equal(t, []string{"", "Bearer " + testRenewedToken}, u.headersFor("/teams"))
	require.Len(t, renewed, 1)
	require.Equal(t, testRenewedToken, renewed[0].AccessToken)

	// The refresh call carries the cookies but not the stale default header.
	u.mu.Lock()
	require.Equal(t, []string{testRefreshToken}, u.refreshCookies)
	require.Equal(t, []string{""}, u.refreshAuth)
	u.mu.Unlock()

	// The renewed token is now the default header, no further refresh.
	_, err = c.Get(context.Background(), "/events", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer " + testRenewedToken}, u.headersFor("/events"))
	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Equal(t, testRenewedToken, c.AccessToken())
}

func TestSend_ErrorsPropagateWithoutRefresh(t *testing.T) {
	tests := []struct {
		name       string
		send       func(c *Client) error
		wantStatus int
		wantMsg    string
	}{
		{
			name: "non-401 status",
			send: func(c *Client) error {
				_, err := c.Get(context.Background(), "/teams/missing", nil)
				return err
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Team not found",
		},
		{
			name: "401 without the token-not-found signal",
			send: func(c *Client) error {
				_, err := c.PostJSON(context.Background(), "/auths/login", map[string]string{"email": "a@b.c", "password": "x"})
				return err
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newFakeUpstream(t)
			c := newTestClient(t, u)

			err := tt.send(c)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.wantStatus, apiErr.StatusCode)
			require.Equal(t, tt.wantMsg, apiErr.Message)
			require.False(t, c.IsAuthExpired(err))
			require.Equal(t, int32(0), u.refreshCalls.Load())
		})
	}
}

func TestSend_NetworkErrorPropagates(t *testing.T) {
	u := newFakeUpstream(t)
	netErr := errors.New("connection reset by peer")
	c := newTestClient(t, u, WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, netErr }),
	}))

	_, err := c.Get(context.Background(), "/teams", nil)
	require.ErrorIs(t, err, netErr)
	require.NotErrorIs(t, err, ErrRefreshFailed)
	require.Equal(t, int32(0), u.refreshCalls.Load())
}

func TestSend_ResponseSizeLimit(t *testing.T) {
	u := newFakeUpstream(t)
	body := func(n int) *http.Client {
		return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       io.NopCloser(strings.NewReader(strings.Repeat("x", n))),
				Request:    r,
			}, nil
		})}
	}

	c := newTestClient(t, u, WithMaxResponseBytes(16), WithHTTPClient(body(16)))
	resp, err := c.Get(context.Background(), "/teams", nil)
	require.NoError(t, err)
	require.Len(t, resp.Body, 16)

	c = newTestClient(t, u, WithMaxResponseBytes(16), WithHTTPClient(body(17)))
	_, err = c.Get(context.Background(), "/teams", nil)
	require.ErrorIs(t, err, ErrResponseTooLarge)
	require.Equal(t, int32(0), u.refreshCalls.Load())
}

func TestSend_RetriedRequestIsNotRequeued(t *testing.T) {
	u := newFakeUpstream(t)
	c := newTestClient(t, u)

	_, err := c.Get(context.Background(), "/always-expired", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.True(t, c.IsAuthExpired(err))
	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Equal(t, []string{"", "Bearer " + testRenewedToken}, u.headersFor("/always-expired"))
}

func TestSend_ConcurrentFailuresShareOneRefresh(t *testing.T) {
	const callers = 8

	u := newFakeUpstream(t)
	gate := u.holdRefresh()

	var renewedCount atomic.Int32
	c := newTestClient(t, u, WithOnRenewed(func(*oauth2.Token) { renewedCount.Add(1) }))

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/teams", nil)
		}(i)
	}

	require.Eventually(t, func() bool {
		return c.refresh.inProgress() && c.refresh.pending() == callers-1
	}, 5*time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Equal(t, int32(1), renewedCount.Load())
	require.False(t, c.refresh.inProgress())
	require.Zero(t, c.refresh.pending())

	var retried int
	for _, h := range u.headersFor("/teams") {
		if h == "Bearer "+testRenewedToken {
			retried++
		}
	}
	require.Equal(t, callers, retried)
}

func TestSend_RequestArrivingDuringRefreshIsQueued(t *testing.T) {
	u := newFakeUpstream(t)
	gate := u.holdRefresh()
	c := newTestClient(t, u)

	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "/teams", nil)
		errA <- err
	}()
	require.Eventually(t, c.refresh.inProgress, 5*time.Second, 5*time.Millisecond)

	errB := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "/events", nil)
		errB <- err
	}()
	require.Eventually(t, func() bool { return c.refresh.pending() == 1 }, 5*time.Second, 5*time.Millisecond)

	close(gate)
	require.NoError(t, <-errA)
	require.NoError(t, <-errB)

	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Equal(t, []string{"", "Bearer " + testRenewedToken}, u.headersFor("/teams"))
	require.Equal(t, []string{"", "Bearer " + testRenewedToken}, u.headersFor("/events"))
}

func TestSend_RefreshNetworkError(t *testing.T) {
	u := newFakeUpstream(t)
	netErr := errors.New("dial tcp: connection refused")

	var renewedCount atomic.Int32
	c := newTestClient(t, u,
		WithRefreshHTTPClient(&http.Client{
			Transport: roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, netErr }),
		}),
		WithOnRenewed(func(*oauth2.Token) { renewedCount.Add(1) }),
	)

	_, err := c.Get(context.Background(), "/teams", nil)
	require.ErrorIs(t, err, netErr)
	require.ErrorIs(t, err, ErrRefreshFailed)
	require.Zero(t, renewedCount.Load())
	require.False(t, c.refresh.inProgress())
	require.Equal(t, []string{""}, u.headersFor("/teams"))
}

func TestSend_RefreshFailureRejectsQueuedCallers(t *testing.T) {
	const callers = 4

	u := newFakeUpstream(t)
	gate := u.holdRefresh()
	u.failRefresh(http.StatusUnauthorized)
	c := newTestClient(t, u)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/teams", nil)
		}(i)
	}

	require.Eventually(t, func() bool {
		return c.refresh.inProgress() && c.refresh.pending() == callers-1
	}, 5*time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, ErrRefreshFailed)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Refresh token expired", apiErr.Message)
	}
	require.Equal(t, int32(1), u.refreshCalls.Load())
	require.Len(t, u.headersFor("/teams"), callers)
}

func TestSend_EmptyRefreshPayload(t *testing.T) {
	u := newFakeUpstream(t)
	c := newTestClient(t, u, WithRefreshHTTPClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			rec := httptest.NewRecorder()
			writeJSON(rec, http.StatusOK, map[string]any{"success": true})
			return rec.Result(), nil
		}),
	}))

	_, err := c.Get(context.Background(), "/teams", nil)
	require.ErrorIs(t, err, ErrRefreshFailed)
	require.ErrorIs(t, err, ErrEmptyAccessToken)
}

func TestSend_QueuedCallerCancels(t *testing.T) {
	u := newFakeUpstream(t)
	gate := u.holdRefresh()
	c := newTestClient(t, u)

	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "/teams", nil)
		errA <- err
	}()
	require.Eventually(t, c.refresh.inProgress, 5*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errB := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "/events", nil)
		errB <- err
	}()
	require.Eventually(t, func() bool { return c.refresh.pending() == 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errB, context.Canceled)
	require.Zero(t, c.refresh.pending())

	close(gate)
	require.NoError(t, <-errA)
}

func TestRefreshCoordinator_ReleasesInArrivalOrder(t *testing.T) {
	var logs bytes.Buffer
	gate := make(chan struct{})
	rc := newRefreshCoordinator(func(context.Context) (*oauth2.Token, error) {
		<-gate
		return &oauth2.Token{AccessToken: testRenewedToken}, nil
	}, nil, zerolog.New(zerolog.SyncWriter(&logs)))

	leader := make(chan error, 1)
	go func() {
		_, err := rc.await(context.Background())
		leader <- err
	}()
	require.Eventually(t, rc.inProgress, 5*time.Second, 5*time.Millisecond)

	const waiters = 3
	results := make(chan *oauth2.Token, waiters)
	var arrival []string
	for i := 1; i <= waiters; i++ {
		go func() {
			tok, err := rc.await(context.Background())
			if err != nil {
				tok = nil
			}
			results <- tok
		}()
		require.Eventually(t, func() bool { return rc.pending() == i }, 5*time.Second, 5*time.Millisecond)
		rc.mu.Lock()
		arrival = append(arrival, rc.queue[i-1].id.String())
		rc.mu.Unlock()
	}

	close(gate)
	require.NoError(t, <-leader)
	for range waiters {
		tok := <-results
		require.NotNil(t, tok)
		require.Equal(t, testRenewedToken, tok.AccessToken)
	}
	require.False(t, rc.inProgress())

	var released []string
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry struct {
			Message   string `json:"message"`
			PendingID string `json:"pending_id"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry.Message == "released queued request" {
			released = append(released, entry.PendingID)
		}
	}
	require.Equal(t, arrival, released)
}

func TestCredentials(t *testing.T) {
	u := newFakeUpstream(t)
	c, err := New(u.baseURL(), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.False(t, c.HasCredentials())

	c.SetCredentials("", testRefreshToken)
	require.True(t, c.HasCredentials())
	require.Empty(t, c.AccessToken())

	c.SetCredentials("access-1", "")
	require.Equal(t, "access-1", c.AccessToken())

	c.ClearCredentials()
	require.False(t, c.HasCredentials())
	require.Empty(t, c.AccessToken())
}
