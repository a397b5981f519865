package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	// AccessTokenCookie and RefreshTokenCookie are the cookies the upstream API authenticates with.
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	DefaultTimeout             = 10 * time.Second
	DefaultRefreshPath         = "/auth/refresh-token"
	DefaultTokenNotFoundSignal = "AUTH_TOKEN_NOT_FOUND"
	DefaultMaxResponseBytes    = 10 << 20
)

var (
	ErrRefreshFailed     = apperrors.ErrRefreshFailed
	ErrEmptyAccessToken  = apperrors.ErrEmptyAccessToken
	ErrMalformedEnvelope = apperrors.ErrMalformedEnvelope
	ErrResponseTooLarge  = apperrors.ErrResponseTooLarge
)

// Client issues calls to the upstream REST API with the session cookies
// attached. When a call fails because the access token is missing or expired
// it refreshes the token once for the whole burst of failing calls and
// replays each of them.
type Client struct {
	baseURL     *url.URL
	jar         http.CookieJar
	httpClient  *http.Client
	refreshHTTP *http.Client // Never goes through the refresh logic, so a failing refresh cannot recurse
	refreshPath string
	signal      string
	timeout     time.Duration
	maxBody     int64
	logger      zerolog.Logger
	onRenewed   func(*oauth2.Token)

	baseHTTP    *http.Client
	baseRefresh *http.Client

	mu    sync.RWMutex
	token *oauth2.Token // Sent as the default Authorization header once a refresh succeeded

	refresh *refreshCoordinator
}

type Option func(*Client)

// WithTimeout sets the overall timeout applied to every call, refresh included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithTokenNotFoundSignal sets the envelope message (or code) that marks a 401 as an expired access token.
func WithTokenNotFoundSignal(signal string) Option {
	return func(c *Client) {
		c.signal = signal
	}
}

// WithHTTPClient sets the client used for API calls. Its cookie jar, if any, becomes the session's cookie store.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.baseHTTP = hc
	}
}

// WithRefreshHTTPClient sets the client used for the refresh call only.
func WithRefreshHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.baseRefresh = hc
	}
}

// WithMaxResponseBytes caps how much of an upstream body is read.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithOnRenewed registers the reload trigger. It runs once per successful
// refresh, after every queued caller has been released.
func WithOnRenewed(fn func(*oauth2.Token)) Option {
	return func(c *Client) {
		c.onRenewed = fn
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[apiclient New] invalid base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[apiclient New] base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     u,
		refreshPath: DefaultRefreshPath,
		signal:      DefaultTokenNotFoundSignal,
		timeout:     DefaultTimeout,
		maxBody:     DefaultMaxResponseBytes,
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.baseHTTP != nil && c.baseHTTP.Jar != nil {
		c.jar = c.baseHTTP.Jar
	} else {
		c.jar, _ = cookiejar.New(nil) // Only fails on a bad PublicSuffixList
	}
	c.httpClient = c.withJar(c.baseHTTP)
	c.refreshHTTP = c.withJar(c.baseRefresh)
	c.refresh = newRefreshCoordinator(c.renew, c.settled, c.logger)

	return c, nil
}

func (c *Client) withJar(hc *http.Client) *http.Client {
	if hc == nil {
		return &http.Client{Jar: c.jar, Timeout: c.timeout}
	}
	clone := *hc
	clone.Jar = c.jar
	if clone.Timeout == 0 {
		clone.Timeout = c.timeout
	}
	return &clone
}

// Send performs req. Any failure other than an expired access token is
// returned unchanged: an *APIError for HTTP errors, the transport error otherwise.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.roundTrip(ctx, c.httpClient, req, true)
	if err == nil || req.Retried() || !c.IsAuthExpired(err) {
		return resp, err
	}

	c.logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("access token expired")

	tok, err := c.refresh.await(ctx)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req.retryWith(tok))
}

// IsAuthExpired reports whether err is the API's "access token not found" answer.
func (c *Client) IsAuthExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return false
	}
	return apiErr.Message == c.signal || (apiErr.Code != "" && apiErr.Code == c.signal)
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, req Request, authorize bool) (*Response, error) {
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[apiclient roundTrip] failed to build %s %s", req.Method, req.Path)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if authorize {
		c.authorize(httpReq, req)
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBody {
		return nil, apperrors.Wrapf(ErrResponseTooLarge, "[apiclient roundTrip] %s %s", req.Method, req.Path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req, resp.StatusCode, data)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) authorize(httpReq *http.Request, req Request) {
	if req.bearer != nil {
		req.bearer.SetAuthHeader(httpReq)
		return
	}
	if httpReq.Header.Get("Authorization") != "" {
		return
	}
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok != nil {
		tok.SetAuthHeader(httpReq)
	}
}

// renew calls the refresh endpoint. The server rotates the session cookies in
// the shared jar; the access token in the body becomes the default header.
func (c *Client) renew(ctx context.Context) (*oauth2.Token, error) {
	resp, err := c.roundTrip(ctx, c.refreshHTTP, NewRequest(http.MethodPost, c.refreshPath), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	var payload refreshPayload
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	access := payload.accessToken()
	if access == "" {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrEmptyAccessToken)
	}

	tok := &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      token.Expiry(access),
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}

func (c *Client) settled(tok *oauth2.Token, err error) {
	if err == nil && c.onRenewed != nil {
		c.onRenewed(tok)
	}
}

// SetCredentials stores the session tokens in the cookie jar. Empty values are skipped.
func (c *Client) SetCredentials(accessToken, refreshToken string) {
	var cookies []*http.Cookie
	if accessToken != "" {
		cookies = append(cookies, &http.Cookie{Name: AccessTokenCookie, Value: accessToken, Path: "/"})
	}
	if refreshToken != "" {
		cookies = append(cookies, &http.Cookie{Name: RefreshTokenCookie, Value: refreshToken, Path: "/"})
	}
	if len(cookies) > 0 {
		c.jar.SetCookies(c.baseURL, cookies)
	}
}

// ClearCredentials drops the session cookies and the default Authorization header.
func (c *Client) ClearCredentials() {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{
		{Name: AccessTokenCookie, Path: "/", MaxAge: -1},
		{Name: RefreshTokenCookie, Path: "/", MaxAge: -1},
	})
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// HasCredentials reports whether either session cookie is present. The tokens are not inspected.
func (c *Client) HasCredentials() bool {
	return c.cookie(AccessTokenCookie) != "" || c.cookie(RefreshTokenCookie) != ""
}

// AccessToken returns the most recent access token: the renewed one if any, else the cookie.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok != nil {
		return tok.AccessToken
	}
	return c.cookie(AccessTokenCookie)
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
