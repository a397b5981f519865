package consolesession

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/adminapi"
	"github.com/jrsteele09/go-admin-console/apiclient"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/token"
	"golang.org/x/oauth2"
)

// NowTimeFunc is swapped in tests.
var NowTimeFunc = time.Now

// Session is one signed-in browser. It owns its own API client, so the
// client's cookie jar holds this browser's upstream tokens and its refresh
// queue is never shared with another admin.
type Session struct {
	ID string

	Client *apiclient.Client
	API    *adminapi.API

	// Identity, filled from the access token on login
	UserID string
	Email  string
	Name   string
	Role   string

	CreatedAt time.Time
	ExpiresAt time.Time

	reload atomic.Bool
	ended  atomic.Bool
}

// New creates a session with a fresh client for baseURL. A successful token
// refresh on that client marks the session for reload.
func New(baseURL string, maxAge time.Duration, options ...apiclient.Option) (*Session, error) {
	now := NowTimeFunc()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(maxAge),
	}

	options = append(options[:len(options):len(options)], apiclient.WithOnRenewed(func(*oauth2.Token) {
		s.MarkReload()
	}))
	client, err := apiclient.New(baseURL, options...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[consolesession New]")
	}
	s.Client = client
	s.API = adminapi.New(client)
	return s, nil
}

// SetIdentity copies the user fields out of the decoded access token.
func (s *Session) SetIdentity(info *token.UserInfo) {
	if info == nil {
		return
	}
	s.UserID = info.ID
	s.Email = info.Email
	s.Name = info.Name
	s.Role = info.Role
}

func (s *Session) Expired() bool {
	return s.ended.Load() || !NowTimeFunc().Before(s.ExpiresAt)
}

// End drops the upstream credentials and expires the session, so the repo
// forgets it on the next lookup or sweep.
func (s *Session) End() {
	if s.Client != nil {
		s.Client.ClearCredentials()
	}
	s.ended.Store(true)
}

// Authenticated reports whether the session holds upstream credentials.
func (s *Session) Authenticated() bool {
	return s.Client != nil && s.Client.HasCredentials()
}

// MarkReload asks for the browser to reload on the next response.
func (s *Session) MarkReload() {
	s.reload.Store(true)
}

// TakeReload reports and clears the pending reload.
func (s *Session) TakeReload() bool {
	return s.reload.Swap(false)
}
