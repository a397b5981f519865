package apiclient

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type refreshResult struct {
	token *oauth2.Token
	err   error
}

// pendingRequest is a caller parked behind an in-flight refresh.
// done is buffered so settling never blocks on a caller that stopped waiting.
type pendingRequest struct {
	id   uuid.UUID
	done chan refreshResult
}

// refreshCoordinator makes sure at most one refresh call is outstanding per
// client. Callers that hit an expired token while a refresh is running are
// queued in arrival order and released together when it settles.
type refreshCoordinator struct {
	renew   func(context.Context) (*oauth2.Token, error)
	settled func(*oauth2.Token, error) // Runs once per refresh, after the queue is released
	logger  zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	queue    []pendingRequest
}

func newRefreshCoordinator(renew func(context.Context) (*oauth2.Token, error), settled func(*oauth2.Token, error), logger zerolog.Logger) *refreshCoordinator {
	return &refreshCoordinator{
		renew:   renew,
		settled: settled,
		logger:  logger,
	}
}

// await returns the renewed token, either by running the refresh itself or by
// waiting for the one already in flight.
func (rc *refreshCoordinator) await(ctx context.Context) (*oauth2.Token, error) {
	rc.mu.Lock()
	if rc.inFlight {
		p := pendingRequest{id: uuid.New(), done: make(chan refreshResult, 1)}
		rc.queue = append(rc.queue, p)
		rc.mu.Unlock()

		rc.logger.Debug().Str("pending_id", p.id.String()).Msg("waiting for token refresh")
		select {
		case res := <-p.done:
			return res.token, res.err
		case <-ctx.Done():
			rc.abandon(p.id)
			return nil, ctx.Err()
		}
	}
	rc.inFlight = true
	rc.mu.Unlock()

	// One caller giving up must not fail everyone queued behind it.
	tok, err := rc.renew(context.WithoutCancel(ctx))

	released := rc.release(tok, err)

	if err != nil {
		rc.logger.Warn().Err(err).Int("released", released).Msg("token refresh failed")
	} else {
		rc.logger.Info().Int("released", released).Msg("access token renewed")
	}

	if rc.settled != nil {
		rc.settled(tok, err)
	}
	return tok, err
}

// release hands the outcome to every queued caller in arrival order and
// clears the in-flight flag under the same lock.
func (rc *refreshCoordinator) release(tok *oauth2.Token, err error) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	released := len(rc.queue)
	for _, p := range rc.queue {
		p.done <- refreshResult{token: tok, err: err}
		rc.logger.Debug().Str("pending_id", p.id.String()).Msg("released queued request")
	}
	rc.queue = nil
	rc.inFlight = false
	return released
}

func (rc *refreshCoordinator) abandon(id uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for i, p := range rc.queue {
		if p.id == id {
			rc.queue = append(rc.queue[:i], rc.queue[i+1:]...)
			return
		}
	}
}

func (rc *refreshCoordinator) pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.queue)
}

func (rc *refreshCoordinator) inProgress() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.inFlight
}
