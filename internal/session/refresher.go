package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/store"
)

// Outcome is the shared result of a refresh: the rotated session and the
// user profile that came with it. Every caller that attached to the same
// in-flight refresh observes the same Outcome.
type Outcome struct {
	Session *models.Session
	User    *models.User
}

// Refresher is the single serialization point for session refreshes. However
// many callers request a refresh concurrently (the proactive timer, an
// app-resume check, an explicit biometric login), the provider's refresh
// endpoint is invoked at most once at a time; late arrivals attach to the
// pending operation instead of re-triggering it.
type Refresher struct {
	store    store.Store
	identity identity.Client
	logger   logging.Logger
	group    singleflight.Group
}

func NewRefresher(st store.Store, id identity.Client, logger logging.Logger) *Refresher {
	return &Refresher{store: st, identity: id, logger: logger}
}

// Refresh performs (or attaches to) a session refresh. On success the store
// is already updated when Refresh returns, so any subsequent reader observes
// the rotated token. On failure no store mutation has happened.
//
// Attached callers share the context of the call that started the flight.
func (r *Refresher) Refresh(ctx context.Context) (*Outcome, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug(ctx, "attached to in-flight refresh")
	}
	return v.(*Outcome), nil
}

func (r *Refresher) refresh(ctx context.Context) (*Outcome, error) {
	// Always re-read the token from the store, never from in-memory state:
	// a refresh that completed after this caller decided to refresh has
	// already rotated the token away.
	sess, err := r.store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stored session: %w", err)
	}
	if sess == nil || sess.RefreshToken == "" {
		return nil, common.ErrNoRefreshToken
	}

	res, err := r.identity.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrTokenReplayed) {
			return r.adoptRotated(ctx, sess.RefreshToken, err)
		}
		return nil, err
	}

	if err := r.store.SaveAuth(ctx, res.Session, res.User); err != nil {
		return nil, fmt.Errorf("persist refreshed session: %w", err)
	}
	return &Outcome{Session: res.Session, User: res.User}, nil
}

// adoptRotated handles the replay class: the provider says the submitted
// token was already used. If the store now holds a different token, a
// concurrent caller (another process, or a race between the timer and a
// resume check) completed a refresh first; adopt its result instead of
// failing. Otherwise the original error stands.
func (r *Refresher) adoptRotated(ctx context.Context, submitted string, cause error) (*Outcome, error) {
	current, err := r.store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-read stored session: %w", err)
	}
	if current == nil || current.RefreshToken == "" || current.RefreshToken == submitted {
		return nil, cause
	}

	user, err := r.store.GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-read stored user: %w", err)
	}

	r.logger.Info(ctx, "adopted concurrently refreshed session")
	return &Outcome{Session: current, User: user}, nil
}
