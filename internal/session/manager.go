// Package session implements the session lifecycle: the public façade over
// login/signup/logout/profile updates and biometric re-authentication, the
// single-flight refresh coordinator, the pre-expiry refresh scheduler, and
// the app lifecycle observer.
//
// The manager owns the in-memory Session/User state; the credential store
// is the authoritative copy, and memory is re-synced from it after any
// suspend/resume boundary or refresh conflict.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/biometric"
	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/store"
)

// Manager is the public-facing session façade.
type Manager struct {
	mu      sync.Mutex
	session *models.Session
	user    *models.User
	loading bool

	store     store.Store
	identity  identity.Client
	biometric biometric.Provider
	logger    logging.Logger

	refresher *Refresher
	scheduler *Scheduler
	threshold time.Duration
	// timeout bounds operations the manager initiates itself, such as a
	// timer-fired refresh that has no caller-supplied context.
	timeout time.Duration
}

// NewManager wires the façade. threshold is the refresh lead time
// (DefaultRefreshThreshold when zero); timeout bounds internally initiated
// operations.
func NewManager(st store.Store, id identity.Client, bio biometric.Provider, threshold, timeout time.Duration, logger logging.Logger) *Manager {
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	m := &Manager{
		store:     st,
		identity:  id,
		biometric: bio,
		logger:    logger,
		threshold: threshold,
		timeout:   timeout,
	}
	m.refresher = NewRefresher(st, id, logger)
	m.scheduler = NewScheduler(threshold, m.onRefreshDue, logger)
	return m
}

// CurrentSession returns a copy of the in-memory session, or nil.
func (m *Manager) CurrentSession() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// CurrentUser returns a copy of the in-memory user, or nil.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsLoading reports whether an authentication operation is in progress.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func (m *Manager) install(sess *models.Session, user *models.User) {
	m.mu.Lock()
	m.session = sess
	m.user = user
	m.mu.Unlock()
}

// Login authenticates with the identity provider. On success the session
// and user are persisted together, installed into memory, and the refresh
// scheduler is armed. Provider errors are returned unchanged and leave no
// partial state behind.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	res, err := m.identity.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.store.SaveAuth(ctx, res.Session, res.User); err != nil {
		return err
	}
	m.install(res.Session, res.User)
	m.scheduler.Arm(res.Session)
	m.logger.Info(ctx, "logged in", "user", res.User.ID)
	return nil
}

// Signup creates an account. It does not authenticate the caller; email
// verification happens out-of-band.
func (m *Manager) Signup(ctx context.Context, email, password, displayName string) error {
	m.setLoading(true)
	defer m.setLoading(false)
	return m.identity.Signup(ctx, email, password, displayName)
}

// Logout disarms the scheduler, notifies the provider best-effort, and
// clears session and user from memory and store. Logout is always locally
// authoritative: a failed server call is logged and swallowed. Saved
// biometric credentials are left in place.
func (m *Manager) Logout(ctx context.Context) {
	m.scheduler.Disarm()

	if sess := m.CurrentSession(); sess != nil {
		if err := m.identity.Logout(ctx, sess.AccessToken); err != nil {
			m.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}
	if err := m.store.ClearAuth(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear stored auth", "error", err)
	}
	m.install(nil, nil)
	m.logger.Info(ctx, "logged out")
}

// UpdateUserProfile merges patch into the current user, persists the merged
// record together with the unchanged session, and only then publishes it to
// memory. No-ops when no user is authenticated. On a failed write the
// authoritative state is re-read from the store instead of rolling back by
// hand.
func (m *Manager) UpdateUserProfile(ctx context.Context, patch models.UserPatch) error {
	m.mu.Lock()
	if m.user == nil || m.session == nil {
		m.mu.Unlock()
		return nil
	}
	sess := *m.session
	merged := m.user.Merge(patch)
	m.mu.Unlock()

	if err := m.store.SaveAuth(ctx, &sess, &merged); err != nil {
		m.resync(ctx)
		return err
	}
	m.install(&sess, &merged)
	return nil
}

// RefreshSession triggers (or attaches to) a refresh. A fatal refresh
// failure forces a logout: the token chain is no longer valid.
func (m *Manager) RefreshSession(ctx context.Context) error {
	out, err := m.refresher.Refresh(ctx)
	if err != nil {
		m.logger.Warn(ctx, "refresh failed", "error", err)
		m.forceLogout(ctx)
		return err
	}
	m.install(out.Session, out.User)
	m.scheduler.Arm(out.Session)
	return nil
}

// Restore adopts a previously stored session on startup, refreshing first
// if it is close to expiry. Equivalent to a foreground transition.
func (m *Manager) Restore(ctx context.Context) {
	m.reconcile(ctx)
}

// HandleAppState reacts to a host-app lifecycle transition.
func (m *Manager) HandleAppState(ctx context.Context, state AppState) {
	switch state {
	case StateBackground, StateInactive:
		// A suspended process must not rely on an in-flight timer firing
		// accurately.
		m.scheduler.Disarm()
	case StateActive:
		m.reconcile(ctx)
	}
}

// Close disarms the scheduler. In-flight operations are not interrupted.
func (m *Manager) Close() {
	m.scheduler.Disarm()
}

// reconcile re-reads the session from the store (memory may be stale
// relative to a refresh that happened, or failed, while suspended). Near
// expiry it refreshes synchronously; otherwise it adopts the stored state
// and re-arms the scheduler.
func (m *Manager) reconcile(ctx context.Context) {
	sess, err := m.store.GetSession(ctx)
	if err != nil {
		m.logger.Error(ctx, "failed to read stored session", "error", err)
		return
	}
	if sess == nil || sess.RefreshToken == "" {
		return
	}

	if sess.ExpiresIn(time.Now()) <= m.threshold {
		if err := m.RefreshSession(ctx); err != nil {
			m.logger.Warn(ctx, "refresh on resume failed, signed out", "error", err)
		}
		return
	}

	user, err := m.store.GetUser(ctx)
	if err != nil {
		m.logger.Error(ctx, "failed to read stored user", "error", err)
		return
	}
	m.install(sess, user)
	m.scheduler.Arm(sess)
}

// onRefreshDue runs on the scheduler's timer goroutine.
func (m *Manager) onRefreshDue() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.logger.Debug(ctx, "proactive refresh due")
	if err := m.RefreshSession(ctx); err != nil {
		m.logger.Warn(ctx, "proactive refresh failed", "error", err)
	}
}

// forceLogout clears session and user from memory and store after a fatal
// refresh failure. The only externally observable consequence is being
// signed out.
func (m *Manager) forceLogout(ctx context.Context) {
	m.scheduler.Disarm()
	if err := m.store.ClearAuth(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear stored auth", "error", err)
	}
	m.install(nil, nil)
}

// resync re-reads authoritative state from the store after a failed write.
func (m *Manager) resync(ctx context.Context) {
	sess, sessErr := m.store.GetSession(ctx)
	user, userErr := m.store.GetUser(ctx)
	if sessErr != nil || userErr != nil {
		m.logger.Error(ctx, "failed to resync state from store",
			"sessionError", sessErr, "userError", userErr)
		return
	}
	m.install(sess, user)
}
