package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
)

func TestManager_Background_DisarmsScheduler(t *testing.T) {
	fi := &fakeIdentity{loginRes: newResult("1", time.Now().Add(time.Hour))}
	m, _ := newTestManager(t, fi, nil)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))
	require.True(t, m.scheduler.Armed())

	m.HandleAppState(ctx, StateBackground)
	require.False(t, m.scheduler.Armed())
}

func TestManager_Resume_AdoptsNewerStoredSession(t *testing.T) {
	fi := &fakeIdentity{loginRes: newResult("1", time.Now().Add(time.Hour))}
	m, st := newTestManager(t, fi, nil)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))

	m.HandleAppState(ctx, StateBackground)

	// While suspended, a refresh completed silently and updated the store.
	rotated := newResult("bg", time.Now().Add(2*time.Hour))
	require.NoError(t, st.SaveAuth(ctx, rotated.Session, rotated.User))

	m.HandleAppState(ctx, StateActive)

	require.Equal(t, "rt-bg", m.CurrentSession().RefreshToken,
		"resume must adopt the store's session, not the stale in-memory one")
	require.True(t, m.scheduler.Armed())
	require.Equal(t, 0, fi.calls(), "a comfortably valid session needs no refresh")
}

func TestManager_Resume_NearExpiryRefreshesSynchronously(t *testing.T) {
	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return newResult("fresh", time.Now().Add(time.Hour)), nil
	}}
	m, st := newTestManager(t, fi, nil)
	ctx := context.Background()

	// Stored session expires within the 5-minute threshold.
	seedAuth(t, st, "rt-stale", time.Now().Add(time.Minute))

	m.HandleAppState(ctx, StateActive)

	require.Equal(t, 1, fi.calls())
	require.Equal(t, "rt-stale", fi.lastRefreshToken)
	require.Equal(t, "rt-fresh", m.CurrentSession().RefreshToken)
}

func TestManager_Resume_RefreshFailureForcesLogout(t *testing.T) {
	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return nil, identity.ErrTokenInvalid
	}}
	m, st := newTestManager(t, fi, nil)
	ctx := context.Background()
	seedAuth(t, st, "rt-stale", time.Now().Add(time.Minute))

	m.HandleAppState(ctx, StateActive)

	require.Nil(t, m.CurrentSession())
	sess, err := st.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestManager_Resume_EmptyStoreDoesNothing(t *testing.T) {
	fi := &fakeIdentity{}
	m, _ := newTestManager(t, fi, nil)
	ctx := context.Background()

	m.HandleAppState(ctx, StateActive)

	require.Nil(t, m.CurrentSession())
	require.False(t, m.scheduler.Armed())
	require.Equal(t, 0, fi.calls())
}

func TestManager_Restore_AdoptsStoredSession(t *testing.T) {
	fi := &fakeIdentity{}
	m, st := newTestManager(t, fi, nil)
	ctx := context.Background()
	seedAuth(t, st, "rt-stored", time.Now().Add(time.Hour))

	m.Restore(ctx)

	require.Equal(t, "rt-stored", m.CurrentSession().RefreshToken)
	require.Equal(t, "u1", m.CurrentUser().ID)
	require.True(t, m.scheduler.Armed())
}

func TestObserver_Run_ForwardsEvents(t *testing.T) {
	fi := &fakeIdentity{loginRes: newResult("1", time.Now().Add(time.Hour))}
	m, _ := newTestManager(t, fi, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))

	events := make(chan AppState)
	done := make(chan struct{})
	o := NewObserver(m, testLogger())
	go func() {
		defer close(done)
		o.Run(ctx, events)
	}()

	events <- StateBackground
	require.Eventually(t, func() bool { return !m.scheduler.Armed() },
		time.Second, 10*time.Millisecond)

	events <- StateActive
	require.Eventually(t, func() bool { return m.scheduler.Armed() },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("observer did not stop on context cancellation")
	}
}

func TestAppState_String(t *testing.T) {
	require.Equal(t, "active", StateActive.String())
	require.Equal(t, "inactive", StateInactive.String())
	require.Equal(t, "background", StateBackground.String())
	require.Equal(t, "unknown", AppState(42).String())
}
