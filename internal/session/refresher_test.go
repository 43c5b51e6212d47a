package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/store"
)

func TestRefresher_SingleFlight(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	seedAuth(t, st, "rt-0", time.Now().Add(time.Minute))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		once.Do(func() { close(started) })
		<-release
		return newResult("1", time.Now().Add(time.Hour)), nil
	}}
	r := NewRefresher(st, fi, testLogger())

	const n = 5
	results := make(chan *Outcome, n)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err := r.Refresh(ctx)
		require.NoError(t, err)
		results <- out
	}()
	<-started

	// Late arrivals must attach to the in-flight operation.
	for i := 0; i < n-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Refresh(ctx)
			require.NoError(t, err)
			results <- out
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	require.Equal(t, 1, fi.calls(), "expected exactly one provider refresh call")
	for out := range results {
		require.Equal(t, "rt-1", out.Session.RefreshToken)
		require.Equal(t, "u1", out.User.ID)
	}
}

func TestRefresher_PersistsBeforeReturning(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	seedAuth(t, st, "rt-0", time.Now().Add(time.Minute))

	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return newResult("1", time.Now().Add(time.Hour)), nil
	}}
	r := NewRefresher(st, fi, testLogger())

	out, err := r.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt-1", out.Session.RefreshToken)

	sess, err := st.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt-1", sess.RefreshToken)
}

func TestRefresher_ReadsTokenFromStoreNotMemory(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	// Another actor rotated the token after this caller last looked.
	seedAuth(t, st, "rt-rotated", time.Now().Add(time.Minute))

	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return newResult("next", time.Now().Add(time.Hour)), nil
	}}
	r := NewRefresher(st, fi, testLogger())

	_, err := r.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt-rotated", fi.lastRefreshToken)
}

func TestRefresher_ReplayRecovery_AdoptsRotatedSession(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	seedAuth(t, st, "rt-old", time.Now().Add(time.Minute))

	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		// A concurrent process already used rt-old and stored its result.
		rotated := newResult("concurrent", time.Now().Add(time.Hour))
		require.NoError(t, st.SaveAuth(ctx, rotated.Session, rotated.User))
		return nil, identity.ErrTokenReplayed
	}}
	r := NewRefresher(st, fi, testLogger())

	out, err := r.Refresh(ctx)
	require.NoError(t, err, "a lost race must become a success, not a logout")
	require.Equal(t, "rt-concurrent", out.Session.RefreshToken)
	require.Equal(t, "u1", out.User.ID)
}

func TestRefresher_ReplayWithoutRotation_Fails(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	seedAuth(t, st, "rt-old", time.Now().Add(time.Minute))

	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return nil, identity.ErrTokenReplayed
	}}
	r := NewRefresher(st, fi, testLogger())

	_, err := r.Refresh(ctx)
	require.ErrorIs(t, err, identity.ErrTokenReplayed)
}

func TestRefresher_FatalFailure_NoStoreMutation(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)
	seedAuth(t, st, "rt-old", expires)

	fi := &fakeIdentity{refreshFn: func(ctx context.Context, token string) (*identity.Result, error) {
		return nil, identity.ErrTokenInvalid
	}}
	r := NewRefresher(st, fi, testLogger())

	_, err := r.Refresh(ctx)
	require.ErrorIs(t, err, identity.ErrTokenInvalid)

	sess, storeErr := st.GetSession(ctx)
	require.NoError(t, storeErr)
	require.Equal(t, &models.Session{AccessToken: "at-seed", RefreshToken: "rt-old", ExpiresAt: expires.Unix()}, sess)
}

func TestRefresher_NoRefreshToken(t *testing.T) {
	st := store.NewMemoryStore()
	fi := &fakeIdentity{}
	r := NewRefresher(st, fi, testLogger())

	_, err := r.Refresh(context.Background())
	require.ErrorIs(t, err, common.ErrNoRefreshToken)
	require.Equal(t, 0, fi.calls())
}
