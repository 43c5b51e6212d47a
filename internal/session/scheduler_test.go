package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

func TestRefreshDelay_LeadsExpiryByThreshold(t *testing.T) {
	now := time.Now()
	sess := &models.Session{ExpiresAt: now.Add(10 * time.Minute).Unix()}

	delay := refreshDelay(sess, now, 5*time.Minute)
	require.InDelta(t, (5 * time.Minute).Seconds(), delay.Seconds(), 1)
}

func TestRefreshDelay_PastThresholdIsNonPositive(t *testing.T) {
	now := time.Now()
	sess := &models.Session{ExpiresAt: now.Add(time.Minute).Unix()}

	require.LessOrEqual(t, refreshDelay(sess, now, 5*time.Minute), time.Duration(0))
}

func TestScheduler_Arm_FarExpiryArmsTimer(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(5*time.Minute, func() { fired <- struct{}{} }, testLogger())
	defer s.Disarm()

	s.Arm(&models.Session{RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	require.True(t, s.Armed())

	select {
	case <-fired:
		t.Fatal("timer fired far too early")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScheduler_Arm_NearExpiryFiresImmediately(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(5*time.Minute, func() { fired <- struct{}{} }, testLogger())
	defer s.Disarm()

	s.Arm(&models.Session{RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Minute).Unix()})
	require.False(t, s.Armed(), "no timer should be armed for an immediate refresh")

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("immediate refresh was not triggered")
	}
}

func TestScheduler_OneShotTimerFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(time.Minute, func() { fired <- struct{}{} }, testLogger())
	defer s.Disarm()

	s.armAfter(150 * time.Millisecond)
	require.True(t, s.Armed())

	select {
	case <-fired:
		t.Fatal("timer fired too early")
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestScheduler_RearmCancelsPreviousTimer(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(time.Minute, func() { fires.Add(1) }, testLogger())
	defer s.Disarm()

	s.armAfter(100 * time.Millisecond)
	s.armAfter(400 * time.Millisecond) // replaces the first timer

	time.Sleep(250 * time.Millisecond)
	require.Equal(t, int32(0), fires.Load(), "cancelled timer must not fire")

	time.Sleep(350 * time.Millisecond)
	require.Equal(t, int32(1), fires.Load())
}

func TestScheduler_Disarm(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(time.Minute, func() { fires.Add(1) }, testLogger())

	s.armAfter(100 * time.Millisecond)
	s.Disarm()
	require.False(t, s.Armed())

	time.Sleep(250 * time.Millisecond)
	require.Equal(t, int32(0), fires.Load())
}
